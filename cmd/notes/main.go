package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/noteshare/noteshare/handlers"
	"github.com/noteshare/noteshare/internal/access"
	"github.com/noteshare/noteshare/internal/database"
	"github.com/noteshare/noteshare/internal/identity"
	"github.com/noteshare/noteshare/internal/note/repository"
	"github.com/noteshare/noteshare/internal/oidc"
	"github.com/noteshare/noteshare/internal/users"
	"github.com/noteshare/noteshare/pkg/middleware"
)

// Standalone notes service: the notes API plus the access-control core,
// without Redis, MinIO or metrics. Uses the insecure token verifier, so it
// is only suitable for local development and frontend prototyping.
func main() {
	port := os.Getenv("NOTES_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	var noteStore repository.Store
	var userRepo users.Repository
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI != "" {
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v) — using memory-backed stores", err)
		} else {
			db := client.Database(os.Getenv("MONGODB_DATABASE"))
			noteStore = repository.NewMongoStore(db.Collection("notes"))
			userRepo = users.NewMongoRepository(db.Collection("users"))
		}
	}
	if noteStore == nil {
		noteStore = repository.NewMemoryStore()
		userRepo = users.NewMemoryRepository()
	}

	directory := users.NewDirectory(userRepo)
	guard := access.NewGuard(noteStore, directory)
	resolver := identity.NewResolver(oidc.NewInsecureVerifier(), os.Getenv("ADMIN_API_KEY"), nil)

	api := r.Group("/api/v1")
	api.Use(middleware.Identity(resolver))
	handlers.NewNotesHandler(noteStore, guard, directory, nil).Register(api)

	log.Printf("notes service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
