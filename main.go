package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/noteshare/noteshare/handlers"
	"github.com/noteshare/noteshare/internal/access"
	"github.com/noteshare/noteshare/internal/config"
	"github.com/noteshare/noteshare/internal/database"
	"github.com/noteshare/noteshare/internal/identity"
	"github.com/noteshare/noteshare/internal/note/repository"
	"github.com/noteshare/noteshare/internal/oidc"
	"github.com/noteshare/noteshare/internal/storage"
	"github.com/noteshare/noteshare/internal/users"
	"github.com/noteshare/noteshare/pkg/logger"
	"github.com/noteshare/noteshare/pkg/metrics"
	"github.com/noteshare/noteshare/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: oidc=%v mongo=%v redis=%v admin_key_set=%v",
		cfg.OIDC.Issuer != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Admin.APIKey != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+middleware.AdminKeyHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Redis is optional; it backs the token denylist and the distributed
	// rate limiter when available.
	var rdb *redis.Client
	var denylist *identity.Denylist
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			denylist = identity.NewDenylist(rdb)
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Token verifier: real OIDC when an issuer is configured, otherwise the
	// payload-only verifier behind explicit opt-in.
	var verifier identity.Verifier
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil && cfg.OIDC.AllowInsecure {
		logger.Warn("enabling insecure token verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}

	resolver := identity.NewResolver(verifier, cfg.Admin.APIKey, denylist)

	// Persistence: MongoDB when configured, in-memory stores otherwise
	// (dev/test mode; nothing survives a restart).
	var noteStore repository.Store
	var userRepo users.Repository
	var mongoReady bool
	if cfg.MongoDB.URI != "" {
		// retry with backoff to tolerate container startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		}
		defer func() { _ = client.Disconnect(ctx) }()
		db := client.Database(cfg.MongoDB.Database)
		noteStore = repository.NewMongoStore(db.Collection("notes"))
		userRepo = users.NewMongoRepository(db.Collection("users"))
		mongoReady = true
	} else {
		logger.Warn("MONGODB_URI not set; using in-memory stores")
		noteStore = repository.NewMemoryStore()
		userRepo = users.NewMemoryRepository()
	}

	directory := users.NewDirectory(userRepo)
	guard := access.NewGuard(noteStore, directory)

	// Attachment storage is optional; the endpoints answer 503 without it.
	var attachments *storage.AttachmentStore
	if os.Getenv("MINIO_ENDPOINT") != "" {
		attachments, err = storage.NewAttachmentStore(storage.LoadMinIOConfig())
		if err != nil {
			logger.Warnf("attachment storage unavailable: %v", err)
			attachments = nil
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}
		deps["storage"] = cfg.MongoDB.URI == "" || mongoReady
		if !deps["storage"] {
			ready = false
		}
		if cfg.OIDC.Issuer != "" {
			deps["oidc"] = verifier != nil
			if !deps["oidc"] {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = rdb != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	handlers.RegisterSwagger(r)

	api := r.Group("/api/v1")
	api.Use(middleware.Identity(resolver))
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			api.Use(middleware.RedisRateLimit(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			api.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handlers.NewNotesHandler(noteStore, guard, directory, attachments).Register(api)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting noteshare service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
