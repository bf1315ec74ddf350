package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noteshare/noteshare/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user exists for the given subject.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateSubject is returned when an insert loses the race against
	// a concurrent first request for the same subject. The caller recovers
	// by re-reading the committed row; it is never surfaced to clients.
	ErrDuplicateSubject = errors.New("subject already provisioned")
)

// Repository defines persistence operations for users.
type Repository interface {
	GetBySub(ctx context.Context, sub string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) (*models.User, error)
}

// MongoRepository implements Repository using MongoDB. A unique index on
// "sub" makes concurrent first inserts for one subject resolve to a single
// committed row; the loser observes ErrDuplicateSubject.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "sub", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"sub": sub}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *MongoRepository) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateSubject
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

var _ Repository = (*MongoRepository)(nil)
