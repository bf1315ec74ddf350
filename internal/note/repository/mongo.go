package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/noteshare/noteshare/internal/note"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on a MongoDB collection. Notes are keyed by a
// string "id" field with a unique index.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoStore{col: col}
}

func (m *MongoStore) Create(ctx context.Context, n *note.Note) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	if n.ID == "" {
		n.ID = fmt.Sprintf("note_%d", time.Now().UnixNano())
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	if _, err := m.col.InsertOne(ctx, n); err != nil {
		return "", fmt.Errorf("insert note: %w", err)
	}
	return n.ID, nil
}

func (m *MongoStore) FindByID(ctx context.Context, id string) (*note.Note, error) {
	var n note.Note
	if err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return &n, nil
}

func (m *MongoStore) List(ctx context.Context) ([]*note.Note, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer cur.Close(ctx)
	out := []*note.Note{}
	for cur.Next(ctx) {
		var n note.Note
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, cur.Err()
}

func (m *MongoStore) Update(ctx context.Context, id string, upd Update) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}
	if upd.Visibility != nil {
		if *upd.Visibility != note.VisibilityPublic && *upd.Visibility != note.VisibilityPrivate {
			return note.ErrInvalidVisibility
		}
		set["visibility"] = *upd.Visibility
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*MongoStore)(nil)
