package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// stateDocument mirrors the persisted blob {"state": {...}} keyed by namespace
type stateDocument struct {
	Namespace string          `bson:"_id"`
	State     domain.AppState `bson:"state"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// MongoStateRepository implements domain.StateRepository using MongoDB
type MongoStateRepository struct {
	collection *mongo.Collection
}

// NewMongoStateRepository creates a new MongoDB state repository
func NewMongoStateRepository(db *mongo.Database) *MongoStateRepository {
	collection := db.Collection("client_state")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Index on updated_at for housekeeping of abandoned sessions
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})

	return &MongoStateRepository{
		collection: collection,
	}
}

// Load returns the stored state for a namespace, or nil if nothing is stored
func (r *MongoStateRepository) Load(ctx context.Context, namespace string) (*domain.AppState, error) {
	var doc stateDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": namespace}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load state %s: %w", namespace, err)
	}
	if doc.State.SavedPlans == nil {
		doc.State.SavedPlans = []domain.SavedPlanEntry{}
	}
	return &doc.State, nil
}

// Save replaces the stored state for a namespace
func (r *MongoStateRepository) Save(ctx context.Context, namespace string, state domain.AppState) error {
	doc := stateDocument{
		Namespace: namespace,
		State:     state,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": namespace},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save state %s: %w", namespace, err)
	}
	return nil
}

// Delete removes the stored state for a namespace
func (r *MongoStateRepository) Delete(ctx context.Context, namespace string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": namespace})
	if err != nil {
		return fmt.Errorf("failed to delete state %s: %w", namespace, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
