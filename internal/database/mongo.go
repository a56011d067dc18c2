package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore wraps a connected mongo.Client and the application database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to the deployment at uri and selects the named database.
func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the given indexes on a collection. Existing indexes
// with the same definition are left alone.
func (s *MongoStore) EnsureIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error {
	if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("creating indexes on %s: %w", collection, err)
	}
	return nil
}

// Database returns the selected database for repository use.
func (s *MongoStore) Database() *mongo.Database {
	return s.db
}

// Ping verifies the deployment is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
