// Package database owns the MongoDB connection and index bootstrap.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/santiyer/core/internal/config"
)

// Connect opens the client and verifies connectivity. The returned close
// function disconnects with its own timeout.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("database: connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, nil, fmt.Errorf("database: ping: %w", err)
	}

	closeFn := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}
	return client.Database(cfg.Database), closeFn, nil
}

// EnsureIndexes creates the single-field indexes the read paths rely on.
// Composite filter + sort indexes are deliberately not created here; the
// repositories degrade to the client-sorted tier when one is missing.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"services": {
			{Keys: bson.D{{Key: "slug", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		"projects": {
			{Keys: bson.D{{Key: "service_id", Value: 1}}},
			{Keys: bson.D{{Key: "service_slug", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		"posts": {
			{Keys: bson.D{{Key: "slug", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		"sliders": {
			{Keys: bson.D{{Key: "order", Value: 1}}},
		},
		"admins": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"sessions": {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("database: index %s: %w", collection, err)
		}
	}
	return nil
}
