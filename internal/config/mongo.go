package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson" // Use bson for index keys
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	err = createIndexes(ctx, client.Database(cfg.DBName), cfg.VectorCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

// createIndexes adds the regular indexes backing namespace scans and filter-only lookups.
// The Atlas vector search index itself is managed outside the driver.
func createIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	vectors := db.Collection(collection)
	vectorIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "namespace", Value: 1}}},
		{Keys: bson.D{{Key: "namespace", Value: 1}, {Key: "record_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "namespace", Value: 1}, {Key: "metadata.kind", Value: 1}, {Key: "metadata.id", Value: 1}}},
	}
	_, err := vectors.Indexes().CreateMany(ctx, vectorIndexes)
	return err
}

// VectorSearchIndexDefinition is the Atlas search index definition expected on the vector collection.
func VectorSearchIndexDefinition(cfg *Config) bson.D {
	return bson.D{{Key: "fields", Value: bson.A{
		bson.D{
			{Key: "type", Value: "vector"},
			{Key: "path", Value: "vector"},
			{Key: "numDimensions", Value: cfg.VectorDimensions},
			{Key: "similarity", Value: "cosine"},
		},
		bson.D{{Key: "type", Value: "filter"}, {Key: "path", Value: "namespace"}},
		bson.D{{Key: "type", Value: "filter"}, {Key: "path", Value: "metadata.kind"}},
		bson.D{{Key: "type", Value: "filter"}, {Key: "path", Value: "metadata.id"}},
	}}}
}

// EnsureVectorSearchIndex creates the Atlas vector search index when it does not exist yet.
// Deployments without Atlas Search return an error, which callers may treat as a warning.
func EnsureVectorSearchIndex(ctx context.Context, db *mongo.Database, cfg *Config) error {
	view := db.Collection(cfg.VectorCollection).SearchIndexes()

	cursor, err := view.List(ctx, options.SearchIndexes().SetName(cfg.VectorIndexName))
	if err != nil {
		return fmt.Errorf("list search indexes: %w", err)
	}
	defer cursor.Close(ctx)
	if cursor.Next(ctx) {
		return nil
	}

	_, err = view.CreateOne(ctx, mongo.SearchIndexModel{
		Definition: VectorSearchIndexDefinition(cfg),
		Options:    options.SearchIndexes().SetName(cfg.VectorIndexName).SetType("vectorSearch"),
	})
	if err != nil {
		return fmt.Errorf("create vector search index %s: %w", cfg.VectorIndexName, err)
	}
	return nil
}
