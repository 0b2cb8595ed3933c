// Package bootstrap wires the podcast service from configuration. The API server and the
// queue worker share it so both see the same store and embedding setup.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"podcast-prep-platform/internal/ai"
	"podcast-prep-platform/internal/cache"
	"podcast-prep-platform/internal/config"
	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/internal/telemetry"
	"podcast-prep-platform/internal/vectorstore"
	"podcast-prep-platform/services"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Deps holds the long-lived clients behind a PodcastService.
type Deps struct {
	Podcast *services.PodcastService
	Gemini  *ai.GeminiClient
	Redis   *redis.Client // nil when Redis is unreachable
	Mongo   *mongo.Client // nil for the in-memory store
}

// Close releases every client Build opened.
func (d *Deps) Close() {
	if d.Gemini != nil {
		d.Gemini.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
	if d.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		d.Mongo.Disconnect(ctx)
	}
}

// Build connects to Gemini, Redis and the configured vector store. Redis is optional: without
// it embeddings are not cached.
func Build(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*Deps, error) {
	deps := &Deps{}

	gemini, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		EmbeddingModel: cfg.GoogleEmbeddingsModel,
		Tier:           cfg.GeminiTier,
		OnBreakerChange: func(name, _, to string) {
			metrics.RecordCircuitBreakerState(name, to)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini client: %w", services.ErrConfiguration, err)
	}
	deps.Gemini = gemini

	geminiEmbedder := gemini.Embedder()
	var embedder ai.Embedder = geminiEmbedder
	if rdb, err := config.NewRedisClient(cfg); err != nil {
		logger.Warn("redis unavailable, embedding cache disabled", "error", err)
	} else {
		deps.Redis = rdb
		embedder = cache.NewEmbeddingCache(embedder, rdb, geminiEmbedder.Model(), cfg.EmbeddingCacheTTL)
	}

	var store vectorstore.Store
	switch cfg.VectorStore {
	case "memory":
		logger.Warn("using in-memory vector store, data is lost on restart")
		store = vectorstore.NewMemoryStore()
	default:
		client, err := config.ConnectMongoDB(cfg)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Mongo = client
		if err := config.EnsureVectorSearchIndex(ctx, client.Database(cfg.DBName), cfg); err != nil {
			logger.Warn("vector search index not ensured, similarity queries need it", "index", cfg.VectorIndexName, "error", err)
		}
		store = vectorstore.NewMongoStore(client.Database(cfg.DBName), cfg.VectorCollection, cfg.VectorIndexName)
	}

	podcast, err := services.NewPodcastService(cfg, gemini, embedder, store, metrics)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Podcast = podcast

	logger.Info("podcast service ready",
		"vector_store", cfg.VectorStore,
		"model", cfg.GeminiModel,
		"embedding_cache", deps.Redis != nil,
	)
	return deps, nil
}
