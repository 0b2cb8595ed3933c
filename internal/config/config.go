package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Gemini
	GeminiAPIKey          string
	GeminiModel           string
	GeminiTier            string
	GoogleEmbeddingsModel string // e.g., "text-embedding-004"

	// Vector store: "mongo" (Atlas $vectorSearch) or "memory"
	VectorStore      string
	MongoURI         string
	DBName           string
	VectorCollection string
	VectorIndexName  string
	VectorDimensions int

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int

	// Document pipeline
	ChunkSize            int
	ChunkOverlap         int
	RetrievalTopK        int
	EmbeddingConcurrency int
	EmbeddingCacheTTL    time.Duration
	MaxDocumentSize      int64

	// Async processing
	AsyncProcessingEnabled bool
	JobResultTTL           time.Duration

	// Tracing
	TracingEnabled   bool
	OTLPEndpoint     string
	TraceSampleRatio float64
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:            getEnv("GEMINI_TIER", "free"),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		VectorStore:      strings.ToLower(getEnv("VECTOR_STORE", "mongo")),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017/podcast_prep"),
		DBName:           getEnv("DB_NAME", "podcast_prep"),
		VectorCollection: getEnv("VECTOR_COLLECTION", "podcast_vectors"),
		VectorIndexName:  getEnv("MONGODB_VECTOR_INDEX", "podcast_vectors_index"),
		VectorDimensions: getEnvInt("VECTOR_DIM", 768),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		ChunkSize:            getEnvInt("CHUNK_SIZE", 300),
		ChunkOverlap:         getEnvInt("CHUNK_OVERLAP", 50),
		RetrievalTopK:        getEnvInt("RETRIEVAL_TOP_K", 3),
		EmbeddingConcurrency: getEnvInt("EMBEDDING_CONCURRENCY", 4),
		EmbeddingCacheTTL:    getEnvDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
		MaxDocumentSize:      getEnvInt64("MAX_DOCUMENT_SIZE", 5242880), // 5MB of text

		AsyncProcessingEnabled: getEnvBool("ASYNC_PROCESSING_ENABLED", true),
		JobResultTTL:           getEnvDuration("JOB_RESULT_TTL", 24*time.Hour),

		TracingEnabled:   getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:     getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TraceSampleRatio: getEnvFloat64("TRACE_SAMPLE_RATIO", 0.1),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d with CHUNK_SIZE %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.RetrievalTopK)
	}
	switch c.VectorStore {
	case "mongo", "memory":
	default:
		return fmt.Errorf("VECTOR_STORE must be mongo or memory, got %q", c.VectorStore)
	}
	if c.EmbeddingConcurrency <= 0 {
		c.EmbeddingConcurrency = 1
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90m") or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
