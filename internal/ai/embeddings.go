package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// GeminiEmbedder produces embeddings with a Google embedding model (text-embedding-004 by default).
type GeminiEmbedder struct {
	client      *genai.Client
	model       string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter // shared with the completion client; one RPM budget per key
}

func (e *GeminiEmbedder) Model() string {
	if e.model == "" {
		return "text-embedding-004"
	}
	return e.model
}

// Embed returns an embedding vector for the given text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	ctx, span := otel.Tracer("gemini-client").Start(ctx, "gemini.embed_content")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.embedding_model", e.Model()),
		attribute.Int("gemini.input_chars", len(text)),
	)

	if e.rateLimiter != nil {
		if err := e.rateLimiter.Wait(ctx); err != nil {
			span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
			return nil, err
		}
	}

	result, err := e.breaker.Execute(func() (interface{}, error) {
		resp, err := e.client.EmbeddingModel(e.Model()).EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
		if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return nil, ErrEmptyEmbedding
		}
		// genai SDK returns []float32 for Embedding.Values
		return resp.Embedding.Values, nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	return result.([]float32), nil
}
