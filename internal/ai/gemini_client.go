package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"podcast-prep-platform/internal/logger"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// BreakerObserver is notified whenever a Gemini circuit breaker changes state.
type BreakerObserver func(name, from, to string)

type GeminiConfig struct {
	APIKey          string
	Model           string
	EmbeddingModel  string
	Tier            string
	Temperature     float32
	OnBreakerChange BreakerObserver
}

type GeminiClient struct {
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	client      *genai.Client
	model       string
	temperature float32
	cfg         GeminiConfig
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}

	limits := getRateLimits(cfg.Tier)

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), max(1, limits.RPM/10))

	return &GeminiClient{
		breaker:     newBreaker("GeminiAPI", cfg.OnBreakerChange),
		rateLimiter: rateLimiter,
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		cfg:         cfg,
	}, nil
}

func newBreaker(name string, observer BreakerObserver) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if observer != nil {
				observer(name, from.String(), to.String())
			}
		},
	})
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

// CompleteJSON asks the model for a JSON object and checks that the reply parses.
func (gc *GeminiClient) CompleteJSON(ctx context.Context, instructions, content string) (json.RawMessage, error) {
	text, err := gc.generate(ctx, instructions, content, true)
	if err != nil {
		return nil, err
	}
	raw := extractJSON(text)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: %.80q", ErrInvalidJSON, text)
	}
	return json.RawMessage(raw), nil
}

func (gc *GeminiClient) CompleteText(ctx context.Context, instructions, content string) (string, error) {
	return gc.generate(ctx, instructions, content, false)
}

func (gc *GeminiClient) generate(ctx context.Context, instructions, content string, jsonMode bool) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()

	span.SetAttributes(
		attribute.Int("gemini.estimated_tokens", estimateTokens(instructions, content)),
		attribute.String("gemini.model", gc.model),
		attribute.Bool("gemini.json_mode", jsonMode),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(gc.temperature)
		model.SetMaxOutputTokens(4096)
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(instructions)}}
		if jsonMode {
			model.ResponseMIMEType = "application/json"
		}

		resp, err := model.GenerateContent(ctx, genai.Text(content))
		if err != nil {
			span.SetAttributes(attribute.String("gemini.error_message", err.Error()))
			return nil, err
		}
		if resp.UsageMetadata != nil {
			span.SetAttributes(attribute.Int("gemini.actual_tokens", int(resp.UsageMetadata.TotalTokenCount)))
		}

		text := responseText(resp)
		if text == "" {
			return nil, ErrEmptyCompletion
		}
		return text, nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return "", fmt.Errorf("gemini unavailable: %w", err)
		}
		return "", err
	}

	return result.(string), nil
}

// Embedder returns an embedding capability sharing this client's connection.
func (gc *GeminiClient) Embedder() *GeminiEmbedder {
	return &GeminiEmbedder{
		client:      gc.client,
		model:       gc.cfg.EmbeddingModel,
		breaker:     newBreaker("GeminiEmbeddings", gc.cfg.OnBreakerChange),
		rateLimiter: gc.rateLimiter,
	}
}

// Rough estimation: 1 token ≈ 4 characters
func estimateTokens(parts ...string) int {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	return total / 4
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		// first candidate only
		break
	}
	return strings.TrimSpace(sb.String())
}

// extractJSON strips a surrounding markdown code fence if the model added one.
func extractJSON(text string) []byte {
	b := bytes.TrimSpace([]byte(text))
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```"))
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}

func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
