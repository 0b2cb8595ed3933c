package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	DocumentsProcessed  metric.Int64Counter
	DocumentDuration    metric.Float64Histogram
	ChunksIndexed       metric.Int64Counter
	Retrievals          metric.Int64Counter
	TopicUpdates        metric.Int64Counter
	EngagementScores    metric.Float64Histogram
	CircuitBreakerState metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("podcast-prep-platform")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	documentsProcessed, err := meter.Int64Counter(
		"podcast.documents.processed",
		metric.WithDescription("Documents run through outline + indexing"),
	)
	if err != nil {
		return nil, err
	}

	documentDuration, err := meter.Float64Histogram(
		"podcast.document.duration",
		metric.WithDescription("Document processing duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	chunksIndexed, err := meter.Int64Counter(
		"podcast.records.indexed",
		metric.WithDescription("Chunk and topic records committed to the vector store"),
	)
	if err != nil {
		return nil, err
	}

	retrievals, err := meter.Int64Counter(
		"podcast.retrievals.total",
		metric.WithDescription("Contextual retrieval queries"),
	)
	if err != nil {
		return nil, err
	}

	topicUpdates, err := meter.Int64Counter(
		"podcast.topic_updates.total",
		metric.WithDescription("Topic status updates"),
	)
	if err != nil {
		return nil, err
	}

	engagementScores, err := meter.Float64Histogram(
		"podcast.engagement.score",
		metric.WithDescription("Computed engagement scores"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerState, err := meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:      requestCounter,
		RequestDuration:     requestDuration,
		DocumentsProcessed:  documentsProcessed,
		DocumentDuration:    documentDuration,
		ChunksIndexed:       chunksIndexed,
		Retrievals:          retrievals,
		TopicUpdates:        topicUpdates,
		EngagementScores:    engagementScores,
		CircuitBreakerState: circuitBreakerState,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordDocument records one document processing run and the records it committed.
func (m *Metrics) RecordDocument(ctx context.Context, duration float64, records int, status string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("document.status", status))
	m.DocumentsProcessed.Add(ctx, 1, attrs)
	m.DocumentDuration.Record(ctx, duration, attrs)
	if records > 0 {
		m.ChunksIndexed.Add(ctx, int64(records))
	}
}

func (m *Metrics) RecordRetrieval(ctx context.Context, results int) {
	if m == nil {
		return
	}
	m.Retrievals.Add(ctx, 1, metric.WithAttributes(attribute.Bool("retrieval.empty", results == 0)))
}

func (m *Metrics) RecordTopicUpdate(ctx context.Context, status string, found bool) {
	if m == nil {
		return
	}
	m.TopicUpdates.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic.status", status),
		attribute.Bool("topic.found", found),
	))
}

func (m *Metrics) RecordEngagement(ctx context.Context, score float64, recommendation string) {
	if m == nil {
		return
	}
	m.EngagementScores.Record(ctx, score, metric.WithAttributes(attribute.String("engagement.recommendation", recommendation)))
}

// RecordCircuitBreakerState records circuit breaker state changes
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("service", service),
		attribute.String("state", state),
	}

	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
