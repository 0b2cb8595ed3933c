package services

import (
	"context"
	"fmt"
	"strings"

	"podcast-prep-platform/internal/ai"
	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/internal/vectorstore"
	"podcast-prep-platform/models"

	"golang.org/x/sync/errgroup"
)

// Record kinds stored in a session namespace.
const (
	KindChunk = "chunk"
	KindTopic = "topic"
)

// Indexer embeds chunks and topics and commits them to a namespace in one batch.
type Indexer struct {
	embedder    ai.Embedder
	store       vectorstore.Store
	concurrency int
}

func NewIndexer(embedder ai.Embedder, store vectorstore.Store, concurrency int) *Indexer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Indexer{embedder: embedder, store: store, concurrency: concurrency}
}

func ChunkRecordID(index int) string { return fmt.Sprintf("chunk_%d", index) }

func TopicRecordID(topicID string) string { return "topic_" + topicID }

// Index returns the number of records committed. Nothing is written unless every
// embedding succeeds.
func (ix *Indexer) Index(ctx context.Context, namespace string, chunks []models.Chunk, topics []models.Topic) (int, error) {
	if namespace == "" {
		return 0, fmt.Errorf("%w: namespace is required", ErrValidation)
	}

	records := make([]vectorstore.Record, 0, len(chunks)+len(topics))
	texts := make([]string, 0, cap(records))
	for _, c := range chunks {
		records = append(records, vectorstore.Record{
			ID: ChunkRecordID(c.Index),
			Metadata: vectorstore.Metadata{
				"kind":        KindChunk,
				"content":     c.Text,
				"topic_index": c.Index,
				"is_quote":    c.IsQuote,
				"timestamp":   c.Timestamp,
			},
		})
		texts = append(texts, c.Text)
	}
	for _, t := range topics {
		status := t.Status
		if status == "" {
			status = models.TopicPending
		}
		records = append(records, vectorstore.Record{
			ID: TopicRecordID(t.ID),
			Metadata: vectorstore.Metadata{
				"kind":      KindTopic,
				"id":        t.ID,
				"title":     t.Title,
				"questions": nonNil(t.Questions),
				"excerpts":  nonNil(t.Excerpts),
				"status":    string(status),
			},
		})
		texts = append(texts, topicEmbeddingText(t))
	}
	if len(records) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)
	for i := range records {
		g.Go(func() error {
			vec, err := ix.embedder.Embed(gctx, texts[i])
			if err != nil {
				return fmt.Errorf("%w: embedding %s: %w", ErrUpstream, records[i].ID, err)
			}
			records[i].Values = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := ix.store.Upsert(ctx, namespace, records); err != nil {
		return 0, fmt.Errorf("%w: upsert: %w", ErrUpstream, err)
	}

	logger.Debug("namespace indexed", "namespace", namespace, "chunks", len(chunks), "topics", len(topics))
	return len(records), nil
}

func topicEmbeddingText(t models.Topic) string {
	parts := append([]string{t.Title}, t.Questions...)
	return strings.Join(parts, "\n")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
