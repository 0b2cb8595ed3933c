package services

import (
	"context"
	"fmt"

	"podcast-prep-platform/internal/ai"
	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/internal/vectorstore"
)

const DefaultTopK = 3

// Retriever answers similarity queries against the chunks of one namespace.
type Retriever struct {
	embedder    ai.Embedder
	store       vectorstore.Store
	defaultTopK int
}

func NewRetriever(embedder ai.Embedder, store vectorstore.Store, defaultTopK int) *Retriever {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &Retriever{embedder: embedder, store: store, defaultTopK: defaultTopK}
}

// Retrieve returns chunk texts most similar to query, best first. A namespace with no
// chunks yields an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, namespace, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", ErrUpstream, err)
	}

	matches, err := r.store.Query(ctx, namespace, vectorstore.Query{
		Vector: vec,
		TopK:   topK,
		Filter: map[string]any{"kind": KindChunk},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: similarity query: %w", ErrUpstream, err)
	}

	contexts := make([]string, 0, len(matches))
	for _, m := range matches {
		content := m.Metadata.String("content")
		if content == "" {
			logger.Debug("skipping chunk without content", "namespace", namespace, "record_id", m.ID)
			continue
		}
		contexts = append(contexts, content)
	}
	return contexts, nil
}
