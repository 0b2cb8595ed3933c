package services

import (
	"context"
	"errors"
	"fmt"

	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/internal/vectorstore"
	"podcast-prep-platform/models"
)

// TopicTracker keeps topic status in the topic record's metadata.
type TopicTracker struct {
	store vectorstore.Store
}

func NewTopicTracker(store vectorstore.Store) *TopicTracker {
	return &TopicTracker{store: store}
}

// SetStatus overwrites the status of a topic and preserves its other metadata. Any
// transition is allowed. An unknown topic is a no-op reported with Found=false.
func (tt *TopicTracker) SetStatus(ctx context.Context, namespace, topicID string, status models.TopicStatus) (models.TopicStatusUpdate, error) {
	update := models.TopicStatusUpdate{TopicID: topicID, Status: status}
	if namespace == "" || topicID == "" {
		return update, fmt.Errorf("%w: topicId and namespace are required", ErrValidation)
	}
	if !status.Valid() {
		return update, fmt.Errorf("%w: unknown topic status %q", ErrValidation, status)
	}

	matches, err := tt.store.Query(ctx, namespace, vectorstore.Query{
		TopK:   1,
		Filter: map[string]any{"kind": KindTopic, "id": topicID},
	})
	if err != nil {
		return update, fmt.Errorf("%w: topic lookup: %w", ErrUpstream, err)
	}
	if len(matches) == 0 {
		logger.Debug("topic not found, status unchanged", "namespace", namespace, "topic_id", topicID)
		return update, nil
	}

	md := matches[0].Metadata.Clone()
	md["status"] = string(status)
	if err := tt.store.Update(ctx, namespace, matches[0].ID, md); err != nil {
		if errors.Is(err, vectorstore.ErrNotFound) {
			return update, nil
		}
		return update, fmt.Errorf("%w: topic update: %w", ErrUpstream, err)
	}

	update.Found = true
	return update, nil
}
