package services

import (
	"context"
	"testing"

	"podcast-prep-platform/internal/vectorstore"
	"podcast-prep-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackedStore(t *testing.T) *vectorstore.MemoryStore {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	topics := []models.Topic{
		{ID: "t1", Title: "Origins", Questions: []string{"How did it start?"}, Excerpts: []string{"In the beginning"}},
		{ID: "t2", Title: "Future"},
	}
	_, err := NewIndexer(&letterEmbedder{}, store, 1).Index(context.Background(), "ns", nil, topics)
	require.NoError(t, err)
	return store
}

func topicMetadata(t *testing.T, store vectorstore.Store, id string) vectorstore.Metadata {
	t.Helper()
	matches, err := store.Query(context.Background(), "ns", vectorstore.Query{TopK: 1, Filter: map[string]any{"kind": KindTopic, "id": id}})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0].Metadata
}

func TestSetStatusPreservesMetadata(t *testing.T) {
	store := trackedStore(t)
	tt := NewTopicTracker(store)

	update, err := tt.SetStatus(context.Background(), "ns", "t1", models.TopicDiscussed)
	require.NoError(t, err)
	assert.True(t, update.Found)
	assert.Equal(t, models.TopicDiscussed, update.Status)

	md := topicMetadata(t, store, "t1")
	assert.Equal(t, "discussed", md["status"])
	assert.Equal(t, "Origins", md["title"])
	assert.Equal(t, []string{"How did it start?"}, md["questions"])
	assert.Equal(t, []string{"In the beginning"}, md["excerpts"])

	assert.Equal(t, "pending", topicMetadata(t, store, "t2")["status"])
}

func TestSetStatusAllowsAnyTransition(t *testing.T) {
	store := trackedStore(t)
	tt := NewTopicTracker(store)
	ctx := context.Background()

	for _, s := range []models.TopicStatus{models.TopicSkipped, models.TopicDiscussed, models.TopicPending, models.TopicPending} {
		update, err := tt.SetStatus(ctx, "ns", "t2", s)
		require.NoError(t, err)
		assert.True(t, update.Found)
		assert.Equal(t, string(s), topicMetadata(t, store, "t2")["status"])
	}
}

func TestSetStatusUnknownTopicIsNoop(t *testing.T) {
	store := trackedStore(t)
	tt := NewTopicTracker(store)

	update, err := tt.SetStatus(context.Background(), "ns", "missing", models.TopicDiscussed)
	require.NoError(t, err)
	assert.False(t, update.Found)
	assert.Equal(t, "missing", update.TopicID)
	assert.Equal(t, models.TopicDiscussed, update.Status)

	update, err = tt.SetStatus(context.Background(), "other-ns", "t1", models.TopicDiscussed)
	require.NoError(t, err)
	assert.False(t, update.Found)
	assert.Equal(t, "pending", topicMetadata(t, store, "t1")["status"])
}

func TestSetStatusValidation(t *testing.T) {
	tt := NewTopicTracker(failingStore{})
	ctx := context.Background()

	_, err := tt.SetStatus(ctx, "ns", "t1", "archived")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = tt.SetStatus(ctx, "", "t1", models.TopicDiscussed)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = tt.SetStatus(ctx, "ns", "", models.TopicDiscussed)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = tt.SetStatus(ctx, "ns", "t1", models.TopicDiscussed)
	assert.ErrorIs(t, err, ErrUpstream)
}
