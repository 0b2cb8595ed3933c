package vectorstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Vector search itself needs an Atlas index; this exercises upsert, filter lookup and update.
func TestMongoStoreRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	db := client.Database("podcast_prep_test")
	coll := "vectors_" + uuid.NewString()[:8]
	defer db.Collection(coll).Drop(ctx)

	store := NewMongoStore(db, coll, "unused")
	ns := "podcast_" + uuid.NewString()

	require.NoError(t, store.Upsert(ctx, ns, []Record{
		{ID: "topic_t1", Values: []float32{0.1, 0.2}, Metadata: Metadata{"kind": "topic", "id": "t1", "status": "pending"}},
	}))

	matches, err := store.Query(ctx, ns, Query{TopK: 1, Filter: map[string]any{"kind": "topic", "id": "t1"}})
	require.NoError(t, err)
	require.Len(t, matches, 1)

	md := matches[0].Metadata.Clone()
	md["status"] = "discussed"
	require.NoError(t, store.Update(ctx, ns, "topic_t1", md))

	matches, err = store.Query(ctx, ns, Query{TopK: 1, Filter: map[string]any{"id": "t1"}})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "discussed", matches[0].Metadata.String("status"))

	assert.ErrorIs(t, store.Update(ctx, ns, "topic_nope", md), ErrNotFound)
}
