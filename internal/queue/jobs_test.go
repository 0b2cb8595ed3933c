package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"podcast-prep-platform/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	store := NewJobStore(rdb, time.Minute)
	ctx := context.Background()
	ns := "podcast_" + uuid.NewString()
	defer rdb.Del(ctx, jobKey(ns))

	_, err := store.Get(ctx, ns)
	assert.ErrorIs(t, err, ErrJobNotFound)

	require.NoError(t, store.Save(ctx, &JobStatus{
		Namespace: ns,
		Status:    JobCompleted,
		Result:    &models.ProcessedDocument{Namespace: ns, Indexed: 7},
	}))

	job, err := store.Get(ctx, ns)
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, job.Status)
	assert.Equal(t, 7, job.Result.Indexed)
	assert.False(t, job.UpdatedAt.IsZero())
}
