package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"podcast-prep-platform/models"

	"github.com/redis/go-redis/v9"
)

var ErrJobNotFound = errors.New("job not found")

type JobState string

const (
	JobQueued     JobState = "queued"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// JobStatus is the externally visible progress of an async document job.
type JobStatus struct {
	Namespace string                    `json:"namespace"`
	TaskID    string                    `json:"task_id,omitempty"`
	Status    JobState                  `json:"status"`
	Result    *models.ProcessedDocument `json:"result,omitempty"`
	Error     string                    `json:"error,omitempty"`
	Attempt   int                       `json:"attempt,omitempty"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// JobStore keeps job status in Redis under podcast:job:<namespace>.
type JobStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewJobStore(rdb *redis.Client, ttl time.Duration) *JobStore {
	return &JobStore{rdb: rdb, ttl: ttl}
}

func jobKey(namespace string) string {
	return "podcast:job:" + namespace
}

func (s *JobStore) Save(ctx context.Context, job *JobStatus) error {
	job.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, jobKey(job.Namespace), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save job %s: %w", job.Namespace, err)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, namespace string) (*JobStatus, error) {
	payload, err := s.rdb.Get(ctx, jobKey(namespace)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", namespace, err)
	}
	var job JobStatus
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", namespace, err)
	}
	return &job, nil
}
