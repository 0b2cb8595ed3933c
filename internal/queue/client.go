package queue

import (
	"context"
	"errors"
	"fmt"

	"podcast-prep-platform/internal/logger"

	"github.com/hibiken/asynq"
)

// DocumentQueue enqueues documents for the worker and reports their progress.
type DocumentQueue struct {
	client *asynq.Client
	jobs   *JobStore
}

func NewDocumentQueue(client *asynq.Client, jobs *JobStore) *DocumentQueue {
	return &DocumentQueue{client: client, jobs: jobs}
}

func (q *DocumentQueue) EnqueueDocument(ctx context.Context, namespace, content string) (*JobStatus, error) {
	task, err := NewProcessDocumentTask(namespace, content)
	if err != nil {
		return nil, err
	}

	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil, fmt.Errorf("namespace %s already queued: %w", namespace, err)
		}
		return nil, fmt.Errorf("enqueue document: %w", err)
	}

	job := &JobStatus{Namespace: namespace, TaskID: info.ID, Status: JobQueued}
	// The task is already queued; the worker rewrites the status when it starts.
	if err := q.jobs.Save(ctx, job); err != nil {
		logger.Warn("failed to record queued job", "namespace", namespace, "error", err)
	}
	return job, nil
}

func (q *DocumentQueue) Status(ctx context.Context, namespace string) (*JobStatus, error) {
	return q.jobs.Get(ctx, namespace)
}
