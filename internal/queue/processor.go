package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/models"

	"github.com/hibiken/asynq"
)

// DocumentProcessor is the part of the podcast service the worker drives.
type DocumentProcessor interface {
	ProcessDocumentInto(ctx context.Context, namespace, content string) (*models.ProcessedDocument, error)
}

// JobRecorder persists job progress.
type JobRecorder interface {
	Save(ctx context.Context, job *JobStatus) error
}

// Task handlers
type TaskProcessor struct {
	documents DocumentProcessor
	jobs      JobRecorder
}

func NewTaskProcessor(documents DocumentProcessor, jobs JobRecorder) *TaskProcessor {
	return &TaskProcessor{documents: documents, jobs: jobs}
}

// Register wires every handler into the mux.
func (p *TaskProcessor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskProcessDocument, p.ProcessDocument)
}

func (p *TaskProcessor) ProcessDocument(ctx context.Context, t *asynq.Task) error {
	var payload ProcessDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	attempt, _ := asynq.GetRetryCount(ctx)
	taskID, _ := asynq.GetTaskID(ctx)
	job := &JobStatus{Namespace: payload.Namespace, TaskID: taskID, Status: JobProcessing, Attempt: attempt + 1}
	p.record(ctx, job)

	logger.Info("processing queued document", "namespace", payload.Namespace, "attempt", job.Attempt)

	result, err := p.documents.ProcessDocumentInto(ctx, payload.Namespace, payload.Content)
	if err != nil {
		job.Status = JobFailed
		job.Error = err.Error()
		p.record(ctx, job)
		logger.Error("queued document failed", "namespace", payload.Namespace, "error", err)

		// Never rerun a namespace: a retry asks for a fresh outline, and a partially applied
		// upsert from this attempt would leave two topic sets side by side.
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	job.Status = JobCompleted
	job.Result = result
	job.Error = ""
	p.record(ctx, job)
	return nil
}

// record is best effort: a lost status update must not fail the document itself.
func (p *TaskProcessor) record(ctx context.Context, job *JobStatus) {
	if err := p.jobs.Save(ctx, job); err != nil {
		logger.Warn("failed to record job status", "namespace", job.Namespace, "status", job.Status, "error", err)
	}
}
