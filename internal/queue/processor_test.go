package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"podcast-prep-platform/models"
	"podcast-prep-platform/services"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocuments struct {
	err error
}

func (f fakeDocuments) ProcessDocumentInto(_ context.Context, namespace, _ string) (*models.ProcessedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ProcessedDocument{Namespace: namespace, Indexed: 4}, nil
}

type memoryJobs struct {
	mu      sync.Mutex
	history []JobStatus
}

func (m *memoryJobs) Save(_ context.Context, job *JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, *job)
	return nil
}

func (m *memoryJobs) last() JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[len(m.history)-1]
}

func TestNewProcessDocumentTask(t *testing.T) {
	task, err := NewProcessDocumentTask("podcast_abc", "Some text.")
	require.NoError(t, err)
	assert.Equal(t, TaskProcessDocument, task.Type())

	var payload ProcessDocumentPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "podcast_abc", payload.Namespace)
	assert.Equal(t, "Some text.", payload.Content)
}

func TestProcessDocumentSuccess(t *testing.T) {
	jobs := &memoryJobs{}
	p := NewTaskProcessor(fakeDocuments{}, jobs)
	task, err := NewProcessDocumentTask("podcast_abc", "Some text.")
	require.NoError(t, err)

	require.NoError(t, p.ProcessDocument(context.Background(), task))

	require.Len(t, jobs.history, 2)
	assert.Equal(t, JobProcessing, jobs.history[0].Status)
	final := jobs.last()
	assert.Equal(t, JobCompleted, final.Status)
	require.NotNil(t, final.Result)
	assert.Equal(t, 4, final.Result.Indexed)
}

func TestProcessDocumentValidationSkipsRetry(t *testing.T) {
	jobs := &memoryJobs{}
	p := NewTaskProcessor(fakeDocuments{err: fmt.Errorf("%w: missing content", services.ErrValidation)}, jobs)
	task, err := NewProcessDocumentTask("podcast_abc", "")
	require.NoError(t, err)

	err = p.ProcessDocument(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, JobFailed, jobs.last().Status)
	assert.Contains(t, jobs.last().Error, "missing content")
}

func TestProcessDocumentUpstreamFailureSkipsRetry(t *testing.T) {
	jobs := &memoryJobs{}
	upstream := fmt.Errorf("%w: upsert: i/o timeout", services.ErrUpstream)
	p := NewTaskProcessor(fakeDocuments{err: upstream}, jobs)
	task, err := NewProcessDocumentTask("podcast_abc", "text")
	require.NoError(t, err)

	err = p.ProcessDocument(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, services.ErrUpstream)
	assert.Equal(t, JobFailed, jobs.last().Status)
	assert.Contains(t, jobs.last().Error, "i/o timeout")
}

func TestProcessDocumentUnexpectedFailureSkipsRetry(t *testing.T) {
	p := NewTaskProcessor(fakeDocuments{err: errors.New("boom")}, &memoryJobs{})
	task, err := NewProcessDocumentTask("podcast_abc", "text")
	require.NoError(t, err)

	assert.ErrorIs(t, p.ProcessDocument(context.Background(), task), asynq.SkipRetry)
}

func TestProcessDocumentBadPayload(t *testing.T) {
	p := NewTaskProcessor(fakeDocuments{}, &memoryJobs{})
	err := p.ProcessDocument(context.Background(), asynq.NewTask(TaskProcessDocument, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
