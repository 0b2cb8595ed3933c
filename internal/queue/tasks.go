package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskProcessDocument = "podcast:process_document"

	// QueueCritical carries document processing; nothing else is enqueued yet.
	QueueCritical = "critical"
)

type ProcessDocumentPayload struct {
	Namespace string `json:"namespace"`
	Content   string `json:"content"`
}

// NewProcessDocumentTask builds a task whose ID is the namespace, so a namespace is
// processed at most once. Failed documents are not retried; the client resubmits under a new
// namespace.
func NewProcessDocumentTask(namespace, content string) (*asynq.Task, error) {
	payload, err := json.Marshal(ProcessDocumentPayload{
		Namespace: namespace,
		Content:   content,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskProcessDocument,
		payload,
		asynq.TaskID(namespace),
		asynq.MaxRetry(0),
		asynq.Timeout(10*time.Minute),
		asynq.Queue(QueueCritical),
	), nil
}
