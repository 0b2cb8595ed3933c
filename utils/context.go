package utils

import (
	"context"
	"time"
)

const (
	// DefaultTimeout is the default timeout for retrieval, topic updates and completions
	DefaultTimeout = 30 * time.Second

	// LongTimeout is for document processing (outline + chunk embedding + upsert)
	LongTimeout = 3 * time.Minute

	// ShortTimeout is for quick operations (cache lookups, job status, etc.)
	ShortTimeout = 2 * time.Second
)

// WithTimeout creates a context with default timeout
func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

// WithLongTimeout creates a context with long timeout for operations that may take longer
func WithLongTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, LongTimeout)
}

// WithShortTimeout creates a context with short timeout for quick operations
func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShortTimeout)
}
