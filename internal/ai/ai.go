package ai

import (
	"context"
	"encoding/json"
	"errors"
)

// Completer is the text/JSON completion capability.
type Completer interface {
	// CompleteJSON returns the model output, guaranteed to be syntactically valid JSON.
	CompleteJSON(ctx context.Context, instructions, content string) (json.RawMessage, error)
	CompleteText(ctx context.Context, instructions, content string) (string, error)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var (
	ErrEmptyCompletion = errors.New("completion returned no text")
	ErrInvalidJSON     = errors.New("completion is not valid JSON")
	ErrEmptyEmbedding  = errors.New("no embedding returned")
	ErrEmptyInput      = errors.New("empty input text")
)
