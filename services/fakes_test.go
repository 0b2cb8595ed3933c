package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"podcast-prep-platform/internal/config"
	"podcast-prep-platform/internal/vectorstore"
)

// letterEmbedder embeds text as a 26-dim letter histogram, which is enough for cosine
// ranking to prefer texts sharing vocabulary.
type letterEmbedder struct {
	calls  atomic.Int32
	failOn string
}

func (e *letterEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.calls.Add(1)
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("embedding quota exceeded")
	}
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v, nil
}

// fakeCompleter replies with canned outputs keyed by a phrase from the instructions.
type fakeCompleter struct {
	mu       sync.Mutex
	replies  map[string]string
	text     string
	err      error
	contents []string
}

func newFakeCompleter() *fakeCompleter {
	return &fakeCompleter{replies: make(map[string]string)}
}

func (f *fakeCompleter) on(phrase, reply string) *fakeCompleter {
	f.replies[phrase] = reply
	return f
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, instructions, content string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents = append(f.contents, content)
	if f.err != nil {
		return nil, f.err
	}
	for phrase, reply := range f.replies {
		if strings.Contains(instructions, phrase) {
			return json.RawMessage(reply), nil
		}
	}
	return nil, errors.New("no canned reply")
}

func (f *fakeCompleter) CompleteText(_ context.Context, _, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents = append(f.contents, content)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.contents)
}

// failingStore fails every operation.
type failingStore struct{}

var errStoreDown = errors.New("vector store unavailable")

func (failingStore) Upsert(context.Context, string, []vectorstore.Record) error { return errStoreDown }
func (failingStore) Query(context.Context, string, vectorstore.Query) ([]vectorstore.Match, error) {
	return nil, errStoreDown
}
func (failingStore) Update(context.Context, string, string, vectorstore.Metadata) error {
	return errStoreDown
}

func testConfig() *config.Config {
	return &config.Config{
		ChunkSize:            300,
		ChunkOverlap:         50,
		RetrievalTopK:        3,
		EmbeddingConcurrency: 4,
		MaxDocumentSize:      1 << 20,
	}
}
