// Package vectorstore holds the similarity-search storage used for chunk and topic records.
// Every operation is scoped to a namespace; records in different namespaces never see each other.
package vectorstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("vector record not found")

// Metadata is the free-form payload stored next to a vector.
type Metadata map[string]any

type Record struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

type Match struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// Query searches a namespace. With no Vector it is a filter-only lookup and Score is zero.
// Filter values match metadata keys by equality.
type Query struct {
	Vector []float32
	TopK   int
	Filter map[string]any
}

type Store interface {
	Upsert(ctx context.Context, namespace string, records []Record) error
	Query(ctx context.Context, namespace string, q Query) ([]Match, error)
	// Update replaces the metadata of an existing record. Missing records yield ErrNotFound.
	Update(ctx context.Context, namespace, id string, md Metadata) error
}

// Clone returns a shallow copy so callers can modify a record's metadata without aliasing the store.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}
