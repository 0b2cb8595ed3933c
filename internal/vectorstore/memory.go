package vectorstore

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store using brute-force cosine similarity.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]*memoryNamespace
}

type memoryNamespace struct {
	order   []string
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{namespaces: make(map[string]*memoryNamespace)}
}

func (s *MemoryStore) Upsert(ctx context.Context, namespace string, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = &memoryNamespace{records: make(map[string]Record)}
		s.namespaces[namespace] = ns
	}
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record without id in namespace %s", namespace)
		}
		if _, exists := ns.records[r.ID]; !exists {
			ns.order = append(ns.order, r.ID)
		}
		values := make([]float32, len(r.Values))
		copy(values, r.Values)
		ns.records[r.ID] = Record{ID: r.ID, Values: values, Metadata: r.Metadata.Clone()}
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, namespace string, q Query) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		return []Match{}, nil
	}

	matches := make([]Match, 0, len(ns.order))
	for _, id := range ns.order {
		r := ns.records[id]
		if !matchesFilter(r.Metadata, q.Filter) {
			continue
		}
		m := Match{ID: r.ID, Metadata: r.Metadata.Clone()}
		if len(q.Vector) > 0 {
			m.Score = cosineSimilarity(q.Vector, r.Values)
		}
		matches = append(matches, m)
	}

	if len(q.Vector) > 0 {
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	}
	if q.TopK > 0 && len(matches) > q.TopK {
		matches = matches[:q.TopK]
	}
	return matches, nil
}

func (s *MemoryStore) Update(ctx context.Context, namespace, id string, md Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		return ErrNotFound
	}
	r, ok := ns.records[id]
	if !ok {
		return ErrNotFound
	}
	r.Metadata = md.Clone()
	ns.records[id] = r
	return nil
}

// Len reports the number of records in a namespace.
func (s *MemoryStore) Len(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ns, ok := s.namespaces[namespace]; ok {
		return len(ns.records)
	}
	return 0
}

func matchesFilter(md Metadata, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := md[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// cosineSimilarity returns 0 for mismatched or zero-length vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
