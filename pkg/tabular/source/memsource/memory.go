// Package memsource is an in-memory source.Source for tests.
package memsource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/openrow/tabular/pkg/tabular/record"
	"github.com/openrow/tabular/pkg/tabular/source"
)

// Store is an in-memory implementation of source.Source.
type Store struct {
	mu   sync.RWMutex
	docs []record.Document
}

// New creates a store preloaded with the given submissions.
func New(docs ...record.Document) *Store {
	s := &Store{}
	for _, doc := range docs {
		s.Add(doc)
	}
	return s
}

// Add appends one submission. Documents are deep-copied through JSON so the
// export pipeline's in-place mutations never leak back into the store.
func (s *Store) Add(doc record.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, copyDoc(doc))
}

// Count implements source.Source.
func (s *Store) Count(ctx context.Context, filter source.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	constraints, err := parseFilter(filter)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, doc := range s.docs {
		if matches(doc, constraints) {
			n++
		}
	}
	return n, nil
}

// Fetch implements source.Source.
func (s *Store) Fetch(ctx context.Context, filter source.Filter, start, limit int) ([]record.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	constraints, err := parseFilter(filter)
	if err != nil {
		return nil, err
	}
	var out []record.Document
	skipped := 0
	for _, doc := range s.docs {
		if !matches(doc, constraints) {
			continue
		}
		if skipped < start {
			skipped++
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, copyDoc(doc))
	}
	return out, nil
}

func parseFilter(filter source.Filter) (map[string]any, error) {
	if filter == "" {
		return nil, nil
	}
	var constraints map[string]any
	if err := json.Unmarshal([]byte(filter), &constraints); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	return constraints, nil
}

func matches(doc record.Document, constraints map[string]any) bool {
	for key, want := range constraints {
		got, ok := doc[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func copyDoc(doc record.Document) record.Document {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("memsource: unencodable document: %v", err))
	}
	var out record.Document
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("memsource: undecodable document: %v", err))
	}
	return out
}
