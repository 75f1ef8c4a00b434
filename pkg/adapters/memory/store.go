package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]document.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]document.Document),
	}
}

// Save keeps a deep copy of doc.
func (s *Store) Save(ctx context.Context, name string, doc document.Document) error {
	cp := doc.Clone()
	if cp.Environments == nil {
		cp.Environments = map[string]any{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = cp
	return nil
}

// Load returns a copy so callers cannot mutate the stored document.
func (s *Store) Load(ctx context.Context, name string) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[name]
	if !ok {
		return document.Document{}, domain.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored names in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
