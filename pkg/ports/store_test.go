package ports_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/ports"
)

// MockStore keeps encoded documents in a map, simulating serialization.
type MockStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string][]byte)}
}

func (m *MockStore) Save(ctx context.Context, name string, doc document.Document) error {
	raw, err := document.Marshal(doc, document.FormatJSON)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = raw
	return nil
}

func (m *MockStore) Load(ctx context.Context, name string) (document.Document, error) {
	m.mu.Lock()
	raw, ok := m.data[name]
	m.mu.Unlock()
	if !ok {
		return document.Document{}, domain.ErrDocumentNotFound
	}
	return document.Decode(raw, document.FormatJSON)
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.data))
	for n := range m.data {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func TestDocumentStore_Contract(t *testing.T) {
	// The contract suite must hold for the simplest serializing store.
	ports.RunDocumentStoreContract(t, NewMockStore())
}
