// Package graph holds the authoritative in-memory flow graph.
//
// A Store is owned by a single writer. It does no locking; adapters that share
// a Store across goroutines serialize access themselves (see pkg/workspace).
package graph

import (
	"github.com/aretw0/flowedit/pkg/domain"
)

// Store is the ordered node sequence of a document plus an id index.
// The sequence order is kept for serialization and is irrelevant to traversal.
type Store struct {
	nodes []domain.Node
	index map[string]int
	start string
}

// New creates an empty store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Load replaces the store contents with nodes.
// The start node becomes the first node of the sequence. When ids repeat, the
// index points at the last occurrence, as lookups did in the original editor.
func (s *Store) Load(nodes []domain.Node) {
	s.nodes = make([]domain.Node, len(nodes))
	s.index = make(map[string]int, len(nodes))
	for i, n := range nodes {
		s.nodes[i] = n.Clone()
		s.index[n.ID] = i
	}
	s.start = ""
	if len(s.nodes) > 0 {
		s.start = s.nodes[0].ID
	}
}

// Upsert replaces the node with the same id in place, or appends it.
// The start node is not recomputed, except when the store had none.
// It returns true when the node was appended.
func (s *Store) Upsert(n domain.Node) bool {
	n = n.Clone()
	if i, ok := s.firstIndex(n.ID); ok {
		s.nodes[i] = n
		s.index[n.ID] = i
		return false
	}
	s.nodes = append(s.nodes, n)
	s.index[n.ID] = len(s.nodes) - 1
	if s.start == "" {
		s.start = n.ID
	}
	return true
}

// firstIndex finds the first position holding id in the sequence.
func (s *Store) firstIndex(id string) (int, bool) {
	i, ok := s.index[id]
	if !ok {
		return 0, false
	}
	for j := 0; j < i; j++ {
		if s.nodes[j].ID == id {
			return j, true
		}
	}
	return i, true
}

// Get returns a copy of the node addressed by id.
func (s *Store) Get(id string) (domain.Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Node{}, false
	}
	return s.nodes[i].Clone(), true
}

// Lookup returns the stored node without copying. Callers must not mutate it.
func (s *Store) Lookup(id string) (*domain.Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.nodes[i], true
}

// Has reports whether a node with id exists.
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// StartNodeID returns the designated start node, or "" for an empty graph.
func (s *Store) StartNodeID() string {
	return s.start
}

// Len returns the number of nodes in the sequence.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Nodes returns a deep copy of the node sequence in order.
func (s *Store) Nodes() []domain.Node {
	out := make([]domain.Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Each calls fn for every stored node in sequence order without copying.
func (s *Store) Each(fn func(n *domain.Node)) {
	for i := range s.nodes {
		fn(&s.nodes[i])
	}
}

// IDs returns the distinct node ids in first-seen sequence order.
func (s *Store) IDs() []string {
	seen := make(map[string]bool, len(s.nodes))
	ids := make([]string, 0, len(s.nodes))
	for _, n := range s.nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		ids = append(ids, n.ID)
	}
	return ids
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	cp := New()
	cp.Load(s.nodes)
	cp.start = s.start
	for id, i := range s.index {
		cp.index[id] = i
	}
	return cp
}
