package graph_test

import (
	"testing"

	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(id, next string) domain.Node {
	n := domain.NewNode(id, domain.KindFixed)
	n.Next = next
	return n
}

func TestStore_Load(t *testing.T) {
	s := graph.New()
	assert.Equal(t, "", s.StartNodeID())

	s.Load([]domain.Node{fixed("a", "b"), fixed("b", "")})
	assert.Equal(t, "a", s.StartNodeID())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("b"))

	// Load replaces, never merges.
	s.Load([]domain.Node{fixed("z", "")})
	assert.Equal(t, "z", s.StartNodeID())
	assert.False(t, s.Has("a"))

	s.Load(nil)
	assert.Equal(t, "", s.StartNodeID())
	assert.Equal(t, 0, s.Len())
}

func TestStore_UpsertKeepsPosition(t *testing.T) {
	s := graph.New()
	s.Load([]domain.Node{fixed("a", "b"), fixed("b", "c"), fixed("c", "")})

	appended := s.Upsert(fixed("b", "a"))
	assert.False(t, appended)
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())

	got, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "a", got.Next)

	appended = s.Upsert(fixed("d", ""))
	assert.True(t, appended)
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.IDs())
	assert.Equal(t, "a", s.StartNodeID(), "start is not recomputed on append")
}

func TestStore_UpsertIntoEmptySetsStart(t *testing.T) {
	s := graph.New()
	s.Upsert(fixed("first", ""))
	s.Upsert(fixed("second", ""))
	assert.Equal(t, "first", s.StartNodeID())
}

func TestStore_DuplicateIDsOnLoad(t *testing.T) {
	s := graph.New()
	first := fixed("dup", "one")
	second := fixed("dup", "two")
	s.Load([]domain.Node{first, second})

	got, _ := s.Get("dup")
	assert.Equal(t, "two", got.Next, "lookups see the last occurrence")

	s.Upsert(fixed("dup", "three"))
	nodes := s.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "three", nodes[0].Next, "upsert replaces the first occurrence")
	assert.Equal(t, []string{"dup"}, s.IDs())
}

func TestStore_Isolation(t *testing.T) {
	n := domain.Node{ID: "a", Kind: domain.KindFixed, PreUpdate: map[string]any{"x": "1"}}
	s := graph.New()
	s.Load([]domain.Node{n})

	n.PreUpdate["x"] = "mutated"
	got, _ := s.Get("a")
	assert.Equal(t, "1", got.PreUpdate["x"])

	got.PreUpdate["x"] = "mutated"
	again, _ := s.Get("a")
	assert.Equal(t, "1", again.PreUpdate["x"])

	cp := s.Clone()
	cp.Upsert(fixed("b", ""))
	assert.False(t, s.Has("b"))
	assert.Equal(t, "a", cp.StartNodeID())
}
