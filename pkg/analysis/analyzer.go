package analysis

import (
	"github.com/aretw0/flowedit/pkg/domain"
)

// Graph is the read-only view the analyzer needs. *graph.Store satisfies it.
type Graph interface {
	Lookup(id string) (*domain.Node, bool)
	Each(fn func(n *domain.Node))
}

// Status classifies one occurrence of a node in an expansion.
type Status int

const (
	// StatusExpanded is a resolved node whose children were expanded.
	StatusExpanded Status = iota
	// StatusMissing is an edge target that does not exist in the graph.
	StatusMissing
	// StatusLoop is a node already present on the current path. It is not expanded again.
	StatusLoop
)

func (s Status) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusLoop:
		return "loop"
	default:
		return "expanded"
	}
}

// Branch is one occurrence of a node in an expansion.
type Branch struct {
	ID string
	// Label is the label of the edge leading here ("" for roots and plain next edges).
	Label  string
	Status Status
	// Node is a shallow copy of the stored node. It is zero when Status is StatusMissing.
	Node     domain.Node
	Children []Branch
}

// Expand walks the graph from rootID with an empty path.
func Expand(g Graph, rootID string) Branch {
	return expand(g, rootID, "", nil)
}

// ExpandFrom walks the graph from rootID as if path had already been visited.
func ExpandFrom(g Graph, rootID string, path *Path) Branch {
	return expand(g, rootID, "", path)
}

func expand(g Graph, id, label string, path *Path) Branch {
	n, ok := g.Lookup(id)
	if !ok {
		return Branch{ID: id, Label: label, Status: StatusMissing}
	}

	b := Branch{ID: id, Label: label, Node: *n}
	if path.Contains(id) {
		b.Status = StatusLoop
		return b
	}

	next := path.With(id)
	transitions := domain.Resolve(*n)
	if len(transitions) > 0 {
		b.Children = make([]Branch, 0, len(transitions))
	}
	for _, t := range transitions {
		b.Children = append(b.Children, expand(g, t.ToNodeID, t.Label, next))
	}
	return b
}

// Walk visits b and its descendants depth-first. parent is nil for b itself.
func Walk(b *Branch, fn func(parent, child *Branch)) {
	walk(nil, b, fn)
}

func walk(parent, b *Branch, fn func(parent, child *Branch)) {
	fn(parent, b)
	for i := range b.Children {
		walk(b, &b.Children[i], fn)
	}
}

// Targets returns the set of ids targeted by any edge in the graph.
func Targets(g Graph) map[string]bool {
	targets := make(map[string]bool)
	g.Each(func(n *domain.Node) {
		for _, t := range domain.Resolve(*n) {
			targets[t.ToNodeID] = true
		}
	})
	return targets
}

// Orphans returns, in sequence order, the ids that are not rootID and that no
// edge in the graph targets.
func Orphans(g Graph, rootID string) []string {
	targets := Targets(g)
	seen := make(map[string]bool)
	var orphans []string
	g.Each(func(n *domain.Node) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		if n.ID != rootID && !targets[n.ID] {
			orphans = append(orphans, n.ID)
		}
	})
	return orphans
}
