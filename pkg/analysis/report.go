package analysis

import (
	"github.com/aretw0/flowedit/pkg/domain"
)

// Dangling is an edge whose target is not in the graph.
type Dangling struct {
	From  string `json:"from"`
	Label string `json:"label,omitempty"`
	To    string `json:"to"`
}

// Loop is an edge that revisits a node already on the current path.
type Loop struct {
	From  string `json:"from"`
	Label string `json:"label,omitempty"`
	To    string `json:"to"`
}

// Report summarizes one traversal from a root plus the global orphan test.
type Report struct {
	Root string `json:"root"`
	// Reachable maps each resolved node reached from Root to whether it was
	// loop-marked on at least one path.
	Reachable map[string]bool `json:"reachable"`
	Orphans   []string        `json:"orphans"`
	// Unreachable lists nodes that are neither reachable nor orphans, such as
	// a cycle that nothing outside it points to.
	Unreachable []string   `json:"unreachable"`
	Dangling    []Dangling `json:"dangling"`
	Loops       []Loop     `json:"loops"`
}

// Clean reports whether the graph has no dangling edges, orphans or unreachable nodes.
// Loops are legitimate flow constructs and do not count.
func (r Report) Clean() bool {
	return len(r.Dangling) == 0 && len(r.Orphans) == 0 && len(r.Unreachable) == 0
}

// Analyze expands the graph from rootID and classifies every node.
func Analyze(g Graph, rootID string) Report {
	r := Report{
		Root:      rootID,
		Reachable: make(map[string]bool),
		Orphans:   Orphans(g, rootID),
	}

	if rootID != "" {
		root := Expand(g, rootID)
		Walk(&root, func(parent, b *Branch) {
			switch b.Status {
			case StatusExpanded:
				if _, ok := r.Reachable[b.ID]; !ok {
					r.Reachable[b.ID] = false
				}
			case StatusLoop:
				r.Reachable[b.ID] = true
				if parent != nil {
					r.Loops = appendLoop(r.Loops, Loop{From: parent.ID, Label: b.Label, To: b.ID})
				}
			}
		})
	}

	orphan := make(map[string]bool, len(r.Orphans))
	for _, id := range r.Orphans {
		orphan[id] = true
	}
	seen := make(map[string]bool)
	g.Each(func(n *domain.Node) {
		for _, t := range domain.Resolve(*n) {
			if _, ok := g.Lookup(t.ToNodeID); !ok {
				r.Dangling = append(r.Dangling, Dangling{From: n.ID, Label: t.Label, To: t.ToNodeID})
			}
		}
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		if _, ok := r.Reachable[n.ID]; !ok && !orphan[n.ID] {
			r.Unreachable = append(r.Unreachable, n.ID)
		}
	})
	return r
}

// appendLoop records distinct loop edges only; the same back edge can be hit
// from several paths.
func appendLoop(loops []Loop, l Loop) []Loop {
	for _, existing := range loops {
		if existing == l {
			return loops
		}
	}
	return append(loops, l)
}
