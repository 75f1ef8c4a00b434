package analysis

import "github.com/aretw0/flowedit/pkg/domain"

// Size counts the branches Expand(g, rootID) would produce, stopping once the
// count passes limit. It reports false when the limit was passed. A limit of
// zero or less means no limit.
//
// Expansion enumerates every acyclic path, so chains of diamonds grow
// exponentially. Size lets callers refuse such graphs after at most limit steps.
func Size(g Graph, rootID string, limit int) (int, bool) {
	c := sizer{g: g, limit: limit}
	c.visit(rootID, nil)
	return c.n, !c.over
}

type sizer struct {
	g     Graph
	limit int
	n     int
	over  bool
}

func (c *sizer) visit(id string, path *Path) {
	if c.over {
		return
	}
	c.n++
	if c.limit > 0 && c.n > c.limit {
		c.over = true
		return
	}
	n, ok := c.g.Lookup(id)
	if !ok || path.Contains(id) {
		return
	}
	next := path.With(id)
	for _, t := range domain.Resolve(*n) {
		c.visit(t.ToNodeID, next)
	}
}

// Clean gives the same answer as Analyze(g, rootID).Clean() in linear time.
// Every node on some path from the root shows up in the expansion at least
// once, so plain reachability is enough to find unreachable nodes.
func Clean(g Graph, rootID string) bool {
	reachable := make(map[string]bool)
	if rootID != "" {
		stack := []string{rootID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reachable[id] {
				continue
			}
			n, ok := g.Lookup(id)
			if !ok {
				continue
			}
			reachable[id] = true
			for _, t := range domain.Resolve(*n) {
				stack = append(stack, t.ToNodeID)
			}
		}
	}

	orphans := Orphans(g, rootID)
	if len(orphans) > 0 {
		return false
	}
	clean := true
	g.Each(func(n *domain.Node) {
		if !reachable[n.ID] {
			clean = false
		}
		for _, t := range domain.Resolve(*n) {
			if _, ok := g.Lookup(t.ToNodeID); !ok {
				clean = false
			}
		}
	})
	return clean
}
