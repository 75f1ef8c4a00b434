package analysis

// Path is a persistent set of the node ids on the current root-to-node path.
// With never mutates the receiver, so a parent can hand the same Path to all
// of its children.
type Path struct {
	id     string
	parent *Path
	depth  int
}

// With returns a new path extended by id.
func (p *Path) With(id string) *Path {
	return &Path{id: id, parent: p, depth: p.Len() + 1}
}

// Contains reports whether id is on the path.
func (p *Path) Contains(id string) bool {
	for cur := p; cur != nil; cur = cur.parent {
		if cur.id == id {
			return true
		}
	}
	return false
}

// Len returns the number of ids on the path. A nil path is empty.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// IDs returns the path from root to leaf.
func (p *Path) IDs() []string {
	out := make([]string, p.Len())
	for cur, i := p, p.Len()-1; cur != nil; cur, i = cur.parent, i-1 {
		out[i] = cur.id
	}
	return out
}
