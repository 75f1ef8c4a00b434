// Package tree projects a flow graph into display trees.
//
// A Projection is ephemeral: it is rebuilt from scratch after every edit and
// never mutates the graph it reads.
package tree

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/flowedit/pkg/analysis"
	"github.com/aretw0/flowedit/pkg/domain"
)

// Status is the marker shown on a tree node.
type Status string

const (
	StatusNormal  Status = "normal"
	StatusMissing Status = "missing"
	StatusLoop    Status = "loop"
	StatusOrphan  Status = "orphan"
)

// promptPreview is the number of runes of an llm prompt shown in summaries.
const promptPreview = 40

// Node is a renderable tree node.
type Node struct {
	ID      string      `json:"id"`
	Kind    domain.Kind `json:"kind,omitempty"`
	Header  string      `json:"header"`
	Summary string      `json:"summary"`
	// Label is the label of the edge from the parent (TRUE/FALSE for branches).
	Label    string  `json:"label,omitempty"`
	Status   Status  `json:"status"`
	Class    string  `json:"class"`
	Children []*Node `json:"children,omitempty"`
}

// Projection is the main tree rooted at the start node plus one tree per orphan.
type Projection struct {
	Main    *Node   `json:"main"`
	Orphans []*Node `json:"orphans"`
}

// Source is the graph view the projector reads. *graph.Store satisfies it.
type Source interface {
	analysis.Graph
	StartNodeID() string
}

// Project builds the display trees for g. Main is nil for an empty graph.
func Project(g Source) Projection {
	var p Projection
	start := g.StartNodeID()
	if start == "" {
		return p
	}

	main := analysis.Expand(g, start)
	p.Main = convert(&main)

	for _, id := range analysis.Orphans(g, start) {
		b := analysis.Expand(g, id)
		n := convert(&b)
		n.Status = StatusOrphan
		p.Orphans = append(p.Orphans, n)
	}
	return p
}

func convert(b *analysis.Branch) *Node {
	if b.Status == analysis.StatusMissing {
		return &Node{
			ID:      b.ID,
			Header:  "ERROR",
			Summary: "node not found",
			Label:   b.Label,
			Status:  StatusMissing,
			Class:   "node-error",
		}
	}

	n := &Node{
		ID:      b.ID,
		Kind:    b.Node.Kind,
		Header:  Header(b.Node.Kind),
		Summary: Summary(b.Node),
		Label:   b.Label,
		Status:  StatusNormal,
		Class:   Class(b.Node.Kind),
	}
	if b.Status == analysis.StatusLoop {
		n.Status = StatusLoop
		return n
	}
	for i := range b.Children {
		n.Children = append(n.Children, convert(&b.Children[i]))
	}
	return n
}

// Header returns the type caption of a node kind.
func Header(k domain.Kind) string {
	if k == domain.KindConditional {
		return "CONDITIONAL"
	}
	return strings.ToUpper(string(k))
}

// Class returns the presentation class of a node kind.
func Class(k domain.Kind) string {
	switch k {
	case domain.KindAPI:
		return "node-api"
	case domain.KindConditional:
		return "node-ifelse"
	case domain.KindPrompt:
		return "node-llm"
	case domain.KindInput:
		return "node-input"
	case domain.KindOutput:
		return "node-output"
	case domain.KindFixed:
		return "node-fixed"
	default:
		return "node-default"
	}
}

// Summary derives the one-line description of a node from its config.
func Summary(n domain.Node) string {
	cfg := n.Payload().Map()
	switch n.Kind {
	case domain.KindConditional:
		if cond := text(cfg[domain.KeyCondition]); cond != "" {
			return cond
		}
		return "?"
	case domain.KindPrompt:
		return truncate(text(cfg[domain.KeyPrompt]), promptPreview) + "..."
	case domain.KindAPI:
		method := text(cfg[domain.KeyMethod])
		if method == "" {
			method = "GET"
		}
		return method + " " + text(cfg[domain.KeyURL])
	default:
		return text(cfg[domain.KeyMessage])
	}
}

func text(v any) string {
	s, _ := v.(string)
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Walk visits n and its descendants depth-first with their depth.
func Walk(n *Node, fn func(n *Node, depth int)) {
	if n == nil {
		return
	}
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int)) {
	fn(n, depth)
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}
