package graph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/tree"
)

// ToDOT converts the node sequence to Graphviz DOT.
// Missing edge targets become dashed red placeholders; orphans from the overlay are greyed.
func ToDOT(nodes []domain.Node, start string, overlay *Overlay) string {
	orphans := make(map[string]bool)
	if overlay != nil {
		for _, id := range overlay.Orphans {
			orphans[id] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph flow {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if known[n.ID] {
			continue
		}
		known[n.ID] = true
		attrs := []string{
			fmt.Sprintf("label=%q", n.ID+"\n"+tree.Header(n.Kind)),
			"shape=" + dotShape(n.Kind),
		}
		switch {
		case n.ID == start:
			attrs = append(attrs, "penwidth=2")
		case orphans[n.ID]:
			attrs = append(attrs, "fillcolor=lightgrey", "style=\"rounded,filled,dashed\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	var missing []string
	var edges bytes.Buffer
	for _, n := range nodes {
		for _, t := range domain.Resolve(n) {
			if !known[t.ToNodeID] {
				known[t.ToNodeID] = true
				missing = append(missing, t.ToNodeID)
			}
			if t.Label != "" {
				fmt.Fprintf(&edges, "  %q -> %q [label=%q];\n", n.ID, t.ToNodeID, t.Label)
				continue
			}
			fmt.Fprintf(&edges, "  %q -> %q;\n", n.ID, t.ToNodeID)
		}
	}
	for _, id := range missing {
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"dashed\", color=red, fontcolor=red];\n", id, id+"\n(missing)")
	}

	buf.WriteString("\n")
	buf.Write(edges.Bytes())
	buf.WriteString("}\n")
	return buf.String()
}

func dotShape(k domain.Kind) string {
	switch k {
	case domain.KindConditional:
		return "diamond"
	case domain.KindAPI:
		return "component"
	case domain.KindInput:
		return "parallelogram"
	case domain.KindOutput:
		return "note"
	case domain.KindPrompt:
		return "ellipse"
	default:
		return "box"
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
