package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowedit/pkg/analysis"
	"github.com/aretw0/flowedit/pkg/domain"
)

// Overlay marks analysis findings on a rendered graph.
type Overlay struct {
	Orphans []string
	// Missing lists edge targets that do not address any node.
	Missing []string
}

// OverlayFrom collects the findings of r worth highlighting.
func OverlayFrom(r analysis.Report) *Overlay {
	o := &Overlay{Orphans: append([]string(nil), r.Orphans...)}
	seen := make(map[string]bool)
	for _, d := range r.Dangling {
		if !seen[d.To] {
			seen[d.To] = true
			o.Missing = append(o.Missing, d.To)
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart from the node sequence.
// Shapes follow the node kind:
// - Start: ((Circle))
// - Conditional: {Rhombus}
// - API: [[Subroutine]]
// - Input: [/Parallelogram/]
// - Output: [\Parallelogram\]
// - Prompt: ([Stadium])
// - Default: [Rectangle]
func GenerateMermaid(nodes []domain.Node, start string, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		if seen[node.ID] {
			continue
		}
		seen[node.ID] = true
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := mermaidShape(node.Kind)
		if node.ID == start {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(node.ID), closer)

		for _, t := range domain.Resolve(node) {
			safeTo := sanitizeMermaidID(t.ToNodeID)
			arrow := "-->"
			if t.Label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", t.Label)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, safeTo)
		}
	}

	if overlay != nil && (len(overlay.Orphans) > 0 || len(overlay.Missing) > 0) {
		sb.WriteString("\n    %% Analysis\n")
		sb.WriteString("    classDef orphan fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4 2,color:#000;\n")
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		for _, id := range overlay.Orphans {
			fmt.Fprintf(&sb, "    class %s orphan;\n", sanitizeMermaidID(id))
		}
		for _, id := range overlay.Missing {
			safeID := sanitizeMermaidID(id)
			fmt.Fprintf(&sb, "    %s[\"%s (missing)\"]\n", safeID, escapeMermaidLabel(id))
			fmt.Fprintf(&sb, "    class %s missing;\n", safeID)
		}
	}

	return sb.String()
}

func mermaidShape(k domain.Kind) (string, string) {
	switch k {
	case domain.KindConditional:
		return "{", "}"
	case domain.KindAPI:
		return "[[", "]]"
	case domain.KindInput:
		return "[/", "/]"
	case domain.KindOutput:
		return "[\\", "\\]"
	case domain.KindPrompt:
		return "([", "])"
	default:
		return "[", "]"
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
