package tree

import (
	"fmt"
	"io"
	"strings"
)

// Style decorates rendered fragments. The zero Style renders plain text.
type Style struct {
	Header func(kind string) string
	ID     func(id string) string
	Label  func(label string) string
	Loop   func(s string) string
	Error  func(s string) string
	Muted  func(s string) string
}

func apply(f func(string) string, s string) string {
	if f == nil {
		return s
	}
	return f(s)
}

// Text writes the projection as an indented ASCII tree.
func Text(w io.Writer, p Projection, style Style) error {
	var sb strings.Builder
	if p.Main == nil {
		sb.WriteString(apply(style.Muted, "(empty flow)") + "\n")
	} else {
		writeText(&sb, p.Main, "", "", style)
	}
	if len(p.Orphans) > 0 {
		sb.WriteString("\n" + apply(style.Muted, "Disconnected nodes") + "\n")
		for _, o := range p.Orphans {
			writeText(&sb, o, "", "", style)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeText(sb *strings.Builder, n *Node, prefix, childPrefix string, style Style) {
	sb.WriteString(prefix)
	sb.WriteString(line(n, style))
	sb.WriteString("\n")
	for i, c := range n.Children {
		connector, next := "├── ", "│   "
		if i == len(n.Children)-1 {
			connector, next = "└── ", "    "
		}
		writeText(sb, c, childPrefix+connector, childPrefix+next, style)
	}
}

func line(n *Node, style Style) string {
	var sb strings.Builder
	if n.Label != "" {
		sb.WriteString(apply(style.Label, "["+n.Label+"]") + " ")
	}
	if n.Status == StatusMissing {
		sb.WriteString(apply(style.Error, fmt.Sprintf("⚠ %s: %s", n.ID, n.Summary)))
		return sb.String()
	}
	sb.WriteString(apply(style.Header, n.Header) + " " + apply(style.ID, n.ID))
	if n.Summary != "" {
		sb.WriteString(apply(style.Muted, " · "+oneLine(n.Summary)))
	}
	switch n.Status {
	case StatusLoop:
		sb.WriteString(" " + apply(style.Loop, "⟳ loop"))
	case StatusOrphan:
		sb.WriteString(" " + apply(style.Muted, "(disconnected)"))
	}
	return sb.String()
}

// Markdown renders the projection as a nested Markdown list.
func Markdown(p Projection) string {
	var sb strings.Builder
	sb.WriteString("# Flow\n\n")
	if p.Main == nil {
		sb.WriteString("_Empty flow._\n")
	} else {
		writeMarkdown(&sb, p.Main, 0)
	}
	if len(p.Orphans) > 0 {
		sb.WriteString("\n## Disconnected nodes\n\n")
		for _, o := range p.Orphans {
			writeMarkdown(&sb, o, 0)
		}
	}
	return sb.String()
}

func writeMarkdown(sb *strings.Builder, n *Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("- ")
	if n.Label != "" {
		fmt.Fprintf(sb, "_%s_ → ", n.Label)
	}
	if n.Status == StatusMissing {
		fmt.Fprintf(sb, "⚠ **ERROR** `%s`: %s\n", n.ID, n.Summary)
		return
	}
	fmt.Fprintf(sb, "**%s** `%s`", n.Header, n.ID)
	if n.Summary != "" {
		fmt.Fprintf(sb, ": %s", escapeMarkdown(oneLine(n.Summary)))
	}
	if n.Status == StatusLoop {
		sb.WriteString(" ⟳ _loop_")
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		writeMarkdown(sb, c, depth+1)
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var markdownEscaper = strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
