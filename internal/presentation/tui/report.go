package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/flowedit/pkg/analysis"
)

// RenderReport formats an analysis report for the terminal.
func RenderReport(r analysis.Report) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Flow analysis"))
	b.WriteString("\n")
	if r.Root == "" {
		b.WriteString(styleDim.Render("  (empty flow)"))
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  start %s, %s reachable\n",
		styleValue.Render(r.Root),
		styleValue.Render(fmt.Sprint(len(r.Reachable))))

	for _, d := range r.Dangling {
		fmt.Fprintf(&b, "%s %s\n", styleError.Render(iconError),
			fmt.Sprintf("%s%s points to missing node %q", d.From, edgeLabel(d.Label), d.To))
	}
	for _, id := range r.Orphans {
		fmt.Fprintf(&b, "%s %s\n", styleWarning.Render(iconWarning),
			fmt.Sprintf("%s is disconnected (nothing points to it)", id))
	}
	for _, id := range r.Unreachable {
		fmt.Fprintf(&b, "%s %s\n", styleWarning.Render(iconWarning),
			fmt.Sprintf("%s is unreachable from %s", id, r.Root))
	}

	loops := append([]analysis.Loop(nil), r.Loops...)
	sort.Slice(loops, func(i, j int) bool {
		if loops[i].From != loops[j].From {
			return loops[i].From < loops[j].From
		}
		return loops[i].To < loops[j].To
	})
	for _, l := range loops {
		b.WriteString(styleDim.Render(fmt.Sprintf("  loop %s%s → %s", l.From, edgeLabel(l.Label), l.To)))
		b.WriteString("\n")
	}

	if r.Clean() {
		b.WriteString(styleSuccess.Render(iconSuccess + " no problems found"))
	} else {
		b.WriteString(styleError.Render(fmt.Sprintf("%s %d problem(s)", iconError,
			len(r.Dangling)+len(r.Orphans)+len(r.Unreachable))))
	}
	b.WriteString("\n")
	return b.String()
}

func edgeLabel(label string) string {
	if label == "" {
		return ""
	}
	return " [" + label + "]"
}
