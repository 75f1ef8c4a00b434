package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the flowedit banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _                      _ _ _", "#2dd4bf"},
		{"  / _| | _____      _____  __| (_) |_", "#22d3ee"},
		{" | |_| |/ _ \\ \\ /\\ / / _ \\/ _` | | __|", "#38bdf8"},
		{" |  _| | (_) \\ V  V /  __/ (_| | | |_", "#60a5fa"},
		{" |_| |_|\\___/ \\_/\\_/ \\___|\\__,_|_|\\__|", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  flow graph editor "+version).Faint())
	fmt.Fprintln(w)
}
