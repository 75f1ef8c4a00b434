package tui

import (
	"os"

	"github.com/aretw0/flowedit/pkg/tree"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // light or dark from the terminal background
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TreeStyle colours tree text for the given terminal profile.
// termenv.Ascii yields the zero Style.
func TreeStyle(p termenv.Profile) tree.Style {
	if p == termenv.Ascii {
		return tree.Style{}
	}
	paint := func(hex string) func(string) string {
		return func(s string) string {
			return termenv.String(s).Foreground(p.Color(hex)).String()
		}
	}
	return tree.Style{
		Header: func(s string) string { return termenv.String(s).Foreground(p.Color("#38bdf8")).Bold().String() },
		ID:     paint("#e5e7eb"),
		Label:  paint("#a78bfa"),
		Loop:   paint("#fbbf24"),
		Error:  paint("#f87171"),
		Muted:  func(s string) string { return termenv.String(s).Faint().String() },
	}
}
