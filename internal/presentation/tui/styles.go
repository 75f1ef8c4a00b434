package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSuccess  = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning  = lipgloss.NewStyle().Foreground(colorYellow)
	styleError    = lipgloss.NewStyle().Foreground(colorRed)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleValue    = lipgloss.NewStyle().Foreground(colorWhite)
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	stylePane     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
)
