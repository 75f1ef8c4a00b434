package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowedit/pkg/form"
	"github.com/aretw0/flowedit/pkg/tree"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BrowseRow is one line of the flattened tree.
type BrowseRow struct {
	Depth  int
	Node   *tree.Node
	Orphan bool
}

// FlattenTree lists the main tree and then every orphan tree, depth-first.
func FlattenTree(p tree.Projection) []BrowseRow {
	var rows []BrowseRow
	tree.Walk(p.Main, func(n *tree.Node, depth int) {
		rows = append(rows, BrowseRow{Depth: depth, Node: n})
	})
	for _, o := range p.Orphans {
		tree.Walk(o, func(n *tree.Node, depth int) {
			rows = append(rows, BrowseRow{Depth: depth, Node: n, Orphan: true})
		})
	}
	return rows
}

// FormLookup opens the form of a node by id.
type FormLookup func(id string) (form.Form, error)

// BrowseModel is the bubbletea model of the read-only tree browser.
type BrowseModel struct {
	Rows   []BrowseRow
	Cursor int
	Offset int
	Height int

	lookup FormLookup
}

// NewBrowseModel creates a browser over the projection.
func NewBrowseModel(p tree.Projection, lookup FormLookup) BrowseModel {
	return BrowseModel{
		Rows:   FlattenTree(p),
		Height: 20,
		lookup: lookup,
	}
}

// Selected returns the node under the cursor, or nil for an empty flow.
func (m BrowseModel) Selected() *tree.Node {
	if len(m.Rows) == 0 {
		return nil
	}
	return m.Rows[m.Cursor].Node
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Rows); n > 0 {
				m.Cursor = n - 1
				if m.Cursor >= m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Flow"))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(styleDim.Render("(empty flow)"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}
	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		list.WriteString(m.rowLine(i))
		list.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		stylePane.Render(strings.TrimRight(list.String(), "\n")),
		stylePane.Render(m.detail()),
	))
	b.WriteString("\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	return b.String()
}

func (m BrowseModel) rowLine(i int) string {
	row := m.Rows[i]
	n := row.Node

	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	text := strings.Repeat("  ", row.Depth)
	if n.Label != "" {
		text += "[" + n.Label + "] "
	}
	text += n.ID

	var style lipgloss.Style
	switch {
	case i == m.Cursor:
		style = styleSelected
	case n.Status == tree.StatusMissing:
		style = styleError
	case n.Status == tree.StatusLoop:
		style = styleWarning
	case row.Orphan:
		style = styleDim
	default:
		style = styleValue
	}
	suffix := ""
	switch n.Status {
	case tree.StatusMissing:
		suffix = " ⚠"
	case tree.StatusLoop:
		suffix = " ⟳"
	}
	return cursor + style.Render(text+suffix)
}

func (m BrowseModel) detail() string {
	n := m.Selected()
	if n.Status == tree.StatusMissing {
		return styleError.Render(fmt.Sprintf("%s: missing node", n.ID))
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(n.Header+" "+n.ID) + "\n")
	if m.lookup == nil {
		b.WriteString(styleDim.Render(n.Summary))
		return b.String()
	}
	f, err := m.lookup(n.ID)
	if err != nil {
		b.WriteString(styleError.Render(err.Error()))
		return b.String()
	}
	for _, in := range f.Inputs {
		value := in.Value
		if value == "" {
			value = styleDim.Render("(empty)")
		}
		fmt.Fprintf(&b, "%s: %s\n", styleDim.Render(in.Label), value)
	}
	if f.ShowNext {
		next := f.Next
		if next == "" {
			next = form.EndOptionLabel
		}
		fmt.Fprintf(&b, "%s: %s\n", styleDim.Render("Next"), next)
	}
	writeRows(&b, "Pre update", f.PreUpdate)
	writeRows(&b, "Post update", f.PostUpdate)
	return strings.TrimRight(b.String(), "\n")
}

func writeRows(b *strings.Builder, title string, rows []form.VarRow) {
	if len(rows) == 0 {
		return
	}
	b.WriteString(styleDim.Render(title) + "\n")
	for _, r := range rows {
		fmt.Fprintf(b, "  %s = %s\n", r.Key, r.Value)
	}
}
