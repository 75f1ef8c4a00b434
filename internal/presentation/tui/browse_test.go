package tui

import (
	"errors"
	"testing"

	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/form"
	"github.com/aretw0/flowedit/pkg/graph"
	"github.com/aretw0/flowedit/pkg/tree"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProjection() tree.Projection {
	g := graph.New()
	g.Load([]domain.Node{
		{ID: "start", Kind: domain.KindOutput, Config: &domain.OutputConfig{Message: "hi"}, Next: "check"},
		{ID: "check", Kind: domain.KindConditional, Config: &domain.ConditionalConfig{Condition: "x", TrueNode: "start", FalseNode: "gone"}},
		{ID: "lonely", Kind: domain.KindFixed},
	})
	return tree.Project(g)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m BrowseModel, keys ...string) (BrowseModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(BrowseModel)
	}
	return m, cmd
}

func TestFlattenTree(t *testing.T) {
	rows := FlattenTree(sampleProjection())
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Node.ID
	}
	assert.Equal(t, []string{"start", "check", "start", "gone", "lonely"}, ids)
	assert.Equal(t, 2, rows[2].Depth)
	assert.True(t, rows[4].Orphan)
}

func TestBrowseModel_Navigation(t *testing.T) {
	m := NewBrowseModel(sampleProjection(), nil)
	assert.Equal(t, "start", m.Selected().ID)

	m, _ = press(m, "up")
	assert.Equal(t, 0, m.Cursor)

	m, _ = press(m, "down", "j")
	assert.Equal(t, 2, m.Cursor)
	assert.Equal(t, tree.StatusLoop, m.Selected().Status)

	m, _ = press(m, "G")
	assert.Equal(t, "lonely", m.Selected().ID)
	m, _ = press(m, "down")
	assert.Equal(t, 4, m.Cursor)

	m, _ = press(m, "g")
	assert.Equal(t, 0, m.Cursor)
}

func TestBrowseModel_Scrolls(t *testing.T) {
	m := NewBrowseModel(sampleProjection(), nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	m = next.(BrowseModel)
	assert.Equal(t, 5, m.Height)

	m.Height = 2
	m, _ = press(m, "down", "down", "down")
	assert.Equal(t, 3, m.Cursor)
	assert.Equal(t, 2, m.Offset)

	m, _ = press(m, "up", "up", "up")
	assert.Equal(t, 0, m.Offset)
}

func TestBrowseModel_Quit(t *testing.T) {
	m := NewBrowseModel(sampleProjection(), nil)
	_, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestBrowseModel_View(t *testing.T) {
	lookup := func(id string) (form.Form, error) {
		if id == "start" {
			return form.Form{
				Inputs:   []form.Input{{Field: form.Field{Key: "message", Label: "Message"}, Value: "hi"}},
				ShowNext: true,
				Next:     "check",
			}, nil
		}
		return form.Form{}, errors.New("boom")
	}
	m := NewBrowseModel(sampleProjection(), lookup)

	view := m.View()
	assert.Contains(t, view, "Message")
	assert.Contains(t, view, "check")
	assert.Contains(t, view, "[1/5]")

	m, _ = press(m, "down")
	assert.Contains(t, m.View(), "boom")

	m, _ = press(m, "down", "down")
	assert.Contains(t, m.View(), "gone: missing node")
}

func TestBrowseModel_Empty(t *testing.T) {
	m := NewBrowseModel(tree.Projection{}, nil)
	assert.Nil(t, m.Selected())
	m, _ = press(m, "down")
	assert.Equal(t, 0, m.Cursor)
	assert.Contains(t, m.View(), "(empty flow)")
}
