package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/flowedit/internal/presentation/graph"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDOT(t *testing.T) {
	nodes := []domain.Node{
		{ID: "gate", Kind: domain.KindConditional, Config: &domain.ConditionalConfig{TrueNode: "ok", FalseNode: "ghost"}},
		node("ok", domain.KindOutput, ""),
		node("spare", domain.KindFixed, ""),
	}
	dot := graph.ToDOT(nodes, "gate", &graph.Overlay{Orphans: []string{"spare"}})

	assert.True(t, strings.HasPrefix(dot, "digraph flow {\n"))
	assert.Contains(t, dot, `"gate" [label="gate\nCONDITIONAL", shape=diamond, penwidth=2];`)
	assert.Contains(t, dot, `"ok" [label="ok\nOUTPUT", shape=note];`)
	assert.Contains(t, dot, `"spare" [label="spare\nFIXED", shape=box, fillcolor=lightgrey, style="rounded,filled,dashed"];`)
	assert.Contains(t, dot, `"ghost" [label="ghost\n(missing)", style="dashed", color=red, fontcolor=red];`)
	assert.Contains(t, dot, `"gate" -> "ok" [label="TRUE"];`)
	assert.Contains(t, dot, `"gate" -> "ghost" [label="FALSE"];`)
}

func TestRenderSVG(t *testing.T) {
	dot := graph.ToDOT([]domain.Node{node("a", domain.KindFixed, "b"), node("b", domain.KindOutput, "")}, "a", nil)
	svg, err := graph.RenderSVG(context.Background(), dot)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}
