package analysis_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/aretw0/flowedit/pkg/analysis"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(id, next string) domain.Node {
	return domain.Node{ID: id, Kind: domain.KindFixed, Config: domain.EmptyConfig(domain.KindFixed), Next: next}
}

func branch(id, onTrue, onFalse string) domain.Node {
	return domain.Node{
		ID:     id,
		Kind:   domain.KindConditional,
		Config: &domain.ConditionalConfig{Condition: "x", TrueNode: onTrue, FalseNode: onFalse},
	}
}

func load(nodes ...domain.Node) *graph.Store {
	s := graph.New()
	s.Load(nodes)
	return s
}

func TestExpand_TwoNodeCycle(t *testing.T) {
	g := load(chain("a", "b"), chain("b", "a"))

	root := analysis.Expand(g, "a")
	assert.Equal(t, analysis.StatusExpanded, root.Status)
	require.Len(t, root.Children, 1)

	b := root.Children[0]
	assert.Equal(t, "b", b.ID)
	assert.Equal(t, analysis.StatusExpanded, b.Status)
	require.Len(t, b.Children, 1)

	loop := b.Children[0]
	assert.Equal(t, "a", loop.ID)
	assert.Equal(t, analysis.StatusLoop, loop.Status)
	assert.Empty(t, loop.Children)

	assert.Empty(t, analysis.Orphans(g, "a"))
}

func TestExpand_SelfLoop(t *testing.T) {
	g := load(chain("a", "a"))
	root := analysis.Expand(g, "a")
	require.Len(t, root.Children, 1)
	assert.Equal(t, analysis.StatusLoop, root.Children[0].Status)
}

func TestExpand_MissingTargetUnderTrueEdge(t *testing.T) {
	g := load(branch("check", "x", "done"), chain("done", ""))

	root := analysis.Expand(g, "check")
	require.Len(t, root.Children, 2)

	missing := root.Children[0]
	assert.Equal(t, "x", missing.ID)
	assert.Equal(t, domain.LabelTrue, missing.Label)
	assert.Equal(t, analysis.StatusMissing, missing.Status)

	done := root.Children[1]
	assert.Equal(t, domain.LabelFalse, done.Label)
	assert.Equal(t, analysis.StatusExpanded, done.Status, "siblings keep expanding past a missing node")
}

func TestExpand_SiblingsDoNotShareVisitedSet(t *testing.T) {
	// check --TRUE--> shared --> tail
	//       --FALSE-> shared --> tail
	g := load(branch("check", "shared", "shared"), chain("shared", "tail"), chain("tail", ""))

	root := analysis.Expand(g, "check")
	require.Len(t, root.Children, 2)
	for _, child := range root.Children {
		assert.Equal(t, analysis.StatusExpanded, child.Status, child.Label)
		require.Len(t, child.Children, 1)
		assert.Equal(t, "tail", child.Children[0].ID)
	}
}

func TestExpand_LoopIsPathLocal(t *testing.T) {
	// a -> check; check TRUE -> a (loop), FALSE -> b -> end
	g := load(chain("a", "check"), branch("check", "a", "b"), chain("b", "end"), chain("end", ""))

	root := analysis.Expand(g, "a")
	check := root.Children[0]
	require.Len(t, check.Children, 2)
	assert.Equal(t, analysis.StatusLoop, check.Children[0].Status)
	assert.Equal(t, analysis.StatusExpanded, check.Children[1].Status)
	assert.Equal(t, "end", check.Children[1].Children[0].ID)
}

func TestOrphans(t *testing.T) {
	g := load(chain("start", "end"), chain("end", ""), chain("c", "end"))
	assert.Equal(t, []string{"c"}, analysis.Orphans(g, "start"))

	// Being targeted by an orphan is enough to not be an orphan.
	g = load(chain("start", ""), chain("c", "d"), chain("d", ""))
	assert.Equal(t, []string{"c"}, analysis.Orphans(g, "start"))
}

func TestAnalyze(t *testing.T) {
	g := load(
		chain("start", "check"),
		branch("check", "ghost", "start"),
		chain("lonely", ""),
		chain("island1", "island2"),
		chain("island2", "island1"),
	)

	r := analysis.Analyze(g, "start")
	assert.Equal(t, map[string]bool{"start": true, "check": false}, r.Reachable)
	assert.Equal(t, []string{"lonely"}, r.Orphans)
	assert.Equal(t, []string{"island1", "island2"}, r.Unreachable)
	assert.Equal(t, []analysis.Dangling{{From: "check", Label: domain.LabelTrue, To: "ghost"}}, r.Dangling)
	assert.Equal(t, []analysis.Loop{{From: "check", Label: domain.LabelFalse, To: "start"}}, r.Loops)
	assert.False(t, r.Clean())

	clean := analysis.Analyze(load(chain("a", "b"), chain("b", "")), "a")
	assert.True(t, clean.Clean())
}

func TestPath(t *testing.T) {
	var p *analysis.Path
	assert.False(t, p.Contains("a"))
	assert.Equal(t, 0, p.Len())

	a := p.With("a")
	ab := a.With("b")
	ac := a.With("c")

	assert.True(t, ab.Contains("a"))
	assert.True(t, ab.Contains("b"))
	assert.False(t, ab.Contains("c"), "siblings are isolated")
	assert.False(t, ac.Contains("b"))
	assert.Equal(t, []string{"a", "b"}, ab.IDs())
	assert.Equal(t, 2, ac.Len())
}

// randomGraph builds a graph where every node may point anywhere, including
// itself and ids that do not exist.
func randomGraph(rng *rand.Rand, size int) *graph.Store {
	pick := func() string {
		switch n := rng.Intn(size + 2); {
		case n == size:
			return ""
		case n == size+1:
			return "ghost"
		default:
			return fmt.Sprintf("n%d", n)
		}
	}
	nodes := make([]domain.Node, size)
	for i := range nodes {
		id := fmt.Sprintf("n%d", i)
		if rng.Intn(3) == 0 {
			nodes[i] = branch(id, pick(), pick())
		} else {
			nodes[i] = chain(id, pick())
		}
	}
	return load(nodes...)
}

func TestProperties_RandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		g := randomGraph(rng, 1+rng.Intn(7))
		start := g.StartNodeID()

		root := analysis.Expand(g, start)

		// Cycle containment: no id repeats on any root-to-leaf path, except the
		// final loop-marked leaf.
		var check func(b analysis.Branch, path *analysis.Path)
		check = func(b analysis.Branch, path *analysis.Path) {
			if path.Contains(b.ID) {
				require.Equal(t, analysis.StatusLoop, b.Status)
				require.Empty(t, b.Children)
				return
			}
			require.LessOrEqual(t, path.Len(), g.Len())
			for _, c := range b.Children {
				check(c, path.With(b.ID))
			}
		}
		check(root, nil)

		branches := 0
		analysis.Walk(&root, func(_, _ *analysis.Branch) { branches++ })
		size, ok := analysis.Size(g, start, 0)
		assert.True(t, ok)
		assert.Equal(t, branches, size)
		assert.Equal(t, analysis.Analyze(g, start).Clean(), analysis.Clean(g, start))

		// Orphan completeness.
		targets := analysis.Targets(g)
		orphans := make(map[string]bool)
		for _, id := range analysis.Orphans(g, start) {
			orphans[id] = true
		}
		for _, id := range g.IDs() {
			want := id != start && !targets[id]
			assert.Equal(t, want, orphans[id], "orphan status of %s", id)
		}
	}
}

func diamonds(n int) *graph.Store {
	var nodes []domain.Node
	for i := 0; i < n; i++ {
		next := fmt.Sprintf("d%d", i+1)
		nodes = append(nodes,
			branch(fmt.Sprintf("d%d", i), fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i)),
			chain(fmt.Sprintf("a%d", i), next),
			chain(fmt.Sprintf("b%d", i), next),
		)
	}
	nodes = append(nodes, chain(fmt.Sprintf("d%d", n), ""))
	return load(nodes...)
}

func TestSize_StopsAtLimit(t *testing.T) {
	g := diamonds(2)
	size, ok := analysis.Size(g, "d0", 0)
	require.True(t, ok)
	// d0, two arms, two d1, four arms, four d2.
	assert.Equal(t, 1+2+2+4+4, size)

	size, ok = analysis.Size(g, "d0", 13)
	assert.True(t, ok)
	assert.Equal(t, 13, size)

	// 2^40 paths; the count gives up right after the limit.
	size, ok = analysis.Size(diamonds(40), "d0", 1000)
	assert.False(t, ok)
	assert.Equal(t, 1001, size)
}

func TestClean(t *testing.T) {
	assert.True(t, analysis.Clean(load(chain("a", "b"), chain("b", "a")), "a"))
	assert.True(t, analysis.Clean(diamonds(40), "d0"))
	assert.False(t, analysis.Clean(load(chain("a", "ghost")), "a"), "dangling")
	assert.False(t, analysis.Clean(load(chain("a", ""), chain("b", "")), "a"), "orphan")
	assert.False(t, analysis.Clean(load(chain("a", ""), chain("b", "c"), chain("c", "b")), "a"), "unreachable cycle")
	assert.True(t, analysis.Clean(load(), ""))
}
