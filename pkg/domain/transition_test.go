package domain_test

import (
	"testing"

	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		node domain.Node
		want []domain.Transition
	}{
		{
			name: "terminal fixed node",
			node: domain.NewNode("end", domain.KindFixed),
			want: nil,
		},
		{
			name: "next pointer",
			node: domain.Node{ID: "a", Kind: domain.KindOutput, Next: "b"},
			want: []domain.Transition{{ToNodeID: "b"}},
		},
		{
			name: "both branches keep TRUE before FALSE",
			node: domain.Node{
				ID:     "check",
				Kind:   domain.KindConditional,
				Config: &domain.ConditionalConfig{TrueNode: "yes", FalseNode: "no"},
			},
			want: []domain.Transition{
				{ToNodeID: "yes", Label: domain.LabelTrue},
				{ToNodeID: "no", Label: domain.LabelFalse},
			},
		},
		{
			name: "only false branch",
			node: domain.Node{
				ID:     "check",
				Kind:   domain.KindConditional,
				Config: &domain.ConditionalConfig{FalseNode: "no"},
			},
			want: []domain.Transition{{ToNodeID: "no", Label: domain.LabelFalse}},
		},
		{
			name: "conditional ignores next",
			node: domain.Node{
				ID:     "check",
				Kind:   domain.KindConditional,
				Config: &domain.ConditionalConfig{},
				Next:   "elsewhere",
			},
			want: nil,
		},
		{
			name: "conditional with raw payload",
			node: domain.Node{
				ID:     "check",
				Kind:   domain.KindConditional,
				Config: &domain.RawConfig{For: domain.KindConditional, Data: map[string]any{"true_node": "x", "condition": map[string]any{}}},
			},
			want: []domain.Transition{{ToNodeID: "x", Label: domain.LabelTrue}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Resolve(tt.node))
		})
	}
}

func TestResolve_NonConditionalAtMostOneUnlabeledEdge(t *testing.T) {
	for _, kind := range domain.Kinds {
		if kind.Branches() {
			continue
		}
		got := domain.Resolve(domain.Node{ID: "n", Kind: kind, Next: "m"})
		if assert.Len(t, got, 1, kind) {
			assert.Empty(t, got[0].Label, kind)
		}
	}
}
