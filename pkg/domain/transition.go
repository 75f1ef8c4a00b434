package domain

// Transition is a directed, optionally labeled edge to another node.
// The target need not exist; dangling edges are a normal condition.
type Transition struct {
	ToNodeID string `json:"to_node_id" yaml:"to"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Resolve derives the outgoing edges of a node.
//
// Conditional nodes yield their TRUE edge then their FALSE edge, each only when
// the target is set. Every other kind yields one unlabeled edge to Next, or none.
// Results are never cached; call it again after every edit.
func Resolve(n Node) []Transition {
	if n.Kind.Branches() {
		onTrue, onFalse := BranchTargets(n)
		var out []Transition
		if onTrue != "" {
			out = append(out, Transition{ToNodeID: onTrue, Label: LabelTrue})
		}
		if onFalse != "" {
			out = append(out, Transition{ToNodeID: onFalse, Label: LabelFalse})
		}
		return out
	}
	if n.Next == "" {
		return nil
	}
	return []Transition{{ToNodeID: n.Next}}
}

// BranchTargets returns the TRUE and FALSE targets of a conditional node.
func BranchTargets(n Node) (onTrue, onFalse string) {
	switch cfg := n.Config.(type) {
	case *ConditionalConfig:
		return cfg.TrueNode, cfg.FalseNode
	case *RawConfig:
		// Payloads that failed typed decoding still expose string targets.
		onTrue, _ = cfg.Data[KeyTrueNode].(string)
		onFalse, _ = cfg.Data[KeyFalseNode].(string)
		return onTrue, onFalse
	}
	return "", ""
}
