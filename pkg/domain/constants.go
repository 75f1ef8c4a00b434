package domain

// Kind selects the transition shape and the config payload of a node.
// Values are the names used on the wire.
type Kind string

const (
	// KindFixed runs a fixed action with a free-form config.
	KindFixed Kind = "fixed"
	// KindInput waits for user input, optionally saved into a variable.
	KindInput Kind = "input"
	// KindOutput emits a message to the user.
	KindOutput Kind = "output"
	// KindAPI performs an HTTP call.
	KindAPI Kind = "api"
	// KindConditional branches on a condition to a TRUE or FALSE target.
	KindConditional Kind = "if-else"
	// KindPrompt sends a prompt to a language model.
	KindPrompt Kind = "llm"
)

// Kinds lists the known kinds in the order editors present them.
var Kinds = []Kind{KindFixed, KindInput, KindOutput, KindAPI, KindConditional, KindPrompt}

// Known reports whether k is one of the built-in kinds.
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Branches reports whether nodes of this kind route through branch targets instead of Next.
func (k Kind) Branches() bool {
	return k == KindConditional
}

// Wire field names shared by the codec and the form layer.
const (
	KeyURL       = "url"
	KeyMethod    = "method"
	KeyHeaders   = "headers"
	KeyBody      = "body"
	KeyCondition = "condition"
	KeyTrueNode  = "true_node"
	KeyFalseNode = "false_node"
	KeyPrompt    = "prompt"
	KeyModel     = "model"
	KeyMessage   = "message"
	KeyVariable  = "variable"
)

// Edge labels emitted for conditional branches.
const (
	LabelTrue  = "TRUE"
	LabelFalse = "FALSE"
)

// NullLiteral is the text form editors use for a null variable value.
const NullLiteral = "null"
