package form

import (
	"github.com/aretw0/flowedit/pkg/domain"
)

// Shape is the input widget a field is edited with.
type Shape string

const (
	ShapeText       Shape = "text"
	ShapeSelect     Shape = "select"
	ShapeNodeSelect Shape = "node-select"
	ShapeTextArea   Shape = "textarea"
	ShapeRawJSON    Shape = "raw-json"
)

// Field describes one config input of a node kind.
type Field struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Shape       Shape    `json:"shape"`
	Options     []string `json:"options,omitempty"`
	Rows        int      `json:"rows,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	// Structured fields hold JSON values rendered as text.
	Structured bool `json:"structured,omitempty"`
}

// RawConfigKey is the key of the free-form JSON field of kinds without a schema.
const RawConfigKey = "action_config"

// HTTPMethods are the methods offered for API nodes.
var HTTPMethods = []string{"GET", "POST", "PUT", "DELETE"}

var schemas = map[domain.Kind][]Field{
	domain.KindAPI: {
		{Key: domain.KeyURL, Label: "URL", Shape: ShapeText, Placeholder: "https://..."},
		{Key: domain.KeyMethod, Label: "Method", Shape: ShapeSelect, Options: HTTPMethods},
		{Key: domain.KeyHeaders, Label: "Headers (JSON)", Shape: ShapeTextArea, Rows: 2, Structured: true},
		{Key: domain.KeyBody, Label: "Body (JSON)", Shape: ShapeTextArea, Rows: 4, Structured: true},
	},
	domain.KindConditional: {
		{Key: domain.KeyCondition, Label: "Condition (template)", Shape: ShapeText, Placeholder: "context.value > 10"},
		{Key: domain.KeyTrueNode, Label: "Next if TRUE", Shape: ShapeNodeSelect},
		{Key: domain.KeyFalseNode, Label: "Next if FALSE", Shape: ShapeNodeSelect},
	},
	domain.KindPrompt: {
		{Key: domain.KeyPrompt, Label: "Prompt", Shape: ShapeTextArea, Rows: 6},
		{Key: domain.KeyModel, Label: "Model", Shape: ShapeText, Placeholder: "gpt-4o"},
	},
	domain.KindOutput: {
		{Key: domain.KeyMessage, Label: "Message", Shape: ShapeTextArea},
	},
	domain.KindInput: {
		{Key: domain.KeyVariable, Label: "Save to variable (optional)", Shape: ShapeText},
	},
}

var rawSchema = []Field{
	{Key: RawConfigKey, Label: "Action config (JSON)", Shape: ShapeRawJSON, Rows: 6, Structured: true},
}

// Schema returns the fields of kind. Kinds without a dedicated schema get a
// single raw JSON field.
func Schema(kind domain.Kind) []Field {
	if fields, ok := schemas[kind]; ok {
		return append([]Field(nil), fields...)
	}
	return append([]Field(nil), rawSchema...)
}
