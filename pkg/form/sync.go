package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/flowedit/pkg/domain"
)

// Option is one choice of a select input.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
	// Missing marks a target that does not address any node.
	Missing bool `json:"missing,omitempty"`
}

// Input is a schema field together with its current text value.
type Input struct {
	Field
	Value   string   `json:"value"`
	Choices []Option `json:"choices,omitempty"`
}

// VarRow is one key/value row of a variable editor.
type VarRow struct {
	Key     string   `json:"key"`
	Value   string   `json:"value"`
	Options []string `json:"options,omitempty"`
}

// EndOptionLabel labels the empty target of node selects.
const EndOptionLabel = "(end / none)"

// ToForm renders the config of node as inputs for kind. When kind differs from
// the node's own kind the inputs start blank. ids feeds the node-select choices.
func ToForm(node domain.Node, kind domain.Kind, ids []string) []Input {
	values := map[string]any{}
	if node.Kind == kind {
		values = node.Payload().Map()
	}

	fields := Schema(kind)
	inputs := make([]Input, 0, len(fields))
	for _, f := range fields {
		in := Input{Field: f}
		switch f.Shape {
		case ShapeRawJSON:
			in.Value = TextValue(values)
		case ShapeSelect:
			in.Value, in.Choices = selectChoices(f.Options, TextValue(values[f.Key]))
		case ShapeNodeSelect:
			in.Value = TextValue(values[f.Key])
			in.Choices = NodeOptions(ids, in.Value)
		default:
			in.Value = TextValue(values[f.Key])
		}
		inputs = append(inputs, in)
	}
	return inputs
}

// selectChoices picks value when it is offered, else the first option, like a
// browser select does.
func selectChoices(options []string, value string) (string, []Option) {
	if len(options) == 0 {
		return value, nil
	}
	selected := options[0]
	for _, o := range options {
		if o == value {
			selected = o
			break
		}
	}
	choices := make([]Option, len(options))
	for i, o := range options {
		choices[i] = Option{Value: o, Label: o, Selected: o == selected}
	}
	return selected, choices
}

// NodeOptions lists the choices of a node-select: an empty end option first,
// then every id. A current target that is not among ids is kept as a missing option.
func NodeOptions(ids []string, current string) []Option {
	opts := make([]Option, 0, len(ids)+2)
	opts = append(opts, Option{Value: "", Label: EndOptionLabel, Selected: current == ""})
	found := current == ""
	for _, id := range ids {
		sel := id == current
		found = found || sel
		opts = append(opts, Option{Value: id, Label: id, Selected: sel})
	}
	if !found {
		opts = append(opts, Option{Value: current, Label: current + " (missing)", Selected: true, Missing: true})
	}
	return opts
}

// TextValue renders a config or variable value as editable text.
// Strings are kept verbatim, nil is empty and anything else is compact JSON.
func TextValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Outcome tells how a field value was read back.
type Outcome string

const (
	// OutcomeText means the value was taken as plain text.
	OutcomeText Outcome = "text"
	// OutcomeParsed means a structured value parsed as JSON.
	OutcomeParsed Outcome = "parsed"
	// OutcomeRaw means a structured value did not parse and was kept as text.
	OutcomeRaw Outcome = "raw"
	// OutcomeEmpty means a structured value was left blank and is omitted.
	OutcomeEmpty Outcome = "empty"
)

// FieldResult reports how one field was read back by FromForm.
type FieldResult struct {
	Key     string  `json:"key"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// FromForm reads the text values of kind's inputs back into a config.
// Unknown keys in values are ignored.
func FromForm(kind domain.Kind, values map[string]string) (domain.Config, []FieldResult, error) {
	fields := Schema(kind)
	results := make([]FieldResult, 0, len(fields))
	data := make(map[string]any, len(fields))
	var errs []error

	for _, f := range fields {
		text := values[f.Key]
		switch {
		case f.Shape == ShapeRawJSON:
			obj, err := parseObject(text)
			if err != nil {
				errs = append(errs, &FieldError{
					Key:    f.Key,
					Reason: "invalid JSON object",
					Err:    fmt.Errorf("%w: %v", domain.ErrParseFailure, err),
				})
				results = append(results, FieldResult{Key: f.Key, Outcome: OutcomeRaw, Detail: err.Error()})
				continue
			}
			results = append(results, FieldResult{Key: f.Key, Outcome: OutcomeParsed})
			for k, v := range obj {
				data[k] = v
			}
		case f.Structured:
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				results = append(results, FieldResult{Key: f.Key, Outcome: OutcomeEmpty})
				continue
			}
			var v any
			if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
				data[f.Key] = text
				results = append(results, FieldResult{Key: f.Key, Outcome: OutcomeRaw, Detail: err.Error()})
				continue
			}
			data[f.Key] = v
			results = append(results, FieldResult{Key: f.Key, Outcome: OutcomeParsed})
		default:
			data[f.Key] = text
			results = append(results, FieldResult{Key: f.Key, Outcome: OutcomeText})
		}
	}

	if len(errs) > 0 {
		return nil, results, &AggregateError{Errors: errs}
	}
	return domain.DecodeConfig(kind, data), results, nil
}

func parseObject(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return map[string]any{}, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return obj, nil
}

// VarRows renders a variable map as rows sorted by key. A nil value is shown as
// the null literal.
func VarRows(vars map[string]any, env map[string]any) []VarRow {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]VarRow, 0, len(keys))
	for _, k := range keys {
		v := vars[k]
		text := domain.NullLiteral
		if v != nil {
			text = TextValue(v)
		}
		rows = append(rows, VarRow{Key: k, Value: text, Options: VariableOptions(env, k)})
	}
	return rows
}

// Vars reads rows back into a variable map. Rows without a key are skipped and
// the null literal becomes nil. A row whose text still renders prev's value for
// that key keeps the original value, so untouched structured values survive.
// It returns nil when no row survives.
func Vars(rows []VarRow, prev map[string]any) map[string]any {
	var out map[string]any
	for _, r := range rows {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		if r.Value == domain.NullLiteral {
			out[key] = nil
			continue
		}
		if old, ok := prev[key]; ok && old != nil && TextValue(old) == r.Value {
			out[key] = domain.CloneValue(old)
			continue
		}
		out[key] = r.Value
	}
	return out
}

// VariableOptions returns the sorted environment keys, plus current when it is
// not one of them.
func VariableOptions(env map[string]any, current string) []string {
	opts := make([]string, 0, len(env)+1)
	for k := range env {
		opts = append(opts, k)
	}
	sort.Strings(opts)
	if current != "" {
		if _, ok := env[current]; !ok {
			opts = append(opts, current)
		}
	}
	return opts
}
