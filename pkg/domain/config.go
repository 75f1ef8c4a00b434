package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Config is the kind-specific action payload of a node.
// It is a closed set: APIConfig, ConditionalConfig, PromptConfig, OutputConfig,
// InputConfig and RawConfig.
type Config interface {
	// Kind returns the node kind this payload belongs to.
	Kind() Kind
	// Map returns the wire representation (the "action_config" object).
	Map() map[string]any
	// Clone returns a deep copy.
	Clone() Config
}

// APIConfig describes an HTTP call. Headers and Body hold decoded JSON values,
// or the raw text when an editor could not parse them.
type APIConfig struct {
	URL     string         `mapstructure:"url"`
	Method  string         `mapstructure:"method"`
	Headers any            `mapstructure:"headers"`
	Body    any            `mapstructure:"body"`
	Extra   map[string]any `mapstructure:",remain"`
}

func (c *APIConfig) Kind() Kind { return KindAPI }

func (c *APIConfig) Map() map[string]any {
	m := cloneMap(c.Extra)
	putString(m, KeyURL, c.URL)
	putString(m, KeyMethod, c.Method)
	putValue(m, KeyHeaders, c.Headers)
	putValue(m, KeyBody, c.Body)
	return m
}

func (c *APIConfig) Clone() Config {
	cp := *c
	cp.Headers = CloneValue(c.Headers)
	cp.Body = CloneValue(c.Body)
	cp.Extra = cloneMapOrNil(c.Extra)
	return &cp
}

// ConditionalConfig routes to TrueNode or FalseNode depending on Condition.
// The condition is a template evaluated by the runtime, never by the editor.
type ConditionalConfig struct {
	Condition string         `mapstructure:"condition"`
	TrueNode  string         `mapstructure:"true_node"`
	FalseNode string         `mapstructure:"false_node"`
	Extra     map[string]any `mapstructure:",remain"`
}

func (c *ConditionalConfig) Kind() Kind { return KindConditional }

func (c *ConditionalConfig) Map() map[string]any {
	m := cloneMap(c.Extra)
	putString(m, KeyCondition, c.Condition)
	putString(m, KeyTrueNode, c.TrueNode)
	putString(m, KeyFalseNode, c.FalseNode)
	return m
}

func (c *ConditionalConfig) Clone() Config {
	cp := *c
	cp.Extra = cloneMapOrNil(c.Extra)
	return &cp
}

// PromptConfig sends Prompt to a language model.
type PromptConfig struct {
	Prompt string         `mapstructure:"prompt"`
	Model  string         `mapstructure:"model"`
	Extra  map[string]any `mapstructure:",remain"`
}

func (c *PromptConfig) Kind() Kind { return KindPrompt }

func (c *PromptConfig) Map() map[string]any {
	m := cloneMap(c.Extra)
	putString(m, KeyPrompt, c.Prompt)
	putString(m, KeyModel, c.Model)
	return m
}

func (c *PromptConfig) Clone() Config {
	cp := *c
	cp.Extra = cloneMapOrNil(c.Extra)
	return &cp
}

// OutputConfig shows Message to the user.
type OutputConfig struct {
	Message string         `mapstructure:"message"`
	Extra   map[string]any `mapstructure:",remain"`
}

func (c *OutputConfig) Kind() Kind { return KindOutput }

func (c *OutputConfig) Map() map[string]any {
	m := cloneMap(c.Extra)
	putString(m, KeyMessage, c.Message)
	return m
}

func (c *OutputConfig) Clone() Config {
	cp := *c
	cp.Extra = cloneMapOrNil(c.Extra)
	return &cp
}

// InputConfig optionally stores the user's answer into Variable.
type InputConfig struct {
	Variable string         `mapstructure:"variable"`
	Extra    map[string]any `mapstructure:",remain"`
}

func (c *InputConfig) Kind() Kind { return KindInput }

func (c *InputConfig) Map() map[string]any {
	m := cloneMap(c.Extra)
	putString(m, KeyVariable, c.Variable)
	return m
}

func (c *InputConfig) Clone() Config {
	cp := *c
	cp.Extra = cloneMapOrNil(c.Extra)
	return &cp
}

// RawConfig is a free-form payload. It backs fixed nodes, unknown kinds, and
// payloads whose values do not fit the typed variant of their kind.
type RawConfig struct {
	For  Kind
	Data map[string]any
}

func (c *RawConfig) Kind() Kind { return c.For }

func (c *RawConfig) Map() map[string]any { return cloneMap(c.Data) }

func (c *RawConfig) Clone() Config {
	return &RawConfig{For: c.For, Data: cloneMapOrNil(c.Data)}
}

// EmptyConfig returns the blank payload for kind.
func EmptyConfig(kind Kind) Config {
	switch kind {
	case KindAPI:
		return &APIConfig{}
	case KindConditional:
		return &ConditionalConfig{}
	case KindPrompt:
		return &PromptConfig{}
	case KindOutput:
		return &OutputConfig{}
	case KindInput:
		return &InputConfig{}
	default:
		return &RawConfig{For: kind}
	}
}

// referenceKeys are the config keys that name other nodes. They are never
// coerced: true_node=false means "no edge", not a node called "0".
var referenceKeys = map[Kind][]string{
	KindConditional: {KeyTrueNode, KeyFalseNode},
}

// DecodeConfig turns a wire "action_config" object into the typed payload for kind.
// Scalars are coerced to strings where the variant expects text, except for node
// references. When a value cannot be decoded (an object where a URL is expected,
// a boolean branch target) the payload is kept as a RawConfig so nothing is lost.
func DecodeConfig(kind Kind, data map[string]any) Config {
	cfg := EmptyConfig(kind)
	if _, raw := cfg.(*RawConfig); raw {
		return &RawConfig{For: kind, Data: cloneMapOrNil(data)}
	}
	if len(data) == 0 {
		return cfg
	}
	for _, key := range referenceKeys[kind] {
		if v, ok := data[key]; ok && v != nil {
			if _, isString := v.(string); !isString {
				return &RawConfig{For: kind, Data: cloneMap(data)}
			}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return &RawConfig{For: kind, Data: cloneMapOrNil(data)}
	}
	if err := decoder.Decode(cloneMap(data)); err != nil {
		return &RawConfig{For: kind, Data: cloneMapOrNil(data)}
	}
	return cfg
}

// CheckConfig returns an error if cfg belongs to a different kind than kind.
func CheckConfig(kind Kind, cfg Config) error {
	if cfg == nil || cfg.Kind() == kind {
		return nil
	}
	return fmt.Errorf("config for %q attached to %q node", cfg.Kind(), kind)
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func putValue(m map[string]any, key string, value any) {
	if value != nil {
		m[key] = value
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}

func cloneMapOrNil(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return cloneMap(m)
}

// CloneValue deep-copies decoded JSON/YAML values (maps, slices, scalars).
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

// CloneValues deep-copies a variable map, preserving nil.
func CloneValues(m map[string]any) map[string]any {
	return cloneMapOrNil(m)
}
