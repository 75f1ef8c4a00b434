package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Node is one step of a flow.
// ID is the only addressing mechanism; edges reference nodes by ID.
type Node struct {
	ID     string
	Kind   Kind
	Config Config

	// Next is the single successor of non-branching kinds. Conditional nodes
	// route through their ConditionalConfig instead.
	Next string

	// PreUpdate and PostUpdate map variable names to literal values (nil means null).
	// They are stored, never evaluated.
	PreUpdate  map[string]any
	PostUpdate map[string]any

	PreRemove  []string
	PostRemove []string
}

// NewNode returns a node of the given kind with a blank config.
func NewNode(id string, kind Kind) Node {
	return Node{ID: id, Kind: kind, Config: EmptyConfig(kind)}
}

// Payload returns the node config, falling back to a blank config for its kind.
func (n Node) Payload() Config {
	if n.Config == nil {
		return EmptyConfig(n.Kind)
	}
	return n.Config
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	cp := n
	if n.Config != nil {
		cp.Config = n.Config.Clone()
	}
	cp.PreUpdate = CloneValues(n.PreUpdate)
	cp.PostUpdate = CloneValues(n.PostUpdate)
	if n.PreRemove != nil {
		cp.PreRemove = append([]string(nil), n.PreRemove...)
	}
	if n.PostRemove != nil {
		cp.PostRemove = append([]string(nil), n.PostRemove...)
	}
	return cp
}

// wireNode is the document shape of a node.
type wireNode struct {
	ID           string         `json:"id" yaml:"id"`
	Type         Kind           `json:"type" yaml:"type"`
	ActionConfig map[string]any `json:"action_config" yaml:"action_config"`
	Next         string         `json:"next,omitempty" yaml:"next,omitempty"`
	PreUpdate    map[string]any `json:"pre_update,omitempty" yaml:"pre_update,omitempty"`
	PostUpdate   map[string]any `json:"post_update,omitempty" yaml:"post_update,omitempty"`
	PreRemove    []string       `json:"pre_remove,omitempty" yaml:"pre_remove,omitempty"`
	PostRemove   []string       `json:"post_remove,omitempty" yaml:"post_remove,omitempty"`
}

func (n Node) toWire() wireNode {
	return wireNode{
		ID:           n.ID,
		Type:         n.Kind,
		ActionConfig: n.Payload().Map(),
		Next:         n.Next,
		PreUpdate:    n.PreUpdate,
		PostUpdate:   n.PostUpdate,
		PreRemove:    n.PreRemove,
		PostRemove:   n.PostRemove,
	}
}

func (n *Node) fromWire(w wireNode) {
	*n = Node{
		ID:         w.ID,
		Kind:       w.Type,
		Config:     DecodeConfig(w.Type, w.ActionConfig),
		Next:       w.Next,
		PreUpdate:  w.PreUpdate,
		PostUpdate: w.PostUpdate,
		PreRemove:  w.PreRemove,
		PostRemove: w.PostRemove,
	}
}

// MarshalJSON encodes the node in document form.
// HTML characters are left unescaped so URLs and templates read as typed.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(n.toWire()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a node from document form.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode node: %w", err)
	}
	n.fromWire(w)
	return nil
}

// MarshalYAML encodes the node in document form.
func (n Node) MarshalYAML() (any, error) {
	return n.toWire(), nil
}

// UnmarshalYAML decodes a node from document form.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var w wireNode
	if err := value.Decode(&w); err != nil {
		return fmt.Errorf("decode node: %w", err)
	}
	n.fromWire(w)
	return nil
}
