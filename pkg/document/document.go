// Package document reads and writes flow documents.
//
// A document is an object with an "environments" map and a "nodes" array.
// JSON is the canonical format; YAML is accepted and produced for the same shape.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/flowedit/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the name suggested for exported documents.
const DefaultFilename = "flow.json"

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file name. Anything that is not .yaml or
// .yml is JSON.
func FormatFor(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported document format %q", s)
	}
}

// ContentType returns the media type of f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Document is a whole flow: global variables plus the ordered node sequence.
type Document struct {
	Environments map[string]any
	Nodes        []domain.Node
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{Environments: domain.CloneValues(d.Environments)}
	if d.Nodes != nil {
		out.Nodes = make([]domain.Node, len(d.Nodes))
		for i, n := range d.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	return out
}

type wireDocument struct {
	Environments map[string]any `json:"environments" yaml:"environments"`
	Nodes        []domain.Node  `json:"nodes" yaml:"nodes"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrMalformedDocument, fmt.Sprintf(format, args...))
}

// Decode parses data as a document in the given format.
// Every structural problem is reported as domain.ErrMalformedDocument.
func Decode(data []byte, format Format) (Document, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON, "":
		return decodeJSON(data)
	default:
		return Document{}, fmt.Errorf("unsupported document format %q", format)
	}
}

// Read reads all of r and decodes it.
func Read(r io.Reader, format Format) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return Decode(data, format)
}

func decodeJSON(data []byte) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Document{}, malformed("invalid JSON: %v", err)
	}
	if top == nil {
		return Document{}, malformed("document is not an object")
	}

	rawNodes, ok := top["nodes"]
	if !ok {
		return Document{}, malformed(`missing "nodes"`)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(rawNodes, &elems); err != nil || elems == nil {
		return Document{}, malformed(`"nodes" is not an array`)
	}

	doc := Document{Nodes: make([]domain.Node, 0, len(elems))}
	for i, elem := range elems {
		if first(elem) != '{' {
			return Document{}, malformed("node %d is not an object", i)
		}
		var n domain.Node
		if err := json.Unmarshal(elem, &n); err != nil {
			return Document{}, malformed("node %d: %v", i, err)
		}
		if n.ID == "" {
			return Document{}, malformed("node %d has no id", i)
		}
		doc.Nodes = append(doc.Nodes, n)
	}

	if rawEnv, ok := top["environments"]; ok {
		if err := json.Unmarshal(rawEnv, &doc.Environments); err != nil {
			return Document{}, malformed(`"environments" is not an object`)
		}
	}
	if doc.Environments == nil {
		doc.Environments = map[string]any{}
	}
	return doc, nil
}

func first(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func decodeYAML(data []byte) (Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Document{}, malformed("invalid YAML: %v", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return Document{}, malformed("document is not an object")
	}
	top := root.Content[0]

	nodes := mappingValue(top, "nodes")
	if nodes == nil {
		return Document{}, malformed(`missing "nodes"`)
	}
	if nodes.Kind != yaml.SequenceNode {
		return Document{}, malformed(`"nodes" is not an array`)
	}

	doc := Document{Nodes: make([]domain.Node, 0, len(nodes.Content))}
	for i, elem := range nodes.Content {
		if elem.Kind != yaml.MappingNode {
			return Document{}, malformed("node %d is not an object", i)
		}
		var n domain.Node
		if err := elem.Decode(&n); err != nil {
			return Document{}, malformed("node %d: %v", i, err)
		}
		if n.ID == "" {
			return Document{}, malformed("node %d has no id", i)
		}
		doc.Nodes = append(doc.Nodes, n)
	}

	if env := mappingValue(top, "environments"); env != nil && env.Tag != "!!null" {
		if env.Kind != yaml.MappingNode {
			return Document{}, malformed(`"environments" is not an object`)
		}
		if err := env.Decode(&doc.Environments); err != nil {
			return Document{}, malformed("environments: %v", err)
		}
	}
	if doc.Environments == nil {
		doc.Environments = map[string]any{}
	}
	return doc, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// Encode writes doc to w. JSON uses a 4-space indent with "environments"
// before "nodes"; both keys are always present.
func Encode(w io.Writer, doc Document, format Format) error {
	wire := wireDocument{Environments: doc.Environments, Nodes: doc.Nodes}
	if wire.Environments == nil {
		wire.Environments = map[string]any{}
	}
	if wire.Nodes == nil {
		wire.Nodes = []domain.Node{}
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(wire); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(wire); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported document format %q", format)
	}
}

// Marshal encodes doc into a byte slice.
func Marshal(doc Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
