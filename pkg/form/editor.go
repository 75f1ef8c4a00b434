package form

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/graph"
)

// Mode tells whether a form creates a node or edits an existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Form is everything an editor needs to show one node.
type Form struct {
	Mode        Mode          `json:"mode"`
	ID          string        `json:"id"`
	Kind        domain.Kind   `json:"kind"`
	Kinds       []domain.Kind `json:"kinds"`
	Inputs      []Input       `json:"inputs"`
	ShowNext    bool          `json:"show_next"`
	Next        string        `json:"next,omitempty"`
	NextOptions []Option      `json:"next_options,omitempty"`
	PreUpdate   []VarRow      `json:"pre_update"`
	PostUpdate  []VarRow      `json:"post_update"`
	// VariableKeys are the environment keys offered for new variable rows.
	VariableKeys []string `json:"variable_keys"`
}

// Draft is a filled-in form submitted for saving.
type Draft struct {
	Mode Mode `json:"mode"`
	// OriginalID is the id of the node being edited. Ignored on create.
	OriginalID string            `json:"original_id,omitempty"`
	ID         string            `json:"id"`
	Kind       domain.Kind       `json:"kind"`
	Values     map[string]string `json:"values,omitempty"`
	Next       string            `json:"next,omitempty"`
	PreUpdate  []VarRow          `json:"pre_update,omitempty"`
	PostUpdate []VarRow          `json:"post_update,omitempty"`
}

// Draft returns the submission that leaves the form as shown.
func (f Form) Draft() Draft {
	d := Draft{
		Mode:       f.Mode,
		ID:         f.ID,
		Kind:       f.Kind,
		Values:     make(map[string]string, len(f.Inputs)),
		Next:       f.Next,
		PreUpdate:  append([]VarRow(nil), f.PreUpdate...),
		PostUpdate: append([]VarRow(nil), f.PostUpdate...),
	}
	if f.Mode == ModeEdit {
		d.OriginalID = f.ID
	}
	for _, in := range f.Inputs {
		d.Values[in.Key] = in.Value
	}
	return d
}

// Result describes a successful save.
type Result struct {
	Node    domain.Node   `json:"node"`
	Created bool          `json:"created"`
	Fields  []FieldResult `json:"fields"`
}

// Editor opens and saves node forms against a graph store.
// It does not lock: the owner of the store serializes calls.
type Editor struct {
	store *graph.Store
}

// NewEditor returns an editor bound to store.
func NewEditor(store *graph.Store) *Editor {
	return &Editor{store: store}
}

// Open builds the edit form of node id. An empty kind means the node's own kind.
func (e *Editor) Open(id string, kind domain.Kind, env map[string]any) (Form, error) {
	node, ok := e.store.Get(id)
	if !ok {
		return Form{}, fmt.Errorf("open %q: %w", id, domain.ErrNodeNotFound)
	}
	if kind == "" {
		kind = node.Kind
	}
	f := e.form(ModeEdit, node, kind, env)
	f.ID = node.ID
	return f, nil
}

// New builds a blank create form. An empty kind defaults to fixed.
func (e *Editor) New(kind domain.Kind, env map[string]any) Form {
	if kind == "" {
		kind = domain.KindFixed
	}
	return e.form(ModeCreate, domain.Node{Kind: kind}, kind, env)
}

func (e *Editor) form(mode Mode, node domain.Node, kind domain.Kind, env map[string]any) Form {
	ids := e.store.IDs()
	f := Form{
		Mode:         mode,
		Kind:         kind,
		Kinds:        kindsFor(kind),
		Inputs:       ToForm(node, kind, ids),
		ShowNext:     !kind.Branches(),
		PreUpdate:    VarRows(node.PreUpdate, env),
		PostUpdate:   VarRows(node.PostUpdate, env),
		VariableKeys: VariableOptions(env, ""),
	}
	if f.ShowNext {
		f.Next = node.Next
		f.NextOptions = NodeOptions(ids, node.Next)
	}
	return f
}

// kindsFor lists the selectable kinds, keeping an unknown current kind selectable.
func kindsFor(current domain.Kind) []domain.Kind {
	kinds := append([]domain.Kind(nil), domain.Kinds...)
	if !current.Known() {
		kinds = append(kinds, current)
	}
	return kinds
}

// Save validates d and upserts the resulting node. On error the store is unchanged.
func (e *Editor) Save(d Draft) (Result, error) {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return Result{}, &FieldError{Key: "id", Reason: "required", Err: domain.ErrMissingRequiredField}
	}
	kind := d.Kind
	if kind == "" {
		kind = domain.KindFixed
	}

	var prev domain.Node
	switch d.Mode {
	case ModeEdit:
		original := strings.TrimSpace(d.OriginalID)
		if original == "" {
			original = id
		}
		node, ok := e.store.Get(original)
		if !ok {
			return Result{}, fmt.Errorf("save %q: %w", original, domain.ErrNodeNotFound)
		}
		if id != original {
			return Result{}, fmt.Errorf("save %q as %q: %w", original, id, domain.ErrImmutableID)
		}
		prev = node
	case ModeCreate, "":
		if e.store.Has(id) {
			return Result{}, fmt.Errorf("create %q: %w", id, domain.ErrDuplicateID)
		}
	default:
		return Result{}, fmt.Errorf("unknown form mode %q", d.Mode)
	}

	cfg, fields, err := FromForm(kind, d.Values)
	if err != nil {
		return Result{Fields: fields}, err
	}

	node := domain.Node{
		ID:         id,
		Kind:       kind,
		Config:     cfg,
		PreUpdate:  Vars(d.PreUpdate, prev.PreUpdate),
		PostUpdate: Vars(d.PostUpdate, prev.PostUpdate),
		// The form has no inputs for removals; keep what the node had.
		PreRemove:  prev.PreRemove,
		PostRemove: prev.PostRemove,
	}
	if !kind.Branches() {
		node.Next = strings.TrimSpace(d.Next)
	}

	created := e.store.Upsert(node)
	return Result{Node: node.Clone(), Created: created, Fields: fields}, nil
}
