package flowedit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/flowedit/internal/logging"
	"github.com/aretw0/flowedit/pkg/analysis"
	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/form"
	"github.com/aretw0/flowedit/pkg/graph"
	"github.com/aretw0/flowedit/pkg/tree"
)

// Editor is the high-level entry point for editing one flow document.
// It is not safe for concurrent use; callers sharing an Editor serialize access.
type Editor struct {
	store  *graph.Store
	env    map[string]any
	forms  *form.Editor
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	Name   string
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithName labels the editor, typically with the workspace name.
func WithName(name string) Option {
	return func(e *Editor) {
		e.Name = name
	}
}

// New returns an Editor holding an empty document.
func New(opts ...Option) *Editor {
	e := &Editor{
		store: graph.New(),
		env:   map[string]any{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.forms = form.NewEditor(e.store)

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.Name != "" {
		e.logger = e.logger.With("document", e.Name)
	}
	return e
}

// Import decodes a document from r and replaces the current one.
// On failure the current document is left untouched.
func (e *Editor) Import(ctx context.Context, r io.Reader, format document.Format) error {
	doc, err := document.Read(r, format)
	if err != nil {
		e.logger.Warn("import rejected", "format", format, "err", err)
		e.emitLoad(ctx, 0, err)
		return err
	}
	e.Restore(doc)
	e.logger.Info("document imported", "nodes", len(doc.Nodes), "environments", len(doc.Environments))
	e.emitLoad(ctx, len(doc.Nodes), nil)
	return nil
}

func (e *Editor) emitLoad(ctx context.Context, nodes int, err error) {
	if e.hooks.OnDocumentLoad == nil {
		return
	}
	e.hooks.OnDocumentLoad(ctx, &domain.DocumentEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDocumentLoad},
		Nodes:     nodes,
		Err:       err,
	})
}

// Export writes the current document to w.
func (e *Editor) Export(w io.Writer, format document.Format) error {
	if err := document.Encode(w, e.Snapshot(), format); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Snapshot returns a deep copy of the current document.
func (e *Editor) Snapshot() document.Document {
	return document.Document{
		Environments: domain.CloneValues(e.env),
		Nodes:        e.store.Nodes(),
	}
}

// Restore replaces the current document with a copy of doc. No hooks fire.
func (e *Editor) Restore(doc document.Document) {
	e.store.Load(doc.Nodes)
	e.env = domain.CloneValues(doc.Environments)
	if e.env == nil {
		e.env = map[string]any{}
	}
}

// Tree projects the graph into its main tree and one tree per orphan.
func (e *Editor) Tree(ctx context.Context) tree.Projection {
	began := time.Now()
	p := tree.Project(e.store)
	if e.hooks.OnProject != nil {
		e.hooks.OnProject(ctx, &domain.ProjectEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventProject},
			Nodes:     e.store.Len(),
			Orphans:   len(p.Orphans),
			Duration:  time.Since(began),
		})
	}
	return p
}

// Analyze reports reachability, dangling references and loops from the start node.
func (e *Editor) Analyze() analysis.Report {
	return analysis.Analyze(e.store, e.store.StartNodeID())
}

// Clean reports whether Analyze would find nothing dangling, orphaned or
// unreachable. It runs in linear time and never expands paths.
func (e *Editor) Clean() bool {
	return analysis.Clean(e.store, e.store.StartNodeID())
}

// DefaultExpansionLimit is the branch budget the network adapters apply before
// projecting or analyzing a document.
const DefaultExpansionLimit = 100_000

// CheckExpansion returns domain.ErrExpansionLimit when projecting the tree
// (main plus orphan trees) would produce more than limit branches. The cost is
// bounded by limit. A limit of zero or less accepts everything.
func (e *Editor) CheckExpansion(limit int) error {
	if limit <= 0 {
		return nil
	}
	start := e.store.StartNodeID()
	var roots []string
	if start != "" {
		roots = append(roots, start)
	}
	roots = append(roots, analysis.Orphans(e.store, start)...)

	total := 0
	for _, root := range roots {
		// Every root adds at least one branch, and Size reads 0 as "no limit".
		remaining := limit - total
		if remaining <= 0 {
			return fmt.Errorf("%w: more than %d branches", domain.ErrExpansionLimit, limit)
		}
		n, ok := analysis.Size(e.store, root, remaining)
		if !ok {
			return fmt.Errorf("%w: more than %d branches", domain.ErrExpansionLimit, limit)
		}
		total += n
	}
	return nil
}

// Inspect returns a copy of the node sequence.
func (e *Editor) Inspect() []domain.Node {
	return e.store.Nodes()
}

// StartNodeID returns the id the flow starts from.
func (e *Editor) StartNodeID() string {
	return e.store.StartNodeID()
}

// OpenNode builds the edit form of node id. An empty kind keeps the node's kind.
func (e *Editor) OpenNode(id string, kind domain.Kind) (form.Form, error) {
	return e.forms.Open(id, kind, e.env)
}

// NewNode builds a blank create form for kind.
func (e *Editor) NewNode(kind domain.Kind) form.Form {
	return e.forms.New(kind, e.env)
}

// SaveNode validates and stores a submitted form.
func (e *Editor) SaveNode(ctx context.Context, d form.Draft) (form.Result, error) {
	res, err := e.forms.Save(d)
	if err != nil {
		e.logger.Debug("node rejected", "node_id", d.ID, "mode", d.Mode, "err", err)
		return res, err
	}
	for _, f := range res.Fields {
		if f.Outcome == form.OutcomeRaw {
			e.logger.Warn("field kept as raw text", "node_id", res.Node.ID, "field", f.Key, "detail", f.Detail)
		}
	}
	e.logger.Info("node saved", "node_id", res.Node.ID, "kind", res.Node.Kind, "created", res.Created)
	if e.hooks.OnNodeSave != nil {
		e.hooks.OnNodeSave(ctx, &domain.NodeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeSave},
			NodeID:    res.Node.ID,
			NodeKind:  res.Node.Kind,
			Created:   res.Created,
		})
	}
	return res, nil
}

// Environments returns a copy of the environment variables.
func (e *Editor) Environments() map[string]any {
	return domain.CloneValues(e.env)
}

// EnvironmentRows returns the environment variables as editable rows.
func (e *Editor) EnvironmentRows() []form.VarRow {
	return form.EnvironmentRows(e.env)
}

// SaveEnvironments replaces the environment variables with rows.
func (e *Editor) SaveEnvironments(ctx context.Context, rows []form.VarRow) map[string]any {
	e.env = form.BuildEnvironments(rows)
	e.logger.Info("environments saved", "count", len(e.env))
	if e.hooks.OnEnvironmentsSave != nil {
		e.hooks.OnEnvironmentsSave(ctx, &domain.EnvironmentsEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventEnvironmentsSave},
			Count:     len(e.env),
		})
	}
	return e.Environments()
}
