package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDocumentLoad     EventType = "document_load"
	EventNodeSave         EventType = "node_save"
	EventEnvironmentsSave EventType = "environments_save"
	EventProject          EventType = "project"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// DocumentEvent reports a successful or failed import.
type DocumentEvent struct {
	EventBase
	Nodes int   `json:"nodes"`
	Err   error `json:"-"`
}

// NodeEvent reports a node save.
type NodeEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	NodeKind Kind   `json:"node_kind"`
	Created  bool   `json:"created"`
}

// EnvironmentsEvent reports that the environment variables were replaced.
type EnvironmentsEvent struct {
	EventBase
	Count int `json:"count"`
}

// ProjectEvent reports a tree projection and how long it took.
type ProjectEvent struct {
	EventBase
	Nodes    int           `json:"nodes"`
	Orphans  int           `json:"orphans"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnDocumentLoad     func(context.Context, *DocumentEvent)
	OnNodeSave         func(context.Context, *NodeEvent)
	OnEnvironmentsSave func(context.Context, *EnvironmentsEvent)
	OnProject          func(context.Context, *ProjectEvent)
}

// ChainHooks returns hooks that call each of hooks in order. Nil callbacks are skipped.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hooks {
		out.OnDocumentLoad = chain(out.OnDocumentLoad, h.OnDocumentLoad)
		out.OnNodeSave = chain(out.OnNodeSave, h.OnNodeSave)
		out.OnEnvironmentsSave = chain(out.OnEnvironmentsSave, h.OnEnvironmentsSave)
		out.OnProject = chain(out.OnProject, h.OnProject)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
