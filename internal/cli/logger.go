package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/flowedit/internal/logging"
	"github.com/aretw0/flowedit/pkg/domain"
)

// NewLogger builds the application logger from textual settings.
func NewLogger(level, format string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{Level: lvl, Format: f}), nil
}

// DebugHooks logs every editor event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDocumentLoad: func(ctx context.Context, e *domain.DocumentEvent) {
			if e.Err != nil {
				logger.DebugContext(ctx, "Document load failed", "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "Document loaded", "nodes", e.Nodes)
		},
		OnNodeSave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "Node saved", "node_id", e.NodeID, "kind", e.NodeKind, "created", e.Created)
		},
		OnEnvironmentsSave: func(ctx context.Context, e *domain.EnvironmentsEvent) {
			logger.DebugContext(ctx, "Environments saved", "count", e.Count)
		},
		OnProject: func(ctx context.Context, e *domain.ProjectEvent) {
			logger.DebugContext(ctx, "Tree projected", "nodes", e.Nodes, "orphans", e.Orphans, "duration", e.Duration)
		},
	}
}
