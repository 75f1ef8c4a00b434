package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/flowedit"
	"github.com/aretw0/flowedit/internal/cli"
	"github.com/aretw0/flowedit/internal/metrics"
	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/workspace"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// openEditor loads a flow file with the CLI logger and debug hooks attached.
func openEditor(ctx context.Context, path string) (*flowedit.Editor, error) {
	return cli.OpenFile(ctx, path,
		flowedit.WithLogger(logger),
		flowedit.WithLifecycleHooks(cli.DebugHooks(logger)),
	)
}

// workspaces opens the configured store and wraps it in a manager whose
// editors record into reg.
func workspaces(reg prometheus.Registerer) (*workspace.Manager, *cli.Backend, error) {
	backend, err := cli.OpenStore(cfg.Storage, logger)
	if err != nil {
		return nil, nil, err
	}

	hooks := cli.DebugHooks(logger)
	if reg != nil {
		hooks = domain.ChainHooks(metrics.New(reg).Hooks(), hooks)
	}

	opts := []workspace.Option{
		workspace.WithLogger(logger),
		workspace.WithEditorOptions(flowedit.WithLifecycleHooks(hooks)),
	}
	if backend.Locker != nil {
		opts = append(opts, workspace.WithLocker(backend.Locker))
	}
	return workspace.NewManager(backend.Store, opts...), backend, nil
}

// seed imports "name=path" or bare "path" specs. Bare paths get a random name.
func seed(ctx context.Context, m *workspace.Manager, specs []string) error {
	for _, spec := range specs {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			name, path = uuid.NewString(), spec
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open seed: %w", err)
		}
		_, err = m.Import(ctx, name, f, document.FormatFor(path))
		f.Close()
		if err != nil {
			return fmt.Errorf("seed %s: %w", path, err)
		}
		logger.Info("Seeded workspace", "name", name, "path", path)
	}
	return nil
}
