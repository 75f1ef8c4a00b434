package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/flowedit"
	"github.com/aretw0/flowedit/internal/logging"
	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates document access, ensuring edits of one document never interleave.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.DocumentStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	editorOpts []flowedit.Option
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager and the editors it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEditorOptions adds options applied to every editor the Manager creates.
func WithEditorOptions(opts ...flowedit.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// NewManager creates a Manager over store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(name) after unlocking.
func (m *Manager) acquire(name string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		entry = &lockEntry{}
		m.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, name)
	}
}

// WithLock executes fn while holding the lock for the document.
func (m *Manager) WithLock(ctx context.Context, name string, fn func(context.Context) error) error {
	entry := m.acquire(name)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(name)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, name, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The edit's context may already be done; release on a fresh one.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"document", name,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) newEditor(name string) *flowedit.Editor {
	opts := append([]flowedit.Option{flowedit.WithLogger(m.logger), flowedit.WithName(name)}, m.editorOpts...)
	return flowedit.New(opts...)
}

// Import decodes r and stores it under name, replacing any previous document.
// A malformed document leaves the stored one untouched.
func (m *Manager) Import(ctx context.Context, name string, r io.Reader, format document.Format) (*flowedit.Editor, error) {
	ed := m.newEditor(name)
	err := m.WithLock(ctx, name, func(ctx context.Context) error {
		if err := ed.Import(ctx, r, format); err != nil {
			return err
		}
		return m.store.Save(ctx, name, ed.Snapshot())
	})
	if err != nil {
		return nil, err
	}
	return ed, nil
}

// Create stores an empty document under name unless one exists.
func (m *Manager) Create(ctx context.Context, name string) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, name)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			return fmt.Errorf("failed to check document existence: %w", err)
		}
		return m.store.Save(ctx, name, document.Document{Environments: map[string]any{}})
	})
}

// View loads the document into an editor and runs fn. Changes are discarded.
func (m *Manager) View(ctx context.Context, name string, fn func(context.Context, *flowedit.Editor) error) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		ed, err := m.load(ctx, name)
		if err != nil {
			return err
		}
		return fn(ctx, ed)
	})
}

// Edit loads the document into an editor, runs fn and saves the result when fn
// succeeds. When fn fails nothing is written.
func (m *Manager) Edit(ctx context.Context, name string, fn func(context.Context, *flowedit.Editor) error) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		ed, err := m.load(ctx, name)
		if err != nil {
			return err
		}
		if err := fn(ctx, ed); err != nil {
			return err
		}
		if err := m.store.Save(ctx, name, ed.Snapshot()); err != nil {
			return fmt.Errorf("failed to save document %q: %w", name, err)
		}
		return nil
	})
}

func (m *Manager) load(ctx context.Context, name string) (*flowedit.Editor, error) {
	doc, err := m.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, fmt.Errorf("document %q: %w", name, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("failed to load document %q: %w", name, err)
	}
	ed := m.newEditor(name)
	ed.Restore(doc)
	return ed, nil
}

// Delete removes the document from the store.
func (m *Manager) Delete(ctx context.Context, name string) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		return m.store.Delete(ctx, name)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}
