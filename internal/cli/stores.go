package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/flowedit/internal/config"
	"github.com/aretw0/flowedit/pkg/adapters/badger"
	"github.com/aretw0/flowedit/pkg/adapters/file"
	"github.com/aretw0/flowedit/pkg/adapters/memory"
	"github.com/aretw0/flowedit/pkg/adapters/redis"
	"github.com/aretw0/flowedit/pkg/persistence/middleware"
	"github.com/aretw0/flowedit/pkg/ports"
)

// Backend is an opened document store with its optional locker.
type Backend struct {
	Store  ports.DocumentStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the store's resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenStore opens the storage backend named by cfg, sealing environments when
// an encryption key is configured.
func OpenStore(cfg config.StorageConfig, logger *slog.Logger) (*Backend, error) {
	b, err := openBackend(cfg, logger)
	if err != nil || cfg.EncryptionKey == "" {
		return b, err
	}
	keys, err := middleware.ParseKeys(cfg.EncryptionKey, cfg.FallbackKeys...)
	if err == nil {
		var mw middleware.Middleware
		if mw, err = middleware.NewEncryptionMiddleware(keys); err == nil {
			b.Store = middleware.Chain(b.Store, mw)
			logger.Info("Environment encryption enabled", "fallback_keys", len(keys.FallbackKeys))
			return b, nil
		}
	}
	_ = b.Close()
	return nil, fmt.Errorf("invalid storage encryption: %w", err)
}

func openBackend(cfg config.StorageConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return &Backend{Store: memory.NewStore()}, nil

	case config.BackendFile:
		logger.Info("Using file storage", "dir", cfg.Dir)
		return &Backend{Store: file.New(cfg.Dir)}, nil

	case config.BackendBadger:
		db, err := badger.Open(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		logger.Info("Using badger storage", "dir", cfg.Dir)
		return &Backend{Store: badger.New(db), close: db.Close}, nil

	case config.BackendRedis:
		ttl, err := cfg.Expiry()
		if err != nil {
			return nil, err
		}
		store := redis.New(cfg.RedisAddr, "", 0,
			redis.WithPrefix(cfg.RedisPrefix+":doc:"),
			redis.WithTTL(ttl),
		)
		logger.Info("Using redis storage", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), cfg.RedisPrefix+":"),
			close:  store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
