package backend

import (
	"context"
	"errors"
	"fmt"

	"gagyebu/internal/amqp"
	"gagyebu/internal/ledger"
	applog "gagyebu/internal/log"
	"gagyebu/internal/store/memory"
	"gagyebu/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		result = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, entries will be written directly", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Queue = client
			storeCleanup := result.Cleanup
			result.Cleanup = func() error {
				return errors.Join(client.Close(), storeCleanup())
			}
		}
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.SeedDemo {
		seeded, err := seedIfEmpty(ctx, repo)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to seed demo ledger: %w", err)
		}
		if seeded > 0 {
			f.logger.Info("Seeded demo ledger", "entries", seeded)
		}
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) *BackendResult {
	var s *memory.Store
	if config.SeedDemo {
		s = memory.NewSeeded(ledger.DemoTransactions())
	} else {
		s = memory.New()
	}

	f.logger.Info("Initialized memory backend", "seeded", config.SeedDemo)

	return &BackendResult{
		Backend: s,
		Cleanup: func() error { return nil },
	}
}

// seedIfEmpty appends the demo month only to a ledger with no entries.
func seedIfEmpty(ctx context.Context, b Backend) (int, error) {
	rev, err := b.Revision(ctx)
	if err != nil {
		return 0, err
	}
	if rev > 0 {
		return 0, nil
	}
	demo := ledger.DemoTransactions()
	for _, t := range demo {
		if err := b.Append(ctx, t); err != nil {
			return 0, err
		}
	}
	return len(demo), nil
}
