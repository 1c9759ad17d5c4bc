package backend

import (
	"context"
	"errors"
	"fmt"

	"salesreport/internal/amqp"
	"salesreport/internal/auth"
	applog "salesreport/internal/log"
	"salesreport/internal/records/memory"
	"salesreport/internal/storage"
	"salesreport/internal/storage/postgres"
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
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend opens the configured store and, when configured, an AMQP
// client. An unreachable broker is logged and skipped.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		b       Backend
		closeFn CleanupFunc
		err     error
	)
	switch config.Type {
	case SQLiteBackend:
		b, closeFn, err = f.createSQLiteBackend(config)
	case PostgresBackend:
		b, closeFn, err = f.createPostgresBackend(ctx, config)
	case MemoryBackend:
		b, closeFn, err = f.createMemoryBackend()
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Backend: b}
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events",
				applog.FieldError, err.Error())
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Events = client
		}
	}

	result.Cleanup = func() error {
		var errs []error
		if result.Events != nil {
			errs = append(errs, result.Events.Close())
		}
		if closeFn != nil {
			errs = append(errs, closeFn())
		}
		return errors.Join(errs...)
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (Backend, CleanupFunc, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, repo.Close, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (Backend, CleanupFunc, error) {
	repo, err := postgres.NewRepository(ctx, config.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}

	f.logger.Info("Initialized Postgres backend")
	return repo, repo.Close, nil
}

func (f *DefaultFactory) createMemoryBackend() (Backend, CleanupFunc, error) {
	f.logger.Warn("Using in-memory backend, data is lost on exit")
	return &memoryBackend{
		Store:           memory.New(),
		MemoryUserStore: auth.NewMemoryUserStore(),
	}, nil, nil
}

// memoryBackend pairs the in-memory record and user stores.
type memoryBackend struct {
	*memory.Store
	*auth.MemoryUserStore
}

func (memoryBackend) Ping(context.Context) error { return nil }
