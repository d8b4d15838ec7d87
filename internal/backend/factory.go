package backend

import (
	"context"
	"errors"
	"fmt"

	"paybook/internal/amqp"
	"paybook/internal/log"
	"paybook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	persister, err := f.createPersister(ctx, config)
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Persister: persister, Cleanup: persister.Close}

	if config.AMQPURL != "" {
		client := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey, f.logger)
		// Publishing connects lazily, so a broker that is down only costs warnings.
		if err := client.Connect(); err != nil {
			f.logger.WarnContext(ctx, "AMQP broker unreachable, events will be retried on publish",
				"exchange", config.AMQPExchange,
				log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP publisher",
				"exchange", config.AMQPExchange,
				"routing_key", config.AMQPRoutingKey)
		}
		result.Notifier = client
		result.Cleanup = func() error {
			return errors.Join(client.Close(), persister.Close())
		}
	}
	return result, nil
}

func (f *DefaultFactory) createPersister(ctx context.Context, config Config) (Persister, error) {
	switch config.Type {
	case FileBackend:
		repo, err := storage.NewFileRepository(config.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized file backend", log.FieldPath, config.DataFile)
		return repo, nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", log.FieldPath, config.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.InfoContext(ctx, "Initialized memory backend")
		return storage.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
