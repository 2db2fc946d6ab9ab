package repomanager

import (
	"context"
	"fmt"
)

// New opens the backend named by opts.Storage and applies its migrations.
func New(ctx context.Context, opts Options) (RepositoryManager, error) {
	var (
		m   RepositoryManager
		err error
	)

	switch opts.Storage {
	case StoragePostgres:
		m, err = OpenPostgres(ctx, opts.DatabaseDSN)
	case StorageBadger:
		m, err = OpenBadger(opts.BadgerPath)
	case StorageMemory:
		m = NewInMemoryRepositoryManager()
	default:
		return nil, fmt.Errorf("unknown storage %q", opts.Storage)
	}
	if err != nil {
		return nil, err
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return m, nil
}
