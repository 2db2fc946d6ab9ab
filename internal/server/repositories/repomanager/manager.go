// Package repomanager groups the repositories of one storage backend and
// owns its lifecycle.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/repositories/chats"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/users"
)

// TxFunc runs against a manager whose repositories share one transaction.
type TxFunc func(ctx context.Context, tx RepositoryManager) error

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Chats() chats.Repository
	Messages() messages.Repository
	// WithTx runs fn so that its writes commit or fail together, where the
	// backend supports it.
	WithTx(ctx context.Context, fn TxFunc) error
	Close() error
}

// Storage backends accepted by New.
const (
	StoragePostgres = "postgres"
	StorageBadger   = "badger"
	StorageMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Storage     string
	DatabaseDSN string
	BadgerPath  string
}
