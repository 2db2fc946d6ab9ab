package repomanager

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/chats"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/users"
)

// BadgerRepositoryManager serves every repository from one embedded badger
// database.
type BadgerRepositoryManager struct {
	db       *badger.DB
	users    *users.BadgerRepository
	chats    *chats.BadgerRepository
	messages *messages.BadgerRepository
}

// NewBadgerRepositoryManager wraps an open badger database.
func NewBadgerRepositoryManager(db *badger.DB) *BadgerRepositoryManager {
	return &BadgerRepositoryManager{
		db:       db,
		users:    users.NewBadgerRepository(db),
		chats:    chats.NewBadgerRepository(db),
		messages: messages.NewBadgerRepository(db),
	}
}

// OpenBadger opens the database at path; an empty path runs in memory.
func OpenBadger(path string) (*BadgerRepositoryManager, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open error: %w", err)
	}
	return NewBadgerRepositoryManager(db), nil
}

func (m *BadgerRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *BadgerRepositoryManager) Users() users.Repository { return m.users }

func (m *BadgerRepositoryManager) Chats() chats.Repository { return m.chats }

func (m *BadgerRepositoryManager) Messages() messages.Repository { return m.messages }

// WithTx runs fn directly; each repository call is its own badger transaction.
func (m *BadgerRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	return fn(ctx, m)
}

func (m *BadgerRepositoryManager) Close() error {
	return m.db.Close()
}
