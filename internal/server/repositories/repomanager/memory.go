package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/repositories/chats"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory.
type InMemoryRepositoryManager struct {
	users    *users.MemoryRepository
	chats    *chats.MemoryRepository
	messages *messages.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		chats:    chats.NewMemoryRepository(),
		messages: messages.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *InMemoryRepositoryManager) Chats() chats.Repository { return m.chats }

func (m *InMemoryRepositoryManager) Messages() messages.Repository { return m.messages }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	return fn(ctx, m)
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
