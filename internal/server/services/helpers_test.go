package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/protocol"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophchat/internal/server/sessions"
	"github.com/stretchr/testify/require"
)

// recordingConn captures every event sent to it.
type recordingConn struct {
	mu      sync.Mutex
	events  []protocol.Event
	sendErr error
}

func (c *recordingConn) Send(ev protocol.Event) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	return nil
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) Events() []protocol.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Event(nil), c.events...)
}

func (c *recordingConn) Named(name string) []protocol.Event {
	var out []protocol.Event
	for _, ev := range c.Events() {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	repos    *repomanager.InMemoryRepositoryManager
	registry *sessions.Registry
	locks    *KeyedMutex
	users    map[string]*models.User
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	f := &fixture{
		repos:    repomanager.NewInMemoryRepositoryManager(),
		registry: sessions.New(),
		locks:    NewKeyedMutex(),
		users:    make(map[string]*models.User),
	}
	for _, n := range names {
		u, err := f.repos.Users().Create(context.Background(), &models.User{Name: n, Email: n + "@example.com", PasswordHash: "x"})
		require.NoError(t, err)
		f.users[n] = u
	}
	return f
}

func (f *fixture) id(name string) string { return f.users[name].ID }

func (f *fixture) connect(name string) *recordingConn {
	c := &recordingConn{}
	f.registry.Register(f.id(name), c)
	return c
}

func (f *fixture) broadcaster() *Broadcaster {
	return NewBroadcaster(f.repos, f.registry, logging.Discard())
}

func (f *fixture) chat(t *testing.T, members ...string) *models.Chat {
	t.Helper()
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, f.id(m))
	}
	c, err := f.repos.Chats().Create(context.Background(), ids)
	require.NoError(t, err)
	return c
}

// usersOverride swaps the users repository of an in-memory manager.
type usersOverride struct {
	*repomanager.InMemoryRepositoryManager
	users users.Repository
}

func (m *usersOverride) Users() users.Repository { return m.users }

func (m *usersOverride) WithTx(ctx context.Context, fn repomanager.TxFunc) error {
	return fn(ctx, m)
}

var errBoom = errors.New("boom")
