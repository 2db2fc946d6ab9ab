// Package sessions tracks the single live connection of each user.
package sessions

import (
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/server/protocol"
)

// Conn is the registry's view of a client connection.
type Conn interface {
	Send(protocol.Event) error
	Close() error
}

// Registry maps user IDs to their current connection. A later Register for
// the same user replaces the earlier entry without closing it.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]Conn
	closed bool
}

func New() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Register makes conn the current connection of userID. After Close the
// registry accepts nothing: conn is closed instead of stored.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = conn.Close()
		return
	}
	r.conns[userID] = conn
	r.mu.Unlock()
}

// Unregister removes the entry for userID only if it still holds conn, so a
// stale disconnect never evicts a newer connection. It reports whether an
// entry was removed.
func (r *Registry) Unregister(userID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.conns[userID]
	if !ok || cur != conn {
		return false
	}
	delete(r.conns, userID)
	return true
}

// Lookup returns the current connection of userID.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[userID]
	return c, ok
}

// Len returns the number of users with a live session.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Close closes every registered connection and empties the registry.
// Later registrations are refused.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	conns := r.conns
	r.conns = make(map[string]Conn)
	r.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}
