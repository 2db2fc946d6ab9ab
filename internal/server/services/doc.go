// Package services contains the gateway's business logic: chat-list
// snapshots, chat lifecycle, message routing, history queries and accounts.
// Services depend on a repomanager.RepositoryManager and on the session
// registry through narrow interfaces, never on the transport.
package services

import (
	"github.com/dmitrijs2005/gophchat/internal/server/protocol"
	"github.com/dmitrijs2005/gophchat/internal/server/sessions"
)

// SessionLookup resolves a user to the connection currently registered for it.
type SessionLookup interface {
	Lookup(userID string) (sessions.Conn, bool)
}

// send delivers ev to userID's live connection, reporting whether one existed.
func send(s SessionLookup, userID string, ev protocol.Event) (bool, error) {
	conn, ok := s.Lookup(userID)
	if !ok {
		return false, nil
	}
	return true, conn.Send(ev)
}
