package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/protocol"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
)

// MessageRouter persists chat messages and fans them out to live members.
type MessageRouter struct {
	repos    repomanager.RepositoryManager
	sessions SessionLookup
	locks    *KeyedMutex
	log      logging.Logger
}

// NewMessageRouter builds the router. locks must be the one given to the
// ChatService of the same chats.
func NewMessageRouter(repos repomanager.RepositoryManager, sessions SessionLookup, locks *KeyedMutex, log logging.Logger) *MessageRouter {
	return &MessageRouter{repos: repos, sessions: sessions, locks: locks, log: log}
}

// Submit stores raw as a message from senderID in chatID and delivers it to
// every member with a live session, including the sender. Messages of one
// chat are delivered in the order they were stored.
//
// A sender outside the chat yields common.ErrSilentDrop.
func (r *MessageRouter) Submit(ctx context.Context, chatID, senderID, raw string) (*models.MessageView, error) {
	content := strings.TrimSpace(raw)
	if n := messageLength(content); n == 0 || n > common.MaxMessageLength {
		return nil, fmt.Errorf("%w: message length %d out of range", common.ErrValidation, n)
	}

	unlock := r.locks.Lock(chatID)
	defer unlock()

	chat, err := r.repos.Chats().FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(senderID) {
		return nil, fmt.Errorf("%w: sender %s is not a member of %s", common.ErrSilentDrop, senderID, chatID)
	}

	msg, err := r.repos.Messages().Create(ctx, chatID, senderID, content)
	if err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}

	senderName := ""
	if u, err := r.repos.Users().FindByID(ctx, senderID); err == nil {
		senderName = u.Name
	} else if !errors.Is(err, common.ErrNotFound) {
		r.log.Warn(ctx, "sender lookup failed", "user_id", senderID, "error", err)
	}

	view := models.NewMessageView(msg, senderName)
	ev := protocol.MsgToClient(view)
	delivered := 0
	for _, member := range chat.Members {
		ok, err := send(r.sessions, member, ev)
		if err != nil {
			r.log.Warn(ctx, "message delivery failed", "chat_id", chatID, "user_id", member, "error", err)
			continue
		}
		if ok {
			delivered++
		}
	}

	r.log.Debug(ctx, "message routed", "chat_id", chatID, "message_id", msg.ID, "delivered", delivered)
	return &view, nil
}

// messageLength counts UTF-16 code units, so a character outside the Basic
// Multilingual Plane counts twice.
func messageLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
