package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/protocol"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/samber/lo"
)

// Broadcaster builds and pushes chat-list snapshots.
type Broadcaster struct {
	repos    repomanager.RepositoryManager
	sessions SessionLookup
	log      logging.Logger
}

func NewBroadcaster(repos repomanager.RepositoryManager, sessions SessionLookup, log logging.Logger) *Broadcaster {
	return &Broadcaster{repos: repos, sessions: sessions, log: log}
}

// Snapshot lists the chats userID belongs to with members rendered as
// display names. Members whose user record cannot be loaded are left out.
func (b *Broadcaster) Snapshot(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	list, err := b.repos.Chats().FindByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	names := make(map[string]string)
	result := make([]models.ChatSummary, 0, len(list))
	for _, chat := range list {
		summary := models.ChatSummary{ChatID: chat.ID, Members: make([]string, 0, len(chat.Members))}
		for _, id := range chat.Members {
			name, ok := names[id]
			if !ok {
				u, err := b.repos.Users().FindByID(ctx, id)
				if err != nil {
					if !errors.Is(err, common.ErrNotFound) {
						return nil, fmt.Errorf("resolve member: %w", err)
					}
					b.log.Warn(ctx, "snapshot member not found", "chat_id", chat.ID, "user_id", id)
					continue
				}
				name = u.Name
				names[id] = name
			}
			summary.Members = append(summary.Members, name)
		}
		result = append(result, summary)
	}

	return result, nil
}

// PushSnapshot sends a chatUpdate to userID's live connection, if any.
func (b *Broadcaster) PushSnapshot(ctx context.Context, userID string) error {
	if _, ok := b.sessions.Lookup(userID); !ok {
		return nil
	}

	snapshot, err := b.Snapshot(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := send(b.sessions, userID, protocol.ChatUpdate(snapshot)); err != nil {
		return fmt.Errorf("send snapshot: %w", err)
	}
	b.log.Debug(ctx, "snapshot sent", "user_id", userID, "chats", len(snapshot))
	return nil
}

// NotifyAll pushes a fresh snapshot to each distinct user. A failure for one
// user is logged and does not affect the others.
func (b *Broadcaster) NotifyAll(ctx context.Context, userIDs []string) {
	for _, id := range lo.Uniq(userIDs) {
		if err := b.PushSnapshot(ctx, id); err != nil {
			b.log.Error(ctx, "snapshot push failed", "user_id", id, "error", err)
		}
	}
}
