package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
	"github.com/samber/lo"
)

// Notifier refreshes the chat lists of a set of users.
type Notifier interface {
	NotifyAll(ctx context.Context, userIDs []string)
}

// ChatService creates and deletes chats.
type ChatService struct {
	repos    repomanager.RepositoryManager
	notifier Notifier
	locks    *KeyedMutex
	log      logging.Logger
}

// NewChatService builds the service. locks must be the one given to the
// MessageRouter of the same chats.
func NewChatService(repos repomanager.RepositoryManager, notifier Notifier, locks *KeyedMutex, log logging.Logger) *ChatService {
	return &ChatService{repos: repos, notifier: notifier, locks: locks, log: log}
}

// CreateChat creates a chat between the named users and the requester.
// Names are matched case-insensitively; the first unknown name aborts with
// *common.UnknownUserError and nothing is stored.
func (s *ChatService) CreateChat(ctx context.Context, requesterID string, names []string) (*models.Chat, error) {
	names = lo.Map(names, func(n string, _ int) string { return strings.TrimSpace(n) })
	if len(names) == 0 || lo.Contains(names, "") {
		return nil, fmt.Errorf("%w: users array is required", common.ErrValidation)
	}
	names = lo.UniqBy(names, strings.ToLower)

	members := make([]string, 0, len(names)+1)
	for _, name := range names {
		u, err := s.repos.Users().FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, &common.UnknownUserError{Name: name}
			}
			return nil, fmt.Errorf("resolve %q: %w", name, err)
		}
		members = append(members, u.ID)
	}
	members = lo.Uniq(members)
	if !lo.Contains(members, requesterID) {
		members = append(members, requesterID)
	}

	var chat *models.Chat
	err := s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		var err error
		chat, err = tx.Chats().Create(ctx, members)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	s.log.Info(ctx, "chat created", "chat_id", chat.ID, "user_id", requesterID, "members", len(chat.Members))
	s.notifier.NotifyAll(ctx, chat.Members)

	return chat, nil
}

// DeleteChat removes a chat and its messages. Only a member may delete it.
// The returned chat is the state before deletion. The chat's lock is held
// from lookup to removal, so no message can land in between.
func (s *ChatService) DeleteChat(ctx context.Context, chatID, requesterID string) (*models.Chat, error) {
	unlock := s.locks.Lock(chatID)
	chat, err := s.deleteLocked(ctx, chatID, requesterID)
	unlock()
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "chat deleted", "chat_id", chatID, "user_id", requesterID)
	s.notifier.NotifyAll(ctx, chat.Members)

	return chat, nil
}

func (s *ChatService) deleteLocked(ctx context.Context, chatID, requesterID string) (*models.Chat, error) {
	chat, err := s.repos.Chats().FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(requesterID) {
		return nil, common.ErrForbidden
	}

	err = s.repos.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if err := tx.Messages().DeleteByChat(ctx, chatID); err != nil {
			return err
		}
		return tx.Chats().Delete(ctx, chatID)
	})
	if err != nil {
		return nil, fmt.Errorf("delete chat: %w", err)
	}
	return chat, nil
}
