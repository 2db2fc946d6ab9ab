package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
)

// ChatQuery serves chat history to members.
type ChatQuery struct {
	repos repomanager.RepositoryManager
	log   logging.Logger
}

func NewChatQuery(repos repomanager.RepositoryManager, log logging.Logger) *ChatQuery {
	return &ChatQuery{repos: repos, log: log}
}

// History returns the messages of chatID oldest first. A sender that no
// longer resolves is rendered with an empty name.
func (q *ChatQuery) History(ctx context.Context, chatID, requesterID string) ([]models.MessageView, error) {
	chat, err := q.repos.Chats().FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(requesterID) {
		return nil, common.ErrForbidden
	}

	list, err := q.repos.Messages().ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	names := make(map[string]string)
	views := make([]models.MessageView, 0, len(list))
	for i := range list {
		m := &list[i]
		name, ok := names[m.SenderID]
		if !ok {
			u, err := q.repos.Users().FindByID(ctx, m.SenderID)
			switch {
			case err == nil:
				name = u.Name
			case errors.Is(err, common.ErrNotFound):
			default:
				return nil, fmt.Errorf("resolve sender: %w", err)
			}
			names[m.SenderID] = name
		}
		views = append(views, models.NewMessageView(m, name))
	}

	return views, nil
}
