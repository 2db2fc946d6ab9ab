// Package messages stores chat messages. The store assigns CreatedAt.
package messages

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, chatID, senderID, content string) (*models.Message, error)
	// ListByChat returns the chat's messages by CreatedAt ascending, ties in
	// insertion order.
	ListByChat(ctx context.Context, chatID string) ([]models.Message, error)
	DeleteByChat(ctx context.Context, chatID string) error
}
