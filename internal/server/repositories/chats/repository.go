// Package chats stores chats and their membership.
package chats

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

type Repository interface {
	// Create stores a chat with the given member IDs, in order.
	Create(ctx context.Context, memberIDs []string) (*models.Chat, error)
	FindByID(ctx context.Context, id string) (*models.Chat, error)
	// FindByMember returns the chats userID belongs to, oldest first.
	FindByMember(ctx context.Context, userID string) ([]models.Chat, error)
	Delete(ctx context.Context, id string) error
}
