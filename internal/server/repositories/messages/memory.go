package messages

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps messages in process memory. Each chat's slice is
// append-only, so insertion order doubles as the tie-breaker.
type MemoryRepository struct {
	mu     sync.RWMutex
	byChat map[string][]models.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byChat: make(map[string][]models.Message)}
}

func (r *MemoryRepository) Create(ctx context.Context, chatID, senderID, content string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := models.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	list := r.byChat[chatID]
	if n := len(list); n > 0 && m.CreatedAt.Before(list[n-1].CreatedAt) {
		m.CreatedAt = list[n-1].CreatedAt
	}
	r.byChat[chatID] = append(list, m)

	return &m, nil
}

func (r *MemoryRepository) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.Message(nil), r.byChat[chatID]...), nil
}

func (r *MemoryRepository) DeleteByChat(ctx context.Context, chatID string) error {
	r.mu.Lock()
	delete(r.byChat, chatID)
	r.mu.Unlock()
	return nil
}
