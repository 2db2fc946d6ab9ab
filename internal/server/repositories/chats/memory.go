package chats

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps chats in process memory, in creation order.
type MemoryRepository struct {
	mu    sync.RWMutex
	seq   uint64
	chats map[string]memChat
}

type memChat struct {
	seq  uint64
	chat models.Chat
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{chats: make(map[string]memChat)}
}

func (r *MemoryRepository) Create(ctx context.Context, memberIDs []string) (*models.Chat, error) {
	chat := models.Chat{ID: uuid.NewString(), Members: append([]string(nil), memberIDs...)}

	r.mu.Lock()
	r.seq++
	r.chats[chat.ID] = memChat{seq: r.seq, chat: chat}
	r.mu.Unlock()

	return copyChat(chat), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.chats[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return copyChat(c.chat), nil
}

func (r *MemoryRepository) FindByMember(ctx context.Context, userID string) ([]models.Chat, error) {
	r.mu.RLock()
	var found []memChat
	for _, c := range r.chats {
		if c.chat.HasMember(userID) {
			found = append(found, c)
		}
	}
	r.mu.RUnlock()

	sortBySeq(found)
	result := make([]models.Chat, 0, len(found))
	for _, c := range found {
		result = append(result, *copyChat(c.chat))
	}
	return result, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.chats, id)
	return nil
}

func copyChat(c models.Chat) *models.Chat {
	return &models.Chat{ID: c.ID, Members: append([]string(nil), c.Members...)}
}

func sortBySeq(list []memChat) {
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
}
