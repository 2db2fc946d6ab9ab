package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/kv"
	"github.com/google/uuid"
)

type record struct {
	ID      string `json:"id"`
	ChatID  string `json:"chatId"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	At      int64  `json:"at"`
}

// BadgerRepository stores each message under
// "msg:<chat>:<unix nanos, 19 digits>:<id>", so a prefix scan of one chat
// yields its messages in time order.
type BadgerRepository struct {
	db *badger.DB

	mu   sync.Mutex
	last int64
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func chatPrefix(chatID string) string {
	return fmt.Sprintf("msg:%s:", chatID)
}

// stamp returns a strictly increasing timestamp so two messages never share
// a key position.
func (r *BadgerRepository) stamp() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UnixNano()
	if now <= r.last {
		now = r.last + 1
	}
	r.last = now
	return now
}

func (r *BadgerRepository) Create(ctx context.Context, chatID, senderID, content string) (*models.Message, error) {
	rec := record{
		ID:      uuid.NewString(),
		ChatID:  chatID,
		Sender:  senderID,
		Content: content,
		At:      r.stamp(),
	}
	key := fmt.Sprintf("%s%019d:%s", chatPrefix(chatID), rec.At, rec.ID)

	err := r.db.Update(func(txn *badger.Txn) error {
		return kv.Set(txn, key, rec)
	})
	if err != nil {
		return nil, kv.Wrap(err)
	}

	return rec.message(), nil
}

func (r *BadgerRepository) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	var result []models.Message
	err := r.db.View(func(txn *badger.Txn) error {
		return kv.Scan(txn, chatPrefix(chatID), func(_ []byte, val []byte) error {
			var rec record
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			result = append(result, *rec.message())
			return nil
		})
	})
	if err != nil {
		return nil, kv.Wrap(err)
	}
	return result, nil
}

// DeleteByChat removes the chat's messages through a write batch, which
// splits large deletions across transactions.
func (r *BadgerRepository) DeleteByChat(ctx context.Context, chatID string) error {
	var keys []string
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		keys, err = kv.Keys(txn, chatPrefix(chatID))
		return err
	})
	if err != nil {
		return kv.Wrap(err)
	}

	wb := r.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete([]byte(k)); err != nil {
			return kv.Wrap(err)
		}
	}
	return kv.Wrap(wb.Flush())
}

func (r record) message() *models.Message {
	return &models.Message{
		ID:        r.ID,
		ChatID:    r.ChatID,
		SenderID:  r.Sender,
		Content:   r.Content,
		CreatedAt: time.Unix(0, r.At).UTC(),
	}
}
