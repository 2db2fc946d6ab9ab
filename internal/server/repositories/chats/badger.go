package chats

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/kv"
	"github.com/google/uuid"
)

// Key layout:
//
//	chat:<id>                 -> JSON record
//	chat_member:<user>:<id>   -> empty, membership index
const (
	chatPrefix   = "chat:"
	memberPrefix = "chat_member:"
)

type record struct {
	ID        string   `json:"id"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

type BadgerRepository struct {
	db *badger.DB

	mu   sync.Mutex
	last int64
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

// stamp returns a strictly increasing creation time in nanoseconds.
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

func memberKey(userID, chatID string) string {
	return fmt.Sprintf("%s%s:%s", memberPrefix, userID, chatID)
}

func (r *BadgerRepository) Create(ctx context.Context, memberIDs []string) (*models.Chat, error) {
	rec := record{ID: uuid.NewString(), Members: append([]string(nil), memberIDs...), CreatedAt: r.stamp()}

	err := r.db.Update(func(txn *badger.Txn) error {
		if err := kv.Set(txn, chatPrefix+rec.ID, rec); err != nil {
			return err
		}
		for _, m := range rec.Members {
			if err := kv.Set(txn, memberKey(m, rec.ID), rec.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, kv.Wrap(err)
	}

	return &models.Chat{ID: rec.ID, Members: rec.Members}, nil
}

func (r *BadgerRepository) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	var rec record
	err := r.db.View(func(txn *badger.Txn) error {
		return kv.Get(txn, chatPrefix+id, &rec)
	})
	if err != nil {
		return nil, kv.Wrap(err)
	}
	return &models.Chat{ID: rec.ID, Members: rec.Members}, nil
}

func (r *BadgerRepository) FindByMember(ctx context.Context, userID string) ([]models.Chat, error) {
	var recs []record
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := memberPrefix + userID + ":"
		return kv.Scan(txn, prefix, func(key []byte, _ []byte) error {
			var rec record
			if err := kv.Get(txn, chatPrefix+string(key[len(prefix):]), &rec); err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, kv.Wrap(err)
	}

	slices.SortFunc(recs, func(a, b record) int {
		if a.CreatedAt < b.CreatedAt {
			return -1
		}
		if a.CreatedAt > b.CreatedAt {
			return 1
		}
		return 0
	})

	result := make([]models.Chat, 0, len(recs))
	for _, rec := range recs {
		result = append(result, models.Chat{ID: rec.ID, Members: rec.Members})
	}
	return result, nil
}

func (r *BadgerRepository) Delete(ctx context.Context, id string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		var rec record
		if err := kv.Get(txn, chatPrefix+id, &rec); err != nil {
			return err
		}
		for _, m := range rec.Members {
			if err := kv.Delete(txn, memberKey(m, id)); err != nil {
				return err
			}
		}
		return kv.Delete(txn, chatPrefix+id)
	})
	return kv.Wrap(err)
}
