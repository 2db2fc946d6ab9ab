package users

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/kv"
	"github.com/google/uuid"
)

// Key layout:
//
//	user:<id>                  -> JSON record
//	user_name:<lower(name)>    -> id
//	user_email:<lower(email)>  -> id
const (
	userPrefix      = "user:"
	nameIndexPrefix = "user_name:"
	mailIndexPrefix = "user_email:"
)

// record mirrors models.User including the password hash, which the model
// hides from JSON.
type record struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r record) user() *models.User {
	return &models.User{ID: r.ID, Name: r.Name, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

type BadgerRepository struct {
	db *badger.DB
}

func NewBadgerRepository(db *badger.DB) *BadgerRepository {
	return &BadgerRepository{db: db}
}

func (r *BadgerRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	nameKey := nameIndexPrefix + strings.ToLower(user.Name)
	mailKey := mailIndexPrefix + strings.ToLower(user.Email)

	rec := record{
		ID:           uuid.NewString(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		for _, k := range []string{nameKey, mailKey} {
			taken, err := kv.Exists(txn, k)
			if err != nil {
				return err
			}
			if taken {
				return common.ErrAlreadyExists
			}
		}
		if err := kv.Set(txn, userPrefix+rec.ID, rec); err != nil {
			return err
		}
		if err := kv.Set(txn, nameKey, rec.ID); err != nil {
			return err
		}
		return kv.Set(txn, mailKey, rec.ID)
	})
	if err != nil {
		return nil, kv.Wrap(err)
	}

	user.ID = rec.ID
	user.CreatedAt = rec.CreatedAt
	return user, nil
}

func (r *BadgerRepository) FindByName(ctx context.Context, name string) (*models.User, error) {
	return r.findByIndex(nameIndexPrefix + strings.ToLower(name))
}

func (r *BadgerRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findByIndex(mailIndexPrefix + strings.ToLower(email))
}

func (r *BadgerRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var rec record
	err := r.db.View(func(txn *badger.Txn) error {
		return kv.Get(txn, userPrefix+id, &rec)
	})
	if err != nil {
		return nil, kv.Wrap(err)
	}
	return rec.user(), nil
}

func (r *BadgerRepository) findByIndex(key string) (*models.User, error) {
	var rec record
	err := r.db.View(func(txn *badger.Txn) error {
		var id string
		if err := kv.Get(txn, key, &id); err != nil {
			return err
		}
		return kv.Get(txn, userPrefix+id, &rec)
	})
	if err != nil {
		return nil, kv.Wrap(err)
	}
	return rec.user(), nil
}

func (r *BadgerRepository) List(ctx context.Context) ([]models.User, error) {
	var result []models.User
	err := r.db.View(func(txn *badger.Txn) error {
		return kv.Scan(txn, userPrefix, func(_ []byte, val []byte) error {
			var rec record
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			result = append(result, *rec.user())
			return nil
		})
	})
	if err != nil {
		return nil, kv.Wrap(err)
	}

	sortByName(result)
	return result, nil
}
