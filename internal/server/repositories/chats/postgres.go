package chats

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

// PostgresRepository expects to run inside a transaction for Create, which
// issues one statement per member.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, memberIDs []string) (*models.Chat, error) {
	chat := &models.Chat{Members: append([]string(nil), memberIDs...)}

	err := r.db.QueryRowContext(ctx, `INSERT INTO chats DEFAULT VALUES RETURNING id`).Scan(&chat.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}

	query :=
		`INSERT INTO chat_members (chat_id, user_id, position)
		 VALUES ($1, $2, $3)
		 `
	for i, id := range chat.Members {
		if _, err := r.db.ExecContext(ctx, query, chat.ID, id, i); err != nil {
			return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
		}
	}

	return chat, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	query :=
		`SELECT user_id FROM chat_members
		 WHERE chat_id = $1
		 ORDER BY position
		 `

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}
	defer rows.Close()

	chat := &models.Chat{ID: id}
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
		}
		chat.Members = append(chat.Members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}

	// A chat always has at least one member.
	if len(chat.Members) == 0 {
		return nil, common.ErrNotFound
	}
	return chat, nil
}

func (r *PostgresRepository) FindByMember(ctx context.Context, userID string) ([]models.Chat, error) {
	query :=
		`SELECT c.id, m.user_id FROM chats c
		 JOIN chat_members m ON m.chat_id = c.id
		 WHERE c.id IN (SELECT chat_id FROM chat_members WHERE user_id = $1)
		 ORDER BY c.created_at, c.id, m.position
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}
	defer rows.Close()

	var result []models.Chat
	for rows.Next() {
		var chatID, member string
		if err := rows.Scan(&chatID, &member); err != nil {
			return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
		}
		if n := len(result); n == 0 || result[n-1].ID != chatID {
			result = append(result, models.Chat{ID: chatID})
		}
		last := &result[len(result)-1]
		last.Members = append(last.Members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
