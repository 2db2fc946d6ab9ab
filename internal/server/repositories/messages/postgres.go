package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, chatID, senderID, content string) (*models.Message, error) {
	query :=
		`INSERT INTO messages (chat_id, sender_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	m := &models.Message{ChatID: chatID, SenderID: senderID, Content: content}
	if err := r.db.QueryRowContext(ctx, query, chatID, senderID, content).Scan(&m.ID, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}

	return m, nil
}

func (r *PostgresRepository) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	query :=
		`SELECT id, chat_id, sender_id, content, created_at FROM messages
		 WHERE chat_id = $1
		 ORDER BY created_at, seq
		 `

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}
	defer rows.Close()

	var result []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteByChat(ctx context.Context, chatID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("%w: db error: %w", common.ErrPersistence, err)
	}
	return nil
}
