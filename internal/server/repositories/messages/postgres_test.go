package messages

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+messages\s*\(chat_id,\s*sender_id,\s*content\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`
	listQuery   = `(?s)^SELECT\s+id,\s*chat_id,\s*sender_id,\s*content,\s*created_at\s+FROM\s+messages\s+WHERE\s+chat_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*seq\s*$`
	deleteQuery = `^DELETE\s+FROM\s+messages\s+WHERE\s+chat_id\s*=\s*\$1$`
)

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	mock.ExpectQuery(insertQuery).WithArgs("c1", "u1", "hello").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("m1", at))

	m, err := repo.Create(context.Background(), "c1", "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "hello", m.Content)
	assert.True(t, m.CreatedAt.Equal(at))
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WithArgs("c1", "u1", "hello").WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "c1", "u1", "hello")
	assert.ErrorIs(t, err, common.ErrPersistence)
	assert.Contains(t, err.Error(), "db down")
}

func TestListByChat(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectQuery(listQuery).WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "chat_id", "sender_id", "content", "created_at"}).
			AddRow("m1", "c1", "u1", "first", at).
			AddRow("m2", "c1", "u2", "second", at))

	list, err := repo.ListByChat(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "u2", list[1].SenderID)
}

func TestDeleteByChat(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQuery).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(deleteQuery).WithArgs("c2").WillReturnError(errors.New("db down"))

	assert.NoError(t, repo.DeleteByChat(context.Background(), "c1"))
	assert.ErrorIs(t, repo.DeleteByChat(context.Background(), "c2"), common.ErrPersistence)
}
