package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpost/quillpost"
)

func messageRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "text", "created_at"})
}

func TestMessageRepositoryList(t *testing.T) {
	newer := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	t.Run("newest first", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT id, user_id, text, created_at FROM messages ORDER BY created_at DESC`).
			WithArgs(int64(100), int64(0)).
			WillReturnRows(messageRows().
				AddRow(int64(2), int64(1), "second", newer).
				AddRow(int64(1), int64(1), "first", older))

		got, err := NewMessageRepository(mock).List(context.Background(), 100, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, quillpost.Message{ID: 2, UserID: 1, Text: "second", CreatedAt: newer}, got[0])
		assert.Equal(t, "first", got[1].Text)
	})

	t.Run("empty page", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM messages`).
			WithArgs(int64(10), int64(500)).
			WillReturnRows(messageRows())

		got, err := NewMessageRepository(mock).List(context.Background(), 10, 500)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("query error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM messages`).
			WithArgs(int64(10), int64(0)).
			WillReturnError(errConnRefused)

		_, err := NewMessageRepository(mock).List(context.Background(), 10, 0)
		assert.ErrorIs(t, err, errConnRefused)
	})
}

func TestMessageRepositoryGet(t *testing.T) {
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	mock := newMock(t)
	mock.ExpectQuery(`SELECT id, user_id, text, created_at FROM messages WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(messageRows().AddRow(int64(5), int64(2), "hi", at))
	mock.ExpectQuery(`FROM messages WHERE id = \$1`).
		WithArgs(int64(6)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewMessageRepository(mock)
	m, err := repo.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.UserID)

	_, err = repo.Get(context.Background(), 6)
	require.ErrorIs(t, err, quillpost.ErrMessageNotFound)
	assert.ErrorIs(t, err, quillpost.ErrNotFound)
}

func TestMessageRepositoryCreate(t *testing.T) {
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("inserted", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO messages`).
			WithArgs(int64(2), "hello").
			WillReturnRows(messageRows().AddRow(int64(11), int64(2), "hello", at))

		m, err := NewMessageRepository(mock).Create(context.Background(), 2, "hello")
		require.NoError(t, err)
		assert.Equal(t, quillpost.Message{ID: 11, UserID: 2, Text: "hello", CreatedAt: at}, m)
	})

	t.Run("author gone", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO messages`).
			WithArgs(int64(2), "hello").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

		_, err := NewMessageRepository(mock).Create(context.Background(), 2, "hello")
		assert.ErrorIs(t, err, quillpost.ErrUserNotFound)
	})
}

func TestMessageRepositoryUpdateAndDelete(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`UPDATE messages SET text = \$1 WHERE id = \$2`).
		WithArgs("edited", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE messages SET text`).
		WithArgs("edited", int64(6)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM messages WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM messages`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewMessageRepository(mock)
	ctx := context.Background()

	require.NoError(t, repo.UpdateText(ctx, 5, "edited"))
	assert.ErrorIs(t, repo.UpdateText(ctx, 6, "edited"), quillpost.ErrMessageNotFound)
	require.NoError(t, repo.Delete(ctx, 5))
	assert.ErrorIs(t, repo.Delete(ctx, 5), quillpost.ErrMessageNotFound)
}
