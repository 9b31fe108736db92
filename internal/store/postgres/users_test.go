package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpost/quillpost"
)

var errConnRefused = errors.New("connection refused")

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "login", "password_hash"})
}

func TestUserRepositoryGetUserByLogin(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      quillpost.UserRecord
		wantErr   error
		wantInfra bool
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, login, password_hash FROM users WHERE login = \$1`).
					WithArgs("alice").
					WillReturnRows(userRows().AddRow(int64(1), "alice", "hash"))
			},
			want: quillpost.UserRecord{ID: 1, Login: "alice", PasswordHash: "hash"},
		},
		{
			name: "no rows",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, login, password_hash FROM users`).
					WithArgs("alice").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: quillpost.ErrUserNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, login, password_hash FROM users`).
					WithArgs("alice").
					WillReturnError(errConnRefused)
			},
			wantErr:   errConnRefused,
			wantInfra: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			got, err := NewUserRepository(mock).GetUserByLogin(context.Background(), "alice")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantInfra {
					assert.NotErrorIs(t, err, quillpost.ErrNotFound)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRepositoryGetUserByID(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT id, login, password_hash FROM users WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(userRows().AddRow(int64(7), "bob", "h"))
	mock.ExpectQuery(`SELECT id, login, password_hash FROM users WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewUserRepository(mock)
	u, err := repo.GetUserByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Login)

	_, err = repo.GetUserByID(context.Background(), 8)
	require.ErrorIs(t, err, quillpost.ErrUserNotFound)
	assert.ErrorIs(t, err, quillpost.ErrNotFound)
}

func TestUserRepositoryCreateUser(t *testing.T) {
	t.Run("inserted", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("carol", "h").
			WillReturnRows(userRows().AddRow(int64(3), "carol", "h"))

		u, err := NewUserRepository(mock).CreateUser(context.Background(), "carol", "h")
		require.NoError(t, err)
		assert.Equal(t, quillpost.UserRecord{ID: 3, Login: "carol", PasswordHash: "h"}, u)
	})

	t.Run("duplicate login", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("carol", "h").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_login_key"})

		_, err := NewUserRepository(mock).CreateUser(context.Background(), "carol", "h")
		require.ErrorIs(t, err, quillpost.ErrLoginTaken)
		assert.ErrorIs(t, err, quillpost.ErrConflict)
	})

	t.Run("other database error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("carol", "h").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.QueryCanceled})

		_, err := NewUserRepository(mock).CreateUser(context.Background(), "carol", "h")
		require.Error(t, err)
		assert.NotErrorIs(t, err, quillpost.ErrConflict)
	})
}

func TestUserRepositoryMutations(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		run       func(repo *UserRepository) error
		wantErr   error
	}{
		{
			name: "update password hash",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET password_hash = \$1 WHERE id = \$2`).
					WithArgs("new", int64(1)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			run: func(repo *UserRepository) error {
				return repo.UpdatePasswordHash(context.Background(), 1, "new")
			},
		},
		{
			name: "update password hash of missing user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET password_hash`).
					WithArgs("new", int64(9)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			run: func(repo *UserRepository) error {
				return repo.UpdatePasswordHash(context.Background(), 9, "new")
			},
			wantErr: quillpost.ErrUserNotFound,
		},
		{
			name: "change login",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET login = \$1 WHERE id = \$2`).
					WithArgs("alice2", int64(1)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			run: func(repo *UserRepository) error {
				return repo.ChangeLogin(context.Background(), 1, "alice2")
			},
		},
		{
			name: "change login to taken login",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET login`).
					WithArgs("bob", int64(1)).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			run: func(repo *UserRepository) error {
				return repo.ChangeLogin(context.Background(), 1, "bob")
			},
			wantErr: quillpost.ErrLoginTaken,
		},
		{
			name: "change login of missing user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET login`).
					WithArgs("x", int64(9)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			run: func(repo *UserRepository) error {
				return repo.ChangeLogin(context.Background(), 9, "x")
			},
			wantErr: quillpost.ErrUserNotFound,
		},
		{
			name: "delete",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
					WithArgs(int64(1)).
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
			run: func(repo *UserRepository) error {
				return repo.Delete(context.Background(), 1)
			},
		},
		{
			name: "delete missing user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM users`).
					WithArgs(int64(9)).
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			run: func(repo *UserRepository) error {
				return repo.Delete(context.Background(), 9)
			},
			wantErr: quillpost.ErrUserNotFound,
		},
		{
			name: "delete database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM users`).
					WithArgs(int64(1)).
					WillReturnError(errConnRefused)
			},
			run: func(repo *UserRepository) error {
				return repo.Delete(context.Background(), 1)
			},
			wantErr: errConnRefused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			err := tt.run(NewUserRepository(mock))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
