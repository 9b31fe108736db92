package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	mock := newMock(t)
	mock.ExpectCopyFrom(pgx.Identifier{"users"}, []string{"login", "password_hash"}).
		WillReturnResult(2)
	mock.ExpectQuery(`SELECT id FROM users WHERE starts_with\(login, \$1\)`).
		WithArgs("load").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(10)).AddRow(int64(11)))
	mock.ExpectCopyFrom(pgx.Identifier{"messages"}, []string{"user_id", "text"}).
		WillReturnResult(6)

	res, err := Seed(context.Background(), mock, SeedOptions{
		Users:           2,
		MessagesPerUser: 3,
		Prefix:          "load",
		PasswordHash:    "h",
	})
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: 2, Messages: 6}, res)
}

func TestSeedUsersOnly(t *testing.T) {
	mock := newMock(t)
	mock.ExpectCopyFrom(pgx.Identifier{"users"}, []string{"login", "password_hash"}).
		WillReturnResult(5)

	res, err := Seed(context.Background(), mock, SeedOptions{Users: 5, PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Users)
	assert.Zero(t, res.Messages)
}

func TestSeedNothingRequested(t *testing.T) {
	mock := newMock(t)

	res, err := Seed(context.Background(), mock, SeedOptions{})
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, res)
}

func TestSeedLoginCollision(t *testing.T) {
	mock := newMock(t)
	mock.ExpectCopyFrom(pgx.Identifier{"users"}, []string{"login", "password_hash"}).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := Seed(context.Background(), mock, SeedOptions{Users: 1, PasswordHash: "h"})
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}
