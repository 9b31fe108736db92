package quillpost

import (
	"context"
	"time"
)

// UserRecord is a row of the user store as the engine sees it.
type UserRecord struct {
	ID           int64
	Login        string
	PasswordHash string
}

// UserProvider is the engine's view of the user store.
//
// Implementations wrap [ErrUserNotFound] when no row matches and
// [ErrLoginTaken] when a login collides with an existing one. Any other
// error is treated as an infrastructure failure.
type UserProvider interface {
	GetUserByLogin(ctx context.Context, login string) (UserRecord, error)
	GetUserByID(ctx context.Context, id int64) (UserRecord, error)
	CreateUser(ctx context.Context, login, passwordHash string) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
}

// Message is a record owned by a user.
type Message struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
