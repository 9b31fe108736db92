package session

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultKeyPrefix namespaces session keys in a shared store.
	DefaultKeyPrefix = "session:"
	// DefaultTTL is the lifetime of a session from creation.
	DefaultTTL = 300 * time.Second
)

var (
	// ErrStoreUnavailable reports that the backend could not be reached or
	// did not answer in time.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrInvalidTTL is returned by Put for a non-positive ttl.
	ErrInvalidTTL = errors.New("session ttl must be positive")
)

// Store holds token to user id mappings.
//
// Implementations must be safe for concurrent use. Put is atomic with respect
// to Get on the same token: a reader sees the old record, the new record or
// nothing.
type Store interface {
	// Put inserts or overwrites the record for token, expiring it after ttl.
	Put(ctx context.Context, token string, userID int64, ttl time.Duration) error
	// Get returns the user id for token. found is false when the record is
	// missing, expired or unreadable.
	Get(ctx context.Context, token string) (userID int64, found bool, err error)
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, token string) error
}
