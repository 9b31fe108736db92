package session

import (
	"context"
	"time"
)

// Issuer mints tokens and records them in a [Store].
type Issuer struct {
	store    Store
	ttl      time.Duration
	newToken func() (string, error)
}

// NewIssuer returns an issuer writing sessions that live for ttl. A
// non-positive ttl selects [DefaultTTL].
func NewIssuer(store Store, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{store: store, ttl: ttl, newToken: NewToken}
}

// TTL returns the lifetime given to issued sessions.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue creates a session for userID. The token is returned only once the
// store has acknowledged the write; on any failure the token is discarded
// and "" is returned.
func (i *Issuer) Issue(ctx context.Context, userID int64) (string, error) {
	token, err := i.newToken()
	if err != nil {
		return "", err
	}

	if err := i.store.Put(ctx, token, userID, i.ttl); err != nil {
		return "", err
	}
	return token, nil
}
