package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout wraps store so that each call runs under a deadline of d,
// derived from the caller's context. A call that misses its deadline, or
// whose context is canceled, fails with [ErrStoreUnavailable]. A
// non-positive d returns store unchanged.
func WithTimeout(store Store, d time.Duration) Store {
	if d <= 0 {
		return store
	}
	return &timeoutStore{next: store, timeout: d}
}

func (s *timeoutStore) Put(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return unavailable(ctx, s.next.Put(ctx, token, userID, ttl))
}

func (s *timeoutStore) Get(ctx context.Context, token string) (int64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	userID, found, err := s.next.Get(ctx, token)
	if err != nil {
		return 0, false, unavailable(ctx, err)
	}
	return userID, found, nil
}

func (s *timeoutStore) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return unavailable(ctx, s.next.Delete(ctx, token))
}

func unavailable(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}
