package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis as plain string keys.
//
//	Performance: 1 Redis command per operation.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store writing keys under prefix. An empty prefix
// selects [DefaultKeyPrefix].
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

// Put issues SET key id EX ttl.
func (s *RedisStore) Put(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	err := s.redis.Set(ctx, s.key(token), strconv.FormatInt(userID, 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Get issues GET key. A value that is not a decimal int64 is treated as no
// session.
func (s *RedisStore) Get(ctx context.Context, token string) (int64, bool, error) {
	raw, err := s.redis.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return userID, true, nil
}

// Delete issues DEL key.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping checks that Redis answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
