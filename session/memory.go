package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStoreClosed is returned by a closed [MemoryStore].
var ErrStoreClosed = errors.New("session store closed")

type memoryRecord struct {
	userID    int64
	expiresAt time.Time
}

// MemoryStore is an in-process [Store]. Records carry an absolute expiry and
// are treated as absent from that instant on, even before the sweep removes
// them.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	closed  bool

	now   func() time.Time
	sweep time.Duration

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// MemoryOption configures a [MemoryStore].
type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now. Tests use it to move past a TTL without
// sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSweepInterval starts a goroutine that drops expired records every d.
// Close stops it.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.sweep = d
	}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.sweep > 0 {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.sweepLoop()
	}
	return s
}

func (s *MemoryStore) Put(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.records[token] = memoryRecord{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return 0, false, ErrStoreClosed
	}
	rec, ok := s.records[token]
	now := s.now()
	s.mu.RUnlock()

	if !ok {
		return 0, false, nil
	}
	if !now.Before(rec.expiresAt) {
		s.evict(token, now)
		return 0, false, nil
	}
	return rec.userID, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	delete(s.records, token)
	return nil
}

// Ping reports whether the store is open.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// evict removes token only if it is still expired; a concurrent Put may
// have replaced it between the read and the write lock.
func (s *MemoryStore) evict(token string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[token]; ok && !now.Before(rec.expiresAt) {
		delete(s.records, token)
	}
}

// Sweep drops every expired record and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for token, rec := range s.records {
		if !now.Before(rec.expiresAt) {
			delete(s.records, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored records, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close stops the sweeper and rejects further calls. It is idempotent.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.records = make(map[string]memoryRecord)
		s.mu.Unlock()

		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
	})
	return nil
}

func (s *MemoryStore) sweepLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
