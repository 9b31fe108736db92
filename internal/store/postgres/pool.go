package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Ping(ctx context.Context) error
}

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	DSN      string
	MinConns int32
	MaxConns int32
	// AcquireTimeout bounds establishing a connection and the startup ping.
	AcquireTimeout time.Duration
	// ConnectRetries is the number of extra startup attempts after the first
	// ping fails.
	ConnectRetries uint64
	ConnectBackoff time.Duration
}

func (c *PoolConfig) defaults() {
	if c.MinConns <= 0 {
		c.MinConns = 1
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 10
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = 3 * time.Second
	}
	if c.ConnectBackoff <= 0 {
		c.ConnectBackoff = 250 * time.Millisecond
	}
}

// Open creates the pool and pings it, retrying with exponential backoff
// while the database comes up. The returned pool is ready for queries.
func Open(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	cfg.defaults()

	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse dsn").Wrap(err)
	}
	pcfg.MinConns = cfg.MinConns
	pcfg.MaxConns = cfg.MaxConns
	pcfg.ConnConfig.ConnectTimeout = cfg.AcquireTimeout

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, oops.Code("DB_POOL_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxRetries(cfg.ConnectRetries, retry.NewExponential(cfg.ConnectBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_UNREACHABLE").
			With("max_conns", cfg.MaxConns).
			With("retries", cfg.ConnectRetries).
			Wrap(err)
	}

	return pool, nil
}
