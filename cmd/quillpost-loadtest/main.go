// Command quillpost-loadtest drives the login, authenticate and logout paths
// of the engine against Redis (or an embedded miniredis) and prints latency
// percentiles per phase.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"

	"github.com/quillpost/quillpost"
	"github.com/quillpost/quillpost/password"
)

const loadPassword = "1234"

func main() {
	var (
		users       = flag.Int("users", 10000, "number of distinct users")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "session:", "session key prefix")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	client, cleanup, err := connect(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cfg := quillpost.DefaultConfig()
	cfg.Session.KeyPrefix = *prefix
	engine, err := quillpost.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserProvider(newUserTable(*users)).
		WithLogger(slog.New(slog.DiscardHandler)).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	res := run(context.Background(), engine, *users, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("login", res.login)
	printStats("authenticate", res.authenticate)
	printStats("logout", res.logout)
}

func connect(addr string) (redis.UniversalClient, func(), error) {
	if addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, ContextTimeoutEnabled: true})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}
	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), ContextTimeoutEnabled: true})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

// userTable is a read-only user store holding user1..userN, all with the
// same SHA-256 verifier.
type userTable struct {
	byLogin map[string]quillpost.UserRecord
}

func newUserTable(n int) *userTable {
	verifier := password.Digest(loadPassword)
	t := &userTable{byLogin: make(map[string]quillpost.UserRecord, n)}
	for i := 1; i <= n; i++ {
		login := "user" + strconv.Itoa(i)
		t.byLogin[login] = quillpost.UserRecord{ID: int64(i), Login: login, PasswordHash: verifier}
	}
	return t
}

func (t *userTable) GetUserByLogin(_ context.Context, login string) (quillpost.UserRecord, error) {
	u, ok := t.byLogin[login]
	if !ok {
		return quillpost.UserRecord{}, quillpost.ErrUserNotFound
	}
	return u, nil
}

func (t *userTable) GetUserByID(_ context.Context, id int64) (quillpost.UserRecord, error) {
	u, ok := t.byLogin["user"+strconv.FormatInt(id, 10)]
	if !ok {
		return quillpost.UserRecord{}, quillpost.ErrUserNotFound
	}
	return u, nil
}

func (t *userTable) CreateUser(context.Context, string, string) (quillpost.UserRecord, error) {
	return quillpost.UserRecord{}, quillpost.ErrLoginTaken
}

func (t *userTable) UpdatePasswordHash(context.Context, int64, string) error {
	return nil
}

type results struct {
	login        phaseStats
	authenticate phaseStats
	logout       phaseStats
}

// run logs in ops times, authenticates ops random tokens from the pool it
// collected, then logs every collected token out.
func run(ctx context.Context, engine *quillpost.Engine, users, ops, concurrency int) results {
	tokens := make([]string, ops)

	var res results
	res.login = runPhase(ops, concurrency, func(_ *rand.Rand, i int) error {
		token, err := engine.Login(ctx, "user"+strconv.Itoa(i%users+1), loadPassword)
		tokens[i] = token
		return err
	})
	res.authenticate = runPhase(ops, concurrency, func(r *rand.Rand, _ int) error {
		_, err := engine.Authenticate(ctx, tokens[r.IntN(len(tokens))])
		return err
	})
	res.logout = runPhase(ops, concurrency, func(_ *rand.Rand, i int) error {
		return engine.Logout(ctx, tokens[i])
	})
	return res
}

// runPhase calls op for i in [0, ops) across concurrency workers.
func runPhase(ops, concurrency int, op func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    atomic.Int64
		failures  atomic.Int64
		latencies = make([]time.Duration, ops)
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker uint64) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), worker*7919))
			for {
				i := int(cursor.Add(1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
				latencies[i] = time.Since(t0)
				if err != nil {
					failures.Add(1)
				}
			}
		}(uint64(w))
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures.Load())
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
