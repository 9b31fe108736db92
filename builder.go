package quillpost

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/quillpost/quillpost/password"
	"github.com/quillpost/quillpost/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder is single use.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  session.Store

	userProvider UserProvider
	logger       *slog.Logger

	built bool
}

func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis backs sessions with Redis under Config.Session.KeyPrefix.
//
// The client must be created with ContextTimeoutEnabled so that per-call
// deadlines reach network I/O.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessionStore injects a store directly. It takes precedence over
// WithRedis and Config.Session.Backend.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.userProvider == nil {
		return nil, ErrMissingUsers
	}

	scheme, err := password.ParseScheme(cfg.Password.Scheme)
	if err != nil {
		return nil, err
	}
	codec, err := password.New(scheme, cfg.Password.Argon2)
	if err != nil {
		return nil, err
	}

	// -------- SESSION STORE --------
	var (
		store session.Store
		owned *session.MemoryStore
	)
	switch {
	case b.store != nil:
		store = b.store
	case strings.EqualFold(cfg.Session.Backend, BackendMemory):
		owned = session.NewMemoryStore(session.WithSweepInterval(cfg.Session.SweepInterval))
		store = owned
	case b.redis != nil:
		store = session.NewRedisStore(b.redis, cfg.Session.KeyPrefix)
	default:
		return nil, ErrMissingStore
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:       cfg,
		rawStore:     store,
		ownedStore:   owned,
		sessionStore: session.WithTimeout(store, cfg.Session.StoreTimeout),
		passwords:    codec,
		userProvider: b.userProvider,
		metrics:      NewMetrics(cfg.Metrics),
		logger:       logger.With("component", "auth"),
	}
	engine.issuer = session.NewIssuer(engine.sessionStore, cfg.Session.TTL)
	engine.initFlowDeps()

	b.built = true
	return engine, nil
}
