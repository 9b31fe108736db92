package quillpost

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quillpost/quillpost/password"
	"github.com/quillpost/quillpost/session"
)

// Config is the engine configuration. Build it from [DefaultConfig] and
// override fields; [Builder.Build] validates it.
type Config struct {
	Session  SessionConfig  `koanf:"session"`
	Password PasswordConfig `koanf:"password"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls token lifetime and the session store round trip.
type SessionConfig struct {
	// Backend selects the store built from a Redis client: "redis" or
	// "memory". Ignored when a store is injected with WithSessionStore.
	Backend   string `koanf:"backend"`
	KeyPrefix string `koanf:"key_prefix"`
	// TTL is absolute: reads never extend it.
	TTL time.Duration `koanf:"ttl"`
	// StoreTimeout bounds each store call in addition to the caller's
	// own deadline.
	StoreTimeout  time.Duration `koanf:"store_timeout"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects the scheme for new verifiers. Verification accepts
// every known scheme regardless.
type PasswordConfig struct {
	Scheme string          `koanf:"scheme"`
	Argon2 password.Config `koanf:"argon2"`
	// UpgradeOnLogin rewrites a verifier produced by another scheme (or
	// weaker argon2id parameters) after a successful login.
	UpgradeOnLogin bool `koanf:"upgrade_on_login"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled                 bool `koanf:"enabled"`
	EnableLatencyHistograms bool `koanf:"latency_histograms"`
}

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultConfig returns the configuration the service runs with when
// nothing is overridden: unsalted SHA-256 verifiers and 300 second sessions
// under the "session:" prefix.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			Backend:       BackendRedis,
			KeyPrefix:     session.DefaultKeyPrefix,
			TTL:           session.DefaultTTL,
			StoreTimeout:  2 * time.Second,
			SweepInterval: time.Minute,
		},
		Password: PasswordConfig{
			Scheme:         string(password.SchemeSHA256),
			Argon2:         password.DefaultArgon2Config(),
			UpgradeOnLogin: false,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch strings.ToLower(c.Session.Backend) {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("session backend must be %q or %q, got %q", BackendRedis, BackendMemory, c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session TTL must be > 0")
	}
	if c.Session.StoreTimeout <= 0 {
		return errors.New("session store timeout must be > 0")
	}
	if c.Session.SweepInterval < 0 {
		return errors.New("session sweep interval must be >= 0")
	}
	if strings.TrimSpace(c.Session.KeyPrefix) == "" {
		return errors.New("session key prefix must not be empty")
	}

	if _, err := password.ParseScheme(c.Password.Scheme); err != nil {
		return err
	}
	if err := c.Password.Argon2.Validate(); err != nil {
		return err
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("latency histograms require metrics to be enabled")
	}

	return nil
}
