package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix namespaces environment overrides. Nested keys are separated by
// a double underscore: QUILLPOST_AUTH__SESSION__TTL=600s.
const EnvPrefix = "QUILLPOST_"

// legacyEnv maps the unprefixed variables older deployments set. The
// prefixed form wins when both are present.
var legacyEnv = map[string]string{
	"DB_HOST":     "database.host",
	"DB_PORT":     "database.port",
	"DB_USER":     "database.user",
	"DB_PASSWORD": "database.password",
	"DB_NAME":     "database.name",
	"REDIS_HOST":  "redis.host",
	"REDIS_PORT":  "redis.port",
	"APP_HOST":    "server.host",
	"APP_PORT":    "server.port",
}

// flagKeys binds command-line flag names to config keys. Flags not listed
// here are ignored by Load.
var flagKeys = map[string]string{
	"host":          "server.host",
	"port":          "server.port",
	"database-url":  "database.url",
	"redis-addr":    "",
	"log-format":    "log.format",
	"log-level":     "log.level",
	"session-store": "auth.session.backend",
	"hash-scheme":   "auth.password.scheme",
}

// Load layers defaults, the YAML file at path (skipped when empty), legacy
// and prefixed environment variables, and flags that were explicitly set.
// The result is validated.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return Config{}, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	if legacy := legacyValues(); len(legacy) > 0 {
		if err := k.Load(confmap.Provider(legacy, "."), nil); err != nil {
			return Config{}, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := flagKeys[f.Name]
			if key == "" || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
		if err := applyRedisAddr(k, flags); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}

// envKey turns QUILLPOST_AUTH__SESSION__KEY_PREFIX into
// auth.session.key_prefix.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", "."), value
}

func legacyValues() map[string]any {
	out := make(map[string]any)
	for name, key := range legacyEnv {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			out[key] = v
		}
	}
	return out
}

// applyRedisAddr splits --redis-addr host:port into the two redis keys.
func applyRedisAddr(k *koanf.Koanf, flags *pflag.FlagSet) error {
	f := flags.Lookup("redis-addr")
	if f == nil || !f.Changed {
		return nil
	}
	host, port, found := strings.Cut(f.Value.String(), ":")
	if !found || host == "" {
		return oops.Code("CONFIG_INVALID").With("redis_addr", f.Value.String()).Errorf("redis-addr must be host:port")
	}
	return k.Load(confmap.Provider(map[string]any{
		"redis.host": host,
		"redis.port": port,
	}, "."), nil)
}

func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"server.host":                d.Server.Host,
		"server.port":                d.Server.Port,
		"server.read_header_timeout": d.Server.ReadHeaderTimeout,
		"server.shutdown_timeout":    d.Server.ShutdownTimeout,

		"database.host":            d.Database.Host,
		"database.port":            d.Database.Port,
		"database.user":            d.Database.User,
		"database.password":        d.Database.Password,
		"database.name":            d.Database.Name,
		"database.sslmode":         d.Database.SSLMode,
		"database.min_conns":       d.Database.MinConns,
		"database.max_conns":       d.Database.MaxConns,
		"database.acquire_timeout": d.Database.AcquireTimeout,
		"database.connect_retries": d.Database.ConnectRetries,

		"redis.host":         d.Redis.Host,
		"redis.port":         d.Redis.Port,
		"redis.db":           d.Redis.DB,
		"redis.dial_timeout": d.Redis.DialTimeout,

		"log.format": d.Log.Format,
		"log.level":  d.Log.Level,

		"auth.session.backend":        d.Auth.Session.Backend,
		"auth.session.key_prefix":     d.Auth.Session.KeyPrefix,
		"auth.session.ttl":            d.Auth.Session.TTL,
		"auth.session.store_timeout":  d.Auth.Session.StoreTimeout,
		"auth.session.sweep_interval": d.Auth.Session.SweepInterval,

		"auth.password.scheme":             d.Auth.Password.Scheme,
		"auth.password.upgrade_on_login":   d.Auth.Password.UpgradeOnLogin,
		"auth.password.argon2.memory":      d.Auth.Password.Argon2.Memory,
		"auth.password.argon2.time":        d.Auth.Password.Argon2.Time,
		"auth.password.argon2.parallelism": d.Auth.Password.Argon2.Parallelism,
		"auth.password.argon2.salt_length": d.Auth.Password.Argon2.SaltLength,
		"auth.password.argon2.key_length":  d.Auth.Password.Argon2.KeyLength,

		"auth.metrics.enabled":            d.Auth.Metrics.Enabled,
		"auth.metrics.latency_histograms": d.Auth.Metrics.EnableLatencyHistograms,
	}
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("host", d.Server.Host, "listen host")
	fs.Int("port", d.Server.Port, "listen port")
	fs.String("database-url", "", "PostgreSQL URL (overrides database.* fields)")
	fs.String("redis-addr", "", "Redis host:port")
	fs.String("log-format", d.Log.Format, "log format: json or text")
	fs.String("log-level", d.Log.Level, "log level: debug, info, warn or error")
	fs.String("session-store", d.Auth.Session.Backend, "session store: redis or memory")
	fs.String("hash-scheme", d.Auth.Password.Scheme, "password scheme for new verifiers: sha256 or argon2id")
}
