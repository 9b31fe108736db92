// Package config loads the service configuration from defaults, an optional
// YAML file, the environment and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quillpost/quillpost"
	"github.com/quillpost/quillpost/internal/logging"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig     `koanf:"server"`
	Database DatabaseConfig   `koanf:"database"`
	Redis    RedisConfig      `koanf:"redis"`
	Log      LogConfig        `koanf:"log"`
	Auth     quillpost.Config `koanf:"auth"`
}

type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig locates PostgreSQL. URL, when set, wins over the
// individual connection fields.
type DatabaseConfig struct {
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`

	MinConns       int32         `koanf:"min_conns"`
	MaxConns       int32         `koanf:"max_conns"`
	AcquireTimeout time.Duration `koanf:"acquire_timeout"`
	ConnectRetries uint64        `koanf:"connect_retries"`
}

type RedisConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// DSN returns a postgres:// connection URL.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              5000,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:           "127.0.0.1",
			Port:           5432,
			User:           "postgres",
			Password:       "password",
			Name:           "postgres",
			SSLMode:        "disable",
			MinConns:       1,
			MaxConns:       10,
			AcquireTimeout: 3 * time.Second,
			ConnectRetries: 5,
		},
		Redis: RedisConfig{
			Host:        "127.0.0.1",
			Port:        6379,
			DialTimeout: 3 * time.Second,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
		Auth: quillpost.DefaultConfig(),
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validPort("server.port", c.Server.Port); err != nil {
		return err
	}
	if c.Server.ReadHeaderTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return errors.New("server timeouts must be > 0")
	}

	if c.Database.URL == "" {
		if err := validPort("database.port", c.Database.Port); err != nil {
			return err
		}
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("database host and name are required")
		}
	}
	if c.Database.MinConns < 0 || c.Database.MaxConns <= 0 {
		return errors.New("database connection limits must be positive")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Database.AcquireTimeout <= 0 {
		return errors.New("database acquire_timeout must be > 0")
	}

	if err := validPort("redis.port", c.Redis.Port); err != nil {
		return err
	}
	if c.Redis.DialTimeout <= 0 {
		return errors.New("redis dial_timeout must be > 0")
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return c.Auth.Validate()
}

func validPort(name string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be in 1..65535, got %d", name, port)
	}
	return nil
}
