// Package config loads client and server configuration from YAML files and
// RENTKEEPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/iudanet/rentkeeper/internal/validation"
)

// Бэкенды удаленного хранилища
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text или json
	File   string `mapstructure:"file"`   // пусто: stderr
}

// Validate validates the logging configuration
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be one of: text, json")
	}
	return nil
}

// ClientConfig represents the sync client configuration
type ClientConfig struct {
	Server  ServerEndpoint `mapstructure:"server"`
	Remote  RemoteConfig   `mapstructure:"remote"`
	Storage StorageConfig  `mapstructure:"storage"`
	User    UserConfig     `mapstructure:"user"`
	Sync    SyncConfig     `mapstructure:"sync"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Log     LogConfig      `mapstructure:"log"`
}

// ServerEndpoint is the rows API the client talks to
type ServerEndpoint struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RemoteConfig selects the remote store
type RemoteConfig struct {
	Backend     string `mapstructure:"backend"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// StorageConfig is the local bbolt database
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// UserConfig is the user the client syncs for
type UserConfig struct {
	ID string `mapstructure:"id"`
}

// SyncConfig tunes the sync engine
type SyncConfig struct {
	PullPageSize      int           `mapstructure:"pull_page_size"`
	ListPageSize      int           `mapstructure:"list_page_size"`
	PushBatchSize     int           `mapstructure:"push_batch_size"`
	Debounce          time.Duration `mapstructure:"debounce"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	Interval          time.Duration `mapstructure:"interval"` // период фоновой синхронизации в watch
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // пусто: метрики не публикуются
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	switch c.Remote.Backend {
	case BackendREST:
		if c.Server.URL == "" {
			return errors.New("server.url is required for the rest backend")
		}
		if _, err := url.ParseRequestURI(c.Server.URL); err != nil {
			return fmt.Errorf("server.url is invalid: %w", err)
		}
	case BackendPostgres:
		if c.Remote.PostgresDSN == "" {
			return errors.New("remote.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("remote.backend must be one of: %s, %s", BackendREST, BackendPostgres)
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path is required")
	}
	if c.User.ID != "" {
		if err := validation.ValidateUserID(c.User.ID); err != nil {
			return fmt.Errorf("user.id is invalid: %w", err)
		}
	}
	if c.Sync.PullPageSize <= 0 || c.Sync.ListPageSize <= 0 || c.Sync.PushBatchSize <= 0 {
		return errors.New("sync page and batch sizes must be positive")
	}
	if c.Sync.Debounce < 0 || c.Sync.Interval < 0 {
		return errors.New("sync.debounce and sync.interval must not be negative")
	}
	if c.Sync.ReconcileInterval <= 0 {
		return errors.New("sync.reconcile_interval must be positive")
	}
	return c.Log.Validate()
}

// ServerConfig represents the rows API server configuration
type ServerConfig struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// HTTPConfig represents HTTP server configuration
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig is the SQLite database of the server
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// JWTConfig configures access tokens
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig configures per-user request limiting
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if len(c.JWT.Secret) < 16 {
		return errors.New("jwt.secret must be at least 16 characters")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate_limit.requests_per_second and rate_limit.burst must be positive")
	}
	return c.Log.Validate()
}
