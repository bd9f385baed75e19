package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. RENTKEEPER_SERVER_URL.
const EnvPrefix = "RENTKEEPER"

// LoadClient loads the client configuration. An empty path uses defaults and environment only.
func LoadClient(path string) (*ClientConfig, error) {
	v := newViper()

	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("server.token", "")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("remote.backend", BackendREST)
	v.SetDefault("remote.postgres_dsn", "")
	v.SetDefault("storage.path", "rentkeeper.db")
	v.SetDefault("user.id", "")
	v.SetDefault("sync.pull_page_size", 1000)
	v.SetDefault("sync.list_page_size", 1000)
	v.SetDefault("sync.push_batch_size", 500)
	v.SetDefault("sync.debounce", 2*time.Second)
	v.SetDefault("sync.reconcile_interval", 24*time.Hour)
	v.SetDefault("sync.interval", 5*time.Minute)
	v.SetDefault("metrics.addr", "")
	setLogDefaults(v)

	var cfg ClientConfig
	if err := load(v, path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadServer loads the server configuration. An empty path uses defaults and environment only.
func LoadServer(path string) (*ServerConfig, error) {
	v := newViper()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.path", "rentkeeper-server.db")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 30*24*time.Hour)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50.0)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)
	setLogDefaults(v)

	var cfg ServerConfig
	if err := load(v, path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setLogDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

// load reads path if given and decodes the merged settings into out.
func load(v *viper.Viper, path string, out any) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}
