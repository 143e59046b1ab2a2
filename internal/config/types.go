// Package config loads the goalbridge configuration file.
package config

import (
	"time"

	"goalbridge/internal/app/translator"
	"goalbridge/internal/observability"
)

// Config is the full application configuration.
type Config struct {
	Server        ServerConfig          `yaml:"server"`
	Database      DatabaseConfig        `yaml:"database"`
	Engine        EngineConfig          `yaml:"engine"`
	Observability observability.Config  `yaml:"observability"`
	Heuristics    translator.Heuristics `yaml:"heuristics"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr               string        `yaml:"addr"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int           `yaml:"rate_limit_burst"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig configures the Postgres store. An empty URL selects the
// in-memory store.
type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConns       int32         `yaml:"max_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	AutoMigrate    bool          `yaml:"auto_migrate"`
}

// EngineConfig configures the translation engine and its pool.
type EngineConfig struct {
	PoolSize         int           `yaml:"pool_size"`
	PoolTTL          time.Duration `yaml:"pool_ttl"`
	InitTimeout      time.Duration `yaml:"init_timeout"`
	AuditTimeout     time.Duration `yaml:"audit_timeout"`
	AuditMaxAttempts int           `yaml:"audit_max_attempts"`
	DrainTimeout     time.Duration `yaml:"drain_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:               ":8080",
			RateLimitPerMinute: 600,
			RateLimitBurst:     60,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:       10,
			ConnectTimeout: 5 * time.Second,
		},
		Engine: EngineConfig{
			PoolSize:         256,
			PoolTTL:          5 * time.Minute,
			InitTimeout:      10 * time.Second,
			AuditTimeout:     5 * time.Second,
			AuditMaxAttempts: 4,
			DrainTimeout:     5 * time.Second,
		},
		Observability: observability.DefaultConfig(),
		Heuristics:    translator.DefaultHeuristics(),
	}
}

// EnvLookup resolves an environment variable.
type EnvLookup func(string) (string, bool)
