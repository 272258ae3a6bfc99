package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/garrettladley/medibook/internal/xslog"
)

const DefaultServerURL = "https://medibook.fly.dev"

type CacheKind string

const (
	CacheFile   CacheKind = "file"
	CacheSQLite CacheKind = "sqlite"
	CacheRedis  CacheKind = "redis"
	CacheMemory CacheKind = "memory"
)

type Config struct {
	ServerURL string `env:"SERVER_URL" envDefault:"https://medibook.fly.dev"`

	// Token overrides the keyring credential, for CI and scripts.
	Token string `env:"TOKEN"`

	LogLevel  xslog.Level  `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat xslog.Format `env:"LOG_FORMAT" envDefault:"json"`

	Sync  Sync  `envPrefix:"SYNC_"`
	Cache Cache `envPrefix:"CACHE_"`
}

type Sync struct {
	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY" envDefault:"15s"`
	PollTimeout    time.Duration `env:"POLL_TIMEOUT" envDefault:"30s"`
}

type Cache struct {
	Kind     CacheKind `env:"KIND" envDefault:"sqlite"`
	RedisURL string    `env:"REDIS_URL"`
}

func Read() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "MEDIBOOK_"})
	if err != nil {
		return Config{}, err
	}
	switch cfg.Cache.Kind {
	case CacheFile, CacheSQLite, CacheMemory:
	case CacheRedis:
		if cfg.Cache.RedisURL == "" {
			return Config{}, fmt.Errorf("MEDIBOOK_CACHE_REDIS_URL is required for the redis cache")
		}
	default:
		return Config{}, fmt.Errorf("unknown cache kind %q", cfg.Cache.Kind)
	}
	return cfg, nil
}
