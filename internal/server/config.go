package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	appenv "github.com/garrettladley/medibook/internal/env"
	"github.com/garrettladley/medibook/internal/service/token"
)

type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StorePostgres StoreKind = "postgres"
)

type Config struct {
	Port      string             `env:"PORT" envDefault:"8080"`
	Env       appenv.Environment `env:"ENV" envDefault:"development"`
	Store     StoreKind          `env:"STORE" envDefault:"postgres"`
	Database  Database           `envPrefix:"DATABASE_"`
	Redis     Redis              `envPrefix:"REDIS_"`
	Auth      token.Config       `envPrefix:"AUTH_"`
	RateLimit RateLimit          `envPrefix:"RATE_"`
	SSE       SSE                `envPrefix:"SSE_"`
}

type Database struct {
	URL string `env:"URL"`
}

type Redis struct {
	URL string `env:"URL"`
}

type RateLimit struct {
	// Limit is requests per second for the in-memory limiter and requests
	// per Window for the Redis limiter.
	Limit  float64       `env:"LIMIT" envDefault:"10"`
	Burst  int           `env:"BURST" envDefault:"20"`
	Window time.Duration `env:"WINDOW" envDefault:"1m"`
}

type SSE struct {
	Heartbeat   time.Duration `env:"HEARTBEAT" envDefault:"30s"`
	GracePeriod time.Duration `env:"GRACE_PERIOD" envDefault:"2s"`
}

func ReadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if err := c.Env.Validate(); err != nil {
		return err
	}

	switch c.Store {
	case StoreMemory:
		if c.Env.IsProduction() {
			return fmt.Errorf("store %q is not allowed in %s", c.Store, c.Env)
		}
		return nil
	case StorePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for store %q", c.Store)
		}
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for store %q", c.Store)
		}
		return nil
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
}
