// Package redis builds the go-redis clients shared by the server's pub/sub
// fan-out and rate limiter and by the client's redis cache backend.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 5 * time.Second

type Config struct {
	URL string
	// ClientName shows up in CLIENT LIST. Optional.
	ClientName  string
	PingTimeout time.Duration
}

// New parses cfg.URL, connects and pings once so a bad URL fails at startup
// instead of on the first command.
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.ClientName != "" {
		opt.ClientName = cfg.ClientName
	}

	client := redis.NewClient(opt)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
