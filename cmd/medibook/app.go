package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"github.com/garrettladley/medibook/internal/cache"
	"github.com/garrettladley/medibook/internal/client/api"
	"github.com/garrettladley/medibook/internal/client/sse"
	"github.com/garrettladley/medibook/internal/config"
	"github.com/garrettladley/medibook/internal/credential"
	"github.com/garrettladley/medibook/internal/paths"
	xredis "github.com/garrettladley/medibook/internal/redis"
	"github.com/garrettladley/medibook/internal/session"
	"github.com/garrettladley/medibook/internal/xslog"
	"github.com/garrettladley/medibook/internal/xsync"
)

// app holds everything a synchronizing command needs. close releases it in
// reverse order of acquisition.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	sync   *xsync.Synchronizer
	api    *api.Client

	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func openCredentials() (*credential.Store, error) {
	if _, err := paths.EnsureDir(); err != nil {
		return nil, err
	}
	dir, err := paths.Credentials()
	if err != nil {
		return nil, err
	}
	return credential.Open(dir)
}

func tokenSource(cfg config.Config) (oauth2.TokenSource, string, error) {
	store, err := openCredentials()
	if err != nil {
		return nil, "", err
	}

	raw := cfg.Token
	if raw == "" {
		if raw, err = store.Token(); err != nil {
			if errors.Is(err, credential.ErrNoToken) {
				return nil, "", errors.New("not logged in, run `medibook login` first")
			}
			return nil, "", err
		}
	}

	userID, err := credential.Subject(raw)
	if err != nil || userID == "" {
		// opaque tokens still work; the redis cache just shares one key
		userID = "default"
	}
	return store.TokenSource(cfg.Token), userID, nil
}

// newApp wires config, credentials, cache and clients into a synchronizer.
// logOut receives the structured logs.
func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: xslog.NewLogger(logOut, cfg.LogLevel, cfg.LogFormat),
	}

	tokens, userID, err := tokenSource(cfg)
	if err != nil {
		return nil, err
	}

	store, err := a.openCache(ctx, userID)
	if err != nil {
		a.close()
		return nil, err
	}

	sessionID := session.NewID()
	a.api = api.NewClient(cfg.ServerURL, tokens, sessionID)
	a.sync = xsync.New(xsync.Deps{
		Cache:   store,
		Poller:  a.api,
		Mutator: a.api,
		Live:    sse.NewClient(cfg.ServerURL, tokens, sessionID, a.logger),
		Logger:  a.logger,
	}, xsync.Options{
		PollInterval:   cfg.Sync.PollInterval,
		ReconnectDelay: cfg.Sync.ReconnectDelay,
		PollTimeout:    cfg.Sync.PollTimeout,
	})
	a.closers = append(a.closers, a.sync.Close)

	a.logger.InfoContext(ctx, "synchronizer ready",
		xslog.SessionID(sessionID),
		xslog.Backend(string(cfg.Cache.Kind)),
		xslog.Interval(cfg.Sync.PollInterval),
	)
	return a, nil
}

func (a *app) openCache(ctx context.Context, userID string) (cache.Store, error) {
	switch a.cfg.Cache.Kind {
	case config.CacheMemory:
		return cache.NewMemoryStore(), nil

	case config.CacheFile:
		if _, err := paths.EnsureDir(); err != nil {
			return nil, err
		}
		path, err := paths.NotificationCache()
		if err != nil {
			return nil, err
		}
		return cache.NewFileStore(path), nil

	case config.CacheSQLite:
		if _, err := paths.EnsureDir(); err != nil {
			return nil, err
		}
		path, err := paths.DB()
		if err != nil {
			return nil, err
		}
		store, err := cache.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		return store, nil

	case config.CacheRedis:
		client, err := xredis.New(ctx, xredis.Config{URL: a.cfg.Cache.RedisURL, ClientName: "medibook"})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return cache.NewRedisStore(client, userID), nil

	default:
		return nil, fmt.Errorf("unknown cache kind %q", a.cfg.Cache.Kind)
	}
}

// openLogFile returns the interactive log file, or io.Discard if it cannot
// be created.
func openLogFile() (io.Writer, func()) {
	if _, err := paths.EnsureDir(); err != nil {
		return io.Discard, func() {}
	}
	path, err := paths.Log()
	if err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { _ = f.Close() }
}
