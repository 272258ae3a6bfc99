package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/medibook/internal/migrations/postgres"
	xredis "github.com/garrettladley/medibook/internal/redis"
	"github.com/garrettladley/medibook/internal/server"
	"github.com/garrettladley/medibook/internal/service/notification"
	"github.com/garrettladley/medibook/internal/service/token"
	"github.com/garrettladley/medibook/internal/storage"
	"github.com/garrettladley/medibook/internal/xslog"
)

const (
	keyPort        = "port"
	keyStore       = "store"
	keyEnv         = "env"
	keyGracePeriod = "grace_period"
	keyLimit       = "limit"
	keyWindow      = "window"

	shutdownTimeout = 30 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := xslog.NewLoggerFromEnv(os.Stdout)
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
		os.Exit(1)
	}
}

type backend struct {
	store   storage.NotificationStore
	limiter storage.RateLimiter
	close   func()
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := server.ReadConfig()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	b, err := initBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer b.close()

	shutdownCoordinator := server.NewShutdownCoordinator(cfg.SSE.GracePeriod)

	handler := server.New(server.Deps{
		Logger:        logger,
		Notifications: notification.NewStore(b.store),
		Tokens:        token.NewJWT(cfg.Auth),
		Limiter:       b.limiter,
		Health:        b.store,
		Shutdown:      shutdownCoordinator.Done(),
		Heartbeat:     cfg.SSE.Heartbeat,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // disabled for SSE; use SetWriteDeadline per-request
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return shutdownCoordinator.BaseContext()
		},
	}

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(signalCtx)

	g.Go(func() error {
		logger.InfoContext(ctx, "starting server",
			xslog.Version(),
			slog.String(keyPort, cfg.Port),
			slog.String(keyStore, string(cfg.Store)),
			slog.String(keyEnv, string(cfg.Env)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		// SSE streams get the grace period to send their shutdown event
		shutdownCoordinator.InitiateShutdown(shutdownCtx)
		logger.InfoContext(ctx, "SSE grace period complete, shutting down server",
			slog.Duration(keyGracePeriod, cfg.SSE.GracePeriod))

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}

func initBackend(ctx context.Context, cfg server.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Store {
	case server.StoreMemory:
		logger.InfoContext(ctx, "initializing in-memory backend",
			slog.Float64(keyLimit, cfg.RateLimit.Limit))
		limiter := storage.NewMemoryRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Burst)
		return &backend{
			store:   storage.NewMemoryNotificationStore(),
			limiter: limiter,
			close:   func() { _ = limiter.Close() },
		}, nil

	case server.StorePostgres:
		pool, err := initPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}

		redisClient, err := xredis.New(ctx, xredis.Config{URL: cfg.Redis.URL, ClientName: "medibook-server"})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to initialize redis client: %w", err)
		}

		logger.InfoContext(ctx, "initializing notification store (PostgreSQL + Redis pub/sub)",
			slog.Int(keyLimit, int(cfg.RateLimit.Limit)),
			slog.Duration(keyWindow, cfg.RateLimit.Window))

		return &backend{
			store:   storage.NewPostgresNotificationStore(pool, storage.NewRedisFanout(redisClient)),
			limiter: storage.NewRedisRateLimiter(redisClient, int(cfg.RateLimit.Limit), cfg.RateLimit.Window),
			close: func() {
				if err := redisClient.Close(); err != nil {
					logger.ErrorContext(ctx, "failed to close redis client", xslog.Error(err))
				}
				pool.Close()
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func initPostgres(ctx context.Context, cfg server.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.InfoContext(ctx, "initializing PostgreSQL")

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := postgres.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return pool, nil
}
