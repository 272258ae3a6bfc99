package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/garrettladley/medibook/internal/server/handler"
	servermw "github.com/garrettladley/medibook/internal/server/middleware"
	"github.com/garrettladley/medibook/internal/service/notification"
	"github.com/garrettladley/medibook/internal/service/token"
	"github.com/garrettladley/medibook/internal/storage"
	"github.com/garrettladley/medibook/internal/xhttp/middleware"
)

type Deps struct {
	Logger        *slog.Logger
	Notifications notification.Service
	Tokens        token.Service
	Limiter       storage.RateLimiter
	Health        handler.Pinger

	// Shutdown closes when the server begins shutting down. Optional.
	Shutdown  <-chan struct{}
	Heartbeat time.Duration
}

// New returns the medibook HTTP API.
//
//	GET    /health
//	GET    /api/notifications
//	POST   /api/notifications
//	DELETE /api/notifications
//	POST   /api/notifications/read
//	POST   /api/notifications/{id}/read
//	DELETE /api/notifications/{id}
//	GET    /api/notifications/stream
func New(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	notificationsHandler := handler.NewNotifications(deps.Notifications)
	sseHandler := handler.NewSSE(deps.Notifications, deps.Heartbeat)
	healthHandler := handler.NewHealth(deps.Health)

	mux := http.NewServeMux()

	// unauthenticated routes are limited per client IP
	mux.Handle("GET /health", middleware.Chain(
		http.HandlerFunc(healthHandler.HandleHealth),
		servermw.RateLimit(deps.Limiter),
	))

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/notifications", notificationsHandler.HandlePoll)
	apiMux.HandleFunc("POST /api/notifications", notificationsHandler.HandleCreate)
	apiMux.HandleFunc("DELETE /api/notifications", notificationsHandler.HandleClear)
	apiMux.HandleFunc("POST /api/notifications/read", notificationsHandler.HandleMarkAllRead)
	apiMux.HandleFunc("POST /api/notifications/{id}/read", notificationsHandler.HandleMarkRead)
	apiMux.HandleFunc("DELETE /api/notifications/{id}", notificationsHandler.HandleDelete)
	apiMux.HandleFunc("GET /api/notifications/stream", sseHandler.HandleStream)
	mux.Handle("/api/", middleware.Chain(apiMux,
		middleware.VersionCheck,
		servermw.BearerAuth(deps.Tokens),
		servermw.RateLimit(deps.Limiter),
	))

	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Logging,
		middleware.ShutdownContext(deps.Shutdown),
		middleware.ClientSessionID,
		middleware.SecurityHeaders,
		middleware.Gzip,
	)
}
