package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/garrettladley/medibook/internal/apperr"
	"github.com/garrettladley/medibook/internal/service/notification"
	"github.com/garrettladley/medibook/internal/storage"
	"github.com/garrettladley/medibook/internal/validator"
	"github.com/garrettladley/medibook/internal/xcontext"
	"github.com/garrettladley/medibook/internal/xhttp"
	"github.com/garrettladley/medibook/internal/xslog"
)

const maxCreateBody = 64 << 10

type Notifications struct {
	service notification.Service
}

func NewNotifications(service notification.Service) *Notifications {
	return &Notifications{service: service}
}

// HandlePoll handles GET /api/notifications requests. The response always
// carries the full inbox and its unread count.
func (h *Notifications) HandlePoll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	userID, ok := xcontext.GetUserID(ctx)
	if !ok {
		apperr.WriteError(w, apperr.Unauthorized("unauthorized", "missing user context"))
		return
	}

	result, err := h.service.Poll(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch notifications", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal("internal_error", "failed to fetch notifications", err))
		return
	}

	logger.DebugContext(ctx, "fetched notifications",
		xslog.Count(len(result.Notifications)),
		xslog.Unread(result.UnreadCount),
	)

	xhttp.WriteOK(w, result)
}

// HandleCreate handles POST /api/notifications requests.
func (h *Notifications) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	userID, ok := xcontext.GetUserID(ctx)
	if !ok {
		apperr.WriteError(w, apperr.Unauthorized("unauthorized", "missing user context"))
		return
	}

	var params notification.CreateParams
	if err := xhttp.DecodeJSON(w, r, maxCreateBody, &params); err != nil {
		apperr.WriteError(w, apperr.BadRequest("invalid_request", "invalid JSON body"))
		return
	}

	created, err := h.service.Create(ctx, userID, params)
	switch {
	case errors.Is(err, notification.ErrInvalidNotification):
		var verr *validator.Error
		if errors.As(err, &verr) {
			apperr.WriteError(w, apperr.Validation("invalid_notification", "notification failed validation", verr.Fields))
			return
		}
		apperr.WriteError(w, apperr.BadRequest("invalid_request", err.Error()))
		return
	case errors.Is(err, storage.ErrPublishFailed):
		// stored; live clients catch up on their next poll
		logger.WarnContext(ctx, "notification stored but not published",
			xslog.NotificationID(created.ID),
			xslog.Error(err),
		)
	case err != nil:
		logger.ErrorContext(ctx, "failed to create notification", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal("internal_error", "failed to create notification", err))
		return
	}

	logger.InfoContext(ctx, "created notification",
		xslog.NotificationID(created.ID),
		xslog.Type(string(created.Kind)),
	)

	xhttp.WriteCreated(w, created)
}

// HandleMarkRead handles POST /api/notifications/{id}/read requests.
func (h *Notifications) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "mark_read", func(userID, id string) error {
		return h.service.MarkRead(r.Context(), userID, id)
	})
}

// HandleMarkAllRead handles POST /api/notifications/read requests.
func (h *Notifications) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "mark_all_read", func(userID, _ string) error {
		return h.service.MarkAllRead(r.Context(), userID)
	})
}

// HandleDelete handles DELETE /api/notifications/{id} requests.
func (h *Notifications) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "delete", func(userID, id string) error {
		return h.service.Delete(r.Context(), userID, id)
	})
}

// HandleClear handles DELETE /api/notifications requests.
func (h *Notifications) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "clear_all", func(userID, _ string) error {
		return h.service.Clear(r.Context(), userID)
	})
}

func (h *Notifications) mutate(w http.ResponseWriter, r *http.Request, op string, apply func(userID, id string) error) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	userID, ok := xcontext.GetUserID(ctx)
	if !ok {
		apperr.WriteError(w, apperr.Unauthorized("unauthorized", "missing user context"))
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))

	err := apply(userID, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		apperr.WriteError(w, apperr.NotFound("not_found", "notification not found"))
		return
	case err != nil:
		logger.ErrorContext(ctx, "notification mutation failed",
			xslog.Op(op),
			xslog.NotificationID(id),
			xslog.Error(err),
		)
		apperr.WriteError(w, apperr.Internal("internal_error", "failed to update notifications", err))
		return
	}

	logger.DebugContext(ctx, "notification mutation applied",
		xslog.Op(op),
		xslog.NotificationID(id),
	)
	xhttp.WriteNoContent(w)
}
