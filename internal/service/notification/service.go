package notification

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/validator"
)

var ErrInvalidNotification = errors.New("invalid notification")

const (
	maxIDLength    = 128
	maxTitleLength = 200
	maxBodyLength  = 4000
)

type PollResult struct {
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unread_count"`
}

// CreateParams describes a notification issued by another service. ID and
// CreatedAt are optional; producers that retry should set ID so the retry is
// deduplicated.
type CreateParams struct {
	ID        string            `json:"id,omitempty"`
	Kind      notification.Kind `json:"kind"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Link      string            `json:"link,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

var _ validator.Validator = CreateParams{}

func (p CreateParams) Validate() map[string]string {
	errs := make(map[string]string)

	title, body := strings.TrimSpace(p.Title), strings.TrimSpace(p.Body)
	if title == "" && body == "" {
		errs["title"] = "title or body is required"
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		errs["title"] = "too long"
	}
	if utf8.RuneCountInString(body) > maxBodyLength {
		errs["body"] = "too long"
	}
	if len(p.ID) > maxIDLength {
		errs["id"] = "too long"
	}
	if link := strings.TrimSpace(p.Link); link != "" {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs["link"] = "must be an http or https URL"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

type Service interface {
	// Poll returns the user's full inbox and its unread count.
	Poll(ctx context.Context, userID string) (*PollResult, error)

	// Create stores a notification and pushes it to the user's live streams.
	Create(ctx context.Context, userID string, params CreateParams) (notification.Notification, error)

	MarkRead(ctx context.Context, userID string, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, id string) error
	Clear(ctx context.Context, userID string) error

	// Subscribe creates a subscription for live notifications.
	// Returns a channel that receives notifications and an unsubscribe function.
	Subscribe(ctx context.Context, userID string) (<-chan notification.Notification, func(), error)
}
