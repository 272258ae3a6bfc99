package storage

import (
	"context"
	"errors"
	"time"

	"github.com/garrettladley/medibook/internal/notification"
)

var (
	ErrNotFound = errors.New("notification not found")

	// ErrPublishFailed means the notification was stored but live
	// subscribers were not told. They pick it up on their next poll.
	ErrPublishFailed = errors.New("publish failed")
)

type RateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}

// NotificationStore is the server's per-user inbox.
type NotificationStore interface {
	// List returns the user's notifications, newest first.
	List(ctx context.Context, userID string) ([]notification.Notification, error)

	// Add stores n and publishes it to the user's live subscribers. Adding an
	// id that already exists returns the stored notification and publishes
	// nothing.
	Add(ctx context.Context, userID string, n notification.Notification) (notification.Notification, error)

	// MarkRead returns ErrNotFound if the user has no such notification.
	MarkRead(ctx context.Context, userID string, id string) error

	MarkAllRead(ctx context.Context, userID string) error

	// Delete returns ErrNotFound if the user has no such notification.
	Delete(ctx context.Context, userID string, id string) error

	Clear(ctx context.Context, userID string) error

	// Subscribe returns a channel that receives notifications added for a user.
	// The returned function should be called to unsubscribe.
	Subscribe(ctx context.Context, userID string) (<-chan notification.Notification, func(), error)

	Ping(ctx context.Context) error
}
