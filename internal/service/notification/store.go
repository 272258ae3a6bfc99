package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/storage"
	"github.com/garrettladley/medibook/internal/validator"
)

type Store struct {
	store storage.NotificationStore
	now   func() time.Time
}

var _ Service = (*Store)(nil)

func NewStore(store storage.NotificationStore) *Store {
	return &Store{store: store, now: time.Now}
}

func (s *Store) Poll(ctx context.Context, userID string) (*PollResult, error) {
	notifications, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	if notifications == nil {
		notifications = []notification.Notification{}
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	return &PollResult{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

func (s *Store) Create(ctx context.Context, userID string, params CreateParams) (notification.Notification, error) {
	if verr := validator.Validate(params); verr != nil {
		return notification.Notification{}, fmt.Errorf("%w: %w", ErrInvalidNotification, verr)
	}

	id := strings.TrimSpace(params.ID)
	if id == "" {
		id = uuid.NewString()
	}

	n, err := notification.Normalize(notification.Notification{
		ID:        id,
		Kind:      params.Kind,
		Title:     strings.TrimSpace(params.Title),
		Body:      strings.TrimSpace(params.Body),
		Link:      strings.TrimSpace(params.Link),
		CreatedAt: params.CreatedAt,
	}, s.now())
	if err != nil {
		return notification.Notification{}, err
	}

	return s.store.Add(ctx, userID, n)
}

func (s *Store) MarkRead(ctx context.Context, userID string, id string) error {
	return s.store.MarkRead(ctx, userID, id)
}

func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *Store) Delete(ctx context.Context, userID string, id string) error {
	return s.store.Delete(ctx, userID, id)
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}

func (s *Store) Subscribe(ctx context.Context, userID string) (<-chan notification.Notification, func(), error) {
	return s.store.Subscribe(ctx, userID)
}
