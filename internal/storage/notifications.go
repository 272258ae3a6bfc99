package storage

import (
	"context"
	"fmt"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/medibook/internal/notification"
)

const notificationsLivePrefix = "medibook:notifications:live:"

// RedisFanout relays added notifications to every server instance holding a
// live stream for the user.
type RedisFanout struct {
	client *redis.Client
}

func NewRedisFanout(client *redis.Client) *RedisFanout {
	return &RedisFanout{client: client}
}

func (f *RedisFanout) liveKey(userID string) string {
	return notificationsLivePrefix + userID
}

func (f *RedisFanout) Publish(ctx context.Context, userID string, n notification.Notification) error {
	data, err := go_json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := f.client.Publish(ctx, f.liveKey(userID), string(data)).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

func (f *RedisFanout) Subscribe(ctx context.Context, userID string) (<-chan notification.Notification, func(), error) {
	pubsub := f.client.Subscribe(ctx, f.liveKey(userID))

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	notifCh := make(chan notification.Notification)

	go func() {
		defer close(notifCh)
		ch := pubsub.Channel()

		for msg := range ch {
			var n notification.Notification
			if err := go_json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				continue
			}

			select {
			case notifCh <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	unsubscribe := func() {
		_ = pubsub.Close()
	}

	return notifCh, unsubscribe, nil
}

func (f *RedisFanout) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}
