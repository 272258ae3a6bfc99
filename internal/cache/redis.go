package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/medibook/internal/notification"
)

const notificationsKeyPrefix = "medibook:notifications:"

var _ Store = (*RedisStore)(nil)

// RedisStore shares one snapshot per user between devices that point at the
// same Redis.
type RedisStore struct {
	client *redis.Client
	userID string
}

func NewRedisStore(client *redis.Client, userID string) *RedisStore {
	return &RedisStore{client: client, userID: userID}
}

func (s *RedisStore) key() string {
	return notificationsKeyPrefix + s.userID
}

func (s *RedisStore) Load(ctx context.Context) ([]notification.Notification, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return decode(data)
}

func (s *RedisStore) Save(ctx context.Context, notifications []notification.Notification) error {
	data, err := encode(notifications)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}
	return nil
}
