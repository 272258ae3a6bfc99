package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garrettladley/medibook/internal/notification"
)

var _ NotificationStore = (*PostgresNotificationStore)(nil)

// PostgresNotificationStore keeps inboxes in PostgreSQL and fans live
// notifications out through Redis pub/sub.
type PostgresNotificationStore struct {
	pool   *pgxpool.Pool
	fanout *RedisFanout
}

func NewPostgresNotificationStore(pool *pgxpool.Pool, fanout *RedisFanout) *PostgresNotificationStore {
	return &PostgresNotificationStore{
		pool:   pool,
		fanout: fanout,
	}
}

const notificationColumns = `id, kind, title, body, link, read, created_at`

func scanNotification(row pgx.CollectableRow) (notification.Notification, error) {
	var (
		n    notification.Notification
		kind string
	)
	if err := row.Scan(&n.ID, &kind, &n.Title, &n.Body, &n.Link, &n.Read, &n.CreatedAt); err != nil {
		return notification.Notification{}, err
	}
	n.Kind = notification.ParseKind(kind)
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}

func (s *PostgresNotificationStore) List(ctx context.Context, userID string) ([]notification.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("scan notifications: %w", err)
	}
	return items, nil
}

func (s *PostgresNotificationStore) Add(ctx context.Context, userID string, n notification.Notification) (notification.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		INSERT INTO notifications (user_id, id, kind, title, body, link, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, id) DO NOTHING
		RETURNING `+notificationColumns,
		userID, n.ID, string(n.Kind), n.Title, n.Body, n.Link, n.Read, n.CreatedAt,
	)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("insert notification: %w", err)
	}

	stored, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	// no row means ON CONFLICT DO NOTHING fired; it was already published
	if errors.Is(err, pgx.ErrNoRows) {
		return s.get(ctx, userID, n.ID)
	}
	if err != nil {
		return notification.Notification{}, fmt.Errorf("insert notification: %w", err)
	}

	if err := s.fanout.Publish(ctx, userID, stored); err != nil {
		return stored, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return stored, nil
}

func (s *PostgresNotificationStore) get(ctx context.Context, userID string, id string) (notification.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("get notification: %w", err)
	}

	n, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	if errors.Is(err, pgx.ErrNoRows) {
		return notification.Notification{}, ErrNotFound
	}
	if err != nil {
		return notification.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *PostgresNotificationStore) MarkRead(ctx context.Context, userID string, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresNotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (s *PostgresNotificationStore) Delete(ctx context.Context, userID string, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresNotificationStore) Clear(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

func (s *PostgresNotificationStore) Subscribe(ctx context.Context, userID string) (<-chan notification.Notification, func(), error) {
	return s.fanout.Subscribe(ctx, userID)
}

func (s *PostgresNotificationStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if err := s.fanout.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
