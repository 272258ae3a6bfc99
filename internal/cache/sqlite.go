package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/garrettladley/medibook/internal/migrations"
	"github.com/garrettladley/medibook/internal/notification"
)

var _ Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) ([]notification.Notification, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx, "SELECT saved_at FROM cache_state WHERE id = 1").Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache state: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, body, created_at, read, link
		FROM notifications
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	notifications := []notification.Notification{}
	for rows.Next() {
		var (
			n         notification.Notification
			kind      string
			createdAt string
			read      int64
		)
		if err := rows.Scan(&n.ID, &kind, &n.Title, &n.Body, &createdAt, &read, &n.Link); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Kind = notification.Kind(kind)
		n.Read = read == 1
		n.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for %s: %w", n.ID, err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	slices.SortFunc(notifications, notification.Compare)
	return notifications, nil
}

// Save replaces the stored snapshot in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, notifications []notification.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notifications (id, kind, title, body, created_at, read, link)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, n := range notifications {
		var read int64
		if n.Read {
			read = 1
		}
		if _, err := stmt.ExecContext(ctx,
			n.ID,
			string(n.Kind),
			n.Title,
			n.Body,
			n.CreatedAt.UTC().Format(time.RFC3339Nano),
			read,
			n.Link,
		); err != nil {
			return fmt.Errorf("failed to insert notification %s: %w", n.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cache_state (id, saved_at) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET saved_at = excluded.saved_at
	`, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to update cache state: %w", err)
	}

	return tx.Commit()
}
