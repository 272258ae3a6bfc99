package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"

	"github.com/garrettladley/medibook/internal/notification"
)

var ErrNotFound = errors.New("no cached notifications")

// Store persists the last known notification snapshot across runs.
type Store interface {
	// Load returns ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) ([]notification.Notification, error)

	Save(ctx context.Context, notifications []notification.Notification) error
}

const snapshotVersion = 1

type snapshot struct {
	Version       int                         `json:"version"`
	SavedAt       time.Time                   `json:"saved_at"`
	Notifications []notification.Notification `json:"notifications"`
}

func encode(notifications []notification.Notification) ([]byte, error) {
	if notifications == nil {
		notifications = []notification.Notification{}
	}
	data, err := go_json.Marshal(snapshot{
		Version:       snapshotVersion,
		SavedAt:       time.Now().UTC(),
		Notifications: notifications,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]notification.Notification, error) {
	var s snapshot
	if err := go_json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return s.Notifications, nil
}
