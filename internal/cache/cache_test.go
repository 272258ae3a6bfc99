package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/medibook/internal/notification"
)

var sample = []notification.Notification{
	{
		ID:        "n2",
		Kind:      notification.KindWarning,
		Title:     "Appointment moved",
		Body:      "Dr. Osei now sees you at 10:30",
		CreatedAt: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		Link:      "/appointments/42",
	},
	{
		ID:        "n1",
		Kind:      notification.KindInfo,
		Title:     "Lab results ready",
		CreatedAt: time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC),
		Read:      true,
	},
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	dir := t.TempDir()
	sqlite, err := OpenSQLite(t.Context(), filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(dir, "nested", "notifications.json")),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Load() on empty store error = %v, want ErrNotFound", err)
			}

			if err := store.Save(ctx, sample); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(sample, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}

			// an explicitly saved empty inbox is not "missing"
			if err := store.Save(ctx, nil); err != nil {
				t.Fatalf("Save(nil) error = %v", err)
			}
			got, err = store.Load(ctx)
			if err != nil {
				t.Fatalf("Load() after empty save error = %v", err)
			}
			if len(got) != 0 {
				t.Errorf("Load() returned %d notifications, want 0", len(got))
			}
		})
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notifications.json")
	if err := os.WriteFile(path, []byte("{\"version\":1,\"notifications\":[{"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	_, err := store.Load(context.Background())
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want decode error", err)
	}
}

func TestFileStoreRejectsUnknownVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notifications.json")
	if err := os.WriteFile(path, []byte(`{"version":99,"notifications":[]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Error("Load() error = nil, want version error")
	}
}
