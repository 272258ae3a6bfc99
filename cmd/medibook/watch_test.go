package main

import (
	"strings"
	"testing"
	"time"

	"github.com/garrettladley/medibook/internal/notification"
	"github.com/garrettladley/medibook/internal/xsync"
)

func TestPrintNew(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	newer := notification.Notification{ID: "b", Kind: notification.KindWarning, Title: "Refill", Body: "2 left", CreatedAt: at.Add(time.Hour)}
	older := notification.Notification{ID: "a", Kind: notification.KindInfo, Title: "Welcome", CreatedAt: at, Read: true}

	var out strings.Builder
	seen := make(map[string]struct{})

	printNew(&out, xsync.State{Notifications: []notification.Notification{newer, older}}, seen)
	printNew(&out, xsync.State{Notifications: []notification.Notification{newer, older}}, seen)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %d lines, want 2:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "[info] Welcome") || !strings.HasPrefix(lines[0], " ") {
		t.Errorf("first line = %q, want read Welcome", lines[0])
	}
	if !strings.Contains(lines[1], "[warning] Refill: 2 left") || !strings.HasPrefix(lines[1], "*") {
		t.Errorf("second line = %q, want unread Refill", lines[1])
	}
}
