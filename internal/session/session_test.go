package session

import (
	"regexp"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	t.Parallel()

	id := newID(time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC))
	if !regexp.MustCompile(`^20260504-030201-[0-9a-f]{6}$`).MatchString(id) {
		t.Errorf("newID() = %q", id)
	}
	if NewID() == NewID() {
		t.Error("NewID() repeated")
	}
}
