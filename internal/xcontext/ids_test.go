package xcontext

import (
	"context"
	"testing"
)

func TestIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		set    func(context.Context, string) context.Context
		get    func(context.Context) (string, bool)
		value  string
		wantOK bool
	}{
		{name: "request id", set: SetRequestID, get: GetRequestID, value: "req-1", wantOK: true},
		{name: "session id", set: SetSessionID, get: GetSessionID, value: "sess-1", wantOK: true},
		{name: "user id", set: SetUserID, get: GetUserID, value: "patient-42", wantOK: true},
		{name: "empty session id", set: SetSessionID, get: GetSessionID, value: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, ok := tt.get(t.Context()); ok {
				t.Fatal("bare context reported a value")
			}

			got, ok := tt.get(tt.set(t.Context(), tt.value))
			if ok != tt.wantOK || got != tt.value {
				t.Errorf("get() = (%q, %v), want (%q, %v)", got, ok, tt.value, tt.wantOK)
			}
		})
	}
}

func TestIDsDoNotCollide(t *testing.T) {
	t.Parallel()

	ctx := SetUserID(SetRequestID(t.Context(), "req-1"), "patient-42")
	if id, _ := GetRequestID(ctx); id != "req-1" {
		t.Errorf("GetRequestID() = %q, want req-1", id)
	}
	if _, ok := GetSessionID(ctx); ok {
		t.Error("GetSessionID() found a value that was never set")
	}
}
