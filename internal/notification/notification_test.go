package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		data    string
		want    Notification
		wantErr error
	}{
		{
			name: "canonical fields",
			data: `{"id":"n1","kind":"warning","title":"Appointment moved","body":"Now 10:30","created_at":"2026-05-04T09:00:00Z","read":true,"link":"/appointments/42"}`,
			want: Notification{
				ID:        "n1",
				Kind:      KindWarning,
				Title:     "Appointment moved",
				Body:      "Now 10:30",
				CreatedAt: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
				Read:      true,
				Link:      "/appointments/42",
			},
		},
		{
			name: "legacy type and message",
			data: `{"id":"n2","type":"SUCCESS","message":"Booked","created_at":"2026-05-04T09:00:00Z"}`,
			want: Notification{
				ID:        "n2",
				Kind:      KindSuccess,
				Body:      "Booked",
				CreatedAt: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "unknown kind and missing timestamp",
			data: `{"id":"n3","kind":"urgent"}`,
			want: Notification{ID: "n3", Kind: KindInfo, CreatedAt: now},
		},
		{
			name:    "missing id",
			data:    `{"title":"orphan"}`,
			wantErr: ErrMissingID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode([]byte(tt.data), now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte("{not json"), time.Now()); err == nil {
		t.Error("Decode() error = nil, want parse error")
	}
}
