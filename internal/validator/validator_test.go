package validator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fields map[string]string

func (f fields) Validate() map[string]string { return f }

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   fields
		wantErr string
	}{
		{name: "valid", input: nil},
		{name: "empty map is valid", input: fields{}},
		{
			name:    "fields sorted in message",
			input:   fields{"title": "required", "link": "must be an http(s) URL"},
			wantErr: "invalid fields: link, title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if got := err.Error(); got != tt.wantErr {
				t.Errorf("Error() = %q, want %q", got, tt.wantErr)
			}
			if diff := cmp.Diff(map[string]string(tt.input), err.Fields); diff != "" {
				t.Errorf("Fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
