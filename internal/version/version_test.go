package version

import (
	"strings"
	"testing"
)

func TestIsNewer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{
			name:    "same version",
			current: "1.0.0",
			latest:  "1.0.0",
			want:    false,
		},
		{
			name:    "same version with v prefix on current",
			current: "v1.0.0",
			latest:  "1.0.0",
			want:    false,
		},
		{
			name:    "same version with v prefix on latest",
			current: "1.0.0",
			latest:  "v1.0.0",
			want:    false,
		},
		{
			name:    "same version with v prefix on both",
			current: "v1.0.0",
			latest:  "v1.0.0",
			want:    false,
		},
		{
			name:    "newer version available",
			current: "1.0.0",
			latest:  "1.1.0",
			want:    true,
		},
		{
			name:    "major version bump",
			current: "1.0.0",
			latest:  "2.0.0",
			want:    true,
		},
		{
			name:    "patch version bump",
			current: "1.0.0",
			latest:  "1.0.1",
			want:    true,
		},
		{
			name:    "devel version never outdated",
			current: "devel",
			latest:  "1.0.0",
			want:    false,
		},
		{
			name:    "unknown version never outdated",
			current: "unknown",
			latest:  "1.0.0",
			want:    false,
		},
		{
			name:    "dirty version never outdated",
			current: "1.0.0-dirty",
			latest:  "1.1.0",
			want:    false,
		},
		{
			name:    "empty version never outdated",
			current: "",
			latest:  "1.0.0",
			want:    false,
		},
		{
			name:    "prerelease version never outdated",
			current: "1.0.0-0.abc123",
			latest:  "1.1.0",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsNewer(tt.current, tt.latest); got != tt.want {
				t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}

func TestCheckCompatibility(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		client   string
		server   string
		wantErr  bool
		wantMajor string
	}{
		{name: "same major", client: "v1.2.0", server: "v1.9.3"},
		{name: "different major", client: "v1.2.0", server: "v2.0.0", wantErr: true, wantMajor: "2"},
		{name: "unknown client allowed", client: "unknown", server: "v2.0.0"},
		{name: "devel server allowed", client: "v1.0.0", server: "devel"},
		{name: "go install pseudo version allowed", client: "v0.0.0-0.20250101", server: "v1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := checkCompatibility(tt.client, tt.server)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkCompatibility(%q, %q) = %v, wantErr %v", tt.client, tt.server, err, tt.wantErr)
			}
			if err != nil && err.MinVersion != tt.wantMajor {
				t.Errorf("MinVersion = %q, want %q", err.MinVersion, tt.wantMajor)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	t.Parallel()

	got := UserAgent()
	if !strings.HasPrefix(got, Product+"/") {
		t.Errorf("UserAgent() = %q, want %s/ prefix", got, Product)
	}
	if !strings.HasSuffix(got, Get()) {
		t.Errorf("UserAgent() = %q, want it to end with %q", got, Get())
	}
}
