package xslog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "WARN", want: LevelWarn},
		{in: " error ", want: LevelError},
		{in: "trace", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			var got Level
			err := got.UnmarshalText([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalText(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("UnmarshalText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvKey, "verbose")
	if got := FromEnv(); got != Default {
		t.Errorf("FromEnv() = %q, want %q for an invalid level", got, Default)
	}

	t.Setenv(EnvKey, "debug")
	if got := FromEnv(); got != LevelDebug {
		t.Errorf("FromEnv() = %q, want debug", got)
	}
}

func TestNewLoggerFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		prefix string
	}{
		{format: FormatJSON, prefix: "{"},
		{format: FormatText, prefix: "time="},
		{format: "", prefix: "{"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, LevelWarn, tt.format)
			logger.Info("dropped")
			logger.Warn("kept", slog.Int("unread", 3))

			out := buf.String()
			if strings.Contains(out, "dropped") {
				t.Error("info record written at warn level")
			}
			if !strings.HasPrefix(out, tt.prefix) {
				t.Errorf("output %q does not start with %q", out, tt.prefix)
			}
		})
	}
}
