package xslog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level string

var (
	_ fmt.Stringer = (*Level)(nil)
	_ interface {
		UnmarshalText([]byte) error
	} = (*Level)(nil)
)

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the handler: JSON for servers and log files, text for a
// developer's terminal.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

const (
	EnvKey       = "LOG_LEVEL"
	FormatEnvKey = "LOG_FORMAT"
)

const Default = LevelInfo

var levels = map[Level]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

func Parse(s string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levels[level]; !ok {
		return "", fmt.Errorf("invalid log level: %q (valid: debug, info, warn, error)", s)
	}
	return level, nil
}

// UnmarshalText lets env and flag parsers read a Level directly.
func (l *Level) UnmarshalText(text []byte) error {
	level, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// FromEnv reads LOG_LEVEL, falling back to Default when unset or invalid.
func FromEnv() Level {
	level, err := Parse(os.Getenv(EnvKey))
	if err != nil {
		return Default
	}
	return level
}

func (l Level) ToSlog() slog.Level {
	if level, ok := levels[l]; ok {
		return level
	}
	return slog.LevelInfo
}

func (l Level) String() string {
	return string(l)
}

func NewLogger(w io.Writer, level Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level.ToSlog()}
	if format == FormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// NewLoggerFromEnv builds a logger from LOG_LEVEL and LOG_FORMAT.
func NewLoggerFromEnv(w io.Writer) *slog.Logger {
	format := Format(strings.ToLower(os.Getenv(FormatEnvKey)))
	return NewLogger(w, FromEnv(), format)
}
