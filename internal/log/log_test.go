package log

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Errorf("parseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNewHandlerFormat(t *testing.T) {
	t.Setenv("GO_ENV", "")

	t.Setenv("LOG_FORMAT", "json")
	if _, ok := newHandler(slog.LevelInfo).(*slog.JSONHandler); !ok {
		t.Error("LOG_FORMAT=json must select the JSON handler")
	}

	t.Setenv("LOG_FORMAT", "")
	if _, ok := newHandler(slog.LevelInfo).(*slog.TextHandler); !ok {
		t.Error("default must select the text handler")
	}
}
