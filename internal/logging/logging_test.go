package logging

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"novaflix/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for input, expect := range tests {
		if got := ParseLevel(input); got != expect {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, expect)
		}
	}
}

func TestSetupWritesToRotatingFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "novaflix.log")
	logger, closer := Setup(config.LogSettings{Level: "debug", File: path})
	defer closer.Close()

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug level to be enabled")
	}
	logger.Info("hello")
}
