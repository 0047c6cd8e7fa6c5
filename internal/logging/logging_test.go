package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tracklog.log")

	logger, closer, err := Setup(Options{Level: "warn", File: path})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("sink delivery failed", "sink", "redis")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(out, "sink=redis") {
		t.Errorf("log output = %q", out)
	}
}

func TestSetupJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracklog.log")
	logger, closer, err := Setup(Options{File: path, JSON: true})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	logger.Info("started", "recording", "run1")
	_ = closer.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"recording":"run1"`) {
		t.Errorf("log output = %q", data)
	}
}

func TestSetupRejectsBadLevel(t *testing.T) {
	if _, _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("Setup() accepted an unknown level")
	}
}

func TestSetupStderr(t *testing.T) {
	logger, closer, err := Setup(Options{})
	if err != nil || logger == nil || closer == nil {
		t.Fatalf("Setup() = %v, %v, %v", logger, closer, err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
