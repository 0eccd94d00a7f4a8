package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, slog.LevelInfo, "json").Info("Storage initialized", "database", "test.db")

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("output is not JSON: %v: %s", err, buf.String())
		}
		if rec["msg"] != "Storage initialized" || rec["database"] != "test.db" {
			t.Errorf("unexpected record: %v", rec)
		}
	})

	t.Run("text without color", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, slog.LevelInfo, "text").Info("RPC ok", "procedure", "/billkhata.v1.MealService/ListMeals")

		out := buf.String()
		if !strings.Contains(out, "RPC ok") || !strings.Contains(out, "procedure=/billkhata.v1.MealService/ListMeals") {
			t.Errorf("unexpected output: %q", out)
		}
		if strings.Contains(out, "\x1b[") {
			t.Errorf("expected no ANSI codes for a non-terminal writer: %q", out)
		}
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, slog.LevelWarn, "json").Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestIsTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "app.log"))
	if err != nil {
		t.Fatalf("failed to create log file: %v", err)
	}
	defer f.Close()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	tests := []struct {
		name string
		w    io.Writer
	}{
		{"buffer", &bytes.Buffer{}},
		{"regular file", f},
		{"pipe", w},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if isTerminal(tt.w) {
				t.Errorf("isTerminal(%s) = true, want false", tt.name)
			}
		})
	}

	t.Run("file output has no color", func(t *testing.T) {
		New(f, slog.LevelInfo, "text").Info("Storage initialized")
		data, err := os.ReadFile(f.Name())
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if strings.Contains(string(data), "\x1b[") {
			t.Errorf("expected no ANSI codes in a log file: %q", data)
		}
	})
}
