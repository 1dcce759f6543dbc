package common

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogLevel_Level(t *testing.T) {
	cases := []struct {
		name     string
		level    LogLevel
		expected slog.Level
	}{
		{"debug", LogLevelDebug, slog.LevelDebug},
		{"info", LogLevelInfo, slog.LevelInfo},
		{"warn", LogLevelWarn, slog.LevelWarn},
		{"error", LogLevelError, slog.LevelError},
		{"unknown defaults to info", LogLevel("verbose"), slog.LevelInfo},
		{"empty defaults to info", LogLevel(""), slog.LevelInfo},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.level.Level(); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestDailyRotatingWriter_CreatesDatedFile(t *testing.T) {
	dir := t.TempDir()
	writer := &dailyRotatingWriter{dir: dir, prefix: "session"}
	defer writer.Close()

	if _, err := writer.Write([]byte("first line\n")); err != nil {
		t.Fatalf("Expected write to succeed, got: %v", err)
	}
	if _, err := writer.Write([]byte("second line\n")); err != nil {
		t.Fatalf("Expected write to succeed, got: %v", err)
	}

	expected := filepath.Join(dir, "session-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Expected the dated log file to exist, got: %v", err)
	}
	if !strings.Contains(string(data), "first line") || !strings.Contains(string(data), "second line") {
		t.Errorf("Expected both lines in the log file, got: %q", string(data))
	}
}

func TestNewLogger_FallsBackToStdoutWithoutLogDir(t *testing.T) {
	// An empty log directory must still yield a usable logger.
	logger := NewLogger(LogLevelInfo, "", "session")
	if logger == nil {
		t.Fatal("Expected a logger")
	}
	logger.Debug("suppressed at info level")
}

func TestNewLogger_WritesToLogDir(t *testing.T) {
	dir := t.TempDir()

	logger := NewLogger(LogLevelDebug, dir, "session")
	logger.Info("hello", "key", "value")

	expected := filepath.Join(dir, "session-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Expected the log file to exist, got: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("Expected the JSON record in the file, got: %q", string(data))
	}
}
