package common

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger is the leveled structured logger the rest of the module logs
// through.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// LogLevel is the configured verbosity, as it appears in the config file.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Level maps the configured name onto a slog level. Unknown names resolve
// to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// dailyRotatingWriter opens a fresh <prefix>-YYYY-MM-DD.log file the first
// time a write lands on a new calendar day.
type dailyRotatingWriter struct {
	dir    string
	prefix string

	mu   sync.Mutex
	file *os.File
	day  string
}

func (w *dailyRotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Rotation follows local time.
	day := time.Now().Format("2006-01-02")
	if w.file == nil || w.day != day {
		if err := w.rotate(day); err != nil {
			return 0, err
		}
	}

	return w.file.Write(p)
}

func (w *dailyRotatingWriter) rotate(day string) error {
	if w.file != nil {
		w.file.Close()
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.log", w.prefix, day))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	w.file = file
	w.day = day
	return nil
}

// Close releases the currently open log file, if any.
func (w *dailyRotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// NewLogger builds a JSON slog logger writing to daily rotating files under
// logDir. With an empty or uncreatable logDir it logs to stdout instead, so
// a broken log path never silences the process.
func NewLogger(level LogLevel, logDir string, name string) Logger {
	opts := &slog.HandlerOptions{Level: level.Level()}

	if logDir == "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	writer := &dailyRotatingWriter{dir: logDir, prefix: name}
	return slog.New(slog.NewJSONHandler(writer, opts))
}

// NopLogger discards everything. Handy as the default when a component is
// constructed without a logger.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...any) {}

func (nopLogger) Warn(msg string, args ...any) {}

func (nopLogger) Error(msg string, args ...any) {}

func (nopLogger) Debug(msg string, args ...any) {}
