package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Config struct {
	Level  string // debug | info | warn | error
	Format string // text | json
	File   string // empty logs to Stderr
	Debug  bool   // forces debug level and source locations
	Stderr io.Writer
}

var (
	mu      sync.RWMutex
	global  = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile *os.File
)

// Setup installs the process logger and returns a cleanup that closes any log
// file and resets the logger to discard.
func Setup(cfg Config) (func() error, error) {
	var w io.Writer = cfg.Stderr
	if w == nil {
		w = os.Stderr
	}

	var f *os.File
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		var err error
		f, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
		w = f
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, err
	}
	addSource := false
	if cfg.Debug {
		level = slog.LevelDebug
		addSource = true
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	global = slog.New(h)
	logFile = f
	mu.Unlock()

	L().Debug("logger.initialized", "file", cfg.File, "level", level.String())

	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()
		var cerr error
		if logFile != nil {
			cerr = logFile.Close()
		}
		logFile = nil
		global = slog.New(slog.NewTextHandler(io.Discard, nil))
		return cerr
	}
	return cleanup, nil
}

// L returns the process logger. Before Setup it discards everything.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
