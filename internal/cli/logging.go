package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phsym/console-slog"
	"github.com/spf13/afero"
)

const runLogName = "run.log"

// newLogger builds the run logger. The console handler is pretty unless
// PRETTY_LOGS=false, in which case json lines are written instead. With a log
// directory every record is also appended to run.log as json.
func newLogger(fs afero.Fs, stderr io.Writer, cfg Config) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if os.Getenv("PRETTY_LOGS") != "false" {
		handler = console.NewHandler(stderr, &console.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level})
	}

	if cfg.LogDir == "" {
		return slog.New(handler), io.NopCloser(nil), nil
	}

	err := fs.MkdirAll(cfg.LogDir, 0o755)
	if err != nil {
		return nil, nil, err
	}

	file, err := fs.OpenFile(filepath.Join(cfg.LogDir, runLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	handler = teeHandler{
		handler,
		slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}),
	}

	return slog.New(handler), file, nil
}

// teeHandler sends every record to each handler that accepts its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range t {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		errs = append(errs, h.Handle(ctx, record.Clone()))
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make(teeHandler, len(t))
	for i, h := range t {
		handlers[i] = h.WithAttrs(attrs)
	}
	return handlers
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	handlers := make(teeHandler, len(t))
	for i, h := range t {
		handlers[i] = h.WithGroup(name)
	}
	return handlers
}
