package types

import (
	"context"
	"log/slog"
)

// NewSlogLogger wraps a caller-supplied Logger in an *slog.Logger so
// internal packages can keep using slog throughout.
func NewSlogLogger(l Logger) *slog.Logger {
	return slog.New(slogHandler{logger: l})
}

type slogHandler struct {
	attrs  []slog.Attr
	logger Logger
}

func (h slogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h slogHandler) Handle(ctx context.Context, r slog.Record) error {
	args := make([]any, 0, (len(h.attrs)+r.NumAttrs())*2)
	for _, attr := range h.attrs {
		args = append(args, attr.Key, attr.Value.Any())
	}
	r.Attrs(func(attr slog.Attr) bool {
		args = append(args, attr.Key, attr.Value.Any())
		return true
	})

	switch r.Level {
	case slog.LevelDebug:
		h.logger.Debug(r.Message, args...)
	case slog.LevelWarn:
		h.logger.Warn(r.Message, args...)
	case slog.LevelError:
		h.logger.Error(r.Message, args...)
	default:
		h.logger.Info(r.Message, args...)
	}
	return nil
}

func (h slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(merged, h.attrs)
	return slogHandler{logger: h.logger, attrs: append(merged, attrs...)}
}

func (h slogHandler) WithGroup(name string) slog.Handler {
	return h
}
