// Package logger provides slog factories used across the engine: JSON output
// to stdout, per-call context attribute extraction (request IDs, actor
// fingerprints), and optional Sentry fan-out.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextExtractor pulls a slog attribute out of a request context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// New creates a JSON logger writing to stdout at info level.
// Extractors run on every log call so request-scoped values stay fresh.
func New(extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(newContextHandler(h, extractors...))
}

// NewNop creates a logger that discards everything. Used as the default when
// a component is constructed without a logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// contextHandler decorates a slog.Handler with context extractors.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func newContextHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &contextHandler{next: next, extractors: clean}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
