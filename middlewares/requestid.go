package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/trelliskit/trellis/pkg/logger"
)

type requestIDKey struct{}

// DefaultRequestIDHeaders are checked in order for an upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers checked for an existing ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Headers = headers }
}

// WithRequestIDGenerator sets a custom ID generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.Generator = gen }
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) { cfg.ResponseHeader = header }
}

// RequestID assigns each request an ID, preserving upstream tracing IDs
// when a known header carries one. The ID is stored in the context and
// echoed on the response.
func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var reqID string
			for _, header := range cfg.Headers {
				if v := r.Header.Get(header); v != "" {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.Generator()
			}

			w.Header().Set(cfg.ResponseHeader, reqID)
			ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the request ID, or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor adds "request_id" to log entries emitted with a
// request context. For use with logger.New.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := RequestIDFromContext(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
