package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/trelliskit/trellis/middlewares"
	"github.com/trelliskit/trellis/pkg/service"
)

// ErrorBody is the JSON envelope every error response uses.
type ErrorBody struct {
	Status    int    `json:"status"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Error renders err as a JSON error response. Service errors map to their
// HTTP status; anything else becomes an opaque 500 and is logged with its
// cause.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	body := ErrorBody{
		Status:    http.StatusInternalServerError,
		Message:   "internal error",
		RequestID: middlewares.RequestIDFromContext(r.Context()),
	}

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		body.Status = svcErr.HTTPStatus()
		body.Message = svcErr.Message
		body.Code = svcErr.Code
	}

	if body.Status >= http.StatusInternalServerError && log != nil {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	JSON(w, body.Status, body)
}

// BadRequest renders a 400 with the given message.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, nil, service.BadRequest(message))
}
