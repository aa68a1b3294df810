package service_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/service"
)

func TestErrorHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *service.Error
		want int
	}{
		{name: "bad request", err: service.BadRequest("bad"), want: http.StatusBadRequest},
		{name: "unauthorized", err: service.Unauthorized("who"), want: http.StatusUnauthorized},
		{name: "forbidden", err: service.Forbidden("no"), want: http.StatusForbidden},
		{name: "not found", err: service.NotFound("gone"), want: http.StatusNotFound},
		{name: "conflict", err: service.Conflict("dup"), want: http.StatusConflict},
		{name: "unprocessable", err: service.Unprocessable("invalid"), want: http.StatusUnprocessableEntity},
		{name: "internal", err: service.Internal("oops"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("row not found")
	err := service.NotFound("comment not found",
		service.WithCause(cause),
		service.WithCode("comment_not_found"),
	)

	require.Equal(t, "comment not found", err.Error())
	require.Equal(t, "comment_not_found", err.Code)
	require.ErrorIs(t, err, cause)

	var svcErr *service.Error
	require.ErrorAs(t, error(err), &svcErr)
	require.Equal(t, service.StatusNotFound, svcErr.Status)
}
