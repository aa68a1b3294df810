package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/internal/httpx"
	"github.com/trelliskit/trellis/pkg/service"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpx.JSON(rec, http.StatusCreated, map[string]string{"id": "1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"id":"1"}`, rec.Body.String())
}

func TestBind(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
		var p payload
		require.NoError(t, httpx.Bind(r, &p))
		require.Equal(t, "x", p.Name)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
		var p payload
		require.Error(t, httpx.Bind(r, &p))
	})

	t.Run("empty body rejected", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		require.ErrorContains(t, httpx.Bind(r, &p), "empty request body")
	})

	t.Run("trailing data rejected", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
		var p payload
		require.Error(t, httpx.Bind(r, &p))
	})
}

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("service error maps status", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		httpx.Error(rec, r, nil, service.NotFound("comment not found", service.WithCode("comment_not_found")))

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), `"comment not found"`)
		require.Contains(t, rec.Body.String(), `"comment_not_found"`)
	})

	t.Run("unknown error is opaque 500", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		httpx.Error(rec, r, nil, assertionError{})

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "internal error")
		require.NotContains(t, rec.Body.String(), "secret detail")
	})
}

type assertionError struct{}

func (assertionError) Error() string { return "secret detail" }

func TestQueryHelpers(t *testing.T) {
	t.Parallel()

	values := url.Values{
		"only":  {"User/1, User/2", "Group/3"},
		"state": {" selected "},
		"flag":  {"true"},
		"since": {"2026-01-02T15:04:05Z"},
	}

	require.Equal(t, "selected", httpx.Query(values, "state", "any"))
	require.Equal(t, "any", httpx.Query(values, "missing", "any"))
	require.Equal(t, []string{"User/1", "User/2", "Group/3"}, httpx.QueryList(values, "only"))
	require.Nil(t, httpx.QueryList(values, "missing"))
	require.True(t, httpx.QueryBool(values, "flag"))
	require.False(t, httpx.QueryBool(values, "missing"))

	ts, ok, err := httpx.QueryTime(values, "since")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), ts)

	_, ok, err = httpx.QueryTime(values, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = httpx.QueryTime(url.Values{"since": {"yesterday"}}, "since")
	require.Error(t, err)
}
