package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/health"
)

func TestLive(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	health.Live()(rec, httptest.NewRequest("GET", "/healthz", nil))

	require.Equal(t, 200, rec.Code)

	var report health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, "pass", report.Status)
}

func TestReady(t *testing.T) {
	t.Parallel()

	t.Run("all probes pass", func(t *testing.T) {
		t.Parallel()
		handler := health.Ready(health.Checks{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return nil },
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("GET", "/readyz", nil))

		require.Equal(t, 200, rec.Code)

		var report health.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		require.Equal(t, "pass", report.Status)
		require.Equal(t, "pass", report.Probes["postgres"])
	})

	t.Run("one failure flips to 503", func(t *testing.T) {
		t.Parallel()
		handler := health.Ready(health.Checks{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("down") },
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("GET", "/readyz", nil))

		require.Equal(t, 503, rec.Code)

		var report health.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		require.Equal(t, "fail", report.Status)
		require.Equal(t, "fail", report.Probes["redis"])
		require.Equal(t, "pass", report.Probes["postgres"])
	})

	t.Run("no checks pass trivially", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		health.Ready(nil)(rec, httptest.NewRequest("GET", "/readyz", nil))
		require.Equal(t, 200, rec.Code)
	})
}
