// Package health exposes liveness and readiness probes over HTTP.
// Readiness aggregates the func(context.Context) error healthcheck
// closures the db, redis, and job packages already hand out.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const defaultTimeout = 5 * time.Second

const (
	statusPass = "pass"
	statusFail = "fail"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// Checks maps probe names to their check functions.
type Checks map[string]CheckFunc

// Report is the JSON body of a readiness response.
type Report struct {
	Status string            `json:"status"`
	Probes map[string]string `json:"probes,omitempty"`
}

// Option configures probe execution.
type Option func(*prober)

// WithTimeout bounds the combined runtime of all checks.
func WithTimeout(d time.Duration) Option {
	return func(p *prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger logs failed probes.
func WithLogger(l *slog.Logger) Option {
	return func(p *prober) {
		if l != nil {
			p.log = l
		}
	}
}

type prober struct {
	checks  Checks
	timeout time.Duration
	log     *slog.Logger
}

// Live always reports OK. Wire it to a liveness probe so the
// orchestrator only restarts the process when it stops serving at all.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeReport(w, http.StatusOK, Report{Status: statusPass})
	}
}

// Ready runs every check concurrently and reports 503 when any fails.
func Ready(checks Checks, opts ...Option) http.HandlerFunc {
	p := &prober{
		checks:  checks,
		timeout: defaultTimeout,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		report := p.run(r.Context())
		status := http.StatusOK
		if report.Status == statusFail {
			status = http.StatusServiceUnavailable
		}
		writeReport(w, status, report)
	}
}

func (p *prober) run(ctx context.Context) Report {
	if len(p.checks) == 0 {
		return Report{Status: statusPass}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		probes = make(map[string]string, len(p.checks))
		failed bool
	)
	for name, check := range p.checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := statusPass
			if err := check(ctx); err != nil {
				result = statusFail
				p.log.WarnContext(ctx, "health probe failed",
					slog.String("probe", name),
					slog.Any("error", err),
				)
			}

			mu.Lock()
			probes[name] = result
			failed = failed || result == statusFail
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	status := statusPass
	if failed {
		status = statusFail
	}
	return Report{Status: status, Probes: probes}
}

func writeReport(w http.ResponseWriter, status int, report Report) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
