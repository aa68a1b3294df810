// Package middlewares provides the HTTP middleware the engine mounts on
// its router: request ID propagation, panic recovery, and actor
// resolution. All middleware is standard func(http.Handler) http.Handler
// and composes with any chi or net/http stack.
package middlewares
