package middlewares

import (
	"net/http"

	"github.com/trelliskit/trellis/pkg/access"
	"github.com/trelliskit/trellis/pkg/fingerprint"
)

// DefaultActorHeader is the header trusted by the default resolver.
const DefaultActorHeader = "X-Actor"

// ActorResolver identifies the acting entity for a request, returning its
// fingerprint. Return ok=false for anonymous requests; hosts typically
// back this with their own session or token check.
type ActorResolver func(r *http.Request) (fingerprint.Fingerprint, bool)

// HeaderActorResolver trusts a fingerprint passed in the given header.
// Suitable behind a gateway that authenticates upstream; do not expose it
// to untrusted clients.
func HeaderActorResolver(header string) ActorResolver {
	return func(r *http.Request) (fingerprint.Fingerprint, bool) {
		fp, err := fingerprint.Parse(r.Header.Get(header))
		if err != nil {
			return "", false
		}
		return fp, true
	}
}

// Actor resolves the acting entity and stores its fingerprint in the
// request context for services to pick up. Anonymous requests pass
// through without an actor; individual operations decide whether that is
// acceptable.
func Actor(resolve ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fp, ok := resolve(r); ok {
				r = r.WithContext(access.WithActor(r.Context(), fp))
			}
			next.ServeHTTP(w, r)
		})
	}
}
