package access

import (
	"context"

	"github.com/trelliskit/trellis/pkg/fingerprint"
)

type actorCtxKey struct{}

// WithActor stores the acting fingerprint in the context.
func WithActor(ctx context.Context, actor fingerprint.Fingerprint) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

// ActorFromContext returns the acting fingerprint, if any.
func ActorFromContext(ctx context.Context) (fingerprint.Fingerprint, bool) {
	actor, ok := ctx.Value(actorCtxKey{}).(fingerprint.Fingerprint)
	return actor, ok && actor.Valid()
}
