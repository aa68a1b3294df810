package access

import (
	"context"
	"fmt"
	"time"

	"github.com/trelliskit/trellis/pkg/cache"
	"github.com/trelliskit/trellis/pkg/fingerprint"
)

// Checker decides whether an actor may perform an operation on an asset.
// Both actor and asset are referenced by fingerprint, so the engine never
// needs to know the host application's model types.
type Checker interface {
	Allowed(ctx context.Context, actor fingerprint.Fingerprint, op Permission, asset fingerprint.Fingerprint) (bool, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, actor fingerprint.Fingerprint, op Permission, asset fingerprint.Fingerprint) (bool, error)

func (f CheckerFunc) Allowed(ctx context.Context, actor fingerprint.Fingerprint, op Permission, asset fingerprint.Fingerprint) (bool, error) {
	return f(ctx, actor, op, asset)
}

// AllowAll grants every operation. Intended for demos and tests.
func AllowAll() Checker {
	return CheckerFunc(func(context.Context, fingerprint.Fingerprint, Permission, fingerprint.Fingerprint) (bool, error) {
		return true, nil
	})
}

// DenyAll rejects every operation.
func DenyAll() Checker {
	return CheckerFunc(func(context.Context, fingerprint.Fingerprint, Permission, fingerprint.Fingerprint) (bool, error) {
		return false, nil
	})
}

// GrantSource resolves the permissions an actor holds directly on an asset.
// The host application implements this against its own grant storage; the
// engine expands the result through the registry.
type GrantSource interface {
	DirectGrants(ctx context.Context, actor fingerprint.Fingerprint, asset fingerprint.Fingerprint) ([]Permission, error)
}

// GrantSourceFunc adapts a function to the GrantSource interface.
type GrantSourceFunc func(ctx context.Context, actor fingerprint.Fingerprint, asset fingerprint.Fingerprint) ([]Permission, error)

func (f GrantSourceFunc) DirectGrants(ctx context.Context, actor fingerprint.Fingerprint, asset fingerprint.Fingerprint) ([]Permission, error) {
	return f(ctx, actor, asset)
}

// GrantChecker authorizes operations by expanding an actor's direct grants
// through a permission registry. Expanded grant sets are cached per
// actor/asset pair to keep hot paths off the grant source.
type GrantChecker struct {
	registry *Registry
	source   GrantSource
	cache    cache.Cache[[]Permission]
	cacheTTL time.Duration
}

// GrantCheckerOption configures a GrantChecker.
type GrantCheckerOption func(*GrantChecker)

// WithCache enables caching of expanded grant sets with the given TTL.
func WithCache(c cache.Cache[[]Permission], ttl time.Duration) GrantCheckerOption {
	return func(gc *GrantChecker) {
		gc.cache = c
		gc.cacheTTL = ttl
	}
}

// WithRegistry overrides the registry used for grant expansion.
// Defaults to the process-wide registry.
func WithRegistry(r *Registry) GrantCheckerOption {
	return func(gc *GrantChecker) {
		if r != nil {
			gc.registry = r
		}
	}
}

// NewGrantChecker creates a Checker backed by the given grant source.
func NewGrantChecker(source GrantSource, opts ...GrantCheckerOption) *GrantChecker {
	gc := &GrantChecker{
		registry: Default(),
		source:   source,
		cacheTTL: time.Minute,
	}
	for _, opt := range opts {
		opt(gc)
	}
	return gc
}

// Allowed reports whether any permission the actor holds on the asset implies op.
func (gc *GrantChecker) Allowed(ctx context.Context, actor fingerprint.Fingerprint, op Permission, asset fingerprint.Fingerprint) (bool, error) {
	held, err := gc.expandedGrants(ctx, actor, asset)
	if err != nil {
		return false, err
	}
	for _, p := range held {
		if p == op {
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops the cached grant set for an actor/asset pair.
// Call after the host changes grants for that pair.
func (gc *GrantChecker) Invalidate(ctx context.Context, actor fingerprint.Fingerprint, asset fingerprint.Fingerprint) error {
	if gc.cache == nil {
		return nil
	}
	return gc.cache.Delete(ctx, grantCacheKey(actor, asset))
}

func (gc *GrantChecker) expandedGrants(ctx context.Context, actor fingerprint.Fingerprint, asset fingerprint.Fingerprint) ([]Permission, error) {
	if gc.cache == nil {
		return gc.resolve(ctx, actor, asset)
	}
	return cache.GetOrSet(ctx, gc.cache, grantCacheKey(actor, asset),
		func(ctx context.Context) ([]Permission, time.Duration, error) {
			held, err := gc.resolve(ctx, actor, asset)
			if err != nil {
				return nil, 0, err
			}
			return held, gc.cacheTTL, nil
		})
}

func (gc *GrantChecker) resolve(ctx context.Context, actor fingerprint.Fingerprint, asset fingerprint.Fingerprint) ([]Permission, error) {
	direct, err := gc.source.DirectGrants(ctx, actor, asset)
	if err != nil {
		return nil, fmt.Errorf("access: resolve grants: %w", err)
	}
	return gc.registry.Expand(direct), nil
}

func grantCacheKey(actor, asset fingerprint.Fingerprint) string {
	return string(actor) + "|" + string(asset)
}
