package access

import (
	"fmt"
	"slices"
	"sync"
)

// Permission names an operation an actor may perform on an asset.
type Permission string

// Permissions registered on the default registry. Simple permissions grant
// nothing; "edit" and "manage" are compound.
const (
	PermissionRead          Permission = "read"
	PermissionWrite         Permission = "write"
	PermissionDelete        Permission = "delete"
	PermissionIndex         Permission = "index"
	PermissionIndexContents Permission = "index_contents"
	PermissionCreateComment Permission = "comment.create"
	PermissionCreateUpload  Permission = "attachment.create"
	PermissionManageItems   Permission = "list.manage_items"
	PermissionManageMembers Permission = "group.manage_members"
	PermissionEdit          Permission = "edit"   // grants read, write
	PermissionManage        Permission = "manage" // grants edit, delete
)

// Registry maps permission names to their transitively expanded grant sets.
// Safe for concurrent use; registration normally happens at init time.
type Registry struct {
	mu       sync.RWMutex
	grants   map[Permission]map[Permission]struct{} // p -> closure of what p grants (excluding p)
	grantors map[Permission]map[Permission]struct{} // p -> permissions that imply p (including p)
}

// NewRegistry returns an empty permission registry.
func NewRegistry() *Registry {
	return &Registry{
		grants:   make(map[Permission]map[Permission]struct{}),
		grantors: make(map[Permission]map[Permission]struct{}),
	}
}

// Register adds a permission with its (optional) grants list. Every granted
// permission must already be registered; the closure of the new permission is
// the union of its grants and their closures, computed here and memoized.
func (r *Registry) Register(p Permission, grants ...Permission) error {
	if p == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPermission)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.grants[p]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePermission, p)
	}

	closure := make(map[Permission]struct{})
	for _, g := range grants {
		sub, ok := r.grants[g]
		if !ok {
			return fmt.Errorf("%w: %s grants unregistered %s", ErrUnknownPermission, p, g)
		}
		closure[g] = struct{}{}
		for gg := range sub {
			closure[gg] = struct{}{}
		}
	}

	r.grants[p] = closure

	// Maintain the reverse index so Grantors is a map lookup.
	if r.grantors[p] == nil {
		r.grantors[p] = make(map[Permission]struct{})
	}
	r.grantors[p][p] = struct{}{}
	for g := range closure {
		r.grantors[g][p] = struct{}{}
	}

	return nil
}

// MustRegister registers a permission and panics on error. For init-time use.
func (r *Registry) MustRegister(p Permission, grants ...Permission) {
	if err := r.Register(p, grants...); err != nil {
		panic(err)
	}
}

// Registered reports whether p is known to the registry.
func (r *Registry) Registered(p Permission) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.grants[p]
	return ok
}

// Grants returns the transitively expanded set of permissions granted by p,
// excluding p itself, in sorted order. Nil if p is unknown.
func (r *Registry) Grants(p Permission) []Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	closure, ok := r.grants[p]
	if !ok {
		return nil
	}
	return sorted(closure)
}

// Grantors returns every permission that implies p, including p itself, in
// sorted order. Nil if p is unknown. Services use this to ask "does the actor
// hold any permission granting p?" with a single set intersection.
func (r *Registry) Grantors(p Permission) []Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.grantors[p]
	if !ok {
		return nil
	}
	return sorted(set)
}

// Implies reports whether holding `held` satisfies a check for `wanted`.
func (r *Registry) Implies(held, wanted Permission) bool {
	if held == wanted {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	closure, ok := r.grants[held]
	if !ok {
		return false
	}
	_, ok = closure[wanted]
	return ok
}

// Expand returns the union of the held permissions and everything they grant.
func (r *Registry) Expand(held []Permission) []Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Permission]struct{}, len(held))
	for _, p := range held {
		closure, ok := r.grants[p]
		if !ok {
			continue
		}
		out[p] = struct{}{}
		for g := range closure {
			out[g] = struct{}{}
		}
	}
	return sorted(out)
}

func sorted(set map[Permission]struct{}) []Permission {
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.MustRegister(PermissionRead)
	r.MustRegister(PermissionWrite)
	r.MustRegister(PermissionDelete)
	r.MustRegister(PermissionIndex)
	r.MustRegister(PermissionIndexContents)
	r.MustRegister(PermissionCreateComment)
	r.MustRegister(PermissionCreateUpload)
	r.MustRegister(PermissionManageItems)
	r.MustRegister(PermissionManageMembers)
	r.MustRegister(PermissionEdit, PermissionRead, PermissionWrite)
	r.MustRegister(PermissionManage, PermissionEdit, PermissionDelete)
	return r
}()

// Default returns the process-wide registry preloaded with the engine's
// built-in permissions.
func Default() *Registry { return defaultRegistry }
