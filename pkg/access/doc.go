// Package access implements the engine's permission model: a process-wide
// registry of named permissions with transitive grant expansion, and a
// Checker abstraction that services use to authorize operations on host
// objects.
//
// Permissions form a DAG through their grants lists. A compound permission
// like "manage" grants "edit" and "delete"; "edit" in turn grants "read" and
// "write". The transitive closure is computed once when a permission is
// registered and memoized, so lookups never walk the graph:
//
//	reg := access.NewRegistry()
//	_ = reg.Register("read")
//	_ = reg.Register("write")
//	_ = reg.Register("edit", "read", "write")
//	_ = reg.Register("manage", "edit")
//
//	reg.Grants("manage") // {edit, read, write}
//	reg.Grantors("read") // {read, edit, manage}
//
// Register rejects grants that are not yet registered, which keeps the graph
// acyclic by construction.
package access
