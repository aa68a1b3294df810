// Package list manages ordered collections of heterogeneous objects
// addressed by fingerprint. An object appears at most once per list, items
// may carry a per-list unique name, and each item is selected or
// deselected. Sort orders stay dense (0..n-1) across every mutation;
// MoveItem clamps out-of-range targets instead of failing.
package list
