// Package fingerprint implements portable object references of the form
// "Type/ID" (e.g. "Story/123"). The engine uses fingerprints wherever it has
// to point at host-application objects it does not own: commentables,
// attachables, listed objects, and actors.
package fingerprint

import (
	"errors"
	"strings"
)

// ErrInvalid is returned when a string cannot be parsed as a fingerprint.
var ErrInvalid = errors.New("fingerprint: invalid object reference")

// Fingerprint is a portable reference to an object: its type name and ID
// joined by a single slash. The zero value is not valid.
type Fingerprint string

// Make builds a fingerprint from a type name and an ID.
func Make(typ, id string) Fingerprint {
	return Fingerprint(typ + "/" + id)
}

// Parse validates s and returns it as a Fingerprint.
// The type segment may not contain a slash, so the first slash separates
// type from ID; the ID may contain further slashes (composite keys).
func Parse(s string) (Fingerprint, error) {
	typ, id, ok := strings.Cut(s, "/")
	if !ok || typ == "" || id == "" {
		return "", ErrInvalid
	}
	return Fingerprint(s), nil
}

// Type returns the type segment of the fingerprint.
func (f Fingerprint) Type() string {
	typ, _, _ := strings.Cut(string(f), "/")
	return typ
}

// ID returns the ID segment of the fingerprint.
func (f Fingerprint) ID() string {
	_, id, _ := strings.Cut(string(f), "/")
	return id
}

func (f Fingerprint) String() string { return string(f) }

// Valid reports whether the fingerprint has non-empty type and ID segments.
func (f Fingerprint) Valid() bool {
	_, err := Parse(string(f))
	return err == nil
}

// Strings converts a fingerprint slice to plain strings, for query args.
func Strings(fps []Fingerprint) []string {
	out := make([]string, len(fps))
	for i, f := range fps {
		out[i] = string(f)
	}
	return out
}
