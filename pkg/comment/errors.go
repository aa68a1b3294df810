package comment

import "errors"

var (
	// ErrNotFound is returned when no comment matches the given ID.
	ErrNotFound = errors.New("comment: not found")

	// ErrParentNotFound is returned when a reply references a parent
	// comment that does not exist.
	ErrParentNotFound = errors.New("comment: parent not found")
)
