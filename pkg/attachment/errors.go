package attachment

import "errors"

var (
	// ErrNotFound is returned when no attachment matches the given ID.
	ErrNotFound = errors.New("attachment: not found")

	// ErrUnknownVariant is returned when a URL is requested for a variant
	// that has not been generated.
	ErrUnknownVariant = errors.New("attachment: unknown variant")

	// ErrNotImage is returned when thumbnail generation is attempted on a
	// non-image attachment.
	ErrNotImage = errors.New("attachment: not an image")
)
