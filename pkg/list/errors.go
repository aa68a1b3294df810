package list

import "errors"

var (
	// ErrNotFound is returned when no list matches the given ID.
	ErrNotFound = errors.New("list: not found")

	// ErrItemNotFound is returned when no item matches the given ID or name.
	ErrItemNotFound = errors.New("list: item not found")

	// ErrDuplicateObject is returned when the object is already on the list.
	ErrDuplicateObject = errors.New("list: object already listed")

	// ErrDuplicateName is returned when the item name is taken on the list.
	ErrDuplicateName = errors.New("list: item name already taken")

	// ErrInvalidState is returned for states other than selected and
	// deselected.
	ErrInvalidState = errors.New("list: invalid item state")
)
