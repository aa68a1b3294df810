package access

import "errors"

var (
	ErrInvalidPermission   = errors.New("access: invalid permission")
	ErrDuplicatePermission = errors.New("access: permission already registered")
	ErrUnknownPermission   = errors.New("access: unknown permission")
	ErrForbidden           = errors.New("access: forbidden")
	ErrInvalidPolicy       = errors.New("access: invalid policy document")
)
