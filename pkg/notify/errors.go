package notify

import "errors"

var (
	// ErrSendFailed is returned when the email provider rejects the send.
	ErrSendFailed = errors.New("notify: send failed")

	// ErrResolverRequired is returned when no recipient resolver is set.
	ErrResolverRequired = errors.New("notify: recipient resolver is required")
)
