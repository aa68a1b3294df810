package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	ErrEmptyFile    = errors.New("storage: file is empty")
	ErrFileTooLarge = errors.New("storage: file exceeds size limit")
	ErrInvalidMIME  = errors.New("storage: file type not allowed")

	ErrNotFound      = errors.New("storage: object not found")
	ErrAccessDenied  = errors.New("storage: access denied")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrDeleteFailed  = errors.New("storage: delete failed")
	ErrListFailed    = errors.New("storage: list failed")
	ErrPresignFailed = errors.New("storage: presign failed")
)

// wrapS3Error maps AWS errors onto the package sentinels. The original error
// is formatted with %v, not %w, so callers match sentinels with errors.Is
// instead of reaching for AWS types.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}

	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}
