package storage

import "fmt"

// Rule validates an upload before it is stored. Rules see the declared size
// and the MIME type detected from magic bytes.
type Rule interface {
	Validate(size int64, mimeType string) error
}

// Validate runs rules in order and returns the first failure.
func Validate(size int64, mimeType string, rules ...Rule) error {
	for _, rule := range rules {
		if err := rule.Validate(size, mimeType); err != nil {
			return err
		}
	}
	return nil
}

type notEmptyRule struct{}

// NotEmpty rejects zero-length uploads.
func NotEmpty() Rule { return notEmptyRule{} }

func (notEmptyRule) Validate(size int64, _ string) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	return nil
}

type maxSizeRule struct {
	limit int64
}

// MaxSize rejects uploads larger than limit bytes.
func MaxSize(limit int64) Rule { return maxSizeRule{limit: limit} }

func (r maxSizeRule) Validate(size int64, _ string) error {
	if size > r.limit {
		return fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, r.limit)
	}
	return nil
}

type allowedTypesRule struct {
	patterns []string
}

// AllowedTypes accepts only uploads whose MIME type matches one of the
// patterns. Patterns may be exact types or globs like "image/*".
func AllowedTypes(patterns ...string) Rule {
	return allowedTypesRule{patterns: patterns}
}

func (r allowedTypesRule) Validate(_ int64, mimeType string) error {
	if !MatchesMIME(mimeType, r.patterns) {
		return fmt.Errorf("%w: %s", ErrInvalidMIME, mimeType)
	}
	return nil
}

// ImagesOnly accepts only image uploads.
func ImagesOnly() Rule { return AllowedTypes("image/*") }
