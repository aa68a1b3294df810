package storage

import "time"

// Option configures Put.
type Option func(*putOptions)

type putOptions struct {
	key         string // explicit key, replaces the generated one
	prefix      string // path prefix, e.g. "attachments"
	contentType string // overrides magic-byte detection
	acl         ACL
	rules       []Rule
}

// WithKey stores the object at an explicit key instead of a generated one.
func WithKey(key string) Option {
	return func(o *putOptions) { o.key = key }
}

// WithPrefix prepends a path prefix to the generated key.
func WithPrefix(prefix string) Option {
	return func(o *putOptions) { o.prefix = prefix }
}

// WithContentType overrides magic-byte detection. Use sparingly.
func WithContentType(ct string) Option {
	return func(o *putOptions) { o.contentType = ct }
}

// WithACL overrides the configured default ACL for this upload.
func WithACL(acl ACL) Option {
	return func(o *putOptions) { o.acl = acl }
}

// WithValidation applies rules before the upload starts. A failing rule
// aborts the Put.
func WithValidation(rules ...Rule) Option {
	return func(o *putOptions) { o.rules = append(o.rules, rules...) }
}

// URLOption configures URL generation.
type URLOption func(*urlOptions)

type urlOptions struct {
	expiry       time.Duration
	downloadName string
	forcePublic  bool
}

// WithExpiry overrides the signed URL lifetime.
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) {
		if d > 0 {
			o.expiry = d
		}
	}
}

// WithDownloadName sets a Content-Disposition attachment filename on the
// signed URL, forcing a download with the given name.
func WithDownloadName(name string) URLOption {
	return func(o *urlOptions) { o.downloadName = name }
}

// WithPublic returns the unsigned public URL regardless of ACL.
func WithPublic() URLOption {
	return func(o *urlOptions) { o.forcePublic = true }
}
