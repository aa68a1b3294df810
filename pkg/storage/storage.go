// Package storage provides S3-compatible object storage for attachment
// blobs: uploads with magic-byte MIME detection and validation, signed and
// public URLs, and prefix listing for the orphan sweep.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the interface attachment code works against.
type Storage interface {
	// Put uploads data from r. The size is used for the content-length
	// header; options customize key, prefix, ACL, content type, and
	// validation rules.
	Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)

	// Get retrieves an object. The caller closes the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all objects under the given prefix with their last
	// modification times.
	List(ctx context.Context, prefix string) ([]Object, error)

	// URL returns an access URL for the object: signed for private files,
	// public otherwise.
	URL(ctx context.Context, key string, opts ...URLOption) (string, error)
}

// ACL is the access level of a stored object.
type ACL string

const (
	// ACLPrivate restricts access to signed URLs.
	ACLPrivate ACL = "private"

	// ACLPublicRead allows unauthenticated reads.
	ACLPublicRead ACL = "public-read"
)

// Config holds S3-compatible storage settings.
// Fields carry env tags so hosts can populate them with caarlos0/env.
type Config struct {
	Bucket    string `env:"STORAGE_BUCKET,required"`
	AccessKey string `env:"STORAGE_ACCESS_KEY,required"`
	SecretKey string `env:"STORAGE_SECRET_KEY,required"`

	// Endpoint overrides the S3 endpoint (MinIO and friends).
	Endpoint string `env:"STORAGE_ENDPOINT"`
	Region   string `env:"STORAGE_REGION" envDefault:"us-east-1"`

	// PublicURL is the CDN prefix used for public objects, if any.
	PublicURL string `env:"STORAGE_PUBLIC_URL"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"STORAGE_PATH_STYLE"`

	// DefaultACL applies when Put is called without WithACL.
	DefaultACL ACL `env:"STORAGE_DEFAULT_ACL" envDefault:"private"`
}

// DefaultSignedURLExpiry is how long signed URLs stay valid unless
// overridden with WithExpiry.
const DefaultSignedURLExpiry = 15 * time.Minute

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.DefaultACL == "" {
		c.DefaultACL = ACLPrivate
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// FileInfo describes an uploaded object.
type FileInfo struct {
	Key         string
	ContentType string
	ACL         ACL
	Size        int64
}

// Object is one listing entry. LastModified lets callers distinguish
// fresh objects from stale ones without a HEAD per key.
type Object struct {
	Key          string
	LastModified time.Time
}
