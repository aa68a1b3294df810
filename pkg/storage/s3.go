package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 implements Storage on S3-compatible object stores.
type S3 struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

// New creates an S3 storage from the given configuration.
func New(cfg Config) (*S3, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	client := s3.New(s3.Options{}, opts...)

	return &S3{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// Put uploads data from r, detecting the content type from magic bytes
// unless one is supplied.
func (s *S3) Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	o := &putOptions{acl: s.cfg.DefaultACL}
	for _, opt := range opts {
		opt(o)
	}

	contentType := o.contentType
	var body io.ReadSeeker
	if contentType != "" {
		var err error
		if _, body, err = DetectMIME(r); err != nil {
			return nil, fmt.Errorf("storage: read input: %w", err)
		}
	} else {
		var err error
		if contentType, body, err = DetectMIME(r); err != nil {
			return nil, fmt.Errorf("storage: read input: %w", err)
		}
	}

	if err := Validate(size, contentType, o.rules...); err != nil {
		return nil, err
	}

	key := o.key
	if key == "" {
		key = newObjectKey(o.prefix, contentType)
	}

	acl := types.ObjectCannedACLPrivate
	if o.acl == ACLPublicRead {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           acl,
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}

	return &FileInfo{
		Key:         key,
		ContentType: contentType,
		ACL:         o.acl,
		Size:        size,
	}, nil
}

// Get retrieves an object.
func (s *S3) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrNotFound)
	}
	return out.Body, nil
}

// Delete removes an object.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// List returns all objects under the prefix, paging through the bucket.
func (s *S3) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapS3Error(err, ErrListFailed)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				objects = append(objects, Object{
					Key:          *obj.Key,
					LastModified: aws.ToTime(obj.LastModified),
				})
			}
		}
	}

	return objects, nil
}

// URL returns a signed URL, or the public URL when forced via WithPublic.
func (s *S3) URL(ctx context.Context, key string, opts ...URLOption) (string, error) {
	o := &urlOptions{expiry: DefaultSignedURLExpiry}
	for _, opt := range opts {
		opt(o)
	}

	if o.forcePublic {
		return s.publicURL(key), nil
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if o.downloadName != "" {
		input.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", o.downloadName))
	}

	res, err := s.presigner.PresignGetObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = o.expiry
	})
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}
	return res.URL, nil
}

func (s *S3) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		endpoint := strings.TrimSuffix(s.cfg.Endpoint, "/")
		if s.cfg.PathStyle {
			return endpoint + "/" + s.cfg.Bucket + "/" + key
		}
		return endpoint + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

var _ Storage = (*S3)(nil)
