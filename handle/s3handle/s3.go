// Package s3handle implements a read-only handle backed by an AWS S3 object.
// The object is downloaded once at open time and then served through the
// memory backend, so algorithms see the same observable semantics as any
// other read-mode handle.
package s3handle

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bytepress/bytepress/handle"
	"github.com/bytepress/bytepress/handle/handlecache"
	"github.com/bytepress/bytepress/handle/memhandle"
)

// ErrNotFound is returned when the object does not exist in the bucket.
var ErrNotFound = errors.New("s3handle: object not found")

// Client is the subset of the S3 API the handle needs. *s3.Client satisfies
// it; tests supply a fake.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Compile-time check that Handle implements handle.Handle.
var _ handle.Handle = (*Handle)(nil)

// Handle is a read-only handle over one S3 object.
type Handle struct {
	*memhandle.Handle
	bucket string
	key    string
}

// Option configures an open.
type Option func(*opener) error

type opener struct {
	cache *handlecache.Cache
}

// WithCache consults and populates the given payload cache, keyed by
// "bucket/key", so repeated opens of the same object skip the download.
func WithCache(c *handlecache.Cache) Option {
	return func(o *opener) error {
		o.cache = c
		return nil
	}
}

// NewClient creates an S3 client from the default AWS configuration.
// endpoint is optional and supports S3-compatible services like MinIO.
func NewClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	if endpoint == "" {
		return s3.NewFromConfig(cfg), nil
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}

// Open downloads the object and returns a read-only handle over its bytes.
// A missing object maps to ErrNotFound.
func Open(ctx context.Context, client Client, bucket, key string, opts ...Option) (*Handle, error) {
	var o opener
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	cacheKey := bucket + "/" + key
	data, ok := cachedPayload(o.cache, cacheKey)
	if !ok {
		var err error
		data, err = download(ctx, client, bucket, key)
		if err != nil {
			return nil, err
		}
		if o.cache != nil {
			o.cache.Add(cacheKey, data)
		}
	}

	mem, err := memhandle.New(data, handle.ModeRead)
	if err != nil {
		return nil, err
	}
	return &Handle{Handle: mem, bucket: bucket, key: key}, nil
}

func cachedPayload(cache *handlecache.Cache, key string) ([]byte, bool) {
	if cache == nil {
		return nil, false
	}
	return cache.Get(key)
}

func download(ctx context.Context, client Client, bucket, key string) ([]byte, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}
