// Package gcshandle implements a read-only handle backed by a Google Cloud
// Storage object. The object is downloaded once at open time and then served
// through the memory backend.
package gcshandle

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/bytepress/bytepress/handle"
	"github.com/bytepress/bytepress/handle/handlecache"
	"github.com/bytepress/bytepress/handle/memhandle"
)

// ErrNotFound is returned when the object does not exist in the bucket.
var ErrNotFound = errors.New("gcshandle: object not found")

// Compile-time check that Handle implements handle.Handle.
var _ handle.Handle = (*Handle)(nil)

// Handle is a read-only handle over one GCS object.
type Handle struct {
	*memhandle.Handle
	bucket string
	key    string
}

// Option configures an open.
type Option func(*opener)

type opener struct {
	cache *handlecache.Cache
}

// WithCache consults and populates the given payload cache, keyed by
// "bucket/key", so repeated opens of the same object skip the download.
func WithCache(c *handlecache.Cache) Option {
	return func(o *opener) {
		o.cache = c
	}
}

// NewClient creates a GCS client with default credentials.
func NewClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return client, nil
}

// Open downloads the object and returns a read-only handle over its bytes.
// A missing object maps to ErrNotFound.
func Open(ctx context.Context, bucket *storage.BucketHandle, bucketName, key string, opts ...Option) (*Handle, error) {
	var o opener
	for _, opt := range opts {
		opt(&o)
	}

	cacheKey := bucketName + "/" + key
	var data []byte
	if o.cache != nil {
		if cached, ok := o.cache.Get(cacheKey); ok {
			data = cached
		}
	}

	if data == nil {
		var err error
		data, err = download(ctx, bucket, bucketName, key)
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
	return &Handle{Handle: mem, bucket: bucketName, key: key}, nil
}

func download(ctx context.Context, bucket *storage.BucketHandle, bucketName, key string) ([]byte, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	reader, err := bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching gs://%s/%s: %w", bucketName, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading gs://%s/%s: %w", bucketName, key, err)
	}
	return data, nil
}
