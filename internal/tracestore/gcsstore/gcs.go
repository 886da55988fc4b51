// Package gcsstore reads traces from Google Cloud Storage.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/discochess/cachesim/internal/codec"
	"github.com/discochess/cachesim/internal/tracestore"
)

// Compile-time check that Store implements tracestore.Store.
var _ tracestore.Store = (*Store)(nil)

// Store is a Google Cloud Storage trace store.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
	codec  codec.Codec

	// open returns a reader for an object name; swapped out in tests.
	open func(ctx context.Context, name string) (io.ReadCloser, error)
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all reads.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// New creates a new GCS store using application default credentials.
// The codec handles decompression.
func New(ctx context.Context, bucket string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	handle := client.Bucket(bucket)
	s := &Store{
		client: client,
		bucket: bucket,
		codec:  c,
		open: func(ctx context.Context, name string) (io.ReadCloser, error) {
			return handle.Object(name).NewReader(ctx)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ReadTrace downloads and decompresses the object at prefix+name.
func (s *Store) ReadTrace(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	object := s.prefix + name
	r, err := s.open(ctx, object)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gs://%s/%s: %w", s.bucket, object, tracestore.ErrNotFound)
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer r.Close()

	reader, err := s.codec.Reader(r)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return data, nil
}

// Close releases the GCS client.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
