// Package s3store reads traces from AWS S3.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/cachesim/internal/codec"
	"github.com/discochess/cachesim/internal/tracestore"
)

// Compile-time check that Store implements tracestore.Store.
var _ tracestore.Store = (*Store)(nil)

// getObjectAPI is the subset of *s3.Client the store needs.
type getObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store is an AWS S3 trace store.
type Store struct {
	client getObjectAPI
	bucket string
	prefix string
	codec  codec.Codec

	region   string
	endpoint string
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

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *Store) {
		s.region = region
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like MinIO).
func WithEndpoint(endpoint string) Option {
	return func(s *Store) {
		s.endpoint = endpoint
	}
}

// New creates a new S3 store using the default AWS credential chain.
// The codec handles decompression.
func New(ctx context.Context, bucket string, c codec.Codec, opts ...Option) (*Store, error) {
	s := &Store{bucket: bucket, codec: c}
	for _, opt := range opts {
		opt(s)
	}

	var loadOpts []func(*config.LoadOptions) error
	if s.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(s.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
			o.UsePathStyle = true
		}
	})
	return s, nil
}

// ReadTrace downloads and decompresses the object at prefix+key.
func (s *Store) ReadTrace(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("s3://%s/%s%s: %w", s.bucket, s.prefix, key, tracestore.ErrNotFound)
		}
		return nil, fmt.Errorf("getting object: %w", err)
	}
	defer out.Body.Close()

	reader, err := s.codec.Reader(out.Body)
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

// Close releases resources. The S3 client holds none.
func (s *Store) Close() error {
	return nil
}
