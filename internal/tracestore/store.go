// Package tracestore defines where trace files are read from.
package tracestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a trace does not exist in the store.
var ErrNotFound = errors.New("tracestore: trace not found")

// Store defines the interface for storage backends.
type Store interface {
	// ReadTrace returns the decompressed content of the named trace.
	ReadTrace(ctx context.Context, name string) ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}

// Location schemes understood by ParseLocation.
const (
	SchemeFile = "file"
	SchemeS3   = "s3"
	SchemeGCS  = "gs"
)

// Location is a parsed trace address.
type Location struct {
	Scheme string
	// Bucket is empty for local files.
	Bucket string
	// Key is the object key, or the file path for local files.
	Key string
}

// ParseLocation splits s3://bucket/key and gs://bucket/key addresses.
// Anything else is treated as a local path.
func ParseLocation(s string) (Location, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return Location{Scheme: SchemeFile, Key: s}, nil
	}

	switch scheme {
	case SchemeFile:
		return Location{Scheme: SchemeFile, Key: rest}, nil
	case SchemeS3, SchemeGCS:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("tracestore: %q: want %s://bucket/key", s, scheme)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	}
	return Location{}, fmt.Errorf("tracestore: unsupported scheme %q", scheme)
}
