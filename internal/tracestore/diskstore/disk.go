// Package diskstore reads traces from the local filesystem.
package diskstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/discochess/cachesim/internal/codec"
	"github.com/discochess/cachesim/internal/tracestore"
)

// Compile-time check that Store implements tracestore.Store.
var _ tracestore.Store = (*Store)(nil)

// Store reads traces relative to a root directory.
type Store struct {
	root  string
	codec codec.Codec
}

// New creates a new disk store rooted at the given directory.
// The directory must exist. The codec handles decompression.
func New(root string, c codec.Codec) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{
		root:  root,
		codec: c,
	}, nil
}

// ReadTrace reads and decompresses the named trace. Absolute names are
// read as given.
func (s *Store) ReadTrace(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, name)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, tracestore.ErrNotFound)
		}
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()

	reader, err := s.codec.Reader(f)
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

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}
