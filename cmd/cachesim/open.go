package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/internal/codec"
	"github.com/discochess/cachesim/internal/codec/gzipcodec"
	"github.com/discochess/cachesim/internal/codec/noopcodec"
	"github.com/discochess/cachesim/internal/codec/zstdcodec"
	"github.com/discochess/cachesim/internal/tracestore"
	"github.com/discochess/cachesim/internal/tracestore/cachedstore"
	"github.com/discochess/cachesim/internal/tracestore/diskstore"
	"github.com/discochess/cachesim/internal/tracestore/gcsstore"
	"github.com/discochess/cachesim/internal/tracestore/s3store"
)

// traceCacheSize bounds how many decoded traces a command keeps in memory.
const traceCacheSize = 4

// traceSource is an opened trace store plus the name to read from it.
type traceSource struct {
	store *cachedstore.Store
	name  string
}

// detectCodec picks the decompressor from the file extension.
func detectCodec(name string) codec.Codec {
	return codec.Detect(name, zstdcodec.New(), gzipcodec.New(), noopcodec.New())
}

// openSource resolves location to the backend that serves it.
func openSource(ctx context.Context, location string) (*traceSource, error) {
	loc, err := tracestore.ParseLocation(location)
	if err != nil {
		return nil, err
	}
	c := detectCodec(loc.Key)

	var (
		backend tracestore.Store
		name    string
	)
	switch loc.Scheme {
	case tracestore.SchemeS3:
		backend, err = s3store.New(ctx, loc.Bucket, c)
		name = loc.Key
	case tracestore.SchemeGCS:
		backend, err = gcsstore.New(ctx, loc.Bucket, c)
		name = loc.Key
	default:
		backend, err = diskstore.New(filepath.Dir(loc.Key), c)
		name = filepath.Base(loc.Key)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", location, err)
	}

	st, err := cachedstore.New(backend, traceCacheSize)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &traceSource{store: st, name: name}, nil
}

func (s *traceSource) Close() error {
	return s.store.Close()
}

// runner returns a Runner over the source's store.
func (s *traceSource) runner(logger *zap.Logger, opts ...cachesim.Option) *cachesim.Runner {
	opts = append([]cachesim.Option{cachesim.WithLogger(logger)}, opts...)
	return cachesim.NewRunner(s.store, opts...)
}
