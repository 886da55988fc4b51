// Package codec provides compression and decompression for trace files.
package codec

import (
	"io"
	"path"
	"strings"
)

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
}

// Detect returns the codec among candidates whose extension matches name.
// Candidates with an empty extension act as the fallback; Detect returns
// nil when nothing matches and no fallback was given.
func Detect(name string, candidates ...Codec) Codec {
	ext := strings.TrimPrefix(path.Ext(name), ".")

	var fallback Codec
	for _, c := range candidates {
		switch c.Extension() {
		case "":
			fallback = c
		case ext:
			return c
		}
	}
	return fallback
}
