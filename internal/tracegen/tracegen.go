// Package tracegen writes synthetic memory-access traces in the text trace
// format, for exercising cache geometries without a recorded workload.
package tracegen

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/discochess/cachesim"
	"github.com/discochess/cachesim/internal/codec"
)

// Pattern is the shape of the generated address stream.
type Pattern string

const (
	// Sequential walks memory one line-sized step at a time.
	Sequential Pattern = "sequential"
	// Strided walks memory in steps of the configured stride.
	Strided Pattern = "strided"
	// Random draws uniformly from the address span.
	Random Pattern = "random"
	// Loop repeatedly walks a working set of the configured span.
	Loop Pattern = "loop"
)

// ParsePattern accepts a pattern name.
func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(strings.ToLower(s)); p {
	case Sequential, Strided, Random, Loop:
		return p, nil
	}
	return "", fmt.Errorf("tracegen: unknown pattern %q", s)
}

// Generator produces a trace for a given geometry.
type Generator struct {
	geometry   cachesim.Geometry
	pattern    Pattern
	count      int
	base       uint64
	stride     uint64
	span       uint64
	writeRatio float64
	seed       uint64
}

// Option configures the Generator.
type Option func(*Generator)

// WithPattern sets the address pattern.
func WithPattern(p Pattern) Option {
	return func(g *Generator) { g.pattern = p }
}

// WithCount sets the number of accesses.
func WithCount(n int) Option {
	return func(g *Generator) { g.count = n }
}

// WithBase sets the first address.
func WithBase(addr uint64) Option {
	return func(g *Generator) { g.base = addr }
}

// WithStride sets the step of the strided pattern in bytes.
func WithStride(n uint64) Option {
	return func(g *Generator) { g.stride = n }
}

// WithSpan sets the address range covered by the random and loop patterns.
func WithSpan(n uint64) Option {
	return func(g *Generator) { g.span = n }
}

// WithWriteRatio sets the fraction of accesses that are writes.
func WithWriteRatio(r float64) Option {
	return func(g *Generator) { g.writeRatio = r }
}

// WithSeed seeds the random source.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// New creates a Generator. The span defaults to twice the cache size so
// that random and loop traces overflow the cache.
func New(geometry cachesim.Geometry, opts ...Option) (*Generator, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		geometry: geometry,
		pattern:  Sequential,
		count:    1000,
		stride:   uint64(geometry.LineSize) * uint64(geometry.Sets),
		span:     2 * geometry.Size(),
		seed:     1,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.count < 1 {
		return nil, fmt.Errorf("tracegen: count must be positive, got %d", g.count)
	}
	if g.writeRatio < 0 || g.writeRatio > 1 {
		return nil, fmt.Errorf("tracegen: write ratio %v outside [0, 1]", g.writeRatio)
	}
	if g.span == 0 || g.stride == 0 {
		return nil, fmt.Errorf("tracegen: span and stride must be positive")
	}
	return g, nil
}

// Accesses returns the generated accesses.
func (g *Generator) Accesses() []cachesim.Access {
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	lineSize := uint64(g.geometry.LineSize)

	out := make([]cachesim.Access, g.count)
	for i := range out {
		var offset uint64
		switch g.pattern {
		case Sequential:
			offset = uint64(i) * lineSize
		case Strided:
			offset = uint64(i) * g.stride
		case Random:
			offset = rng.Uint64N(g.span)
		case Loop:
			offset = (uint64(i) * lineSize) % g.span
		}

		op := cachesim.Read
		if g.writeRatio > 0 && rng.Float64() < g.writeRatio {
			op = cachesim.Write
		}
		out[i] = cachesim.Access{Op: op, Address: g.base + offset}
	}
	return out
}

// WriteTo writes the header and the accesses to w.
func (g *Generator) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	fmt.Fprintf(bw, "sets: %d\n", g.geometry.Sets)
	fmt.Fprintf(bw, "size: %d\n", g.geometry.LinesPerSet)
	fmt.Fprintf(bw, "tag length/line size: %d\n", g.geometry.LineSize)
	for _, a := range g.Accesses() {
		op := "R"
		if a.Op == cachesim.Write {
			op = "W"
		}
		fmt.Fprintf(bw, "%s 0x%x\n", op, a.Address)
	}

	err := bw.Flush()
	return cw.n, err
}

// Write compresses the trace through c into w.
func (g *Generator) Write(ctx context.Context, w io.Writer, c codec.Codec) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cw, err := c.Writer(w)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := g.WriteTo(cw); err != nil {
		cw.Close()
		return fmt.Errorf("writing trace: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("finishing trace: %w", err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
