package cachesim

import (
	"errors"
	"fmt"
	"math/bits"
)

// MaxSets is the largest number of sets a geometry may declare (2^13).
const MaxSets = 1 << 13

// MinLineSize is the smallest line size in bytes.
const MinLineSize = 4

// Geometry validation errors. They are returned wrapped in a *GeometryError.
var (
	ErrSetsNotPowerOfTwo     = errors.New("the number of sets is not a power of two")
	ErrTooManySets           = errors.New("the number of sets is too large")
	ErrLineSizeNotPowerOfTwo = errors.New("the line size is not a power of two")
	ErrLineSizeTooSmall      = errors.New("the line size is too small")
	ErrNoLines               = errors.New("the number of lines per set must be at least one")
)

// GeometryError describes the geometry field that failed validation.
type GeometryError struct {
	Field string
	Value uint32
	Err   error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("cachesim: invalid geometry: %v (%s = %d)", e.Err, e.Field, e.Value)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// Geometry is the shape of the simulated cache.
type Geometry struct {
	// Sets is the number of sets selected by the index bits.
	Sets uint32 `json:"sets"`

	// LinesPerSet is the associativity.
	LinesPerSet uint32 `json:"lines_per_set"`

	// LineSize is the number of bytes in a line.
	LineSize uint32 `json:"line_size"`
}

// Validate checks the geometry invariants in the order the diagnostics are
// reported: sets, then line size, then associativity.
func (g Geometry) Validate() error {
	if !isPowerOfTwo(g.Sets) {
		return &GeometryError{Field: "sets", Value: g.Sets, Err: ErrSetsNotPowerOfTwo}
	}
	if g.Sets > MaxSets {
		return &GeometryError{Field: "sets", Value: g.Sets, Err: ErrTooManySets}
	}
	if !isPowerOfTwo(g.LineSize) {
		return &GeometryError{Field: "line size", Value: g.LineSize, Err: ErrLineSizeNotPowerOfTwo}
	}
	if g.LineSize < MinLineSize {
		return &GeometryError{Field: "line size", Value: g.LineSize, Err: ErrLineSizeTooSmall}
	}
	if g.LinesPerSet == 0 {
		return &GeometryError{Field: "lines per set", Value: g.LinesPerSet, Err: ErrNoLines}
	}
	return nil
}

// OffsetBits returns log2(LineSize).
func (g Geometry) OffsetBits() uint {
	return uint(bits.TrailingZeros32(g.LineSize))
}

// IndexBits returns log2(Sets).
func (g Geometry) IndexBits() uint {
	return uint(bits.TrailingZeros32(g.Sets))
}

// Lines returns the total number of lines in the cache.
func (g Geometry) Lines() uint64 {
	return uint64(g.Sets) * uint64(g.LinesPerSet)
}

// Size returns the cache capacity in bytes.
func (g Geometry) Size() uint64 {
	return g.Lines() * uint64(g.LineSize)
}

// Fields are the parts an address is split into.
type Fields struct {
	Tag    uint64
	Index  uint64
	Offset uint64
}

// Decompose splits addr into tag, index and offset. The geometry must be valid.
func (g Geometry) Decompose(addr uint64) Fields {
	offsetBits := g.OffsetBits()
	indexBits := g.IndexBits()
	return Fields{
		Tag:    addr >> (indexBits + offsetBits),
		Index:  (addr >> offsetBits) & mask(indexBits),
		Offset: addr & mask(offsetBits),
	}
}

// Address reassembles the address f was decomposed from.
func (f Fields) Address(g Geometry) uint64 {
	offsetBits := g.OffsetBits()
	return f.Tag<<(g.IndexBits()+offsetBits) | f.Index<<offsetBits | f.Offset
}

func mask(n uint) uint64 {
	return 1<<n - 1
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}
