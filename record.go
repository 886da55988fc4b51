package cachesim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOperation is returned for operation codes other than R and W.
var ErrUnknownOperation = errors.New("unknown operation")

// Operation is the kind of memory access.
type Operation uint8

const (
	Read Operation = iota + 1
	Write
)

// ParseOperation accepts R, W, read and write in any case.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(s) {
	case "r", "read":
		return Read, nil
	case "w", "write":
		return Write, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownOperation, s)
}

func (o Operation) String() string {
	switch o {
	case Read:
		return "read"
	case Write:
		return "write"
	}
	return fmt.Sprintf("Operation(%d)", uint8(o))
}

// MarshalText renders the operation as read or write.
func (o Operation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Status is the outcome of a lookup.
type Status uint8

const (
	Miss Status = iota
	Hit
)

func (s Status) String() string {
	if s == Hit {
		return "hit"
	}
	return "miss"
}

// MarshalText renders the status as hit or miss.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Access is a single trace entry.
type Access struct {
	Op      Operation
	Address uint64
}

// AccessRecord is the classification of one access.
type AccessRecord struct {
	Op         Operation `json:"operation"`
	Address    uint64    `json:"address"`
	Tag        uint64    `json:"tag"`
	Index      uint64    `json:"index"`
	Offset     uint64    `json:"offset"`
	Status     Status    `json:"status"`
	MemoryRefs int       `json:"memory_refs"`

	// Evicted is set when the access displaced another line from its set.
	Evicted bool `json:"evicted,omitempty"`
}

// HexAddress formats the address the way traces spell it.
func (r AccessRecord) HexAddress() string {
	return fmt.Sprintf("0x%x", r.Address)
}

// Stats are the run totals.
type Stats struct {
	Hits      uint64  `json:"total_hits"`
	Misses    uint64  `json:"total_misses"`
	Accesses  uint64  `json:"total_accesses"`
	Evictions uint64  `json:"total_evictions"`
	HitRatio  float64 `json:"hit_ratio"`
	MissRatio float64 `json:"miss_ratio"`
}

// Result is everything a finished run produced.
type Result struct {
	Geometry Geometry       `json:"geometry"`
	Keying   Keying         `json:"keying"`
	Records  []AccessRecord `json:"records"`
	Stats    Stats          `json:"stats"`
}
