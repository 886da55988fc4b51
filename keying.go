package cachesim

import (
	"fmt"
	"strings"
)

// Keying selects which address field identifies a line inside its set.
type Keying uint8

const (
	// KeyByTag keys each set's lines by tag, so distinct blocks mapping to
	// the same set compete for its ways.
	KeyByTag Keying = iota

	// KeyByIndex keys each set's lines by the set index itself. Every set
	// then holds at most one synthetic line and any access to a set that was
	// touched before is a hit. This reproduces the classic classroom tool.
	KeyByIndex
)

// ParseKeying accepts "tag" or "index".
func ParseKeying(s string) (Keying, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tag", "":
		return KeyByTag, nil
	case "index":
		return KeyByIndex, nil
	}
	return 0, fmt.Errorf("cachesim: unknown keying %q (want tag or index)", s)
}

func (k Keying) String() string {
	if k == KeyByIndex {
		return "index"
	}
	return "tag"
}

// MarshalText renders the keying by name.
func (k Keying) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// key returns the identifier of the line f belongs to.
func (k Keying) key(f Fields) uint64 {
	if k == KeyByIndex {
		return f.Index
	}
	return f.Tag
}
