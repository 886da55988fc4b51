package cachesim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Trace parse errors. They are returned wrapped in a *ParseError.
var (
	ErrBadHeader  = errors.New("malformed header directive")
	ErrBadAddress = errors.New("malformed address")
	ErrBadLine    = errors.New("malformed access line")
)

// ParseError reports the trace line that could not be parsed.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cachesim: trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Source yields accesses in trace order. Next returns io.EOF once the
// trace is exhausted.
type Source interface {
	Next() (Access, error)
}

// TraceReader reads the text trace format: three positional header
// directives (sets, lines per set, line size) followed by one "R|W <hex>"
// access per line.
type TraceReader struct {
	scanner  *bufio.Scanner
	line     int
	geometry Geometry
}

// Compile-time check that TraceReader implements Source.
var _ Source = (*TraceReader)(nil)

// NewTraceReader consumes the header from r and returns a reader positioned
// at the first access. The geometry is returned as declared; it is not
// validated here.
func NewTraceReader(r io.Reader) (*TraceReader, error) {
	tr := &TraceReader{scanner: bufio.NewScanner(r)}

	var values [3]uint32
	for i := range values {
		text, err := tr.nextLine()
		if err == io.EOF {
			return nil, &ParseError{Line: tr.line, Err: fmt.Errorf("%w: expected 3 header lines, got %d", ErrBadHeader, i)}
		}
		if err != nil {
			return nil, fmt.Errorf("reading trace header: %w", err)
		}

		v, err := parseDirective(text)
		if err != nil {
			return nil, &ParseError{Line: tr.line, Text: text, Err: err}
		}
		values[i] = v
	}

	tr.geometry = Geometry{
		Sets:        values[0],
		LinesPerSet: values[1],
		LineSize:    values[2],
	}
	return tr, nil
}

// Geometry returns the geometry declared by the header.
func (tr *TraceReader) Geometry() Geometry {
	return tr.geometry
}

// Next parses the next access line.
func (tr *TraceReader) Next() (Access, error) {
	text, err := tr.nextLine()
	if err != nil {
		return Access{}, err
	}

	a, err := ParseAccess(text)
	if err != nil {
		return Access{}, &ParseError{Line: tr.line, Text: text, Err: err}
	}
	return a, nil
}

// nextLine returns the next line that is neither blank nor a comment.
func (tr *TraceReader) nextLine() (string, error) {
	for tr.scanner.Scan() {
		tr.line++
		text := strings.TrimSpace(tr.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return text, nil
	}
	if err := tr.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// parseDirective returns the integer after the last colon of a header line.
// Labels are not checked; only their position matters.
func parseDirective(text string) (uint32, error) {
	i := strings.LastIndexByte(text, ':')
	if i < 0 {
		return 0, fmt.Errorf("%w: missing ':'", ErrBadHeader)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(text[i+1:]), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	return uint32(v), nil
}

// ParseAccess parses a single "<op> <address>" line.
func ParseAccess(text string) (Access, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Access{}, fmt.Errorf("%w: want 2 fields, got %d", ErrBadLine, len(fields))
	}

	op, err := ParseOperation(fields[0])
	if err != nil {
		return Access{}, err
	}

	addr, err := ParseAddress(fields[1])
	if err != nil {
		return Access{}, err
	}
	return Access{Op: op, Address: addr}, nil
}

// ParseAddress parses a hexadecimal address with an optional 0x prefix.
func ParseAddress(s string) (uint64, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	addr, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrBadAddress, s)
	}
	return addr, nil
}

// SliceSource replays accesses held in memory.
type SliceSource struct {
	accesses []Access
	pos      int
}

// Compile-time check that SliceSource implements Source.
var _ Source = (*SliceSource)(nil)

// NewSliceSource returns a source over accesses.
func NewSliceSource(accesses ...Access) *SliceSource {
	return &SliceSource{accesses: accesses}
}

// Next returns the next access or io.EOF.
func (s *SliceSource) Next() (Access, error) {
	if s.pos >= len(s.accesses) {
		return Access{}, io.EOF
	}
	a := s.accesses[s.pos]
	s.pos++
	return a, nil
}
