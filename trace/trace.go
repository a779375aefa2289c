// Package trace reads and writes branch traces.
//
// A trace starts with a header: the number of static branches followed by
// one "address target" line per branch. Dynamic records follow, one
// "address TAKEN|NOT_TAKEN" per line, until end of input. Addresses are
// hexadecimal with an optional 0x prefix.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/branchsim/predictor"
)

var (
	// ErrMalformedHeader is returned when the branch count or a static
	// branch line cannot be parsed.
	ErrMalformedHeader = errors.New("malformed trace header")
	// ErrMalformedRecord is returned when a dynamic record cannot be parsed.
	ErrMalformedRecord = errors.New("malformed trace record")
)

// Record is one dynamic branch execution.
type Record struct {
	Address uint32
	Actual  predictor.Direction
}

// Source yields dynamic records in order. Next returns io.EOF once the
// trace is exhausted.
type Source interface {
	Next() (Record, error)
}

// Reader parses a textual trace.
type Reader struct {
	scanner  *bufio.Scanner
	line     int
	metadata []predictor.Metadata
}

// NewReader reads the header from r and returns a Reader positioned at the
// first dynamic record.
func NewReader(r io.Reader) (*Reader, error) {
	tr := &Reader{scanner: bufio.NewScanner(r)}
	if err := tr.readHeader(); err != nil {
		return nil, err
	}
	return tr, nil
}

// Metadata returns the static branch list from the header.
func (r *Reader) Metadata() []predictor.Metadata {
	return r.metadata
}

// nextFields returns the fields of the next non-blank line.
func (r *Reader) nextFields() ([]string, error) {
	for r.scanner.Scan() {
		r.line++
		fields := strings.Fields(r.scanner.Text())
		if len(fields) > 0 {
			return fields, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *Reader) readHeader() error {
	fields, err := r.nextFields()
	if err != nil {
		return fmt.Errorf("%w: missing branch count: %v", ErrMalformedHeader, err)
	}

	count, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil || len(fields) != 1 {
		return fmt.Errorf("%w: line %d: bad branch count %q",
			ErrMalformedHeader, r.line, strings.Join(fields, " "))
	}

	r.metadata = make([]predictor.Metadata, 0, min(count, 4096))
	for i := uint64(0); i < count; i++ {
		fields, err := r.nextFields()
		if err != nil {
			return fmt.Errorf("%w: expected %d branches, got %d: %v",
				ErrMalformedHeader, count, i, err)
		}
		if len(fields) != 2 {
			return fmt.Errorf("%w: line %d: want \"address target\"",
				ErrMalformedHeader, r.line)
		}

		addr, err := ParseAddress(fields[0])
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrMalformedHeader, r.line, err)
		}
		target, err := ParseAddress(fields[1])
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrMalformedHeader, r.line, err)
		}

		r.metadata = append(r.metadata, predictor.Metadata{
			Address: addr,
			Target:  target,
		})
	}

	return nil
}

// Next returns the next dynamic record, or io.EOF at end of trace.
func (r *Reader) Next() (Record, error) {
	fields, err := r.nextFields()
	if err != nil {
		return Record{}, err
	}
	if len(fields) != 2 {
		return Record{}, fmt.Errorf("%w: line %d: want \"address direction\"",
			ErrMalformedRecord, r.line)
	}

	addr, err := ParseAddress(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, r.line, err)
	}
	actual, err := predictor.ParseDirection(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, r.line, err)
	}

	return Record{Address: addr, Actual: actual}, nil
}

// ParseAddress parses a 32-bit hexadecimal address with optional 0x prefix.
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", s)
	}
	return uint32(v), nil
}

// Trace is an in-memory trace.
type Trace struct {
	Metadata []predictor.Metadata
	Records  []Record
}

// Source returns a Source over the trace records.
func (t *Trace) Source() Source {
	return &sliceSource{records: t.Records}
}

type sliceSource struct {
	records []Record
	pos     int
}

func (s *sliceSource) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return Record{}, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

// ReadAll reads a complete trace into memory.
func ReadAll(r io.Reader) (*Trace, error) {
	tr, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	t := &Trace{Metadata: tr.Metadata()}
	for {
		rec, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		t.Records = append(t.Records, rec)
	}
}

// Write writes t in the textual trace format.
func Write(w io.Writer, t *Trace) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d\n", len(t.Metadata))
	for _, m := range t.Metadata {
		fmt.Fprintf(bw, "%x %x\n", m.Address, m.Target)
	}
	for _, rec := range t.Records {
		fmt.Fprintf(bw, "%x %s\n", rec.Address, rec.Actual)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	return nil
}
