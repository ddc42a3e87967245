// Package triplet reads and writes the whitespace separated coordinate text
// format used for matrices ("row col value") and vectors ("index value").
//
// Lines are processed in order. Blank lines and lines starting with '%' or
// '#' are ignored. Indices are shifted by a caller supplied offset so that
// both 0-based and 1-based files can be read.
package triplet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned for lines that cannot be parsed.
	ErrMalformed = errors.New("malformed input")
	// ErrNegativeIndex is returned when an index is below the offset.
	ErrNegativeIndex = errors.New("index below offset")
)

// ParseError records the 1-based line at which parsing failed.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Entry is one matrix element.
type Entry struct {
	Row   int
	Col   int
	Value float64
}

// VectorEntry is one vector element.
type VectorEntry struct {
	Index int
	Value float64
}

// Matrix holds the parsed content of a matrix file. Rows and Cols are one
// past the largest row and column index seen, which for files written by
// WriteMatrix is the shape given by the last line.
type Matrix struct {
	Rows    int
	Cols    int
	Entries []Entry
}

// Vector holds the parsed content of a vector file.
type Vector struct {
	Len     int
	Entries []VectorEntry
}

// ReadMatrix parses "row col value" lines.
func ReadMatrix(r io.Reader, offset int) (*Matrix, error) {
	m := &Matrix{}
	err := scan(r, 3, func(line int, fields []string) error {
		row, err := parseIndex(fields[0], offset)
		if err != nil {
			return err
		}
		col, err := parseIndex(fields[1], offset)
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("%w: value %q", ErrMalformed, fields[2])
		}
		m.Entries = append(m.Entries, Entry{Row: row, Col: col, Value: v})
		m.Rows = max(m.Rows, row+1)
		m.Cols = max(m.Cols, col+1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(m.Entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrMalformed)
	}
	return m, nil
}

// ReadVector parses "index value" lines.
func ReadVector(r io.Reader, offset int) (*Vector, error) {
	v := &Vector{}
	err := scan(r, 2, func(line int, fields []string) error {
		idx, err := parseIndex(fields[0], offset)
		if err != nil {
			return err
		}
		val, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("%w: value %q", ErrMalformed, fields[1])
		}
		v.Entries = append(v.Entries, VectorEntry{Index: idx, Value: val})
		v.Len = max(v.Len, idx+1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(v.Entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrMalformed)
	}
	return v, nil
}

func scan(r io.Reader, tokens int, fn func(line int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '%' || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != tokens {
			return &ParseError{Line: line, Err: fmt.Errorf("%w: expected %d fields, got %d", ErrMalformed, tokens, len(fields))}
		}
		if err := fn(line, fields); err != nil {
			return &ParseError{Line: line, Err: err}
		}
	}
	return sc.Err()
}

func parseIndex(s string, offset int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrMalformed, s)
	}
	i -= offset
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNegativeIndex, s)
	}
	return i, nil
}

// Writer emits triplet lines through a buffered writer.
type Writer struct {
	w       *bufio.Writer
	offset  int
	bitSize int
	buf     []byte
}

// NewWriter creates a Writer. bitSize (32 or 64) controls the shortest
// round-tripping representation of values.
func NewWriter(w io.Writer, offset, bitSize int) *Writer {
	return &Writer{w: bufio.NewWriter(w), offset: offset, bitSize: bitSize}
}

// WriteEntry writes "row col value".
func (w *Writer) WriteEntry(row, col int, v float64) error {
	b := w.buf[:0]
	b = strconv.AppendInt(b, int64(row+w.offset), 10)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(col+w.offset), 10)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, v, 'g', -1, w.bitSize)
	b = append(b, '\n')
	w.buf = b
	_, err := w.w.Write(b)
	return err
}

// WriteVectorEntry writes "index value".
func (w *Writer) WriteVectorEntry(i int, v float64) error {
	b := w.buf[:0]
	b = strconv.AppendInt(b, int64(i+w.offset), 10)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, v, 'g', -1, w.bitSize)
	b = append(b, '\n')
	w.buf = b
	_, err := w.w.Write(b)
	return err
}

// Flush writes buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
