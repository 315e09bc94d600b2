// Package codec implements the line-oriented flat-file encoding shared by
// player records, the id list and save-state files: one value per line,
// lists written as a count line followed by that many item lines.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Codec errors
var (
	ErrMalformed = errors.New("malformed line")
	ErrTruncated = errors.New("unexpected end of input")
	ErrLineBreak = errors.New("value contains a line break")
)

// Writer emits values one per line. The first error is sticky and
// returned from Flush.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter wraps w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Line writes s followed by a newline. A value containing a line break
// fails the writer.
func (w *Writer) Line(s string) {
	if w.err != nil {
		return
	}
	if strings.ContainsAny(s, "\r\n") {
		w.err = fmt.Errorf("%q: %w", s, ErrLineBreak)
		return
	}
	if _, err := w.w.WriteString(s); err != nil {
		w.err = err
		return
	}
	w.err = w.w.WriteByte('\n')
}

// Int writes a single integer line
func (w *Writer) Int(n int) {
	w.Line(strconv.Itoa(n))
}

// Ints writes several integers space-separated on one line
func (w *Writer) Ints(ns ...int) {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	w.Line(strings.Join(parts, " "))
}

// List writes a size-prefixed list of strings
func (w *Writer) List(items []string) {
	WriteList(w, items, func(s string) string { return s })
}

// WriteList writes len(items) then one encoded item per line
func WriteList[T any](w *Writer, items []T, encode func(T) string) {
	w.Int(len(items))
	for _, item := range items {
		w.Line(encode(item))
	}
}

// Flush writes buffered data and returns the first error seen
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

// Reader consumes values one per line
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader wraps r
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	return &Reader{sc: sc}
}

// LineNo returns the number of lines consumed so far
func (r *Reader) LineNo() int {
	return r.line
}

// Line returns the next raw line without its terminator
func (r *Reader) Line() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("line %d: %w", r.line+1, ErrTruncated)
	}
	r.line++
	return strings.TrimSuffix(r.sc.Text(), "\r"), nil
}

// Int parses the next line as one integer
func (r *Reader) Int() (int, error) {
	s, err := r.Line()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("line %d: %q: %w", r.line, s, ErrMalformed)
	}
	return n, nil
}

// Ints parses the next line as exactly n space-separated integers
func (r *Reader) Ints(n int) ([]int, error) {
	s, err := r.Line()
	if err != nil {
		return nil, err
	}
	return ParseInts(s, n)
}

// OptionalInt parses the next line as an integer. ok is false when input
// is exhausted or the line does not parse.
func (r *Reader) OptionalInt() (n int, ok bool) {
	n, err := r.Int()
	return n, err == nil
}

// Count reads a non-negative list size
func (r *Reader) Count() (int, error) {
	n, err := r.Int()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("line %d: negative count %d: %w", r.line, n, ErrMalformed)
	}
	return n, nil
}

// List reads a size-prefixed list of strings
func (r *Reader) List() ([]string, error) {
	return ReadList(r, func(s string) (string, error) { return s, nil })
}

// ReadList reads a count then that many items through decode
func ReadList[T any](r *Reader, decode func(string) (T, error)) ([]T, error) {
	n, err := r.Count()
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, n)
	for i := 0; i < n; i++ {
		s, err := r.Line()
		if err != nil {
			return nil, err
		}
		item, err := decode(s)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// ParseInts splits s on whitespace and parses exactly n integers
func ParseInts(s string, n int) ([]int, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("want %d fields in %q: %w", n, s, ErrMalformed)
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", f, ErrMalformed)
		}
		out[i] = v
	}
	return out, nil
}

// WriteFile encodes into a temp file next to path and renames it into
// place, so readers never observe a half-written record.
func WriteFile(path string, encode func(*Writer)) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := NewWriter(tmp)
	encode(w)
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ReadFile opens path and hands a Reader to decode
func ReadFile(path string, decode func(*Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return decode(NewReader(f))
}
