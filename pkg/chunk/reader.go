// Package chunk splits text into whitespace aligned chunks and pulls
// alphabetic words out of them.
//
// A chunk never ends in the middle of a word: after reading the requested
// size the reader keeps going one byte at a time until it lands on a space
// or newline. Concatenating every chunk gives back the input unchanged.
package chunk

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

const (
	// MaxBoundaryScan is how many extra bytes may be read looking for whitespace.
	MaxBoundaryScan = 250
	// DefaultSize is the chunk size used when none is given.
	DefaultSize = 2 * 1024
)

// ErrNoBoundary is returned when no whitespace shows up within the scan limit.
var ErrNoBoundary = errors.New("no word boundary found, input may not be whitespace delimited")

// BoundaryError is the ErrNoBoundary failure of one chunk.
type BoundaryError struct {
	Chunk  int
	Offset int64
	Limit  int
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("%v (chunk %d at offset %d, limit %d bytes)", ErrNoBoundary, e.Chunk, e.Offset, e.Limit)
}

func (e *BoundaryError) Unwrap() error {
	return ErrNoBoundary
}

// Chunk is a whitespace aligned span of the input.
type Chunk struct {
	Index  int
	Offset int64
	Data   []byte
}

// Option configures a Reader.
type Option func(*Reader)

// WithBoundaryLimit overrides MaxBoundaryScan. Non-positive values are ignored.
func WithBoundaryLimit(limit int) Option {
	return func(r *Reader) {
		if limit > 0 {
			r.boundaryLimit = limit
		}
	}
}

// Reader yields chunks from a stream. It is single use and not safe for
// concurrent use.
type Reader struct {
	src           *bufio.Reader
	size          int
	boundaryLimit int
	offset        int64
	index         int
	done          bool
}

// NewReader reads chunks of roughly size bytes from r.
func NewReader(r io.Reader, size int, opts ...Option) *Reader {
	if size <= 0 {
		size = DefaultSize
	}
	cr := &Reader{
		src:           bufio.NewReaderSize(r, size+MaxBoundaryScan),
		size:          size,
		boundaryLimit: MaxBoundaryScan,
	}
	for _, opt := range opts {
		opt(cr)
	}
	return cr
}

// Next returns the next chunk, or io.EOF once the input is exhausted.
func (r *Reader) Next() (Chunk, error) {
	if r.done {
		return Chunk{}, io.EOF
	}

	data := make([]byte, r.size, r.size+r.boundaryLimit)
	n, err := io.ReadFull(r.src, data)
	data = data[:n]
	switch {
	case err == io.EOF:
		r.done = true
		return Chunk{}, io.EOF
	case err == io.ErrUnexpectedEOF:
		r.done = true
	case err != nil:
		return Chunk{}, fmt.Errorf("read chunk %d: %w", r.index, err)
	}

	if !r.done {
		data, err = r.extendToBoundary(data)
		if err != nil {
			return Chunk{}, err
		}
	}

	c := Chunk{Index: r.index, Offset: r.offset, Data: data}
	r.index++
	r.offset += int64(len(data))
	return c, nil
}

// extendToBoundary reads single bytes until data ends on whitespace or input ends.
func (r *Reader) extendToBoundary(data []byte) ([]byte, error) {
	extra := 0
	for !isBoundary(data[len(data)-1]) {
		b, err := r.src.ReadByte()
		if err == io.EOF {
			r.done = true
			return data, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read chunk %d: %w", r.index, err)
		}
		data = append(data, b)
		extra++
		if extra > r.boundaryLimit && !isBoundary(b) {
			log.Debug("boundary scan exceeded", "chunk", r.index, "offset", r.offset, "limit", r.boundaryLimit)
			return nil, &BoundaryError{Chunk: r.index, Offset: r.offset, Limit: r.boundaryLimit}
		}
	}
	return data, nil
}

func isBoundary(b byte) bool {
	return b == ' ' || b == '\n'
}

// FileReader is a Reader that owns an open file.
type FileReader struct {
	*Reader
	file *os.File
	size int64
}

// Open opens path for chunked reading. The caller must Close it.
func Open(path string, size int, opts ...Option) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var total int64
	if info, err := f.Stat(); err == nil {
		total = info.Size()
	}
	return &FileReader{
		Reader: NewReader(f, size, opts...),
		file:   f,
		size:   total,
	}, nil
}

// Size returns the file size reported when it was opened.
func (fr *FileReader) Size() int64 {
	return fr.size
}

func (fr *FileReader) Close() error {
	return fr.file.Close()
}
