// Package common holds the pieces shared by the indexer and the query engine:
// read-only memory mappings, the exactly-once initializer and logging.
package common

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// AccessPattern is a hint to the kernel about how a mapping will be read.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
)

var (
	// ErrClosed is returned when reading from a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidOffset is returned for negative read offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)

// Mapping is a read-only memory mapping of a whole file.
// It is safe for concurrent reads through ReadAt.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path read-only. The file descriptor is closed
// before returning; the mapping stays valid until Close.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	stats, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	size := stats.Size()
	if size == 0 {
		// mmap(2) rejects zero-length mappings
		return &Mapping{}, nil
	}
	if size < 0 || int64(int(size)) != size {
		return nil, fmt.Errorf("mmap: invalid file size %d", size)
	}

	data, unmap, err := mmapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Len returns the mapped size in bytes.
func (m *Mapping) Len() int {
	return len(m.data)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Advise passes an access hint to the kernel. Hints are advisory only.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return adviseMapping(m.data, pattern)
}

// Close unmaps the file. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap == nil || m.data == nil {
		return nil
	}
	return m.unmap(m.data)
}
