// Package indexer builds the in-memory prefix index over one column of a
// delimited flat file and provides the line-level helpers the query side
// needs to rehydrate records from their byte offsets.
//
// Lines are split at the byte level before any CSV quoting is considered,
// so a quoted field holding a raw newline is cut into two records.
package indexer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultChunkSize is the build-time read size.
	DefaultChunkSize = 1 << 20
	// DefaultBlockSize is the read size used when rehydrating one line.
	DefaultBlockSize = 1024
)

// ScanStats reports what a line scan saw.
type ScanStats struct {
	Lines int64 // non-empty lines handed to the callback
	Bytes int64
}

// ScanLines streams size bytes of r in chunkSize reads and calls fn for every
// non-empty line with the offset of its first byte. The terminator is '\n';
// a '\r' right before it is dropped from the line. A final line without
// terminator is delivered too. The line slice is reused after fn returns.
func ScanLines(r io.ReaderAt, size int64, chunkSize int, fn func(line []byte, offset int64) error) (ScanStats, error) {
	var stats ScanStats
	if size <= 0 {
		return stats, nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if int64(chunkSize) > size {
		chunkSize = int(size)
	}

	buf := make([]byte, chunkSize)
	line := make([]byte, 0, 256)
	var lineStart int64

	emit := func() error {
		content := line
		if n := len(content); n > 0 && content[n-1] == '\r' {
			content = content[:n-1]
		}
		if len(content) == 0 {
			return nil
		}
		stats.Lines++
		return fn(content, lineStart)
	}

	for pos := int64(0); pos < size; {
		chunk := buf[:min(int64(chunkSize), size-pos)]
		if err := readFull(r, chunk, pos); err != nil {
			return stats, err
		}

		rest := chunk
		base := pos
		for {
			i := bytes.IndexByte(rest, '\n')
			if i < 0 {
				line = append(line, rest...)
				break
			}
			line = append(line, rest[:i]...)
			if err := emit(); err != nil {
				return stats, err
			}
			line = line[:0]
			lineStart = base + int64(i) + 1
			base = lineStart
			rest = rest[i+1:]
		}

		pos += int64(len(chunk))
		stats.Bytes = pos
	}

	if len(line) > 0 {
		if err := emit(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// ReadLineAt returns the line starting at offset, without its terminator.
// It reads forward in blockSize reads until '\r', '\n' or the end of data.
func ReadLineAt(r io.ReaderAt, size, offset int64, blockSize int) (string, error) {
	if offset < 0 {
		return "", fmt.Errorf("invalid line offset %d", offset)
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	buf := make([]byte, blockSize)
	var line []byte
	for pos := offset; pos < size; {
		block := buf[:min(int64(blockSize), size-pos)]
		if err := readFull(r, block, pos); err != nil {
			return "", err
		}
		if i := bytes.IndexAny(block, "\r\n"); i >= 0 {
			return string(append(line, block[:i]...)), nil
		}
		line = append(line, block...)
		pos += int64(len(block))
	}
	return string(line), nil
}

// readFull fills p from r at off. ReaderAt may report io.EOF alongside a
// complete read, which is not an error here.
func readFull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("failed to read %d bytes at offset %d: %w", len(p), off, err)
}
