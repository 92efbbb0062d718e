// Package source turns a user-supplied data path into a plain file the
// engine can memory-map. Files ending in .lz4 are inflated once into a
// temporary file; everything else is used in place.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// CompressedExt marks lz4-framed data files.
const CompressedExt = ".lz4"

// Source is a resolved data file.
type Source struct {
	Path string // Plain file to index
	Orig string // Path as given

	compressed bool
	temp       bool
}

// Compressed reports whether Path was inflated from an lz4 file.
func (s *Source) Compressed() bool {
	return s.compressed
}

// Resolve returns a Source for path. Compressed inputs are inflated into
// tmpDir (os.TempDir when empty); Close removes the inflated copy.
func Resolve(path, tmpDir string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(path), CompressedExt) {
		return &Source{Path: path, Orig: path}, nil
	}

	inflated, err := inflate(path, tmpDir)
	if err != nil {
		return nil, err
	}
	return &Source{Path: inflated, Orig: path, compressed: true, temp: true}, nil
}

func inflate(path, tmpDir string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out, err := os.CreateTemp(tmpDir, base+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create inflate target: %w", err)
	}

	bw := bufio.NewWriterSize(out, 256*1024)
	_, err = io.Copy(bw, lz4.NewReader(bufio.NewReaderSize(in, 64*1024)))
	if err == nil {
		err = bw.Flush()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out.Name())
		return "", fmt.Errorf("failed to inflate %s: %w", filepath.Base(path), err)
	}
	return out.Name(), nil
}

// Close removes the inflated copy, if any. It is idempotent.
func (s *Source) Close() error {
	if !s.temp {
		return nil
	}
	s.temp = false
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
