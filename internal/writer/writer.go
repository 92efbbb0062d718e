// Package writer produces delimited data files in the format the indexer
// reads, optionally compressed as an lz4 frame.
package writer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
)

// WriterConfig holds configuration for the writer
type WriterConfig struct {
	Path     string // Output file, created or truncated
	Compress bool   // Wrap the output in an lz4 frame
}

// CsvWriter writes records to a new file. Fields holding commas, quotes or
// a leading space are quoted and embedded quotes are doubled.
type CsvWriter struct {
	config WriterConfig
	file   *os.File
	lz     *lz4.Writer
	buf    *bufio.Writer
	csv    *csv.Writer
	rows   int64
}

// Create opens the output file and prepares the encoder chain.
func Create(config WriterConfig) (*CsvWriter, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("output path required")
	}
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	w := &CsvWriter{config: config, file: file}
	var out io.Writer = file
	if config.Compress {
		w.lz = lz4.NewWriter(file)
		if err := w.lz.Apply(lz4.BlockSizeOption(lz4.Block4Mb)); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to configure lz4: %w", err)
		}
		out = w.lz
	}
	w.buf = bufio.NewWriterSize(out, 256*1024)
	w.csv = csv.NewWriter(w.buf)
	return w, nil
}

// Write appends one record.
func (w *CsvWriter) Write(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return err
	}
	w.rows++
	return nil
}

// WriteAll appends rows.
func (w *CsvWriter) WriteAll(rows [][]string) error {
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Rows returns the number of records written so far.
func (w *CsvWriter) Rows() int64 {
	return w.rows
}

// Close flushes every layer and closes the file.
func (w *CsvWriter) Close() error {
	w.csv.Flush()
	err := w.csv.Error()
	if ferr := w.buf.Flush(); err == nil {
		err = ferr
	}
	if w.lz != nil {
		if cerr := w.lz.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}
