// Package query answers prefix queries over one column of a static delimited
// file. The index is built lazily on the first query and lives as long as
// the Engine.
package query

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/csvquery/prefixsearch/internal/common"
	"github.com/csvquery/prefixsearch/internal/indexer"
)

var (
	// ErrMissingPath is returned by New when no file is configured.
	ErrMissingPath = errors.New("csv path required")
	// ErrInvalidColumn is returned by New for a negative column index.
	ErrInvalidColumn = errors.New("column index must not be negative")
)

// Config holds engine parameters
type Config struct {
	CsvPath   string       // Path to the data file. Must not change while the engine lives.
	Column    int          // Zero-based column to index
	ChunkSize int          // Build read size (default 1 MiB)
	BlockSize int          // Line rehydration read size (default 1024)
	Logger    *slog.Logger // Defaults to a discarding logger
}

// Stats reports how often the lazy builds ran and what the index build saw.
type Stats struct {
	Builds          int64
	Classifications int64
	Build           indexer.BuildStats
}

// Engine executes prefix queries against one column of a file.
//
// Construction does no I/O. The trie and the column classification are each
// built once, on first need; concurrent first callers wait for that build and
// then share the result. Search is safe for concurrent use.
type Engine struct {
	config Config
	logger *slog.Logger

	trie *common.Lazy[*indexer.Trie]
	kind *common.Lazy[indexer.ColumnKind]

	builds          atomic.Int64
	classifications atomic.Int64
	buildStats      atomic.Pointer[indexer.BuildStats]
}

// New creates an engine. File errors surface on first use, not here.
func New(config Config) (*Engine, error) {
	if config.CsvPath == "" {
		return nil, ErrMissingPath
	}
	if config.Column < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColumn, config.Column)
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = indexer.DefaultChunkSize
	}
	if config.BlockSize <= 0 {
		config.BlockSize = indexer.DefaultBlockSize
	}

	e := &Engine{config: config, logger: config.Logger}
	if e.logger == nil {
		e.logger = common.DiscardLogger()
	}
	e.trie = common.NewLazy(e.buildTrie)
	e.kind = common.NewLazy(e.classify)
	return e, nil
}

func (e *Engine) buildTrie() (*indexer.Trie, error) {
	e.builds.Add(1)
	e.logger.Info("building index", "file", e.config.CsvPath, "column", e.config.Column)

	m, err := common.Open(e.config.CsvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}
	defer func() { _ = m.Close() }()
	_ = m.Advise(common.AccessSequential)

	trie, stats, err := indexer.Build(m, int64(m.Len()), e.config.Column, e.config.ChunkSize, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}
	e.buildStats.Store(&stats)

	e.logger.Info("index ready",
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"elapsed", stats.Elapsed.Round(time.Millisecond))
	return trie, nil
}

func (e *Engine) classify() (indexer.ColumnKind, error) {
	e.classifications.Add(1)
	kind, err := indexer.Classify(e.config.CsvPath, e.config.Column)
	if err != nil {
		return kind, fmt.Errorf("failed to classify column: %w", err)
	}
	e.logger.Debug("column classified", "column", e.config.Column, "kind", kind)
	return kind, nil
}

// Search returns every record whose indexed column starts with text,
// ignoring case. An empty text yields no results. Records that no longer
// hold the column when re-read are dropped.
func (e *Engine) Search(text string) ([]Result, error) {
	if text == "" {
		return []Result{}, nil
	}

	trie, err := e.trie.Get()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	offsets := trie.Search(indexer.FoldKey(text))
	results, err := e.fetch(offsets)
	if err != nil {
		return nil, err
	}

	kind, err := e.kind.Get()
	if err != nil {
		return nil, err
	}
	sortResults(results, kind)

	e.logger.Debug("query",
		"text", text,
		"candidates", len(offsets),
		"results", len(results),
		"elapsed", time.Since(start))
	return results, nil
}

// fetch rehydrates the lines at offsets through a mapping of its own.
func (e *Engine) fetch(offsets []int64) ([]Result, error) {
	results := make([]Result, 0, len(offsets))
	if len(offsets) == 0 {
		return results, nil
	}

	m, err := common.Open(e.config.CsvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}
	defer func() { _ = m.Close() }()
	_ = m.Advise(common.AccessRandom)

	size := int64(m.Len())
	col := e.config.Column
	for _, off := range offsets {
		line, err := indexer.ReadLineAt(m, size, off, e.config.BlockSize)
		if err != nil {
			return nil, fmt.Errorf("failed to read line at offset %d: %w", off, err)
		}
		if line == "" {
			continue
		}
		fields := indexer.ParseLine(line)
		if col >= len(fields) {
			continue
		}
		results = append(results, Result{Key: fields[col], Line: line})
	}
	return results, nil
}

// Classification returns the column kind, computing it on first call.
func (e *Engine) Classification() (indexer.ColumnKind, error) {
	return e.kind.Get()
}

// Warm runs both lazy builds now instead of on the first query.
func (e *Engine) Warm() error {
	if _, err := e.trie.Get(); err != nil {
		return err
	}
	_, err := e.kind.Get()
	return err
}

// Stats returns build counters and the statistics of the index build.
func (e *Engine) Stats() Stats {
	s := Stats{
		Builds:          e.builds.Load(),
		Classifications: e.classifications.Load(),
	}
	if b := e.buildStats.Load(); b != nil {
		s.Build = *b
	}
	return s
}

// Column returns the configured zero-based column index.
func (e *Engine) Column() int {
	return e.config.Column
}
