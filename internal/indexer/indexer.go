package indexer

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// BuildStats summarizes one index build.
type BuildStats struct {
	Lines   int64 // non-empty lines seen
	Indexed int64 // lines inserted into the trie
	Skipped int64 // lines too short to hold the column
	Bytes   int64
	Nodes   int
	Elapsed time.Duration
}

// Build scans size bytes of r and indexes the folded value of column for
// every line that has it. Lines with fewer fields are skipped silently.
func Build(r io.ReaderAt, size int64, column, chunkSize int, logger *slog.Logger) (*Trie, BuildStats, error) {
	start := time.Now()
	trie := NewTrie()
	var stats BuildStats

	scan, err := ScanLines(r, size, chunkSize, func(line []byte, offset int64) error {
		fields := ParseLine(string(line))
		if column >= len(fields) {
			stats.Skipped++
			return nil
		}
		trie.Insert(FoldKey(fields[column]), offset)
		stats.Indexed++
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("scanning failed: %w", err)
	}

	stats.Lines = scan.Lines
	stats.Bytes = scan.Bytes
	stats.Nodes = trie.Nodes()
	stats.Elapsed = time.Since(start)

	if logger != nil {
		logger.Debug("index built",
			"column", column,
			"lines", stats.Lines,
			"indexed", stats.Indexed,
			"skipped", stats.Skipped,
			"nodes", stats.Nodes,
			"elapsed", stats.Elapsed.Round(time.Millisecond))
	}
	return trie, stats, nil
}
