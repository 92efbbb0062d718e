package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/csvquery/prefixsearch/internal/common"
	"github.com/csvquery/prefixsearch/internal/query"
	"github.com/csvquery/prefixsearch/internal/source"
	"github.com/csvquery/prefixsearch/internal/writer"
)

var syllables = []string{"go", "ro", "ka", "ma", "dang", "moun", "ha", "gen", "na", "dzab", "wa", "pu", "lae", "port", "mo", "res", "by"}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run generates the dataset under a fresh temp dir and removes it on every
// return path.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	sizeMB := fs.Int("size", 50, "dataset size in MB")
	queries := fs.Int("queries", 2000, "number of queries to run")
	workers := fs.Int("workers", runtime.NumCPU(), "concurrent query workers")
	column := fs.Int("column", 1, "zero-based column to index")
	compress := fs.Bool("lz4", false, "write the dataset lz4-compressed")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	tmpRoot := fs.String("tmp", "", "parent directory for the generated dataset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp(*tmpRoot, "prefixsearch_bench")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	name := "airports.dat"
	if *compress {
		name += source.CompressedExt
	}
	dataPath := filepath.Join(tmpDir, name)

	fmt.Fprintf(out, "Generating %d MB dataset...\n", *sizeMB)
	rows, err := generate(dataPath, int64(*sizeMB)*1024*1024, *compress)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Generated %d rows\n", rows)

	src, err := source.Resolve(dataPath, tmpDir)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	engine, err := query.New(query.Config{
		CsvPath: src.Path,
		Column:  *column,
		Logger:  common.NewLogger(os.Stderr, *verbose),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Building index...")
	start := time.Now()
	if err := engine.Warm(); err != nil {
		return err
	}
	buildTime := time.Since(start)
	stats := engine.Stats().Build

	fmt.Fprintf(out, "Running %d queries on %d workers...\n", *queries, *workers)
	rng := rand.New(rand.NewSource(123))
	texts := make([]string, *queries)
	for i := range texts {
		texts[i] = syllables[rng.Intn(len(syllables))]
		if i%3 == 0 {
			texts[i] += syllables[rng.Intn(len(syllables))]
		}
	}

	var matched atomic.Int64
	var next atomic.Int64
	g := new(errgroup.Group)
	start = time.Now()
	for w := 0; w < *workers; w++ {
		g.Go(func() error {
			for {
				i := next.Add(1) - 1
				if i >= int64(len(texts)) {
					return nil
				}
				results, err := engine.Search(texts[i])
				if err != nil {
					return err
				}
				matched.Add(int64(len(results)))
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	queryTime := time.Since(start)

	fmt.Fprintf(out, "\n--------------------------------------------------\n")
	fmt.Fprintf(out, "Indexed:    %d of %d lines (%d trie nodes)\n", stats.Indexed, stats.Lines, stats.Nodes)
	fmt.Fprintf(out, "Build:      %v (%.2f MB/s)\n", buildTime.Round(time.Millisecond), float64(stats.Bytes)/1024/1024/buildTime.Seconds())
	fmt.Fprintf(out, "Queries:    %v (%.0f q/s, %d rows matched)\n", queryTime.Round(time.Millisecond), float64(len(texts))/queryTime.Seconds(), matched.Load())
	fmt.Fprintf(out, "--------------------------------------------------\n")
	return nil
}

// generate writes airports-shaped rows until limit bytes of plain text.
func generate(path string, limit int64, compress bool) (int64, error) {
	w, err := writer.Create(writer.WriterConfig{Path: path, Compress: compress})
	if err != nil {
		return 0, err
	}

	rng := rand.New(rand.NewSource(42))
	var written int64
	record := make([]string, 6)
	for written < limit {
		id := w.Rows() + 1
		record[0] = strconv.FormatInt(id, 10)
		record[1] = word(rng, 2+rng.Intn(2))
		record[2] = word(rng, 2)
		record[3] = word(rng, 3) + ", " + word(rng, 2)
		record[4] = strconv.FormatFloat(rng.Float64()*180-90, 'f', 6, 64)
		record[5] = strconv.FormatFloat(rng.Float64()*360-180, 'f', 6, 64)
		if err := w.Write(record); err != nil {
			_ = w.Close()
			return 0, err
		}
		for _, f := range record {
			written += int64(len(f)) + 1
		}
	}
	return w.Rows(), w.Close()
}

func word(rng *rand.Rand, n int) string {
	b := make([]byte, 0, 16)
	for i := 0; i < n; i++ {
		b = append(b, syllables[rng.Intn(len(syllables))]...)
	}
	if len(b) > 0 {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
