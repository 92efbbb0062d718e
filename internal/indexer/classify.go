package indexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ColumnKind tells how the indexed column's values are ordered in results.
type ColumnKind int

const (
	KindTextual ColumnKind = iota
	KindNumeric
)

func (k ColumnKind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "textual"
}

// Classify decides whether column holds numbers by looking at a single
// sample: the first record that has the column at all. A blank line is a
// record with one empty field. A field quoted in the raw text is textual.
// Otherwise the field is numeric if it parses as a float. Header rows are
// not special-cased and later records are never consulted.
func Classify(path string, column int) (ColumnKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindTextual, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return KindTextual, fmt.Errorf("failed to read sample record: %w", err)
		}
		if len(line) > 0 {
			// a blank line is a one-field record and can be the sample
			if kind, ok := classifyLine(strings.TrimRight(line, "\r\n"), column); ok {
				return kind, nil
			}
		}
		if err != nil {
			// no record reaches the column
			return KindTextual, nil
		}
	}
}

func classifyLine(line string, column int) (ColumnKind, bool) {
	raw := SplitRaw(line)
	if column >= len(raw) {
		return KindTextual, false
	}
	if v := raw[column]; len(v) > 0 && v[0] == '"' && v[len(v)-1] == '"' {
		return KindTextual, true
	}
	if _, ok := ParseNumber(ParseLine(line)[column]); ok {
		return KindNumeric, true
	}
	return KindTextual, true
}

// ParseNumber parses s as a float64, ignoring surrounding spaces.
// Overflow parses as an infinity. NaN is rejected.
func ParseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
