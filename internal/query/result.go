package query

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/csvquery/prefixsearch/internal/indexer"
)

// Result is one matching record: the indexed field as written in the file
// and the full raw line without its terminator.
type Result struct {
	Key  string
	Line string
}

// String renders the result as key[line].
func (r Result) String() string {
	return r.Key + "[" + r.Line + "]"
}

// sortResults orders results in place for the given column kind.
//
// Numeric columns sort by parsed value; keys that do not parse go last.
// Textual columns sort case-insensitively by uppercase folding.
// Both sorts are stable so ties keep assembly order.
func sortResults(results []Result, kind indexer.ColumnKind) {
	if len(results) < 2 {
		return
	}

	type keyed struct {
		res Result
		num float64
		txt string
	}
	items := make([]keyed, len(results))
	for i, r := range results {
		items[i].res = r
		if kind == indexer.KindNumeric {
			v, ok := indexer.ParseNumber(r.Key)
			if !ok {
				v = math.MaxFloat64
			}
			items[i].num = v
		} else {
			items[i].txt = strings.ToUpper(r.Key)
		}
	}

	if kind == indexer.KindNumeric {
		slices.SortStableFunc(items, func(a, b keyed) int { return cmp.Compare(a.num, b.num) })
	} else {
		slices.SortStableFunc(items, func(a, b keyed) int { return strings.Compare(a.txt, b.txt) })
	}

	for i := range items {
		results[i] = items[i].res
	}
}
