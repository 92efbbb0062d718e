package query

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/csvquery/prefixsearch/internal/indexer"
)

const airports = "1,Goroka,Goroka,Papua New Guinea\n" +
	"2,Madang,Madang,Papua New Guinea\n" +
	"3,Mount Hagen,Mount Hagen,Papua New Guinea\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airports.dat")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newEngine(t *testing.T, content string, column int) *Engine {
	t.Helper()
	e, err := New(Config{CsvPath: writeCSV(t, content), Column: column})
	require.NoError(t, err)
	return e
}

func TestSearch_EndToEnd(t *testing.T) {
	e := newEngine(t, airports, 1)

	results, err := e.Search("mad")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Madang", results[0].Key)
	assert.Equal(t, "2,Madang,Madang,Papua New Guinea", results[0].Line)
}

func TestSearch_CaseInsensitivePrefixes(t *testing.T) {
	e := newEngine(t, airports, 1)

	for _, q := range []string{"m", "M", "mOuNt", "Mount Hagen", "g"} {
		results, err := e.Search(q)
		require.NoError(t, err)
		require.NotEmpty(t, results, q)
		for _, r := range results {
			assert.True(t, strings.HasPrefix(strings.ToLower(r.Key), strings.ToLower(q)), "%q does not start with %q", r.Key, q)
		}
	}

	results, err := e.Search("M")
	require.NoError(t, err)
	assert.Equal(t, []string{"Madang", "Mount Hagen"}, keys(results))
}

func TestSearch_EmptyAndMissing(t *testing.T) {
	e := newEngine(t, airports, 1)

	results, err := e.Search("")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	// an empty query must not trigger the build
	assert.Zero(t, e.Stats().Builds)

	results, err = e.Search("zzz")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int64(1), e.Stats().Builds)
}

func TestSearch_NumericColumnOrdering(t *testing.T) {
	content := "10,Alpha\n2,Beta\n1x,Gamma\n1,Delta\n100,Epsilon\n"
	e := newEngine(t, content, 0)

	kind, err := e.Classification()
	require.NoError(t, err)
	assert.Equal(t, indexer.KindNumeric, kind)

	results, err := e.Search("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "10", "100", "1x"}, keys(results))
}

func TestSearch_QuotedColumnIsTextual(t *testing.T) {
	content := "\"10\",a\n\"9\",b\n\"1\",c\n"
	e := newEngine(t, content, 0)

	kind, err := e.Classification()
	require.NoError(t, err)
	assert.Equal(t, indexer.KindTextual, kind)

	results, err := e.Search("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "10"}, keys(results))
	assert.Equal(t, "\"1\",c", results[0].Line)
}

func TestSearch_QuotedFieldsAndCRLF(t *testing.T) {
	content := "1,\"Zürich, Kloten\",CH\r\n2,\"Zagreb \"\"Franjo\"\"\",HR\r\nbroken\r\n3,zaragoza,ES"
	e := newEngine(t, content, 1)

	results, err := e.Search("Z")
	require.NoError(t, err)
	assert.Equal(t, []string{"Zagreb \"Franjo\"", "zaragoza", "Zürich, Kloten"}, keys(results))
	assert.Equal(t, "3,zaragoza,ES", results[1].Line)
	assert.Equal(t, "1,\"Zürich, Kloten\",CH", results[2].Line)
}

func TestSearch_Latin1BytesDoNotCollide(t *testing.T) {
	e := newEngine(t, "1,\xffabc\n2,\xfeabd\n", 1)

	results, err := e.Search("\xff")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "\xffabc", results[0].Key)
	assert.Equal(t, "1,\xffabc", results[0].Line)
}

func TestSearch_RehydratedLineDecidesTheColumn(t *testing.T) {
	// the build sees "2,Mada\rng,x" but rehydration stops at the bare \r
	content := "1,Mad\r\n\r\n2,Mada\rng,x\n3,Madz\n"

	e := newEngine(t, content, 1)
	results, err := e.Search("mad")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mad", "Mada", "Madz"}, keys(results))
	assert.Equal(t, "2,Mada", results[1].Line)

	// at column 2 only that record was indexed, and its re-read line is too short
	e = newEngine(t, content, 2)
	results, err = e.Search("x")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int64(1), e.Stats().Build.Indexed)
}

func TestSearch_EmptyRehydratedLineIsDropped(t *testing.T) {
	// a line starting with \r is indexed but reads back empty
	e := newEngine(t, "\rq,w\n1,Mad\n", 0)

	results, err := e.Search("\r")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int64(2), e.Stats().Build.Indexed)
}

func TestSearch_DuplicateValues(t *testing.T) {
	content := "1,Madang\n2,madang\n3,MADANG\n"
	e := newEngine(t, content, 1)

	results, err := e.Search("madang")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearch_SmallChunksAgree(t *testing.T) {
	path := writeCSV(t, airports+"4,Nadzab,Lae,Papua New Guinea")
	big, err := New(Config{CsvPath: path, Column: 1})
	require.NoError(t, err)
	small, err := New(Config{CsvPath: path, Column: 1, ChunkSize: 3, BlockSize: 2})
	require.NoError(t, err)

	for _, q := range []string{"m", "g", "nad", "x"} {
		a, err := big.Search(q)
		require.NoError(t, err)
		b, err := small.Search(q)
		require.NoError(t, err)
		assert.ElementsMatch(t, a, b, q)
	}
}

func TestSearch_MissingFileFailsOnFirstUse(t *testing.T) {
	e, err := New(Config{CsvPath: filepath.Join(t.TempDir(), "missing.dat"), Column: 0})
	require.NoError(t, err)

	_, err = e.Search("a")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// the failure is cached, not retried
	_, err = e.Search("b")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, int64(1), e.Stats().Builds)
	assert.Error(t, e.Warm())
}

func TestSearch_ConcurrentFirstUseBuildsOnce(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 5000; i++ {
		sb.WriteString("x,airport ")
		sb.WriteString(strings.Repeat("a", i%7))
		sb.WriteString("\n")
	}
	e := newEngine(t, sb.String(), 1)

	const callers = 16
	counts := make([]int, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			results, err := e.Search("air")
			counts[i] = len(results)
			return err
		})
	}
	require.NoError(t, g.Wait())

	stats := e.Stats()
	assert.Equal(t, int64(1), stats.Builds)
	assert.Equal(t, int64(1), stats.Classifications)
	assert.Equal(t, int64(5000), stats.Build.Indexed)
	for _, c := range counts {
		assert.Equal(t, 5000, c)
	}
}

func TestIndependentEnginesAgree(t *testing.T) {
	path := writeCSV(t, airports)
	a, err := New(Config{CsvPath: path, Column: 2})
	require.NoError(t, err)
	b, err := New(Config{CsvPath: path, Column: 2})
	require.NoError(t, err)
	require.NoError(t, b.Warm())

	for _, q := range []string{"g", "m", "mount", "q"} {
		ra, err := a.Search(q)
		require.NoError(t, err)
		rb, err := b.Search(q)
		require.NoError(t, err)
		assert.ElementsMatch(t, ra, rb)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Column: 0})
	assert.ErrorIs(t, err, ErrMissingPath)

	_, err = New(Config{CsvPath: "x", Column: -1})
	assert.ErrorIs(t, err, ErrInvalidColumn)

	e, err := New(Config{CsvPath: "x", Column: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, e.Column())
}
