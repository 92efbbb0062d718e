package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvquery/prefixsearch/internal/query"
)

func TestRun_RemovesDatasetOnSuccess(t *testing.T) {
	root := t.TempDir()
	var out bytes.Buffer

	err := run([]string{"-size", "1", "-queries", "50", "-workers", "2", "-lz4", "-tmp", root}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Indexed:")
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_RemovesDatasetOnFailure(t *testing.T) {
	root := t.TempDir()

	err := run([]string{"-size", "1", "-column", "-1", "-tmp", root}, &bytes.Buffer{})
	assert.ErrorIs(t, err, query.ErrInvalidColumn)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed run leaves no dataset behind")
}

func TestRun_BadFlag(t *testing.T) {
	assert.Error(t, run([]string{"-nope"}, &bytes.Buffer{}))
}
