package recorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erin-fowler/buildmode/internal/game/placement"
)

func sampleAttempt(tick uint64, ok bool, reason string) placement.Attempt {
	return placement.Attempt{
		Tick:   tick,
		Item:   "item-1",
		Def:    "crate_small",
		X:      3,
		Z:      4,
		YawDeg: 90,
		OK:     ok,
		Reason: reason,
		At:     time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	require.NoError(t, err)

	want := []placement.Attempt{
		sampleAttempt(1, true, ""),
		sampleAttempt(2, false, "occupied"),
		sampleAttempt(9, false, "no-raycast-hit"),
	}
	for _, a := range want {
		require.NoError(t, r.Record(a))
	}
	require.NoError(t, r.Close())

	got, err := ReadAll(r.Path())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "placements")
	r, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), ".jsonl.zst")
}

func TestEmptyFileReadsEmpty(t *testing.T) {
	r, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, r.Close())

	got, err := ReadAll(r.Path())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordAfterClose(t *testing.T) {
	r, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, r.Close())

	assert.Error(t, r.Record(sampleAttempt(1, true, "")))
	assert.NoError(t, r.Close(), "double close is a no-op")
}

func TestReadAllMissingFile(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "nope.jsonl.zst"))
	assert.Error(t, err)
}
