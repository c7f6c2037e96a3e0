package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// every backend must satisfy the same contract
func backends(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	gormStore, err := NewGormStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gormStore.Close() })
	return map[string]Store{"file": fileStore, "gorm": gormStore}
}

func TestLedgerRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append("bulk.csv", "101"))
			require.NoError(t, store.Append("bulk.csv", "102"))
			require.NoError(t, store.Append("bulk.csv", "101")) // duplicates preserved

			ids, err := store.Read("bulk.csv")
			require.NoError(t, err)
			assert.Equal(t, []string{"101", "102", "101"}, ids)
		})
	}
}

func TestLedgerClearIsIdempotent(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Clear("never-written.csv"))
			require.NoError(t, store.Clear("never-written.csv"))
			ids, err := store.Read("never-written.csv")
			require.NoError(t, err)
			assert.Empty(t, ids)
		})
	}
}

func TestLedgerClearThenAppend(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append("X.csv", "101"))
			require.NoError(t, store.Append("X.csv", "102"))
			require.NoError(t, store.Clear("X.csv"))
			require.NoError(t, store.Append("X.csv", "103"))

			ids, err := store.Read("X.csv")
			require.NoError(t, err)
			assert.Equal(t, []string{"103"}, ids)
		})
	}
}

func TestLedgerLabelsAreIsolated(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Append("a.csv", "1"))
			require.NoError(t, store.Append("b.csv", "2"))
			require.NoError(t, store.Clear("a.csv"))

			ids, err := store.Read("b.csv")
			require.NoError(t, err)
			assert.Equal(t, []string{"2"}, ids)
		})
	}
}

func TestFileStoreRejectsPathTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.Append("../escape.csv", "1"))
	assert.Error(t, store.Clear("sub/dir.csv"))
}

func TestFileStoreFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append("fmt.csv", "9001"))
	require.NoError(t, store.Append("fmt.csv", "9002"))

	data, err := os.ReadFile(filepath.Join(dir, "fmt.csv"))
	require.NoError(t, err)
	assert.Equal(t, "9001\n9002\n", string(data))
}
