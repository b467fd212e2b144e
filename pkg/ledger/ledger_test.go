package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingFileReadsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "processed_files.txt"))

	seen, err := s.AlreadyProcessed()
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestFileStoreRecordIsMonotonic(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "processed_files.txt"))

	require.NoError(t, s.Record([]string{"batch_001.csv"}))
	first, err := s.AlreadyProcessed()
	require.NoError(t, err)

	require.NoError(t, s.Record([]string{"batch_002.csv", "batch_003.csv"}))
	second, err := s.AlreadyProcessed()
	require.NoError(t, err)

	// After any successful run the ledger is a superset of its
	// pre-run value.
	for name := range first {
		assert.Contains(t, second, name)
	}
	assert.Len(t, second, 3)
	assert.Contains(t, second, "batch_002.csv")
	assert.Contains(t, second, "batch_003.csv")
}

func TestFileStoreIgnoresBlankLinesAndWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_files.txt")
	require.NoError(t, os.WriteFile(path, []byte("a.csv\n\n  b.csv  \n\n"), 0644))

	seen, err := NewFileStore(path).AlreadyProcessed()
	require.NoError(t, err)
	assert.Len(t, seen, 2)
	assert.Contains(t, seen, "a.csv")
	assert.Contains(t, seen, "b.csv")
}

func TestFileStoreRecordNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_files.txt")
	require.NoError(t, NewFileStore(path).Record(nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty record must not create the ledger")
}

func TestFilterNewPreservesCandidateOrder(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "processed_files.txt"))
	require.NoError(t, s.Record([]string{"b.csv"}))

	fresh, err := FilterNew(s, []string{"a.csv", "b.csv", "c.csv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "c.csv"}, fresh)
}

func TestFilterNewAllSeen(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "processed_files.txt"))
	require.NoError(t, s.Record([]string{"a.csv", "b.csv"}))

	fresh, err := FilterNew(s, []string{"a.csv", "b.csv"})
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestBoltStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)

	seen, err := s.AlreadyProcessed()
	require.NoError(t, err)
	assert.Empty(t, seen)

	require.NoError(t, s.Record([]string{"batch_001.csv", "batch_002.csv"}))
	require.NoError(t, s.Close())

	// Entries survive reopening.
	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	seen, err = s.AlreadyProcessed()
	require.NoError(t, err)
	assert.Len(t, seen, 2)
	assert.Contains(t, seen, "batch_001.csv")

	fresh, err := FilterNew(s, []string{"batch_001.csv", "batch_003.csv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"batch_003.csv"}, fresh)
}
