package directory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/linkedin-leads-crawler/internal/directory"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

func TestLoadCursorsMissingFileStartsFresh(t *testing.T) {
	t.Parallel()

	cursors, err := directory.LoadCursors(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Len(t, cursors, 27)
	assert.Equal(t, scrape.PartitionID("a"), cursors[0].Partition)
	assert.Equal(t, scrape.PartitionMisc, cursors[26].Partition)
	for _, c := range cursors {
		assert.False(t, c.Done)
		assert.Empty(t, c.NextPageToken)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cursors.json")
	saved := directory.FreshCursors()
	saved[0].Done = true
	saved[1].NextPageToken = "https://example.test/directory/companies-b?page=3"

	require.NoError(t, directory.SaveCursors(path, saved))

	loaded, err := directory.LoadCursors(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadCursorsMalformedFileIsSetupError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cursors.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := directory.LoadCursors(path)
	require.Error(t, err)
	assert.True(t, scrape.IsSetupError(err))
}

func TestLoadCursorsBackfillsNewPartitions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cursors.json")
	partial := []scrape.PartitionCursor{
		{Partition: "a", Done: true},
	}
	require.NoError(t, directory.SaveCursors(path, partial))

	loaded, err := directory.LoadCursors(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 27)
	assert.True(t, loaded[0].Done)
}
