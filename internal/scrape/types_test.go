package scrape_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

func TestPartitionsOrder(t *testing.T) {
	t.Parallel()
	parts := scrape.Partitions()
	require.Len(t, parts, 27)
	assert.Equal(t, scrape.PartitionID("a"), parts[0])
	assert.Equal(t, scrape.PartitionID("z"), parts[25])
	assert.Equal(t, scrape.PartitionMisc, parts[26])
}

func TestCountJSON(t *testing.T) {
	t.Parallel()

	t.Run("KnownValue", func(t *testing.T) {
		data, err := json.Marshal(scrape.KnownCount(1200))
		require.NoError(t, err)
		assert.Equal(t, "1200", string(data))
	})

	t.Run("KnownZero", func(t *testing.T) {
		data, err := json.Marshal(scrape.KnownCount(0))
		require.NoError(t, err)
		assert.Equal(t, "0", string(data))
	})

	t.Run("Unknown", func(t *testing.T) {
		data, err := json.Marshal(scrape.Count{})
		require.NoError(t, err)
		assert.Equal(t, `"not-found"`, string(data))
	})

	t.Run("RoundTrip", func(t *testing.T) {
		var c scrape.Count
		require.NoError(t, json.Unmarshal([]byte("42"), &c))
		assert.True(t, c.Known)
		assert.Equal(t, 42, c.Value)

		require.NoError(t, json.Unmarshal([]byte(`"not-found"`), &c))
		assert.False(t, c.Known)
	})
}

func TestProfileRecordAlwaysSixteenKeys(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(scrape.NewProfileRecord())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 16)
	for _, name := range scrape.FieldNames() {
		val, ok := decoded[name]
		require.True(t, ok, "missing key %s", name)
		assert.Equal(t, scrape.Sentinel, val)
	}
}

func TestProfileRecordValuesAlignWithFieldNames(t *testing.T) {
	t.Parallel()

	record := scrape.NewProfileRecord()
	record.CompanyName = "Acme"
	record.LinkedinFollowersCount = scrape.KnownCount(500)

	names := scrape.FieldNames()
	values := record.Values()
	require.Equal(t, len(names), len(values))
	assert.Equal(t, "Acme", values[0])
	assert.Equal(t, "500", values[1])
	assert.Equal(t, scrape.Sentinel, values[2])
}
