package sink_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
	"github.com/leadforge/linkedin-leads-crawler/internal/sink"
)

func sampleRecord(name string) scrape.ProfileRecord {
	r := scrape.NewProfileRecord()
	r.CompanyName = name
	r.LinkedinFollowersCount = scrape.KnownCount(100)
	return r
}

func TestOpenRejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	_, err := sink.Open(filepath.Join(t.TempDir(), "out.xml"))
	require.Error(t, err)
	assert.True(t, scrape.IsSetupError(err))
}

func TestJSONArraySink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	s, err := sink.Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), sampleRecord("Acme")))
	require.NoError(t, s.Write(context.Background(), sampleRecord("Beta")))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Acme", records[0]["company_name"])
	assert.Len(t, records[0], 16)
	assert.Equal(t, scrape.Sentinel, records[0]["website"])
	assert.Equal(t, float64(100), records[0]["linkedin_followers_count"])
}

func TestJSONArraySinkEmptyRunWritesEmptyArray(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	s, err := sink.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Empty(t, records)
}

func TestJSONLinesSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.jsonl")
	s, err := sink.Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), sampleRecord("Acme")))
	require.NoError(t, s.Write(context.Background(), sampleRecord("Beta")))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		assert.Len(t, record, 16)
	}
}

func TestCSVSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	s, err := sink.Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), sampleRecord("Acme, Inc.")))
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, scrape.FieldNames(), rows[0])
	assert.Equal(t, "Acme, Inc.", rows[1][0])
	assert.Equal(t, "100", rows[1][1])
	assert.Equal(t, scrape.Sentinel, rows[1][2])
}

func TestTeeWritesToAllSinks(t *testing.T) {
	t.Parallel()

	a := &recordingSink{}
	b := &recordingSink{}
	tee := sink.NewTee(a, b)

	require.NoError(t, tee.Write(context.Background(), sampleRecord("Acme")))
	require.NoError(t, tee.Close())

	assert.Len(t, a.records, 1)
	assert.Len(t, b.records, 1)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

type recordingSink struct {
	records []scrape.ProfileRecord
	closed  bool
}

func (s *recordingSink) Write(_ context.Context, r scrape.ProfileRecord) error {
	s.records = append(s.records, r)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}
