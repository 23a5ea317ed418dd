// Package postgres_test contains unit tests for the Postgres entity map
// store using pgxmock.
package postgres_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap"
	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap/postgres"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

func TestSave(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := postgres.NewWithPool(mock, "entities")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM entities`)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO entities (name, url) VALUES ($1, $2)`)).
		WithArgs("Acme", "https://example.com/acme").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO entities (name, url) VALUES ($1, $2)`)).
		WithArgs("Beta", "https://example.com/beta").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	m := entitymap.FromEntries([]scrape.EntityRef{
		{Name: "Acme", ProfileURL: "https://example.com/acme"},
		{Name: "Beta", ProfileURL: "https://example.com/beta"},
	})
	require.NoError(t, store.Save(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := postgres.NewWithPool(mock, "entities")
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"name", "url"}).
		AddRow("Acme", "https://example.com/acme-1").
		AddRow("Acme", "https://example.com/acme-2")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name, url FROM entities ORDER BY pos`)).
		WillReturnRows(rows)

	m, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())

	url, ok := m.Lookup("Acme")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/acme-2", url)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadQueryFailureIsSetupError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := postgres.NewWithPool(mock, "entities")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name, url FROM entities ORDER BY pos`)).
		WillReturnError(assert.AnError)

	_, err = store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, scrape.IsSetupError(err))
}

func TestNewWithPoolValidatesTableName(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = postgres.NewWithPool(mock, "entities; DROP TABLE users")
	assert.Error(t, err)
}
