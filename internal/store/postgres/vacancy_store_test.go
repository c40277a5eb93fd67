package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

func newMockStore(t *testing.T) (*VacancyStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithDB(mock), mock
}

func TestVacancyStore_CreateSchema(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS vacancies").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.CreateSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVacancyStore_SaveAll_SkipsConflicts(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	published := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	vacancies := []ingest.Vacancy{
		{Title: "Go Developer", Company: "Acme", City: "Москва", PublishedAt: published, SourceURL: "https://hh.ru/vacancy/1", Source: ingest.SourceHH},
		{Title: "Backend Engineer", Company: "Globex", City: "Казань", PublishedAt: published, SourceURL: "https://hh.ru/vacancy/2", Source: ingest.SourceHH},
	}

	mock.ExpectQuery("INSERT INTO vacancies").
		WithArgs("Go Developer", "Acme", "", "", "Москва", published, "https://hh.ru/vacancy/1", "hh", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	// The second URL already exists; ON CONFLICT DO NOTHING returns no row.
	mock.ExpectQuery("INSERT INTO vacancies").
		WithArgs("Backend Engineer", "Globex", "", "", "Казань", published, "https://hh.ru/vacancy/2", "hh", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	persisted, err := store.SaveAll(context.Background(), vacancies)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	require.Equal(t, int64(11), persisted[0].ID)
	require.Equal(t, "https://hh.ru/vacancy/1", persisted[0].SourceURL)
	require.False(t, persisted[0].IngestedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVacancyStore_SaveAll_PropagatesErrors(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery("INSERT INTO vacancies").
		WillReturnError(errors.New("connection refused"))

	_, err := store.SaveAll(context.Background(), []ingest.Vacancy{
		{Title: "Go Developer", SourceURL: "https://hh.ru/vacancy/1", Source: ingest.SourceHH},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "https://hh.ru/vacancy/1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVacancyStore_CountAll(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := store.CountAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVacancyStore_SourceURLs(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT source_url FROM vacancies").
		WillReturnRows(pgxmock.NewRows([]string{"source_url"}).
			AddRow("https://hh.ru/vacancy/1").
			AddRow("https://career.habr.com/vacancies/2"))

	urls, err := store.SourceURLs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://hh.ru/vacancy/1",
		"https://career.habr.com/vacancies/2",
	}, urls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func listRow(id int64, title string) []any {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return []any{id, title, "Acme", "", "", "Москва", now, "https://hh.ru/vacancy/1", "hh", now}
}

func TestVacancyStore_List_BuildsFilteredQuery(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	columns := []string{"id", "title", "company", "salary", "requirements", "city", "published_at", "source_url", "source", "ingested_at"}
	mock.ExpectQuery(`FROM vacancies WHERE source = \$1 AND city = \$2 ORDER BY published_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("hh", "Москва", 10, 20).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(listRow(1, "Go Developer")...))

	got, err := store.List(context.Background(), ingest.ListFilter{
		Source: ingest.SourceHH,
		City:   "Москва",
		SortBy: "date",
		Desc:   true,
		Offset: 20,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Go Developer", got[0].Title)
	require.Equal(t, ingest.SourceHH, got[0].Source)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVacancyStore_List_UnknownSortFallsBackToID(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	columns := []string{"id", "title", "company", "salary", "requirements", "city", "published_at", "source_url", "source", "ingested_at"}
	mock.ExpectQuery(`FROM vacancies ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(listRow(1, "Go Developer")...).
			AddRow(listRow(2, "Backend Engineer")...))

	got, err := store.List(context.Background(), ingest.ListFilter{SortBy: "salary; DROP TABLE vacancies"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
