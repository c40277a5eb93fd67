package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

func seedVacancies() []ingest.Vacancy {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []ingest.Vacancy{
		{Title: "Go Developer", Company: "Acme", City: "Москва", Source: ingest.SourceHH, SourceURL: "https://hh.ru/vacancy/1", PublishedAt: base.AddDate(0, 0, 2)},
		{Title: "Backend Engineer", Company: "Globex", City: "Казань", Source: ingest.SourceSuperJob, SourceURL: "https://www.superjob.ru/vakansii/2", PublishedAt: base},
		{Title: "DevOps", Company: "Acme Cloud", City: "Москва", Source: ingest.SourceHabr, SourceURL: "https://career.habr.com/vacancies/3", PublishedAt: base.AddDate(0, 0, 1)},
	}
}

func TestVacancyStore_SaveAll_DeduplicatesByURL(t *testing.T) {
	t.Parallel()

	store := NewVacancyStore()
	ctx := context.Background()

	persisted, err := store.SaveAll(ctx, seedVacancies())
	require.NoError(t, err)
	require.Len(t, persisted, 3)
	require.Equal(t, int64(1), persisted[0].ID)
	require.False(t, persisted[0].IngestedAt.IsZero())

	again, err := store.SaveAll(ctx, seedVacancies())
	require.NoError(t, err)
	require.Empty(t, again)

	count, err := store.CountAll(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestVacancyStore_SaveAll_ConcurrentSameURL(t *testing.T) {
	t.Parallel()

	store := NewVacancyStore()
	v := ingest.Vacancy{Title: "Go Developer", SourceURL: "https://hh.ru/vacancy/9", Source: ingest.SourceHH}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			persisted, err := store.SaveAll(context.Background(), []ingest.Vacancy{v})
			require.NoError(t, err)
			mu.Lock()
			total += len(persisted)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, total)
	count, err := store.CountAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestVacancyStore_SourceURLs(t *testing.T) {
	t.Parallel()

	store := NewVacancyStore()
	_, err := store.SaveAll(context.Background(), seedVacancies())
	require.NoError(t, err)

	urls, err := store.SourceURLs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://hh.ru/vacancy/1",
		"https://www.superjob.ru/vakansii/2",
		"https://career.habr.com/vacancies/3",
	}, urls)
}

func TestVacancyStore_List_Filters(t *testing.T) {
	t.Parallel()

	store := NewVacancyStore()
	_, err := store.SaveAll(context.Background(), seedVacancies())
	require.NoError(t, err)

	bySource, err := store.List(context.Background(), ingest.ListFilter{Source: ingest.SourceHH})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	require.Equal(t, "Go Developer", bySource[0].Title)

	byCity, err := store.List(context.Background(), ingest.ListFilter{City: "Москва"})
	require.NoError(t, err)
	require.Len(t, byCity, 2)

	byCompany, err := store.List(context.Background(), ingest.ListFilter{Company: "Acme"})
	require.NoError(t, err)
	require.Len(t, byCompany, 2)
}

func TestVacancyStore_List_SortAndPaginate(t *testing.T) {
	t.Parallel()

	store := NewVacancyStore()
	_, err := store.SaveAll(context.Background(), seedVacancies())
	require.NoError(t, err)

	newestFirst, err := store.List(context.Background(), ingest.ListFilter{SortBy: "date", Desc: true})
	require.NoError(t, err)
	require.Equal(t, "Go Developer", newestFirst[0].Title)
	require.Equal(t, "Backend Engineer", newestFirst[2].Title)

	byTitle, err := store.List(context.Background(), ingest.ListFilter{SortBy: "title"})
	require.NoError(t, err)
	require.Equal(t, "Backend Engineer", byTitle[0].Title)

	page, err := store.List(context.Background(), ingest.ListFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "Backend Engineer", page[0].Title)

	past, err := store.List(context.Background(), ingest.ListFilter{Offset: 10})
	require.NoError(t, err)
	require.Empty(t, past)
}

func TestVacancyStore_List_InsertionOrderDefault(t *testing.T) {
	t.Parallel()

	store := NewVacancyStore()
	for i := 0; i < 5; i++ {
		_, err := store.SaveAll(context.Background(), []ingest.Vacancy{{
			Title:     fmt.Sprintf("Vacancy %d", i),
			SourceURL: fmt.Sprintf("https://hh.ru/vacancy/%d", i),
		}})
		require.NoError(t, err)
	}

	all, err := store.List(context.Background(), ingest.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, v := range all {
		require.Equal(t, int64(i+1), v.ID)
	}
}
