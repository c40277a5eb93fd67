package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSource_KnownPatterns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want Source
	}{
		{"https://hh.ru/search/vacancy?text=go", SourceHH},
		{"https://spb.hh.ru/vacancies", SourceHH},
		{"https://api.hh.example/v1", SourceHH},
		{"https://www.superjob.ru/vacancy/search/", SourceSuperJob},
		{"https://superjob.example/feed", SourceSuperJob},
		{"https://habr.com/ru/articles/", SourceHabr},
		{"https://career.habr.com/vacancies", SourceHabr},
		{"https://example.com/jobs", SourceUnknown},
		{"", SourceUnknown},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ResolveSource(tc.url), "url %q", tc.url)
	}
}

func TestResolveSource_OrderWins(t *testing.T) {
	t.Parallel()

	// A URL matching several patterns resolves to the first entry.
	require.Equal(t, SourceHH, ResolveSource("https://hh.ru/?from=superjob.ru"))
	require.Equal(t, SourceSuperJob, ResolveSource("https://superjob.ru/?from=habr.com"))
}

func TestResolveSource_CaseSensitive(t *testing.T) {
	t.Parallel()

	require.Equal(t, SourceUnknown, ResolveSource("https://HH.RU/search"))
}

func TestResolveSource_Deterministic(t *testing.T) {
	t.Parallel()

	url := "https://career.habr.com/vacancies?q=go"
	first := ResolveSource(url)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, ResolveSource(url))
	}
}
