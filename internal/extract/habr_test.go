package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

func TestHabr_Extract(t *testing.T) {
	t.Parallel()

	page := `
	<div class="job-card">
		<a class="job-card__title" href="/vacancies/1000123">Go-разработчик (middle)</a>
		<div class="job-card__company-name">Хабр</div>
		<div class="job-card__salary">от 200 000 ₽</div>
		<div class="job-card__meta-item">Москва • Можно удалённо</div>
	</div>
	<div class="job-card">
		<a class="job-card__title" href="https://career.habr.com/vacancies/1000124">DevOps инженер</a>
	</div>`
	e := NewHabr(stubClock{now: testNow}, nil)
	got := e.Extract(mustDoc(t, page))

	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, "Go-разработчик (middle)", first.Title)
	require.Equal(t, "https://career.habr.com/vacancies/1000123", first.SourceURL)
	require.Equal(t, ingest.SourceHabr, first.Source)
	require.Equal(t, "Хабр", first.Company)
	require.Equal(t, "от 200 000 ₽", first.Salary)
	require.Equal(t, "Москва", first.City)
	require.Equal(t, testNow, first.PublishedAt)

	second := got[1]
	require.Equal(t, "DevOps инженер", second.Title)
	require.Equal(t, "https://career.habr.com/vacancies/1000124", second.SourceURL)
	require.Equal(t, ingest.UnspecifiedCompany, second.Company)
	require.Equal(t, ingest.UnspecifiedCity, second.City)
}

func TestHabr_Extract_FallbackCard(t *testing.T) {
	t.Parallel()

	page := `
	<div class="vacancy-card">
		<h3><a href="/vacancies/42">Team Lead Go</a></h3>
	</div>`
	e := NewHabr(stubClock{now: testNow}, nil)
	got := e.Extract(mustDoc(t, page))

	require.Len(t, got, 1)
	require.Equal(t, "Team Lead Go", got[0].Title)
	require.Equal(t, "https://career.habr.com/vacancies/42", got[0].SourceURL)
}
