package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

func TestSuperJob_Extract_StableClasses(t *testing.T) {
	t.Parallel()

	page := `
	<div class="f-test-vacancy-item">
		<a href="/vakansii/go-razrabotchik-123.html">Go разработчик</a>
		<span class="company-name">СуперКомпания</span>
		<span class="salary-value">от 180 000 руб.</span>
		<span class="city-link">Санкт-Петербург</span>
	</div>`
	e := NewSuperJob(stubClock{now: testNow}, nil)
	got := e.Extract(mustDoc(t, page))

	require.Len(t, got, 1)
	v := got[0]
	require.Equal(t, "Go разработчик", v.Title)
	require.Equal(t, "https://www.superjob.ru/vakansii/go-razrabotchik-123.html", v.SourceURL)
	require.Equal(t, ingest.SourceSuperJob, v.Source)
	require.Equal(t, "СуперКомпания", v.Company)
	require.Equal(t, "от 180 000 руб.", v.Salary)
	require.Equal(t, "Санкт-Петербург", v.City)
	// No date markup on this source; extraction time stands in.
	require.Equal(t, testNow, v.PublishedAt)
	require.Empty(t, v.Requirements)
}

func TestSuperJob_Extract_HashedClassScanFallbacks(t *testing.T) {
	t.Parallel()

	// Hashed class names changed again: no salary or city classes survive,
	// so the marker scans have to locate both fields.
	page := `
	<div class="f-test-vacancy-item">
		<a href="/vakansii/inzhener-456.html">Инженер по данным</a>
		<span class="_9xFmr">Акме</span>
		<span class="_2Wp0q">45 000—70 000 руб./месяц</span>
		<span class="_8Hq1z">Казань, Вахитовский район</span>
	</div>`
	e := NewSuperJob(stubClock{now: testNow}, nil)
	got := e.Extract(mustDoc(t, page))

	require.Len(t, got, 1)
	v := got[0]
	require.Equal(t, "Инженер по данным", v.Title)
	require.Equal(t, "45 000—70 000 руб./месяц", v.Salary)
	require.Equal(t, "Казань", v.City)
}

func TestSuperJob_Extract_BareAnchorTitleFallback(t *testing.T) {
	t.Parallel()

	page := `
	<article>
		<a href="https://www.superjob.ru/somewhere/789">Аналитик</a>
	</article>`
	e := NewSuperJob(stubClock{now: testNow}, nil)
	got := e.Extract(mustDoc(t, page))

	require.Len(t, got, 1)
	require.Equal(t, "Аналитик", got[0].Title)
	require.Equal(t, "https://www.superjob.ru/somewhere/789", got[0].SourceURL)
	require.Equal(t, ingest.UnspecifiedCompany, got[0].Company)
}
