// Package metrics exposes Prometheus collectors for the ingestion service
// and the Observer implementation backed by them.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

var (
	parsingTotal           *prometheus.CounterVec
	vacanciesSavedTotal    prometheus.Counter
	vacanciesInDB          prometheus.Gauge
	parsingDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		parsingTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vacancy_parsing_total",
				Help: "Total number of per-URL parsing attempts, labeled by source and status.",
			},
			[]string{"source", "status"},
		)

		vacanciesSavedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "vacancy_saved_total",
				Help: "Total number of vacancies persisted.",
			},
		)

		vacanciesInDB = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vacancy_database_total",
				Help: "Total number of vacancies currently in the database.",
			},
		)

		parsingDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vacancy_parsing_duration_seconds",
				Help:    "Histogram of fetch+extract latencies per source.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Observer implements ingest.Observer on the Prometheus collectors.
type Observer struct{}

// NewObserver initializes the collectors and returns an Observer.
func NewObserver() *Observer {
	Init()
	return &Observer{}
}

// ParsingSucceeded counts a successful per-URL parse.
func (Observer) ParsingSucceeded(source ingest.Source) {
	parsingTotal.WithLabelValues(string(source), "success").Inc()
}

// ParsingFailed counts a failed per-URL parse.
func (Observer) ParsingFailed(source ingest.Source) {
	parsingTotal.WithLabelValues(string(source), "error").Inc()
}

// VacanciesPersisted counts newly persisted records.
func (Observer) VacanciesPersisted(count int) {
	vacanciesSavedTotal.Add(float64(count))
}

// DatabaseTotal records the store's current record count.
func (Observer) DatabaseTotal(count int64) {
	vacanciesInDB.Set(float64(count))
}

// ParseDuration records one fetch+extract duration for a source.
func (Observer) ParseDuration(source ingest.Source, d time.Duration) {
	parsingDurationSeconds.WithLabelValues(string(source)).Observe(d.Seconds())
}
