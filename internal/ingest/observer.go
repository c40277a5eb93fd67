package ingest

import "time"

// Observer receives ingestion event signals. Implementations must be safe
// for concurrent use; the orchestrator calls through the interface
// unconditionally, so absent observability is expressed with NopObserver
// rather than nil checks.
type Observer interface {
	ParsingSucceeded(source Source)
	ParsingFailed(source Source)
	VacanciesPersisted(count int)
	DatabaseTotal(count int64)
	ParseDuration(source Source, d time.Duration)
}

// NopObserver discards all signals.
type NopObserver struct{}

func (NopObserver) ParsingSucceeded(Source)             {}
func (NopObserver) ParsingFailed(Source)                {}
func (NopObserver) VacanciesPersisted(int)              {}
func (NopObserver) DatabaseTotal(int64)                 {}
func (NopObserver) ParseDuration(Source, time.Duration) {}
