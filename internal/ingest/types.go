// Package ingest defines the core types and interfaces for the vacancy
// ingestion pipeline: source routing, the seen-URL dedup set, and the
// batch orchestrator.
package ingest

import (
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Source identifies which listing site a vacancy came from.
type Source string

// The closed set of source identifiers.
const (
	SourceHH       Source = "hh"
	SourceSuperJob Source = "superjob"
	SourceHabr     Source = "habr"
	SourceUnknown  Source = "unknown"
)

// Origin returns the site base URL used to absolutize relative hrefs.
func (s Source) Origin() string {
	switch s {
	case SourceHH:
		return "https://hh.ru"
	case SourceSuperJob:
		return "https://www.superjob.ru"
	case SourceHabr:
		return "https://career.habr.com"
	default:
		return ""
	}
}

// Referer returns the referrer header value sent when fetching the source.
func (s Source) Referer() string {
	return s.Origin()
}

// Sentinel values substituted when a listing omits a display field.
const (
	UnspecifiedCity    = "Не указан"
	UnspecifiedCompany = "Не указана"
)

// Vacancy is the canonical extracted job record. SourceURL is the natural
// key: the same URL is never persisted twice.
type Vacancy struct {
	ID           int64     `json:"id,omitempty"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Salary       string    `json:"salary,omitempty"`
	Requirements string    `json:"requirements,omitempty"`
	City         string    `json:"city"`
	PublishedAt  time.Time `json:"published_at"`
	SourceURL    string    `json:"source_url"`
	Source       Source    `json:"source"`
	IngestedAt   time.Time `json:"ingested_at,omitempty"`
}

// Valid reports whether the candidate survives validity filtering.
// Title presence is necessary and sufficient.
func (v Vacancy) Valid() bool {
	return v.Title != ""
}

// FailureKind classifies why a per-URL task failed. All kinds are
// recoverable at the task boundary; none abort the batch.
type FailureKind string

// Failure taxonomy for per-URL outcomes.
const (
	FailureNone    FailureKind = ""
	FailureRouting FailureKind = "routing_unknown"
	FailureFetch   FailureKind = "fetch"
	FailureExtract FailureKind = "extract"
	FailurePersist FailureKind = "persist"
	FailureTimeout FailureKind = "timeout"
)

// Outcome is the per-URL result of one ingestion task.
type Outcome struct {
	URL              string        `json:"url"`
	Source           Source        `json:"source"`
	RecordsFound     int           `json:"records_found"`
	RecordsPersisted int           `json:"records_persisted"`
	Failure          FailureKind   `json:"failure,omitempty"`
	Error            string        `json:"error,omitempty"`
	Duration         time.Duration `json:"-"`
}

// Failed reports whether the task ended with a captured failure.
func (o Outcome) Failed() bool {
	return o.Failure != FailureNone && o.Failure != FailureRouting
}

// BatchSummary aggregates the outcomes of one Ingest invocation.
type BatchSummary struct {
	URLs             int       `json:"urls"`
	PageLimit        int       `json:"page_limit"`
	RecordsFound     int       `json:"records_found"`
	RecordsPersisted int       `json:"records_persisted"`
	Failures         int       `json:"failures"`
	StoreTotal       int64     `json:"store_total"`
	Outcomes         []Outcome `json:"outcomes"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

// FetchRequest captures everything needed to fetch one listing page.
type FetchRequest struct {
	URL     string
	Referer string
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Document   *goquery.Document
	Duration   time.Duration
}
