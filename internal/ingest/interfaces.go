package ingest

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// VacancyStore persists extracted vacancies. SaveAll returns the subset
// that was actually persisted: records whose source URL already exists are
// silently suppressed, so concurrent saves of the same URL yield exactly
// one row.
type VacancyStore interface {
	SaveAll(ctx context.Context, vacancies []Vacancy) ([]Vacancy, error)
	CountAll(ctx context.Context) (int64, error)
	SourceURLs(ctx context.Context) ([]string, error)
}

// ListFilter narrows and orders a vacancy listing query.
type ListFilter struct {
	Source  Source
	City    string
	Company string
	SortBy  string // date, title, company, city; empty for insertion order
	Desc    bool
	Offset  int
	Limit   int
}

// VacancyReader serves the read path of the API.
type VacancyReader interface {
	List(ctx context.Context, filter ListFilter) ([]Vacancy, error)
}

// Fetcher fetches one listing page and returns the parsed document.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Extractor maps a parsed listing page to zero or more vacancy candidates.
type Extractor interface {
	Source() Source
	Extract(doc *goquery.Document) []Vacancy
}

// Publisher pushes newly persisted vacancies to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// ArchiveStore writes raw page bodies and returns a URI.
type ArchiveStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Hasher computes content digests for archive object names.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
