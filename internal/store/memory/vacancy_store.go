// Package memory provides an in-memory vacancy store for development and
// tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

// VacancyStore keeps vacancies in memory keyed by source URL. SaveAll is
// atomic under the store mutex, so two concurrent saves of the same URL
// persist exactly one row.
type VacancyStore struct {
	mu     sync.RWMutex
	byURL  map[string]ingest.Vacancy
	order  []string
	nextID int64
}

// NewVacancyStore constructs an empty store.
func NewVacancyStore() *VacancyStore {
	return &VacancyStore{byURL: make(map[string]ingest.Vacancy)}
}

// SaveAll persists candidates whose source URL is not present yet and
// returns them; existing URLs are silently suppressed.
func (s *VacancyStore) SaveAll(_ context.Context, vacancies []ingest.Vacancy) ([]ingest.Vacancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	persisted := make([]ingest.Vacancy, 0, len(vacancies))
	for _, v := range vacancies {
		if _, exists := s.byURL[v.SourceURL]; exists {
			continue
		}
		s.nextID++
		v.ID = s.nextID
		v.IngestedAt = now
		s.byURL[v.SourceURL] = v
		s.order = append(s.order, v.SourceURL)
		persisted = append(persisted, v)
	}
	return persisted, nil
}

// CountAll returns the number of persisted vacancies.
func (s *VacancyStore) CountAll(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byURL)), nil
}

// SourceURLs returns every persisted source URL.
func (s *VacancyStore) SourceURLs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

// List returns vacancies matching the filter in the requested order.
func (s *VacancyStore) List(_ context.Context, filter ingest.ListFilter) ([]ingest.Vacancy, error) {
	s.mu.RLock()
	matched := make([]ingest.Vacancy, 0, len(s.order))
	for _, url := range s.order {
		v := s.byURL[url]
		if filter.Source != "" && v.Source != filter.Source {
			continue
		}
		if filter.City != "" && v.City != filter.City {
			continue
		}
		if filter.Company != "" && !strings.Contains(v.Company, filter.Company) {
			continue
		}
		matched = append(matched, v)
	}
	s.mu.RUnlock()

	sortVacancies(matched, filter.SortBy, filter.Desc)

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func sortVacancies(vacancies []ingest.Vacancy, sortBy string, desc bool) {
	var less func(a, b ingest.Vacancy) bool
	switch sortBy {
	case "date":
		less = func(a, b ingest.Vacancy) bool { return a.PublishedAt.Before(b.PublishedAt) }
	case "title":
		less = func(a, b ingest.Vacancy) bool { return a.Title < b.Title }
	case "company":
		less = func(a, b ingest.Vacancy) bool { return a.Company < b.Company }
	case "city":
		less = func(a, b ingest.Vacancy) bool { return a.City < b.City }
	default:
		less = func(a, b ingest.Vacancy) bool { return a.ID < b.ID }
	}
	sort.SliceStable(vacancies, func(i, j int) bool {
		if desc {
			return less(vacancies[j], vacancies[i])
		}
		return less(vacancies[i], vacancies[j])
	})
}
