// Package postgres implements the vacancy store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VacancyStore persists vacancies in the vacancies table. The unique
// index on source_url is the dedup backstop: concurrent inserts of the
// same URL resolve to a single row regardless of seen-set state.
type VacancyStore struct {
	db DB
}

// Config controls the connection pool.
type Config struct {
	DSN      string
	MaxConns int32
}

// New connects a pool and pings it to fail fast on bad configuration.
func New(ctx context.Context, cfg Config) (*VacancyStore, *pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &VacancyStore{db: pool}, pool, nil
}

// NewWithDB wraps an existing connection-like handle (tests).
func NewWithDB(db DB) *VacancyStore {
	return &VacancyStore{db: db}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS vacancies (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	salary TEXT,
	requirements TEXT,
	city TEXT NOT NULL,
	published_at TIMESTAMPTZ NOT NULL,
	source_url TEXT NOT NULL UNIQUE,
	source TEXT NOT NULL,
	ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_vacancies_source ON vacancies (source);
CREATE INDEX IF NOT EXISTS idx_vacancies_city ON vacancies (city);
CREATE INDEX IF NOT EXISTS idx_vacancies_company ON vacancies (company);
CREATE INDEX IF NOT EXISTS idx_vacancies_published_at ON vacancies (published_at);
`

// CreateSchema creates the vacancies table and its indexes.
func (s *VacancyStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const insertSQL = `
INSERT INTO vacancies (title, company, salary, requirements, city, published_at, source_url, source, ingested_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (source_url) DO NOTHING
RETURNING id
`

// SaveAll inserts the candidates one by one, skipping URLs that already
// exist, and returns the rows actually inserted.
func (s *VacancyStore) SaveAll(ctx context.Context, vacancies []ingest.Vacancy) ([]ingest.Vacancy, error) {
	now := time.Now().UTC()
	persisted := make([]ingest.Vacancy, 0, len(vacancies))
	for _, v := range vacancies {
		row := s.db.QueryRow(ctx, insertSQL,
			v.Title,
			v.Company,
			v.Salary,
			v.Requirements,
			v.City,
			v.PublishedAt,
			v.SourceURL,
			string(v.Source),
			now,
		)
		var id int64
		if err := row.Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Conflict on source_url; another writer got there first.
				continue
			}
			return persisted, fmt.Errorf("insert vacancy %s: %w", v.SourceURL, err)
		}
		v.ID = id
		v.IngestedAt = now
		persisted = append(persisted, v)
	}
	return persisted, nil
}

// CountAll returns the total number of persisted vacancies.
func (s *VacancyStore) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM vacancies").Scan(&count); err != nil {
		return 0, fmt.Errorf("count vacancies: %w", err)
	}
	return count, nil
}

// SourceURLs returns every persisted source URL, used to hydrate the
// seen set at startup.
func (s *VacancyStore) SourceURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, "SELECT source_url FROM vacancies")
	if err != nil {
		return nil, fmt.Errorf("query source urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan source url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source urls: %w", err)
	}
	return urls, nil
}

const selectColumns = "id, title, company, COALESCE(salary, ''), COALESCE(requirements, ''), city, published_at, source_url, source, ingested_at"

// sortColumns whitelists ORDER BY targets; anything else sorts by id.
var sortColumns = map[string]string{
	"date":    "published_at",
	"title":   "title",
	"company": "company",
	"city":    "city",
}

// List returns vacancies matching the filter, sorted and paginated in the
// database.
func (s *VacancyStore) List(ctx context.Context, filter ingest.ListFilter) ([]ingest.Vacancy, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Source != "" {
		where = append(where, "source = "+arg(string(filter.Source)))
	}
	if filter.City != "" {
		where = append(where, "city = "+arg(filter.City))
	}
	if filter.Company != "" {
		where = append(where, "company LIKE "+arg("%"+filter.Company+"%"))
	}

	query := "SELECT " + selectColumns + " FROM vacancies"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "id"
	}
	query += " ORDER BY " + column
	if filter.Desc {
		query += " DESC"
	}
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vacancies: %w", err)
	}
	defer rows.Close()

	var out []ingest.Vacancy
	for rows.Next() {
		var (
			v      ingest.Vacancy
			source string
		)
		if err := rows.Scan(
			&v.ID,
			&v.Title,
			&v.Company,
			&v.Salary,
			&v.Requirements,
			&v.City,
			&v.PublishedAt,
			&v.SourceURL,
			&source,
			&v.IngestedAt,
		); err != nil {
			return nil, fmt.Errorf("scan vacancy: %w", err)
		}
		v.Source = ingest.Source(source)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vacancies: %w", err)
	}
	return out, nil
}
