// Package api exposes the HTTP interface for the ingestion service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vacancyhub/vacancy-ingest/internal/config"
	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
	"github.com/vacancyhub/vacancy-ingest/internal/metrics"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Ingester runs one ingestion batch; implemented by ingest.Orchestrator.
type Ingester interface {
	Ingest(ctx context.Context, urls []string, pageLimitHint int) ingest.BatchSummary
}

// Server wires HTTP handlers to the orchestrator and the vacancy store.
type Server struct {
	router   chi.Router
	ingester Ingester
	reader   ingest.VacancyReader
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	ingester Ingester,
	reader ingest.VacancyReader,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ingester: ingester,
		reader:   reader,
		cfg:      cfg,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/vacancies", func(r chi.Router) {
		r.Post("/parse", s.parse)
		r.Get("/", s.listVacancies)
		r.Get("/source/{source}", s.listBySource)
		r.Get("/city/{city}", s.listByCity)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, s.logger)
}

type parseRequest struct {
	URLs     []string `json:"urls"`
	MaxPages int      `json:"max_pages"`
}

// parse runs an ingestion batch synchronously and returns its summary.
// Per-URL failures are reported inside the summary, not as HTTP errors.
func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", s.logger)
		return
	}
	urls := make([]string, 0, len(req.URLs))
	for _, u := range req.URLs {
		u = strings.TrimSpace(u)
		if u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		writeError(w, http.StatusBadRequest, "at least one URL required", s.logger)
		return
	}
	summary := s.ingester.Ingest(r.Context(), urls, req.MaxPages)
	writeJSON(w, http.StatusOK, summary, s.logger)
}

func (s *Server) listVacancies(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	s.list(w, r, filter)
}

func (s *Server) listBySource(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	source := ingest.Source(chi.URLParam(r, "source"))
	switch source {
	case ingest.SourceHH, ingest.SourceSuperJob, ingest.SourceHabr:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown source: %s", source), s.logger)
		return
	}
	filter.Source = source
	s.list(w, r, filter)
}

func (s *Server) listByCity(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	filter.City = chi.URLParam(r, "city")
	s.list(w, r, filter)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, filter ingest.ListFilter) {
	vacancies, err := s.reader.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list vacancies failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list vacancies", s.logger)
		return
	}
	if vacancies == nil {
		vacancies = []ingest.Vacancy{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(vacancies),
		"vacancies": vacancies,
	}, s.logger)
}

// filterFromQuery maps sortBy/order/source/city/company/page/size query
// parameters onto a ListFilter.
func filterFromQuery(r *http.Request) (ingest.ListFilter, error) {
	q := r.URL.Query()
	filter := ingest.ListFilter{
		City:    q.Get("city"),
		Company: q.Get("company"),
	}

	if src := q.Get("source"); src != "" {
		filter.Source = ingest.Source(src)
	}

	switch sortBy := q.Get("sortBy"); sortBy {
	case "", "date", "title", "company", "city":
		filter.SortBy = sortBy
	default:
		return ingest.ListFilter{}, fmt.Errorf("unknown sortBy: %s", sortBy)
	}
	switch order := q.Get("order"); order {
	case "", "asc":
	case "desc":
		filter.Desc = true
	default:
		return ingest.ListFilter{}, fmt.Errorf("unknown order: %s", order)
	}

	page := 0
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return ingest.ListFilter{}, fmt.Errorf("invalid page: %s", raw)
		}
		page = n
	}
	size := defaultPageSize
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return ingest.ListFilter{}, fmt.Errorf("invalid size: %s", raw)
		}
		size = n
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	filter.Offset = page * size
	filter.Limit = size
	return filter, nil
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("panic", rec))
					writeError(w, http.StatusInternalServerError, "internal server error", logger)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized", zap.NewNop())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, logger *zap.Logger) {
	writeJSON(w, status, map[string]string{"error": msg}, logger)
}
