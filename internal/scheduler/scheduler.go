// Package scheduler runs ingestion batches on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
)

// Ingester runs one ingestion batch; implemented by ingest.Orchestrator.
type Ingester interface {
	Ingest(ctx context.Context, urls []string, pageLimitHint int) ingest.BatchSummary
}

// Config controls the periodic batch cadence.
type Config struct {
	InitialDelay time.Duration
	Interval     time.Duration
	URLs         []string
	PageLimit    int
}

// Scheduler triggers an ingestion batch after an initial delay and then
// on a fixed interval until the context is canceled.
type Scheduler struct {
	ingester Ingester
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Scheduler.
func New(ingester Ingester, cfg Config, logger *zap.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{ingester: ingester, cfg: cfg, logger: logger}
}

// Run blocks until ctx is canceled. A batch that overruns the interval
// delays the next one; batches never overlap.
func (s *Scheduler) Run(ctx context.Context) {
	if len(s.cfg.URLs) == 0 {
		s.logger.Warn("no scheduled urls configured, scheduler idle")
		return
	}
	s.logger.Info("scheduler started",
		zap.Duration("initial_delay", s.cfg.InitialDelay),
		zap.Duration("interval", s.cfg.Interval),
		zap.Int("urls", len(s.cfg.URLs)),
	)

	if s.cfg.InitialDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.InitialDelay):
		}
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	summary := s.ingester.Ingest(ctx, s.cfg.URLs, s.cfg.PageLimit)
	s.logger.Info("scheduled batch finished",
		zap.Int("records_found", summary.RecordsFound),
		zap.Int("records_persisted", summary.RecordsPersisted),
		zap.Int("failures", summary.Failures),
	)
}
