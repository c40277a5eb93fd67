package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config controls Orchestrator behavior.
type Config struct {
	// Workers bounds the number of URL tasks running in parallel.
	Workers int
	// TaskTimeout is the per-URL deadline. A task that exceeds it is
	// recorded as a timeout failure and the batch proceeds without it.
	TaskTimeout time.Duration
	// PageLimitDefault substitutes a non-positive page limit hint.
	PageLimitDefault int
	// Topic, when set together with a Publisher, receives newly
	// persisted vacancies.
	Topic string
	// ArchivePrefix prefixes raw-page archive object paths.
	ArchivePrefix string
}

// Orchestrator runs ingestion batches: concurrent per-URL fetch+extract,
// dedup against the seen set, and the persist-then-mark-seen commit.
type Orchestrator struct {
	fetcher    Fetcher
	extractors map[Source]Extractor
	store      VacancyStore
	publisher  Publisher
	archive    ArchiveStore
	hasher     Hasher
	seen       *SeenURLs
	observer   Observer
	clock      Clock
	cfg        Config
	logger     *zap.Logger
}

// New constructs an Orchestrator. Publisher, archive and hasher are
// optional; observer and logger fall back to no-op implementations.
func New(
	fetcher Fetcher,
	extractors []Extractor,
	store VacancyStore,
	publisher Publisher,
	archive ArchiveStore,
	hasher Hasher,
	observer Observer,
	clock Clock,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 10
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 30 * time.Second
	}
	if cfg.PageLimitDefault <= 0 {
		cfg.PageLimitDefault = 10
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	byType := make(map[Source]Extractor, len(extractors))
	for _, e := range extractors {
		byType[e.Source()] = e
	}
	return &Orchestrator{
		fetcher:    fetcher,
		extractors: byType,
		store:      store,
		publisher:  publisher,
		archive:    archive,
		hasher:     hasher,
		seen:       NewSeenURLs(),
		observer:   observer,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Seen exposes the dedup set, primarily for tests.
func (o *Orchestrator) Seen() *SeenURLs {
	return o.seen
}

// HydrateSeen loads all previously persisted source URLs into the seen
// set so a restart does not re-attempt persistence of existing records.
func (o *Orchestrator) HydrateSeen(ctx context.Context) error {
	urls, err := o.store.SourceURLs(ctx)
	if err != nil {
		return fmt.Errorf("load persisted urls: %w", err)
	}
	o.seen.AddAll(urls)
	o.logger.Info("seen set hydrated", zap.Int("urls", len(urls)))
	return nil
}

// Ingest runs one batch over the given URLs and blocks until every task
// finished or hit its deadline. Per-URL failures never propagate to
// sibling tasks or to the batch.
func (o *Orchestrator) Ingest(ctx context.Context, urls []string, pageLimitHint int) BatchSummary {
	if pageLimitHint <= 0 {
		pageLimitHint = o.cfg.PageLimitDefault
	}
	summary := BatchSummary{
		URLs:      len(urls),
		PageLimit: pageLimitHint,
		StartedAt: o.clock.Now(),
	}
	o.logger.Info("batch started",
		zap.Int("urls", len(urls)),
		zap.Int("page_limit", pageLimitHint),
	)

	outcomes := make([]Outcome, len(urls))
	sem := make(chan struct{}, o.cfg.Workers)
	done := make(chan int, len(urls))
	for i, url := range urls {
		go func(i int, url string) {
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = o.runTask(ctx, url)
			done <- i
		}(i, url)
	}
	for range urls {
		<-done
	}

	for _, out := range outcomes {
		summary.RecordsFound += out.RecordsFound
		summary.RecordsPersisted += out.RecordsPersisted
		if out.Failed() {
			summary.Failures++
		}
	}
	summary.Outcomes = outcomes

	if summary.RecordsPersisted > 0 {
		o.observer.VacanciesPersisted(summary.RecordsPersisted)
	}
	total, err := o.store.CountAll(ctx)
	if err != nil {
		o.logger.Warn("store count failed", zap.Error(err))
	} else {
		summary.StoreTotal = total
		o.observer.DatabaseTotal(total)
	}
	summary.FinishedAt = o.clock.Now()
	o.logger.Info("batch completed",
		zap.Int("records_found", summary.RecordsFound),
		zap.Int("records_persisted", summary.RecordsPersisted),
		zap.Int("failures", summary.Failures),
		zap.Int64("store_total", summary.StoreTotal),
	)
	return summary
}

// runTask executes one URL task under the per-task deadline. The deadline
// orphans the attempt rather than interrupting it promptly; the underlying
// fetch stops on its own context at best effort.
func (o *Orchestrator) runTask(ctx context.Context, url string) Outcome {
	taskCtx, cancel := context.WithTimeout(ctx, o.cfg.TaskTimeout)
	defer cancel()

	start := time.Now()
	result := make(chan Outcome, 1)
	go func() {
		result <- o.processURL(taskCtx, url)
	}()

	select {
	case out := <-result:
		out.Duration = time.Since(start)
		return out
	case <-taskCtx.Done():
		o.logger.Error("task deadline exceeded", zap.String("url", url), zap.Error(taskCtx.Err()))
		source := ResolveSource(url)
		o.observer.ParsingFailed(source)
		return Outcome{
			URL:      url,
			Source:   source,
			Failure:  FailureTimeout,
			Error:    taskCtx.Err().Error(),
			Duration: time.Since(start),
		}
	}
}

func (o *Orchestrator) processURL(ctx context.Context, url string) Outcome {
	out := Outcome{URL: url}

	out.Source = ResolveSource(url)
	if out.Source == SourceUnknown {
		o.logger.Warn("unknown source, skipping", zap.String("url", url))
		out.Failure = FailureRouting
		return out
	}
	extractor, ok := o.extractors[out.Source]
	if !ok {
		o.logger.Warn("no extractor registered, skipping",
			zap.String("url", url),
			zap.String("source", string(out.Source)),
		)
		out.Failure = FailureRouting
		return out
	}

	parseStart := time.Now()
	resp, err := o.fetcher.Fetch(ctx, FetchRequest{URL: url, Referer: out.Source.Referer()})
	if err != nil {
		o.logger.Error("fetch failed", zap.String("url", url), zap.Error(err))
		o.observer.ParsingFailed(out.Source)
		out.Failure = FailureFetch
		out.Error = err.Error()
		return out
	}
	o.archivePage(ctx, out.Source, resp)

	candidates := extractor.Extract(resp.Document)
	out.RecordsFound = len(candidates)
	o.observer.ParseDuration(out.Source, time.Since(parseStart))

	fresh := make([]Vacancy, 0, len(candidates))
	for _, v := range candidates {
		if !v.Valid() {
			continue
		}
		if o.seen.Contains(v.SourceURL) {
			continue
		}
		fresh = append(fresh, v)
	}

	if len(fresh) == 0 {
		o.logger.Info("no new vacancies",
			zap.String("url", url),
			zap.Int("found", out.RecordsFound),
		)
		o.observer.ParsingSucceeded(out.Source)
		return out
	}

	persisted, err := o.store.SaveAll(ctx, fresh)
	if err != nil {
		// Nothing was marked seen, so the next batch retries these
		// records; persistence is idempotent on source URL.
		o.logger.Error("persist failed", zap.String("url", url), zap.Error(err))
		o.observer.ParsingFailed(out.Source)
		out.Failure = FailurePersist
		out.Error = err.Error()
		return out
	}
	for _, v := range persisted {
		o.seen.Add(v.SourceURL)
	}
	out.RecordsPersisted = len(persisted)
	o.observer.ParsingSucceeded(out.Source)
	o.logger.Info("vacancies persisted",
		zap.String("url", url),
		zap.Int("found", out.RecordsFound),
		zap.Int("persisted", out.RecordsPersisted),
	)
	o.publishPersisted(ctx, url, persisted)
	return out
}

func (o *Orchestrator) archivePage(ctx context.Context, source Source, resp FetchResponse) {
	if o.archive == nil || o.hasher == nil {
		return
	}
	hash, err := o.hasher.Hash(resp.Body)
	if err != nil {
		o.logger.Warn("hash page failed", zap.String("url", resp.URL), zap.Error(err))
		return
	}
	path := fmt.Sprintf("%s/%s.html", source, hash)
	if o.cfg.ArchivePrefix != "" {
		path = fmt.Sprintf("%s/%s", o.cfg.ArchivePrefix, path)
	}
	uri, err := o.archive.PutObject(ctx, path, "text/html; charset=utf-8", resp.Body)
	if err != nil {
		o.logger.Warn("archive page failed", zap.String("url", resp.URL), zap.Error(err))
		return
	}
	o.logger.Debug("page archived", zap.String("url", resp.URL), zap.String("uri", uri))
}

func (o *Orchestrator) publishPersisted(ctx context.Context, url string, persisted []Vacancy) {
	if o.publisher == nil || o.cfg.Topic == "" {
		return
	}
	payload := map[string]any{
		"url":       url,
		"count":     len(persisted),
		"vacancies": persisted,
	}
	if _, err := o.publisher.Publish(ctx, o.cfg.Topic, payload); err != nil {
		// Publication is advisory; the records are already persisted.
		o.logger.Warn("publish persisted vacancies failed", zap.String("url", url), zap.Error(err))
	}
}
