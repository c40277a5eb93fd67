// Package main wires together the vacancy ingestion service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vacancyhub/vacancy-ingest/internal/api"
	archivegcs "github.com/vacancyhub/vacancy-ingest/internal/archive/gcs"
	archivelocal "github.com/vacancyhub/vacancy-ingest/internal/archive/local"
	"github.com/vacancyhub/vacancy-ingest/internal/clock/system"
	"github.com/vacancyhub/vacancy-ingest/internal/config"
	"github.com/vacancyhub/vacancy-ingest/internal/extract"
	"github.com/vacancyhub/vacancy-ingest/internal/fetch"
	"github.com/vacancyhub/vacancy-ingest/internal/hash/sha256"
	"github.com/vacancyhub/vacancy-ingest/internal/ingest"
	"github.com/vacancyhub/vacancy-ingest/internal/logging"
	"github.com/vacancyhub/vacancy-ingest/internal/metrics"
	memorypublisher "github.com/vacancyhub/vacancy-ingest/internal/publisher/memory"
	gcppublisher "github.com/vacancyhub/vacancy-ingest/internal/publisher/pubsub"
	"github.com/vacancyhub/vacancy-ingest/internal/scheduler"
	memorystore "github.com/vacancyhub/vacancy-ingest/internal/store/memory"
	pgstore "github.com/vacancyhub/vacancy-ingest/internal/store/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store, reader, cleanup, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	publisher, pubCleanup, err := setupPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pubCleanup()

	archive, archCleanup, err := setupArchive(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer archCleanup()

	fetcher := fetch.New(fetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	clock := system.New()
	extractors := []ingest.Extractor{
		extract.NewHH(clock, logger.Named("extract_hh")),
		extract.NewSuperJob(clock, logger.Named("extract_superjob")),
		extract.NewHabr(clock, logger.Named("extract_habr")),
	}

	orchestrator := ingest.New(
		fetcher,
		extractors,
		store,
		publisher,
		archive,
		sha256.New(),
		metrics.NewObserver(),
		clock,
		ingest.Config{
			Workers:          cfg.Ingest.Workers,
			TaskTimeout:      cfg.TaskTimeout(),
			PageLimitDefault: cfg.Ingest.PageLimitDefault,
			Topic:            cfg.PubSub.TopicName,
			ArchivePrefix:    cfg.Archive.Prefix,
		},
		logger.Named("ingest"),
	)
	if cfg.Ingest.HydrateSeen {
		if err := orchestrator.HydrateSeen(ctx); err != nil {
			return fmt.Errorf("hydrate seen set: %w", err)
		}
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(orchestrator, scheduler.Config{
			InitialDelay: time.Duration(cfg.Scheduler.InitialDelaySeconds) * time.Second,
			Interval:     time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second,
			URLs:         cfg.Scheduler.URLs,
			PageLimit:    cfg.Scheduler.PageLimit,
		}, logger.Named("scheduler"))
		go sched.Run(ctx)
	}

	apiServer := api.NewServer(orchestrator, reader, cfg, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}

func setupStore(
	ctx context.Context,
	cfg config.Config,
	logger *zap.Logger,
) (ingest.VacancyStore, ingest.VacancyReader, func(), error) {
	switch cfg.DB.Provider {
	case "postgres":
		logger.Info("using postgres vacancy store")
		store, pool, err := pgstore.New(ctx, pgstore.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres store init failed: %w", err)
		}
		if err := store.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("create schema failed: %w", err)
		}
		return store, store, pool.Close, nil
	default:
		logger.Info("using in-memory vacancy store")
		store := memorystore.NewVacancyStore()
		return store, store, func() {}, nil
	}
}

func setupPublisher(
	ctx context.Context,
	cfg config.Config,
	logger *zap.Logger,
) (ingest.Publisher, func(), error) {
	if cfg.PubSub.TopicName == "" || cfg.PubSub.ProjectID == "" {
		logger.Warn("no Pub/Sub topic configured, using in-memory publisher")
		return memorypublisher.New(), func() {}, nil
	}
	pub, err := gcppublisher.New(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub publisher init failed: %w", err)
	}
	logger.Info("Pub/Sub publisher initialized",
		zap.String("project", cfg.PubSub.ProjectID),
		zap.String("topic", cfg.PubSub.TopicName),
	)
	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}, nil
}

func setupArchive(
	ctx context.Context,
	cfg config.Config,
	logger *zap.Logger,
) (ingest.ArchiveStore, func(), error) {
	switch cfg.Archive.Provider {
	case "gcs":
		logger.Info("using GCS page archive", zap.String("bucket", cfg.Archive.GCSBucket))
		store, err := archivegcs.New(ctx, cfg.Archive.GCSBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("gcs archive init failed: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("gcs client close failed", zap.Error(err))
			}
		}, nil
	case "local":
		logger.Info("using local page archive", zap.String("base_dir", cfg.Archive.BaseDir))
		store, err := archivelocal.New(cfg.Archive.BaseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("local archive init failed: %w", err)
		}
		return store, func() {}, nil
	default:
		logger.Info("page archival disabled")
		return nil, func() {}, nil
	}
}
