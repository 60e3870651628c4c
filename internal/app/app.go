// Package app assembles the archive pipeline from configuration. Both the
// service and the command-line tool use it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/metar-archive-etl/internal/adapter/archive"
	"github.com/couchcryptid/metar-archive-etl/internal/adapter/filestore"
	kafkaadapter "github.com/couchcryptid/metar-archive-etl/internal/adapter/kafka"
	"github.com/couchcryptid/metar-archive-etl/internal/adapter/ledger"
	"github.com/couchcryptid/metar-archive-etl/internal/config"
	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/observability"
	"github.com/couchcryptid/metar-archive-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

// App holds the wired pipeline and the resources that need closing.
type App struct {
	Orchestrator *pipeline.Orchestrator
	Store        *filestore.Store
	// Ledger is nil unless LEDGER_PATH is set.
	Ledger *ledger.DB

	closers []func() error
	logger  *slog.Logger
}

// New wires fetcher, sinks, and orchestrator. A nil clock uses wall-clock
// time.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) (*App, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	a := &App{logger: logger}

	var fetcher domain.Fetcher = archive.NewClient(cfg.ArchiveBaseURL, cfg.ArchiveUserAgent, cfg.ArchiveTimeout, logger)
	if cfg.ArchiveCacheSize > 0 {
		fetcher = archive.NewCachedFetcher(fetcher, cfg.ArchiveCacheSize, clock, metrics)
		logger.Info("archive cache enabled", "cache_size", cfg.ArchiveCacheSize)
	}

	a.Store = filestore.New(cfg.OutputDir, cfg.WriteManifest, clock, logger)
	loaders := pipeline.Loaders{a.Store}
	recorders := pipeline.Recorders{a.Store}

	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		a.closers = append(a.closers, writer.Close)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	if cfg.LedgerEnabled() {
		db, err := ledger.Open(cfg.LedgerPath, clock)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		a.Ledger = db
		recorders = append(recorders, db)
		a.closers = append(a.closers, db.Close)
		logger.Info("outcome ledger enabled", "path", cfg.LedgerPath)
	}

	a.Orchestrator = pipeline.New(fetcher, loaders, recorders, logger, metrics, pipeline.PolicyFromConfig(cfg), clock)
	return a, nil
}

// Readiness combines the orchestrator and ledger health checks.
func (a *App) Readiness() sharedobs.ReadinessChecker {
	checks := readiness{a.Orchestrator}
	if a.Ledger != nil {
		checks = append(checks, a.Ledger)
	}
	return checks
}

// Close releases sinks in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type readiness []sharedobs.ReadinessChecker

func (r readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
