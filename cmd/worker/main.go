package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovolkov/billflow/internal/config"
	bqexport "github.com/ovolkov/billflow/internal/infra/bigquery"
	fsstore "github.com/ovolkov/billflow/internal/infra/firestore"
	"github.com/ovolkov/billflow/internal/jobs"
	jobsmem "github.com/ovolkov/billflow/internal/jobs/inmemory"
	"github.com/ovolkov/billflow/internal/logger"
	"github.com/ovolkov/billflow/internal/reconcile"
	"github.com/ovolkov/billflow/internal/store"
	storemem "github.com/ovolkov/billflow/internal/store/inmemory"
)

// stores groups the four document store contracts the reconciler consumes.
type stores struct {
	periods     store.PeriodStore
	txns        store.TransactionStore
	obligations store.ObligationStore
	summaries   store.SummaryStore
	close       func() error
}

func buildStores(ctx context.Context, cfg config.StoreConfig) (*stores, error) {
	switch cfg.Backend {
	case "", "memory":
		s := storemem.New()
		return &stores{
			periods:     s,
			txns:        s,
			obligations: s,
			summaries:   s,
			close:       func() error { return nil },
		}, nil
	case "firestore":
		s, err := fsstore.NewStore(ctx, cfg.ProjectID, cfg.DatabaseID)
		if err != nil {
			return nil, err
		}
		return &stores{
			periods:     s,
			txns:        s,
			obligations: s,
			summaries:   s,
			close:       s.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func main() {
	log := logger.WithComponent(logger.New(), "worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	st, err := buildStores(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build document store")
	}
	defer st.close()

	reconciler := reconcile.New(st.periods, st.txns, st.obligations, st.summaries).
		WithThresholds(reconcile.Thresholds{
			ExtraPrincipalRatio: cfg.Classifier.ExtraPrincipalRatio,
			AdvanceDays:         cfg.Classifier.AdvanceDays,
		}, cfg.Status.DueSoonDays)

	if cfg.Export.Enabled {
		exporter, err := bqexport.NewExporter(ctx, cfg.Export.ProjectID, cfg.Export.Dataset, cfg.Export.Table)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create summary exporter")
		}
		defer exporter.Close()
		reconciler.Exporter = exporter
	}

	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := jobsmem.NewStore()
	jobQueue := jobsmem.NewQueue(cfg.Jobs.QueueSize, cfg.Jobs.Workers, cfg.Jobs.Debounce(), jobStore)

	log.Info().
		Str("backend", cfg.Store.Backend).
		Int("workers", cfg.Jobs.Workers).
		Dur("debounce", cfg.Jobs.Debounce()).
		Msg("Starting worker service")

	handler := func(ctx context.Context, job jobs.Job) error {
		rj, ok := job.(*jobs.ReconcileJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log := log.With().
			Str("job_id", rj.JobID).
			Str("type", string(rj.Type)).
			Str("owner_id", rj.OwnerID).
			Logger()
		ctx = logger.WithContext(ctx, log)

		switch rj.Type {
		case jobs.JobTypeReconcileObligation:
			res, err := reconciler.ReconcileObligation(ctx, rj.OwnerID, rj.ObligationID)
			if err != nil {
				log.Error().Err(err).Str("obligation_id", rj.ObligationID).Msg("Reconcile failed")
				return err
			}
			log.Info().
				Int("periods_updated", res.PeriodsUpdated).
				Int("items_skipped", len(res.Errors)).
				Msg("Reconcile job completed")
			return nil
		case jobs.JobTypeRebuildSummary:
			if _, err := reconciler.RebuildSummary(ctx, rj.OwnerID, rj.SourcePeriodID); err != nil {
				log.Error().Err(err).Str("source_period_id", rj.SourcePeriodID).Msg("Summary rebuild failed")
				return err
			}
			log.Info().Str("source_period_id", rj.SourcePeriodID).Msg("Summary rebuild completed")
			return nil
		default:
			return fmt.Errorf("unknown job type: %s", rj.Type)
		}
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
