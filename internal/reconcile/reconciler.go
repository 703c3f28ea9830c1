package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
	"github.com/ovolkov/billflow/internal/logger"
	"github.com/ovolkov/billflow/internal/store"
	"github.com/ovolkov/billflow/internal/summary"
)

// SummaryExporter pushes a finished summary to a reporting surface. Export
// failures never fail a recompute.
type SummaryExporter interface {
	ExportSummary(ctx context.Context, s domain.PeriodSummary) error
}

// ItemError records a per-item failure inside a batch recompute. One bad
// input never blocks reconciliation of the rest of the batch.
type ItemError struct {
	Ref string // identifier of the skipped item
	Err error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ref, e.Err)
}

// ReconcileResult reports what one obligation recompute did.
type ReconcileResult struct {
	ObligationID       string
	PeriodsUpdated     int
	OccurrencesMatched int
	Errors             []ItemError
}

// Reconciler is the engine's recompute entry point. Every method derives its
// result entirely from current stored documents, so concurrent re-triggers
// for the same key converge to the same fixed point and last-write-wins is
// safe.
type Reconciler struct {
	periods     store.PeriodStore
	txns        store.TransactionStore
	obligations store.ObligationStore
	summaries   store.SummaryStore

	matcher     Matcher
	dueSoonDays int

	// Exporter, when set, receives every rebuilt summary.
	Exporter SummaryExporter
}

// New wires a Reconciler over the given stores with default thresholds.
func New(periods store.PeriodStore, txns store.TransactionStore, obligations store.ObligationStore, summaries store.SummaryStore) *Reconciler {
	return &Reconciler{
		periods:     periods,
		txns:        txns,
		obligations: obligations,
		summaries:   summaries,
		matcher:     NewMatcher(DefaultThresholds()),
		dueSoonDays: DefaultDueSoonDays,
	}
}

// WithThresholds overrides the classifier thresholds and due-soon window.
func (r *Reconciler) WithThresholds(t Thresholds, dueSoonDays int) *Reconciler {
	r.matcher = NewMatcher(t)
	r.dueSoonDays = dueSoonDays
	return r
}

// ReconcileObligation rematches one obligation's transactions against every
// period-type view of that obligation and writes all updated views in one
// atomic batch. Missing linked transactions are skipped and reported in the
// result rather than failing the recompute; a missing obligation aborts this
// unit only.
func (r *Reconciler) ReconcileObligation(ctx context.Context, ownerID, obligationID string) (*ReconcileResult, error) {
	if ownerID == "" || obligationID == "" {
		return nil, fmt.Errorf("ReconcileObligation: owner and obligation ids are required")
	}
	log := logger.FromContext(ctx).With().
		Str("owner_id", ownerID).
		Str("obligation_id", obligationID).
		Logger()

	ob, err := r.obligations.GetObligation(ctx, ownerID, obligationID)
	if err != nil {
		return nil, fmt.Errorf("ReconcileObligation: loading obligation: %w", err)
	}

	result := &ReconcileResult{ObligationID: obligationID}

	txns := make([]domain.Transaction, 0, len(ob.TransactionIDs))
	for _, id := range ob.TransactionIDs {
		t, err := r.txns.GetTransaction(ctx, ownerID, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Historical data may have been pruned; skip and continue.
				log.Warn().Str("transaction_id", id).Msg("linked transaction no longer exists, skipping")
				result.Errors = append(result.Errors, ItemError{Ref: "transaction/" + id, Err: err})
				continue
			}
			return nil, fmt.Errorf("ReconcileObligation: loading transaction %s: %w", id, err)
		}
		txns = append(txns, *t)
	}

	periods, err := r.periods.ListObligationPeriodsByObligation(ctx, ownerID, obligationID)
	if err != nil {
		return nil, fmt.Errorf("ReconcileObligation: listing periods: %w", err)
	}

	now := time.Now().UTC()
	updated := make([]*domain.ObligationPeriod, 0, len(periods))
	for _, p := range periods {
		if p.ObligationID != obligationID || p.OwnerID != ownerID {
			result.Errors = append(result.Errors, ItemError{
				Ref: "period/" + p.ID,
				Err: fmt.Errorf("period references %s/%s, want %s/%s", p.OwnerID, p.ObligationID, ownerID, obligationID),
			})
			continue
		}
		matched := r.matcher.Match(*p, *ob, txns)
		matched.UpdatedAt = now
		result.OccurrencesMatched += matched.OccurrencesPaid
		updated = append(updated, &matched)
	}

	if len(updated) > 0 {
		// All period-type views of the obligation land together or not at all.
		if err := r.periods.ReplaceObligationPeriods(ctx, updated...); err != nil {
			return nil, fmt.Errorf("ReconcileObligation: writing periods: %w", err)
		}
	}
	result.PeriodsUpdated = len(updated)

	log.Info().
		Int("periods_updated", result.PeriodsUpdated).
		Int("occurrences_matched", result.OccurrencesMatched).
		Int("items_skipped", len(result.Errors)).
		Msg("obligation reconciled")
	return result, nil
}

// RebuildSummary re-derives the owner's summary for one source period from
// the currently stored periods and fully replaces the stored summary. It may
// race with further period edits without corrupting anything, since a later
// rebuild re-derives again.
func (r *Reconciler) RebuildSummary(ctx context.Context, ownerID, sourcePeriodID string) (*domain.PeriodSummary, error) {
	if ownerID == "" || sourcePeriodID == "" {
		return nil, fmt.Errorf("RebuildSummary: owner and source period ids are required")
	}
	log := logger.FromContext(ctx).With().
		Str("owner_id", ownerID).
		Str("source_period_id", sourcePeriodID).
		Logger()

	ops, err := r.periods.ListObligationPeriodsBySource(ctx, ownerID, sourcePeriodID)
	if err != nil {
		return nil, fmt.Errorf("RebuildSummary: listing obligation periods: %w", err)
	}
	bps, err := r.periods.ListBudgetPeriodsBySource(ctx, ownerID, sourcePeriodID)
	if err != nil {
		return nil, fmt.Errorf("RebuildSummary: listing budget periods: %w", err)
	}

	s := summary.Aggregate(ownerID, sourcePeriodOf(sourcePeriodID, ops, bps), ops, bps)
	if err := r.summaries.ReplaceSummary(ctx, &s); err != nil {
		return nil, fmt.Errorf("RebuildSummary: writing summary: %w", err)
	}

	if r.Exporter != nil {
		if err := r.Exporter.ExportSummary(ctx, s); err != nil {
			log.Warn().Err(err).Msg("summary export failed")
		}
	}

	log.Info().
		Int("obligation_periods", len(ops)).
		Int("budget_periods", len(bps)).
		Msg("summary rebuilt")
	return &s, nil
}

// StatusOf derives the current status of one stored obligation period.
func (r *Reconciler) StatusOf(ctx context.Context, ownerID, periodID string) (domain.PeriodStatus, error) {
	p, err := r.periods.GetObligationPeriod(ctx, ownerID, periodID)
	if err != nil {
		return "", fmt.Errorf("StatusOf: loading period: %w", err)
	}
	return DeriveStatus(*p, civil.DateOf(time.Now().UTC()), r.dueSoonDays), nil
}

// sourcePeriodOf reconstructs the source period's window from any stored
// period document that references it. The stored documents all carry the
// same boundaries, so the first one wins.
func sourcePeriodOf(sourcePeriodID string, ops []*domain.ObligationPeriod, bps []*domain.BudgetPeriod) domain.SourcePeriod {
	sp := domain.SourcePeriod{ID: sourcePeriodID}
	if len(ops) > 0 {
		sp.Type = ops[0].PeriodType
		sp.Start = ops[0].Start
		sp.End = ops[0].End
	} else if len(bps) > 0 {
		sp.Type = bps[0].PeriodType
		sp.Start = bps[0].Start
		sp.End = bps[0].End
	}
	return sp
}
