// Package firestore implements the engine's store contracts on Cloud
// Firestore. Documents live in per-owner subcollections so every query is
// scoped to one owner by construction.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ovolkov/billflow/internal/domain"
	"github.com/ovolkov/billflow/internal/store"
)

const (
	ownersCollection            = "owners"
	obligationPeriodsCollection = "obligation_periods"
	budgetPeriodsCollection     = "budget_periods"
	transactionsCollection      = "transactions"
	obligationsCollection       = "obligations"
	summariesCollection         = "period_summaries"
)

// Store implements PeriodStore, TransactionStore, ObligationStore and
// SummaryStore over a single Firestore client.
type Store struct {
	client *fs.Client
}

// NewStore creates a Firestore-backed store. databaseID may be "(default)".
func NewStore(ctx context.Context, projectID, databaseID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("NewStore: project ID is required")
	}
	client, err := fs.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: failed to create firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) owner(ownerID string) *fs.DocumentRef {
	return s.client.Collection(ownersCollection).Doc(ownerID)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// GetObligationPeriod implements store.PeriodStore.
func (s *Store) GetObligationPeriod(ctx context.Context, ownerID, periodID string) (*domain.ObligationPeriod, error) {
	snap, err := s.owner(ownerID).Collection(obligationPeriodsCollection).Doc(periodID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("GetObligationPeriod: failed to get document %s: %w", periodID, err)
	}
	var doc obligationPeriodDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("GetObligationPeriod: failed to decode document %s: %w", periodID, err)
	}
	p, err := fromObligationPeriodDoc(&doc)
	if err != nil {
		return nil, fmt.Errorf("GetObligationPeriod: %w", err)
	}
	return p, nil
}

// ListObligationPeriodsByObligation implements store.PeriodStore.
func (s *Store) ListObligationPeriodsByObligation(ctx context.Context, ownerID, obligationID string) ([]*domain.ObligationPeriod, error) {
	q := s.owner(ownerID).Collection(obligationPeriodsCollection).
		Where("obligation_id", "==", obligationID).
		OrderBy("start", fs.Asc)
	periods, err := s.collectObligationPeriods(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("ListObligationPeriodsByObligation: %w", err)
	}
	return periods, nil
}

// ListObligationPeriodsBySource implements store.PeriodStore.
func (s *Store) ListObligationPeriodsBySource(ctx context.Context, ownerID, sourcePeriodID string) ([]*domain.ObligationPeriod, error) {
	q := s.owner(ownerID).Collection(obligationPeriodsCollection).
		Where("source_period_id", "==", sourcePeriodID)
	periods, err := s.collectObligationPeriods(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("ListObligationPeriodsBySource: %w", err)
	}
	return periods, nil
}

func (s *Store) collectObligationPeriods(ctx context.Context, q fs.Query) ([]*domain.ObligationPeriod, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	var periods []*domain.ObligationPeriod
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate documents: %w", err)
		}
		var doc obligationPeriodDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", snap.Ref.ID, err)
		}
		p, err := fromObligationPeriodDoc(&doc)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// ListBudgetPeriodsBySource implements store.PeriodStore.
func (s *Store) ListBudgetPeriodsBySource(ctx context.Context, ownerID, sourcePeriodID string) ([]*domain.BudgetPeriod, error) {
	it := s.owner(ownerID).Collection(budgetPeriodsCollection).
		Where("source_period_id", "==", sourcePeriodID).
		Documents(ctx)
	defer it.Stop()

	var periods []*domain.BudgetPeriod
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListBudgetPeriodsBySource: failed to iterate documents: %w", err)
		}
		var doc budgetPeriodDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("ListBudgetPeriodsBySource: failed to decode document %s: %w", snap.Ref.ID, err)
		}
		b, err := fromBudgetPeriodDoc(&doc)
		if err != nil {
			return nil, fmt.Errorf("ListBudgetPeriodsBySource: %w", err)
		}
		periods = append(periods, b)
	}
	return periods, nil
}

// ReplaceObligationPeriods implements store.PeriodStore. All documents go
// through a single WriteBatch so the period-type views commit together.
func (s *Store) ReplaceObligationPeriods(ctx context.Context, periods ...*domain.ObligationPeriod) error {
	if len(periods) == 0 {
		return nil
	}

	batch := s.client.Batch()
	for _, p := range periods {
		if p.ID == "" {
			return fmt.Errorf("ReplaceObligationPeriods: period ID is required")
		}
		ref := s.owner(p.OwnerID).Collection(obligationPeriodsCollection).Doc(p.ID)
		batch.Set(ref, toObligationPeriodDoc(p))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("ReplaceObligationPeriods: failed to commit batch of %d: %w", len(periods), err)
	}
	return nil
}

// ReplaceBudgetPeriod implements store.PeriodStore.
func (s *Store) ReplaceBudgetPeriod(ctx context.Context, period *domain.BudgetPeriod) error {
	if period.ID == "" {
		return fmt.Errorf("ReplaceBudgetPeriod: period ID is required")
	}
	ref := s.owner(period.OwnerID).Collection(budgetPeriodsCollection).Doc(period.ID)
	if _, err := ref.Set(ctx, toBudgetPeriodDoc(period)); err != nil {
		return fmt.Errorf("ReplaceBudgetPeriod: failed to set document %s: %w", period.ID, err)
	}
	return nil
}

// GetTransaction implements store.TransactionStore.
func (s *Store) GetTransaction(ctx context.Context, ownerID, transactionID string) (*domain.Transaction, error) {
	snap, err := s.owner(ownerID).Collection(transactionsCollection).Doc(transactionID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("GetTransaction: failed to get document %s: %w", transactionID, err)
	}
	var doc transactionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("GetTransaction: failed to decode document %s: %w", transactionID, err)
	}
	t, err := fromTransactionDoc(&doc)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return t, nil
}

// ListTransactionsByDateRange implements store.TransactionStore. Dates are
// stored as YYYY-MM-DD strings, so string range comparison matches date
// comparison.
func (s *Store) ListTransactionsByDateRange(ctx context.Context, ownerID string, start, end civil.Date) ([]*domain.Transaction, error) {
	it := s.owner(ownerID).Collection(transactionsCollection).
		Where("date", ">=", formatDate(start)).
		Where("date", "<=", formatDate(end)).
		OrderBy("date", fs.Asc).
		Documents(ctx)
	defer it.Stop()

	var txns []*domain.Transaction
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByDateRange: failed to iterate documents: %w", err)
		}
		var doc transactionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("ListTransactionsByDateRange: failed to decode document %s: %w", snap.Ref.ID, err)
		}
		t, err := fromTransactionDoc(&doc)
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByDateRange: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// UpdateTransactionSplits implements store.TransactionStore.
func (s *Store) UpdateTransactionSplits(ctx context.Context, ownerID, transactionID string, splits []domain.Split) error {
	docs := make([]splitDoc, 0, len(splits))
	for _, sp := range splits {
		docs = append(docs, splitDoc(sp))
	}
	ref := s.owner(ownerID).Collection(transactionsCollection).Doc(transactionID)
	_, err := ref.Update(ctx, []fs.Update{{Path: "splits", Value: docs}})
	if err != nil {
		if isNotFound(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("UpdateTransactionSplits: failed to update document %s: %w", transactionID, err)
	}
	return nil
}

// PutTransaction seeds a transaction document. Ingestion is outside the
// engine; this exists for the CLI and fixtures.
func (s *Store) PutTransaction(ctx context.Context, t *domain.Transaction) error {
	if t.ID == "" || t.OwnerID == "" {
		return fmt.Errorf("PutTransaction: transaction missing id or owner")
	}
	ref := s.owner(t.OwnerID).Collection(transactionsCollection).Doc(t.ID)
	if _, err := ref.Set(ctx, toTransactionDoc(t)); err != nil {
		return fmt.Errorf("PutTransaction: failed to set document %s: %w", t.ID, err)
	}
	return nil
}

// GetObligation implements store.ObligationStore.
func (s *Store) GetObligation(ctx context.Context, ownerID, obligationID string) (*domain.Obligation, error) {
	snap, err := s.owner(ownerID).Collection(obligationsCollection).Doc(obligationID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("GetObligation: failed to get document %s: %w", obligationID, err)
	}
	var doc obligationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("GetObligation: failed to decode document %s: %w", obligationID, err)
	}
	ob, err := fromObligationDoc(&doc)
	if err != nil {
		return nil, fmt.Errorf("GetObligation: %w", err)
	}
	return ob, nil
}

// ListObligations implements store.ObligationStore.
func (s *Store) ListObligations(ctx context.Context, ownerID string) ([]*domain.Obligation, error) {
	it := s.owner(ownerID).Collection(obligationsCollection).OrderBy("name", fs.Asc).Documents(ctx)
	defer it.Stop()

	var obs []*domain.Obligation
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListObligations: failed to iterate documents: %w", err)
		}
		var doc obligationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("ListObligations: failed to decode document %s: %w", snap.Ref.ID, err)
		}
		ob, err := fromObligationDoc(&doc)
		if err != nil {
			return nil, fmt.Errorf("ListObligations: %w", err)
		}
		obs = append(obs, ob)
	}
	return obs, nil
}

// ReplaceSummary implements store.SummaryStore.
func (s *Store) ReplaceSummary(ctx context.Context, summary *domain.PeriodSummary) error {
	if summary.ID == "" {
		return fmt.Errorf("ReplaceSummary: summary ID is required")
	}
	ref := s.owner(summary.OwnerID).Collection(summariesCollection).Doc(summary.ID)
	if _, err := ref.Set(ctx, toSummaryDoc(summary)); err != nil {
		return fmt.Errorf("ReplaceSummary: failed to set document %s: %w", summary.ID, err)
	}
	return nil
}

// GetSummary implements store.SummaryStore.
func (s *Store) GetSummary(ctx context.Context, ownerID, sourcePeriodID string) (*domain.PeriodSummary, error) {
	id := ownerID + "-" + sourcePeriodID
	snap, err := s.owner(ownerID).Collection(summariesCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("GetSummary: failed to get document %s: %w", id, err)
	}
	var doc summaryDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("GetSummary: failed to decode document %s: %w", id, err)
	}
	sum, err := fromSummaryDoc(&doc)
	if err != nil {
		return nil, fmt.Errorf("GetSummary: %w", err)
	}
	return sum, nil
}

// Interface conformance checks.
var (
	_ store.PeriodStore      = (*Store)(nil)
	_ store.TransactionStore = (*Store)(nil)
	_ store.ObligationStore  = (*Store)(nil)
	_ store.SummaryStore     = (*Store)(nil)
)
