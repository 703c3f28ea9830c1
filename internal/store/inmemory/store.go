// Package inmemory provides a mutex-guarded, map-backed implementation of
// the store interfaces. It is used by tests and single-instance deployments;
// data is lost on restart.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
	"github.com/ovolkov/billflow/internal/store"
)

// Store implements every store interface over in-process maps. All methods
// copy documents on the way in and out so callers can never alias internal
// state.
type Store struct {
	mu sync.RWMutex

	obligationPeriods map[string]map[string]*domain.ObligationPeriod // ownerID -> periodID
	budgetPeriods     map[string]map[string]*domain.BudgetPeriod
	transactions      map[string]map[string]*domain.Transaction
	obligations       map[string]map[string]*domain.Obligation
	summaries         map[string]map[string]*domain.PeriodSummary // ownerID -> sourcePeriodID
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		obligationPeriods: make(map[string]map[string]*domain.ObligationPeriod),
		budgetPeriods:     make(map[string]map[string]*domain.BudgetPeriod),
		transactions:      make(map[string]map[string]*domain.Transaction),
		obligations:       make(map[string]map[string]*domain.Obligation),
		summaries:         make(map[string]map[string]*domain.PeriodSummary),
	}
}

// GetObligationPeriod implements store.PeriodStore.
func (s *Store) GetObligationPeriod(ctx context.Context, ownerID, periodID string) (*domain.ObligationPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.obligationPeriods[ownerID][periodID]
	if !ok {
		return nil, fmt.Errorf("GetObligationPeriod %s/%s: %w", ownerID, periodID, store.ErrNotFound)
	}
	return copyObligationPeriod(p), nil
}

// ListObligationPeriodsByObligation implements store.PeriodStore.
func (s *Store) ListObligationPeriodsByObligation(ctx context.Context, ownerID, obligationID string) ([]*domain.ObligationPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ObligationPeriod
	for _, p := range s.obligationPeriods[ownerID] {
		if p.ObligationID == obligationID {
			out = append(out, copyObligationPeriod(p))
		}
	}
	sortObligationPeriods(out)
	return out, nil
}

// ListObligationPeriodsBySource implements store.PeriodStore.
func (s *Store) ListObligationPeriodsBySource(ctx context.Context, ownerID, sourcePeriodID string) ([]*domain.ObligationPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ObligationPeriod
	for _, p := range s.obligationPeriods[ownerID] {
		if p.SourcePeriodID == sourcePeriodID {
			out = append(out, copyObligationPeriod(p))
		}
	}
	sortObligationPeriods(out)
	return out, nil
}

// ListBudgetPeriodsBySource implements store.PeriodStore.
func (s *Store) ListBudgetPeriodsBySource(ctx context.Context, ownerID, sourcePeriodID string) ([]*domain.BudgetPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.BudgetPeriod
	for _, b := range s.budgetPeriods[ownerID] {
		if b.SourcePeriodID == sourcePeriodID {
			bc := *b
			out = append(out, &bc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ReplaceObligationPeriods implements store.PeriodStore. The write is atomic
// with respect to every other method on this store.
func (s *Store) ReplaceObligationPeriods(ctx context.Context, periods ...*domain.ObligationPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range periods {
		if p.ID == "" || p.OwnerID == "" {
			return fmt.Errorf("ReplaceObligationPeriods: period missing id or owner")
		}
	}
	for _, p := range periods {
		if s.obligationPeriods[p.OwnerID] == nil {
			s.obligationPeriods[p.OwnerID] = make(map[string]*domain.ObligationPeriod)
		}
		s.obligationPeriods[p.OwnerID][p.ID] = copyObligationPeriod(p)
	}
	return nil
}

// ReplaceBudgetPeriod implements store.PeriodStore.
func (s *Store) ReplaceBudgetPeriod(ctx context.Context, period *domain.BudgetPeriod) error {
	if period.ID == "" || period.OwnerID == "" {
		return fmt.Errorf("ReplaceBudgetPeriod: period missing id or owner")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.budgetPeriods[period.OwnerID] == nil {
		s.budgetPeriods[period.OwnerID] = make(map[string]*domain.BudgetPeriod)
	}
	bc := *period
	s.budgetPeriods[period.OwnerID][period.ID] = &bc
	return nil
}

// GetTransaction implements store.TransactionStore.
func (s *Store) GetTransaction(ctx context.Context, ownerID, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[ownerID][transactionID]
	if !ok {
		return nil, fmt.Errorf("GetTransaction %s/%s: %w", ownerID, transactionID, store.ErrNotFound)
	}
	return copyTransaction(t), nil
}

// ListTransactionsByDateRange implements store.TransactionStore.
func (s *Store) ListTransactionsByDateRange(ctx context.Context, ownerID string, start, end civil.Date) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Transaction
	for _, t := range s.transactions[ownerID] {
		if !t.Date.Before(start) && !t.Date.After(end) {
			out = append(out, copyTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateTransactionSplits implements store.TransactionStore.
func (s *Store) UpdateTransactionSplits(ctx context.Context, ownerID, transactionID string, splits []domain.Split) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[ownerID][transactionID]
	if !ok {
		return fmt.Errorf("UpdateTransactionSplits %s/%s: %w", ownerID, transactionID, store.ErrNotFound)
	}
	t.Splits = make([]domain.Split, len(splits))
	copy(t.Splits, splits)
	return nil
}

// PutTransaction seeds a transaction document. Ingestion is outside the
// engine; this exists for tests, the CLI, and fixtures.
func (s *Store) PutTransaction(ctx context.Context, t *domain.Transaction) error {
	if t.ID == "" || t.OwnerID == "" {
		return fmt.Errorf("PutTransaction: transaction missing id or owner")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transactions[t.OwnerID] == nil {
		s.transactions[t.OwnerID] = make(map[string]*domain.Transaction)
	}
	s.transactions[t.OwnerID][t.ID] = copyTransaction(t)
	return nil
}

// GetObligation implements store.ObligationStore.
func (s *Store) GetObligation(ctx context.Context, ownerID, obligationID string) (*domain.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.obligations[ownerID][obligationID]
	if !ok {
		return nil, fmt.Errorf("GetObligation %s/%s: %w", ownerID, obligationID, store.ErrNotFound)
	}
	return copyObligation(o), nil
}

// ListObligations implements store.ObligationStore.
func (s *Store) ListObligations(ctx context.Context, ownerID string) ([]*domain.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Obligation
	for _, o := range s.obligations[ownerID] {
		out = append(out, copyObligation(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutObligation seeds an obligation document.
func (s *Store) PutObligation(ctx context.Context, o *domain.Obligation) error {
	if o.ID == "" || o.OwnerID == "" {
		return fmt.Errorf("PutObligation: obligation missing id or owner")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.obligations[o.OwnerID] == nil {
		s.obligations[o.OwnerID] = make(map[string]*domain.Obligation)
	}
	s.obligations[o.OwnerID][o.ID] = copyObligation(o)
	return nil
}

// ReplaceSummary implements store.SummaryStore.
func (s *Store) ReplaceSummary(ctx context.Context, summary *domain.PeriodSummary) error {
	if summary.OwnerID == "" || summary.SourcePeriodID == "" {
		return fmt.Errorf("ReplaceSummary: summary missing owner or source period")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summaries[summary.OwnerID] == nil {
		s.summaries[summary.OwnerID] = make(map[string]*domain.PeriodSummary)
	}
	sc := *summary
	s.summaries[summary.OwnerID][summary.SourcePeriodID] = &sc
	return nil
}

// GetSummary implements store.SummaryStore.
func (s *Store) GetSummary(ctx context.Context, ownerID, sourcePeriodID string) (*domain.PeriodSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.summaries[ownerID][sourcePeriodID]
	if !ok {
		return nil, fmt.Errorf("GetSummary %s/%s: %w", ownerID, sourcePeriodID, store.ErrNotFound)
	}
	sc := *sum
	return &sc, nil
}

func copyObligationPeriod(p *domain.ObligationPeriod) *domain.ObligationPeriod {
	pc := *p
	pc.Occurrences = make([]domain.Occurrence, len(p.Occurrences))
	copy(pc.Occurrences, p.Occurrences)
	return &pc
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	tc := *t
	tc.Splits = make([]domain.Split, len(t.Splits))
	copy(tc.Splits, t.Splits)
	return &tc
}

func copyObligation(o *domain.Obligation) *domain.Obligation {
	oc := *o
	oc.TransactionIDs = make([]string, len(o.TransactionIDs))
	copy(oc.TransactionIDs, o.TransactionIDs)
	return &oc
}

func sortObligationPeriods(ps []*domain.ObligationPeriod) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}

// Interface conformance checks.
var (
	_ store.PeriodStore      = (*Store)(nil)
	_ store.TransactionStore = (*Store)(nil)
	_ store.ObligationStore  = (*Store)(nil)
	_ store.SummaryStore     = (*Store)(nil)
)
