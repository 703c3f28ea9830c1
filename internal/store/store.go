// Package store defines the persistence contracts the reconciliation engine
// consumes. The engine never touches a backend directly; it reads and writes
// whole documents through these interfaces, and implementations must
// preserve the document shapes field-for-field.
package store

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("store: not found")

// PeriodStore reads and replaces obligation and budget period documents.
type PeriodStore interface {
	// GetObligationPeriod returns one period document by id.
	GetObligationPeriod(ctx context.Context, ownerID, periodID string) (*domain.ObligationPeriod, error)

	// ListObligationPeriodsByObligation returns every period-type view of
	// one obligation.
	ListObligationPeriodsByObligation(ctx context.Context, ownerID, obligationID string) ([]*domain.ObligationPeriod, error)

	// ListObligationPeriodsBySource returns all obligation periods of one
	// source period for an owner.
	ListObligationPeriodsBySource(ctx context.Context, ownerID, sourcePeriodID string) ([]*domain.ObligationPeriod, error)

	// ListBudgetPeriodsBySource returns all budget periods of one source
	// period for an owner.
	ListBudgetPeriodsBySource(ctx context.Context, ownerID, sourcePeriodID string) ([]*domain.BudgetPeriod, error)

	// ReplaceObligationPeriods writes the given period documents in one
	// atomic batch: either every view observes the change or none does.
	ReplaceObligationPeriods(ctx context.Context, periods ...*domain.ObligationPeriod) error

	// ReplaceBudgetPeriod writes one budget period document whole.
	ReplaceBudgetPeriod(ctx context.Context, period *domain.BudgetPeriod) error
}

// TransactionStore reads transactions and updates their split lists.
type TransactionStore interface {
	// GetTransaction returns one transaction with its splits.
	GetTransaction(ctx context.Context, ownerID, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByDateRange returns an owner's transactions dated
	// within [start, end] inclusive, ordered by date.
	ListTransactionsByDateRange(ctx context.Context, ownerID string, start, end civil.Date) ([]*domain.Transaction, error)

	// UpdateTransactionSplits replaces a transaction's split list.
	UpdateTransactionSplits(ctx context.Context, ownerID, transactionID string, splits []domain.Split) error
}

// ObligationStore reads obligation definitions.
type ObligationStore interface {
	// GetObligation returns one obligation including its linked
	// transaction identifier list.
	GetObligation(ctx context.Context, ownerID, obligationID string) (*domain.Obligation, error)

	// ListObligations returns all of an owner's obligations.
	ListObligations(ctx context.Context, ownerID string) ([]*domain.Obligation, error)
}

// SummaryStore replaces and reads period summary documents.
type SummaryStore interface {
	// ReplaceSummary fully replaces the summary document; there is no
	// partial merge.
	ReplaceSummary(ctx context.Context, summary *domain.PeriodSummary) error

	// GetSummary returns one summary by owner and source period.
	GetSummary(ctx context.Context, ownerID, sourcePeriodID string) (*domain.PeriodSummary, error)
}
