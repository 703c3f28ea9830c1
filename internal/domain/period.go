package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// SourcePeriod is one immutable calendar window. Periods of the same type
// generated for a contiguous range never gap and never overlap; both bounds
// are inclusive.
type SourcePeriod struct {
	ID    string     `json:"id"`
	Type  PeriodType `json:"type"`
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`

	// Derived metadata.
	Year      int  `json:"year"`
	Month     int  `json:"month"`           // 1-12; 0 for weekly periods spanning a month boundary
	Week      int  `json:"week,omitempty"`  // ISO week of Start, weekly periods only
	FirstHalf bool `json:"first_half"`      // bi-monthly periods only
}

// Days returns the inclusive day count of the period.
func (p SourcePeriod) Days() int {
	return p.End.DaysSince(p.Start) + 1
}

// Contains reports whether d falls inside the period, bounds inclusive.
func (p SourcePeriod) Contains(d civil.Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Occurrence is one expected due/earn event inside an ObligationPeriod.
// It never exists independently of its parent period.
type Occurrence struct {
	ID             string      `json:"id"`
	DueDate        civil.Date  `json:"due_date"`
	ExpectedAmount float64     `json:"expected_amount"`
	Paid           bool        `json:"paid"`
	TransactionID  string      `json:"transaction_id,omitempty"`
	SplitID        string      `json:"split_id,omitempty"`
	ActualAmount   float64     `json:"actual_amount"`
	PaidDate       civil.Date  `json:"paid_date"`
	Payment        PaymentType `json:"payment,omitempty"`
	MatchedBy      string      `json:"matched_by,omitempty"`
}

// ObligationPeriod joins one obligation to one source period. It is always
// recomputed whole from current source data, never incrementally patched.
type ObligationPeriod struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"owner_id"`
	ObligationID   string         `json:"obligation_id"`
	ObligationKind ObligationKind `json:"obligation_kind"`
	SourcePeriodID string         `json:"source_period_id"`
	PeriodType     PeriodType     `json:"period_type"`
	Start          civil.Date     `json:"start"`
	End            civil.Date     `json:"end"`

	TotalAmountDue    float64 `json:"total_amount_due"`
	TotalAmountPaid   float64 `json:"total_amount_paid"`
	TotalAmountUnpaid float64 `json:"total_amount_unpaid"`

	OccurrencesInPeriod int `json:"occurrences_in_period"`
	OccurrencesPaid     int `json:"occurrences_paid"`
	OccurrencesUnpaid   int `json:"occurrences_unpaid"`

	Occurrences []Occurrence `json:"occurrences"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsFullyPaid reports whether every occurrence is paid and the paid total
// covers the due total within one cent.
func (p ObligationPeriod) IsFullyPaid() bool {
	return p.OccurrencesInPeriod > 0 &&
		p.OccurrencesUnpaid == 0 &&
		p.TotalAmountPaid >= p.TotalAmountDue-CentTolerance
}

// IsPartiallyPaid reports whether at least one occurrence is paid without the
// period being fully paid.
func (p ObligationPeriod) IsPartiallyPaid() bool {
	return p.OccurrencesPaid > 0 && !p.IsFullyPaid()
}

// BudgetPeriod is the spend-tracking sibling of ObligationPeriod: one ad-hoc
// budget's allocation and spend within one source period.
type BudgetPeriod struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	BudgetID       string     `json:"budget_id"`
	Name           string     `json:"name"`
	SourcePeriodID string     `json:"source_period_id"`
	PeriodType     PeriodType `json:"period_type"`
	Start          civil.Date `json:"start"`
	End            civil.Date `json:"end"`

	TotalAllocated   float64 `json:"total_allocated"`
	TotalSpent       float64 `json:"total_spent"`
	TotalRemaining   float64 `json:"total_remaining"`
	TransactionCount int     `json:"transaction_count"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsOverBudget reports whether spend exceeds the allocation. A zero-allocated
// budget with any spend is over budget.
func (b BudgetPeriod) IsOverBudget() bool {
	return b.TotalSpent > b.TotalAllocated+CentTolerance
}
