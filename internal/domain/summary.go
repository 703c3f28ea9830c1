package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// ResourceTotals aggregates one resource kind (bills or income streams)
// across all of an owner's obligation periods inside one source period.
type ResourceTotals struct {
	Count              int     `json:"count"`
	TotalDue           float64 `json:"total_due"`
	TotalPaid          float64 `json:"total_paid"`
	TotalUnpaid        float64 `json:"total_unpaid"`
	ProgressPercentage int     `json:"progress_percentage"`
}

// BudgetTotals aggregates all budget periods inside one source period.
type BudgetTotals struct {
	Count              int     `json:"count"`
	TotalAllocated     float64 `json:"total_allocated"`
	TotalSpent         float64 `json:"total_spent"`
	TotalRemaining     float64 `json:"total_remaining"`
	OverBudgetCount    int     `json:"over_budget_count"`
	ProgressPercentage int     `json:"progress_percentage"`
}

// PeriodSummary rolls up all obligation and budget periods of one type for
// one owner within one source period. A summary is always recomputed whole
// from the underlying periods and fully replaces any prior value.
type PeriodSummary struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	SourcePeriodID string     `json:"source_period_id"`
	PeriodType     PeriodType `json:"period_type"`
	Start          civil.Date `json:"start"`
	End            civil.Date `json:"end"`

	Bills   ResourceTotals `json:"bills"`
	Income  ResourceTotals `json:"income"`
	Budgets BudgetTotals   `json:"budgets"`

	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	NetCashFlow   float64 `json:"net_cash_flow"`
	SavingsRate   float64 `json:"savings_rate"`

	GeneratedAt time.Time `json:"generated_at"`
}
