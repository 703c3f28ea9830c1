package bigquery

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
)

// SummaryRow mirrors the period_summaries table schema. One row per export;
// the table keeps the full history, latest row per summary_id wins.
type SummaryRow struct {
	SummaryID      string `bigquery:"summary_id"`       // REQUIRED
	OwnerID        string `bigquery:"owner_id"`         // REQUIRED
	SourcePeriodID string `bigquery:"source_period_id"` // REQUIRED
	PeriodType     string `bigquery:"period_type"`      // REQUIRED

	PeriodStart civil.Date `bigquery:"period_start"` // REQUIRED
	PeriodEnd   civil.Date `bigquery:"period_end"`   // REQUIRED

	BillsCount       int64   `bigquery:"bills_count"`
	BillsTotalDue    float64 `bigquery:"bills_total_due"`
	BillsTotalPaid   float64 `bigquery:"bills_total_paid"`
	BillsTotalUnpaid float64 `bigquery:"bills_total_unpaid"`
	BillsProgressPct int64   `bigquery:"bills_progress_pct"`

	IncomeCount       int64   `bigquery:"income_count"`
	IncomeTotalDue    float64 `bigquery:"income_total_due"`
	IncomeTotalPaid   float64 `bigquery:"income_total_paid"`
	IncomeTotalUnpaid float64 `bigquery:"income_total_unpaid"`
	IncomeProgressPct int64   `bigquery:"income_progress_pct"`

	BudgetsCount          int64   `bigquery:"budgets_count"`
	BudgetsTotalAllocated float64 `bigquery:"budgets_total_allocated"`
	BudgetsTotalSpent     float64 `bigquery:"budgets_total_spent"`
	BudgetsTotalRemaining float64 `bigquery:"budgets_total_remaining"`
	BudgetsOverCount      int64   `bigquery:"budgets_over_count"`
	BudgetsProgressPct    int64   `bigquery:"budgets_progress_pct"`

	TotalIncome   float64 `bigquery:"total_income"`
	TotalExpenses float64 `bigquery:"total_expenses"`
	NetCashFlow   float64 `bigquery:"net_cash_flow"`
	SavingsRate   float64 `bigquery:"savings_rate"`

	GeneratedTS time.Time `bigquery:"generated_ts"` // REQUIRED
	ExportedTS  time.Time `bigquery:"exported_ts"`  // REQUIRED
}

// NewSummaryRow flattens a period summary into its table row.
func NewSummaryRow(s domain.PeriodSummary) *SummaryRow {
	return &SummaryRow{
		SummaryID:      s.ID,
		OwnerID:        s.OwnerID,
		SourcePeriodID: s.SourcePeriodID,
		PeriodType:     string(s.PeriodType),
		PeriodStart:    s.Start,
		PeriodEnd:      s.End,

		BillsCount:       int64(s.Bills.Count),
		BillsTotalDue:    s.Bills.TotalDue,
		BillsTotalPaid:   s.Bills.TotalPaid,
		BillsTotalUnpaid: s.Bills.TotalUnpaid,
		BillsProgressPct: int64(s.Bills.ProgressPercentage),

		IncomeCount:       int64(s.Income.Count),
		IncomeTotalDue:    s.Income.TotalDue,
		IncomeTotalPaid:   s.Income.TotalPaid,
		IncomeTotalUnpaid: s.Income.TotalUnpaid,
		IncomeProgressPct: int64(s.Income.ProgressPercentage),

		BudgetsCount:          int64(s.Budgets.Count),
		BudgetsTotalAllocated: s.Budgets.TotalAllocated,
		BudgetsTotalSpent:     s.Budgets.TotalSpent,
		BudgetsTotalRemaining: s.Budgets.TotalRemaining,
		BudgetsOverCount:      int64(s.Budgets.OverBudgetCount),
		BudgetsProgressPct:    int64(s.Budgets.ProgressPercentage),

		TotalIncome:   s.TotalIncome,
		TotalExpenses: s.TotalExpenses,
		NetCashFlow:   s.NetCashFlow,
		SavingsRate:   s.SavingsRate,

		GeneratedTS: s.GeneratedAt,
		ExportedTS:  time.Now().UTC(),
	}
}
