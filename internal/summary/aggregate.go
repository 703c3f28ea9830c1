// Package summary rolls obligation and budget periods up into per-owner
// period summaries. Aggregation is a pure fold over current period
// documents; the result fully replaces any prior summary, which is what
// keeps the totals drift-free under concurrent recomputes.
package summary

import (
	"math"
	"time"

	"github.com/ovolkov/billflow/internal/domain"
)

// Aggregate computes the summary for one owner and one source period from
// all of that period's obligation and budget period documents. Inputs whose
// owner or source period do not match are the caller's filtering bug and are
// counted anyway; store-level lookups do the filtering.
func Aggregate(ownerID string, sp domain.SourcePeriod, obligationPeriods []*domain.ObligationPeriod, budgetPeriods []*domain.BudgetPeriod) domain.PeriodSummary {
	s := domain.PeriodSummary{
		ID:             ownerID + "-" + sp.ID,
		OwnerID:        ownerID,
		SourcePeriodID: sp.ID,
		PeriodType:     sp.Type,
		Start:          sp.Start,
		End:            sp.End,
		GeneratedAt:    time.Now().UTC(),
	}

	for _, p := range obligationPeriods {
		t := &s.Bills
		if p.ObligationKind == domain.KindIncome {
			t = &s.Income
		}
		t.Count++
		t.TotalDue += p.TotalAmountDue
		t.TotalPaid += p.TotalAmountPaid
		t.TotalUnpaid += p.TotalAmountUnpaid
	}
	finishResourceTotals(&s.Bills)
	finishResourceTotals(&s.Income)

	for _, b := range budgetPeriods {
		s.Budgets.Count++
		s.Budgets.TotalAllocated += b.TotalAllocated
		s.Budgets.TotalSpent += b.TotalSpent
		s.Budgets.TotalRemaining += b.TotalRemaining
		if b.IsOverBudget() {
			s.Budgets.OverBudgetCount++
		}
	}
	s.Budgets.TotalAllocated = domain.RoundCents(s.Budgets.TotalAllocated)
	s.Budgets.TotalSpent = domain.RoundCents(s.Budgets.TotalSpent)
	s.Budgets.TotalRemaining = domain.RoundCents(s.Budgets.TotalRemaining)
	s.Budgets.ProgressPercentage = progress(s.Budgets.TotalSpent, s.Budgets.TotalAllocated)

	s.TotalIncome = s.Income.TotalPaid
	s.TotalExpenses = domain.RoundCents(s.Bills.TotalPaid + s.Budgets.TotalSpent)
	s.NetCashFlow = domain.RoundCents(s.TotalIncome - s.TotalExpenses)
	if s.TotalIncome > 0 {
		s.SavingsRate = s.NetCashFlow / s.TotalIncome
	}
	return s
}

func finishResourceTotals(t *domain.ResourceTotals) {
	t.TotalDue = domain.RoundCents(t.TotalDue)
	t.TotalPaid = domain.RoundCents(t.TotalPaid)
	t.TotalUnpaid = domain.RoundCents(t.TotalUnpaid)
	t.ProgressPercentage = progress(t.TotalPaid, t.TotalDue)
}

// progress returns round(part/whole*100), and 0 rather than NaN or Inf when
// the whole is zero (a zero-allocated catch-all budget is a normal input).
func progress(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}
