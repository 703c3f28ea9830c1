package reconcile

import (
	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
)

// DefaultDueSoonDays is the stock lead window for StatusDueSoon.
const DefaultDueSoonDays = 3

// DeriveStatus computes the payment status of one obligation period as of
// now. Status is a pure derivation over the period's occurrences; there is
// no stored transition history and no terminal state.
func DeriveStatus(p domain.ObligationPeriod, now civil.Date, dueSoonDays int) domain.PeriodStatus {
	if len(p.Occurrences) == 0 {
		return domain.StatusPending
	}

	if p.IsFullyPaid() {
		if allPaidEarly(p.Occurrences) {
			return domain.StatusPaidEarly
		}
		return domain.StatusPaid
	}

	if p.OccurrencesPaid > 0 {
		return domain.StatusPartial
	}

	// Nothing paid: position now against the earliest unpaid due date.
	due := earliestUnpaidDue(p.Occurrences)
	switch {
	case now.After(due):
		return domain.StatusOverdue
	case now.DaysSince(due) >= -dueSoonDays:
		return domain.StatusDueSoon
	default:
		return domain.StatusPending
	}
}

func allPaidEarly(occs []domain.Occurrence) bool {
	for _, o := range occs {
		if !o.Paid || !o.PaidDate.Before(o.DueDate) {
			return false
		}
	}
	return true
}

func earliestUnpaidDue(occs []domain.Occurrence) civil.Date {
	var due civil.Date
	found := false
	for _, o := range occs {
		if o.Paid {
			continue
		}
		if !found || o.DueDate.Before(due) {
			due = o.DueDate
			found = true
		}
	}
	return due
}
