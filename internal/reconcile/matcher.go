package reconcile

import (
	"math"
	"sort"

	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
)

// MatchedByEngine marks occurrences matched by the automatic recompute, as
// opposed to a manual link made by a user.
const MatchedByEngine = "engine"

// Matcher attaches transactions to the occurrences of one obligation period.
type Matcher struct {
	Thresholds Thresholds
	// MatchedBy is recorded on every occurrence this matcher pays.
	MatchedBy string
}

// NewMatcher returns a matcher with the given thresholds acting as the engine.
func NewMatcher(t Thresholds) Matcher {
	return Matcher{Thresholds: t, MatchedBy: MatchedByEngine}
}

// MatchOccurrences reconciles with the default thresholds.
func MatchOccurrences(op domain.ObligationPeriod, ob domain.Obligation, txns []domain.Transaction) domain.ObligationPeriod {
	return NewMatcher(DefaultThresholds()).Match(op, ob, txns)
}

// Match recomputes the period's occurrences and totals from scratch. It
// never consults previous match state, so running it twice over identical
// inputs yields identical output and concurrent re-triggers converge.
//
// Transactions dated inside the period are assigned, in date order, each to
// the nearest not-yet-paid occurrence by due-date proximity; ties break to
// the earliest occurrence. Once every occurrence is paid, further matches
// are ignored. Raw amounts keep their upstream sign, so paid amounts are
// recorded as magnitudes.
func (m Matcher) Match(op domain.ObligationPeriod, ob domain.Obligation, txns []domain.Transaction) domain.ObligationPeriod {
	out := op
	if len(op.Occurrences) == 0 {
		out.Occurrences = BuildOccurrences(ob, op.Start, op.End)
	} else {
		out.Occurrences = make([]domain.Occurrence, len(op.Occurrences))
		copy(out.Occurrences, op.Occurrences)
		for i := range out.Occurrences {
			resetOccurrence(&out.Occurrences[i])
		}
	}

	matched := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if !t.Date.Before(op.Start) && !t.Date.After(op.End) {
			matched = append(matched, t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].ID < matched[j].ID
	})

	for _, t := range matched {
		idx := nearestUnpaid(out.Occurrences, t)
		if idx < 0 {
			continue
		}
		occ := &out.Occurrences[idx]
		occ.Paid = true
		occ.TransactionID = t.ID
		occ.SplitID = obligationSplitID(t, ob.ID)
		occ.ActualAmount = domain.RoundCents(math.Abs(t.Amount))
		occ.PaidDate = t.Date
		occ.Payment = ClassifyWith(m.Thresholds, t.Date, occ.DueDate, occ.ExpectedAmount, occ.ActualAmount)
		occ.MatchedBy = m.MatchedBy
	}

	recomputeTotals(&out)
	return out
}

func resetOccurrence(o *domain.Occurrence) {
	o.Paid = false
	o.TransactionID = ""
	o.SplitID = ""
	o.ActualAmount = 0
	o.PaidDate = civil.Date{}
	o.Payment = ""
	o.MatchedBy = ""
}

// nearestUnpaid returns the index of the unpaid occurrence closest to the
// transaction date, earliest index on ties, or -1 when all are paid.
func nearestUnpaid(occs []domain.Occurrence, t domain.Transaction) int {
	best := -1
	bestDist := 0
	for i, o := range occs {
		if o.Paid {
			continue
		}
		dist := t.Date.DaysSince(o.DueDate)
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// obligationSplitID finds the split attributing the transaction to the
// obligation, if any.
func obligationSplitID(t domain.Transaction, obligationID string) string {
	for _, s := range t.Splits {
		if s.ObligationID == obligationID {
			return s.ID
		}
	}
	return ""
}

// recomputeTotals rebuilds every derived field from the occurrence array.
// occurrencesPaid + occurrencesUnpaid always equals occurrencesInPeriod, and
// paid + unpaid equals due within one cent unless the period is overpaid:
// unpaid is a remaining balance and is floored at zero, so an
// extra-principal payment never produces a negative amount owing.
func recomputeTotals(p *domain.ObligationPeriod) {
	var due, paid float64
	var paidCount int
	for _, o := range p.Occurrences {
		due += o.ExpectedAmount
		if o.Paid {
			paid += o.ActualAmount
			paidCount++
		}
	}
	p.TotalAmountDue = domain.RoundCents(due)
	p.TotalAmountPaid = domain.RoundCents(paid)
	p.TotalAmountUnpaid = domain.RoundCents(math.Max(0, p.TotalAmountDue-p.TotalAmountPaid))
	p.OccurrencesInPeriod = len(p.Occurrences)
	p.OccurrencesPaid = paidCount
	p.OccurrencesUnpaid = len(p.Occurrences) - paidCount
}
