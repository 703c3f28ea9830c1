// Package splits keeps a transaction's split list consistent with its total
// amount. Redistribution is transaction-local: it needs nothing but the
// amount and the current splits, and its output always sums to the amount
// within one cent with no split below the one-cent minimum.
package splits

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ovolkov/billflow/internal/domain"
)

// singleSplitDeviationRatio is the deviation above which a lone split is
// snapped to the transaction amount instead of being corrected.
const singleSplitDeviationRatio = 0.10

var (
	cent    = decimal.New(1, -2)
	hundred = decimal.New(100, 0)
)

// Redistribute returns a split list whose amounts sum to the transaction
// amount within one cent. Valid input is returned as an unchanged copy.
// Overages scale every split proportionally; underages fold sub-cent splits
// away and carry the remainder in a new unallocated split. The input slice
// is never mutated.
func Redistribute(amount float64, in []domain.Split) []domain.Split {
	// The engine reconciles magnitudes; upstream sign conventions are the
	// matcher's concern.
	amount = math.Abs(amount)

	out := make([]domain.Split, len(in))
	copy(out, in)

	total := splitTotal(out)

	if domain.AmountsEqual(amount, total) && !anyBelowMinimum(amount, out) {
		return out
	}

	if len(out) == 1 && math.Abs(amount-total) > singleSplitDeviationRatio*amount {
		out[0].Amount = domain.RoundCents(amount)
		return out
	}

	if total > amount {
		return scaleDown(amount, out)
	}
	return fillUnderage(amount, out)
}

// scaleDown multiplies every split by amount/total, rounds to cents, then
// walks the residual rounding error out cent-by-cent starting from the last
// split so the totals match exactly.
func scaleDown(amount float64, splits []domain.Split) []domain.Split {
	target := decimal.NewFromFloat(amount).Round(2)
	total := decimal.NewFromFloat(splitTotal(splits))
	if total.IsZero() {
		return splits
	}
	ratio := target.Div(total)

	scaled := make([]decimal.Decimal, len(splits))
	sum := decimal.Zero
	for i, s := range splits {
		scaled[i] = decimal.NewFromFloat(s.Amount).Mul(ratio).Round(2)
		sum = sum.Add(scaled[i])
	}

	// Residual is a whole number of cents after rounding each share.
	residualCents := target.Sub(sum).Mul(hundred).Round(0).IntPart()
	step := cent
	if residualCents < 0 {
		step = cent.Neg()
		residualCents = -residualCents
	}
	for i := len(scaled) - 1; residualCents > 0; i-- {
		if i < 0 {
			i = len(scaled) - 1
		}
		scaled[i] = scaled[i].Add(step)
		residualCents--
	}

	for i := range splits {
		if amount > 0 && scaled[i].LessThan(cent) {
			scaled[i] = cent
		}
		f, _ := scaled[i].Float64()
		splits[i].Amount = f
	}
	return splits
}

// fillUnderage drops sub-cent splits, folds their amounts into the
// remainder, and carries the remainder either into the largest split (when
// below one cent) or a new unallocated split.
func fillUnderage(amount float64, splits []domain.Split) []domain.Split {
	target := decimal.NewFromFloat(amount).Round(2)

	kept := splits[:0]
	keptSum := decimal.Zero
	for _, s := range splits {
		if amount > 0 && decimal.NewFromFloat(s.Amount).LessThan(cent) {
			continue
		}
		d := decimal.NewFromFloat(s.Amount).Round(2)
		f, _ := d.Float64()
		s.Amount = f
		kept = append(kept, s)
		keptSum = keptSum.Add(d)
	}

	remainder := target.Sub(keptSum)
	if remainder.LessThanOrEqual(decimal.Zero) {
		if remainder.IsNegative() {
			// Folding sub-cent splits away can only shrink the total, so a
			// negative remainder means the kept splits already overshoot;
			// rescale them instead.
			return scaleDown(amount, kept)
		}
		return kept
	}

	if remainder.LessThan(cent) {
		if len(kept) == 0 {
			return kept
		}
		largest := 0
		for i, s := range kept {
			if s.Amount > kept[largest].Amount {
				largest = i
			}
		}
		d := decimal.NewFromFloat(kept[largest].Amount).Add(remainder).Round(2)
		f, _ := d.Float64()
		kept[largest].Amount = f
		return kept
	}

	f, _ := remainder.Float64()
	return append(kept, domain.Split{ID: uuid.NewString(), Amount: f})
}

func splitTotal(splits []domain.Split) float64 {
	var total float64
	for _, s := range splits {
		total += s.Amount
	}
	return total
}

func anyBelowMinimum(amount float64, splits []domain.Split) bool {
	if amount <= 0 {
		return false
	}
	for _, s := range splits {
		if s.Amount < domain.MinSplitAmount {
			return true
		}
	}
	return false
}
