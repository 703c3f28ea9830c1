package reconcile

import (
	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
)

// Thresholds configure payment-timing classification. The advance window is
// configurable because observed data disagrees on the exact seven-day edge;
// a payment exactly AdvanceDays early classifies as REGULAR.
type Thresholds struct {
	// ExtraPrincipalRatio is the actual/expected ratio at or above which a
	// payment is EXTRA_PRINCIPAL regardless of timing.
	ExtraPrincipalRatio float64
	// AdvanceDays is how many days before the due date a payment must land
	// to be ADVANCE rather than REGULAR.
	AdvanceDays int
}

// ratioEpsilon keeps the inclusive ratio comparison stable when
// expected*ratio cannot be represented exactly.
const ratioEpsilon = 1e-9

// DefaultThresholds returns the stock classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{ExtraPrincipalRatio: 1.10, AdvanceDays: 7}
}

// Classify assigns a payment-timing category using the default thresholds.
func Classify(txDate, dueDate civil.Date, expected, actual float64) domain.PaymentType {
	return ClassifyWith(DefaultThresholds(), txDate, dueDate, expected, actual)
}

// ClassifyWith evaluates the classification rules in priority order: the
// amount rule first, then timing relative to the due date.
func ClassifyWith(t Thresholds, txDate, dueDate civil.Date, expected, actual float64) domain.PaymentType {
	// The ratio edge is inclusive: a payment of exactly ratio*expected is
	// extra principal. The epsilon absorbs float noise in the product.
	if expected > 0 && actual >= expected*t.ExtraPrincipalRatio-ratioEpsilon {
		return domain.PaymentExtraPrincipal
	}

	offsetDays := txDate.DaysSince(dueDate)
	switch {
	case offsetDays < -t.AdvanceDays:
		return domain.PaymentAdvance
	case offsetDays < 0:
		return domain.PaymentRegular
	case offsetDays > 0:
		return domain.PaymentCatchUp
	default:
		return domain.PaymentRegular
	}
}
