package domain

import "math"

// CentTolerance is the largest absolute difference at which two monetary
// amounts are considered equal. All sum-conservation invariants hold to
// within this tolerance.
const CentTolerance = 0.01

// MinSplitAmount is the smallest amount a split may carry while its
// transaction amount is positive.
const MinSplitAmount = 0.01

// AmountsEqual reports whether two amounts agree within one cent.
func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) <= CentTolerance+1e-9
}

// RoundCents rounds an amount to the nearest cent.
func RoundCents(a float64) float64 {
	return math.Round(a*100) / 100
}
