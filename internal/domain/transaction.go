package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// Transaction is an atomic financial event. Amount keeps the raw sign from
// the upstream source (bank convention stores expenses as negative); the
// reconciliation engine works with magnitudes. Splits is never empty for a
// stored transaction; the redistributor repairs lists that drift.
type Transaction struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Date        civil.Date `json:"date"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`

	Splits []Split `json:"splits"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Split allocates a portion of a transaction's amount to a budget and/or
// obligation. For any transaction the split amounts sum to the transaction
// amount within one cent, and no split is below one cent while the
// transaction amount is positive.
type Split struct {
	ID           string  `json:"id"`
	BudgetID     string  `json:"budget_id,omitempty"`
	ObligationID string  `json:"obligation_id,omitempty"`
	Amount       float64 `json:"amount"`
}

// IsUnallocated reports whether the split is not attributed to any budget or
// obligation. The redistributor appends such splits to carry remainders.
func (s Split) IsUnallocated() bool {
	return s.BudgetID == "" && s.ObligationID == ""
}

// SplitTotal sums the transaction's split amounts.
func (t Transaction) SplitTotal() float64 {
	var total float64
	for _, s := range t.Splits {
		total += s.Amount
	}
	return total
}
