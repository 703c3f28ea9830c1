package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// Obligation is a recurring bill or income stream definition. An obligation
// belongs to exactly one owner; the amount is the expected magnitude of each
// occurrence, always positive regardless of direction.
type Obligation struct {
	ID      string         `json:"id"`
	OwnerID string         `json:"owner_id"`
	Name    string         `json:"name"`
	Kind    ObligationKind `json:"kind"`

	Amount    float64   `json:"amount"`
	Frequency Frequency `json:"frequency"`

	// FirstSeen anchors the occurrence schedule: due dates are projected
	// forward from it according to Frequency. LastSeen is the most recent
	// known occurrence date.
	FirstSeen civil.Date `json:"first_seen"`
	LastSeen  civil.Date `json:"last_seen"`

	// TransactionIDs links the historical transactions attributed to this
	// obligation. Entries may reference pruned transactions; readers skip
	// identifiers that no longer resolve.
	TransactionIDs []string `json:"transaction_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
