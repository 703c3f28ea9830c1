package firestore

import (
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
)

func TestTransactionDocConversion(t *testing.T) {
	txn := &domain.Transaction{
		ID:          "tx-1",
		OwnerID:     "owner-1",
		Date:        civil.Date{Year: 2026, Month: time.January, Day: 5},
		Amount:      -120.50,
		Description: "electric bill",
		Splits: []domain.Split{
			{ID: "sp-1", ObligationID: "ob-electric", Amount: 100.50},
			{ID: "sp-2", BudgetID: "b-utilities", Amount: 20},
		},
		CreatedAt: time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, time.January, 6, 9, 0, 0, 0, time.UTC),
	}

	doc := toTransactionDoc(txn)
	if doc.Date != "2026-01-05" {
		t.Errorf("expected date string 2026-01-05, got %q", doc.Date)
	}
	if len(doc.Splits) != 2 || doc.Splits[0].ObligationID != "ob-electric" {
		t.Errorf("unexpected split docs: %+v", doc.Splits)
	}

	back, err := fromTransactionDoc(doc)
	if err != nil {
		t.Fatalf("fromTransactionDoc() failed: %v", err)
	}
	if !reflect.DeepEqual(txn, back) {
		t.Errorf("round trip changed the transaction:\n got %+v\nwant %+v", back, txn)
	}
}

func TestTransactionDocBadDate(t *testing.T) {
	doc := &transactionDoc{ID: "tx-1", OwnerID: "owner-1", Date: "01/05/2026"}
	if _, err := fromTransactionDoc(doc); err == nil {
		t.Error("expected error for malformed date, got nil")
	}
}

func TestFormatDateZeroValue(t *testing.T) {
	// Unpaid occurrences carry a zero PaidDate; it must round-trip as empty.
	if got := formatDate(civil.Date{}); got != "" {
		t.Errorf("expected empty string for zero date, got %q", got)
	}
	d, err := parseDate("")
	if err != nil {
		t.Fatalf("parseDate(\"\") failed: %v", err)
	}
	if d != (civil.Date{}) {
		t.Errorf("expected zero date, got %s", d)
	}
}
