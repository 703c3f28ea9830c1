package reconcile

import (
	"reflect"
	"testing"
	"time"

	"github.com/ovolkov/billflow/internal/domain"
)

func mortgageFixture() (domain.ObligationPeriod, domain.Obligation) {
	ob := domain.Obligation{
		ID:        "ob-mortgage",
		OwnerID:   "owner-1",
		Name:      "Mortgage",
		Kind:      domain.KindBill,
		Amount:    1000,
		Frequency: domain.FreqSemiMonthly,
		FirstSeen: date(2025, time.November, 3),
	}
	op := domain.ObligationPeriod{
		ID:             "op-mortgage-2026-01",
		OwnerID:        "owner-1",
		ObligationID:   ob.ID,
		ObligationKind: ob.Kind,
		SourcePeriodID: "MONTHLY-2026-01",
		PeriodType:     domain.PeriodMonthly,
		Start:          date(2026, time.January, 1),
		End:            date(2026, time.January, 31),
	}
	return op, ob
}

func TestMatch_TwoOccurrencesTwoPayments(t *testing.T) {
	op, ob := mortgageFixture()
	txns := []domain.Transaction{
		{
			ID:      "tx-1",
			OwnerID: "owner-1",
			Date:    date(2026, time.January, 3),
			Amount:  1000,
			Splits:  []domain.Split{{ID: "sp-1", ObligationID: ob.ID, Amount: 1000}},
		},
		{
			ID:      "tx-2",
			OwnerID: "owner-1",
			Date:    date(2026, time.January, 17),
			Amount:  1000,
			Splits:  []domain.Split{{ID: "sp-2", ObligationID: ob.ID, Amount: 1000}},
		},
	}

	got := MatchOccurrences(op, ob, txns)

	if got.OccurrencesInPeriod != 2 || got.OccurrencesPaid != 2 || got.OccurrencesUnpaid != 0 {
		t.Errorf("unexpected counts: in=%d paid=%d unpaid=%d",
			got.OccurrencesInPeriod, got.OccurrencesPaid, got.OccurrencesUnpaid)
	}
	if got.TotalAmountDue != 2000 || got.TotalAmountPaid != 2000 || got.TotalAmountUnpaid != 0 {
		t.Errorf("unexpected totals: due=%.2f paid=%.2f unpaid=%.2f",
			got.TotalAmountDue, got.TotalAmountPaid, got.TotalAmountUnpaid)
	}
	if !got.IsFullyPaid() {
		t.Error("expected period fully paid")
	}

	first := got.Occurrences[0]
	if first.TransactionID != "tx-1" || first.SplitID != "sp-1" {
		t.Errorf("first occurrence linked to %s/%s, want tx-1/sp-1", first.TransactionID, first.SplitID)
	}
	if first.Payment != domain.PaymentRegular {
		t.Errorf("first occurrence payment = %s, want REGULAR", first.Payment)
	}
	if first.MatchedBy != MatchedByEngine {
		t.Errorf("matched_by = %s, want %s", first.MatchedBy, MatchedByEngine)
	}
	second := got.Occurrences[1]
	if second.TransactionID != "tx-2" {
		t.Errorf("second occurrence linked to %s, want tx-2", second.TransactionID)
	}
}

func TestMatch_PartialPayment(t *testing.T) {
	op, ob := mortgageFixture()
	txns := []domain.Transaction{
		{ID: "tx-1", OwnerID: "owner-1", Date: date(2026, time.January, 3), Amount: 1000},
	}

	got := MatchOccurrences(op, ob, txns)

	if got.OccurrencesPaid != 1 || got.OccurrencesUnpaid != 1 {
		t.Errorf("unexpected counts: paid=%d unpaid=%d", got.OccurrencesPaid, got.OccurrencesUnpaid)
	}
	if got.TotalAmountPaid != 1000 || got.TotalAmountUnpaid != 1000 {
		t.Errorf("unexpected totals: paid=%.2f unpaid=%.2f", got.TotalAmountPaid, got.TotalAmountUnpaid)
	}
	if !got.IsPartiallyPaid() {
		t.Error("expected partially paid period")
	}
}

func TestMatch_NegativeAmountRecordedAsMagnitude(t *testing.T) {
	op, ob := mortgageFixture()
	// Upstream debits arrive sign-flipped.
	txns := []domain.Transaction{
		{ID: "tx-1", OwnerID: "owner-1", Date: date(2026, time.January, 3), Amount: -2500},
	}

	got := MatchOccurrences(op, ob, txns)

	if got.Occurrences[0].ActualAmount != 2500 {
		t.Errorf("actual amount = %.2f, want 2500", got.Occurrences[0].ActualAmount)
	}
	if got.Occurrences[0].Payment != domain.PaymentExtraPrincipal {
		t.Errorf("payment = %s, want EXTRA_PRINCIPAL", got.Occurrences[0].Payment)
	}
}

func TestMatch_OverpaidPeriodFloorsUnpaidAtZero(t *testing.T) {
	op, ob := mortgageFixture()
	txns := []domain.Transaction{
		{ID: "tx-1", OwnerID: "owner-1", Date: date(2026, time.January, 3), Amount: 2500},
		{ID: "tx-2", OwnerID: "owner-1", Date: date(2026, time.January, 17), Amount: 1000},
	}

	got := MatchOccurrences(op, ob, txns)

	if got.TotalAmountDue != 2000 || got.TotalAmountPaid != 3500 {
		t.Errorf("unexpected totals: due=%.2f paid=%.2f", got.TotalAmountDue, got.TotalAmountPaid)
	}
	// Unpaid is a remaining balance; overpayment never drives it negative.
	if got.TotalAmountUnpaid != 0 {
		t.Errorf("unpaid = %.2f, want 0", got.TotalAmountUnpaid)
	}
	if got.OccurrencesUnpaid != 0 {
		t.Errorf("occurrences unpaid = %d, want 0", got.OccurrencesUnpaid)
	}
}

func TestMatch_NearestOccurrenceWins(t *testing.T) {
	op, ob := mortgageFixture()
	// Jan 12 is 9 days past the first due and 5 before the second.
	txns := []domain.Transaction{
		{ID: "tx-1", OwnerID: "owner-1", Date: date(2026, time.January, 12), Amount: 1000},
	}

	got := MatchOccurrences(op, ob, txns)

	if got.Occurrences[0].Paid {
		t.Error("expected first occurrence unpaid")
	}
	if !got.Occurrences[1].Paid {
		t.Error("expected second occurrence paid")
	}
	if got.Occurrences[1].Payment != domain.PaymentRegular {
		t.Errorf("payment = %s, want REGULAR", got.Occurrences[1].Payment)
	}
}

func TestMatch_TieBreaksToEarliest(t *testing.T) {
	op, ob := mortgageFixture()
	// Jan 10 is equidistant from Jan 3 and Jan 17.
	txns := []domain.Transaction{
		{ID: "tx-1", OwnerID: "owner-1", Date: date(2026, time.January, 10), Amount: 1000},
	}

	got := MatchOccurrences(op, ob, txns)

	if !got.Occurrences[0].Paid {
		t.Error("expected tie to break to the earliest occurrence")
	}
	if got.Occurrences[1].Paid {
		t.Error("expected second occurrence unpaid")
	}
}

func TestMatch_ExtraTransactionsIgnored(t *testing.T) {
	op, ob := mortgageFixture()
	txns := []domain.Transaction{
		{ID: "tx-1", OwnerID: "owner-1", Date: date(2026, time.January, 3), Amount: 1000},
		{ID: "tx-2", OwnerID: "owner-1", Date: date(2026, time.January, 17), Amount: 1000},
		{ID: "tx-3", OwnerID: "owner-1", Date: date(2026, time.January, 20), Amount: 1000},
	}

	got := MatchOccurrences(op, ob, txns)

	if got.OccurrencesPaid != 2 {
		t.Errorf("paid count = %d, want 2", got.OccurrencesPaid)
	}
	for _, o := range got.Occurrences {
		if o.TransactionID == "tx-3" {
			t.Error("surplus transaction must not be linked")
		}
	}
	// Conservation holds even with surplus transactions.
	if got.OccurrencesPaid+got.OccurrencesUnpaid != got.OccurrencesInPeriod {
		t.Error("occurrence counts do not add up")
	}
}

func TestMatch_TransactionsOutsideWindowIgnored(t *testing.T) {
	op, ob := mortgageFixture()
	txns := []domain.Transaction{
		{ID: "tx-dec", OwnerID: "owner-1", Date: date(2025, time.December, 31), Amount: 1000},
		{ID: "tx-feb", OwnerID: "owner-1", Date: date(2026, time.February, 1), Amount: 1000},
	}

	got := MatchOccurrences(op, ob, txns)

	if got.OccurrencesPaid != 0 {
		t.Errorf("paid count = %d, want 0", got.OccurrencesPaid)
	}
}

func TestMatch_Idempotent(t *testing.T) {
	op, ob := mortgageFixture()
	txns := []domain.Transaction{
		{ID: "tx-1", OwnerID: "owner-1", Date: date(2026, time.January, 5), Amount: 1000},
	}

	once := MatchOccurrences(op, ob, txns)
	twice := MatchOccurrences(once, ob, txns)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("rematching changed the period:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMatch_RematchAfterTransactionRemoved(t *testing.T) {
	op, ob := mortgageFixture()
	txns := []domain.Transaction{
		{ID: "tx-1", OwnerID: "owner-1", Date: date(2026, time.January, 3), Amount: 1000},
	}

	matched := MatchOccurrences(op, ob, txns)
	if matched.OccurrencesPaid != 1 {
		t.Fatalf("setup: paid count = %d, want 1", matched.OccurrencesPaid)
	}
	ids := []string{matched.Occurrences[0].ID, matched.Occurrences[1].ID}

	// Rematch with no transactions: paid state resets, skeleton ids survive.
	cleared := MatchOccurrences(matched, ob, nil)

	if cleared.OccurrencesPaid != 0 || cleared.TotalAmountPaid != 0 {
		t.Errorf("expected cleared period, got paid=%d amount=%.2f",
			cleared.OccurrencesPaid, cleared.TotalAmountPaid)
	}
	if cleared.Occurrences[0].ID != ids[0] || cleared.Occurrences[1].ID != ids[1] {
		t.Error("occurrence ids must survive rematching")
	}
	if cleared.Occurrences[0].TransactionID != "" || cleared.Occurrences[0].Payment != "" {
		t.Errorf("expected reset occurrence, got %+v", cleared.Occurrences[0])
	}
}

func TestMatch_DeterministicOrderForSameDay(t *testing.T) {
	op, ob := mortgageFixture()
	a := domain.Transaction{ID: "tx-a", OwnerID: "owner-1", Date: date(2026, time.January, 3), Amount: 1000}
	b := domain.Transaction{ID: "tx-b", OwnerID: "owner-1", Date: date(2026, time.January, 3), Amount: 1000}

	got1 := MatchOccurrences(op, ob, []domain.Transaction{a, b})
	got2 := MatchOccurrences(op, ob, []domain.Transaction{b, a})

	if got1.Occurrences[0].TransactionID != got2.Occurrences[0].TransactionID {
		t.Error("same-day transactions must match in a stable order")
	}
	if got1.Occurrences[0].TransactionID != "tx-a" {
		t.Errorf("expected lexicographically first transaction, got %s", got1.Occurrences[0].TransactionID)
	}
}
