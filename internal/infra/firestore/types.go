package firestore

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
)

// Document types mirror the domain structs field-for-field; dates are stored
// as YYYY-MM-DD strings so range queries order lexicographically.

type occurrenceDoc struct {
	ID             string  `firestore:"id"`
	DueDate        string  `firestore:"due_date"`
	ExpectedAmount float64 `firestore:"expected_amount"`
	Paid           bool    `firestore:"paid"`
	TransactionID  string  `firestore:"transaction_id"`
	SplitID        string  `firestore:"split_id"`
	ActualAmount   float64 `firestore:"actual_amount"`
	PaidDate       string  `firestore:"paid_date"`
	Payment        string  `firestore:"payment"`
	MatchedBy      string  `firestore:"matched_by"`
}

type obligationPeriodDoc struct {
	ID             string `firestore:"id"`
	OwnerID        string `firestore:"owner_id"`
	ObligationID   string `firestore:"obligation_id"`
	ObligationKind string `firestore:"obligation_kind"`
	SourcePeriodID string `firestore:"source_period_id"`
	PeriodType     string `firestore:"period_type"`
	Start          string `firestore:"start"`
	End            string `firestore:"end"`

	TotalAmountDue    float64 `firestore:"total_amount_due"`
	TotalAmountPaid   float64 `firestore:"total_amount_paid"`
	TotalAmountUnpaid float64 `firestore:"total_amount_unpaid"`

	OccurrencesInPeriod int `firestore:"occurrences_in_period"`
	OccurrencesPaid     int `firestore:"occurrences_paid"`
	OccurrencesUnpaid   int `firestore:"occurrences_unpaid"`

	Occurrences []occurrenceDoc `firestore:"occurrences"`

	UpdatedAt time.Time `firestore:"updated_at"`
}

type budgetPeriodDoc struct {
	ID             string `firestore:"id"`
	OwnerID        string `firestore:"owner_id"`
	BudgetID       string `firestore:"budget_id"`
	Name           string `firestore:"name"`
	SourcePeriodID string `firestore:"source_period_id"`
	PeriodType     string `firestore:"period_type"`
	Start          string `firestore:"start"`
	End            string `firestore:"end"`

	TotalAllocated   float64 `firestore:"total_allocated"`
	TotalSpent       float64 `firestore:"total_spent"`
	TotalRemaining   float64 `firestore:"total_remaining"`
	TransactionCount int     `firestore:"transaction_count"`

	UpdatedAt time.Time `firestore:"updated_at"`
}

type splitDoc struct {
	ID           string  `firestore:"id"`
	BudgetID     string  `firestore:"budget_id"`
	ObligationID string  `firestore:"obligation_id"`
	Amount       float64 `firestore:"amount"`
}

type transactionDoc struct {
	ID          string     `firestore:"id"`
	OwnerID     string     `firestore:"owner_id"`
	Date        string     `firestore:"date"`
	Amount      float64    `firestore:"amount"`
	Description string     `firestore:"description"`
	Splits      []splitDoc `firestore:"splits"`
	CreatedAt   time.Time  `firestore:"created_at"`
	UpdatedAt   time.Time  `firestore:"updated_at"`
}

type obligationDoc struct {
	ID             string    `firestore:"id"`
	OwnerID        string    `firestore:"owner_id"`
	Name           string    `firestore:"name"`
	Kind           string    `firestore:"kind"`
	Amount         float64   `firestore:"amount"`
	Frequency      string    `firestore:"frequency"`
	FirstSeen      string    `firestore:"first_seen"`
	LastSeen       string    `firestore:"last_seen"`
	TransactionIDs []string  `firestore:"transaction_ids"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

type resourceTotalsDoc struct {
	Count              int     `firestore:"count"`
	TotalDue           float64 `firestore:"total_due"`
	TotalPaid          float64 `firestore:"total_paid"`
	TotalUnpaid        float64 `firestore:"total_unpaid"`
	ProgressPercentage int     `firestore:"progress_percentage"`
}

type budgetTotalsDoc struct {
	Count              int     `firestore:"count"`
	TotalAllocated     float64 `firestore:"total_allocated"`
	TotalSpent         float64 `firestore:"total_spent"`
	TotalRemaining     float64 `firestore:"total_remaining"`
	OverBudgetCount    int     `firestore:"over_budget_count"`
	ProgressPercentage int     `firestore:"progress_percentage"`
}

type summaryDoc struct {
	ID             string `firestore:"id"`
	OwnerID        string `firestore:"owner_id"`
	SourcePeriodID string `firestore:"source_period_id"`
	PeriodType     string `firestore:"period_type"`
	Start          string `firestore:"start"`
	End            string `firestore:"end"`

	Bills   resourceTotalsDoc `firestore:"bills"`
	Income  resourceTotalsDoc `firestore:"income"`
	Budgets budgetTotalsDoc   `firestore:"budgets"`

	TotalIncome   float64 `firestore:"total_income"`
	TotalExpenses float64 `firestore:"total_expenses"`
	NetCashFlow   float64 `firestore:"net_cash_flow"`
	SavingsRate   float64 `firestore:"savings_rate"`

	GeneratedAt time.Time `firestore:"generated_at"`
}

func formatDate(d civil.Date) string {
	if !d.IsValid() {
		return ""
	}
	return d.String()
}

func parseDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return d, nil
}

func toObligationPeriodDoc(p *domain.ObligationPeriod) *obligationPeriodDoc {
	doc := &obligationPeriodDoc{
		ID:                  p.ID,
		OwnerID:             p.OwnerID,
		ObligationID:        p.ObligationID,
		ObligationKind:      string(p.ObligationKind),
		SourcePeriodID:      p.SourcePeriodID,
		PeriodType:          string(p.PeriodType),
		Start:               formatDate(p.Start),
		End:                 formatDate(p.End),
		TotalAmountDue:      p.TotalAmountDue,
		TotalAmountPaid:     p.TotalAmountPaid,
		TotalAmountUnpaid:   p.TotalAmountUnpaid,
		OccurrencesInPeriod: p.OccurrencesInPeriod,
		OccurrencesPaid:     p.OccurrencesPaid,
		OccurrencesUnpaid:   p.OccurrencesUnpaid,
		UpdatedAt:           p.UpdatedAt,
	}
	doc.Occurrences = make([]occurrenceDoc, 0, len(p.Occurrences))
	for _, o := range p.Occurrences {
		doc.Occurrences = append(doc.Occurrences, occurrenceDoc{
			ID:             o.ID,
			DueDate:        formatDate(o.DueDate),
			ExpectedAmount: o.ExpectedAmount,
			Paid:           o.Paid,
			TransactionID:  o.TransactionID,
			SplitID:        o.SplitID,
			ActualAmount:   o.ActualAmount,
			PaidDate:       formatDate(o.PaidDate),
			Payment:        string(o.Payment),
			MatchedBy:      o.MatchedBy,
		})
	}
	return doc
}

func fromObligationPeriodDoc(doc *obligationPeriodDoc) (*domain.ObligationPeriod, error) {
	start, err := parseDate(doc.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(doc.End)
	if err != nil {
		return nil, err
	}
	p := &domain.ObligationPeriod{
		ID:                  doc.ID,
		OwnerID:             doc.OwnerID,
		ObligationID:        doc.ObligationID,
		ObligationKind:      domain.ObligationKind(doc.ObligationKind),
		SourcePeriodID:      doc.SourcePeriodID,
		PeriodType:          domain.PeriodType(doc.PeriodType),
		Start:               start,
		End:                 end,
		TotalAmountDue:      doc.TotalAmountDue,
		TotalAmountPaid:     doc.TotalAmountPaid,
		TotalAmountUnpaid:   doc.TotalAmountUnpaid,
		OccurrencesInPeriod: doc.OccurrencesInPeriod,
		OccurrencesPaid:     doc.OccurrencesPaid,
		OccurrencesUnpaid:   doc.OccurrencesUnpaid,
		UpdatedAt:           doc.UpdatedAt,
	}
	p.Occurrences = make([]domain.Occurrence, 0, len(doc.Occurrences))
	for _, o := range doc.Occurrences {
		due, err := parseDate(o.DueDate)
		if err != nil {
			return nil, err
		}
		paidDate, err := parseDate(o.PaidDate)
		if err != nil {
			return nil, err
		}
		p.Occurrences = append(p.Occurrences, domain.Occurrence{
			ID:             o.ID,
			DueDate:        due,
			ExpectedAmount: o.ExpectedAmount,
			Paid:           o.Paid,
			TransactionID:  o.TransactionID,
			SplitID:        o.SplitID,
			ActualAmount:   o.ActualAmount,
			PaidDate:       paidDate,
			Payment:        domain.PaymentType(o.Payment),
			MatchedBy:      o.MatchedBy,
		})
	}
	return p, nil
}

func toBudgetPeriodDoc(b *domain.BudgetPeriod) *budgetPeriodDoc {
	return &budgetPeriodDoc{
		ID:               b.ID,
		OwnerID:          b.OwnerID,
		BudgetID:         b.BudgetID,
		Name:             b.Name,
		SourcePeriodID:   b.SourcePeriodID,
		PeriodType:       string(b.PeriodType),
		Start:            formatDate(b.Start),
		End:              formatDate(b.End),
		TotalAllocated:   b.TotalAllocated,
		TotalSpent:       b.TotalSpent,
		TotalRemaining:   b.TotalRemaining,
		TransactionCount: b.TransactionCount,
		UpdatedAt:        b.UpdatedAt,
	}
}

func fromBudgetPeriodDoc(doc *budgetPeriodDoc) (*domain.BudgetPeriod, error) {
	start, err := parseDate(doc.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(doc.End)
	if err != nil {
		return nil, err
	}
	return &domain.BudgetPeriod{
		ID:               doc.ID,
		OwnerID:          doc.OwnerID,
		BudgetID:         doc.BudgetID,
		Name:             doc.Name,
		SourcePeriodID:   doc.SourcePeriodID,
		PeriodType:       domain.PeriodType(doc.PeriodType),
		Start:            start,
		End:              end,
		TotalAllocated:   doc.TotalAllocated,
		TotalSpent:       doc.TotalSpent,
		TotalRemaining:   doc.TotalRemaining,
		TransactionCount: doc.TransactionCount,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

func toTransactionDoc(t *domain.Transaction) *transactionDoc {
	doc := &transactionDoc{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Date:        formatDate(t.Date),
		Amount:      t.Amount,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	doc.Splits = make([]splitDoc, 0, len(t.Splits))
	for _, s := range t.Splits {
		doc.Splits = append(doc.Splits, splitDoc(s))
	}
	return doc
}

func fromTransactionDoc(doc *transactionDoc) (*domain.Transaction, error) {
	date, err := parseDate(doc.Date)
	if err != nil {
		return nil, err
	}
	t := &domain.Transaction{
		ID:          doc.ID,
		OwnerID:     doc.OwnerID,
		Date:        date,
		Amount:      doc.Amount,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	t.Splits = make([]domain.Split, 0, len(doc.Splits))
	for _, s := range doc.Splits {
		t.Splits = append(t.Splits, domain.Split(s))
	}
	return t, nil
}

func fromObligationDoc(doc *obligationDoc) (*domain.Obligation, error) {
	first, err := parseDate(doc.FirstSeen)
	if err != nil {
		return nil, err
	}
	last, err := parseDate(doc.LastSeen)
	if err != nil {
		return nil, err
	}
	return &domain.Obligation{
		ID:             doc.ID,
		OwnerID:        doc.OwnerID,
		Name:           doc.Name,
		Kind:           domain.ObligationKind(doc.Kind),
		Amount:         doc.Amount,
		Frequency:      domain.Frequency(doc.Frequency),
		FirstSeen:      first,
		LastSeen:       last,
		TransactionIDs: doc.TransactionIDs,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

func toSummaryDoc(s *domain.PeriodSummary) *summaryDoc {
	return &summaryDoc{
		ID:             s.ID,
		OwnerID:        s.OwnerID,
		SourcePeriodID: s.SourcePeriodID,
		PeriodType:     string(s.PeriodType),
		Start:          formatDate(s.Start),
		End:            formatDate(s.End),
		Bills:          resourceTotalsDoc(s.Bills),
		Income:         resourceTotalsDoc(s.Income),
		Budgets:        budgetTotalsDoc(s.Budgets),
		TotalIncome:    s.TotalIncome,
		TotalExpenses:  s.TotalExpenses,
		NetCashFlow:    s.NetCashFlow,
		SavingsRate:    s.SavingsRate,
		GeneratedAt:    s.GeneratedAt,
	}
}

func fromSummaryDoc(doc *summaryDoc) (*domain.PeriodSummary, error) {
	start, err := parseDate(doc.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(doc.End)
	if err != nil {
		return nil, err
	}
	return &domain.PeriodSummary{
		ID:             doc.ID,
		OwnerID:        doc.OwnerID,
		SourcePeriodID: doc.SourcePeriodID,
		PeriodType:     domain.PeriodType(doc.PeriodType),
		Start:          start,
		End:            end,
		Bills:          domain.ResourceTotals(doc.Bills),
		Income:         domain.ResourceTotals(doc.Income),
		Budgets:        domain.BudgetTotals(doc.Budgets),
		TotalIncome:    doc.TotalIncome,
		TotalExpenses:  doc.TotalExpenses,
		NetCashFlow:    doc.NetCashFlow,
		SavingsRate:    doc.SavingsRate,
		GeneratedAt:    doc.GeneratedAt,
	}, nil
}
