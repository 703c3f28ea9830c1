package domain

// PeriodType identifies the calendar granularity of a source period.
type PeriodType string

const (
	// PeriodWeekly covers Sunday through Saturday.
	PeriodWeekly PeriodType = "WEEKLY"
	// PeriodMonthly covers the first through the last calendar day of a month.
	PeriodMonthly PeriodType = "MONTHLY"
	// PeriodBiMonthly splits a month at day 15/16.
	PeriodBiMonthly PeriodType = "BI_MONTHLY"
)

// PeriodTypes lists all period types in generation order.
var PeriodTypes = []PeriodType{PeriodWeekly, PeriodMonthly, PeriodBiMonthly}

// PaymentType classifies the timing of a matched payment relative to its
// occurrence due date. Classification is advisory metadata only; it never
// changes amount totals or paid state.
type PaymentType string

const (
	// PaymentRegular is a payment on the due date or within the advance window before it.
	PaymentRegular PaymentType = "REGULAR"
	// PaymentAdvance is a payment made more than the advance window before the due date.
	PaymentAdvance PaymentType = "ADVANCE"
	// PaymentCatchUp is a payment made after the due date.
	PaymentCatchUp PaymentType = "CATCH_UP"
	// PaymentExtraPrincipal is a payment exceeding the expected amount by more
	// than the configured ratio, regardless of timing.
	PaymentExtraPrincipal PaymentType = "EXTRA_PRINCIPAL"
)

// PeriodStatus is the derived payment status of one obligation period.
// Status is recomputed fresh on every read; it is never stored as a
// transition history and has no terminal state.
type PeriodStatus string

const (
	// StatusPending indicates no occurrence is due yet and nothing is paid.
	StatusPending PeriodStatus = "PENDING"
	// StatusDueSoon indicates an unpaid occurrence falls due within the lead window.
	StatusDueSoon PeriodStatus = "DUE_SOON"
	// StatusPartial indicates some but not all occurrences are paid.
	StatusPartial PeriodStatus = "PARTIAL"
	// StatusPaid indicates every occurrence is paid and the paid total covers the due total.
	StatusPaid PeriodStatus = "PAID"
	// StatusPaidEarly indicates StatusPaid where every payment preceded its due date.
	StatusPaidEarly PeriodStatus = "PAID_EARLY"
	// StatusOverdue indicates nothing is paid and the earliest due date has passed.
	StatusOverdue PeriodStatus = "OVERDUE"
)

// ObligationKind distinguishes bills from income streams.
type ObligationKind string

const (
	KindBill   ObligationKind = "BILL"
	KindIncome ObligationKind = "INCOME"
)

// Frequency is how often an obligation is expected to occur.
type Frequency string

const (
	FreqWeekly      Frequency = "WEEKLY"
	FreqBiWeekly    Frequency = "BI_WEEKLY"
	FreqSemiMonthly Frequency = "SEMI_MONTHLY"
	FreqMonthly     Frequency = "MONTHLY"
)
