package reconcile

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
)

func periodWith(occs ...domain.Occurrence) domain.ObligationPeriod {
	p := domain.ObligationPeriod{Occurrences: occs}
	recomputeTotals(&p)
	return p
}

func paidOcc(due, paid civil.Date, amount float64) domain.Occurrence {
	return domain.Occurrence{
		DueDate:        due,
		ExpectedAmount: amount,
		Paid:           true,
		ActualAmount:   amount,
		PaidDate:       paid,
	}
}

func unpaidOcc(due civil.Date, amount float64) domain.Occurrence {
	return domain.Occurrence{DueDate: due, ExpectedAmount: amount}
}

func TestDeriveStatus(t *testing.T) {
	due := date(2026, time.January, 15)

	tests := []struct {
		name   string
		period domain.ObligationPeriod
		now    civil.Date
		want   domain.PeriodStatus
	}{
		{
			name:   "no occurrences",
			period: periodWith(),
			now:    due,
			want:   domain.StatusPending,
		},
		{
			name:   "unpaid and far from due",
			period: periodWith(unpaidOcc(due, 100)),
			now:    date(2026, time.January, 5),
			want:   domain.StatusPending,
		},
		{
			name:   "unpaid three days before due",
			period: periodWith(unpaidOcc(due, 100)),
			now:    date(2026, time.January, 12),
			want:   domain.StatusDueSoon,
		},
		{
			name:   "unpaid on the due date",
			period: periodWith(unpaidOcc(due, 100)),
			now:    due,
			want:   domain.StatusDueSoon,
		},
		{
			name:   "unpaid past the due date",
			period: periodWith(unpaidOcc(due, 100)),
			now:    date(2026, time.January, 16),
			want:   domain.StatusOverdue,
		},
		{
			name: "some occurrences paid",
			period: periodWith(
				paidOcc(due, due, 100),
				unpaidOcc(date(2026, time.January, 29), 100),
			),
			now:  date(2026, time.January, 20),
			want: domain.StatusPartial,
		},
		{
			name: "partial outranks overdue",
			period: periodWith(
				paidOcc(due, due, 100),
				unpaidOcc(date(2026, time.January, 16), 100),
			),
			now:  date(2026, time.January, 25),
			want: domain.StatusPartial,
		},
		{
			name:   "paid on the due date",
			period: periodWith(paidOcc(due, due, 100)),
			now:    date(2026, time.January, 20),
			want:   domain.StatusPaid,
		},
		{
			name: "every occurrence paid before its due date",
			period: periodWith(
				paidOcc(due, date(2026, time.January, 10), 100),
				paidOcc(date(2026, time.January, 29), date(2026, time.January, 20), 100),
			),
			now:  date(2026, time.January, 30),
			want: domain.StatusPaidEarly,
		},
		{
			name: "one on-time payment demotes paid early",
			period: periodWith(
				paidOcc(due, date(2026, time.January, 10), 100),
				paidOcc(date(2026, time.January, 29), date(2026, time.January, 29), 100),
			),
			now:  date(2026, time.January, 30),
			want: domain.StatusPaid,
		},
		{
			name: "nothing paid positions against the earliest unpaid due",
			period: periodWith(
				unpaidOcc(date(2026, time.January, 29), 100),
				unpaidOcc(due, 100),
			),
			now:  date(2026, time.January, 16),
			want: domain.StatusOverdue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.period, tt.now, DefaultDueSoonDays)
			if got != tt.want {
				t.Errorf("DeriveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveStatus_CustomWindow(t *testing.T) {
	due := date(2026, time.June, 10)
	p := periodWith(unpaidOcc(due, 50))

	if got := DeriveStatus(p, date(2026, time.June, 1), 10); got != domain.StatusDueSoon {
		t.Errorf("nine days out with ten-day window = %s, want DUE_SOON", got)
	}
	if got := DeriveStatus(p, date(2026, time.June, 1), DefaultDueSoonDays); got != domain.StatusPending {
		t.Errorf("nine days out with default window = %s, want PENDING", got)
	}
}
