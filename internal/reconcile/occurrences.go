package reconcile

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/ovolkov/billflow/internal/domain"
)

// BuildOccurrences projects an obligation's due dates into [start, end] and
// returns the unpaid occurrence skeleton for that window, ordered by due
// date. Each occurrence carries the obligation's per-occurrence amount.
// Called once when an obligation period is created; the matcher preserves
// the skeleton (and its ids) on every recompute.
func BuildOccurrences(ob domain.Obligation, start, end civil.Date) []domain.Occurrence {
	var dues []civil.Date
	switch ob.Frequency {
	case domain.FreqWeekly:
		dues = steppedDues(ob.FirstSeen, 7, start, end)
	case domain.FreqBiWeekly:
		dues = steppedDues(ob.FirstSeen, 14, start, end)
	case domain.FreqSemiMonthly:
		dues = semiMonthlyDues(ob.FirstSeen, start, end)
	default: // monthly is the common case and the fallback
		dues = monthlyDues(ob.FirstSeen, start, end)
	}

	occs := make([]domain.Occurrence, 0, len(dues))
	for _, due := range dues {
		occs = append(occs, domain.Occurrence{
			ID:             uuid.NewString(),
			DueDate:        due,
			ExpectedAmount: domain.RoundCents(ob.Amount),
		})
	}
	return occs
}

// steppedDues walks fixed-size steps from the anchor and keeps dates inside
// the window. The anchor may predate the window by years, so the walk jumps
// ahead in whole steps first.
func steppedDues(anchor civil.Date, stepDays int, start, end civil.Date) []civil.Date {
	d := anchor
	if d.Before(start) {
		behind := start.DaysSince(d)
		d = d.AddDays((behind / stepDays) * stepDays)
	}
	var dues []civil.Date
	for !d.After(end) {
		if !d.Before(start) {
			dues = append(dues, d)
		}
		d = d.AddDays(stepDays)
	}
	return dues
}

// monthlyDues returns the anchor's day-of-month for every month touching the
// window, clamped to the month's last day.
func monthlyDues(anchor civil.Date, start, end civil.Date) []civil.Date {
	var dues []civil.Date
	for y, m := start.Year, start.Month; ; {
		first := civil.Date{Year: y, Month: m, Day: 1}
		if first.After(end) {
			break
		}
		due := clampToMonth(y, m, anchor.Day)
		if !due.Before(start) && !due.After(end) {
			dues = append(dues, due)
		}
		if m == 12 {
			y, m = y+1, 1
		} else {
			m++
		}
	}
	return dues
}

// semiMonthlyDues returns two dues per month: the anchor day and fourteen
// days later, both clamped to the month.
func semiMonthlyDues(anchor civil.Date, start, end civil.Date) []civil.Date {
	var dues []civil.Date
	for y, m := start.Year, start.Month; ; {
		first := civil.Date{Year: y, Month: m, Day: 1}
		if first.After(end) {
			break
		}
		for _, day := range []int{anchor.Day, anchor.Day + 14} {
			due := clampToMonth(y, m, day)
			if !due.Before(start) && !due.After(end) {
				dues = append(dues, due)
			}
		}
		if m == 12 {
			y, m = y+1, 1
		} else {
			m++
		}
	}
	return dues
}

func clampToMonth(year int, month time.Month, day int) civil.Date {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return civil.Date{Year: year, Month: month, Day: day}
}
