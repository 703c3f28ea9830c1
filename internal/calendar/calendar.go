// Package calendar generates the fixed period boundaries the reconciliation
// engine tracks obligations against. For any contiguous range and one period
// type, the generated periods cover the range exactly: no gaps, no overlaps,
// both bounds inclusive.
package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ovolkov/billflow/internal/domain"
)

// Generate returns all periods of the given type intersecting [from, to].
// Periods at the edges are clipped to the requested bounds, so the union of
// the returned day-ranges equals the range exactly.
func Generate(pt domain.PeriodType, from, to civil.Date) ([]domain.SourcePeriod, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, fmt.Errorf("Generate: invalid range bounds %v..%v", from, to)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("Generate: range end %v precedes start %v", to, from)
	}

	switch pt {
	case domain.PeriodMonthly:
		return generateMonthly(from, to), nil
	case domain.PeriodBiMonthly:
		return generateBiMonthly(from, to), nil
	case domain.PeriodWeekly:
		return generateWeekly(from, to), nil
	default:
		return nil, fmt.Errorf("Generate: unknown period type %q", pt)
	}
}

// Year returns all periods of the given type for one calendar year.
func Year(pt domain.PeriodType, year int) ([]domain.SourcePeriod, error) {
	from := civil.Date{Year: year, Month: time.January, Day: 1}
	to := civil.Date{Year: year, Month: time.December, Day: 31}
	return Generate(pt, from, to)
}

func generateMonthly(from, to civil.Date) []domain.SourcePeriod {
	var periods []domain.SourcePeriod
	y, m := from.Year, from.Month
	for {
		start := civil.Date{Year: y, Month: m, Day: 1}
		end := civil.Date{Year: y, Month: m, Day: lastDayOfMonth(y, m)}
		if start.After(to) {
			break
		}
		periods = append(periods, domain.SourcePeriod{
			ID:    fmt.Sprintf("%s-%04d-%02d", domain.PeriodMonthly, y, m),
			Type:  domain.PeriodMonthly,
			Start: clampLow(start, from),
			End:   clampHigh(end, to),
			Year:  y,
			Month: int(m),
		})
		y, m = nextMonth(y, m)
	}
	return periods
}

func generateBiMonthly(from, to civil.Date) []domain.SourcePeriod {
	var periods []domain.SourcePeriod
	y, m := from.Year, from.Month
	for {
		firstOfMonth := civil.Date{Year: y, Month: m, Day: 1}
		if firstOfMonth.After(to) {
			break
		}
		// First half is always days 1-15; the second half runs to the
		// month's last day, 13-16 days depending on month length.
		halves := []struct {
			start, end civil.Date
			first      bool
		}{
			{firstOfMonth, civil.Date{Year: y, Month: m, Day: 15}, true},
			{civil.Date{Year: y, Month: m, Day: 16}, civil.Date{Year: y, Month: m, Day: lastDayOfMonth(y, m)}, false},
		}
		for _, h := range halves {
			if h.end.Before(from) || h.start.After(to) {
				continue
			}
			suffix := "H2"
			if h.first {
				suffix = "H1"
			}
			periods = append(periods, domain.SourcePeriod{
				ID:        fmt.Sprintf("%s-%04d-%02d-%s", domain.PeriodBiMonthly, y, m, suffix),
				Type:      domain.PeriodBiMonthly,
				Start:     clampLow(h.start, from),
				End:       clampHigh(h.end, to),
				Year:      y,
				Month:     int(m),
				FirstHalf: h.first,
			})
		}
		y, m = nextMonth(y, m)
	}
	return periods
}

func generateWeekly(from, to civil.Date) []domain.SourcePeriod {
	var periods []domain.SourcePeriod
	// Walk back to the Sunday on or before the range start.
	start := from.AddDays(-int(from.In(time.UTC).Weekday()))
	for !start.After(to) {
		end := start.AddDays(6)
		clippedStart := clampLow(start, from)
		clippedEnd := clampHigh(end, to)
		_, week := clippedStart.In(time.UTC).ISOWeek()
		month := int(clippedStart.Month)
		if clippedEnd.Month != clippedStart.Month {
			month = 0
		}
		periods = append(periods, domain.SourcePeriod{
			ID:    fmt.Sprintf("%s-%s", domain.PeriodWeekly, clippedStart.String()),
			Type:  domain.PeriodWeekly,
			Start: clippedStart,
			End:   clippedEnd,
			Year:  clippedStart.Year,
			Month: month,
			Week:  week,
		})
		start = start.AddDays(7)
	}
	return periods
}

// lastDayOfMonth handles month length and leap years via the day-zero trick.
func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func clampLow(d, floor civil.Date) civil.Date {
	if d.Before(floor) {
		return floor
	}
	return d
}

func clampHigh(d, ceil civil.Date) civil.Date {
	if d.After(ceil) {
		return ceil
	}
	return d
}
