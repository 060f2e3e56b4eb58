package holiday

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkingDays counts the days in [start, end] inclusive whose weekday is
// Monday through Friday. Dates are compared at date granularity; time-of-day
// on either bound is ignored. start after end yields 0.
func WorkingDays(start, end time.Time) int {
	cur := dateOnly(start)
	last := dateOnly(end)

	count := 0
	for !cur.After(last) {
		wd := cur.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return count
}

var half = decimal.New(5, -1) // 0.5

// RequestedDays returns the chargeable day count for a date range, applying
// the optional half-day adjustment on either bound. Never negative.
func RequestedDays(start, end time.Time, startHalf, endHalf bool) decimal.Decimal {
	days := decimal.NewFromInt(int64(WorkingDays(start, end)))
	if startHalf {
		days = days.Sub(half)
	}
	if endHalf {
		days = days.Sub(half)
	}
	if days.IsNegative() {
		return decimal.Zero
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
