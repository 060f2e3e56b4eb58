/*
entitlement.go - Leave entitlement accounting

PURPOSE:
  Entitlement is accrued in hours and spent in days at a fixed 7-hour
  working day. Availability is derived, not stored:

    availableDays = max(0, accruedHours/7 - usedDays)

  where usedDays counts every request that is pending or approved.
  Rejected and cancelled requests release their days automatically by
  falling out of that sum.

MUTATION:
  The single ledger mutation is the deduction of AccruedHoursUsed from the
  stored balance at final approval, floored at zero. It is applied exactly
  once per request, by the approval transition.
*/
package holiday

import "github.com/shopspring/decimal"

// HoursPerDay is the chargeable length of one working day.
var HoursPerDay = decimal.NewFromInt(7)

// UsedDays sums NumberOfDays across requests that hold or will hold
// entitlement: the two pending states and Approved.
func UsedDays(requests []Request) decimal.Decimal {
	used := decimal.Zero
	for i := range requests {
		if requests[i].Status.Pending() || requests[i].Status == StatusApproved {
			used = used.Add(requests[i].NumberOfDays)
		}
	}
	return used
}

// AvailableDays converts the stored hour balance to days and subtracts
// what is already spoken for. Never negative.
func AvailableDays(accruedHours, usedDays decimal.Decimal) decimal.Decimal {
	avail := accruedHours.Div(HoursPerDay).Sub(usedDays)
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// HoursForDays returns the hour cost recorded on a request.
func HoursForDays(days decimal.Decimal) decimal.Decimal {
	return days.Mul(HoursPerDay)
}

// DeductHours applies a deduction to a stored hour balance, floored at zero.
func DeductHours(balance, hours decimal.Decimal) decimal.Decimal {
	next := balance.Sub(hours)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}
