/*
proration.go - Partial-period fee calculation

PURPOSE:
  Computes the charge for a partial month from the monthly rate and a
  date range. Used when a resident joins mid-month: the first charge
  covers only the days actually stayed.

ALGORITHM:
  daysInMonth = days in periodStart's calendar month
  daysStayed  = (periodEnd - periodStart in days) + 1   (both ends inclusive)
  result      = round(monthlyFee / daysInMonth * daysStayed, 2dp, half-up)

  A same-day range bills exactly one day. Note the divisor here is the
  REAL month length, unlike the checkout deduction which uses a fixed
  30-day divisor (see deduction.go).
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prorate computes the partial-period fee for [periodStart, periodEnd],
// both endpoints inclusive. The monthly fee is divided by the length
// of periodStart's calendar month.
//
// Returns InvalidRangeError when periodEnd precedes periodStart.
func Prorate(monthlyFee decimal.Decimal, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	start := dateOnly(periodStart)
	end := dateOnly(periodEnd)

	if end.Before(start) {
		return decimal.Zero, &InvalidRangeError{Start: start, End: end}
	}

	days := DaysInMonth(start)
	stayed := daysBetween(start, end) + 1

	fee := monthlyFee.
		Div(decimal.NewFromInt(int64(days))).
		Mul(decimal.NewFromInt(int64(stayed)))
	return RoundMoney(fee), nil
}

// DaysInMonth returns the number of days in t's calendar month.
func DaysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// daysBetween counts whole days from a to b (both already normalized
// to midnight UTC).
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
