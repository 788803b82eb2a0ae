/*
deduction.go - Early-checkout penalty calculation

PURPOSE:
  Computes the amount deducted from a resident's balance when they
  check out before a billing boundary.

ALGORITHM:
  dailyFee = monthlyFee / 30      (fixed divisor, regardless of month)
  result   = round(dailyFee * durationDays * percentage / 100, 2dp)

  The fixed 30-day divisor is inherited from the upstream system and
  intentionally differs from proration's real-month divisor. Do not
  "fix" the inconsistency without product confirmation.

  Percentage is a plain 0-100 number and is NOT clamped: out-of-range
  values pass through unchanged, matching upstream behavior. Known gap.
*/
package billing

import "github.com/shopspring/decimal"

// Deduction computes the checkout penalty from the monthly fee, a
// deduction percentage (0-100, unclamped), and the stay duration in
// days. A zero duration deducts nothing.
func Deduction(monthlyFee, percentage decimal.Decimal, durationDays int) decimal.Decimal {
	daily := monthlyFee.Div(thirty)
	result := daily.
		Mul(decimal.NewFromInt(int64(durationDays))).
		Mul(percentage).
		Div(hundred)
	return RoundMoney(result)
}
