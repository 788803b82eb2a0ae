package billing

import "github.com/shopspring/decimal"

// =============================================================================
// MONEY HELPERS - All amounts are decimal.Decimal, rounded at calculator
// boundaries to two fractional digits, half away from zero (half-up for
// the non-negative values this system deals in).
// =============================================================================

var (
	thirty  = decimal.NewFromInt(30)
	hundred = decimal.NewFromInt(100)
)

// RoundMoney rounds to two decimal places, half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MustDecimal parses a decimal string, returning zero on failure.
// Intended for trusted inputs (storage round-trips, test fixtures).
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ClampNonNegative floors a balance at zero. Overpayment never
// produces a negative remaining balance.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
