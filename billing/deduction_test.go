package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hostelcore/billing-engine/billing"
)

func TestDeduction_ReferenceCase(t *testing.T) {
	// GIVEN: 3000/month, 50% deduction, 15 days stayed
	// WHEN: Computing the checkout deduction
	// THEN: 3000/30 * 15 * 50/100 = 750.00

	got := billing.Deduction(money("3000"), money("50"), 15)
	if !got.Equal(money("750")) {
		t.Errorf("expected 750.00, got %s", got)
	}
}

func TestDeduction_ZeroDuration_DeductsNothing(t *testing.T) {
	got := billing.Deduction(money("9999.99"), money("75"), 0)
	if !got.IsZero() {
		t.Errorf("expected 0, got %s", got)
	}
}

func TestDeduction_UsesFixedThirtyDayDivisor(t *testing.T) {
	// GIVEN: A 31-day month's worth of days
	// WHEN: Deducting at 100% for 30 days
	// THEN: The full monthly fee is deducted (divisor is 30, not the
	// real month length)

	got := billing.Deduction(money("3000"), money("100"), 30)
	if !got.Equal(money("3000")) {
		t.Errorf("expected 3000.00, got %s", got)
	}
}

func TestDeduction_PercentageNotClamped(t *testing.T) {
	// Out-of-range percentages pass through unchanged. Known gap,
	// preserved deliberately.
	got := billing.Deduction(money("3000"), money("200"), 30)
	if !got.Equal(money("6000")) {
		t.Errorf("expected 6000.00, got %s", got)
	}

	got = billing.Deduction(money("3000"), money("-10"), 30)
	if !got.Equal(money("-300")) {
		t.Errorf("expected -300.00, got %s", got)
	}
}

func TestDeduction_RoundsHalfUp(t *testing.T) {
	// 1000/30 * 1 * 50/100 = 16.666... -> 16.67
	got := billing.Deduction(money("1000"), money("50"), 1)
	if !got.Equal(decimal.RequireFromString("16.67")) {
		t.Errorf("expected 16.67, got %s", got)
	}
}
