package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelcore/billing-engine/billing"
	"github.com/hostelcore/billing-engine/billing/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newMemory(t *testing.T) *store.Memory {
	t.Helper()
	return store.NewMemory()
}

func saveResident(t *testing.T, m *store.Memory, id string, rt billing.ResidentType) {
	t.Helper()
	err := m.SaveResident(context.Background(), billing.Resident{
		ID:       billing.ResidentID(id),
		Name:     "Resident " + id,
		Type:     rt,
		JoinDate: date(2024, time.January, 1),
	})
	require.NoError(t, err)
}

func dueRecord(t *testing.T, m *store.Memory, id string, amount string, monthlyFee string, at time.Time) {
	t.Helper()
	rec := billing.FinancialRecord{
		ID:          billing.RecordID("fr-" + id + "-" + at.Format("20060102")),
		ResidentID:  billing.ResidentID(id),
		Amount:      money(amount),
		BalanceType: billing.BalanceDue,
		PaymentDate: at,
	}
	if monthlyFee != "" {
		fee := money(monthlyFee)
		rec.MonthlyFee = &fee
	}
	require.NoError(t, m.AppendFinancialRecord(context.Background(), rec))
}

func payment(t *testing.T, m *store.Memory, id string, received string, at time.Time) {
	t.Helper()
	require.NoError(t, m.AppendIncomeEntry(context.Background(), billing.IncomeEntry{
		ID:             billing.RecordID("in-" + id + "-" + received),
		ResidentID:     billing.ResidentID(id),
		Amount:         money(received),
		ReceivedAmount: money(received),
		DueAmount:      decimal.Zero,
		PaymentStatus:  billing.PaymentPaid,
		IncomeDate:     at,
	}))
}

func checkoutEvent(t *testing.T, m *store.Memory, id string, deducted string) {
	t.Helper()
	require.NoError(t, m.AppendCheckoutEvent(context.Background(), billing.CheckoutEvent{
		ID:             billing.RecordID("co-" + id),
		ResidentID:     billing.ResidentID(id),
		DeductedAmount: money(deducted),
	}))
}

func newBuilder(m *store.Memory) *billing.SummaryBuilder {
	return billing.NewSummaryBuilder(m, m, billing.DefaultCapabilities(), nil)
}

// =============================================================================
// BALANCE SUMMARY TESTS
// =============================================================================

func TestBuildSummary_CombinesThreeSources(t *testing.T) {
	// GIVEN: One due record of 50000 (monthly fee 15000), a payment of
	// 20000, a checkout deduction of 5000
	// WHEN: Building the summary
	// THEN: total=50000 paid=20000 deducted=5000 remaining=25000 pending

	m := newMemory(t)
	saveResident(t, m, "s1", billing.ResidentStudent)
	dueRecord(t, m, "s1", "50000", "15000", date(2024, time.January, 1))
	payment(t, m, "s1", "20000", date(2024, time.February, 1))
	checkoutEvent(t, m, "s1", "5000")

	got := newBuilder(m).BuildSummary(context.Background(), "s1")

	assert.Equal(t, billing.StatusPending, got.Status)
	assert.True(t, got.TotalAmount.Equal(money("50000")), "total: %s", got.TotalAmount)
	assert.True(t, got.PaidAmount.Equal(money("20000")), "paid: %s", got.PaidAmount)
	assert.True(t, got.DeductedAmount.Equal(money("5000")), "deducted: %s", got.DeductedAmount)
	assert.True(t, got.RemainingBalance.Equal(money("25000")), "remaining: %s", got.RemainingBalance)
	assert.True(t, got.MonthlyFee.Equal(money("15000")), "fee: %s", got.MonthlyFee)
}

func TestBuildSummary_SecondPaymentSettles(t *testing.T) {
	// GIVEN: The scenario above plus a second payment of 25000
	// WHEN: Building the summary
	// THEN: remaining=0, status paid

	m := newMemory(t)
	saveResident(t, m, "s1", billing.ResidentStudent)
	dueRecord(t, m, "s1", "50000", "15000", date(2024, time.January, 1))
	payment(t, m, "s1", "20000", date(2024, time.February, 1))
	checkoutEvent(t, m, "s1", "5000")
	payment(t, m, "s1", "25000", date(2024, time.March, 1))

	got := newBuilder(m).BuildSummary(context.Background(), "s1")

	assert.Equal(t, billing.StatusPaid, got.Status)
	assert.True(t, got.RemainingBalance.IsZero(), "remaining: %s", got.RemainingBalance)
}

func TestBuildSummary_NoRecords_IsPaidNotError(t *testing.T) {
	// Absence of debt is not an error.
	m := newMemory(t)
	saveResident(t, m, "fresh", billing.ResidentStudent)

	got := newBuilder(m).BuildSummary(context.Background(), "fresh")

	assert.Equal(t, billing.StatusPaid, got.Status)
	assert.True(t, got.TotalAmount.IsZero())
	assert.True(t, got.RemainingBalance.IsZero())
	assert.Empty(t, got.Error)
}

func TestBuildSummary_UnknownResident_DegradesToErrorSummary(t *testing.T) {
	// GIVEN: An id the directory has never seen
	// WHEN: Building the summary
	// THEN: Zeroed fields, status error, no panic, no error return

	got := newBuilder(newMemory(t)).BuildSummary(context.Background(), "ghost")

	assert.Equal(t, billing.StatusError, got.Status)
	assert.NotEmpty(t, got.Error)
	assert.True(t, got.TotalAmount.IsZero())
	assert.True(t, got.PaidAmount.IsZero())
	assert.True(t, got.DeductedAmount.IsZero())
	assert.True(t, got.RemainingBalance.IsZero())
}

func TestBuildSummary_OverpaymentClampsToZero(t *testing.T) {
	// paid + deducted > owed never yields a negative balance.
	m := newMemory(t)
	saveResident(t, m, "s2", billing.ResidentStudent)
	dueRecord(t, m, "s2", "10000", "", date(2024, time.January, 1))
	payment(t, m, "s2", "9000", date(2024, time.February, 1))
	checkoutEvent(t, m, "s2", "5000")

	got := newBuilder(m).BuildSummary(context.Background(), "s2")

	assert.True(t, got.RemainingBalance.IsZero(), "remaining: %s", got.RemainingBalance)
	assert.Equal(t, billing.StatusPaid, got.Status)
}

func TestBuildSummary_AdvanceRecordsExcludedFromTotal(t *testing.T) {
	m := newMemory(t)
	saveResident(t, m, "s3", billing.ResidentStudent)
	dueRecord(t, m, "s3", "10000", "", date(2024, time.January, 1))
	require.NoError(t, m.AppendFinancialRecord(context.Background(), billing.FinancialRecord{
		ID:          "fr-advance",
		ResidentID:  "s3",
		Amount:      money("4000"),
		BalanceType: billing.BalanceAdvance,
		PaymentDate: date(2024, time.January, 2),
	}))

	got := newBuilder(m).BuildSummary(context.Background(), "s3")

	assert.True(t, got.TotalAmount.Equal(money("10000")), "total: %s", got.TotalAmount)
}

func TestBuildSummary_LastMonthlyFeeWins(t *testing.T) {
	// GIVEN: Two records carrying fees, later date 18000, earlier 15000,
	// plus a fee-less record after both
	// WHEN: Building the summary
	// THEN: The last non-null fee in ledger order (18000) survives

	m := newMemory(t)
	saveResident(t, m, "s4", billing.ResidentStudent)
	dueRecord(t, m, "s4", "15000", "15000", date(2024, time.January, 1))
	dueRecord(t, m, "s4", "18000", "18000", date(2024, time.March, 1))
	dueRecord(t, m, "s4", "500", "", date(2024, time.April, 1))

	got := newBuilder(m).BuildSummary(context.Background(), "s4")

	assert.True(t, got.MonthlyFee.Equal(money("18000")), "fee: %s", got.MonthlyFee)
}

func TestBuildSummary_Idempotent(t *testing.T) {
	// Two reads with no intervening writes return identical results.
	m := newMemory(t)
	saveResident(t, m, "s5", billing.ResidentStudent)
	dueRecord(t, m, "s5", "12000", "12000", date(2024, time.January, 1))
	payment(t, m, "s5", "2000", date(2024, time.February, 1))

	b := newBuilder(m)
	first := b.BuildSummary(context.Background(), "s5")
	second := b.BuildSummary(context.Background(), "s5")

	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.RemainingBalance.Equal(second.RemainingBalance))
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	assert.True(t, first.PaidAmount.Equal(second.PaidAmount))
}

func TestBuildSummary_DisabledCheckoutLedgerContributesZero(t *testing.T) {
	// GIVEN: A deployment without the checkout ledger
	// WHEN: Building a summary for a resident with a checkout event
	// THEN: The deduction contributes zero; no error

	m := newMemory(t)
	saveResident(t, m, "s6", billing.ResidentStaff)
	dueRecord(t, m, "s6", "10000", "", date(2024, time.January, 1))
	checkoutEvent(t, m, "s6", "5000")

	caps := billing.DefaultCapabilities()
	caps.CheckoutLedgerEnabled = false
	b := billing.NewSummaryBuilder(m, m, caps, nil)

	got := b.BuildSummary(context.Background(), "s6")

	assert.True(t, got.DeductedAmount.IsZero(), "deducted: %s", got.DeductedAmount)
	assert.True(t, got.RemainingBalance.Equal(money("10000")))
	assert.Equal(t, billing.StatusPending, got.Status)
}

func TestBuildSummary_MonotonicRemainingBalance(t *testing.T) {
	// Remaining balance never increases as payments accumulate against
	// a fixed total.
	m := newMemory(t)
	saveResident(t, m, "s7", billing.ResidentStudent)
	dueRecord(t, m, "s7", "30000", "", date(2024, time.January, 1))

	b := newBuilder(m)
	prev := b.BuildSummary(context.Background(), "s7").RemainingBalance

	for i, amt := range []string{"5000", "10000", "20000"} {
		payment(t, m, "s7", amt, date(2024, time.February, i+1))
		cur := b.BuildSummary(context.Background(), "s7").RemainingBalance
		assert.True(t, cur.LessThanOrEqual(prev), "remaining grew: %s > %s", cur, prev)
		prev = cur
	}
	assert.True(t, prev.IsZero())
}
