/*
Package billing provides the resident financial engine for hostel/PG
management: ledger records, proration, checkout deductions, rule
resolution, and the derived balance summary.

PURPOSE:
  A resident (student or staff) accumulates charges on registration,
  makes payments over time, and may check out early with a rule-driven
  deduction. This package owns everything money-related: the record
  types, the pure calculators, and the services that append to the
  ledger and rebuild the balance view.

KEY CONCEPTS IN THIS FILE (types.go):
  - FinancialRecord: A charge row (registration/monthly fee)
  - IncomeEntry:     A payment received from a resident
  - CheckoutEvent:   The one-time early-checkout deduction record
  - CheckoutRule:    Tiered deduction configuration (staff today)
  - BalanceSummary:  The derived, always-recomputed balance view

DESIGN PRINCIPLES:
  1. Append-only: ledger rows are never updated or deleted
  2. Precision: decimal.Decimal for all monetary values
  3. Derived state: the balance summary is recomputed on every read,
     never cached
  4. Fail soft: summary failures degrade to a zeroed, error-tagged
     summary instead of propagating (dashboards must never crash on
     one resident's bad data)

SEE ALSO:
  - summary.go:   Balance aggregation
  - proration.go: Partial-period fee calculation
  - deduction.go: Early-checkout penalty calculation
  - rules.go:     Checkout rule selection
  - store.go:     Persistence interfaces
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ResidentID string
type RecordID string
type RuleID string

// ResidentType distinguishes the two resident populations. They share
// the same ledger shapes but not the same checkout wiring: staff
// checkouts resolve a CheckoutRule, student checkouts use a flat
// percentage supplied by the caller.
type ResidentType string

const (
	ResidentStudent ResidentType = "student"
	ResidentStaff   ResidentType = "staff"
)

// =============================================================================
// RESIDENT - Directory record (students/staff)
// =============================================================================

// Resident is the directory entry the financial engine reads. The full
// resident profile (room, guardian, photos) lives outside this package.
type Resident struct {
	ID        ResidentID
	Name      string
	Type      ResidentType
	JoinDate  time.Time
	CreatedAt time.Time
}

// =============================================================================
// FINANCIAL RECORD - Charge rows (registration / monthly fee)
// =============================================================================

// BalanceType determines the sign semantics of the initial
// registration record.
type BalanceType string

const (
	BalanceDue     BalanceType = "due"
	BalanceAdvance BalanceType = "advance"
)

// FinancialRecord is a charge against a resident. Created at
// registration or fee-update time; immutable once payments are being
// recorded against it.
//
// MonthlyFee is optional and meaningfully set on at most one record.
// When several records carry a non-nil fee, the LAST one in ledger
// order wins during aggregation (see LastMonthlyFee).
type FinancialRecord struct {
	ID          RecordID
	ResidentID  ResidentID
	Amount      decimal.Decimal
	BalanceType BalanceType
	MonthlyFee  *decimal.Decimal
	PaymentDate time.Time
	CreatedAt   time.Time
}

// =============================================================================
// INCOME ENTRY - Payments received
// =============================================================================

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentUnpaid  PaymentStatus = "unpaid"
)

// IncomeEntry records a payment transaction. Append-only.
//
// ReceivedAmount is what actually arrived; DueAmount is the shortfall
// the caller chose to track for a partial payment. The payment service
// does not compute the split itself.
type IncomeEntry struct {
	ID             RecordID
	ResidentID     ResidentID
	Amount         decimal.Decimal
	ReceivedAmount decimal.Decimal
	DueAmount      decimal.Decimal
	PaymentStatus  PaymentStatus
	PaymentType    string
	Remark         string
	IncomeDate     time.Time
	CreatedAt      time.Time
}

// =============================================================================
// CHECKOUT EVENT - One-time settlement record
// =============================================================================

// CheckoutEvent is created exactly once per completed checkout and is
// immutable. RuleID is set only for staff checkouts; student checkouts
// carry no rule reference.
type CheckoutEvent struct {
	ID               RecordID
	ResidentID       ResidentID
	CheckoutDuration int // days stayed, inclusive
	DeductedAmount   decimal.Decimal
	RuleID           RuleID // empty for students
	CreatedAt        time.Time
}

// =============================================================================
// CHECKOUT RULE - Tiered deduction configuration
// =============================================================================

// CheckoutRule configures the early-checkout deduction for a resident
// (or globally, when ResidentID is empty). A rule applies once the
// resident's tenure reaches ActiveAfterDays; among applicable rules
// the one with the largest threshold wins.
//
// Percentage is a plain 0-100 number. Values outside that range are
// accepted as-is; the engine performs no clamping.
type CheckoutRule struct {
	ID              RuleID
	ResidentID      ResidentID // empty = global default
	IsActive        bool
	ActiveAfterDays int
	Percentage      decimal.Decimal
	CreatedAt       time.Time
}

// =============================================================================
// BALANCE SUMMARY - Derived view, recomputed on every read
// =============================================================================

type SummaryStatus string

const (
	StatusPaid    SummaryStatus = "paid"
	StatusPending SummaryStatus = "pending"
	StatusError   SummaryStatus = "error"
)

// BalanceSummary is the current-balance view for one resident. It is
// never persisted; every read re-derives it from the ledger.
//
// RemainingBalance is clamped at zero. Status is purely derived:
// paid when nothing remains, pending otherwise, error when the
// summary could not be built (zeroed fields, Error set).
type BalanceSummary struct {
	ResidentID       ResidentID
	MonthlyFee       decimal.Decimal
	TotalAmount      decimal.Decimal
	DeductedAmount   decimal.Decimal
	PaidAmount       decimal.Decimal
	RemainingBalance decimal.Decimal
	Status           SummaryStatus
	Error            string
}

// ErrorSummary returns the degraded summary for a resident whose
// balance could not be computed: all monetary fields zero, status
// error. Callers display a safe default instead of failing.
func ErrorSummary(id ResidentID, msg string) BalanceSummary {
	return BalanceSummary{
		ResidentID:       id,
		MonthlyFee:       decimal.Zero,
		TotalAmount:      decimal.Zero,
		DeductedAmount:   decimal.Zero,
		PaidAmount:       decimal.Zero,
		RemainingBalance: decimal.Zero,
		Status:           StatusError,
		Error:            msg,
	}
}

// LastMonthlyFee folds an ordered slice of financial records down to
// the monthly fee: the last record with a non-nil fee wins. This
// "last value wins" rule is a behavioral contract inherited from the
// upstream system, where every record overwrote the previous value
// during aggregation. Returns zero when no record carries a fee.
func LastMonthlyFee(records []FinancialRecord) decimal.Decimal {
	fee := decimal.Zero
	for _, r := range records {
		if r.MonthlyFee != nil {
			fee = *r.MonthlyFee
		}
	}
	return fee
}
