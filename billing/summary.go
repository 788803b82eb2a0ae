/*
summary.go - Balance summary aggregation

PURPOSE:
  Builds the derived current-balance view for one resident from three
  ledger sources: charge rows, payment rows, and checkout deductions.
  This is the central read path of the engine; every dashboard widget
  and every payment response goes through it.

AGGREGATION:
  totalOwed   = Σ FinancialRecord.Amount where BalanceType == due
  monthlyFee  = last non-nil fee in record order (LastMonthlyFee)
  deductions  = Σ CheckoutEvent.DeductedAmount
  paid        = Σ IncomeEntry.ReceivedAmount
  remaining   = max(0, totalOwed - paid - deductions)
  status      = paid when remaining <= 0, else pending

CAPABILITIES:
  Deployments differ in which ledger sources exist. Instead of probing
  schema metadata per call (the upstream pattern), a Capabilities
  struct is resolved once at startup; a disabled source contributes
  zero to the sums and is never an error.

FAILURE SEMANTICS:
  An unknown resident or a ledger read failure degrades to a zeroed
  summary with StatusError and a message. The failure is logged, not
  propagated: summary errors must never take down callers that only
  wanted to render a number.
*/
package billing

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CAPABILITIES - Which ledger sources exist in this deployment
// =============================================================================

// Capabilities flags the optional data sources. A disabled source
// contributes zero to every sum.
type Capabilities struct {
	FinancialsEnabled     bool
	IncomeLedgerEnabled   bool
	CheckoutLedgerEnabled bool
}

// DefaultCapabilities enables every ledger source.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		FinancialsEnabled:     true,
		IncomeLedgerEnabled:   true,
		CheckoutLedgerEnabled: true,
	}
}

// =============================================================================
// SUMMARY BUILDER
// =============================================================================

// SummaryBuilder computes BalanceSummary views. Pure read: it never
// mutates the ledger.
type SummaryBuilder struct {
	Store     Store
	Directory Directory
	Caps      Capabilities
	Logger    *slog.Logger
}

// NewSummaryBuilder wires a builder with the given capabilities.
func NewSummaryBuilder(store Store, dir Directory, caps Capabilities, logger *slog.Logger) *SummaryBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryBuilder{Store: store, Directory: dir, Caps: caps, Logger: logger}
}

// BuildSummary derives the current balance for a resident. Calling it
// twice with no intervening writes returns identical results.
//
// Unknown residents and ledger failures return an error-tagged zeroed
// summary rather than an error value; see the package notes on fail
// soft.
func (b *SummaryBuilder) BuildSummary(ctx context.Context, id ResidentID) BalanceSummary {
	resident, err := b.Directory.Resident(ctx, id)
	if err != nil {
		b.Logger.Error("summary: directory lookup failed",
			slog.String("resident_id", string(id)), slog.Any("error", err))
		return ErrorSummary(id, "resident lookup failed")
	}
	if resident == nil {
		return ErrorSummary(id, ErrResidentNotFound.Error())
	}

	totalOwed := decimal.Zero
	monthlyFee := decimal.Zero
	if b.Caps.FinancialsEnabled {
		records, err := b.Store.FinancialRecords(ctx, id)
		if err != nil {
			b.Logger.Error("summary: financial records read failed",
				slog.String("resident_id", string(id)), slog.Any("error", err))
			return ErrorSummary(id, "financial records unavailable")
		}
		for _, r := range records {
			if r.BalanceType == BalanceDue {
				totalOwed = totalOwed.Add(r.Amount)
			}
		}
		monthlyFee = LastMonthlyFee(records)
	}

	paid := decimal.Zero
	if b.Caps.IncomeLedgerEnabled {
		entries, err := b.Store.IncomeEntries(ctx, id)
		if err != nil {
			b.Logger.Error("summary: income entries read failed",
				slog.String("resident_id", string(id)), slog.Any("error", err))
			return ErrorSummary(id, "income ledger unavailable")
		}
		for _, e := range entries {
			paid = paid.Add(e.ReceivedAmount)
		}
	}

	deducted := decimal.Zero
	if b.Caps.CheckoutLedgerEnabled {
		events, err := b.Store.CheckoutEvents(ctx, id)
		if err != nil {
			b.Logger.Error("summary: checkout events read failed",
				slog.String("resident_id", string(id)), slog.Any("error", err))
			return ErrorSummary(id, "checkout ledger unavailable")
		}
		for _, ev := range events {
			deducted = deducted.Add(ev.DeductedAmount)
		}
	}

	remaining := ClampNonNegative(totalOwed.Sub(paid).Sub(deducted))

	status := StatusPending
	if remaining.LessThanOrEqual(decimal.Zero) {
		status = StatusPaid
	}

	return BalanceSummary{
		ResidentID:       id,
		MonthlyFee:       monthlyFee,
		TotalAmount:      totalOwed,
		DeductedAmount:   deducted,
		PaidAmount:       paid,
		RemainingBalance: remaining,
		Status:           status,
	}
}
