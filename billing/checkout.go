/*
checkout.go - Checkout settlement service

PURPOSE:
  Completes a resident's checkout: derives the stay duration, picks
  the deduction percentage, computes the penalty, records the one-time
  CheckoutEvent, and returns the rebuilt summary.

PERCENTAGE SELECTION (asymmetric on purpose):
  Staff:    resolve the tiered CheckoutRule set for the resident
            (per-resident rules plus globals); no applicable rule
            means no deduction.
  Students: apply the caller-supplied flat percentage; no rule lookup.
            A nil percentage means no deduction.

  Both populations COULD use the resolver; the asymmetry mirrors the
  upstream product behavior and is kept until product says otherwise.

TENURE:
  Elapsed tenure runs from the earliest financial record's payment
  date to the checkout date, inclusive of both endpoints. A resident
  with no charge history cannot be settled (ErrNoFinancialRecords).
*/
package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutInput carries the caller-provided settlement parameters.
type CheckoutInput struct {
	CheckoutDate time.Time

	// FlatPercentage is the student-path deduction rate. Ignored for
	// staff, whose percentage comes from rule resolution.
	FlatPercentage *decimal.Decimal
}

// CheckoutService settles early checkouts.
type CheckoutService struct {
	Store     Store
	Directory Directory
	Summaries *SummaryBuilder
	Logger    *slog.Logger
}

// NewCheckoutService wires a checkout service.
func NewCheckoutService(store Store, dir Directory, summaries *SummaryBuilder, logger *slog.Logger) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutService{Store: store, Directory: dir, Summaries: summaries, Logger: logger}
}

// CompleteCheckout records the checkout deduction for a resident and
// returns the rebuilt summary. A second checkout for the same
// resident returns an error-tagged summary (the event is written
// exactly once).
func (s *CheckoutService) CompleteCheckout(ctx context.Context, id ResidentID, input CheckoutInput) BalanceSummary {
	resident, err := s.Directory.Resident(ctx, id)
	if err != nil {
		s.Logger.Error("checkout: directory lookup failed",
			slog.String("resident_id", string(id)), slog.Any("error", err))
		return ErrorSummary(id, "resident lookup failed")
	}
	if resident == nil {
		return ErrorSummary(id, ErrResidentNotFound.Error())
	}

	records, err := s.Store.FinancialRecords(ctx, id)
	if err != nil {
		s.Logger.Error("checkout: financial records read failed",
			slog.String("resident_id", string(id)), slog.Any("error", err))
		return ErrorSummary(id, "financial records unavailable")
	}
	if len(records) == 0 {
		return ErrorSummary(id, ErrNoFinancialRecords.Error())
	}

	tenure := tenureDays(records, input.CheckoutDate)
	monthlyFee := LastMonthlyFee(records)

	percentage := decimal.Zero
	ruleID := RuleID("")
	switch resident.Type {
	case ResidentStaff:
		rules, err := s.Store.CheckoutRules(ctx, id)
		if err != nil {
			s.Logger.Error("checkout: rule load failed",
				slog.String("resident_id", string(id)), slog.Any("error", err))
			return ErrorSummary(id, "checkout rules unavailable")
		}
		if rule, ok := ResolveRule(rules, tenure); ok {
			percentage = rule.Percentage
			ruleID = rule.ID
		}
	default:
		if input.FlatPercentage != nil {
			percentage = *input.FlatPercentage
		}
	}

	deducted := Deduction(monthlyFee, percentage, tenure)

	ev := CheckoutEvent{
		ID:               RecordID(uuid.NewString()),
		ResidentID:       id,
		CheckoutDuration: tenure,
		DeductedAmount:   deducted,
		RuleID:           ruleID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.Store.AppendCheckoutEvent(ctx, ev); err != nil {
		s.Logger.Error("checkout: append failed",
			slog.String("resident_id", string(id)), slog.Any("error", err))
		return ErrorSummary(id, err.Error())
	}

	s.Logger.Info("checkout settled",
		slog.String("resident_id", string(id)),
		slog.Int("duration_days", tenure),
		slog.String("deducted", deducted.String()))

	return s.Summaries.BuildSummary(ctx, id)
}

// tenureDays derives the inclusive stay duration from the earliest
// charge date to the checkout date. Never less than one day.
func tenureDays(records []FinancialRecord, checkoutDate time.Time) int {
	earliest := records[0].PaymentDate
	for _, r := range records[1:] {
		if r.PaymentDate.Before(earliest) {
			earliest = r.PaymentDate
		}
	}
	days := daysBetween(dateOnly(earliest), dateOnly(checkoutDate)) + 1
	if days < 1 {
		days = 1
	}
	return days
}
