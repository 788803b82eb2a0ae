/*
payment.go - Payment application service

PURPOSE:
  Records a payment against a resident and returns the rebuilt balance
  summary. The rebuild is a full recompute over the ledger, not an
  incremental update, so retries and replays converge on the same
  result.

FAILURE SEMANTICS:
  Consistent with the summary builder: a missing resident or a failed
  append returns an error-tagged zeroed summary. Errors are logged
  here and never cross the service boundary as panics or raw errors.
*/
package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService appends income entries and rebuilds summaries.
type PaymentService struct {
	Store     Store
	Directory Directory
	Summaries *SummaryBuilder
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewPaymentService wires a payment service around the given store
// and summary builder.
func NewPaymentService(store Store, dir Directory, summaries *SummaryBuilder, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		Store:     store,
		Directory: dir,
		Summaries: summaries,
		Logger:    logger,
		Now:       time.Now,
	}
}

// ApplyPayment records one income entry and returns the fresh
// summary. The entry's received amount equals the amount given; the
// due amount defaults to zero; partial/due splits are the caller's
// responsibility via separate entries.
//
// The inserted entry is visible to the summary read within the same
// call (same store handle, read-after-write).
func (s *PaymentService) ApplyPayment(ctx context.Context, id ResidentID, amount decimal.Decimal, paymentType, remark string) BalanceSummary {
	if !amount.IsPositive() {
		return ErrorSummary(id, "payment amount must be positive")
	}

	exists, err := ResidentExists(ctx, s.Directory, id)
	if err != nil {
		s.Logger.Error("payment: existence check failed",
			slog.String("resident_id", string(id)), slog.Any("error", err))
		return ErrorSummary(id, "resident lookup failed")
	}
	if !exists {
		return ErrorSummary(id, ErrResidentNotFound.Error())
	}

	now := s.Now().UTC()
	entry := IncomeEntry{
		ID:             RecordID(uuid.NewString()),
		ResidentID:     id,
		Amount:         amount,
		ReceivedAmount: amount,
		DueAmount:      decimal.Zero,
		PaymentStatus:  PaymentPaid,
		PaymentType:    paymentType,
		Remark:         remark,
		IncomeDate:     now,
		CreatedAt:      now,
	}

	if err := s.Store.AppendIncomeEntry(ctx, entry); err != nil {
		s.Logger.Error("payment: append failed",
			slog.String("resident_id", string(id)), slog.Any("error", err))
		return ErrorSummary(id, "failed to record payment")
	}

	s.Logger.Info("payment recorded",
		slog.String("resident_id", string(id)),
		slog.String("amount", amount.String()),
		slog.String("payment_type", paymentType))

	return s.Summaries.BuildSummary(ctx, id)
}
