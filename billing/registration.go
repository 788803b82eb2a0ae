/*
registration.go - Initial charge at resident onboarding

PURPOSE:
  Appends the registration-time FinancialRecord. When the resident
  joins mid-month, the first month's charge is prorated over the days
  actually stayed (this is the proration calculator's production call
  site). A separate registration fee, when charged, is added on top of
  the prorated month.
*/
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Registration describes the onboarding charge for a resident.
type Registration struct {
	ResidentID      ResidentID
	MonthlyFee      decimal.Decimal
	RegistrationFee decimal.Decimal
	BalanceType     BalanceType
	JoinDate        time.Time
}

// RegistrationService writes the initial charge row.
type RegistrationService struct {
	Store     Store
	Directory Directory
	Logger    *slog.Logger
}

// NewRegistrationService wires a registration service.
func NewRegistrationService(store Store, dir Directory, logger *slog.Logger) *RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{Store: store, Directory: dir, Logger: logger}
}

// RecordRegistration appends the initial financial record: the first
// month's fee prorated from the join date to month end, plus the
// registration fee. The monthly fee is carried on the record so later
// aggregation can recover it (last non-nil value wins).
func (s *RegistrationService) RecordRegistration(ctx context.Context, reg Registration) (FinancialRecord, error) {
	exists, err := ResidentExists(ctx, s.Directory, reg.ResidentID)
	if err != nil {
		return FinancialRecord{}, fmt.Errorf("registration: existence check: %w", err)
	}
	if !exists {
		return FinancialRecord{}, ErrResidentNotFound
	}

	join := dateOnly(reg.JoinDate)
	monthEnd := time.Date(join.Year(), join.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)

	firstCharge, err := Prorate(reg.MonthlyFee, join, monthEnd)
	if err != nil {
		return FinancialRecord{}, err
	}

	fee := reg.MonthlyFee
	rec := FinancialRecord{
		ID:          RecordID(uuid.NewString()),
		ResidentID:  reg.ResidentID,
		Amount:      firstCharge.Add(reg.RegistrationFee),
		BalanceType: reg.BalanceType,
		MonthlyFee:  &fee,
		PaymentDate: join,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.Store.AppendFinancialRecord(ctx, rec); err != nil {
		return FinancialRecord{}, fmt.Errorf("registration: append: %w", err)
	}

	s.Logger.Info("registration charged",
		slog.String("resident_id", string(reg.ResidentID)),
		slog.String("amount", rec.Amount.String()))

	return rec, nil
}
