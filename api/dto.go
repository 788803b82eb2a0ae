/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface, decoupled from the domain
  types so the wire contract can evolve independently.

NAMING CONVENTION:
  - *DTO:     response types returned to clients
  - *Request: request body types from clients

MONEY:
  Monetary fields are rendered as fixed two-decimal strings
  ("750.00") and parsed with shopspring/decimal, which accepts both
  JSON numbers and strings on input.

VALIDATION:
  Request types carry go-playground/validator tags; handlers run the
  shared validator instance before touching domain logic.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/hostelcore/billing-engine/billing"
)

// =============================================================================
// RESIDENTS
// =============================================================================

// ResidentDTO represents a directory entry in API responses.
type ResidentDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	JoinDate string `json:"join_date"`
}

// CreateResidentRequest is the request to create a directory entry.
type CreateResidentRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=student staff"`
	JoinDate string `json:"join_date" validate:"required,datetime=2006-01-02"`
}

// =============================================================================
// BALANCE SUMMARY
// =============================================================================

// SummaryDTO is the wire form of billing.BalanceSummary.
type SummaryDTO struct {
	ResidentID       string `json:"resident_id"`
	MonthlyFee       string `json:"monthly_fee"`
	TotalAmount      string `json:"total_amount"`
	DeductedAmount   string `json:"deducted_amount"`
	PaidAmount       string `json:"paid_amount"`
	RemainingBalance string `json:"remaining_balance"`
	Status           string `json:"status"`
	Error            string `json:"error,omitempty"`
}

func toSummaryDTO(s billing.BalanceSummary) SummaryDTO {
	return SummaryDTO{
		ResidentID:       string(s.ResidentID),
		MonthlyFee:       s.MonthlyFee.StringFixed(2),
		TotalAmount:      s.TotalAmount.StringFixed(2),
		DeductedAmount:   s.DeductedAmount.StringFixed(2),
		PaidAmount:       s.PaidAmount.StringFixed(2),
		RemainingBalance: s.RemainingBalance.StringFixed(2),
		Status:           string(s.Status),
		Error:            s.Error,
	}
}

// =============================================================================
// PAYMENTS
// =============================================================================

// ApplyPaymentRequest is the request to record a payment.
type ApplyPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PaymentType string          `json:"payment_type"`
	Remark      string          `json:"remark"`
}

// IncomeEntryDTO represents a payment row in API responses.
type IncomeEntryDTO struct {
	ID             string `json:"id"`
	ResidentID     string `json:"resident_id"`
	Amount         string `json:"amount"`
	ReceivedAmount string `json:"received_amount"`
	DueAmount      string `json:"due_amount"`
	PaymentStatus  string `json:"payment_status"`
	PaymentType    string `json:"payment_type,omitempty"`
	Remark         string `json:"remark,omitempty"`
	IncomeDate     string `json:"income_date"`
}

// =============================================================================
// REGISTRATION
// =============================================================================

// RecordRegistrationRequest is the request to charge the onboarding
// fee. The join date defaults to the directory entry's join date when
// omitted.
type RecordRegistrationRequest struct {
	MonthlyFee      decimal.Decimal `json:"monthly_fee" validate:"required"`
	RegistrationFee decimal.Decimal `json:"registration_fee"`
	BalanceType     string          `json:"balance_type" validate:"omitempty,oneof=due advance"`
	JoinDate        string          `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
}

// FinancialRecordDTO represents a charge row in API responses.
type FinancialRecordDTO struct {
	ID          string `json:"id"`
	ResidentID  string `json:"resident_id"`
	Amount      string `json:"amount"`
	BalanceType string `json:"balance_type"`
	MonthlyFee  string `json:"monthly_fee,omitempty"`
	PaymentDate string `json:"payment_date"`
}

// =============================================================================
// CHECKOUT
// =============================================================================

// CheckoutRequest is the request to settle a checkout. Percentage is
// the student-path flat rate; it is ignored for staff.
type CheckoutRequest struct {
	CheckoutDate string           `json:"checkout_date" validate:"required,datetime=2006-01-02"`
	Percentage   *decimal.Decimal `json:"percentage"`
}

// =============================================================================
// CHECKOUT RULES
// =============================================================================

// CheckoutRuleDTO represents a deduction rule.
type CheckoutRuleDTO struct {
	ID              string `json:"id"`
	ResidentID      string `json:"resident_id,omitempty"`
	IsActive        bool   `json:"is_active"`
	ActiveAfterDays int    `json:"active_after_days"`
	Percentage      string `json:"percentage"`
}

// SaveCheckoutRuleRequest creates or replaces a rule. An empty
// resident id makes the rule a global default.
type SaveCheckoutRuleRequest struct {
	ID              string          `json:"id"`
	ResidentID      string          `json:"resident_id"`
	IsActive        bool            `json:"is_active"`
	ActiveAfterDays int             `json:"active_after_days" validate:"gte=0"`
	Percentage      decimal.Decimal `json:"percentage" validate:"required"`
}
