/*
handlers.go - HTTP handlers for the billing engine

PURPOSE:
  Exposes the financial engine over REST. Handlers parse and validate
  input, delegate to the domain services, and serialize results.

ENDPOINTS:
  Residents:
    GET    /api/residents                          List directory entries
    POST   /api/residents                          Create directory entry
    GET    /api/residents/{id}                     Get directory entry
    POST   /api/residents/{id}/registration        Charge onboarding fee
    GET    /api/residents/{id}/financial-summary   Current balance view
    GET    /api/residents/{id}/payments            Payment history
    POST   /api/residents/{id}/payments            Record a payment
    POST   /api/residents/{id}/checkout            Settle a checkout

  Rules:
    GET    /api/checkout-rules?resident_id=...     List rules in scope
    POST   /api/checkout-rules                     Create/replace a rule

STATUS CODES:
  200 on success, including degraded error-status summaries; a
  summary the engine could not compute is still a renderable answer.
  404 only when the resident truly does not exist at the directory
  level. 400 for malformed/invalid bodies. 500 is never expected from
  the engine itself; internal failures surface as error-status
  summaries.
*/
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hostelcore/billing-engine/billing"
)

// Directory is the resident lookup the API needs: the engine's
// Directory plus listing for the admin panel.
type Directory interface {
	billing.Directory
	ListResidents(ctx context.Context) ([]billing.Resident, error)
}

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Store         billing.Store
	Directory     Directory
	Summaries     *billing.SummaryBuilder
	Payments      *billing.PaymentService
	Checkouts     *billing.CheckoutService
	Registrations *billing.RegistrationService
	Logger        *slog.Logger

	validate *validator.Validate
}

// NewHandler wires a handler around the store, directory, and
// services.
func NewHandler(store billing.Store, dir Directory, summaries *billing.SummaryBuilder,
	payments *billing.PaymentService, checkouts *billing.CheckoutService,
	registrations *billing.RegistrationService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:         store,
		Directory:     dir,
		Summaries:     summaries,
		Payments:      payments,
		Checkouts:     checkouts,
		Registrations: registrations,
		Logger:        logger,
		validate:      validator.New(),
	}
}

// =============================================================================
// RESIDENT HANDLERS
// =============================================================================

// ListResidents returns all directory entries.
func (h *Handler) ListResidents(w http.ResponseWriter, r *http.Request) {
	residents, err := h.Directory.ListResidents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list residents", err)
		return
	}

	dtos := make([]ResidentDTO, len(residents))
	for i, res := range residents {
		dtos[i] = toResidentDTO(res)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateResident creates a directory entry.
func (h *Handler) CreateResident(w http.ResponseWriter, r *http.Request) {
	var req CreateResidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	joinDate, _ := time.Parse("2006-01-02", req.JoinDate)
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	resident := billing.Resident{
		ID:       billing.ResidentID(req.ID),
		Name:     req.Name,
		Type:     billing.ResidentType(req.Type),
		JoinDate: joinDate,
	}
	if err := h.Directory.SaveResident(r.Context(), resident); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create resident", err)
		return
	}

	writeJSON(w, http.StatusCreated, toResidentDTO(resident))
}

// GetResident returns a single directory entry.
func (h *Handler) GetResident(w http.ResponseWriter, r *http.Request) {
	id := billing.ResidentID(chi.URLParam(r, "id"))

	resident, err := h.Directory.Resident(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get resident", err)
		return
	}
	if resident == nil {
		writeError(w, http.StatusNotFound, "Resident not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toResidentDTO(*resident))
}

// =============================================================================
// FINANCIAL SUMMARY
// =============================================================================

// GetFinancialSummary returns the current balance view. Degraded
// summaries (status "error") still return 200; 404 is reserved for
// residents the directory has never heard of.
func (h *Handler) GetFinancialSummary(w http.ResponseWriter, r *http.Request) {
	id := billing.ResidentID(chi.URLParam(r, "id"))

	resident, err := h.Directory.Resident(r.Context(), id)
	if err == nil && resident == nil {
		writeError(w, http.StatusNotFound, "Resident not found", nil)
		return
	}

	summary := h.Summaries.BuildSummary(r.Context(), id)
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// =============================================================================
// PAYMENTS
// =============================================================================

// ApplyPayment records a payment and returns the updated summary.
func (h *Handler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	id := billing.ResidentID(chi.URLParam(r, "id"))

	var req ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Amount must be positive", nil)
		return
	}

	resident, err := h.Directory.Resident(r.Context(), id)
	if err == nil && resident == nil {
		writeError(w, http.StatusNotFound, "Resident not found", nil)
		return
	}

	summary := h.Payments.ApplyPayment(r.Context(), id, req.Amount, req.PaymentType, req.Remark)
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// ListPayments returns the payment history for a resident.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id := billing.ResidentID(chi.URLParam(r, "id"))

	entries, err := h.Store.IncomeEntries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]IncomeEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = IncomeEntryDTO{
			ID:             string(e.ID),
			ResidentID:     string(e.ResidentID),
			Amount:         e.Amount.StringFixed(2),
			ReceivedAmount: e.ReceivedAmount.StringFixed(2),
			DueAmount:      e.DueAmount.StringFixed(2),
			PaymentStatus:  string(e.PaymentStatus),
			PaymentType:    e.PaymentType,
			Remark:         e.Remark,
			IncomeDate:     e.IncomeDate.Format("2006-01-02"),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REGISTRATION
// =============================================================================

// RecordRegistration charges the onboarding fee (prorated first
// month plus registration fee).
func (h *Handler) RecordRegistration(w http.ResponseWriter, r *http.Request) {
	id := billing.ResidentID(chi.URLParam(r, "id"))

	var req RecordRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	resident, err := h.Directory.Resident(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get resident", err)
		return
	}
	if resident == nil {
		writeError(w, http.StatusNotFound, "Resident not found", nil)
		return
	}

	joinDate := resident.JoinDate
	if req.JoinDate != "" {
		joinDate, _ = time.Parse("2006-01-02", req.JoinDate)
	}
	balanceType := billing.BalanceDue
	if req.BalanceType != "" {
		balanceType = billing.BalanceType(req.BalanceType)
	}

	rec, err := h.Registrations.RecordRegistration(r.Context(), billing.Registration{
		ResidentID:      id,
		MonthlyFee:      req.MonthlyFee,
		RegistrationFee: req.RegistrationFee,
		BalanceType:     balanceType,
		JoinDate:        joinDate,
	})
	if err != nil {
		if billing.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Invalid registration", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to record registration", err)
		return
	}

	dto := FinancialRecordDTO{
		ID:          string(rec.ID),
		ResidentID:  string(rec.ResidentID),
		Amount:      rec.Amount.StringFixed(2),
		BalanceType: string(rec.BalanceType),
		PaymentDate: rec.PaymentDate.Format("2006-01-02"),
	}
	if rec.MonthlyFee != nil {
		dto.MonthlyFee = rec.MonthlyFee.StringFixed(2)
	}
	writeJSON(w, http.StatusCreated, dto)
}

// =============================================================================
// CHECKOUT
// =============================================================================

// Checkout settles an early checkout and returns the updated summary.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	id := billing.ResidentID(chi.URLParam(r, "id"))

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	resident, err := h.Directory.Resident(r.Context(), id)
	if err == nil && resident == nil {
		writeError(w, http.StatusNotFound, "Resident not found", nil)
		return
	}

	checkoutDate, _ := time.Parse("2006-01-02", req.CheckoutDate)
	summary := h.Checkouts.CompleteCheckout(r.Context(), id, billing.CheckoutInput{
		CheckoutDate:   checkoutDate,
		FlatPercentage: req.Percentage,
	})
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// =============================================================================
// CHECKOUT RULES
// =============================================================================

// ListCheckoutRules returns the rules in scope for a resident id
// (query param; empty lists globals only).
func (h *Handler) ListCheckoutRules(w http.ResponseWriter, r *http.Request) {
	id := billing.ResidentID(r.URL.Query().Get("resident_id"))

	rules, err := h.Store.CheckoutRules(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}

	dtos := make([]CheckoutRuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = CheckoutRuleDTO{
			ID:              string(rule.ID),
			ResidentID:      string(rule.ResidentID),
			IsActive:        rule.IsActive,
			ActiveAfterDays: rule.ActiveAfterDays,
			Percentage:      rule.Percentage.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveCheckoutRule creates or replaces a deduction rule.
func (h *Handler) SaveCheckoutRule(w http.ResponseWriter, r *http.Request) {
	var req SaveCheckoutRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	rule := billing.CheckoutRule{
		ID:              billing.RuleID(req.ID),
		ResidentID:      billing.ResidentID(req.ResidentID),
		IsActive:        req.IsActive,
		ActiveAfterDays: req.ActiveAfterDays,
		Percentage:      req.Percentage,
	}
	if err := h.Store.SaveCheckoutRule(r.Context(), rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save rule", err)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutRuleDTO{
		ID:              req.ID,
		ResidentID:      req.ResidentID,
		IsActive:        req.IsActive,
		ActiveAfterDays: req.ActiveAfterDays,
		Percentage:      req.Percentage.StringFixed(2),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func toResidentDTO(r billing.Resident) ResidentDTO {
	return ResidentDTO{
		ID:       string(r.ID),
		Name:     r.Name,
		Type:     string(r.Type),
		JoinDate: r.JoinDate.Format("2006-01-02"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
