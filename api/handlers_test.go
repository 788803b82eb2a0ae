package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelcore/billing-engine/api"
	"github.com/hostelcore/billing-engine/billing"
	"github.com/hostelcore/billing-engine/billing/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()

	m := store.NewMemory()
	summaries := billing.NewSummaryBuilder(m, m, billing.DefaultCapabilities(), nil)
	payments := billing.NewPaymentService(m, m, summaries, nil)
	checkouts := billing.NewCheckoutService(m, m, summaries, nil)
	registrations := billing.NewRegistrationService(m, m, nil)

	h := api.NewHandler(m, m, summaries, payments, checkouts, registrations, nil)
	srv := httptest.NewServer(api.NewRouter(h, api.RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv, m
}

func seedResident(t *testing.T, m *store.Memory, id string, rt billing.ResidentType) {
	t.Helper()
	require.NoError(t, m.SaveResident(context.Background(), billing.Resident{
		ID:       billing.ResidentID(id),
		Name:     "Resident " + id,
		Type:     rt,
		JoinDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func seedDue(t *testing.T, m *store.Memory, id, amount, fee string) {
	t.Helper()
	f := decimal.RequireFromString(fee)
	require.NoError(t, m.AppendFinancialRecord(context.Background(), billing.FinancialRecord{
		ID:          billing.RecordID("fr-" + id),
		ResidentID:  billing.ResidentID(id),
		Amount:      decimal.RequireFromString(amount),
		BalanceType: billing.BalanceDue,
		MonthlyFee:  &f,
		PaymentDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// =============================================================================
// FINANCIAL SUMMARY
// =============================================================================

func TestGetFinancialSummary_OK(t *testing.T) {
	srv, m := newTestServer(t)
	seedResident(t, m, "s1", billing.ResidentStudent)
	seedDue(t, m, "s1", "50000", "15000")

	resp, err := http.Get(srv.URL + "/api/residents/s1/financial-summary")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.SummaryDTO
	decodeBody(t, resp, &got)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, "50000.00", got.TotalAmount)
	assert.Equal(t, "50000.00", got.RemainingBalance)
	assert.Equal(t, "15000.00", got.MonthlyFee)
}

func TestGetFinancialSummary_UnknownResident404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/residents/ghost/financial-summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestApplyPayment_FlowToSettled(t *testing.T) {
	srv, m := newTestServer(t)
	seedResident(t, m, "s2", billing.ResidentStudent)
	seedDue(t, m, "s2", "50000", "15000")

	resp := postJSON(t, srv.URL+"/api/residents/s2/payments", map[string]any{
		"amount": "20000", "payment_type": "cash", "remark": "feb",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var first api.SummaryDTO
	decodeBody(t, resp, &first)
	assert.Equal(t, "pending", first.Status)
	assert.Equal(t, "30000.00", first.RemainingBalance)

	resp = postJSON(t, srv.URL+"/api/residents/s2/payments", map[string]any{
		"amount": "30000", "payment_type": "bank",
	})
	var second api.SummaryDTO
	decodeBody(t, resp, &second)
	assert.Equal(t, "paid", second.Status)
	assert.Equal(t, "0.00", second.RemainingBalance)
}

func TestApplyPayment_NonPositiveAmount400(t *testing.T) {
	srv, m := newTestServer(t)
	seedResident(t, m, "s3", billing.ResidentStudent)

	resp := postJSON(t, srv.URL+"/api/residents/s3/payments", map[string]any{
		"amount": "-5",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestApplyPayment_UnknownResident404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/residents/ghost/payments", map[string]any{
		"amount": "100",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// RESIDENTS + REGISTRATION
// =============================================================================

func TestCreateResident_ThenRegister(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/residents", map[string]any{
		"id": "n1", "name": "Asha", "type": "student", "join_date": "2024-02-15",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/residents/n1/registration", map[string]any{
		"monthly_fee": "3000", "registration_fee": "500",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var rec api.FinancialRecordDTO
	decodeBody(t, resp, &rec)
	// prorate(3000, Feb 15, Feb 29 2024) + 500 = 1551.72 + 500
	assert.Equal(t, "2051.72", rec.Amount)
	assert.Equal(t, "due", rec.BalanceType)
}

func TestCreateResident_InvalidType400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/residents", map[string]any{
		"name": "Bad", "type": "visitor", "join_date": "2024-02-15",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// CHECKOUT
// =============================================================================

func TestCheckout_StudentFlatPercentage(t *testing.T) {
	srv, m := newTestServer(t)
	seedResident(t, m, "s4", billing.ResidentStudent)
	seedDue(t, m, "s4", "3000", "3000")

	resp := postJSON(t, srv.URL+"/api/residents/s4/checkout", map[string]any{
		"checkout_date": "2024-01-15", "percentage": "50",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.SummaryDTO
	decodeBody(t, resp, &got)
	// Tenure Jan 1 - Jan 15 inclusive = 15 days: 3000/30*15*50/100
	assert.Equal(t, "750.00", got.DeductedAmount)
}

// =============================================================================
// CHECKOUT RULES
// =============================================================================

func TestCheckoutRules_SaveAndList(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/checkout-rules", map[string]any{
		"id": "r-30", "is_active": true, "active_after_days": 30, "percentage": "5",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/checkout-rules")
	require.NoError(t, err)

	var rules []api.CheckoutRuleDTO
	decodeBody(t, listResp, &rules)
	require.Len(t, rules, 1)
	assert.Equal(t, "r-30", rules[0].ID)
	assert.Equal(t, "5.00", rules[0].Percentage)
}
