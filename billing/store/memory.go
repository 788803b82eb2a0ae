// Package store provides an in-memory billing.Store implementation
// for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/hostelcore/billing-engine/billing"
)

// =============================================================================
// MEMORY STORE - Implements billing.Store and billing.Directory
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	residents map[billing.ResidentID]billing.Resident
	financial map[billing.ResidentID][]billing.FinancialRecord
	income    map[billing.ResidentID][]billing.IncomeEntry
	checkouts map[billing.ResidentID][]billing.CheckoutEvent
	rules     map[billing.RuleID]billing.CheckoutRule
}

func NewMemory() *Memory {
	return &Memory{
		residents: make(map[billing.ResidentID]billing.Resident),
		financial: make(map[billing.ResidentID][]billing.FinancialRecord),
		income:    make(map[billing.ResidentID][]billing.IncomeEntry),
		checkouts: make(map[billing.ResidentID][]billing.CheckoutEvent),
		rules:     make(map[billing.RuleID]billing.CheckoutRule),
	}
}

// -----------------------------------------------------------------------------
// Directory
// -----------------------------------------------------------------------------

func (m *Memory) Resident(_ context.Context, id billing.ResidentID) (*billing.Resident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.residents[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) SaveResident(_ context.Context, r billing.Resident) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.residents[r.ID] = r
	return nil
}

func (m *Memory) ListResidents(_ context.Context) ([]billing.Resident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]billing.Resident, 0, len(m.residents))
	for _, r := range m.residents {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// -----------------------------------------------------------------------------
// Financial records (append-only)
// -----------------------------------------------------------------------------

func (m *Memory) AppendFinancialRecord(_ context.Context, rec billing.FinancialRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := append(m.financial[rec.ResidentID], rec)
	// Stable sort keeps insertion order for same-day rows, which the
	// last-fee-wins fold depends on.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PaymentDate.Before(recs[j].PaymentDate)
	})
	m.financial[rec.ResidentID] = recs
	return nil
}

func (m *Memory) FinancialRecords(_ context.Context, id billing.ResidentID) ([]billing.FinancialRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]billing.FinancialRecord, len(m.financial[id]))
	copy(out, m.financial[id])
	return out, nil
}

// -----------------------------------------------------------------------------
// Income entries (append-only)
// -----------------------------------------------------------------------------

func (m *Memory) AppendIncomeEntry(_ context.Context, e billing.IncomeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.income[e.ResidentID] = append(m.income[e.ResidentID], e)
	return nil
}

func (m *Memory) IncomeEntries(_ context.Context, id billing.ResidentID) ([]billing.IncomeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]billing.IncomeEntry, len(m.income[id]))
	copy(out, m.income[id])
	return out, nil
}

// -----------------------------------------------------------------------------
// Checkout events (append-only, one per resident)
// -----------------------------------------------------------------------------

func (m *Memory) AppendCheckoutEvent(_ context.Context, ev billing.CheckoutEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.checkouts[ev.ResidentID]) > 0 {
		return billing.ErrAlreadyCheckedOut
	}
	m.checkouts[ev.ResidentID] = append(m.checkouts[ev.ResidentID], ev)
	return nil
}

func (m *Memory) CheckoutEvents(_ context.Context, id billing.ResidentID) ([]billing.CheckoutEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]billing.CheckoutEvent, len(m.checkouts[id]))
	copy(out, m.checkouts[id])
	return out, nil
}

// -----------------------------------------------------------------------------
// Checkout rules
// -----------------------------------------------------------------------------

func (m *Memory) SaveCheckoutRule(_ context.Context, rule billing.CheckoutRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules[rule.ID] = rule
	return nil
}

func (m *Memory) CheckoutRules(_ context.Context, id billing.ResidentID) ([]billing.CheckoutRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []billing.CheckoutRule
	for _, r := range m.rules {
		if r.ResidentID == id || r.ResidentID == "" {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
