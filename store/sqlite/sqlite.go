/*
Package sqlite provides the SQLite-backed implementation of the
billing storage interfaces.

INTERFACES IMPLEMENTED:
  billing.Store:     ledger persistence (charges, payments, checkouts, rules)
  billing.Directory: resident lookup

APPEND-ONLY ENFORCEMENT:
  Ledger tables (financial_records, income_entries, checkout_events)
  have no UPDATE or DELETE statements. Resident deletion cascades are
  the only removal path, handled by foreign keys.

KEY TABLES:
  residents:          Directory entries (students and staff)
  financial_records:  Charge rows (registration/monthly fee)
  income_entries:     Payments received
  checkout_events:    One-time checkout deduction per resident
  checkout_rules:     Tiered deduction configuration

UNIQUENESS:
  idx_checkout_once enforces at most one checkout event per resident;
  violations map to billing.ErrAlreadyCheckedOut.

MONEY:
  Decimal amounts are stored as TEXT via decimal.String() and parsed
  back; no float round-trips.

WAL MODE:
  Opened with WAL and foreign keys on. A sync.RWMutex guards the
  handle; with PostgreSQL the database's own concurrency control
  would take over.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/hostelcore/billing-engine/billing"
)

// Store implements billing.Store and billing.Directory on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at path and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Residents (directory: students and staff)
	CREATE TABLE IF NOT EXISTS residents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		resident_type TEXT NOT NULL,
		join_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Financial records (append-only charge rows)
	CREATE TABLE IF NOT EXISTS financial_records (
		id TEXT PRIMARY KEY,
		resident_id TEXT NOT NULL REFERENCES residents(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		balance_type TEXT NOT NULL,
		monthly_fee TEXT,
		payment_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_financial_resident_date
		ON financial_records(resident_id, payment_date);

	-- Income entries (append-only payments)
	CREATE TABLE IF NOT EXISTS income_entries (
		id TEXT PRIMARY KEY,
		resident_id TEXT NOT NULL REFERENCES residents(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		received_amount TEXT NOT NULL,
		due_amount TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		payment_type TEXT,
		remark TEXT,
		income_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_income_resident_date
		ON income_entries(resident_id, income_date);

	-- Checkout events (append-only, exactly one per resident)
	CREATE TABLE IF NOT EXISTS checkout_events (
		id TEXT PRIMARY KEY,
		resident_id TEXT NOT NULL REFERENCES residents(id) ON DELETE CASCADE,
		checkout_duration INTEGER NOT NULL,
		deducted_amount TEXT NOT NULL,
		checkout_rule_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_checkout_once
		ON checkout_events(resident_id);

	-- Checkout rules (empty resident_id = global default)
	CREATE TABLE IF NOT EXISTS checkout_rules (
		id TEXT PRIMARY KEY,
		resident_id TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		active_after_days INTEGER NOT NULL,
		percentage TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rules_resident
		ON checkout_rules(resident_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DIRECTORY (billing.Directory interface)
// =============================================================================

// SaveResident inserts or updates a directory entry.
func (s *Store) SaveResident(ctx context.Context, r billing.Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO residents (id, name, resident_type, join_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			resident_type = excluded.resident_type,
			join_date = excluded.join_date
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Name, r.Type,
		r.JoinDate.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Resident returns the directory entry, or nil when unknown.
func (s *Store) Resident(ctx context.Context, id billing.ResidentID) (*billing.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r        billing.Resident
		joinDate string
		created  string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, resident_type, join_date, created_at FROM residents WHERE id = ?",
		id,
	).Scan(&r.ID, &r.Name, &r.Type, &joinDate, &created)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.JoinDate, _ = time.Parse(time.RFC3339, joinDate)
	r.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &r, nil
}

// ListResidents returns all directory entries, ordered by name.
func (s *Store) ListResidents(ctx context.Context) ([]billing.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, resident_type, join_date, created_at FROM residents ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var residents []billing.Resident
	for rows.Next() {
		var (
			r        billing.Resident
			joinDate string
			created  string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &joinDate, &created); err != nil {
			return nil, err
		}
		r.JoinDate, _ = time.Parse(time.RFC3339, joinDate)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		residents = append(residents, r)
	}
	return residents, rows.Err()
}

// =============================================================================
// FINANCIAL RECORDS (append-only)
// =============================================================================

// AppendFinancialRecord persists a charge row.
func (s *Store) AppendFinancialRecord(ctx context.Context, rec billing.FinancialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO financial_records
		(id, resident_id, amount, balance_type, monthly_fee, payment_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.ResidentID,
		rec.Amount.String(),
		rec.BalanceType,
		nullDecimal(rec.MonthlyFee),
		rec.PaymentDate.UTC().Format(time.RFC3339),
		createdAt(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append financial record: %w", err)
	}
	return nil
}

// FinancialRecords returns charge rows ordered by payment date then
// insertion order. The ordering is load-bearing: the monthly fee fold
// takes the last non-null value.
func (s *Store) FinancialRecords(ctx context.Context, id billing.ResidentID) ([]billing.FinancialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, resident_id, amount, balance_type, monthly_fee, payment_date, created_at
		FROM financial_records
		WHERE resident_id = ?
		ORDER BY payment_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial records: %w", err)
	}
	defer rows.Close()

	var records []billing.FinancialRecord
	for rows.Next() {
		var (
			rec         billing.FinancialRecord
			amount      string
			monthlyFee  sql.NullString
			paymentDate string
			created     string
		)
		if err := rows.Scan(&rec.ID, &rec.ResidentID, &amount, &rec.BalanceType,
			&monthlyFee, &paymentDate, &created); err != nil {
			return nil, fmt.Errorf("failed to scan financial record: %w", err)
		}
		rec.Amount = billing.MustDecimal(amount)
		if monthlyFee.Valid {
			fee := billing.MustDecimal(monthlyFee.String)
			rec.MonthlyFee = &fee
		}
		rec.PaymentDate, _ = time.Parse(time.RFC3339, paymentDate)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, created)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// INCOME ENTRIES (append-only)
// =============================================================================

// AppendIncomeEntry persists a payment row.
func (s *Store) AppendIncomeEntry(ctx context.Context, e billing.IncomeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO income_entries
		(id, resident_id, amount, received_amount, due_amount, payment_status,
		 payment_type, remark, income_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.ResidentID,
		e.Amount.String(),
		e.ReceivedAmount.String(),
		e.DueAmount.String(),
		e.PaymentStatus,
		nullString(e.PaymentType),
		nullString(e.Remark),
		e.IncomeDate.UTC().Format(time.RFC3339),
		createdAt(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append income entry: %w", err)
	}
	return nil
}

// IncomeEntries returns payment rows ordered by income date then
// insertion order.
func (s *Store) IncomeEntries(ctx context.Context, id billing.ResidentID) ([]billing.IncomeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, resident_id, amount, received_amount, due_amount, payment_status,
		       payment_type, remark, income_date, created_at
		FROM income_entries
		WHERE resident_id = ?
		ORDER BY income_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query income entries: %w", err)
	}
	defer rows.Close()

	var entries []billing.IncomeEntry
	for rows.Next() {
		var (
			e           billing.IncomeEntry
			amount      string
			received    string
			due         string
			paymentType sql.NullString
			remark      sql.NullString
			incomeDate  string
			created     string
		)
		if err := rows.Scan(&e.ID, &e.ResidentID, &amount, &received, &due,
			&e.PaymentStatus, &paymentType, &remark, &incomeDate, &created); err != nil {
			return nil, fmt.Errorf("failed to scan income entry: %w", err)
		}
		e.Amount = billing.MustDecimal(amount)
		e.ReceivedAmount = billing.MustDecimal(received)
		e.DueAmount = billing.MustDecimal(due)
		e.PaymentType = paymentType.String
		e.Remark = remark.String
		e.IncomeDate, _ = time.Parse(time.RFC3339, incomeDate)
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// CHECKOUT EVENTS (append-only, one per resident)
// =============================================================================

// AppendCheckoutEvent persists the checkout record. The unique index
// on resident_id rejects a second checkout.
func (s *Store) AppendCheckoutEvent(ctx context.Context, ev billing.CheckoutEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO checkout_events
		(id, resident_id, checkout_duration, deducted_amount, checkout_rule_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		ev.ID,
		ev.ResidentID,
		ev.CheckoutDuration,
		ev.DeductedAmount.String(),
		nullString(string(ev.RuleID)),
		createdAt(ev.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return billing.ErrAlreadyCheckedOut
		}
		return fmt.Errorf("failed to append checkout event: %w", err)
	}
	return nil
}

// CheckoutEvents returns checkout records for a resident.
func (s *Store) CheckoutEvents(ctx context.Context, id billing.ResidentID) ([]billing.CheckoutEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, resident_id, checkout_duration, deducted_amount, checkout_rule_id, created_at
		FROM checkout_events
		WHERE resident_id = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkout events: %w", err)
	}
	defer rows.Close()

	var events []billing.CheckoutEvent
	for rows.Next() {
		var (
			ev       billing.CheckoutEvent
			deducted string
			ruleID   sql.NullString
			created  string
		)
		if err := rows.Scan(&ev.ID, &ev.ResidentID, &ev.CheckoutDuration,
			&deducted, &ruleID, &created); err != nil {
			return nil, fmt.Errorf("failed to scan checkout event: %w", err)
		}
		ev.DeductedAmount = billing.MustDecimal(deducted)
		ev.RuleID = billing.RuleID(ruleID.String)
		ev.CreatedAt, _ = time.Parse(time.RFC3339, created)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// =============================================================================
// CHECKOUT RULES
// =============================================================================

// SaveCheckoutRule inserts or replaces a rule.
func (s *Store) SaveCheckoutRule(ctx context.Context, rule billing.CheckoutRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO checkout_rules
		(id, resident_id, is_active, active_after_days, percentage, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			resident_id = excluded.resident_id,
			is_active = excluded.is_active,
			active_after_days = excluded.active_after_days,
			percentage = excluded.percentage
	`

	_, err := s.db.ExecContext(ctx, query,
		rule.ID,
		rule.ResidentID,
		rule.IsActive,
		rule.ActiveAfterDays,
		rule.Percentage.String(),
		createdAt(rule.CreatedAt),
	)
	return err
}

// CheckoutRules returns rules scoped to the resident plus global
// rules.
func (s *Store) CheckoutRules(ctx context.Context, id billing.ResidentID) ([]billing.CheckoutRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, resident_id, is_active, active_after_days, percentage, created_at
		FROM checkout_rules
		WHERE resident_id = ? OR resident_id = ''
		ORDER BY active_after_days ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkout rules: %w", err)
	}
	defer rows.Close()

	var rules []billing.CheckoutRule
	for rows.Next() {
		var (
			r          billing.CheckoutRule
			percentage string
			created    string
		)
		if err := rows.Scan(&r.ID, &r.ResidentID, &r.IsActive,
			&r.ActiveAfterDays, &percentage, &created); err != nil {
			return nil, fmt.Errorf("failed to scan checkout rule: %w", err)
		}
		r.Percentage = billing.MustDecimal(percentage)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func createdAt(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
