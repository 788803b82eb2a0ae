/*
store.go - Persistence interfaces for the resident ledger

PURPOSE:
  Defines the contract between the billing engine and storage. The
  ledger tables are append-only: charges, payments, and checkout
  events are written once and never updated or deleted (resident
  deletion cascades are the only removal path, and they live outside
  this package).

APPEND-ONLY CONTRACT:
  - AppendFinancialRecord / AppendIncomeEntry / AppendCheckoutEvent
    are the only writes to ledger tables
  - No Update or Delete methods exist on ledger rows
  - AppendCheckoutEvent fails with ErrAlreadyCheckedOut if the
    resident already has one (checkout happens exactly once)

ORDERING:
  Reads return rows ordered by their business date, then insertion
  order. The "last non-null monthly fee wins" fold depends on this.

READ-AFTER-WRITE:
  A write through a Store handle must be visible to the immediately
  following read through the same handle. ApplyPayment relies on this
  to return a summary that includes the entry it just appended.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - billing/store: in-memory store for tests and dev
*/
package billing

import "context"

// Store persists the resident ledger. Append-only for ledger rows;
// checkout rules are configuration and may be replaced.
type Store interface {
	// AppendFinancialRecord persists a charge row.
	AppendFinancialRecord(ctx context.Context, rec FinancialRecord) error

	// FinancialRecords returns all charge rows for a resident,
	// ordered by payment date then insertion order.
	FinancialRecords(ctx context.Context, id ResidentID) ([]FinancialRecord, error)

	// AppendIncomeEntry persists a payment row.
	AppendIncomeEntry(ctx context.Context, e IncomeEntry) error

	// IncomeEntries returns all payment rows for a resident,
	// ordered by income date then insertion order.
	IncomeEntries(ctx context.Context, id ResidentID) ([]IncomeEntry, error)

	// AppendCheckoutEvent persists the one-time checkout record.
	// Returns ErrAlreadyCheckedOut if one exists for the resident.
	AppendCheckoutEvent(ctx context.Context, ev CheckoutEvent) error

	// CheckoutEvents returns checkout records for a resident.
	CheckoutEvents(ctx context.Context, id ResidentID) ([]CheckoutEvent, error)

	// SaveCheckoutRule inserts or replaces a rule.
	SaveCheckoutRule(ctx context.Context, rule CheckoutRule) error

	// CheckoutRules returns the rules scoped to a resident: rows with
	// a matching resident id plus global rows (empty resident id).
	CheckoutRules(ctx context.Context, id ResidentID) ([]CheckoutRule, error)
}

// Directory is the resident lookup the engine depends on. The full
// resident profile is owned elsewhere; the engine needs existence,
// type, and join date.
type Directory interface {
	// Resident returns the directory entry, or nil when the id is
	// unknown.
	Resident(ctx context.Context, id ResidentID) (*Resident, error)

	// SaveResident inserts or updates a directory entry.
	SaveResident(ctx context.Context, r Resident) error
}

// ResidentExists reports whether the directory knows the id. Thin
// convenience over Directory.Resident.
func ResidentExists(ctx context.Context, dir Directory, id ResidentID) (bool, error) {
	r, err := dir.Resident(ctx, id)
	if err != nil {
		return false, err
	}
	return r != nil, nil
}
