/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error values in one place. Two propagation regimes coexist:

  FAIL FAST (programming errors):
    Bad input to the pure calculators (inverted date ranges) returns an
    error straight to the caller. Nothing was persisted; the caller has
    a bug to fix.

  FAIL SOFT (operational errors):
    Aggregation and ledger I/O failures inside summary building and
    payment application are converted into a zeroed BalanceSummary
    tagged StatusError. Financial-summary failures must never crash a
    dashboard or block unrelated flows.

USAGE:
  if errors.Is(err, billing.ErrResidentNotFound) { ... }
*/
package billing

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned by Prorate when the period end
	// precedes the period start.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrResidentNotFound is returned when a resident id has no
	// directory entry.
	ErrResidentNotFound = errors.New("resident not found")

	// ErrAlreadyCheckedOut is returned when a checkout event already
	// exists for the resident. Checkouts happen exactly once.
	ErrAlreadyCheckedOut = errors.New("resident already checked out")

	// ErrRuleNotFound is returned when a referenced checkout rule
	// doesn't exist.
	ErrRuleNotFound = errors.New("checkout rule not found")

	// ErrNoFinancialRecords is returned by checkout settlement when a
	// resident has no charge history to derive tenure from.
	ErrNoFinancialRecords = errors.New("no financial records for resident")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRangeError reports the offending proration period.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s before start %s",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input
// rather than an engine failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrAlreadyCheckedOut) ||
		errors.Is(err, ErrNoFinancialRecords)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResidentNotFound) ||
		errors.Is(err, ErrRuleNotFound)
}
