/*
errors.go - Error taxonomy for the workforce engine

PURPOSE:
  All error categories the reporting and tip engines can produce, in one
  place. Store and API packages wrap these with additional context so that
  one classification maps to one HTTP status.

ERROR CATEGORIES:
  1. Unauthorized - no tenant scope; the query must not run at all
  2. NotFound     - a referenced employee/company is absent
  3. InvalidInput - malformed range, duplicate employee ids, bad amounts

NOT ERRORS:
  A day whose finished employees worked zero total hours is skipped by the
  tip engine. That is a defined policy ("no data"), not a failure, and no
  error type exists for it.

USAGE:
  if reporting.IsUnauthorized(err) { ... 401 ... }

SEE ALSO:
  - api/handlers.go: Maps these to HTTP statuses
  - store/sqlite: Returns ErrUnauthorized before querying without a scope
*/
package reporting

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnauthorized is returned when no company scope is available.
	// Queries must never fall back to scanning across tenants.
	ErrUnauthorized = errors.New("no company scope")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for malformed ranges, non-numeric amounts,
	// and duplicate employee ids within a single day's tip entry.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidPeriodError reports a range whose end precedes its start.
type InvalidPeriodError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period: end %s before start %s",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}

func (e *InvalidPeriodError) Unwrap() error { return ErrInvalidInput }

// DuplicateEmployeeError reports the same employee id appearing twice in one
// day's tip entry. Allocation would be undefined, so the whole computation is
// rejected.
type DuplicateEmployeeError struct {
	EmployeeID string
	Date       time.Time
}

func (e *DuplicateEmployeeError) Error() string {
	return fmt.Sprintf("duplicate employee %s in tip entry for %s",
		e.EmployeeID, e.Date.Format("2006-01-02"))
}

func (e *DuplicateEmployeeError) Unwrap() error { return ErrInvalidInput }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsUnauthorized returns true if the error means the tenant scope is missing.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool { return errors.Is(err, ErrInvalidInput) }
