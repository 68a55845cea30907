/*
Package tips prorates a day's tip pool among the employees who worked it.

PURPOSE:
  Given one DailyTipEntry per day - the day's tip pool plus who worked how
  many hours - this package allocates each pool proportionally to hours,
  accumulates per-employee totals across the period, and builds the
  date-by-employee pivot the tip report renders.

WHO COUNTS:
  An employee shares in a day's pool only when the shift is finished: a
  recorded logout AND strictly positive hours. Anyone still clocked in (or
  with zero hours) gets nothing for that day and stays out of the hour-pool
  denominator. In-progress shifts are dropped on purpose; that matches the
  behavior the business signed off on.

NUMERIC POLICY:
  tipPerHour and per-day contributions are exact decimals. Rounding happens
  once, when a figure lands in the report: 2 places for money, 1 for hours.

SEE ALSO:
  - prorate.go: The allocation algorithm
  - store/sqlite: FetchDailyTipInputs assembles the entries
*/
package tips

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT - Assembled by the store, never persisted
// =============================================================================

// EmployeeDay is one employee's presence on one day.
type EmployeeDay struct {
	EmployeeID  string
	Name        string
	Hours       decimal.Decimal
	LoggedOutAt *time.Time // nil while the shift is still open
}

// Finished reports whether this shift counts toward the day's pool.
func (e EmployeeDay) Finished() bool {
	return e.LoggedOutAt != nil && e.Hours.IsPositive()
}

// DailyTipEntry is one day's tip pool and the employees who worked it.
type DailyTipEntry struct {
	Date      time.Time
	TotalTip  decimal.Decimal
	Employees []EmployeeDay
}

// =============================================================================
// OUTPUT - The period report
// =============================================================================

// EmployeeTotal is one row of the ranking, rounded for display.
type EmployeeTotal struct {
	EmployeeID string
	Name       string
	TotalTip   decimal.Decimal
}

// PivotCell is the hours/tip pair for one (employee, date). A cell exists
// only for days the employee finished; empty means empty, not zero.
type PivotCell struct {
	Hours decimal.Decimal
	Tip   decimal.Decimal
}

// PivotRow is one employee's line in the pivot. Cells are keyed by the
// ISO date (2006-01-02) of the column.
type PivotRow struct {
	EmployeeID string
	Name       string
	Cells      map[string]PivotCell
}

// PeriodReport is everything the tip report page needs.
type PeriodReport struct {
	// Ranking is sorted descending by total tip; ties keep first-seen order.
	Ranking []EmployeeTotal

	// Dates are the distinct entry dates, sorted ascending. They are the
	// pivot columns.
	Dates []time.Time

	// Rows are the pivot rows, one per employee in first-seen order.
	Rows []PivotRow
}

// DateKey formats a pivot column key.
func DateKey(d time.Time) string { return d.Format("2006-01-02") }
