/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model (decimal.Decimal, time.Time) from the external
  API contract; money crosses the boundary as already-rounded float64.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - reporting, tips: The result types converted here
*/
package api

import (
	"time"

	"github.com/crewdesk/workforce-engine/reporting"
	"github.com/crewdesk/workforce-engine/store/sqlite"
	"github.com/crewdesk/workforce-engine/tips"
)

// =============================================================================
// REPORT TYPES
// =============================================================================

// MethodTotalsDTO is a cash/card split. Both keys are always present.
type MethodTotalsDTO struct {
	Cash  float64 `json:"cash"`
	Card  float64 `json:"card"`
	Total float64 `json:"total"`
}

// WeeklyComparisonDTO is the week-over-week report.
type WeeklyComparisonDTO struct {
	ThisWeekStart string          `json:"this_week_start"`
	ThisWeekEnd   string          `json:"this_week_end"`
	LastWeekStart string          `json:"last_week_start"`
	LastWeekEnd   string          `json:"last_week_end"`
	ThisWeek      MethodTotalsDTO `json:"this_week"`
	LastWeek      MethodTotalsDTO `json:"last_week"`
	Diff          float64         `json:"diff"`
	Trend         string          `json:"trend"`
}

// RangeTotalDTO is a plain sum over one period.
type RangeTotalDTO struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Total float64 `json:"total"`
}

// TipReportDTO is the tip ranking plus the date x employee pivot.
type TipReportDTO struct {
	Ranking []EmployeeTotalDTO `json:"ranking"`
	Dates   []string           `json:"dates"`
	Rows    []PivotRowDTO      `json:"rows"`
}

type EmployeeTotalDTO struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	TotalTip   float64 `json:"total_tip"`
}

// PivotRowDTO carries one employee's cells keyed by ISO date. Dates the
// employee did not finish are simply absent.
type PivotRowDTO struct {
	EmployeeID string                  `json:"employee_id"`
	Name       string                  `json:"name"`
	Cells      map[string]PivotCellDTO `json:"cells"`
}

type PivotCellDTO struct {
	Hours float64 `json:"hours"`
	Tip   float64 `json:"tip"`
}

// =============================================================================
// EMPLOYEE / KIOSK TYPES
// =============================================================================

type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateEmployeeRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

type ScheduleDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Weekday    int    `json:"weekday"`
	StartClock string `json:"start_clock"`
	EndClock   string `json:"end_clock"`
}

type TimeLogDTO struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	LoginAt  string  `json:"login_at"`
	LogoutAt *string `json:"logout_at,omitempty"`
	Hours    float64 `json:"hours"`
}

type TimesheetDTO struct {
	Employee  EmployeeDTO   `json:"employee"`
	Schedules []ScheduleDTO `json:"schedules"`
	TimeLogs  []TimeLogDTO  `json:"time_logs"`
}

// ClockRequest is the kiosk clock-in/out body.
type ClockRequest struct {
	EmployeeID string `json:"employee_id"`
	PIN        string `json:"pin"`
}

// =============================================================================
// RECORD ENTRY TYPES
// =============================================================================

type AddSaleRequest struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

type AddCostRequest struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

type SetTipPoolRequest struct {
	Date     string  `json:"date"`
	TotalTip float64 `json:"total_tip"`
}

// =============================================================================
// ADMIN TYPES
// =============================================================================

type CompanyDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateCompanyRequest struct {
	Name string `json:"name"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toMethodTotalsDTO(m reporting.MethodTotals) MethodTotalsDTO {
	cash, _ := m.Cash.Float64()
	card, _ := m.Card.Float64()
	total, _ := m.Total().Float64()
	return MethodTotalsDTO{Cash: cash, Card: card, Total: total}
}

func toWeeklyComparisonDTO(c reporting.WeeklyComparison) WeeklyComparisonDTO {
	diff, _ := c.Diff.Float64()
	return WeeklyComparisonDTO{
		ThisWeekStart: c.ThisWeek.Start.Format("2006-01-02"),
		ThisWeekEnd:   c.ThisWeek.End.Format("2006-01-02"),
		LastWeekStart: c.LastWeek.Start.Format("2006-01-02"),
		LastWeekEnd:   c.LastWeek.End.Format("2006-01-02"),
		ThisWeek:      toMethodTotalsDTO(c.ThisSplit),
		LastWeek:      toMethodTotalsDTO(c.LastSplit),
		Diff:          diff,
		Trend:         string(c.Trend),
	}
}

func toTipReportDTO(r *tips.PeriodReport) TipReportDTO {
	dto := TipReportDTO{
		Ranking: make([]EmployeeTotalDTO, 0, len(r.Ranking)),
		Dates:   make([]string, 0, len(r.Dates)),
		Rows:    make([]PivotRowDTO, 0, len(r.Rows)),
	}
	for _, e := range r.Ranking {
		total, _ := e.TotalTip.Float64()
		dto.Ranking = append(dto.Ranking, EmployeeTotalDTO{
			EmployeeID: e.EmployeeID, Name: e.Name, TotalTip: total,
		})
	}
	for _, d := range r.Dates {
		dto.Dates = append(dto.Dates, tips.DateKey(d))
	}
	for _, row := range r.Rows {
		cells := make(map[string]PivotCellDTO, len(row.Cells))
		for k, c := range row.Cells {
			hours, _ := c.Hours.Float64()
			tip, _ := c.Tip.Float64()
			cells[k] = PivotCellDTO{Hours: hours, Tip: tip}
		}
		dto.Rows = append(dto.Rows, PivotRowDTO{
			EmployeeID: row.EmployeeID, Name: row.Name, Cells: cells,
		})
	}
	return dto
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        e.ID,
		Name:      e.Name,
		Active:    e.Active,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func toTimeLogDTO(l sqlite.TimeLog) TimeLogDTO {
	hours, _ := reporting.RoundHours(l.Hours()).Float64()
	dto := TimeLogDTO{
		ID:      l.ID,
		Date:    l.LogDate.Format("2006-01-02"),
		LoginAt: l.LoginAt.Format(time.RFC3339),
		Hours:   hours,
	}
	if l.LogoutAt != nil {
		s := l.LogoutAt.Format(time.RFC3339)
		dto.LogoutAt = &s
	}
	return dto
}
