package tips

import (
	"sort"
	"time"

	"github.com/crewdesk/workforce-engine/reporting"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRORATION
// =============================================================================

// Prorate allocates each day's pool proportionally to hours worked and
// accumulates across the period.
//
// Per day:
//  1. Keep only finished employees (logout recorded, hours > 0).
//  2. If their hours sum to zero, skip the day - defined policy, not an error.
//  3. tipPerHour = totalTip / totalHours; each finished employee gets
//     hours * tipPerHour, accumulated by employee id (names may collide).
//
// Duplicate employee ids within one day's entry make the allocation
// undefined, so the whole computation is rejected with InvalidInput.
//
// An empty input yields an empty report.
func Prorate(entries []DailyTipEntry) (*PeriodReport, error) {
	acc := newAccumulator()

	for _, day := range entries {
		if err := checkDuplicates(day); err != nil {
			return nil, err
		}
		acc.addDate(day.Date)

		var finished []EmployeeDay
		totalHours := decimal.Zero
		for _, e := range day.Employees {
			acc.see(e)
			if e.Finished() {
				finished = append(finished, e)
				totalHours = totalHours.Add(e.Hours)
			}
		}

		if totalHours.IsZero() {
			continue
		}

		tipPerHour := day.TotalTip.Div(totalHours)
		for _, e := range finished {
			acc.credit(e, day.Date, e.Hours.Mul(tipPerHour))
		}
	}

	return acc.report(), nil
}

func checkDuplicates(day DailyTipEntry) error {
	seen := make(map[string]bool, len(day.Employees))
	for _, e := range day.Employees {
		if seen[e.EmployeeID] {
			return &reporting.DuplicateEmployeeError{EmployeeID: e.EmployeeID, Date: day.Date}
		}
		seen[e.EmployeeID] = true
	}
	return nil
}

// =============================================================================
// ACCUMULATOR - Running totals and pivot cells across days
// =============================================================================

type accumulator struct {
	order  []string // employee ids in first-seen order
	names  map[string]string
	totals map[string]decimal.Decimal
	cells  map[string]map[string]PivotCell // employee id -> date key -> cell
	dates  map[string]bool
}

func newAccumulator() *accumulator {
	return &accumulator{
		names:  make(map[string]string),
		totals: make(map[string]decimal.Decimal),
		cells:  make(map[string]map[string]PivotCell),
		dates:  make(map[string]bool),
	}
}

func (a *accumulator) addDate(d time.Time) {
	a.dates[DateKey(d)] = true
}

// see registers an employee in first-seen order, finished or not. Employees
// who never finish a shift still appear in the outputs with a zero total.
func (a *accumulator) see(e EmployeeDay) {
	if _, ok := a.names[e.EmployeeID]; !ok {
		a.order = append(a.order, e.EmployeeID)
		a.names[e.EmployeeID] = e.Name
		a.totals[e.EmployeeID] = decimal.Zero
		a.cells[e.EmployeeID] = make(map[string]PivotCell)
	}
}

func (a *accumulator) credit(e EmployeeDay, date time.Time, tip decimal.Decimal) {
	a.totals[e.EmployeeID] = a.totals[e.EmployeeID].Add(tip)
	a.cells[e.EmployeeID][DateKey(date)] = PivotCell{
		Hours: reporting.RoundHours(e.Hours),
		Tip:   reporting.RoundMoney(tip),
	}
}

func (a *accumulator) report() *PeriodReport {
	report := &PeriodReport{
		Ranking: make([]EmployeeTotal, 0, len(a.order)),
		Rows:    make([]PivotRow, 0, len(a.order)),
	}

	dateKeys := make([]string, 0, len(a.dates))
	for k := range a.dates {
		dateKeys = append(dateKeys, k)
	}
	sort.Strings(dateKeys)
	report.Dates = make([]time.Time, 0, len(dateKeys))
	for _, k := range dateKeys {
		d, _ := time.Parse("2006-01-02", k)
		report.Dates = append(report.Dates, d)
	}

	for _, id := range a.order {
		report.Ranking = append(report.Ranking, EmployeeTotal{
			EmployeeID: id,
			Name:       a.names[id],
			TotalTip:   reporting.RoundMoney(a.totals[id]),
		})
		report.Rows = append(report.Rows, PivotRow{
			EmployeeID: id,
			Name:       a.names[id],
			Cells:      a.cells[id],
		})
	}

	// Descending by exact accumulated total; SliceStable keeps first-seen
	// order for ties.
	sort.SliceStable(report.Ranking, func(i, j int) bool {
		return a.totals[report.Ranking[i].EmployeeID].GreaterThan(a.totals[report.Ranking[j].EmployeeID])
	})

	return report
}
