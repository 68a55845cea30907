package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/workforce-engine/reporting"
	"github.com/crewdesk/workforce-engine/tips"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestCompany(t *testing.T, store *Store) *Company {
	t.Helper()
	c, err := store.CreateCompany(context.Background(), "Test Bistro")
	require.NoError(t, err)
	return c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestCompanyLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateCompany(ctx, "Harbor Cafe")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := store.GetCompany(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harbor Cafe", fetched.Name)

	all, err := store.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = store.GetCompany(ctx, "missing")
	assert.ErrorIs(t, err, reporting.ErrNotFound)

	_, err = store.CreateCompany(ctx, "  ")
	assert.ErrorIs(t, err, reporting.ErrInvalidInput)
}

func TestEmployeeLifecycle(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)
	ctx := context.Background()

	emp, err := store.CreateEmployee(ctx, company.ID, "Alice", "1234")
	require.NoError(t, err)
	require.NotEmpty(t, emp.ID)
	assert.True(t, emp.Active)

	fetched, err := store.GetEmployee(ctx, company.ID, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", fetched.Name)

	list, err := store.ListEmployees(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.CreateEmployee(ctx, company.ID, "", "1234")
	assert.ErrorIs(t, err, reporting.ErrInvalidInput)
}

func TestVerifyPIN(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)
	ctx := context.Background()

	emp, err := store.CreateEmployee(ctx, company.ID, "Alice", "4321")
	require.NoError(t, err)

	ok, err := store.VerifyPIN(ctx, company.ID, emp.ID, "4321")
	require.NoError(t, err)
	assert.True(t, ok)

	// A wrong PIN is a negative answer, not an error.
	ok, err = store.VerifyPIN(ctx, company.ID, emp.ID, "0000")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.VerifyPIN(ctx, company.ID, "missing", "4321")
	assert.ErrorIs(t, err, reporting.ErrNotFound)
}

func TestTenantScopeRequired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := reporting.NewPeriod(at(2025, time.March, 10, 0, 0), at(2025, time.March, 16, 0, 0))

	_, err := store.ListEmployees(ctx, "")
	assert.ErrorIs(t, err, reporting.ErrUnauthorized)

	_, err = store.FetchDatedAmounts(ctx, "", p, reporting.KindSale)
	assert.ErrorIs(t, err, reporting.ErrUnauthorized)

	_, err = store.FetchDailyTipInputs(ctx, "", p)
	assert.ErrorIs(t, err, reporting.ErrUnauthorized)

	_, err = store.ClockIn(ctx, "", "emp", time.Now())
	assert.ErrorIs(t, err, reporting.ErrUnauthorized)

	err = store.AddSale(ctx, "", time.Now(), dec("10"), reporting.MethodCash)
	assert.ErrorIs(t, err, reporting.ErrUnauthorized)
}

func TestTenantIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	companyA, err := store.CreateCompany(ctx, "Company A")
	require.NoError(t, err)
	companyB, err := store.CreateCompany(ctx, "Company B")
	require.NoError(t, err)

	emp, err := store.CreateEmployee(ctx, companyA.ID, "Alice", "1234")
	require.NoError(t, err)

	// B cannot see A's employee.
	_, err = store.GetEmployee(ctx, companyB.ID, emp.ID)
	assert.ErrorIs(t, err, reporting.ErrNotFound)

	// B's sales do not leak into A's report.
	saleDay := at(2025, time.March, 11, 0, 0)
	require.NoError(t, store.AddSale(ctx, companyB.ID, saleDay, dec("500"), reporting.MethodCash))

	p := reporting.NewPeriod(at(2025, time.March, 10, 0, 0), at(2025, time.March, 16, 0, 0))
	records, err := store.FetchDatedAmounts(ctx, companyA.ID, p, reporting.KindSale)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClockInClockOut(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)
	ctx := context.Background()

	emp, err := store.CreateEmployee(ctx, company.ID, "Alice", "1234")
	require.NoError(t, err)

	in := at(2025, time.March, 11, 9, 0)
	logRow, err := store.ClockIn(ctx, company.ID, emp.ID, in)
	require.NoError(t, err)
	assert.Nil(t, logRow.LogoutAt)
	assert.True(t, logRow.Hours().IsZero())

	// Second clock-in on the same day while the log is still open.
	_, err = store.ClockIn(ctx, company.ID, emp.ID, at(2025, time.March, 11, 9, 5))
	assert.ErrorIs(t, err, ErrOpenLog)

	out := at(2025, time.March, 11, 17, 30)
	closed, err := store.ClockOut(ctx, company.ID, emp.ID, out)
	require.NoError(t, err)
	require.NotNil(t, closed.LogoutAt)
	assert.True(t, closed.Hours().Equal(dec("8.5")), "hours = %s", closed.Hours())

	// Clock-out with nothing open.
	_, err = store.ClockOut(ctx, company.ID, emp.ID, at(2025, time.March, 11, 18, 0))
	assert.ErrorIs(t, err, reporting.ErrNotFound)

	// A fresh clock-in after closing the first log is fine.
	_, err = store.ClockIn(ctx, company.ID, emp.ID, at(2025, time.March, 11, 19, 0))
	assert.NoError(t, err)
}

func TestClockInUnknownEmployee(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)

	_, err := store.ClockIn(context.Background(), company.ID, "missing", time.Now())
	assert.ErrorIs(t, err, reporting.ErrNotFound)
}

func TestFetchDatedAmounts(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)
	ctx := context.Background()

	require.NoError(t, store.AddSale(ctx, company.ID, at(2025, time.March, 10, 0, 0), dec("120.00"), reporting.MethodCash))
	require.NoError(t, store.AddSale(ctx, company.ID, at(2025, time.March, 12, 0, 0), dec("80.00"), reporting.MethodCard))
	require.NoError(t, store.AddSale(ctx, company.ID, at(2025, time.March, 20, 0, 0), dec("999.00"), reporting.MethodCash))
	require.NoError(t, store.AddCost(ctx, company.ID, at(2025, time.March, 11, 0, 0), dec("45.50"), "produce"))

	p := reporting.NewPeriod(at(2025, time.March, 10, 0, 0), at(2025, time.March, 16, 0, 0))

	sales, err := store.FetchDatedAmounts(ctx, company.ID, p, reporting.KindSale)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, reporting.MethodCash, sales[0].Method)
	assert.True(t, reporting.SumInRange(sales, p).Equal(dec("200.00")))

	costs, err := store.FetchDatedAmounts(ctx, company.ID, p, reporting.KindCost)
	require.NoError(t, err)
	require.Len(t, costs, 1)
	assert.True(t, costs[0].Amount.Equal(dec("45.50")))
}

func TestFetchDatedAmountsRejectsBadPeriod(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)

	reversed := reporting.Period{
		Start: at(2025, time.March, 16, 0, 0),
		End:   at(2025, time.March, 10, 0, 0),
	}
	_, err := store.FetchDatedAmounts(context.Background(), company.ID, reversed, reporting.KindSale)
	assert.ErrorIs(t, err, reporting.ErrInvalidInput)
}

func TestSetTipPool(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)
	ctx := context.Background()
	day := at(2025, time.March, 11, 0, 0)

	require.NoError(t, store.SetTipPool(ctx, company.ID, day, dec("100")))
	// Second write for the same day replaces, never duplicates.
	require.NoError(t, store.SetTipPool(ctx, company.ID, day, dec("150")))

	err := store.SetTipPool(ctx, company.ID, day, dec("-5"))
	assert.ErrorIs(t, err, reporting.ErrInvalidInput)

	pools, err := store.tipPoolsInRange(ctx, company.ID,
		reporting.NewPeriod(day, day))
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.True(t, pools["2025-03-11"].Equal(dec("150")))
}

func TestFetchDailyTipInputs(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)
	ctx := context.Background()

	alice, err := store.CreateEmployee(ctx, company.ID, "Alice", "1111")
	require.NoError(t, err)
	bob, err := store.CreateEmployee(ctx, company.ID, "Bob", "2222")
	require.NoError(t, err)

	// Day 1: Alice finished 3h, Bob still clocked in; pool 100.
	day1 := at(2025, time.March, 10, 0, 0)
	_, err = store.ClockIn(ctx, company.ID, alice.ID, at(2025, time.March, 10, 9, 0))
	require.NoError(t, err)
	_, err = store.ClockOut(ctx, company.ID, alice.ID, at(2025, time.March, 10, 12, 0))
	require.NoError(t, err)
	_, err = store.ClockIn(ctx, company.ID, bob.ID, at(2025, time.March, 10, 10, 0))
	require.NoError(t, err)
	require.NoError(t, store.SetTipPool(ctx, company.ID, day1, dec("100")))

	// Day 2: Alice worked with no pool recorded.
	_, err = store.ClockIn(ctx, company.ID, alice.ID, at(2025, time.March, 11, 9, 0))
	require.NoError(t, err)
	_, err = store.ClockOut(ctx, company.ID, alice.ID, at(2025, time.March, 11, 11, 0))
	require.NoError(t, err)

	// Day 3: pool recorded with nobody working.
	require.NoError(t, store.SetTipPool(ctx, company.ID, at(2025, time.March, 12, 0, 0), dec("40")))

	p := reporting.NewPeriod(day1, at(2025, time.March, 16, 0, 0))
	entries, err := store.FetchDailyTipInputs(ctx, company.ID, p)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Day 1: both employees present, Bob's shift open.
	assert.True(t, entries[0].TotalTip.Equal(dec("100")))
	require.Len(t, entries[0].Employees, 2)
	aliceDay, bobDay := -1, -1
	for i, e := range entries[0].Employees {
		switch e.EmployeeID {
		case alice.ID:
			aliceDay = i
		case bob.ID:
			bobDay = i
		}
	}
	require.NotEqual(t, -1, aliceDay)
	require.NotEqual(t, -1, bobDay)
	assert.True(t, entries[0].Employees[aliceDay].Finished())
	assert.True(t, entries[0].Employees[aliceDay].Hours.Equal(dec("3")))
	assert.False(t, entries[0].Employees[bobDay].Finished())

	// Day 2: no pool recorded means a zero tip, hours still present.
	assert.True(t, entries[1].TotalTip.IsZero())
	require.Len(t, entries[1].Employees, 1)
	assert.True(t, entries[1].Employees[0].Hours.Equal(dec("2")))

	// Day 3: pool-only day carries no employees.
	assert.True(t, entries[2].TotalTip.Equal(dec("40")))
	assert.Empty(t, entries[2].Employees)
}

func TestFetchDailyTipInputsSplitShift(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)
	ctx := context.Background()

	alice, err := store.CreateEmployee(ctx, company.ID, "Alice", "1111")
	require.NoError(t, err)
	bob, err := store.CreateEmployee(ctx, company.ID, "Bob", "2222")
	require.NoError(t, err)

	// Alice works a split shift: 09:00-12:00 and 17:00-21:00.
	_, err = store.ClockIn(ctx, company.ID, alice.ID, at(2025, time.March, 10, 9, 0))
	require.NoError(t, err)
	_, err = store.ClockOut(ctx, company.ID, alice.ID, at(2025, time.March, 10, 12, 0))
	require.NoError(t, err)
	_, err = store.ClockIn(ctx, company.ID, alice.ID, at(2025, time.March, 10, 17, 0))
	require.NoError(t, err)
	_, err = store.ClockOut(ctx, company.ID, alice.ID, at(2025, time.March, 10, 21, 0))
	require.NoError(t, err)

	// Bob closes a morning shift but is still clocked in on his second.
	_, err = store.ClockIn(ctx, company.ID, bob.ID, at(2025, time.March, 10, 9, 0))
	require.NoError(t, err)
	_, err = store.ClockOut(ctx, company.ID, bob.ID, at(2025, time.March, 10, 10, 0))
	require.NoError(t, err)
	_, err = store.ClockIn(ctx, company.ID, bob.ID, at(2025, time.March, 10, 11, 0))
	require.NoError(t, err)

	day := at(2025, time.March, 10, 0, 0)
	require.NoError(t, store.SetTipPool(ctx, company.ID, day, dec("100")))

	entries, err := store.FetchDailyTipInputs(ctx, company.ID, reporting.NewPeriod(day, day))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// One EmployeeDay per employee, never one per log row.
	require.Len(t, entries[0].Employees, 2)
	seen := make(map[string]tips.EmployeeDay, 2)
	for _, e := range entries[0].Employees {
		seen[e.EmployeeID] = e
	}

	aliceDay := seen[alice.ID]
	assert.True(t, aliceDay.Finished())
	assert.True(t, aliceDay.Hours.Equal(dec("7")), "hours = %s", aliceDay.Hours)
	require.NotNil(t, aliceDay.LoggedOutAt)
	assert.True(t, aliceDay.LoggedOutAt.Equal(at(2025, time.March, 10, 21, 0)))

	// The open second shift leaves Bob's whole day unfinished.
	bobDay := seen[bob.ID]
	assert.False(t, bobDay.Finished())
	assert.Nil(t, bobDay.LoggedOutAt)

	// The engine accepts the day and pays the full pool to Alice.
	report, err := tips.Prorate(entries)
	require.NoError(t, err)
	require.Len(t, report.Ranking, 2)
	assert.Equal(t, alice.ID, report.Ranking[0].EmployeeID)
	assert.True(t, report.Ranking[0].TotalTip.Equal(dec("100")))
	assert.True(t, report.Ranking[1].TotalTip.IsZero())
}

func TestSaveScheduleAndTimesheet(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)
	ctx := context.Background()

	emp, err := store.CreateEmployee(ctx, company.ID, "Alice", "1234")
	require.NoError(t, err)

	_, err = store.SaveSchedule(ctx, company.ID, Schedule{
		EmployeeID: emp.ID,
		Weekday:    time.Tuesday,
		StartClock: "09:00",
		EndClock:   "17:00",
	})
	require.NoError(t, err)

	// Schedules require a real employee in scope.
	_, err = store.SaveSchedule(ctx, company.ID, Schedule{EmployeeID: "missing"})
	assert.ErrorIs(t, err, reporting.ErrNotFound)

	_, err = store.ClockIn(ctx, company.ID, emp.ID, at(2025, time.March, 11, 9, 0))
	require.NoError(t, err)
	_, err = store.ClockOut(ctx, company.ID, emp.ID, at(2025, time.March, 11, 17, 0))
	require.NoError(t, err)

	sheet, err := store.FetchEmployeeTimesheet(ctx, company.ID, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, sheet.Employee.ID)
	require.Len(t, sheet.Schedules, 1)
	assert.Equal(t, time.Tuesday, sheet.Schedules[0].Weekday)
	require.Len(t, sheet.TimeLogs, 1)
	assert.True(t, sheet.TimeLogs[0].Hours().Equal(dec("8")))
}

func TestAddSaleRejectsUnknownMethod(t *testing.T) {
	store := newTestStore(t)
	company := newTestCompany(t, store)

	err := store.AddSale(context.Background(), company.ID, time.Now(), dec("10"), "check")
	assert.ErrorIs(t, err, reporting.ErrInvalidInput)
}
