/*
Package sqlite provides the SQLite-backed tenant store for the workforce engine.

PURPOSE:
  Persists the raw records the reporting and tip engines consume: companies,
  employees, weekly schedules, time-clock logs, sales, costs, and per-day tip
  pools. The engines themselves never see SQL - they receive plain slices
  fetched here.

TENANT SCOPING:
  Every read and write (except super-admin company provisioning) requires a
  company id. An empty company id fails with reporting.ErrUnauthorized BEFORE
  any query runs. There is no cross-tenant query path.

KEY TABLES:
  companies:  tenants, provisioned by the super admin
  employees:  per-company staff with a bcrypt PIN hash for the kiosk
  schedules:  weekly shift templates per employee
  time_logs:  one row per employee per worked day; logout_at set once
  sales:      immutable dated amounts tagged cash/card
  costs:      immutable dated amounts tagged by category
  tip_pools:  one tip total per (company, date), upsertable

TIME LOG INVARIANT:
  At most one open (logout_at IS NULL) log per (employee, day), enforced by
  a partial unique index. Clock-in creates the row, clock-out mutates it
  exactly once. Rows are never deleted.

WAL MODE:
  SQLite is opened with WAL so concurrent report reads don't block the
  kiosk's writes.

USAGE:
  store, err := sqlite.New("./data/crewdesk.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - reporting: The aggregate engine consuming FetchDatedAmounts
  - tips: The proration engine consuming FetchDailyTipInputs
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewdesk/workforce-engine/reporting"
	"github.com/crewdesk/workforce-engine/tips"
)

// ErrOpenLog is returned when an employee clocks in twice on the same day
// without clocking out in between.
var ErrOpenLog = errors.New("open time log already exists for this day")

const (
	dayFormat = "2006-01-02"
	tsFormat  = time.RFC3339
)

// Store implements the tenant persistence layer using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Companies (tenants)
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		pin_hash TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_company
		ON employees(company_id);

	-- Weekly schedule templates
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		weekday INTEGER NOT NULL,
		start_clock TEXT NOT NULL,
		end_clock TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_employee
		ON schedules(employee_id);

	-- Time-clock logs: created at clock-in, logout_at set once at clock-out
	CREATE TABLE IF NOT EXISTS time_logs (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		log_date TEXT NOT NULL,
		login_at TEXT NOT NULL,
		logout_at TEXT
	);

	-- CRITICAL: at most one open log per employee per day
	CREATE UNIQUE INDEX IF NOT EXISTS idx_time_logs_open
		ON time_logs(employee_id, log_date)
		WHERE logout_at IS NULL;

	CREATE INDEX IF NOT EXISTS idx_time_logs_company_date
		ON time_logs(company_id, log_date);
	CREATE INDEX IF NOT EXISTS idx_time_logs_employee
		ON time_logs(employee_id, log_date);

	-- Sales (immutable once created)
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		sale_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		method TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_company_date
		ON sales(company_id, sale_date);

	-- Costs (immutable once created)
	CREATE TABLE IF NOT EXISTS costs (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		cost_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_costs_company_date
		ON costs(company_id, cost_date);

	-- Tip pools: one total per company per day
	CREATE TABLE IF NOT EXISTS tip_pools (
		company_id TEXT NOT NULL,
		pool_date TEXT NOT NULL,
		total_tip TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (company_id, pool_date)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// requireCompany enforces the tenant boundary: no scope, no query.
func requireCompany(companyID string) error {
	if companyID == "" {
		return reporting.ErrUnauthorized
	}
	return nil
}

// =============================================================================
// COMPANIES (super-admin provisioning)
// =============================================================================

// Company is a tenant record.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// CreateCompany provisions a new tenant.
func (s *Store) CreateCompany(ctx context.Context, name string) (*Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: company name is required", reporting.ErrInvalidInput)
	}

	c := Company{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO companies (id, name, created_at) VALUES (?, ?, ?)",
		c.ID, c.Name, c.CreatedAt.Format(tsFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return &c, nil
}

// GetCompany retrieves a tenant by id.
func (s *Store) GetCompany(ctx context.Context, id string) (*Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Company
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM companies WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("company %s: %w", id, reporting.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	c.CreatedAt, _ = time.Parse(tsFormat, createdAt)
	return &c, nil
}

// ListCompanies returns all tenants, for the super-admin view.
func (s *Store) ListCompanies(ctx context.Context) ([]Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM companies ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(tsFormat, createdAt)
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// Employee is a staff record. The kiosk PIN is stored only as a bcrypt hash.
type Employee struct {
	ID        string
	CompanyID string
	Name      string
	Active    bool
	CreatedAt time.Time
}

// CreateEmployee adds an employee with the given kiosk PIN.
func (s *Store) CreateEmployee(ctx context.Context, companyID, name, pin string) (*Employee, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" || pin == "" {
		return nil, fmt.Errorf("%w: name and pin are required", reporting.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emp := Employee{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO employees (id, company_id, name, pin_hash, active, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		emp.ID, emp.CompanyID, emp.Name, string(hash), emp.Active, emp.CreatedAt.Format(tsFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return &emp, nil
}

// GetEmployee retrieves an employee within the company scope.
func (s *Store) GetEmployee(ctx context.Context, companyID, id string) (*Employee, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getEmployee(ctx, companyID, id)
}

func (s *Store) getEmployee(ctx context.Context, companyID, id string) (*Employee, error) {
	var emp Employee
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, company_id, name, active, created_at FROM employees WHERE id = ? AND company_id = ?",
		id, companyID,
	).Scan(&emp.ID, &emp.CompanyID, &emp.Name, &emp.Active, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("employee %s: %w", id, reporting.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	emp.CreatedAt, _ = time.Parse(tsFormat, createdAt)
	return &emp, nil
}

// ListEmployees returns all employees of a company.
func (s *Store) ListEmployees(ctx context.Context, companyID string) ([]Employee, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, company_id, name, active, created_at FROM employees WHERE company_id = ? ORDER BY name",
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.CompanyID, &emp.Name, &emp.Active, &createdAt); err != nil {
			return nil, err
		}
		emp.CreatedAt, _ = time.Parse(tsFormat, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// VerifyPIN checks a kiosk PIN against the stored hash. A wrong PIN is not
// an error; it returns false.
func (s *Store) VerifyPIN(ctx context.Context, companyID, employeeID, pin string) (bool, error) {
	if err := requireCompany(companyID); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hash string
	err := s.db.QueryRowContext(ctx,
		"SELECT pin_hash FROM employees WHERE id = ? AND company_id = ? AND active = TRUE",
		employeeID, companyID,
	).Scan(&hash)

	if err == sql.ErrNoRows {
		return false, fmt.Errorf("employee %s: %w", employeeID, reporting.ErrNotFound)
	}
	if err != nil {
		return false, err
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil, nil
}

// =============================================================================
// SCHEDULES
// =============================================================================

// Schedule is one weekly shift template entry for an employee.
type Schedule struct {
	ID         string
	EmployeeID string
	Weekday    time.Weekday
	StartClock string // "09:00"
	EndClock   string // "17:00"
}

// SaveSchedule adds a shift template entry.
func (s *Store) SaveSchedule(ctx context.Context, companyID string, sched Schedule) (*Schedule, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getEmployee(ctx, companyID, sched.EmployeeID); err != nil {
		return nil, err
	}

	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO schedules (id, employee_id, weekday, start_clock, end_clock) VALUES (?, ?, ?, ?, ?)",
		sched.ID, sched.EmployeeID, int(sched.Weekday), sched.StartClock, sched.EndClock,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}
	return &sched, nil
}

// =============================================================================
// TIME LOGS (kiosk clock-in / clock-out)
// =============================================================================

// TimeLog is one employee's presence record for one calendar day.
type TimeLog struct {
	ID         string
	CompanyID  string
	EmployeeID string
	LogDate    time.Time
	LoginAt    time.Time
	LogoutAt   *time.Time
}

// Hours returns the worked duration in hours, zero while the log is open.
func (l TimeLog) Hours() decimal.Decimal {
	if l.LogoutAt == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(l.LogoutAt.Sub(l.LoginAt).Hours())
}

// ClockIn opens a time log for the employee on the day of "at".
// A second clock-in on the same day without a clock-out fails with ErrOpenLog.
func (s *Store) ClockIn(ctx context.Context, companyID, employeeID string, at time.Time) (*TimeLog, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getEmployee(ctx, companyID, employeeID); err != nil {
		return nil, err
	}

	logRow := TimeLog{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		LogDate:    reporting.StartOfDay(at),
		LoginAt:    at,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO time_logs (id, company_id, employee_id, log_date, login_at, logout_at) VALUES (?, ?, ?, ?, ?, NULL)",
		logRow.ID, logRow.CompanyID, logRow.EmployeeID,
		logRow.LogDate.Format(dayFormat), logRow.LoginAt.Format(tsFormat),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrOpenLog
		}
		return nil, fmt.Errorf("failed to clock in: %w", err)
	}
	return &logRow, nil
}

// ClockOut closes the open log for the employee on the day of "at".
// The logout timestamp is written exactly once; if there is no open log to
// close, the call fails with NotFound.
func (s *Store) ClockOut(ctx context.Context, companyID, employeeID string, at time.Time) (*TimeLog, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day := reporting.StartOfDay(at).Format(dayFormat)

	var logRow TimeLog
	var logDate, loginAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, employee_id, log_date, login_at FROM time_logs
		 WHERE company_id = ? AND employee_id = ? AND log_date = ? AND logout_at IS NULL`,
		companyID, employeeID, day,
	).Scan(&logRow.ID, &logRow.CompanyID, &logRow.EmployeeID, &logDate, &loginAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no open time log for employee %s on %s: %w", employeeID, day, reporting.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE time_logs SET logout_at = ? WHERE id = ?",
		at.Format(tsFormat), logRow.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to clock out: %w", err)
	}

	logRow.LogDate, _ = time.Parse(dayFormat, logDate)
	logRow.LoginAt, _ = time.Parse(tsFormat, loginAt)
	out := at
	logRow.LogoutAt = &out
	return &logRow, nil
}

// =============================================================================
// SALES / COSTS / TIP POOLS
// =============================================================================

// AddSale records an immutable dated sale amount.
func (s *Store) AddSale(ctx context.Context, companyID string, date time.Time, amount decimal.Decimal, method reporting.PaymentMethod) error {
	if err := requireCompany(companyID); err != nil {
		return err
	}
	if method != reporting.MethodCash && method != reporting.MethodCard {
		return fmt.Errorf("%w: unknown payment method %q", reporting.ErrInvalidInput, method)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sales (id, company_id, sale_date, amount, method, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(), companyID, reporting.StartOfDay(date).Format(dayFormat),
		amount.String(), string(method), time.Now().UTC().Format(tsFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to add sale: %w", err)
	}
	return nil
}

// AddCost records an immutable dated cost amount.
func (s *Store) AddCost(ctx context.Context, companyID string, date time.Time, amount decimal.Decimal, category string) error {
	if err := requireCompany(companyID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO costs (id, company_id, cost_date, amount, category, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(), companyID, reporting.StartOfDay(date).Format(dayFormat),
		amount.String(), category, time.Now().UTC().Format(tsFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to add cost: %w", err)
	}
	return nil
}

// SetTipPool records (or replaces) the tip pool total for one day.
func (s *Store) SetTipPool(ctx context.Context, companyID string, date time.Time, total decimal.Decimal) error {
	if err := requireCompany(companyID); err != nil {
		return err
	}
	if total.IsNegative() {
		return fmt.Errorf("%w: tip pool cannot be negative", reporting.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tip_pools (company_id, pool_date, total_tip, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(company_id, pool_date) DO UPDATE SET
			total_tip = excluded.total_tip,
			updated_at = excluded.updated_at`,
		companyID, reporting.StartOfDay(date).Format(dayFormat),
		total.String(), time.Now().UTC().Format(tsFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to set tip pool: %w", err)
	}
	return nil
}

// =============================================================================
// ENGINE FEEDS
// =============================================================================

// FetchDatedAmounts returns the sale or cost rows of a company inside the
// period, ready for the aggregation engine.
func (s *Store) FetchDatedAmounts(ctx context.Context, companyID string, p reporting.Period, kind reporting.RecordKind) ([]reporting.DatedAmount, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var query string
	switch kind {
	case reporting.KindSale:
		query = `SELECT sale_date, amount, method FROM sales
			 WHERE company_id = ? AND sale_date >= ? AND sale_date <= ?
			 ORDER BY sale_date ASC`
	case reporting.KindCost:
		query = `SELECT cost_date, amount, '' FROM costs
			 WHERE company_id = ? AND cost_date >= ? AND cost_date <= ?
			 ORDER BY cost_date ASC`
	default:
		return nil, fmt.Errorf("%w: unknown record kind %q", reporting.ErrInvalidInput, kind)
	}

	rows, err := s.db.QueryContext(ctx, query, companyID,
		p.Start.Format(dayFormat), p.End.Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dated amounts: %w", err)
	}
	defer rows.Close()

	var records []reporting.DatedAmount
	for rows.Next() {
		var dateStr, amountStr, method string
		if err := rows.Scan(&dateStr, &amountStr, &method); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %q on %s", reporting.ErrInvalidInput, amountStr, dateStr)
		}
		date, _ := time.Parse(dayFormat, dateStr)
		records = append(records, reporting.DatedAmount{
			Date:   date,
			Amount: amount,
			Method: reporting.PaymentMethod(method),
		})
	}
	return records, rows.Err()
}

// FetchDailyTipInputs assembles one DailyTipEntry per day in the period from
// the time logs and the tip pool figures. Days with logs but no recorded
// pool appear with a zero tip so the hour records still show up; pool-only
// days are included too and get skipped by the engine (nobody finished).
//
// Split shifts are merged: an employee with several logs on one day becomes
// a single EmployeeDay whose hours sum across the closed logs and whose
// logout is the latest one. A still-open log leaves the whole day
// unfinished. The engine therefore never sees a duplicate employee id built
// from valid rows.
func (s *Store) FetchDailyTipInputs(ctx context.Context, companyID string, p reporting.Period) ([]tips.DailyTipEntry, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pools, err := s.tipPoolsInRange(ctx, companyID, p)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT t.log_date, t.employee_id, e.name, t.login_at, t.logout_at
		FROM time_logs t
		JOIN employees e ON e.id = t.employee_id
		WHERE t.company_id = ? AND t.log_date >= ? AND t.log_date <= ?
		ORDER BY t.log_date ASC, t.login_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, companyID,
		p.Start.Format(dayFormat), p.End.Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time logs: %w", err)
	}
	defer rows.Close()

	type employeeLogs struct {
		day  tips.EmployeeDay
		open bool
	}
	type dayLogs struct {
		order     []string
		employees map[string]*employeeLogs
	}
	byDay := make(map[string]*dayLogs)
	var dayOrder []string
	for rows.Next() {
		var dateStr, employeeID, name, loginStr string
		var logoutStr sql.NullString
		if err := rows.Scan(&dateStr, &employeeID, &name, &loginStr, &logoutStr); err != nil {
			return nil, err
		}

		day, seen := byDay[dateStr]
		if !seen {
			day = &dayLogs{employees: make(map[string]*employeeLogs)}
			byDay[dateStr] = day
			dayOrder = append(dayOrder, dateStr)
		}
		emp, seen := day.employees[employeeID]
		if !seen {
			emp = &employeeLogs{day: tips.EmployeeDay{EmployeeID: employeeID, Name: name}}
			day.employees[employeeID] = emp
			day.order = append(day.order, employeeID)
		}

		if !logoutStr.Valid {
			emp.open = true
			continue
		}
		loginAt, _ := time.Parse(tsFormat, loginStr)
		logoutAt, _ := time.Parse(tsFormat, logoutStr.String)
		emp.day.Hours = emp.day.Hours.Add(decimal.NewFromFloat(logoutAt.Sub(loginAt).Hours()))
		if emp.day.LoggedOutAt == nil || logoutAt.After(*emp.day.LoggedOutAt) {
			out := logoutAt
			emp.day.LoggedOutAt = &out
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var entries []tips.DailyTipEntry
	for _, dateStr := range dayOrder {
		date, _ := time.Parse(dayFormat, dateStr)
		day := byDay[dateStr]
		employees := make([]tips.EmployeeDay, 0, len(day.order))
		for _, id := range day.order {
			emp := day.employees[id]
			e := emp.day
			if emp.open {
				e.LoggedOutAt = nil
			}
			employees = append(employees, e)
		}
		total := pools[dateStr] // zero when no pool recorded
		entries = append(entries, tips.DailyTipEntry{
			Date:      date,
			TotalTip:  total,
			Employees: employees,
		})
		delete(pools, dateStr)
	}

	for dateStr, total := range pools {
		date, _ := time.Parse(dayFormat, dateStr)
		entries = append(entries, tips.DailyTipEntry{Date: date, TotalTip: total})
	}

	sortEntriesByDate(entries)
	return entries, nil
}

func (s *Store) tipPoolsInRange(ctx context.Context, companyID string, p reporting.Period) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pool_date, total_tip FROM tip_pools
		 WHERE company_id = ? AND pool_date >= ? AND pool_date <= ?`,
		companyID, p.Start.Format(dayFormat), p.End.Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tip pools: %w", err)
	}
	defer rows.Close()

	pools := make(map[string]decimal.Decimal)
	for rows.Next() {
		var dateStr, totalStr string
		if err := rows.Scan(&dateStr, &totalStr); err != nil {
			return nil, err
		}
		total, err := decimal.NewFromString(totalStr)
		if err != nil {
			return nil, fmt.Errorf("%w: bad tip pool %q on %s", reporting.ErrInvalidInput, totalStr, dateStr)
		}
		pools[dateStr] = total
	}
	return pools, rows.Err()
}

// =============================================================================
// TIMESHEET
// =============================================================================

// Timesheet is everything the per-employee report needs.
type Timesheet struct {
	Employee  Employee
	Schedules []Schedule
	TimeLogs  []TimeLog
}

// FetchEmployeeTimesheet returns the schedules and time logs of one employee.
func (s *Store) FetchEmployeeTimesheet(ctx context.Context, companyID, employeeID string) (*Timesheet, error) {
	if err := requireCompany(companyID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, err := s.getEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}

	sheet := &Timesheet{Employee: *emp}

	schedRows, err := s.db.QueryContext(ctx,
		"SELECT id, employee_id, weekday, start_clock, end_clock FROM schedules WHERE employee_id = ? ORDER BY weekday",
		employeeID)
	if err != nil {
		return nil, err
	}
	defer schedRows.Close()
	for schedRows.Next() {
		var sc Schedule
		var weekday int
		if err := schedRows.Scan(&sc.ID, &sc.EmployeeID, &weekday, &sc.StartClock, &sc.EndClock); err != nil {
			return nil, err
		}
		sc.Weekday = time.Weekday(weekday)
		sheet.Schedules = append(sheet.Schedules, sc)
	}
	if err := schedRows.Err(); err != nil {
		return nil, err
	}

	logRows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, employee_id, log_date, login_at, logout_at FROM time_logs
		 WHERE employee_id = ? ORDER BY log_date ASC, login_at ASC`,
		employeeID)
	if err != nil {
		return nil, err
	}
	defer logRows.Close()
	for logRows.Next() {
		logRow, err := scanTimeLog(logRows)
		if err != nil {
			return nil, err
		}
		sheet.TimeLogs = append(sheet.TimeLogs, logRow)
	}
	return sheet, logRows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func scanTimeLog(rows *sql.Rows) (TimeLog, error) {
	var l TimeLog
	var logDate, loginAt string
	var logoutAt sql.NullString

	if err := rows.Scan(&l.ID, &l.CompanyID, &l.EmployeeID, &logDate, &loginAt, &logoutAt); err != nil {
		return l, fmt.Errorf("failed to scan time log: %w", err)
	}

	l.LogDate, _ = time.Parse(dayFormat, logDate)
	l.LoginAt, _ = time.Parse(tsFormat, loginAt)
	if logoutAt.Valid {
		t, _ := time.Parse(tsFormat, logoutAt.String)
		l.LogoutAt = &t
	}
	return l, nil
}

func sortEntriesByDate(entries []tips.DailyTipEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
