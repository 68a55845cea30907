/*
handlers.go - HTTP handlers for the workforce engine

PURPOSE:
  Exposes the reporting and tip engines plus the kiosk flow over REST.
  Handlers parse the request, fetch records through the tenant-scoped
  store, call the pure engines, and serialize the result.

ENDPOINTS:
  Reports (tenant-scoped):
    GET  /api/reports/sales/weekly      Week-over-week sales with cash/card split
    GET  /api/reports/costs/weekly      Week-over-week costs
    GET  /api/reports/sales/yesterday   Yesterday's sales total
    GET  /api/reports/tips              Tip ranking + pivot for a range

  Employees (tenant-scoped):
    GET  /api/employees                 List employees
    POST /api/employees                 Create employee (name + kiosk PIN)
    GET  /api/employees/{id}            Get one employee
    GET  /api/employees/{id}/timesheet  Schedules + time logs
    POST /api/employees/{id}/schedules  Add a shift template entry

  Kiosk (tenant-scoped):
    POST /api/clock/in                  PIN clock-in
    POST /api/clock/out                 PIN clock-out

  Records (tenant-scoped):
    POST /api/sales                     Record a sale
    POST /api/costs                     Record a cost
    PUT  /api/tips/pool                 Set a day's tip pool

  Admin (super-admin, no tenant scope):
    POST /api/admin/companies           Provision a tenant
    GET  /api/admin/companies           List tenants

ERROR HANDLING:
  The reporting error taxonomy maps onto HTTP statuses in statusFor():
  - 401: Unauthorized (missing tenant scope, bad kiosk PIN)
  - 404: NotFound
  - 400: InvalidInput (bad dates, bad amounts, duplicate ids)
  - 409: ErrOpenLog (double clock-in)
  - 500: everything else

CLOCK:
  The handler's clock is injectable. Report endpoints also accept an
  optional ?ref=YYYY-MM-DD so boundary behavior is reproducible.

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/crewdesk/workforce-engine/reporting"
	"github.com/crewdesk/workforce-engine/store/sqlite"
	"github.com/crewdesk/workforce-engine/tips"
)

// =============================================================================
// HANDLER
// =============================================================================

// Handler holds all dependencies for HTTP handlers. The store is injected
// by the entry point; nothing here reaches for globals.
type Handler struct {
	Store *sqlite.Store

	// Now supplies the reference instant when the request doesn't.
	Now func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store, Now: time.Now}
}

// refInstant resolves the reference instant for a report: the optional
// ?ref=YYYY-MM-DD parameter, or the handler clock.
func (h *Handler) refInstant(r *http.Request) (time.Time, error) {
	refStr := r.URL.Query().Get("ref")
	if refStr == "" {
		// Stored dates are parsed as UTC, so the reference must be too.
		return h.Now().UTC(), nil
	}
	ref, err := time.Parse("2006-01-02", refStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: ref must be YYYY-MM-DD", reporting.ErrInvalidInput)
	}
	return ref, nil
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

func (h *Handler) weeklyComparison(w http.ResponseWriter, r *http.Request, kind reporting.RecordKind) {
	companyID := companyFrom(r.Context())

	ref, err := h.refInstant(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reference date", err)
		return
	}

	// One fetch spanning both weeks; the engine splits them.
	thisWeek := reporting.WeekOf(ref)
	span := reporting.Period{Start: thisWeek.Previous().Start, End: thisWeek.End}
	records, err := h.Store.FetchDatedAmounts(r.Context(), companyID, span, kind)
	if err != nil {
		writeError(w, statusFor(err), "Failed to fetch records", err)
		return
	}

	writeJSON(w, http.StatusOK, toWeeklyComparisonDTO(reporting.CompareWeeks(records, ref)))
}

// WeeklySales returns this week's sales against last week's.
func (h *Handler) WeeklySales(w http.ResponseWriter, r *http.Request) {
	h.weeklyComparison(w, r, reporting.KindSale)
}

// WeeklyCosts returns this week's costs against last week's.
func (h *Handler) WeeklyCosts(w http.ResponseWriter, r *http.Request) {
	h.weeklyComparison(w, r, reporting.KindCost)
}

// YesterdaySales returns the total of yesterday's sales.
func (h *Handler) YesterdaySales(w http.ResponseWriter, r *http.Request) {
	companyID := companyFrom(r.Context())

	ref, err := h.refInstant(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reference date", err)
		return
	}

	yesterday := reporting.YesterdayRange(ref)
	records, err := h.Store.FetchDatedAmounts(r.Context(), companyID, yesterday, reporting.KindSale)
	if err != nil {
		writeError(w, statusFor(err), "Failed to fetch sales", err)
		return
	}

	total, _ := reporting.SumInRange(records, yesterday).Float64()
	writeJSON(w, http.StatusOK, RangeTotalDTO{
		Start: yesterday.Start.Format("2006-01-02"),
		End:   yesterday.End.Format("2006-01-02"),
		Total: total,
	})
}

// TipReport returns the tip ranking and pivot for ?start=...&end=...
func (h *Handler) TipReport(w http.ResponseWriter, r *http.Request) {
	companyID := companyFrom(r.Context())

	start, err1 := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	end, err2 := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "start and end must be YYYY-MM-DD", reporting.ErrInvalidInput)
		return
	}

	period := reporting.NewPeriod(start, end)
	if err := period.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	entries, err := h.Store.FetchDailyTipInputs(r.Context(), companyID, period)
	if err != nil {
		writeError(w, statusFor(err), "Failed to fetch tip inputs", err)
		return
	}

	report, err := tips.Prorate(entries)
	if err != nil {
		writeError(w, statusFor(err), "Failed to prorate tips", err)
		return
	}

	writeJSON(w, http.StatusOK, toTipReportDTO(report))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees of the scoped company.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context(), companyFrom(r.Context()))
	if err != nil {
		writeError(w, statusFor(err), "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates a new employee with a kiosk PIN.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp, err := h.Store.CreateEmployee(r.Context(), companyFrom(r.Context()), req.Name, req.PIN)
	if err != nil {
		writeError(w, statusFor(err), "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(*emp))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), companyFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// GetTimesheet returns an employee's schedules and time logs.
func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.Store.FetchEmployeeTimesheet(r.Context(), companyFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), "Failed to fetch timesheet", err)
		return
	}

	dto := TimesheetDTO{
		Employee:  toEmployeeDTO(sheet.Employee),
		Schedules: make([]ScheduleDTO, 0, len(sheet.Schedules)),
		TimeLogs:  make([]TimeLogDTO, 0, len(sheet.TimeLogs)),
	}
	for _, sc := range sheet.Schedules {
		dto.Schedules = append(dto.Schedules, ScheduleDTO{
			ID:         sc.ID,
			EmployeeID: sc.EmployeeID,
			Weekday:    int(sc.Weekday),
			StartClock: sc.StartClock,
			EndClock:   sc.EndClock,
		})
	}
	for _, l := range sheet.TimeLogs {
		dto.TimeLogs = append(dto.TimeLogs, toTimeLogDTO(l))
	}

	writeJSON(w, http.StatusOK, dto)
}

// CreateSchedule adds a shift template entry to an employee.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		writeError(w, http.StatusBadRequest, "weekday must be 0-6", reporting.ErrInvalidInput)
		return
	}

	sched, err := h.Store.SaveSchedule(r.Context(), companyFrom(r.Context()), sqlite.Schedule{
		EmployeeID: chi.URLParam(r, "id"),
		Weekday:    time.Weekday(req.Weekday),
		StartClock: req.StartClock,
		EndClock:   req.EndClock,
	})
	if err != nil {
		writeError(w, statusFor(err), "Failed to save schedule", err)
		return
	}

	writeJSON(w, http.StatusCreated, ScheduleDTO{
		ID:         sched.ID,
		EmployeeID: sched.EmployeeID,
		Weekday:    int(sched.Weekday),
		StartClock: sched.StartClock,
		EndClock:   sched.EndClock,
	})
}

// =============================================================================
// KIOSK HANDLERS
// =============================================================================

// ClockIn opens a time log after verifying the kiosk PIN.
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.Store.ClockIn)
}

// ClockOut closes the open time log after verifying the kiosk PIN.
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.Store.ClockOut)
}

func (h *Handler) clock(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, companyID, employeeID string, at time.Time) (*sqlite.TimeLog, error)) {

	companyID := companyFrom(r.Context())

	var req ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ok, err := h.Store.VerifyPIN(r.Context(), companyID, req.EmployeeID, req.PIN)
	if err != nil {
		writeError(w, statusFor(err), "Failed to verify PIN", err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Wrong PIN", nil)
		return
	}

	logRow, err := op(r.Context(), companyID, req.EmployeeID, h.Now())
	if err != nil {
		writeError(w, statusFor(err), "Clock operation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toTimeLogDTO(*logRow))
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

func parseDay(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", reporting.ErrInvalidInput)
	}
	return d, nil
}

// AddSale records one dated sale amount.
func (h *Handler) AddSale(w http.ResponseWriter, r *http.Request) {
	var req AddSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := parseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	err = h.Store.AddSale(r.Context(), companyFrom(r.Context()), date,
		decimal.NewFromFloat(req.Amount), reporting.PaymentMethod(req.Method))
	if err != nil {
		writeError(w, statusFor(err), "Failed to add sale", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// AddCost records one dated cost amount.
func (h *Handler) AddCost(w http.ResponseWriter, r *http.Request) {
	var req AddCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := parseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	err = h.Store.AddCost(r.Context(), companyFrom(r.Context()), date,
		decimal.NewFromFloat(req.Amount), req.Category)
	if err != nil {
		writeError(w, statusFor(err), "Failed to add cost", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// SetTipPool sets a day's tip pool total.
func (h *Handler) SetTipPool(w http.ResponseWriter, r *http.Request) {
	var req SetTipPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := parseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	err = h.Store.SetTipPool(r.Context(), companyFrom(r.Context()), date,
		decimal.NewFromFloat(req.TotalTip))
	if err != nil {
		writeError(w, statusFor(err), "Failed to set tip pool", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// =============================================================================
// ADMIN HANDLERS (super-admin provisioning, outside tenant scope)
// =============================================================================

// CreateCompany provisions a new tenant.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	company, err := h.Store.CreateCompany(r.Context(), req.Name)
	if err != nil {
		writeError(w, statusFor(err), "Failed to create company", err)
		return
	}

	writeJSON(w, http.StatusCreated, CompanyDTO{
		ID:        company.ID,
		Name:      company.Name,
		CreatedAt: company.CreatedAt.Format(time.RFC3339),
	})
}

// ListCompanies returns all tenants.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list companies", err)
		return
	}

	dtos := make([]CompanyDTO, len(companies))
	for i, c := range companies {
		dtos[i] = CompanyDTO{
			ID:        c.ID,
			Name:      c.Name,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func statusFor(err error) int {
	switch {
	case reporting.IsUnauthorized(err):
		return http.StatusUnauthorized
	case reporting.IsNotFound(err):
		return http.StatusNotFound
	case reporting.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, sqlite.ErrOpenLog):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
