/*
handlers.go - HTTP API handlers for the payroll system

PURPOSE:
  Exposes employee records, planning, punch clock and pay-variable
  computation via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login              Exchange credentials for a token
    POST   /api/auth/logout             Clear the session cookie

  Employees:
    GET    /api/employees               List all employees
    POST   /api/employees               Create employee
    GET    /api/employees/{id}          Get employee details
    DELETE /api/employees/{id}          Remove employee
    POST   /api/employees/{id}/contracts Create a contract
    GET    /api/employees/{id}/contract  Get the primary contract

  Contracts:
    POST   /api/contracts/{id}/amendments  Create amendment
    GET    /api/contracts/{id}/amendments  List amendments
    DELETE /api/amendments/{id}            Remove amendment

  Pay periods:
    GET    /api/pay-periods             List pay periods
    POST   /api/pay-periods             Create pay period
    GET    /api/pay-periods/{id}        Get pay period
    DELETE /api/pay-periods/{id}        Remove pay period
    GET    /api/pay-periods/{id}/variables  Computed pay variables (JSON)
    GET    /api/pay-periods/{id}/export     CSV or XLSX download

  Planning:
    GET    /api/planning/shifts         Shifts in a date range
    POST   /api/planning/days/{date}    Replace one day's shifts
    POST   /api/planning/days/{date}/lock   Freeze/unfreeze a day
    GET    /api/planning/weeks-status   Per-week lock summary

  Punch (unauthenticated, badge-number based):
    POST   /api/punch                   Clock in or out
    GET    /api/time-records            Raw records in a date range

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (payroll core, export)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing/invalid token
  - 404: Resource not found
  - 409: Conflict (locked day, duplicate matricule)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Token issuing and middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Auth  *Auth

	// now is swappable so punch tests can pin the clock.
	now func() time.Time
}

// NewHandler creates a new handler with the given store and auth layer.
func NewHandler(store *sqlite.Store, auth *Auth) *Handler {
	return &Handler{
		Store: store,
		Auth:  auth,
		now:   time.Now,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges credentials for a signed token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up user", err)
		return
	}
	// Same answer whether the user is unknown or the password is wrong.
	if user == nil || !CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := h.Auth.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
	})
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Matricule <= 0 {
		writeError(w, http.StatusBadRequest, "Matricule must be positive", nil)
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "First and last name are required", nil)
		return
	}

	emp := sqlite.Employee{
		ID:        uuid.NewString(),
		Matricule: req.Matricule,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		if errors.Is(err, sqlite.ErrDuplicateMatricule) {
			writeError(w, http.StatusConflict, "Matricule already in use", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteEmployee(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        e.ID,
		Matricule: e.Matricule,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// CONTRACT AND AMENDMENT HANDLERS
// =============================================================================

// CreateContract creates a contract for an employee.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.HoursPerWeek < 0 {
		writeError(w, http.StatusBadRequest, "Weekly hours cannot be negative", nil)
		return
	}

	contract := sqlite.Contract{
		ID:           uuid.NewString(),
		EmployeeID:   employeeID,
		HoursPerWeek: payroll.NewHours(req.HoursPerWeek),
	}
	if err := h.Store.SaveContract(r.Context(), contract); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create contract", err)
		return
	}

	writeJSON(w, http.StatusCreated, toContractDTO(contract))
}

// GetPrimaryContract returns the contract pay computation uses.
func (h *Handler) GetPrimaryContract(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	contract, err := h.Store.PrimaryContract(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "Employee has no contract", nil)
		return
	}

	writeJSON(w, http.StatusOK, toContractDTO(*contract))
}

// CreateAmendment creates an amendment on a contract.
func (h *Handler) CreateAmendment(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")

	contract, err := h.Store.GetContract(r.Context(), contractID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}

	var req CreateAmendmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	startDate, err := payroll.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}

	amendment := sqlite.Amendment{
		ID:         uuid.NewString(),
		ContractID: contractID,
		StartDate:  startDate,
		Temporary:  req.Temporary,
	}
	if req.EndDate != "" {
		endDate, err := payroll.ParseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		amendment.EndDate = &endDate
	}
	if req.NewHoursPerWeek != nil {
		hours := payroll.NewHours(*req.NewHoursPerWeek)
		amendment.NewHoursPerWeek = &hours
	}

	if err := amendment.ToPayroll().Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amendment", err)
		return
	}
	if err := h.Store.SaveAmendment(r.Context(), amendment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create amendment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAmendmentDTO(amendment))
}

// ListAmendments returns a contract's amendments in resolution order.
func (h *Handler) ListAmendments(w http.ResponseWriter, r *http.Request) {
	contractID := chi.URLParam(r, "id")

	amendments, err := h.Store.ListAmendmentsByContract(r.Context(), contractID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list amendments", err)
		return
	}

	dtos := make([]AmendmentDTO, len(amendments))
	for i, a := range amendments {
		dtos[i] = toAmendmentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteAmendment removes an amendment.
func (h *Handler) DeleteAmendment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteAmendment(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete amendment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toContractDTO(c sqlite.Contract) ContractDTO {
	return ContractDTO{
		ID:           c.ID,
		EmployeeID:   c.EmployeeID,
		HoursPerWeek: c.HoursPerWeek.Float64(),
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

func toAmendmentDTO(a sqlite.Amendment) AmendmentDTO {
	dto := AmendmentDTO{
		ID:         a.ID,
		ContractID: a.ContractID,
		StartDate:  a.StartDate.String(),
		Temporary:  a.Temporary,
	}
	if a.EndDate != nil {
		s := a.EndDate.String()
		dto.EndDate = &s
	}
	if a.NewHoursPerWeek != nil {
		f := a.NewHoursPerWeek.Float64()
		dto.NewHoursPerWeek = &f
	}
	return dto
}

// =============================================================================
// PAY PERIOD HANDLERS
// =============================================================================

// ListPayPeriods returns all pay periods, most recent first.
func (h *Handler) ListPayPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.ListPayPeriods(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pay periods", err)
		return
	}

	dtos := make([]PayPeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPayPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayPeriod creates a pay period.
func (h *Handler) CreatePayPeriod(w http.ResponseWriter, r *http.Request) {
	var req CreatePayPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := payroll.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := payroll.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}
	if err := payroll.NewPeriod(start, end).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	if req.SalaryMonth == "" {
		writeError(w, http.StatusBadRequest, "Salary month is required", nil)
		return
	}

	period := sqlite.PayPeriod{
		ID:          uuid.NewString(),
		StartDate:   start,
		EndDate:     end,
		SalaryMonth: req.SalaryMonth,
	}
	if err := h.Store.SavePayPeriod(r.Context(), period); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create pay period", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPayPeriodDTO(period))
}

// GetPayPeriod returns a single pay period.
func (h *Handler) GetPayPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.Store.GetPayPeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get pay period", err)
		return
	}
	if period == nil {
		writeError(w, http.StatusNotFound, "Pay period not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toPayPeriodDTO(*period))
}

// DeletePayPeriod removes a pay period.
func (h *Handler) DeletePayPeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePayPeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete pay period", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toPayPeriodDTO(p sqlite.PayPeriod) PayPeriodDTO {
	return PayPeriodDTO{
		ID:          p.ID,
		StartDate:   p.StartDate.String(),
		EndDate:     p.EndDate.String(),
		SalaryMonth: p.SalaryMonth,
	}
}

// =============================================================================
// PLANNING HANDLERS
// =============================================================================

// ListShifts returns shifts in a date range.
// GET /api/planning/shifts?from=YYYY-MM-DD&to=YYYY-MM-DD&kind=real|planned
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	kind := payroll.ShiftKind(r.URL.Query().Get("kind"))
	if kind != "" && kind != payroll.ShiftReal && kind != payroll.ShiftPlanned {
		writeError(w, http.StatusBadRequest, "Invalid kind", nil)
		return
	}

	shifts, err := h.Store.ListShiftsInRange(r.Context(), from, to, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = ShiftDTO{
			ID:         s.ID,
			EmployeeID: s.EmployeeID,
			Date:       s.Date.String(),
			StartHour:  s.StartHour.Float64(),
			EndHour:    s.EndHour.Float64(),
			Kind:       string(s.Kind),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveDay replaces every shift on one day. Rejected when the day is locked.
func (h *Handler) SaveDay(w http.ResponseWriter, r *http.Request) {
	day, err := payroll.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	locked, err := h.Store.IsDayLocked(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check day lock", err)
		return
	}
	if locked {
		writeError(w, http.StatusConflict, "Day is locked", nil)
		return
	}

	var req SaveDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shifts := make([]sqlite.Shift, 0, len(req.Shifts))
	for i, s := range req.Shifts {
		kind := payroll.ShiftKind(s.Kind)
		if kind == "" {
			kind = payroll.ShiftPlanned
		}
		shift := sqlite.Shift{
			ID:         uuid.NewString(),
			EmployeeID: s.EmployeeID,
			Date:       day,
			StartHour:  payroll.NewHours(s.StartHour),
			EndHour:    payroll.NewHours(s.EndHour),
			Kind:       kind,
		}
		if err := shift.ToPayroll().Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid shift %d", i), err)
			return
		}
		shifts = append(shifts, shift)
	}

	if err := h.Store.ReplaceDayShifts(r.Context(), day, shifts); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save day", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "saved": len(shifts)})
}

// LockDay freezes or unfreezes a day's planning.
func (h *Handler) LockDay(w http.ResponseWriter, r *http.Request) {
	day, err := payroll.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	var req LockDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.SetDayLock(r.Context(), day, req.Locked); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set day lock", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "locked": req.Locked})
}

// WeeksStatus summarizes lock state per Monday week over a range.
// GET /api/planning/weeks-status?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) WeeksStatus(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	period := payroll.NewPeriod(from, to)
	if err := period.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}

	lockedDays, err := h.Store.ListLockedDaysInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list locked days", err)
		return
	}
	locked := make(map[string]bool, len(lockedDays))
	for _, d := range lockedDays {
		locked[d.String()] = true
	}

	var dtos []WeekStatusDTO
	for _, week := range payroll.GroupByWeek(nil, period) {
		dto := WeekStatusDTO{
			WeekStart: week.WeekStart.String(),
			WeekEnd:   week.WeekEnd.String(),
			Validated: true,
		}
		first := payroll.Later(week.WeekStart, period.Start)
		last := payroll.Earlier(week.WeekEnd, period.End)
		for d := first; !d.After(last); d = d.AddDays(1) {
			if locked[d.String()] {
				dto.LockedDays = append(dto.LockedDays, d.String())
			} else {
				dto.Validated = false
			}
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// Punch clocks an employee in or out by badge number. The request states
// its intent: "in" opens a time record and is rejected when one is already
// open, "out" closes the open record and is rejected when there is none.
// Clocking out also records the worked interval as a real shift, which is
// what the pay computation counts.
func (h *Handler) Punch(w http.ResponseWriter, r *http.Request) {
	var req PunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Action != "in" && req.Action != "out" {
		writeError(w, http.StatusBadRequest, `Action must be "in" or "out"`, nil)
		return
	}

	emp, err := h.Store.GetEmployeeByMatricule(r.Context(), req.Matricule)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Unknown matricule", nil)
		return
	}

	now := h.now().UTC()
	open, err := h.Store.GetOpenTimeRecord(r.Context(), emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check open record", err)
		return
	}

	if req.Action == "in" {
		if open != nil {
			writeError(w, http.StatusBadRequest, "Already clocked in", nil)
			return
		}
		record := sqlite.TimeRecord{
			ID:         uuid.NewString(),
			EmployeeID: emp.ID,
			Date:       payroll.DateOf(now),
			CheckIn:    now,
		}
		if err := h.Store.SaveTimeRecord(r.Context(), record); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clock in", err)
			return
		}
		writeJSON(w, http.StatusOK, PunchResponse{
			Action:     "in",
			EmployeeID: emp.ID,
			FirstName:  emp.FirstName,
			LastName:   emp.LastName,
			At:         now.Format(time.RFC3339),
		})
		return
	}

	// Clock out: close the record and materialize the worked interval as a
	// real shift on the check-in date.
	if open == nil {
		writeError(w, http.StatusBadRequest, "Not clocked in", nil)
		return
	}
	if err := h.Store.CloseTimeRecord(r.Context(), open.ID, now); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clock out", err)
		return
	}

	shift := shiftFromRecord(*open, now)
	if err := h.Store.SaveShift(r.Context(), shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record worked shift", err)
		return
	}

	writeJSON(w, http.StatusOK, PunchResponse{
		Action:     "out",
		EmployeeID: emp.ID,
		FirstName:  emp.FirstName,
		LastName:   emp.LastName,
		At:         now.Format(time.RFC3339),
		Worked:     shift.EndHour.Sub(shift.StartHour).Float64(),
	})
}

// shiftFromRecord converts a closed time record into a real shift. The
// shift lives on the check-in date; an overnight checkout is clamped to
// midnight.
func shiftFromRecord(record sqlite.TimeRecord, checkOut time.Time) sqlite.Shift {
	start := hourOfDay(record.CheckIn)
	worked := payroll.NewHours(checkOut.Sub(record.CheckIn).Hours())
	end := start.Add(worked).Min(payroll.NewHoursFromInt(24))

	return sqlite.Shift{
		ID:         uuid.NewString(),
		EmployeeID: record.EmployeeID,
		Date:       record.Date,
		StartHour:  start,
		EndHour:    end,
		Kind:       payroll.ShiftReal,
	}
}

func hourOfDay(t time.Time) payroll.Hours {
	t = t.UTC()
	return payroll.NewHours(float64(t.Hour()) + float64(t.Minute())/60)
}

// ListTimeRecords returns raw clock records in a date range.
func (h *Handler) ListTimeRecords(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	records, err := h.Store.ListTimeRecordsInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list time records", err)
		return
	}

	dtos := make([]TimeRecordDTO, len(records))
	for i, tr := range records {
		dto := TimeRecordDTO{
			ID:         tr.ID,
			EmployeeID: tr.EmployeeID,
			Date:       tr.Date.String(),
			CheckIn:    tr.CheckIn.Format(time.RFC3339),
		}
		if tr.CheckOut != nil {
			s := tr.CheckOut.Format(time.RFC3339)
			dto.CheckOut = &s
		}
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PAY VARIABLE HANDLERS
// =============================================================================

// GetPayVariables computes the pay-variable report for a pay period.
func (h *Handler) GetPayVariables(w http.ResponseWriter, r *http.Request) {
	report, period, ok := h.buildReport(w, r)
	if !ok {
		return
	}

	dto := PayVariablesDTO{
		PeriodID:    period.ID,
		StartDate:   period.StartDate.String(),
		EndDate:     period.EndDate.String(),
		SalaryMonth: period.SalaryMonth,
		Lines:       []PayVariableLineDTO{},
	}
	for _, line := range report.Lines {
		dto.Lines = append(dto.Lines, toPayVariableLineDTO(line))
	}
	writeJSON(w, http.StatusOK, dto)
}

// ExportPayVariables serves the report as a CSV or XLSX download.
// GET /api/pay-periods/{id}/export?format=csv|xlsx
func (h *Handler) ExportPayVariables(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "Unsupported format", nil)
		return
	}

	report, period, ok := h.buildReport(w, r)
	if !ok {
		return
	}

	var raw []byte
	var contentType string
	var err error
	switch format {
	case "csv":
		raw, err = report.CSV()
		contentType = "text/csv; charset=utf-8"
	case "xlsx":
		raw, err = report.XLSX()
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render export", err)
		return
	}

	filename := fmt.Sprintf("variables-paie-%s.%s", period.SalaryMonth, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// buildReport loads every employee's records for the pay period and runs
// the calculator. Employees without a contract are skipped, matching how
// HR expects the export to behave.
func (h *Handler) buildReport(w http.ResponseWriter, r *http.Request) (*export.Report, *sqlite.PayPeriod, bool) {
	ctx := r.Context()

	period, err := h.Store.GetPayPeriod(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get pay period", err)
		return nil, nil, false
	}
	if period == nil {
		writeError(w, http.StatusNotFound, "Pay period not found", nil)
		return nil, nil, false
	}

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return nil, nil, false
	}

	// One range scan for everyone, then bucket by employee.
	shifts, err := h.Store.ListShiftsInRange(ctx, period.StartDate, period.EndDate, payroll.ShiftReal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return nil, nil, false
	}
	shiftsByEmployee := make(map[string][]payroll.Shift)
	for _, s := range shifts {
		shiftsByEmployee[s.EmployeeID] = append(shiftsByEmployee[s.EmployeeID], s.ToPayroll())
	}

	var reportEmployees []export.Employee
	for _, emp := range employees {
		contract, err := h.Store.PrimaryContract(ctx, emp.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
			return nil, nil, false
		}
		if contract == nil {
			continue
		}

		records, err := h.Store.ListAmendmentsByContract(ctx, contract.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list amendments", err)
			return nil, nil, false
		}
		amendments := make([]payroll.Amendment, len(records))
		for i, a := range records {
			amendments[i] = a.ToPayroll()
		}

		reportEmployees = append(reportEmployees, export.Employee{
			ID:              emp.ID,
			Matricule:       emp.Matricule,
			FirstName:       emp.FirstName,
			LastName:        emp.LastName,
			BaseWeeklyHours: contract.HoursPerWeek,
			Amendments:      amendments,
			Shifts:          shiftsByEmployee[emp.ID],
		})
	}

	report, err := export.BuildReport(period.Period(), period.SalaryMonth, reportEmployees)
	if err != nil {
		status := http.StatusInternalServerError
		if payroll.IsClientError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Failed to compute pay variables", err)
		return nil, nil, false
	}
	return report, period, true
}

func toPayVariableLineDTO(line export.Line) PayVariableLineDTO {
	dto := PayVariableLineDTO{
		EmployeeID:          line.Employee.ID,
		Matricule:           line.Employee.Matricule,
		FirstName:           line.Employee.FirstName,
		LastName:            line.Employee.LastName,
		BaseMonthlyHours:    line.Result.BaseMonthlyHours.Float64(),
		AmendmentAdjustment: line.Result.AmendmentAdjustment.Float64(),
		PointedHours:        line.Result.PointedHours.Float64(),
		TotalHours:          line.Result.TotalHours.Float64(),
		Overtime10:          line.Result.TotalOvertime10.Float64(),
		Overtime25:          line.Result.TotalOvertime25.Float64(),
		Overtime50:          line.Result.TotalOvertime50.Float64(),
	}
	for _, week := range line.Result.Weeks {
		dto.Weeks = append(dto.Weeks, WeekDetailDTO{
			WeekStart:       week.WeekStart.String(),
			WeekEnd:         week.WeekEnd.String(),
			Threshold:       week.Threshold.Float64(),
			ThresholdSource: string(week.ThresholdSource),
			ActualHours:     week.ActualHours.Float64(),
			Overtime10:      week.Bands.Rate10.Float64(),
			Overtime25:      week.Bands.Rate25.Float64(),
			Overtime50:      week.Bands.Rate50.Float64(),
		})
	}
	return dto
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (payroll.Date, payroll.Date, bool) {
	from, err := payroll.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing from", err)
		return payroll.Date{}, payroll.Date{}, false
	}
	to, err := payroll.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing to", err)
		return payroll.Date{}, payroll.Date{}, false
	}
	return from, to, true
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
