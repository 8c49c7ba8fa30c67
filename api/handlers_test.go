/*
handlers_test.go - Handler tests over an in-memory store

Tests run the full chi router against a :memory: database, driving the
same HTTP surface clients use: login, punch, planning saves, and the
pay-variable report.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

type testEnv struct {
	handler *Handler
	router  http.Handler
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	auth := NewAuth("test-secret")
	handler := NewHandler(store, auth)

	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.NoError(t, store.SaveUser(context.Background(), sqlite.User{
		ID: "usr-1", Username: "admin", PasswordHash: hash, Role: "admin",
	}))

	token, err := auth.GenerateToken("usr-1", "admin", "admin")
	require.NoError(t, err)

	return &testEnv{
		handler: handler,
		router:  NewRouter(handler),
		token:   token,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// =============================================================================
// AUTH
// =============================================================================

func TestLogin_GoodAndBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.token = "" // exercise the public route without a bearer token

	rec := env.do(t, "POST", "/api/auth/login", LoginRequest{Username: "admin", Password: "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[LoginResponse](t, rec)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Username)

	rec = env.do(t, "POST", "/api/auth/login", LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, "POST", "/api/auth/login", LoginRequest{Username: "ghost", Password: "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutes_RejectMissingToken(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""

	rec := env.do(t, "GET", "/api/employees", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Authentication required", body.Error)
}

func TestProtectedRoutes_RejectBadToken(t *testing.T) {
	env := newTestEnv(t)
	env.token = "not-a-token"

	rec := env.do(t, "GET", "/api/employees", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// EMPLOYEES AND CONTRACTS
// =============================================================================

func (e *testEnv) createEmployee(t *testing.T, matricule int, first, last string) EmployeeDTO {
	t.Helper()
	rec := e.do(t, "POST", "/api/employees", CreateEmployeeRequest{
		Matricule: matricule, FirstName: first, LastName: last,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[EmployeeDTO](t, rec)
}

func (e *testEnv) createContract(t *testing.T, employeeID string, hoursPerWeek float64) ContractDTO {
	t.Helper()
	rec := e.do(t, "POST", "/api/employees/"+employeeID+"/contracts",
		CreateContractRequest{HoursPerWeek: hoursPerWeek})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[ContractDTO](t, rec)
}

func TestCreateEmployee_DuplicateMatriculeConflicts(t *testing.T) {
	env := newTestEnv(t)

	env.createEmployee(t, 1042, "Marie", "Dupont")

	rec := env.do(t, "POST", "/api/employees", CreateEmployeeRequest{
		Matricule: 1042, FirstName: "Jean", LastName: "Martin",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAmendment_EndBeforeStartRejected(t *testing.T) {
	env := newTestEnv(t)

	emp := env.createEmployee(t, 1042, "Marie", "Dupont")
	contract := env.createContract(t, emp.ID, 35)

	hours := 40.0
	rec := env.do(t, "POST", "/api/contracts/"+contract.ID+"/amendments", CreateAmendmentRequest{
		StartDate:       "2025-03-10",
		EndDate:         "2025-03-01",
		NewHoursPerWeek: &hours,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PLANNING
// =============================================================================

func TestSaveDay_LockedDayConflicts(t *testing.T) {
	env := newTestEnv(t)
	emp := env.createEmployee(t, 1042, "Marie", "Dupont")

	day := "2025-03-03"
	save := SaveDayRequest{Shifts: []SaveShiftRequest{
		{EmployeeID: emp.ID, StartHour: 9, EndHour: 17, Kind: "planned"},
	}}

	rec := env.do(t, "POST", "/api/planning/days/"+day, save)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "POST", "/api/planning/days/"+day+"/lock", LockDayRequest{Locked: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "POST", "/api/planning/days/"+day, save)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unlock and the save goes through again.
	rec = env.do(t, "POST", "/api/planning/days/"+day+"/lock", LockDayRequest{Locked: false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, "POST", "/api/planning/days/"+day, save)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWeeksStatus_ValidatedOnlyWhenAllDaysLocked(t *testing.T) {
	env := newTestEnv(t)

	// Lock all of the first week, one day of the second.
	for day := 3; day <= 9; day++ {
		rec := env.do(t, "POST", fmt.Sprintf("/api/planning/days/2025-03-%02d/lock", day),
			LockDayRequest{Locked: true})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := env.do(t, "POST", "/api/planning/days/2025-03-10/lock", LockDayRequest{Locked: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "GET", "/api/planning/weeks-status?from=2025-03-03&to=2025-03-16", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	weeks := decode[[]WeekStatusDTO](t, rec)
	require.Len(t, weeks, 2)
	assert.True(t, weeks[0].Validated)
	assert.Len(t, weeks[0].LockedDays, 7)
	assert.False(t, weeks[1].Validated)
	assert.Len(t, weeks[1].LockedDays, 1)
}

// =============================================================================
// PUNCH
// =============================================================================

func TestPunch_InThenOutRecordsRealShift(t *testing.T) {
	env := newTestEnv(t)
	env.createEmployee(t, 1042, "Marie", "Dupont")

	clock := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	env.handler.now = func() time.Time { return clock }

	env.token = "" // punch terminal has no session
	rec := env.do(t, "POST", "/api/punch", PunchRequest{Matricule: 1042, Action: "in"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[PunchResponse](t, rec)
	assert.Equal(t, "in", resp.Action)

	clock = clock.Add(8 * time.Hour)
	rec = env.do(t, "POST", "/api/punch", PunchRequest{Matricule: 1042, Action: "out"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[PunchResponse](t, rec)
	assert.Equal(t, "out", resp.Action)
	assert.InDelta(t, 8.0, resp.Worked, 0.001)

	// The worked interval is now a real shift: 9h..17h on March 3.
	shifts, err := env.handler.Store.ListShiftsInRange(context.Background(),
		payroll.NewDate(2025, time.March, 3), payroll.NewDate(2025, time.March, 3),
		payroll.ShiftReal)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.True(t, shifts[0].StartHour.Equal(payroll.NewHours(9)))
	assert.True(t, shifts[0].EndHour.Equal(payroll.NewHours(17)))
}

func TestPunch_DoubleClockInRejected(t *testing.T) {
	// GIVEN: An employee already clocked in
	// WHEN: They tap "in" again a minute later
	// THEN: The second punch is rejected and the open record survives —
	//       the worked day must not collapse into a one-minute shift

	env := newTestEnv(t)
	env.createEmployee(t, 1042, "Marie", "Dupont")

	clock := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	env.handler.now = func() time.Time { return clock }

	env.token = ""
	rec := env.do(t, "POST", "/api/punch", PunchRequest{Matricule: 1042, Action: "in"})
	require.Equal(t, http.StatusOK, rec.Code)

	clock = clock.Add(time.Minute)
	rec = env.do(t, "POST", "/api/punch", PunchRequest{Matricule: 1042, Action: "in"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No shift was materialized and the record is still open.
	shifts, err := env.handler.Store.ListShiftsInRange(context.Background(),
		payroll.NewDate(2025, time.March, 3), payroll.NewDate(2025, time.March, 3),
		payroll.ShiftReal)
	require.NoError(t, err)
	assert.Empty(t, shifts)

	clock = clock.Add(8 * time.Hour)
	rec = env.do(t, "POST", "/api/punch", PunchRequest{Matricule: 1042, Action: "out"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[PunchResponse](t, rec)
	assert.InDelta(t, 8.0+1.0/60, resp.Worked, 0.001)
}

func TestPunch_ClockOutWithoutOpenRecordRejected(t *testing.T) {
	env := newTestEnv(t)
	env.createEmployee(t, 1042, "Marie", "Dupont")
	env.token = ""

	rec := env.do(t, "POST", "/api/punch", PunchRequest{Matricule: 1042, Action: "out"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPunch_MissingOrUnknownActionRejected(t *testing.T) {
	env := newTestEnv(t)
	env.createEmployee(t, 1042, "Marie", "Dupont")
	env.token = ""

	rec := env.do(t, "POST", "/api/punch", PunchRequest{Matricule: 1042})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "POST", "/api/punch", PunchRequest{Matricule: 1042, Action: "toggle"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPunch_UnknownMatricule404(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""

	rec := env.do(t, "POST", "/api/punch", PunchRequest{Matricule: 9999, Action: "in"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// PAY VARIABLES
// =============================================================================

// seedPayScenario builds one employee with a 35h contract and a 40h punched
// week inside a March pay period, returning the period ID.
func seedPayScenario(t *testing.T, env *testEnv) string {
	t.Helper()

	emp := env.createEmployee(t, 1042, "Marie", "Dupont")
	env.createContract(t, emp.ID, 35)

	for day := 3; day <= 7; day++ {
		rec := env.do(t, "POST", fmt.Sprintf("/api/planning/days/2025-03-%02d", day), SaveDayRequest{
			Shifts: []SaveShiftRequest{
				{EmployeeID: emp.ID, StartHour: 9, EndHour: 17, Kind: "real"},
			},
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(t, "POST", "/api/pay-periods", CreatePayPeriodRequest{
		StartDate: "2025-03-03", EndDate: "2025-03-30", SalaryMonth: "2025-03",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[PayPeriodDTO](t, rec).ID
}

func TestGetPayVariables_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	periodID := seedPayScenario(t, env)

	rec := env.do(t, "GET", "/api/pay-periods/"+periodID+"/variables", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[PayVariablesDTO](t, rec)
	assert.Equal(t, "2025-03", report.SalaryMonth)
	require.Len(t, report.Lines, 1)

	line := report.Lines[0]
	assert.Equal(t, 1042, line.Matricule)
	assert.InDelta(t, 151.55, line.BaseMonthlyHours, 0.001) // 35 * 4.33
	assert.InDelta(t, 40.0, line.PointedHours, 0.001)
	assert.InDelta(t, 4.0, line.Overtime10, 0.001)
	assert.InDelta(t, 1.0, line.Overtime25, 0.001)
	assert.InDelta(t, 0.0, line.Overtime50, 0.001)
	assert.Len(t, line.Weeks, 4)
}

func TestGetPayVariables_EmployeeWithoutContractSkipped(t *testing.T) {
	env := newTestEnv(t)
	periodID := seedPayScenario(t, env)
	env.createEmployee(t, 2000, "Sans", "Contrat")

	rec := env.do(t, "GET", "/api/pay-periods/"+periodID+"/variables", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[PayVariablesDTO](t, rec)
	assert.Len(t, report.Lines, 1)
}

func TestExportPayVariables_CSVDownload(t *testing.T) {
	env := newTestEnv(t)
	periodID := seedPayScenario(t, env)

	rec := env.do(t, "GET", "/api/pay-periods/"+periodID+"/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "variables-paie-2025-03.csv")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "Nom,Prénom,Base Contrat,Heures Pointées"), "header row: %s", body)
	assert.Contains(t, body, "Dupont")
	assert.Contains(t, body, "151.55")
}

func TestExportPayVariables_UnknownFormatRejected(t *testing.T) {
	env := newTestEnv(t)
	periodID := seedPayScenario(t, env)

	rec := env.do(t, "GET", "/api/pay-periods/"+periodID+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPayVariables_UnknownPeriod404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/pay-periods/nope/variables", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
