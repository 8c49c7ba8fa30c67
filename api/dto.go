/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

CONVENTIONS:
  - Dates travel as "YYYY-MM-DD" strings
  - Hour quantities travel as JSON numbers (parsed into decimals server-side)
  - Timestamps travel as RFC3339

VALIDATION:
  Validation is done in handlers and the payroll core, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/types.go: The domain types behind them
*/
package api

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest carries dashboard credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the signed token. The same token is also set as an
// HttpOnly cookie for browser clients.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// =============================================================================
// EMPLOYEES / CONTRACTS / AMENDMENTS
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Matricule int    `json:"matricule"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CreateEmployeeRequest creates or updates an employee.
type CreateEmployeeRequest struct {
	Matricule int    `json:"matricule"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// ContractDTO represents a contract in API responses.
type ContractDTO struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	HoursPerWeek float64 `json:"hours_per_week"`
	CreatedAt    string  `json:"created_at"`
}

// CreateContractRequest creates a contract for an employee.
type CreateContractRequest struct {
	HoursPerWeek float64 `json:"hours_per_week"`
}

// AmendmentDTO represents an amendment in API responses.
type AmendmentDTO struct {
	ID              string   `json:"id"`
	ContractID      string   `json:"contract_id"`
	StartDate       string   `json:"start_date"`
	EndDate         *string  `json:"end_date,omitempty"`
	NewHoursPerWeek *float64 `json:"new_hours_per_week,omitempty"`
	Temporary       bool     `json:"temporary"`
}

// CreateAmendmentRequest creates an amendment on a contract. EndDate empty
// means open-ended; NewHoursPerWeek nil means no hour change.
type CreateAmendmentRequest struct {
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date,omitempty"`
	NewHoursPerWeek *float64 `json:"new_hours_per_week,omitempty"`
	Temporary       bool     `json:"temporary"`
}

// =============================================================================
// PAY PERIODS
// =============================================================================

// PayPeriodDTO represents a pay period in API responses.
type PayPeriodDTO struct {
	ID          string `json:"id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	SalaryMonth string `json:"salary_month"`
}

// CreatePayPeriodRequest creates or updates a pay period.
type CreatePayPeriodRequest struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	SalaryMonth string `json:"salary_month"`
}

// =============================================================================
// PLANNING
// =============================================================================

// ShiftDTO represents one shift in API responses.
type ShiftDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	StartHour  float64 `json:"start_hour"`
	EndHour    float64 `json:"end_hour"`
	Kind       string  `json:"kind"`
}

// SaveDayRequest replaces every shift on one day. The planning editor
// always submits the full day.
type SaveDayRequest struct {
	Shifts []SaveShiftRequest `json:"shifts"`
}

// SaveShiftRequest is one shift inside a day save.
type SaveShiftRequest struct {
	EmployeeID string  `json:"employee_id"`
	StartHour  float64 `json:"start_hour"`
	EndHour    float64 `json:"end_hour"`
	Kind       string  `json:"kind"`
}

// LockDayRequest freezes or unfreezes a day's planning.
type LockDayRequest struct {
	Locked bool `json:"locked"`
}

// WeekStatusDTO summarizes one week of the planning: which of its days are
// locked. A week is "validated" when all seven are.
type WeekStatusDTO struct {
	WeekStart  string   `json:"week_start"`
	WeekEnd    string   `json:"week_end"`
	LockedDays []string `json:"locked_days"`
	Validated  bool     `json:"validated"`
}

// =============================================================================
// PUNCH
// =============================================================================

// PunchRequest clocks an employee in or out by badge number. Action must
// be "in" or "out"; the terminal states its intent so a double-tap cannot
// silently flip a clock-in into a clock-out.
type PunchRequest struct {
	Matricule int    `json:"matricule"`
	Action    string `json:"action"`
}

// PunchResponse reports what the punch did.
type PunchResponse struct {
	Action     string  `json:"action"` // "in" or "out"
	EmployeeID string  `json:"employee_id"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	At         string  `json:"at"`
	Worked     float64 `json:"worked_hours,omitempty"` // set on "out"
}

// TimeRecordDTO represents a raw clock-in/out pair.
type TimeRecordDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	CheckIn    string  `json:"check_in"`
	CheckOut   *string `json:"check_out,omitempty"`
}

// =============================================================================
// PAY VARIABLES
// =============================================================================

// WeekDetailDTO is one week of an employee's pay-variable line.
type WeekDetailDTO struct {
	WeekStart       string  `json:"week_start"`
	WeekEnd         string  `json:"week_end"`
	Threshold       float64 `json:"threshold"`
	ThresholdSource string  `json:"threshold_source"`
	ActualHours     float64 `json:"actual_hours"`
	Overtime10      float64 `json:"overtime_10"`
	Overtime25      float64 `json:"overtime_25"`
	Overtime50      float64 `json:"overtime_50"`
}

// PayVariableLineDTO is one employee's computed pay variables.
type PayVariableLineDTO struct {
	EmployeeID          string          `json:"employee_id"`
	Matricule           int             `json:"matricule"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	BaseMonthlyHours    float64         `json:"base_monthly_hours"`
	AmendmentAdjustment float64         `json:"amendment_adjustment"`
	PointedHours        float64         `json:"pointed_hours"`
	TotalHours          float64         `json:"total_hours"`
	Overtime10          float64         `json:"overtime_10"`
	Overtime25          float64         `json:"overtime_25"`
	Overtime50          float64         `json:"overtime_50"`
	Weeks               []WeekDetailDTO `json:"weeks"`
}

// PayVariablesDTO is the full report for one pay period.
type PayVariablesDTO struct {
	PeriodID    string               `json:"period_id"`
	StartDate   string               `json:"start_date"`
	EndDate     string               `json:"end_date"`
	SalaryMonth string               `json:"salary_month"`
	Lines       []PayVariableLineDTO `json:"lines"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
