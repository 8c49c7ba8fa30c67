/*
Package sqlite provides the SQLite-backed persistence for the HR records
the payroll core consumes.

PURPOSE:
  Stores employees, contracts, amendments, shifts, time records, pay
  periods, day locks and users. The payroll core itself never touches this
  package — handlers load records here, convert to payroll types, and pass
  them in.

KEY TABLES:
  employees:     Badge number (matricule), names, contact
  contracts:     Base weekly hours per employee; the FIRST contract on
                 record is the primary one pay computation uses
  amendments:    Dated weekly-hour overrides per contract
  shifts:        Planned and real intervals, one calendar day each
  time_records:  Raw clock-in/clock-out pairs from the punch flow
  pay_periods:   HR-defined inclusive date ranges with a salary month
  day_locks:     Days whose planning is frozen
  users:         Dashboard accounts (bcrypt hashes)

CONVENTIONS:
  - Dates are stored as "YYYY-MM-DD" text, timestamps as RFC3339
  - Hour quantities are stored as decimal text, never floats
  - Missing rows read back as (nil, nil), not an error

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - payroll/calculator.go: Consumes the records loaded here
  - api/handlers.go: The only caller
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/payroll-engine/payroll"
)

// ErrDuplicateMatricule is returned when an employee save collides with an
// existing badge number.
var ErrDuplicateMatricule = errors.New("matricule already in use")

// Store implements persistence over SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store with the given database path.
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
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		matricule INTEGER NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		hours_per_week TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_employee
		ON contracts(employee_id, created_at);

	CREATE TABLE IF NOT EXISTS amendments (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id),
		start_date TEXT NOT NULL,
		end_date TEXT,
		new_hours_per_week TEXT,
		temporary BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Resolution order: start date, then creation order. The resolver is
	-- order-dependent, so this ordering IS the business rule.
	CREATE INDEX IF NOT EXISTS idx_amendments_contract
		ON amendments(contract_id, start_date, created_at);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		start_hour TEXT NOT NULL,
		end_hour TEXT NOT NULL,
		shift_type TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Period-bounded range scans are the hot path (reports, exports).
	CREATE INDEX IF NOT EXISTS idx_shifts_date
		ON shifts(date, shift_type);
	CREATE INDEX IF NOT EXISTS idx_shifts_employee_date
		ON shifts(employee_id, date);

	CREATE TABLE IF NOT EXISTS time_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		date TEXT NOT NULL,
		check_in TEXT NOT NULL,
		check_out TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_time_records_employee
		ON time_records(employee_id, check_out);
	CREATE INDEX IF NOT EXISTS idx_time_records_date
		ON time_records(date);

	CREATE TABLE IF NOT EXISTS pay_periods (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		salary_month TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pay_periods_start
		ON pay_periods(start_date DESC);

	CREATE TABLE IF NOT EXISTS day_locks (
		date TEXT PRIMARY KEY,
		locked BOOLEAN NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT,
		role TEXT NOT NULL DEFAULT 'manager',
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// Employee is a stored employee record.
type Employee struct {
	ID        string
	Matricule int
	FirstName string
	LastName  string
	Email     string
	CreatedAt time.Time
}

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, matricule, first_name, last_name, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			matricule = excluded.matricule,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Matricule, emp.FirstName, emp.LastName, emp.Email,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil && isUniqueConstraintError(err) {
		return fmt.Errorf("matricule %d: %w", emp.Matricule, ErrDuplicateMatricule)
	}
	return err
}

// GetEmployee retrieves an employee by ID. Returns (nil, nil) when absent.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return scanEmployee(s.db.QueryRowContext(ctx,
		"SELECT id, matricule, first_name, last_name, email, created_at FROM employees WHERE id = ?", id))
}

// GetEmployeeByMatricule retrieves an employee by badge number.
func (s *Store) GetEmployeeByMatricule(ctx context.Context, matricule int) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return scanEmployee(s.db.QueryRowContext(ctx,
		"SELECT id, matricule, first_name, last_name, email, created_at FROM employees WHERE matricule = ?", matricule))
}

func scanEmployee(row *sql.Row) (*Employee, error) {
	var emp Employee
	var email sql.NullString
	var createdAt string

	err := row.Scan(&emp.ID, &emp.Matricule, &emp.FirstName, &emp.LastName, &email, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	emp.Email = email.String
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// ListEmployees returns all employees ordered by last name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, matricule, first_name, last_name, email, created_at FROM employees ORDER BY last_name, first_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		var email sql.NullString
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.Matricule, &emp.FirstName, &emp.LastName, &email, &createdAt); err != nil {
			return nil, err
		}
		emp.Email = email.String
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	return err
}

// =============================================================================
// CONTRACTS
// =============================================================================

// Contract is a stored contract record.
type Contract struct {
	ID           string
	EmployeeID   string
	HoursPerWeek payroll.Hours
	CreatedAt    time.Time
}

// SaveContract inserts or updates a contract.
func (s *Store) SaveContract(ctx context.Context, c Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO contracts (id, employee_id, hours_per_week, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hours_per_week = excluded.hours_per_week
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.EmployeeID, c.HoursPerWeek.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetContract retrieves a contract by ID. Returns (nil, nil) when absent.
func (s *Store) GetContract(ctx context.Context, id string) (*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return scanContract(s.db.QueryRowContext(ctx,
		"SELECT id, employee_id, hours_per_week, created_at FROM contracts WHERE id = ?", id))
}

// PrimaryContract returns the employee's first contract on record — the one
// pay computation uses. Returns (nil, nil) when the employee has none.
func (s *Store) PrimaryContract(ctx context.Context, employeeID string) (*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return scanContract(s.db.QueryRowContext(ctx,
		"SELECT id, employee_id, hours_per_week, created_at FROM contracts WHERE employee_id = ? ORDER BY created_at ASC, id ASC LIMIT 1",
		employeeID))
}

func scanContract(row *sql.Row) (*Contract, error) {
	var c Contract
	var hoursText, createdAt string

	err := row.Scan(&c.ID, &c.EmployeeID, &hoursText, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.HoursPerWeek, err = payroll.ParseHours(hoursText)
	if err != nil {
		return nil, fmt.Errorf("corrupt hours_per_week for contract %s: %w", c.ID, err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// DeleteContract removes a contract and its amendments.
func (s *Store) DeleteContract(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM amendments WHERE contract_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM contracts WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// AMENDMENTS
// =============================================================================

// Amendment is a stored amendment record.
type Amendment struct {
	ID              string
	ContractID      string
	StartDate       payroll.Date
	EndDate         *payroll.Date
	NewHoursPerWeek *payroll.Hours
	Temporary       bool
	CreatedAt       time.Time
}

// ToPayroll converts to the core's amendment type.
func (a Amendment) ToPayroll() payroll.Amendment {
	return payroll.Amendment{
		ID:              payroll.AmendmentID(a.ID),
		ContractID:      payroll.ContractID(a.ContractID),
		StartDate:       a.StartDate,
		EndDate:         a.EndDate,
		NewHoursPerWeek: a.NewHoursPerWeek,
		Temporary:       a.Temporary,
	}
}

// SaveAmendment inserts an amendment. Amendments are immutable once
// created; there is no update path.
func (s *Store) SaveAmendment(ctx context.Context, a Amendment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var endDate, newHours sql.NullString
	if a.EndDate != nil {
		endDate = sql.NullString{String: a.EndDate.String(), Valid: true}
	}
	if a.NewHoursPerWeek != nil {
		newHours = sql.NullString{String: a.NewHoursPerWeek.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO amendments (id, contract_id, start_date, end_date, new_hours_per_week, temporary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ContractID, a.StartDate.String(), endDate, newHours, a.Temporary,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListAmendmentsByContract returns a contract's amendments in resolution
// order: start date ascending, creation order breaking ties. The resolver's
// first-match rule depends on this ordering.
func (s *Store) ListAmendmentsByContract(ctx context.Context, contractID string) ([]Amendment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, start_date, end_date, new_hours_per_week, temporary, created_at
		FROM amendments
		WHERE contract_id = ?
		ORDER BY start_date ASC, created_at ASC`,
		contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var amendments []Amendment
	for rows.Next() {
		a, err := scanAmendment(rows)
		if err != nil {
			return nil, err
		}
		amendments = append(amendments, a)
	}
	return amendments, rows.Err()
}

func scanAmendment(rows *sql.Rows) (Amendment, error) {
	var a Amendment
	var startDate, createdAt string
	var endDate, newHours sql.NullString

	if err := rows.Scan(&a.ID, &a.ContractID, &startDate, &endDate, &newHours, &a.Temporary, &createdAt); err != nil {
		return a, err
	}

	var err error
	a.StartDate, err = payroll.ParseDate(startDate)
	if err != nil {
		return a, fmt.Errorf("corrupt start_date for amendment %s: %w", a.ID, err)
	}
	if endDate.Valid {
		d, err := payroll.ParseDate(endDate.String)
		if err != nil {
			return a, fmt.Errorf("corrupt end_date for amendment %s: %w", a.ID, err)
		}
		a.EndDate = &d
	}
	if newHours.Valid {
		h, err := payroll.ParseHours(newHours.String)
		if err != nil {
			return a, fmt.Errorf("corrupt new_hours_per_week for amendment %s: %w", a.ID, err)
		}
		a.NewHoursPerWeek = &h
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return a, nil
}

// DeleteAmendment removes an amendment.
func (s *Store) DeleteAmendment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM amendments WHERE id = ?", id)
	return err
}

// =============================================================================
// SHIFTS
// =============================================================================

// Shift is a stored shift record.
type Shift struct {
	ID         string
	EmployeeID string
	Date       payroll.Date
	StartHour  payroll.Hours
	EndHour    payroll.Hours
	Kind       payroll.ShiftKind
	CreatedAt  time.Time
}

// ToPayroll converts to the core's shift type.
func (sh Shift) ToPayroll() payroll.Shift {
	return payroll.Shift{
		EmployeeID: payroll.EmployeeID(sh.EmployeeID),
		Date:       sh.Date,
		StartHour:  sh.StartHour,
		EndHour:    sh.EndHour,
		Kind:       sh.Kind,
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveShift inserts a single shift.
func (s *Store) SaveShift(ctx context.Context, sh Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return insertShift(ctx, s.db, sh)
}

func insertShift(ctx context.Context, db execer, sh Shift) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO shifts (id, employee_id, date, start_hour, end_hour, shift_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.EmployeeID, sh.Date.String(),
		sh.StartHour.String(), sh.EndHour.String(), string(sh.Kind),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ReplaceDayShifts atomically replaces every shift on a day. This is the
// planning-save operation: the editor always submits a full day.
func (s *Store) ReplaceDayShifts(ctx context.Context, day payroll.Date, shifts []Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM shifts WHERE date = ?", day.String()); err != nil {
		return err
	}
	for _, sh := range shifts {
		if err := insertShift(ctx, tx, sh); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListShiftsInRange returns shifts with date in [from, to], optionally
// filtered by kind ("" matches both), ordered by date then start hour.
func (s *Store) ListShiftsInRange(ctx context.Context, from, to payroll.Date, kind payroll.ShiftKind) ([]Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, date, start_hour, end_hour, shift_type, created_at
		FROM shifts
		WHERE date >= ? AND date <= ?`
	args := []any{from.String(), to.String()}
	if kind != "" {
		query += " AND shift_type = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY date ASC, start_hour ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func scanShift(rows *sql.Rows) (Shift, error) {
	var sh Shift
	var date, startHour, endHour, kind, createdAt string

	if err := rows.Scan(&sh.ID, &sh.EmployeeID, &date, &startHour, &endHour, &kind, &createdAt); err != nil {
		return sh, err
	}

	var err error
	sh.Date, err = payroll.ParseDate(date)
	if err != nil {
		return sh, fmt.Errorf("corrupt date for shift %s: %w", sh.ID, err)
	}
	sh.StartHour, err = payroll.ParseHours(startHour)
	if err != nil {
		return sh, fmt.Errorf("corrupt start_hour for shift %s: %w", sh.ID, err)
	}
	sh.EndHour, err = payroll.ParseHours(endHour)
	if err != nil {
		return sh, fmt.Errorf("corrupt end_hour for shift %s: %w", sh.ID, err)
	}
	sh.Kind = payroll.ShiftKind(kind)
	sh.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sh, nil
}

// =============================================================================
// TIME RECORDS
// =============================================================================

// TimeRecord is a raw clock-in/out pair. CheckOut nil means the employee
// is still clocked in.
type TimeRecord struct {
	ID         string
	EmployeeID string
	Date       payroll.Date
	CheckIn    time.Time
	CheckOut   *time.Time
	CreatedAt  time.Time
}

// SaveTimeRecord inserts a time record.
func (s *Store) SaveTimeRecord(ctx context.Context, tr TimeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var checkOut sql.NullString
	if tr.CheckOut != nil {
		checkOut = sql.NullString{String: tr.CheckOut.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_records (id, employee_id, date, check_in, check_out, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tr.ID, tr.EmployeeID, tr.Date.String(),
		tr.CheckIn.UTC().Format(time.RFC3339), checkOut,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetOpenTimeRecord returns the employee's most recent record without a
// check-out. Returns (nil, nil) when there is none.
func (s *Store) GetOpenTimeRecord(ctx context.Context, employeeID string) (*TimeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, date, check_in, check_out, created_at
		FROM time_records
		WHERE employee_id = ? AND check_out IS NULL
		ORDER BY check_in DESC LIMIT 1`,
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	tr, err := scanTimeRecord(rows)
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// CloseTimeRecord sets the check-out on an open record.
func (s *Store) CloseTimeRecord(ctx context.Context, id string, checkOut time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE time_records SET check_out = ? WHERE id = ? AND check_out IS NULL",
		checkOut.UTC().Format(time.RFC3339), id)
	return err
}

// ListTimeRecordsInRange returns records with date in [from, to].
func (s *Store) ListTimeRecordsInRange(ctx context.Context, from, to payroll.Date) ([]TimeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, date, check_in, check_out, created_at
		FROM time_records
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, check_in ASC`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TimeRecord
	for rows.Next() {
		tr, err := scanTimeRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, tr)
	}
	return records, rows.Err()
}

func scanTimeRecord(rows *sql.Rows) (TimeRecord, error) {
	var tr TimeRecord
	var date, checkIn, createdAt string
	var checkOut sql.NullString

	if err := rows.Scan(&tr.ID, &tr.EmployeeID, &date, &checkIn, &checkOut, &createdAt); err != nil {
		return tr, err
	}

	var err error
	tr.Date, err = payroll.ParseDate(date)
	if err != nil {
		return tr, fmt.Errorf("corrupt date for time record %s: %w", tr.ID, err)
	}
	tr.CheckIn, _ = time.Parse(time.RFC3339, checkIn)
	if checkOut.Valid {
		t, _ := time.Parse(time.RFC3339, checkOut.String)
		tr.CheckOut = &t
	}
	tr.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return tr, nil
}

// =============================================================================
// PAY PERIODS
// =============================================================================

// PayPeriod is a stored pay period.
type PayPeriod struct {
	ID          string
	StartDate   payroll.Date
	EndDate     payroll.Date
	SalaryMonth string
	CreatedAt   time.Time
}

// Period converts to the core's range type.
func (p PayPeriod) Period() payroll.Period {
	return payroll.NewPeriod(p.StartDate, p.EndDate)
}

// SavePayPeriod inserts or updates a pay period.
func (s *Store) SavePayPeriod(ctx context.Context, p PayPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO pay_periods (id, start_date, end_date, salary_month, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			salary_month = excluded.salary_month
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.StartDate.String(), p.EndDate.String(), p.SalaryMonth,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetPayPeriod retrieves a pay period by ID. Returns (nil, nil) when absent.
func (s *Store) GetPayPeriod(ctx context.Context, id string) (*PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, start_date, end_date, salary_month, created_at FROM pay_periods WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	p, err := scanPayPeriod(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPayPeriods returns all pay periods, most recent first.
func (s *Store) ListPayPeriods(ctx context.Context) ([]PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, start_date, end_date, salary_month, created_at FROM pay_periods ORDER BY start_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []PayPeriod
	for rows.Next() {
		p, err := scanPayPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func scanPayPeriod(rows *sql.Rows) (PayPeriod, error) {
	var p PayPeriod
	var start, end, createdAt string

	if err := rows.Scan(&p.ID, &start, &end, &p.SalaryMonth, &createdAt); err != nil {
		return p, err
	}

	var err error
	p.StartDate, err = payroll.ParseDate(start)
	if err != nil {
		return p, fmt.Errorf("corrupt start_date for pay period %s: %w", p.ID, err)
	}
	p.EndDate, err = payroll.ParseDate(end)
	if err != nil {
		return p, fmt.Errorf("corrupt end_date for pay period %s: %w", p.ID, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return p, nil
}

// DeletePayPeriod removes a pay period.
func (s *Store) DeletePayPeriod(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM pay_periods WHERE id = ?", id)
	return err
}

// =============================================================================
// DAY LOCKS
// =============================================================================

// SetDayLock upserts the lock flag for a day.
func (s *Store) SetDayLock(ctx context.Context, day payroll.Date, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO day_locks (date, locked) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET locked = excluded.locked`,
		day.String(), locked)
	return err
}

// IsDayLocked reports whether a day's planning is frozen.
func (s *Store) IsDayLocked(ctx context.Context, day payroll.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var locked bool
	err := s.db.QueryRowContext(ctx,
		"SELECT locked FROM day_locks WHERE date = ?", day.String()).Scan(&locked)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return locked, err
}

// ListLockedDaysInRange returns the locked days with date in [from, to].
func (s *Store) ListLockedDaysInRange(ctx context.Context, from, to payroll.Date) ([]payroll.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT date FROM day_locks WHERE locked AND date >= ? AND date <= ? ORDER BY date",
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []payroll.Date
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		d, err := payroll.ParseDate(text)
		if err != nil {
			return nil, fmt.Errorf("corrupt day_locks date: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// =============================================================================
// USERS
// =============================================================================

// User is a dashboard account.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
}

// SaveUser inserts or updates a user.
func (s *Store) SaveUser(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO users (id, username, password_hash, name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			password_hash = excluded.password_hash,
			name = excluded.name,
			role = excluded.role
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Username, u.PasswordHash, u.Name, u.Role,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetUserByUsername retrieves a user. Returns (nil, nil) when absent.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u User
	var name sql.NullString
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, name, role, created_at FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &name, &u.Role, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.Name = name.String
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

// CountUsers returns the number of accounts; used to seed the first admin.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
