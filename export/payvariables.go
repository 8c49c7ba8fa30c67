/*
Package export renders pay-variable reports for download.

PURPOSE:
  Builds the per-employee pay-variable report for a pay period and
  serializes it for the payroll provider: CSV (the format accounting
  ingests) or XLSX. All numbers come from the payroll core — this package
  formats, it never computes.

CSV LAYOUT (one row per employee):
  Nom, Prénom, Base Contrat, Heures Pointées, then one column per week of
  the period labelled "[dd/MM-dd/MM]" containing
  "Théorique: Xh, Réel: Yh, Supp: a/b/c (Standard|Avenant)".

SEE ALSO:
  - payroll/calculator.go: The numbers behind every cell
*/
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// REPORT MODEL
// =============================================================================

// Employee is one employee's loaded records, ready for calculation.
type Employee struct {
	ID              string
	Matricule       int
	FirstName       string
	LastName        string
	BaseWeeklyHours payroll.Hours
	Amendments      []payroll.Amendment
	Shifts          []payroll.Shift
}

// Line pairs an employee with their computed pay variables.
type Line struct {
	Employee Employee
	Result   payroll.PayResult
}

// Report is the full pay-variable report for one pay period.
type Report struct {
	Period      payroll.Period
	SalaryMonth string
	Weeks       []payroll.WeekBucket // week ranges only, no shifts
	Lines       []Line
}

// BuildReport runs the calculator for every employee over the period.
// Employees without a contract are the caller's concern (the original
// system skips them before loading).
func BuildReport(period payroll.Period, salaryMonth string, employees []Employee) (*Report, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		Period:      period,
		SalaryMonth: salaryMonth,
		Weeks:       payroll.GroupByWeek(nil, period),
	}

	for _, emp := range employees {
		result, err := payroll.Calculate(payroll.CalculationInput{
			BaseWeeklyHours: emp.BaseWeeklyHours,
			Amendments:      emp.Amendments,
			Shifts:          emp.Shifts,
			Period:          period,
		})
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", emp.ID, err)
		}
		report.Lines = append(report.Lines, Line{Employee: emp, Result: result})
	}

	return report, nil
}

// =============================================================================
// CELL FORMATTING
// =============================================================================

func weekHeader(w payroll.WeekBucket) string {
	return fmt.Sprintf("[%s-%s]", w.WeekStart.Format("02/01"), w.WeekEnd.Format("02/01"))
}

func weekCell(w payroll.WeekDetail) string {
	label := "Standard"
	if w.ThresholdSource == payroll.ThresholdAmendment {
		label = "Avenant"
	}
	return fmt.Sprintf("Théorique: %sh, Réel: %sh, Supp: %s/%s/%s (%s)",
		w.Threshold.Value.StringFixed(1),
		w.ActualHours.Value.StringFixed(1),
		w.Bands.Rate10.Value.StringFixed(1),
		w.Bands.Rate25.Value.StringFixed(1),
		w.Bands.Rate50.Value.StringFixed(1),
		label,
	)
}

func (r *Report) header() []string {
	header := []string{"Nom", "Prénom", "Base Contrat", "Heures Pointées"}
	for _, w := range r.Weeks {
		header = append(header, weekHeader(w))
	}
	return header
}

func (r *Report) row(line Line) []string {
	row := []string{
		line.Employee.LastName,
		line.Employee.FirstName,
		line.Result.BaseMonthlyHours.Value.StringFixed(2),
		line.Result.PointedHours.Value.StringFixed(2),
	}
	for _, w := range line.Result.Weeks {
		row = append(row, weekCell(w))
	}
	return row
}

// =============================================================================
// CSV
// =============================================================================

// CSV serializes the report. Week cells contain commas; the writer handles
// the quoting.
func (r *Report) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(r.header()); err != nil {
		return nil, err
	}
	for _, line := range r.Lines {
		if err := w.Write(r.row(line)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// XLSX
// =============================================================================

const sheetName = "Variables de paie"

// XLSX serializes the report as a single-sheet workbook with the same
// columns as the CSV.
func (r *Report) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	rows := [][]string{r.header()}
	for _, line := range r.Lines {
		rows = append(rows, r.row(line))
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
