package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the monthly spreadsheet
const (
	SheetSummary   = "Summary"
	SheetEmployees = "Employees"
	SheetDaily     = "Daily"
)

// RenderMonthlyReportXLSX lays a monthly report out as an Excel workbook
func RenderMonthlyReportXLSX(report *MonthlyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}

	summary := [][]interface{}{
		{"Month", fmt.Sprintf("%04d-%02d", report.Year, report.Month)},
		{"From", report.StartDate},
		{"To", report.EndDate},
		{"Total sales", report.TotalSales.InexactFloat64()},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}

	employees := [][]interface{}{{"Employee", "Total sales", "Days worked", "Average sales"}}
	for _, stat := range report.TopEmployees {
		employees = append(employees, []interface{}{
			stat.Name,
			stat.TotalSales.InexactFloat64(),
			stat.DaysWorked,
			stat.AverageSales.InexactFloat64(),
		})
	}
	if _, err := f.NewSheet(SheetEmployees); err != nil {
		return nil, err
	}
	if err := writeRows(f, SheetEmployees, employees); err != nil {
		return nil, err
	}

	daily := [][]interface{}{{"Date", "Total"}}
	for _, day := range report.DailyBreakdown {
		daily = append(daily, []interface{}{day.Date, day.Total.InexactFloat64()})
	}
	if _, err := f.NewSheet(SheetDaily); err != nil {
		return nil, err
	}
	if err := writeRows(f, SheetDaily, daily); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}
