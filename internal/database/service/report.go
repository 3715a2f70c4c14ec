package service

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saleswise/backend-go/internal/config"
	"github.com/saleswise/backend-go/internal/database/models"
)

// DailyReport summarises the sales of a single day
type DailyReport struct {
	Date        string                           `json:"date"`
	TotalSales  decimal.Decimal                  `json:"total_sales"`
	ShiftTotals map[models.Shift]decimal.Decimal `json:"shift_totals"`
	TopEmployee *EmployeeTotal                   `json:"top_employee"`
	BestShift   *models.Shift                    `json:"best_shift"`
}

// EmployeeTotal is an employee with the sum of the sales they worked
type EmployeeTotal struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// EmployeeStat is an employee's performance over a date range
type EmployeeStat struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	DaysWorked   int             `json:"days_worked"`
	AverageSales decimal.Decimal `json:"average_sales"`
}

// DayTotal is the sum of one calendar day's sales
type DayTotal struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// MonthlyReport summarises the sales of a calendar month
type MonthlyReport struct {
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TopEmployees   []EmployeeStat  `json:"top_employees"`
	DailyBreakdown []DayTotal      `json:"daily_breakdown"`
}

// MonthRange returns the first and last calendar day of month/year
func MonthRange(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, ErrInvalidYear
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	var next time.Time
	if month == 12 {
		next = time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	} else {
		next = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	}

	return start, next.AddDate(0, 0, -1), nil
}

// BuildDailyReport aggregates the sales of one day, given in insertion order.
// With ShiftTotalsLast each shift bucket holds the amount of the last sale of that shift.
func BuildDailyReport(date time.Time, sales []models.Sale, mode config.ShiftTotalsMode) *DailyReport {
	report := &DailyReport{
		Date:        date.Format(models.DateLayout),
		TotalSales:  decimal.Zero,
		ShiftTotals: make(map[models.Shift]decimal.Decimal, len(models.Shifts)),
	}
	for _, shift := range models.Shifts {
		report.ShiftTotals[shift] = decimal.Zero
	}

	employeeTotals := make(map[uint]*EmployeeTotal)
	for i := range sales {
		sale := &sales[i]
		report.TotalSales = report.TotalSales.Add(sale.SalesAmount)

		if mode.Accumulates() {
			report.ShiftTotals[sale.Shift] = report.ShiftTotals[sale.Shift].Add(sale.SalesAmount)
		} else {
			report.ShiftTotals[sale.Shift] = sale.SalesAmount
		}

		for _, employee := range sale.Employees() {
			total, ok := employeeTotals[employee.ID]
			if !ok {
				total = &EmployeeTotal{ID: employee.ID, Name: employee.Name, TotalSales: decimal.Zero}
				employeeTotals[employee.ID] = total
			}
			total.TotalSales = total.TotalSales.Add(sale.SalesAmount)
		}
	}

	if !report.TotalSales.IsZero() {
		report.BestShift = bestShift(report.ShiftTotals)
	}
	report.TopEmployee = topEmployee(employeeTotals)

	return report
}

func bestShift(totals map[models.Shift]decimal.Decimal) *models.Shift {
	var best *models.Shift
	for _, shift := range models.Shifts {
		if best == nil || totals[shift].GreaterThan(totals[*best]) {
			s := shift
			best = &s
		}
	}
	return best
}

func topEmployee(totals map[uint]*EmployeeTotal) *EmployeeTotal {
	var top *EmployeeTotal
	for _, total := range totals {
		if top == nil ||
			total.TotalSales.GreaterThan(top.TotalSales) ||
			(total.TotalSales.Equal(top.TotalSales) && total.ID < top.ID) {
			top = total
		}
	}
	return top
}

// BuildEmployeeStats computes per-employee totals for active employees with nonzero sales,
// sorted by total descending.
func BuildEmployeeStats(sales []models.Sale) []EmployeeStat {
	type accumulator struct {
		employee models.Employee
		total    decimal.Decimal
		days     map[string]bool
	}

	byEmployee := make(map[uint]*accumulator)
	for i := range sales {
		sale := &sales[i]
		day := sale.Date.Format(models.DateLayout)
		for _, employee := range sale.Employees() {
			if !employee.Active {
				continue
			}
			acc, ok := byEmployee[employee.ID]
			if !ok {
				acc = &accumulator{employee: employee, total: decimal.Zero, days: make(map[string]bool)}
				byEmployee[employee.ID] = acc
			}
			acc.total = acc.total.Add(sale.SalesAmount)
			acc.days[day] = true
		}
	}

	stats := make([]EmployeeStat, 0, len(byEmployee))
	for _, acc := range byEmployee {
		if acc.total.IsZero() {
			continue
		}
		days := len(acc.days)
		stats = append(stats, EmployeeStat{
			ID:           acc.employee.ID,
			Name:         acc.employee.Name,
			TotalSales:   acc.total,
			DaysWorked:   days,
			AverageSales: acc.total.Div(decimal.NewFromInt(int64(days))).Round(2),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].TotalSales.Equal(stats[j].TotalSales) {
			return stats[i].TotalSales.GreaterThan(stats[j].TotalSales)
		}
		if stats[i].Name != stats[j].Name {
			return stats[i].Name < stats[j].Name
		}
		return stats[i].ID < stats[j].ID
	})

	return stats
}

// BuildDailyBreakdown sums sales per calendar day, skipping days that total zero
func BuildDailyBreakdown(sales []models.Sale) []DayTotal {
	totals := make(map[string]decimal.Decimal)
	for i := range sales {
		day := sales[i].Date.Format(models.DateLayout)
		totals[day] = totals[day].Add(sales[i].SalesAmount)
	}

	breakdown := make([]DayTotal, 0, len(totals))
	for day, total := range totals {
		if total.IsZero() {
			continue
		}
		breakdown = append(breakdown, DayTotal{Date: day, Total: total})
	}

	// YYYY-MM-DD sorts chronologically as a string
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Date < breakdown[j].Date
	})

	return breakdown
}

// BuildMonthlyReport aggregates the sales between start and end of one month
func BuildMonthlyReport(month, year int, start, end time.Time, sales []models.Sale) *MonthlyReport {
	total := decimal.Zero
	for i := range sales {
		total = total.Add(sales[i].SalesAmount)
	}

	return &MonthlyReport{
		Month:          month,
		Year:           year,
		StartDate:      start.Format(models.DateLayout),
		EndDate:        end.Format(models.DateLayout),
		TotalSales:     total,
		TopEmployees:   BuildEmployeeStats(sales),
		DailyBreakdown: BuildDailyBreakdown(sales),
	}
}

// Service errors
var (
	ErrInvalidMonth     = errors.New("month must be between 1 and 12")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidDateRange = errors.New("start_date must not be after end_date")
)
