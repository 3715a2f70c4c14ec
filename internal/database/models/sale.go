package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Shift is the work period a sale is attributed to
type Shift string

const (
	ShiftMorning   Shift = "matin"
	ShiftAfternoon Shift = "après-midi"
	ShiftNight     Shift = "nuit"
)

// Shifts lists every shift in day order
var Shifts = []Shift{ShiftMorning, ShiftAfternoon, ShiftNight}

// IsValid reports whether s is one of the known shifts
func (s Shift) IsValid() bool {
	for _, shift := range Shifts {
		if s == shift {
			return true
		}
	}
	return false
}

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// TruncateToDate drops the clock part of t, keeping its calendar day in UTC
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Sale is the takings of one shift on one day
type Sale struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Shift       Shift           `gorm:"type:varchar(20);not null;index" json:"shift"`
	SalesAmount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"sales_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relationships
	SaleEmployees []SaleEmployee `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name
func (Sale) TableName() string {
	return "sales"
}

// Employees returns the employees assigned to the sale, ordered by id.
// SaleEmployees must have been preloaded together with their Employee.
func (s *Sale) Employees() []Employee {
	employees := make([]Employee, 0, len(s.SaleEmployees))
	for _, link := range s.SaleEmployees {
		employees = append(employees, link.Employee)
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].ID < employees[j].ID
	})
	return employees
}

// EmployeeIDs returns the ids of the employees assigned to the sale
func (s *Sale) EmployeeIDs() []uint {
	ids := make([]uint, 0, len(s.SaleEmployees))
	for _, link := range s.SaleEmployees {
		ids = append(ids, link.EmployeeID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SaleEmployee links a sale to one of the employees who worked it
type SaleEmployee struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	SaleID     uint      `gorm:"not null;uniqueIndex:idx_sale_employee" json:"sale_id"`
	EmployeeID uint      `gorm:"not null;uniqueIndex:idx_sale_employee;index" json:"employee_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Employee Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// TableName overrides the table name
func (SaleEmployee) TableName() string {
	return "sale_employees"
}
