package config

import "strings"

// Supported values of DB_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ShiftTotalsMode controls how the daily report fills its per-shift buckets
type ShiftTotalsMode string

const (
	// ShiftTotalsLast keeps only the amount of the last sale seen in each shift.
	// This matches the reports produced by earlier versions of SalesWise.
	ShiftTotalsLast ShiftTotalsMode = "last"
	// ShiftTotalsSum accumulates every sale of the shift.
	ShiftTotalsSum ShiftTotalsMode = "sum"
)

// ParseShiftTotalsMode maps an env value to a mode, defaulting to ShiftTotalsLast
func ParseShiftTotalsMode(value string) ShiftTotalsMode {
	switch ShiftTotalsMode(strings.ToLower(strings.TrimSpace(value))) {
	case ShiftTotalsSum:
		return ShiftTotalsSum
	default:
		return ShiftTotalsLast
	}
}

// Accumulates reports whether shift buckets should be summed
func (m ShiftTotalsMode) Accumulates() bool {
	return m == ShiftTotalsSum
}
