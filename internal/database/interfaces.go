package database

import (
	"context"
	"time"
)

// ReportCache stores rendered reports so repeated requests skip aggregation
type ReportCache interface {
	// GetReport decodes the report stored under key into dest; found is false on a miss
	GetReport(ctx context.Context, key string, dest interface{}) (found bool, err error)
	SetReport(ctx context.Context, key string, report interface{}) error
	// InvalidateDate drops every cached report that covers date
	InvalidateDate(ctx context.Context, date time.Time) error
	// InvalidateAll drops every cached report, used when employee data changes
	InvalidateAll(ctx context.Context) error
	Close() error
}
