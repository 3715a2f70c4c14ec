package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/saleswise/backend-go/internal/config"
	"github.com/saleswise/backend-go/internal/database"
	"github.com/saleswise/backend-go/internal/database/models"
	"github.com/saleswise/backend-go/internal/database/repository"
)

// ReportService defines the interface for sales reporting
type ReportService interface {
	DailyReport(ctx context.Context, date time.Time) (*DailyReport, error)
	MonthlyReport(ctx context.Context, month, year int) (*MonthlyReport, error)
	EmployeeStats(start, end time.Time) ([]EmployeeStat, error)
	ExportMonthlyReport(ctx context.Context, month, year int) ([]byte, error)
}

type reportService struct {
	saleRepo repository.SaleRepository
	cache    database.ReportCache
	mode     config.ShiftTotalsMode
	logger   *slog.Logger
}

// NewReportService creates a new report service instance
func NewReportService(
	saleRepo repository.SaleRepository,
	cache database.ReportCache,
	cfg *config.Config,
	logger *slog.Logger,
) ReportService {
	return &reportService{
		saleRepo: saleRepo,
		cache:    cache,
		mode:     cfg.ShiftTotalsMode,
		logger:   logger,
	}
}

func (s *reportService) DailyReport(ctx context.Context, date time.Time) (*DailyReport, error) {
	date = models.TruncateToDate(date)
	key := database.DailyReportKey(date)

	var cached DailyReport
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	sales, err := s.saleRepo.ListBetween(date, date)
	if err != nil {
		s.logger.Error("❌ [ReportService] Failed to load sales", "date", date.Format(models.DateLayout), "error", err)
		return nil, err
	}

	report := BuildDailyReport(date, sales, s.mode)
	s.toCache(ctx, key, report)

	s.logger.Debug("📊 [ReportService] Daily report computed",
		"date", report.Date,
		"sales", len(sales),
		"total", report.TotalSales.String(),
	)
	return report, nil
}

func (s *reportService) MonthlyReport(ctx context.Context, month, year int) (*MonthlyReport, error) {
	start, end, err := MonthRange(month, year)
	if err != nil {
		return nil, err
	}
	key := database.MonthlyReportKey(year, time.Month(month))

	var cached MonthlyReport
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	sales, err := s.saleRepo.ListBetween(start, end)
	if err != nil {
		s.logger.Error("❌ [ReportService] Failed to load sales", "month", month, "year", year, "error", err)
		return nil, err
	}

	report := BuildMonthlyReport(month, year, start, end, sales)
	s.toCache(ctx, key, report)

	s.logger.Debug("📊 [ReportService] Monthly report computed",
		"month", month,
		"year", year,
		"sales", len(sales),
		"total", report.TotalSales.String(),
	)
	return report, nil
}

func (s *reportService) EmployeeStats(start, end time.Time) ([]EmployeeStat, error) {
	start, end = models.TruncateToDate(start), models.TruncateToDate(end)
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	sales, err := s.saleRepo.ListBetween(start, end)
	if err != nil {
		s.logger.Error("❌ [ReportService] Failed to load sales for stats", "error", err)
		return nil, err
	}

	return BuildEmployeeStats(sales), nil
}

func (s *reportService) ExportMonthlyReport(ctx context.Context, month, year int) ([]byte, error) {
	report, err := s.MonthlyReport(ctx, month, year)
	if err != nil {
		return nil, err
	}

	data, err := RenderMonthlyReportXLSX(report)
	if err != nil {
		s.logger.Error("❌ [ReportService] Failed to render spreadsheet", "month", month, "year", year, "error", err)
		return nil, err
	}
	return data, nil
}

func (s *reportService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.GetReport(ctx, key, dest)
	if err != nil {
		s.logger.Warn("⚠️ [ReportService] Report cache unavailable", "key", key, "error", err)
		return false
	}
	return found
}

func (s *reportService) toCache(ctx context.Context, key string, report interface{}) {
	if err := s.cache.SetReport(ctx, key, report); err != nil {
		s.logger.Warn("⚠️ [ReportService] Failed to cache report", "key", key, "error", err)
	}
}
