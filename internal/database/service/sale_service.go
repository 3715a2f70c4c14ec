package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saleswise/backend-go/internal/database"
	"github.com/saleswise/backend-go/internal/database/models"
	"github.com/saleswise/backend-go/internal/database/repository"
)

// SaleInput carries the writable fields of a sale
type SaleInput struct {
	Date        time.Time
	Shift       models.Shift
	SalesAmount decimal.Decimal
	EmployeeIDs []uint
}

// SaleService defines the interface for sale management
type SaleService interface {
	Create(ctx context.Context, input SaleInput) (*models.Sale, error)
	Get(id uint) (*models.Sale, error)
	List(filter repository.SaleFilter) ([]models.Sale, error)
	Update(ctx context.Context, id uint, input SaleInput) (*models.Sale, error)
	Delete(ctx context.Context, id uint) error
}

type saleService struct {
	saleRepo repository.SaleRepository
	cache    database.ReportCache
	logger   *slog.Logger
}

// NewSaleService creates a new sale service instance
func NewSaleService(saleRepo repository.SaleRepository, cache database.ReportCache, logger *slog.Logger) SaleService {
	return &saleService{
		saleRepo: saleRepo,
		cache:    cache,
		logger:   logger,
	}
}

// maxSalesAmount is the first value a NUMERIC(10,2) column cannot hold
var maxSalesAmount = decimal.New(1, 8)

func validateSaleInput(input *SaleInput) error {
	if input.Date.IsZero() {
		return ErrInvalidDate
	}
	if !input.Shift.IsValid() {
		return ErrInvalidShift
	}
	if input.SalesAmount.IsNegative() {
		return ErrNegativeAmount
	}
	input.Date = models.TruncateToDate(input.Date)
	input.SalesAmount = input.SalesAmount.Round(2)
	if input.SalesAmount.GreaterThanOrEqual(maxSalesAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

func (s *saleService) Create(ctx context.Context, input SaleInput) (*models.Sale, error) {
	if err := validateSaleInput(&input); err != nil {
		return nil, err
	}

	sale := &models.Sale{
		Date:        input.Date,
		Shift:       input.Shift,
		SalesAmount: input.SalesAmount,
	}

	if err := s.saleRepo.Create(sale, input.EmployeeIDs); err != nil {
		if !errors.Is(err, repository.ErrEmployeeNotFound) {
			s.logger.Error("❌ [SaleService] Failed to create sale", "error", err)
		}
		return nil, err
	}

	s.invalidate(ctx, sale.Date)
	s.logger.Info("✅ [SaleService] Sale created",
		"sale_id", sale.ID,
		"date", sale.Date.Format(models.DateLayout),
		"shift", sale.Shift,
		"employees", len(input.EmployeeIDs),
	)

	return s.saleRepo.FindByID(sale.ID)
}

func (s *saleService) Get(id uint) (*models.Sale, error) {
	return s.saleRepo.FindByID(id)
}

func (s *saleService) List(filter repository.SaleFilter) ([]models.Sale, error) {
	return s.saleRepo.List(filter)
}

func (s *saleService) Update(ctx context.Context, id uint, input SaleInput) (*models.Sale, error) {
	if err := validateSaleInput(&input); err != nil {
		return nil, err
	}

	previous, err := s.saleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	sale := &models.Sale{
		ID:          id,
		Date:        input.Date,
		Shift:       input.Shift,
		SalesAmount: input.SalesAmount,
	}

	if err := s.saleRepo.Update(sale, input.EmployeeIDs); err != nil {
		if !errors.Is(err, repository.ErrEmployeeNotFound) && !errors.Is(err, repository.ErrSaleNotFound) {
			s.logger.Error("❌ [SaleService] Failed to update sale", "sale_id", id, "error", err)
		}
		return nil, err
	}

	s.invalidate(ctx, previous.Date, sale.Date)
	s.logger.Info("✅ [SaleService] Sale updated", "sale_id", id)

	return s.saleRepo.FindByID(id)
}

func (s *saleService) Delete(ctx context.Context, id uint) error {
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		return err
	}

	if err := s.saleRepo.Delete(id); err != nil {
		if !errors.Is(err, repository.ErrSaleNotFound) {
			s.logger.Error("❌ [SaleService] Failed to delete sale", "sale_id", id, "error", err)
		}
		return err
	}

	s.invalidate(ctx, sale.Date)
	s.logger.Info("🗑️ [SaleService] Sale deleted", "sale_id", id)
	return nil
}

// invalidate drops cached reports for the given dates; failures are logged, not returned
func (s *saleService) invalidate(ctx context.Context, dates ...time.Time) {
	for _, date := range dates {
		if err := s.cache.InvalidateDate(ctx, date); err != nil {
			s.logger.Warn("⚠️ [SaleService] Failed to invalidate cached reports",
				"date", date.Format(models.DateLayout),
				"error", err,
			)
		}
	}
}

// Service errors
var (
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidShift   = errors.New("invalid shift")
	ErrNegativeAmount = errors.New("sales amount must not be negative")
	ErrAmountTooLarge = errors.New("sales amount must be below 100000000")
)
