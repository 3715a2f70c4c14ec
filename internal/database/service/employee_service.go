package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/saleswise/backend-go/internal/database"
	"github.com/saleswise/backend-go/internal/database/models"
	"github.com/saleswise/backend-go/internal/database/repository"
)

// EmployeeService defines the interface for employee management
type EmployeeService interface {
	List() ([]models.Employee, error)
	Create(name string) (*models.Employee, error)
	Update(ctx context.Context, id uint, name string, active *bool) (*models.Employee, error)
	Deactivate(ctx context.Context, id uint) error
}

type employeeService struct {
	employeeRepo repository.EmployeeRepository
	cache        database.ReportCache
	logger       *slog.Logger
}

// NewEmployeeService creates a new employee service instance
func NewEmployeeService(employeeRepo repository.EmployeeRepository, cache database.ReportCache, logger *slog.Logger) EmployeeService {
	return &employeeService{
		employeeRepo: employeeRepo,
		cache:        cache,
		logger:       logger,
	}
}

func (s *employeeService) List() ([]models.Employee, error) {
	return s.employeeRepo.ListActive()
}

func (s *employeeService) Create(name string) (*models.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidEmployeeName
	}

	employee := &models.Employee{Name: name, Active: true}
	if err := s.employeeRepo.Create(employee); err != nil {
		s.logger.Error("❌ [EmployeeService] Failed to create employee", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [EmployeeService] Employee created", "employee_id", employee.ID)
	return employee, nil
}

func (s *employeeService) Update(ctx context.Context, id uint, name string, active *bool) (*models.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidEmployeeName
	}

	employee, err := s.employeeRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	employee.Name = name
	if active != nil {
		employee.Active = *active
	}

	if err := s.employeeRepo.Update(employee); err != nil {
		s.logger.Error("❌ [EmployeeService] Failed to update employee", "employee_id", id, "error", err)
		return nil, err
	}

	s.invalidateReports(ctx)
	s.logger.Info("✅ [EmployeeService] Employee updated", "employee_id", id, "active", employee.Active)
	return employee, nil
}

// Deactivate hides the employee from listings and statistics; past sales keep referencing it
func (s *employeeService) Deactivate(ctx context.Context, id uint) error {
	employee, err := s.employeeRepo.FindByID(id)
	if err != nil {
		if !errors.Is(err, repository.ErrEmployeeNotFound) {
			s.logger.Error("❌ [EmployeeService] Database error", "error", err)
		}
		return err
	}

	if !employee.Active {
		return nil
	}

	employee.Active = false
	if err := s.employeeRepo.Update(employee); err != nil {
		s.logger.Error("❌ [EmployeeService] Failed to deactivate employee", "employee_id", id, "error", err)
		return err
	}

	s.invalidateReports(ctx)
	s.logger.Info("🚫 [EmployeeService] Employee deactivated", "employee_id", id)
	return nil
}

// invalidateReports drops cached reports, which embed employee names and rankings.
// A cache failure is logged; the write has already been committed.
func (s *employeeService) invalidateReports(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("⚠️ [EmployeeService] Failed to invalidate cached reports", "error", err)
	}
}

// Service errors
var (
	ErrInvalidEmployeeName = errors.New("employee name is required")
)
