package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/saleswise/backend-go/internal/database/models"
)

// EmployeeRepository defines the interface for employee data operations
type EmployeeRepository interface {
	Create(employee *models.Employee) error
	FindByID(id uint) (*models.Employee, error)
	ListActive() ([]models.Employee, error)
	Update(employee *models.Employee) error
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new employee repository instance
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(employee *models.Employee) error {
	return r.db.Create(employee).Error
}

func (r *employeeRepository) FindByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.First(&employee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) ListActive() ([]models.Employee, error) {
	employees := []models.Employee{}
	err := r.db.Where("active = ?", true).
		Order("name ASC").
		Order("id ASC").
		Find(&employees).Error
	return employees, err
}

func (r *employeeRepository) Update(employee *models.Employee) error {
	result := r.db.Save(employee)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// Repository errors
var (
	ErrEmployeeNotFound = errors.New("employee not found")
)
