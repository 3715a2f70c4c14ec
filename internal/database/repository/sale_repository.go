package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/saleswise/backend-go/internal/database/models"
)

// SaleFilter narrows a sale listing. Date takes precedence over the range.
type SaleFilter struct {
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time
}

// SaleRepository defines the interface for sale data operations.
// Writes that touch sale_employees run in a single transaction.
type SaleRepository interface {
	Create(sale *models.Sale, employeeIDs []uint) error
	FindByID(id uint) (*models.Sale, error)
	List(filter SaleFilter) ([]models.Sale, error)
	ListBetween(start, end time.Time) ([]models.Sale, error)
	Update(sale *models.Sale, employeeIDs []uint) error
	Delete(id uint) error
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository instance
func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(sale *models.Sale, employeeIDs []uint) error {
	employeeIDs = UniqueIDs(employeeIDs)

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureEmployeesExist(tx, employeeIDs); err != nil {
			return err
		}

		if err := tx.Omit("SaleEmployees").Create(sale).Error; err != nil {
			return err
		}

		return linkEmployees(tx, sale.ID, employeeIDs)
	})
}

func (r *saleRepository) FindByID(id uint) (*models.Sale, error) {
	var sale models.Sale
	err := r.withEmployees(r.db).First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(filter SaleFilter) ([]models.Sale, error) {
	query := r.withEmployees(r.db)

	switch {
	case filter.Date != nil:
		query = query.Where("date = ?", *filter.Date)
	default:
		if filter.StartDate != nil {
			query = query.Where("date >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			query = query.Where("date <= ?", *filter.EndDate)
		}
	}

	sales := []models.Sale{}
	err := query.Order("date DESC").Order("id DESC").Find(&sales).Error
	return sales, err
}

// ListBetween returns the sales of an inclusive date range in insertion order
func (r *saleRepository) ListBetween(start, end time.Time) ([]models.Sale, error) {
	sales := []models.Sale{}
	err := r.withEmployees(r.db).
		Where("date >= ? AND date <= ?", start, end).
		Order("id ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepository) Update(sale *models.Sale, employeeIDs []uint) error {
	employeeIDs = UniqueIDs(employeeIDs)

	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Sale
		if err := tx.First(&existing, sale.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}

		if err := ensureEmployeesExist(tx, employeeIDs); err != nil {
			return err
		}

		err := tx.Model(&existing).Updates(map[string]interface{}{
			"date":         sale.Date,
			"shift":        sale.Shift,
			"sales_amount": sale.SalesAmount,
			"updated_at":   time.Now(),
		}).Error
		if err != nil {
			return err
		}

		return reconcileEmployees(tx, sale.ID, employeeIDs)
	})
}

func (r *saleRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleEmployee{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Sale{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSaleNotFound
		}
		return nil
	})
}

func (r *saleRepository) withEmployees(db *gorm.DB) *gorm.DB {
	return db.Preload("SaleEmployees").Preload("SaleEmployees.Employee")
}

// ensureEmployeesExist fails with ErrEmployeeNotFound unless every id is a stored employee
func ensureEmployeesExist(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Employee{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrEmployeeNotFound
	}
	return nil
}

func linkEmployees(tx *gorm.DB, saleID uint, employeeIDs []uint) error {
	if len(employeeIDs) == 0 {
		return nil
	}

	links := make([]models.SaleEmployee, 0, len(employeeIDs))
	for _, employeeID := range employeeIDs {
		links = append(links, models.SaleEmployee{SaleID: saleID, EmployeeID: employeeID})
	}
	return tx.Omit("Employee").Create(&links).Error
}

// reconcileEmployees makes the sale's join rows equal to employeeIDs,
// touching only the rows that differ.
func reconcileEmployees(tx *gorm.DB, saleID uint, employeeIDs []uint) error {
	var current []models.SaleEmployee
	if err := tx.Where("sale_id = ?", saleID).Find(&current).Error; err != nil {
		return err
	}

	wanted := make(map[uint]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		wanted[id] = true
	}

	linked := make(map[uint]bool, len(current))
	var stale []uint
	for _, link := range current {
		linked[link.EmployeeID] = true
		if !wanted[link.EmployeeID] {
			stale = append(stale, link.EmployeeID)
		}
	}

	if len(stale) > 0 {
		err := tx.Where("sale_id = ? AND employee_id IN ?", saleID, stale).
			Delete(&models.SaleEmployee{}).Error
		if err != nil {
			return err
		}
	}

	var missing []uint
	for _, id := range employeeIDs {
		if !linked[id] {
			missing = append(missing, id)
		}
	}

	return linkEmployees(tx, saleID, missing)
}

// UniqueIDs drops repeated ids, keeping first-seen order
func UniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}

// Repository errors
var (
	ErrSaleNotFound = errors.New("sale not found")
)
