package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/saleswise/backend-go/internal/database/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	FindByAuthToken(token string) (*models.User, error)
	Update(user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	err := r.db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUser
	}
	return err
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	return r.findOne("email = ?", email)
}

func (r *userRepository) FindByID(id uint) (*models.User, error) {
	return r.findOne("id = ?", id)
}

func (r *userRepository) FindByAuthToken(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	return r.findOne("auth_token = ?", token)
}

func (r *userRepository) Update(user *models.User) error {
	err := r.db.Save(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUser
	}
	return err
}

func (r *userRepository) findOne(query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Repository errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
)
