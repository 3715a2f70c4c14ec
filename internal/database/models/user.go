package models

import (
	"time"
)

// User represents an account that can call the API
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	IsStaff   bool      `gorm:"not null;default:false" json:"is_staff"`
	AuthToken *string   `gorm:"uniqueIndex;size:64" json:"-"` // id of the only token currently accepted
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}
