package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FullName  string         `gorm:"size:255" json:"full_name"`
	Username  string         `gorm:"uniqueIndex;size:150" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:255" json:"email"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash, never returned in JSON
	Phone     string         `gorm:"size:32" json:"phone,omitempty"`
	IsAdmin   bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// GuestProfile is a walk-in customer created by reception when a booking is
// made on behalf of someone without an account. It carries no credentials.
type GuestProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Reference string    `gorm:"column:reference;size:64;uniqueIndex" json:"reference"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
