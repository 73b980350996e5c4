package models

import (
	"time"

	"gorm.io/gorm"
)

// Amenity and Service are priced extras attached to a booking. Their CRUD
// surface is plain reference data; the booking core only reads them for
// population and price display.

type Amenity struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100" json:"name"`
	Price       float64        `json:"price"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type Service struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100" json:"name"`
	Price       float64        `json:"price"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
