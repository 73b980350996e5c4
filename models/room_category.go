package models

import (
	"time"

	"gorm.io/gorm"
)

type RoomCategory struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"uniqueIndex;size:100" json:"name"`
	Description string `json:"description"`

	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
