package models

import (
	"time"

	"gorm.io/gorm"
)

type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TypeName    string `gorm:"uniqueIndex;size:100" json:"typeName"`
	Description string `json:"description"`
	MaxGuests   uint   `json:"max_guests"`

	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
