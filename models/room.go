package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room operational statuses, driven as a side effect of booking transitions.
const (
	RoomStatusAvailable   = "Available"
	RoomStatusOccupied    = "Occupied"
	RoomStatusDirty       = "Dirty"
	RoomStatusMaintenance = "Maintenance"
)

type Room struct {
	gorm.Model

	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`
	Floor      string `json:"floor" gorm:"type:varchar(10)"`

	RoomTypeID     *uint `json:"roomTypeId,omitempty" gorm:"column:room_type_id"`
	RoomCategoryID *uint `json:"roomCategoryId,omitempty" gorm:"column:room_category_id"`

	Status       string  `json:"status" gorm:"size:32;default:Available"`
	Price        float64 `json:"price"`
	MaxOccupancy int     `json:"maxOccupancy" gorm:"column:max_occupancy"`
	Description  string  `json:"description" gorm:"type:text"`

	Images datatypes.JSON `json:"images,omitempty" gorm:"column:images"`

	// Back-reference to the booking currently holding the room, updated in
	// the same transaction as the booking status so occupancy never has to
	// be derived by query.
	CurrentBookingID *uint `json:"currentBookingId,omitempty" gorm:"column:current_booking_id"`

	RoomType     RoomType     `gorm:"foreignKey:RoomTypeID" json:"roomType,omitempty"`
	RoomCategory RoomCategory `gorm:"foreignKey:RoomCategoryID" json:"roomCategory,omitempty"`
}
