package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking statuses. Active statuses (the ones that block a new booking on the
// same room) are pending, confirmed and checked-in.
const (
	BookingStatusPending    = "pending"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusCheckedIn  = "checked-in"
	BookingStatusCheckedOut = "checked-out"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
)

const (
	BookingTypeHourly    = "hourly"
	BookingTypeOvernight = "overnight"
	BookingTypeDaily     = "daily"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// ActiveBookingStatuses is used by the availability conflict query.
var ActiveBookingStatuses = []string{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCheckedIn,
}

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Human readable reference, generated once at creation and never changed.
	Code string `gorm:"column:code;size:64;uniqueIndex" json:"code"`

	// Owner is either a registered user or a walk-in guest profile,
	// never both.
	UserID  *uint `gorm:"index;column:user_id" json:"user_id,omitempty"`
	GuestID *uint `gorm:"index;column:guest_id" json:"guest_id,omitempty"`

	RoomID uint `gorm:"index;column:room_id" json:"room_id"`

	BookingType  string     `gorm:"column:booking_type;size:32" json:"booking_type"`
	CheckInDate  *time.Time `gorm:"column:check_in_date" json:"check_in_date,omitempty"`
	CheckOutDate *time.Time `gorm:"column:check_out_date" json:"check_out_date,omitempty"`
	CheckInTime  string     `gorm:"column:check_in_time;size:8" json:"check_in_time,omitempty"`
	CheckOutTime string     `gorm:"column:check_out_time;size:8" json:"check_out_time,omitempty"`
	Hours        int        `gorm:"column:hours;default:0" json:"hours,omitempty"`

	Adults   int `gorm:"column:adults;default:1" json:"adults"`
	Children int `gorm:"column:children;default:0" json:"children"`

	RoomPrice      float64 `gorm:"column:room_price" json:"room_price"`
	AmenitiesPrice float64 `gorm:"column:amenities_price" json:"amenities_price"`
	ServicesPrice  float64 `gorm:"column:services_price" json:"services_price"`
	TotalPrice     float64 `gorm:"column:total_price" json:"total_price"`

	PaymentMethod   string     `gorm:"column:payment_method;size:16" json:"payment_method"`
	PaidAmount      float64    `gorm:"column:paid_amount;default:0" json:"paid_amount"`
	RemainingAmount float64    `gorm:"column:remaining_amount;default:0" json:"remaining_amount"`
	PaymentStatus   string     `gorm:"column:payment_status;size:16;default:pending" json:"payment_status"`
	PaidAt          *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`

	Status string `gorm:"column:status;size:32;default:pending" json:"status"`

	Room      Room          `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
	User      *User         `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Guest     *GuestProfile `gorm:"foreignKey:GuestID;references:ID" json:"guest,omitempty"`
	Amenities []Amenity     `gorm:"many2many:booking_amenities" json:"amenities"`
	Services  []Service     `gorm:"many2many:booking_services" json:"services"`
}

// IsActive reports whether the booking still blocks its room for
// overlapping date ranges.
func (b *Booking) IsActive() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn:
		return true
	}
	return false
}
