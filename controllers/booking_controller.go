// controllers/booking_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"hotel-reservation/middleware"
	"hotel-reservation/services"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateBookingRequest struct {
	RoomID       uint   `json:"room_id" binding:"required"`
	BookingType  string `json:"booking_type" binding:"required,oneof=hourly overnight daily"`
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`
	Hours        int    `json:"hours"`

	Adults   int `json:"adults"`
	Children int `json:"children"`

	AmenityIDs []uint `json:"amenity_ids"`
	ServiceIDs []uint `json:"service_ids"`

	RoomPrice      float64 `json:"room_price"`
	AmenitiesPrice float64 `json:"amenities_price"`
	ServicesPrice  float64 `json:"services_price"`
	TotalPrice     float64 `json:"total_price"`

	PaymentMethod string `json:"payment_method" binding:"required,oneof=cash online"`
}

// GuestBookingRequest is the public walk-in payload: reception sends either
// an existing user_id or the guest info bundle. Payment method is forced to
// cash by the service regardless of what the client sends.
type GuestBookingRequest struct {
	UserID     *uint  `json:"user_id"`
	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`
	GuestEmail string `json:"guest_email"`

	RoomID       uint   `json:"room_id" binding:"required"`
	BookingType  string `json:"booking_type" binding:"required,oneof=hourly overnight daily"`
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`
	Hours        int    `json:"hours"`

	Adults   int `json:"adults"`
	Children int `json:"children"`

	AmenityIDs []uint `json:"amenity_ids"`
	ServiceIDs []uint `json:"service_ids"`

	RoomPrice      float64 `json:"room_price"`
	AmenitiesPrice float64 `json:"amenities_price"`
	ServicesPrice  float64 `json:"services_price"`
	TotalPrice     float64 `json:"total_price"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PaymentRequest struct {
	// Zero or absent means "pay the full remaining balance".
	Amount float64 `json:"amount"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

func bookingIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "error.invalidBookingId", "message": "booking id must be a positive number"},
		})
		return 0, false
	}
	return uint(id), true
}

// respondBookingError maps service sentinels onto HTTP statuses; everything
// else is an internal error.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "error.bookingNotFound", "message": "booking not found"}})
	case errors.Is(err, services.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "error.roomNotFound", "message": "room not found"}})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "error.userNotFound", "message": "user not found"}})
	case errors.Is(err, services.ErrRoomUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{"code": "error.roomUnavailable", "message": "room is already booked for the requested dates"}})
	case errors.Is(err, services.ErrCannotCancel):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{"code": "error.cannotCancel", "message": "booking can no longer be cancelled"}})
	case errors.Is(err, services.ErrNotOnlinePayment):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{"code": "error.notOnlinePayment", "message": "booking does not use online payment"}})
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{"code": "error.invalidStatus", "message": "invalid status transition"}})
	case errors.Is(err, services.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "error.invalidAmount", "message": "payment amount must not be negative"}})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"code": "error.forbidden", "message": "you are not allowed to access this booking"}})
	case strings.Contains(err.Error(), "validation"):
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "error.validation", "message": err.Error()}})
	default:
		log.Printf("booking operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "error.internal", "message": "internal error"}})
	}
}

func toCreateInput(p CreateBookingRequest) services.CreateBookingInput {
	return services.CreateBookingInput{
		RoomID:         p.RoomID,
		BookingType:    p.BookingType,
		CheckInDate:    p.CheckInDate,
		CheckOutDate:   p.CheckOutDate,
		CheckInTime:    p.CheckInTime,
		CheckOutTime:   p.CheckOutTime,
		Hours:          p.Hours,
		Adults:         p.Adults,
		Children:       p.Children,
		AmenityIDs:     p.AmenityIDs,
		ServiceIDs:     p.ServiceIDs,
		RoomPrice:      p.RoomPrice,
		AmenitiesPrice: p.AmenitiesPrice,
		ServicesPrice:  p.ServicesPrice,
		TotalPrice:     p.TotalPrice,
		PaymentMethod:  p.PaymentMethod,
	}
}

// ---------------------------
// 1) Create (authenticated)
// ---------------------------

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var payload CreateBookingRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "error.invalidPayload", "message": "invalid booking payload", "details": err.Error()},
		})
		return
	}

	booking, err := ctrl.BookingSvc.CreateBooking(middleware.ActorID(c), toCreateInput(payload))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": booking})
}

// ---------------------------
// 2) Create walk-in (public)
// ---------------------------

func (ctrl *BookingController) CreateGuestBooking(c *gin.Context) {
	var payload GuestBookingRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "error.invalidPayload", "message": "invalid guest booking payload", "details": err.Error()},
		})
		return
	}

	in := services.GuestBookingInput{
		CreateBookingInput: services.CreateBookingInput{
			RoomID:         payload.RoomID,
			BookingType:    payload.BookingType,
			CheckInDate:    payload.CheckInDate,
			CheckOutDate:   payload.CheckOutDate,
			CheckInTime:    payload.CheckInTime,
			CheckOutTime:   payload.CheckOutTime,
			Hours:          payload.Hours,
			Adults:         payload.Adults,
			Children:       payload.Children,
			AmenityIDs:     payload.AmenityIDs,
			ServiceIDs:     payload.ServiceIDs,
			RoomPrice:      payload.RoomPrice,
			AmenitiesPrice: payload.AmenitiesPrice,
			ServicesPrice:  payload.ServicesPrice,
			TotalPrice:     payload.TotalPrice,
		},
		UserID:     payload.UserID,
		GuestName:  strings.TrimSpace(payload.GuestName),
		GuestPhone: strings.TrimSpace(payload.GuestPhone),
		GuestEmail: strings.TrimSpace(payload.GuestEmail),
	}

	booking, err := ctrl.BookingSvc.CreateGuestBooking(in)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": booking})
}

// ---------------------------
// Reads
// ---------------------------

func (ctrl *BookingController) GetBookings(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.ListBookings(middleware.ActorID(c), middleware.IsAdmin(c))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bookings})
}

func (ctrl *BookingController) GetBooking(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	booking, err := ctrl.BookingSvc.GetBookingForActor(id, middleware.ActorID(c), middleware.IsAdmin(c))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booking})
}

// GetBookingByCode is public so walk-in guests can look up their booking
// with the reference printed on the receipt.
func (ctrl *BookingController) GetBookingByCode(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "error.missingCode", "message": "booking code is required"}})
		return
	}
	booking, err := ctrl.BookingSvc.GetBookingByCode(code)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booking})
}

// RoomSchedule is the public availability view for one room.
func (ctrl *BookingController) RoomSchedule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "error.invalidRoomId", "message": "room id must be a positive number"}})
		return
	}
	schedule, sErr := ctrl.BookingSvc.RoomSchedule(uint(id))
	if sErr != nil {
		respondBookingError(c, sErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": schedule})
}

// ---------------------------
// Lifecycle transitions
// ---------------------------

func (ctrl *BookingController) ConfirmPayment(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	booking, err := ctrl.BookingSvc.ConfirmOnlinePayment(id)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booking})
}

func (ctrl *BookingController) UpdateStatus(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	var payload UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "error.invalidPayload", "message": "status is required", "details": err.Error()},
		})
		return
	}
	booking, err := ctrl.BookingSvc.UpdateStatus(id, strings.TrimSpace(payload.Status))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booking})
}

func (ctrl *BookingController) CancelBooking(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	booking, err := ctrl.BookingSvc.CancelBooking(id, middleware.ActorID(c), middleware.IsAdmin(c))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booking})
}

func (ctrl *BookingController) RecordPayment(c *gin.Context) {
	id, ok := bookingIDParam(c)
	if !ok {
		return
	}
	var payload PaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "error.invalidPayload", "message": "invalid payment payload", "details": err.Error()},
		})
		return
	}
	booking, err := ctrl.BookingSvc.RecordPayment(id, payload.Amount)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": booking})
}
