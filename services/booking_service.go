// services/booking_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors surfaced to controllers, which map them to HTTP statuses.
var (
	ErrBookingNotFound  = errors.New("booking_not_found")
	ErrRoomNotFound     = errors.New("room_not_found")
	ErrUserNotFound     = errors.New("user_not_found")
	ErrRoomUnavailable  = errors.New("room_unavailable")
	ErrForbidden        = errors.New("forbidden")
	ErrCannotCancel     = errors.New("cannot_cancel")
	ErrNotOnlinePayment = errors.New("not_online_payment")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidAmount    = errors.New("invalid_amount")
)

// depositRate is the share of the total booked up front for online bookings.
// The deposit is optimistic bookkeeping: paidAmount reflects an expected
// deposit until an admin confirms it via ConfirmOnlinePayment.
const depositRate = 0.30

const codeAttempts = 10

// BookingService drives the booking lifecycle state machine and keeps the
// room status in sync inside the same transaction.
type BookingService struct {
	DB       *gorm.DB
	Notifier Notifier

	// codeFn generates candidate booking codes; swappable in tests to
	// force collisions onto the fallback path.
	codeFn func(time.Time) (string, error)
}

func NewBookingService(db *gorm.DB, notifier Notifier) *BookingService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &BookingService{DB: db, Notifier: notifier, codeFn: utils.NewBookingCode}
}

// ---------------------------
// Inputs
// ---------------------------

type CreateBookingInput struct {
	RoomID         uint
	BookingType    string
	CheckInDate    string
	CheckOutDate   string
	CheckInTime    string
	CheckOutTime   string
	Hours          int
	Adults         int
	Children       int
	AmenityIDs     []uint
	ServiceIDs     []uint
	RoomPrice      float64
	AmenitiesPrice float64
	ServicesPrice  float64
	TotalPrice     float64
	PaymentMethod  string
}

// GuestBookingInput is the walk-in path: reception either names an existing
// user or supplies guest info, in which case a GuestProfile is synthesized.
// Payment method is always forced to cash on this path.
type GuestBookingInput struct {
	CreateBookingInput

	UserID     *uint
	GuestName  string
	GuestPhone string
	GuestEmail string
}

// ---------------------------
// Validation helpers
// ---------------------------

func parseBookingDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return atMidnight(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return atMidnight(t), nil
}

// atMidnight truncates to the date component; the overlap check works on
// whole days only, time-of-day strings are stored for display.
func atMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validBookingType(t string) bool {
	switch t {
	case models.BookingTypeHourly, models.BookingTypeOvernight, models.BookingTypeDaily:
		return true
	}
	return false
}

func validPaymentMethod(m string) bool {
	return m == models.PaymentMethodCash || m == models.PaymentMethodOnline
}

func (in *CreateBookingInput) parseAndValidate() (checkIn, checkOut time.Time, err error) {
	if in.RoomID == 0 {
		return checkIn, checkOut, fmt.Errorf("validation: room id is required")
	}
	if !validBookingType(in.BookingType) {
		return checkIn, checkOut, fmt.Errorf("validation: invalid booking type %q", in.BookingType)
	}
	if !validPaymentMethod(in.PaymentMethod) {
		return checkIn, checkOut, fmt.Errorf("validation: invalid payment method %q", in.PaymentMethod)
	}
	if in.TotalPrice < 0 {
		return checkIn, checkOut, fmt.Errorf("validation: total price must not be negative")
	}
	checkIn, err = parseBookingDate(in.CheckInDate)
	if err != nil {
		return checkIn, checkOut, fmt.Errorf("validation: invalid check_in_date: %v", err)
	}
	checkOut, err = parseBookingDate(in.CheckOutDate)
	if err != nil {
		return checkIn, checkOut, fmt.Errorf("validation: invalid check_out_date: %v", err)
	}
	if checkOut.Before(checkIn) {
		return checkIn, checkOut, fmt.Errorf("validation: check_out_date before check_in_date")
	}
	if in.Adults <= 0 {
		in.Adults = 1
	}
	if in.Children < 0 {
		in.Children = 0
	}
	return checkIn, checkOut, nil
}

// ---------------------------
// Availability
// ---------------------------

// roomHasConflict reports whether any booking with an active status overlaps
// [checkIn, checkOut] on the room. Bounds are inclusive on purpose: touching
// endpoints count as a conflict, there is no same-day back-to-back turnover.
func roomHasConflict(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time, excludeID uint) (bool, error) {
	q := tx.Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", models.ActiveBookingStatuses).
		Where("check_in_date <= ? AND check_out_date >= ?", checkOut, checkIn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("availability query failed: %w", err)
	}
	return n > 0, nil
}

// lockingClause serializes per-room creation on MySQL via SELECT ... FOR
// UPDATE. SQLite (tests) has no FOR UPDATE; its single-writer locking plus
// the post-insert recount below covers the same invariant there.
func lockingClause(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ---------------------------
// Code generation
// ---------------------------

func (s *BookingService) generateUniqueCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := s.codeFn(time.Now().UTC())
		if err != nil {
			return "", err
		}
		var n int64
		if err := tx.Model(&models.Booking{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return "", fmt.Errorf("code lookup failed: %w", err)
		}
		if n == 0 {
			return code, nil
		}
		log.Printf("booking code collision (attempt %d) - retrying", attempt+1)
	}
	// Higher-entropy fallback, accepted without another lookup.
	return utils.NewFallbackBookingCode(time.Now().UTC())
}

// ---------------------------
// Creation
// ---------------------------

// CreateBooking creates a booking owned by a registered user. The conflict
// check, code generation and insert all run in one transaction so two
// overlapping requests cannot both pass the availability check.
func (s *BookingService) CreateBooking(userID uint, in CreateBookingInput) (*models.Booking, error) {
	checkIn, checkOut, err := in.parseAndValidate()
	if err != nil {
		return nil, err
	}

	var bookingID uint
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("db error checking user %d: %w", userID, err)
		}

		booking, err := s.createInTx(tx, &user.ID, nil, in, checkIn, checkOut)
		if err != nil {
			return err
		}
		bookingID = booking.ID
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	booking, err := s.getWithRelations(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(booking, "booking.created",
		fmt.Sprintf("Booking %s created for room %s (%s to %s).",
			booking.Code, booking.Room.RoomNumber, in.CheckInDate, in.CheckOutDate))
	return booking, nil
}

// CreateGuestBooking is the walk-in path used by reception. It is reachable
// without an authenticated actor.
func (s *BookingService) CreateGuestBooking(in GuestBookingInput) (*models.Booking, error) {
	in.PaymentMethod = models.PaymentMethodCash // walk-ins always settle at the desk

	checkIn, checkOut, err := in.parseAndValidate()
	if err != nil {
		return nil, err
	}
	if in.UserID == nil && in.GuestName == "" {
		return nil, fmt.Errorf("validation: guest name or user id is required")
	}

	var bookingID uint
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var ownerUserID *uint
		var ownerGuestID *uint

		if in.UserID != nil {
			var user models.User
			if err := tx.First(&user, *in.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return fmt.Errorf("db error checking user %d: %w", *in.UserID, err)
			}
			ownerUserID = &user.ID
		} else {
			guest := models.GuestProfile{
				Reference: uuid.NewString(),
				FullName:  in.GuestName,
				Phone:     in.GuestPhone,
				Email:     in.GuestEmail,
			}
			if err := tx.Create(&guest).Error; err != nil {
				return fmt.Errorf("failed to create guest profile: %w", err)
			}
			ownerGuestID = &guest.ID
		}

		booking, err := s.createInTx(tx, ownerUserID, ownerGuestID, in.CreateBookingInput, checkIn, checkOut)
		if err != nil {
			return err
		}
		bookingID = booking.ID
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	booking, err := s.getWithRelations(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(booking, "booking.created",
		fmt.Sprintf("Walk-in booking %s created for room %s.", booking.Code, booking.Room.RoomNumber))
	return booking, nil
}

func (s *BookingService) createInTx(tx *gorm.DB, userID, guestID *uint, in CreateBookingInput, checkIn, checkOut time.Time) (*models.Booking, error) {
	var room models.Room
	if err := lockingClause(tx).First(&room, in.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("db error checking room %d: %w", in.RoomID, err)
	}

	conflict, err := roomHasConflict(tx, in.RoomID, checkIn, checkOut, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrRoomUnavailable
	}

	code, err := s.generateUniqueCode(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking code: %w", err)
	}

	booking := models.Booking{
		Code:           code,
		UserID:         userID,
		GuestID:        guestID,
		RoomID:         in.RoomID,
		BookingType:    in.BookingType,
		CheckInDate:    &checkIn,
		CheckOutDate:   &checkOut,
		CheckInTime:    in.CheckInTime,
		CheckOutTime:   in.CheckOutTime,
		Hours:          in.Hours,
		Adults:         in.Adults,
		Children:       in.Children,
		RoomPrice:      in.RoomPrice,
		AmenitiesPrice: in.AmenitiesPrice,
		ServicesPrice:  in.ServicesPrice,
		TotalPrice:     in.TotalPrice,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  models.PaymentStatusPending,
		Status:         models.BookingStatusPending,
	}

	// Online bookings book a 30% deposit up front, rounded to the nearest
	// currency unit. It is marked partial before any confirmation step.
	if in.PaymentMethod == models.PaymentMethodOnline && in.TotalPrice > 0 {
		deposit := math.Round(in.TotalPrice * depositRate)
		booking.PaidAmount = deposit
		booking.RemainingAmount = in.TotalPrice - deposit
		booking.PaymentStatus = models.PaymentStatusPartial
	} else {
		booking.PaidAmount = 0
		booking.RemainingAmount = in.TotalPrice
	}

	if len(in.AmenityIDs) > 0 {
		var amenities []models.Amenity
		if err := tx.Find(&amenities, in.AmenityIDs).Error; err != nil {
			return nil, fmt.Errorf("db error loading amenities: %w", err)
		}
		booking.Amenities = amenities
	}
	if len(in.ServiceIDs) > 0 {
		var svcs []models.Service
		if err := tx.Find(&svcs, in.ServiceIDs).Error; err != nil {
			return nil, fmt.Errorf("db error loading services: %w", err)
		}
		booking.Services = svcs
	}

	// Omit association upserts; only the join rows should be written.
	if err := tx.Omit("Amenities.*", "Services.*").Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	// Recount after insert: under snapshot isolation two creators can both
	// pass the pre-insert check, but at least one of them sees the other
	// here and rolls back.
	conflict, err = roomHasConflict(tx, in.RoomID, checkIn, checkOut, booking.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrRoomUnavailable
	}

	return &booking, nil
}

// ---------------------------
// Lifecycle transitions
// ---------------------------

// ConfirmOnlinePayment marks the optimistic online deposit as actually
// received: pending -> confirmed, room -> Occupied.
func (s *BookingService) ConfirmOnlinePayment(bookingID uint) (*models.Booking, error) {
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		booking, err := findBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.PaymentMethod != models.PaymentMethodOnline {
			return ErrNotOnlinePayment
		}
		if booking.Status != models.BookingStatusPending {
			return ErrInvalidStatus
		}
		if err := tx.Model(booking).Update("status", models.BookingStatusConfirmed).Error; err != nil {
			return err
		}
		return setRoomOccupied(tx, booking.RoomID, booking.ID)
	})
	if txErr != nil {
		return nil, txErr
	}

	booking, err := s.getWithRelations(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(booking, "booking.confirmed",
		fmt.Sprintf("Online payment for booking %s confirmed.", booking.Code))
	return booking, nil
}

// UpdateStatus applies an admin status change (checked-in, checked-out or
// completed) and projects the matching room status in the same transaction.
func (s *BookingService) UpdateStatus(bookingID uint, status string) (*models.Booking, error) {
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		booking, err := findBooking(tx, bookingID)
		if err != nil {
			return err
		}

		switch status {
		case models.BookingStatusCheckedIn:
			if err := tx.Model(booking).Update("status", status).Error; err != nil {
				return err
			}
			return setRoomOccupied(tx, booking.RoomID, booking.ID)

		case models.BookingStatusCheckedOut:
			if err := tx.Model(booking).Update("status", status).Error; err != nil {
				return err
			}
			return setRoomStatus(tx, booking.RoomID, models.RoomStatusDirty, true)

		case models.BookingStatusCompleted:
			if err := tx.Model(booking).Update("status", status).Error; err != nil {
				return err
			}
			return setRoomStatus(tx, booking.RoomID, models.RoomStatusAvailable, true)

		default:
			return ErrInvalidStatus
		}
	})
	if txErr != nil {
		return nil, txErr
	}

	booking, err := s.getWithRelations(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(booking, "booking.status_changed",
		fmt.Sprintf("Booking %s is now %s.", booking.Code, booking.Status))
	return booking, nil
}

// CancelBooking rejects cancellation once the stay has started. Non-admin
// actors may only cancel their own bookings.
func (s *BookingService) CancelBooking(bookingID uint, actorID uint, isAdmin bool) (*models.Booking, error) {
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		booking, err := findBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if !isAdmin && (booking.UserID == nil || *booking.UserID != actorID) {
			return ErrForbidden
		}
		switch booking.Status {
		case models.BookingStatusCheckedIn, models.BookingStatusCheckedOut, models.BookingStatusCompleted:
			return ErrCannotCancel
		}

		if err := tx.Model(booking).Update("status", models.BookingStatusCancelled).Error; err != nil {
			return err
		}

		// Release the room only if this booking is the one occupying it.
		var room models.Room
		if err := tx.First(&room, booking.RoomID).Error; err != nil {
			return err
		}
		if room.Status == models.RoomStatusOccupied &&
			room.CurrentBookingID != nil && *room.CurrentBookingID == booking.ID {
			return setRoomStatus(tx, room.ID, models.RoomStatusAvailable, true)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	booking, err := s.getWithRelations(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(booking, "booking.cancelled",
		fmt.Sprintf("Booking %s has been cancelled.", booking.Code))
	return booking, nil
}

// RecordPayment adds a (partial) payment. A zero amount means the full
// remaining balance. Overpayment is clamped to the outstanding balance so
// paid + remaining always equals total. If the balance reaches zero while
// the booking is checked-out, the booking completes and the room is freed.
func (s *BookingService) RecordPayment(bookingID uint, amount float64) (*models.Booking, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		booking, err := findBooking(tx, bookingID)
		if err != nil {
			return err
		}

		applied := amount
		if applied == 0 || applied > booking.RemainingAmount {
			applied = booking.RemainingAmount
		}

		paid := booking.PaidAmount + applied
		remaining := booking.RemainingAmount - applied

		updates := map[string]interface{}{
			"paid_amount":      paid,
			"remaining_amount": remaining,
		}
		completed := false
		if remaining <= 0 {
			now := time.Now().UTC()
			updates["remaining_amount"] = float64(0)
			updates["payment_status"] = models.PaymentStatusPaid
			updates["paid_at"] = now
			if booking.Status == models.BookingStatusCheckedOut {
				updates["status"] = models.BookingStatusCompleted
				completed = true
			}
		} else {
			updates["payment_status"] = models.PaymentStatusPartial
		}

		if err := tx.Model(booking).Updates(updates).Error; err != nil {
			return err
		}
		if completed {
			return setRoomStatus(tx, booking.RoomID, models.RoomStatusAvailable, true)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	booking, err := s.getWithRelations(bookingID)
	if err != nil {
		return nil, err
	}
	s.notify(booking, "booking.payment",
		fmt.Sprintf("Payment recorded for booking %s (paid %.0f, remaining %.0f).",
			booking.Code, booking.PaidAmount, booking.RemainingAmount))
	return booking, nil
}

// ---------------------------
// Reads
// ---------------------------

// GetBookingForActor returns a booking the actor is allowed to see: admins
// see everything, users only their own.
func (s *BookingService) GetBookingForActor(bookingID uint, actorID uint, isAdmin bool) (*models.Booking, error) {
	booking, err := s.getWithRelations(bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && (booking.UserID == nil || *booking.UserID != actorID) {
		return nil, ErrForbidden
	}
	return booking, nil
}

// GetBookingByCode is the public lookup used by walk-in/guest flows.
func (s *BookingService) GetBookingByCode(code string) (*models.Booking, error) {
	var booking models.Booking
	if err := withRelations(s.DB).Where("code = ?", code).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to retrieve booking: %w", err)
	}
	return &booking, nil
}

// ListBookings returns all bookings for admins, own bookings otherwise.
func (s *BookingService) ListBookings(actorID uint, isAdmin bool) ([]models.Booking, error) {
	q := withRelations(s.DB).Order("created_at DESC")
	if !isAdmin {
		q = q.Where("user_id = ?", actorID)
	}
	var list []models.Booking
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}

// RoomSchedule lists the active bookings blocking a room; it backs the
// public schedule view, so only dates and status are selected.
func (s *BookingService) RoomSchedule(roomID uint) ([]models.Booking, error) {
	var room models.Room
	if err := s.DB.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("db error checking room %d: %w", roomID, err)
	}

	var list []models.Booking
	if err := s.DB.
		Select("id", "room_id", "booking_type", "check_in_date", "check_out_date", "status").
		Where("room_id = ?", roomID).
		Where("status IN ?", models.ActiveBookingStatuses).
		Order("check_in_date ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve room schedule: %w", err)
	}
	return list, nil
}

// ---------------------------
// Internals
// ---------------------------

func findBooking(tx *gorm.DB, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func setRoomOccupied(tx *gorm.DB, roomID, bookingID uint) error {
	return tx.Model(&models.Room{}).Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"status":             models.RoomStatusOccupied,
			"current_booking_id": bookingID,
		}).Error
}

// setRoomStatus rewrites the room status; clearOccupant also drops the
// occupancy back-reference (checkout, completion, cancellation).
func setRoomStatus(tx *gorm.DB, roomID uint, status string, clearOccupant bool) error {
	updates := map[string]interface{}{"status": status}
	if clearOccupant {
		updates["current_booking_id"] = nil
	}
	return tx.Model(&models.Room{}).Where("id = ?", roomID).Updates(updates).Error
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Room").
		Preload("Room.RoomType").
		Preload("Room.RoomCategory").
		Preload("User").
		Preload("Guest").
		Preload("Amenities").
		Preload("Services")
}

func (s *BookingService) getWithRelations(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := withRelations(s.DB).First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to retrieve booking: %w", err)
	}
	return &booking, nil
}

// notify publishes to the owner's private channel (registered users only)
// and the shared admin channel. Failures are logged and swallowed.
func (s *BookingService) notify(b *models.Booking, eventType, message string) {
	ev := Event{
		Type:      eventType,
		BookingID: b.ID,
		Code:      b.Code,
		Status:    b.Status,
		Message:   message,
		At:        time.Now().UTC(),
	}
	channels := []string{AdminChannel}
	if b.UserID != nil {
		channels = append(channels, UserChannel(*b.UserID))
	}
	for _, ch := range channels {
		if err := s.Notifier.Publish(ch, ev); err != nil {
			log.Printf("⚠️ notify %s failed for booking %s: %v", ch, b.Code, err)
		}
	}
}
