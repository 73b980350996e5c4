package services_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"hotel-reservation/config"
	"hotel-reservation/models"
	"hotel-reservation/services"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the one in-memory database shared across
	// transactions and serializes them.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateAndSeed(db))
	return db
}

func seedRoom(t *testing.T, db *gorm.DB, number string) models.Room {
	t.Helper()
	room := models.Room{
		RoomNumber: number,
		Status:     models.RoomStatusAvailable,
		Price:      1000000,
	}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		FullName: "Test User",
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func reloadRoom(t *testing.T, db *gorm.DB, id uint) models.Room {
	t.Helper()
	var room models.Room
	require.NoError(t, db.First(&room, id).Error)
	return room
}

func dailyInput(roomID uint, checkIn, checkOut string, total float64, method string) services.CreateBookingInput {
	return services.CreateBookingInput{
		RoomID:        roomID,
		BookingType:   models.BookingTypeDaily,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		CheckInTime:   "14:00",
		CheckOutTime:  "12:00",
		Adults:        2,
		RoomPrice:     total,
		TotalPrice:    total,
		PaymentMethod: method,
	}
}

// recorder captures published events for assertions.
type recorder struct {
	mu     sync.Mutex
	events map[string][]services.Event
	fail   bool
}

func newRecorder() *recorder {
	return &recorder{events: make(map[string][]services.Event)}
}

func (r *recorder) Publish(channel string, event services.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("realtime layer not initialized")
	}
	r.events[channel] = append(r.events[channel], event)
	return nil
}

func (r *recorder) count(channel string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[channel])
}

// ---------------------------
// Creation
// ---------------------------

func TestCreateBookingCash(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "101")
	user := seedUser(t, db, "alice")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	require.Equal(t, models.BookingStatusPending, booking.Status)
	require.Equal(t, float64(0), booking.PaidAmount)
	require.Equal(t, float64(2000000), booking.RemainingAmount)
	require.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	require.NotEmpty(t, booking.Code)
	require.Contains(t, booking.Code, "BOOK-")

	// Creation leaves the room status untouched.
	require.Equal(t, models.RoomStatusAvailable, reloadRoom(t, db, room.ID).Status)
}

func TestCreateBookingOnlineDeposit(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "102")
	user := seedUser(t, db, "bob")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodOnline))
	require.NoError(t, err)

	// 30% deposit is booked up front, before any confirmation.
	require.Equal(t, models.BookingStatusPending, booking.Status)
	require.Equal(t, float64(600000), booking.PaidAmount)
	require.Equal(t, float64(1400000), booking.RemainingAmount)
	require.Equal(t, models.PaymentStatusPartial, booking.PaymentStatus)
}

func TestCreateBookingConflict(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "103")
	user := seedUser(t, db, "carol")

	_, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	_, err = svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-11", "2025-01-13", 2000000, models.PaymentMethodCash))
	require.ErrorIs(t, err, services.ErrRoomUnavailable)
}

func TestCreateBookingTouchingEndpointsConflict(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "104")
	user := seedUser(t, db, "dave")

	_, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	// Inclusive bounds: a check-in on the previous check-out day conflicts.
	_, err = svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-12", "2025-01-14", 2000000, models.PaymentMethodCash))
	require.ErrorIs(t, err, services.ErrRoomUnavailable)

	// The day after is free.
	_, err = svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-13", "2025-01-14", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)
}

func TestCreateBookingCancelledDoesNotBlock(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "105")
	user := seedUser(t, db, "erin")

	first, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)
	_, err = svc.CancelBooking(first.ID, user.ID, false)
	require.NoError(t, err)

	_, err = svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)
}

func TestCreateBookingRoomAndUserMustExist(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "106")
	user := seedUser(t, db, "frank")

	_, err := svc.CreateBooking(user.ID, dailyInput(9999, "2025-01-10", "2025-01-12", 100, models.PaymentMethodCash))
	require.ErrorIs(t, err, services.ErrRoomNotFound)

	_, err = svc.CreateBooking(9999, dailyInput(room.ID, "2025-01-10", "2025-01-12", 100, models.PaymentMethodCash))
	require.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestCreateBookingValidation(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "107")
	user := seedUser(t, db, "gina")

	in := dailyInput(room.ID, "2025-01-10", "2025-01-12", 100, "card")
	_, err := svc.CreateBooking(user.ID, in)
	require.ErrorContains(t, err, "validation")

	in = dailyInput(room.ID, "2025-01-12", "2025-01-10", 100, models.PaymentMethodCash)
	_, err = svc.CreateBooking(user.ID, in)
	require.ErrorContains(t, err, "validation")

	in = dailyInput(room.ID, "10/01/2025", "2025-01-12", 100, models.PaymentMethodCash)
	_, err = svc.CreateBooking(user.ID, in)
	require.ErrorContains(t, err, "validation")
}

func TestCreateBookingWithExtras(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "108")
	user := seedUser(t, db, "hana")

	var amenity models.Amenity
	require.NoError(t, db.First(&amenity).Error)
	var service models.Service
	require.NoError(t, db.First(&service).Error)

	in := dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash)
	in.AmenityIDs = []uint{amenity.ID}
	in.ServiceIDs = []uint{service.ID}
	in.AmenitiesPrice = amenity.Price
	in.ServicesPrice = service.Price

	booking, err := svc.CreateBooking(user.ID, in)
	require.NoError(t, err)
	require.Len(t, booking.Amenities, 1)
	require.Len(t, booking.Services, 1)
	require.Equal(t, amenity.Name, booking.Amenities[0].Name)
}

// ---------------------------
// Walk-in path
// ---------------------------

func TestGuestBookingSynthesizesProfileAndForcesCash(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "109")

	in := services.GuestBookingInput{
		CreateBookingInput: dailyInput(room.ID, "2025-02-01", "2025-02-03", 1500000, models.PaymentMethodOnline),
		GuestName:          "Walk In",
		GuestPhone:         "0812345678",
	}
	booking, err := svc.CreateGuestBooking(in)
	require.NoError(t, err)

	require.Equal(t, models.PaymentMethodCash, booking.PaymentMethod)
	require.Equal(t, float64(0), booking.PaidAmount)
	require.Nil(t, booking.UserID)
	require.NotNil(t, booking.GuestID)
	require.NotNil(t, booking.Guest)
	require.Equal(t, "Walk In", booking.Guest.FullName)
	require.NotEmpty(t, booking.Guest.Reference)
}

func TestGuestBookingWithExistingUser(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "110")
	user := seedUser(t, db, "ivan")

	in := services.GuestBookingInput{
		CreateBookingInput: dailyInput(room.ID, "2025-02-01", "2025-02-03", 1500000, models.PaymentMethodCash),
		UserID:             &user.ID,
	}
	booking, err := svc.CreateGuestBooking(in)
	require.NoError(t, err)
	require.NotNil(t, booking.UserID)
	require.Equal(t, user.ID, *booking.UserID)
	require.Nil(t, booking.GuestID)
}

func TestGuestBookingRequiresNameOrUser(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "111")

	in := services.GuestBookingInput{
		CreateBookingInput: dailyInput(room.ID, "2025-02-01", "2025-02-03", 1500000, models.PaymentMethodCash),
	}
	_, err := svc.CreateGuestBooking(in)
	require.ErrorContains(t, err, "validation")
}

// ---------------------------
// Lifecycle transitions
// ---------------------------

func TestConfirmOnlinePayment(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "201")
	user := seedUser(t, db, "judy")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodOnline))
	require.NoError(t, err)

	confirmed, err := svc.ConfirmOnlinePayment(booking.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	got := reloadRoom(t, db, room.ID)
	require.Equal(t, models.RoomStatusOccupied, got.Status)
	require.NotNil(t, got.CurrentBookingID)
	require.Equal(t, booking.ID, *got.CurrentBookingID)

	// Deposit amounts are untouched by confirmation.
	require.Equal(t, float64(600000), confirmed.PaidAmount)
	require.Equal(t, float64(1400000), confirmed.RemainingAmount)
}

func TestConfirmOnlinePaymentRejectsCash(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "202")
	user := seedUser(t, db, "kate")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	_, err = svc.ConfirmOnlinePayment(booking.ID)
	require.ErrorIs(t, err, services.ErrNotOnlinePayment)
}

func TestStatusTransitionsProjectRoomStatus(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "203")
	user := seedUser(t, db, "liam")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(booking.ID, models.BookingStatusCheckedIn)
	require.NoError(t, err)
	got := reloadRoom(t, db, room.ID)
	require.Equal(t, models.RoomStatusOccupied, got.Status)
	require.NotNil(t, got.CurrentBookingID)

	_, err = svc.UpdateStatus(booking.ID, models.BookingStatusCheckedOut)
	require.NoError(t, err)
	got = reloadRoom(t, db, room.ID)
	require.Equal(t, models.RoomStatusDirty, got.Status)
	require.Nil(t, got.CurrentBookingID)

	_, err = svc.UpdateStatus(booking.ID, models.BookingStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.RoomStatusAvailable, reloadRoom(t, db, room.ID).Status)
}

func TestUpdateStatusRejectsUnknownTarget(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "204")
	user := seedUser(t, db, "mona")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(booking.ID, "cancelled")
	require.ErrorIs(t, err, services.ErrInvalidStatus)
	_, err = svc.UpdateStatus(booking.ID, "nonsense")
	require.ErrorIs(t, err, services.ErrInvalidStatus)
}

// ---------------------------
// Cancellation
// ---------------------------

func TestCancelGuardAfterCheckIn(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "301")
	user := seedUser(t, db, "nora")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	for _, status := range []string{
		models.BookingStatusCheckedIn,
		models.BookingStatusCheckedOut,
		models.BookingStatusCompleted,
	} {
		_, err = svc.UpdateStatus(booking.ID, status)
		require.NoError(t, err)

		_, err = svc.CancelBooking(booking.ID, user.ID, false)
		require.ErrorIs(t, err, services.ErrCannotCancel)

		var got models.Booking
		require.NoError(t, db.First(&got, booking.ID).Error)
		require.Equal(t, status, got.Status, "status must remain unchanged after rejected cancel")
	}
}

func TestCancelReleasesOccupiedRoom(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "302")
	user := seedUser(t, db, "olga")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodOnline))
	require.NoError(t, err)
	_, err = svc.ConfirmOnlinePayment(booking.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomStatusOccupied, reloadRoom(t, db, room.ID).Status)

	cancelled, err := svc.CancelBooking(booking.ID, user.ID, false)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	got := reloadRoom(t, db, room.ID)
	require.Equal(t, models.RoomStatusAvailable, got.Status)
	require.Nil(t, got.CurrentBookingID)
}

func TestCancelPendingLeavesRoomStatusAlone(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "303")
	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", room.ID).
		Update("status", models.RoomStatusMaintenance).Error)
	user := seedUser(t, db, "pete")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	_, err = svc.CancelBooking(booking.ID, user.ID, false)
	require.NoError(t, err)
	require.Equal(t, models.RoomStatusMaintenance, reloadRoom(t, db, room.ID).Status)
}

func TestCancelOwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "304")
	owner := seedUser(t, db, "quinn")
	other := seedUser(t, db, "rachel")

	booking, err := svc.CreateBooking(owner.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	_, err = svc.CancelBooking(booking.ID, other.ID, false)
	require.ErrorIs(t, err, services.ErrForbidden)

	// Admins may cancel anyone's booking.
	_, err = svc.CancelBooking(booking.ID, other.ID, true)
	require.NoError(t, err)
}

// ---------------------------
// Payments
// ---------------------------

func TestRecordPaymentPartialThenFull(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "401")
	user := seedUser(t, db, "sara")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	paid, err := svc.RecordPayment(booking.ID, 500000)
	require.NoError(t, err)
	require.Equal(t, float64(500000), paid.PaidAmount)
	require.Equal(t, float64(1500000), paid.RemainingAmount)
	require.Equal(t, models.PaymentStatusPartial, paid.PaymentStatus)
	require.Nil(t, paid.PaidAt)
	require.Equal(t, models.BookingStatusPending, paid.Status)

	// Zero amount settles the full remaining balance.
	paid, err = svc.RecordPayment(booking.ID, 0)
	require.NoError(t, err)
	require.Equal(t, float64(2000000), paid.PaidAmount)
	require.Equal(t, float64(0), paid.RemainingAmount)
	require.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)
}

func TestRecordPaymentClampsOverpayment(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "402")
	user := seedUser(t, db, "tina")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 1000000, models.PaymentMethodCash))
	require.NoError(t, err)

	paid, err := svc.RecordPayment(booking.ID, 9999999)
	require.NoError(t, err)
	require.Equal(t, float64(1000000), paid.PaidAmount)
	require.Equal(t, float64(0), paid.RemainingAmount)
	require.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
}

func TestRecordPaymentRejectsNegative(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "403")
	user := seedUser(t, db, "uma")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 1000000, models.PaymentMethodCash))
	require.NoError(t, err)

	_, err = svc.RecordPayment(booking.ID, -1)
	require.ErrorIs(t, err, services.ErrInvalidAmount)
}

func TestFinalPaymentAfterCheckoutCompletes(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "404")
	user := seedUser(t, db, "vera")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodOnline))
	require.NoError(t, err)
	_, err = svc.ConfirmOnlinePayment(booking.ID)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(booking.ID, models.BookingStatusCheckedIn)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(booking.ID, models.BookingStatusCheckedOut)
	require.NoError(t, err)
	require.Equal(t, models.RoomStatusDirty, reloadRoom(t, db, room.ID).Status)

	paid, err := svc.RecordPayment(booking.ID, 1400000)
	require.NoError(t, err)
	require.Equal(t, float64(0), paid.RemainingAmount)
	require.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	require.Equal(t, models.BookingStatusCompleted, paid.Status)
	require.Equal(t, models.RoomStatusAvailable, reloadRoom(t, db, room.ID).Status)
}

// ---------------------------
// Reads / authorization
// ---------------------------

func TestListBookingsScopedToActor(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	roomA := seedRoom(t, db, "501")
	roomB := seedRoom(t, db, "502")
	alice := seedUser(t, db, "walt")
	bob := seedUser(t, db, "xena")

	_, err := svc.CreateBooking(alice.ID, dailyInput(roomA.ID, "2025-01-10", "2025-01-12", 100, models.PaymentMethodCash))
	require.NoError(t, err)
	_, err = svc.CreateBooking(bob.ID, dailyInput(roomB.ID, "2025-01-10", "2025-01-12", 100, models.PaymentMethodCash))
	require.NoError(t, err)

	own, err := svc.ListBookings(alice.ID, false)
	require.NoError(t, err)
	require.Len(t, own, 1)

	all, err := svc.ListBookings(alice.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestGetBookingForActor(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "503")
	owner := seedUser(t, db, "yuri")
	other := seedUser(t, db, "zoe")

	booking, err := svc.CreateBooking(owner.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 100, models.PaymentMethodCash))
	require.NoError(t, err)

	_, err = svc.GetBookingForActor(booking.ID, other.ID, false)
	require.ErrorIs(t, err, services.ErrForbidden)

	got, err := svc.GetBookingForActor(booking.ID, owner.ID, false)
	require.NoError(t, err)
	require.Equal(t, booking.Code, got.Code)

	byCode, err := svc.GetBookingByCode(booking.Code)
	require.NoError(t, err)
	require.Equal(t, booking.ID, byCode.ID)

	_, err = svc.GetBookingByCode("BOOK-NOPE")
	require.ErrorIs(t, err, services.ErrBookingNotFound)
}

func TestRoomSchedule(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "504")
	user := seedUser(t, db, "amy")

	active, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-03-01", "2025-03-03", 100, models.PaymentMethodCash))
	require.NoError(t, err)
	cancelled, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-03-10", "2025-03-12", 100, models.PaymentMethodCash))
	require.NoError(t, err)
	_, err = svc.CancelBooking(cancelled.ID, user.ID, false)
	require.NoError(t, err)

	schedule, err := svc.RoomSchedule(room.ID)
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	require.Equal(t, active.ID, schedule[0].ID)

	_, err = svc.RoomSchedule(9999)
	require.ErrorIs(t, err, services.ErrRoomNotFound)
}

// ---------------------------
// Code generation
// ---------------------------

func TestBookingCodeFallbackOnForcedCollision(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "601")
	other := seedRoom(t, db, "602")
	user := seedUser(t, db, "ben")

	// Force every regular attempt onto the same code.
	svc.SetCodeFunc(func(time.Time) (string, error) {
		return "BOOK-20250110-120000-0000", nil
	})

	first, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 100, models.PaymentMethodCash))
	require.NoError(t, err)
	require.Equal(t, "BOOK-20250110-120000-0000", first.Code)

	second, err := svc.CreateBooking(user.ID, dailyInput(other.ID, "2025-01-10", "2025-01-12", 100, models.PaymentMethodCash))
	require.NoError(t, err)
	require.NotEqual(t, first.Code, second.Code, "fallback must avoid the colliding code")
	require.Contains(t, second.Code, "BOOK-")
}

// ---------------------------
// Notifications
// ---------------------------

func TestLifecycleEventsPublished(t *testing.T) {
	db := newTestDB(t)
	rec := newRecorder()
	svc := services.NewBookingService(db, rec)
	room := seedRoom(t, db, "701")
	user := seedUser(t, db, "cleo")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodOnline))
	require.NoError(t, err)
	_, err = svc.ConfirmOnlinePayment(booking.ID)
	require.NoError(t, err)

	require.Equal(t, 2, rec.count(services.AdminChannel))
	require.Equal(t, 2, rec.count(services.UserChannel(user.ID)))
}

func TestNotifierFailureDoesNotFailOperation(t *testing.T) {
	db := newTestDB(t)
	rec := newRecorder()
	rec.fail = true
	svc := services.NewBookingService(db, rec)
	room := seedRoom(t, db, "702")
	user := seedUser(t, db, "drew")

	booking, err := svc.CreateBooking(user.ID, dailyInput(room.ID, "2025-01-10", "2025-01-12", 2000000, models.PaymentMethodCash))
	require.NoError(t, err)

	var got models.Booking
	require.NoError(t, db.First(&got, booking.ID).Error)
	require.Equal(t, models.BookingStatusPending, got.Status)
}

// ---------------------------
// Concurrency
// ---------------------------

// Two overlapping creations on one room must not both succeed; the
// transactional conflict check closes the check-then-act race.
func TestConcurrentOverlappingCreates(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewBookingService(db, nil)
	room := seedRoom(t, db, "801")
	u1 := seedUser(t, db, "eva")
	u2 := seedUser(t, db, "finn")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, uid := range []uint{u1.ID, u2.ID} {
		wg.Add(1)
		go func(i int, uid uint) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(uid, dailyInput(room.ID, "2025-01-10", "2025-01-12", 100, models.PaymentMethodCash))
		}(i, uid)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, services.ErrRoomUnavailable)
		}
	}
	require.Equal(t, 1, succeeded, "exactly one of two overlapping creations may succeed")

	var active int64
	require.NoError(t, db.Model(&models.Booking{}).
		Where("room_id = ? AND status IN ?", room.ID, models.ActiveBookingStatuses).
		Count(&active).Error)
	require.EqualValues(t, 1, active)
}
