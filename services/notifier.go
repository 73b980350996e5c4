package services

import (
	"fmt"
	"time"
)

// AdminChannel is the shared channel reception/admin dashboards listen on.
const AdminChannel = "admin-room"

// UserChannel returns the private channel name for a registered user.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user-%d", userID)
}

// Event is pushed to interested channels after a booking mutation commits.
type Event struct {
	Type      string    `json:"type"`
	BookingID uint      `json:"booking_id"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// Notifier publishes an event to a named channel. Delivery is best-effort:
// callers log and swallow errors so a realtime failure can never fail or
// roll back an already committed booking/room write.
type Notifier interface {
	Publish(channel string, event Event) error
}

// NoopNotifier stands in when the realtime layer is not wired (tests, scripts).
type NoopNotifier struct{}

func (NoopNotifier) Publish(string, Event) error { return nil }
