package services

import "time"

// SetCodeFunc swaps the booking code generator, letting tests force
// collisions onto the fallback path.
func (s *BookingService) SetCodeFunc(fn func(time.Time) (string, error)) {
	s.codeFn = fn
}
