package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// NewBookingCode builds a human readable booking reference:
// BOOK-<YYYYMMDD>-<HHMMSS>-<4 random digits>.
// Uniqueness is not guaranteed here; callers re-check against storage and
// fall back to NewFallbackBookingCode when the bounded retries collide.
func NewBookingCode(t time.Time) (string, error) {
	suffix, err := randomDigits(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BOOK-%s-%s-%s", t.Format("20060102"), t.Format("150405"), suffix), nil
}

// NewFallbackBookingCode uses a millisecond timestamp plus a longer random
// suffix. Collision probability is treated as negligible and is not
// re-checked by callers.
func NewFallbackBookingCode(t time.Time) (string, error) {
	suffix, err := randomDigits(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BOOK-%d-%s", t.UnixMilli(), suffix), nil
}

// randomDigits uses crypto/rand + math/big to avoid modulo bias.
func randomDigits(n int) (string, error) {
	const digits = "0123456789"
	out := make([]byte, n)
	max := big.NewInt(int64(len(digits)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = digits[num.Int64()]
	}
	return string(out), nil
}
