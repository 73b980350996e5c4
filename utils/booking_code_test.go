package utils_test

import (
	"regexp"
	"testing"
	"time"

	"hotel-reservation/utils"

	"github.com/stretchr/testify/require"
)

func TestNewBookingCodeFormat(t *testing.T) {
	at := time.Date(2025, 1, 10, 14, 30, 45, 0, time.UTC)
	code, err := utils.NewBookingCode(at)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^BOOK-20250110-143045-\d{4}$`), code)
}

func TestNewFallbackBookingCodeFormat(t *testing.T) {
	at := time.Date(2025, 1, 10, 14, 30, 45, 0, time.UTC)
	code, err := utils.NewFallbackBookingCode(at)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^BOOK-\d{13}-\d{6}$`), code)
}
