package booking

import (
	"math"
	"time"

	"dayspa/internal/domain"
)

// DepositCents is half the service price, rounded to the nearest cent.
func DepositCents(priceCents int64) int64 {
	return int64(math.Round(float64(priceCents) * 0.5))
}

// HoursUntil is the whole number of hours between now and start,
// truncated toward zero. 47h59m before start is 47; past starts go
// negative.
func HoursUntil(start, now time.Time) int {
	return int(start.Sub(now).Hours())
}

// RefundForCancellation applies the cancellation tiers:
// 48h or more out, the full deposit; 24-47h, half of it; under 24h,
// nothing.
func RefundForCancellation(depositCents int64, hoursUntilStart int) (int64, domain.RefundStatus) {
	switch {
	case hoursUntilStart >= 48:
		return depositCents, domain.RefundFull
	case hoursUntilStart >= 24:
		return int64(math.Round(float64(depositCents) * 0.5)), domain.RefundPartial
	default:
		return 0, domain.RefundNone
	}
}
