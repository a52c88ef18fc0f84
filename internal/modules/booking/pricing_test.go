package booking

import (
	"testing"
	"time"

	"dayspa/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestDepositCents_HalvesAndRounds(t *testing.T) {
	assert.Equal(t, int64(6000), DepositCents(12000))
	assert.Equal(t, int64(4750), DepositCents(9500))
	// Odd cent amount rounds to nearest.
	assert.Equal(t, int64(51), DepositCents(101))
	assert.Equal(t, int64(0), DepositCents(0))
}

func TestHoursUntil_TruncatesTowardZero(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 48, HoursUntil(now.Add(48*time.Hour), now))
	assert.Equal(t, 47, HoursUntil(now.Add(47*time.Hour+59*time.Minute), now))
	assert.Equal(t, 0, HoursUntil(now.Add(30*time.Minute), now))
	assert.Equal(t, -2, HoursUntil(now.Add(-2*time.Hour-30*time.Minute), now))
}

func TestRefundForCancellation_Tiers(t *testing.T) {
	deposit := int64(6000)

	cents, status := RefundForCancellation(deposit, 72)
	assert.Equal(t, int64(6000), cents)
	assert.Equal(t, domain.RefundFull, status)

	cents, status = RefundForCancellation(deposit, 48)
	assert.Equal(t, int64(6000), cents)
	assert.Equal(t, domain.RefundFull, status)

	cents, status = RefundForCancellation(deposit, 47)
	assert.Equal(t, int64(3000), cents)
	assert.Equal(t, domain.RefundPartial, status)

	cents, status = RefundForCancellation(deposit, 24)
	assert.Equal(t, int64(3000), cents)
	assert.Equal(t, domain.RefundPartial, status)

	cents, status = RefundForCancellation(deposit, 23)
	assert.Equal(t, int64(0), cents)
	assert.Equal(t, domain.RefundNone, status)

	cents, status = RefundForCancellation(deposit, -5)
	assert.Equal(t, int64(0), cents)
	assert.Equal(t, domain.RefundNone, status)
}

func TestRefundForCancellation_PartialRounds(t *testing.T) {
	// Half of an odd deposit rounds to the nearest cent.
	cents, status := RefundForCancellation(6001, 30)
	assert.Equal(t, int64(3001), cents)
	assert.Equal(t, domain.RefundPartial, status)
}
