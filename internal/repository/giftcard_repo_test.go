package repository

import (
	"context"
	"testing"
	"time"

	"dayspa/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testCard(status domain.GiftCardStatus, faceCents int64) *domain.GiftCard {
	return &domain.GiftCard{
		ID:             uuid.NewString(),
		Code:           "TESTCODE99",
		SenderName:     "Dana Reed",
		SenderEmail:    "dana@example.com",
		RecipientName:  "Eli Park",
		RecipientEmail: "eli@example.com",
		FaceCents:      faceCents,
		BalanceCents:   faceCents,
		Status:         status,
	}
}

func TestGiftCardRepository_Activate(t *testing.T) {
	repo := NewGiftCardRepository(newTestDB(t))
	ctx := context.Background()

	g := testCard(domain.GiftCardPending, 10000)
	assert.NoError(t, repo.Create(ctx, g))

	changed, err := repo.Activate(ctx, g.ID)
	assert.NoError(t, err)
	assert.True(t, changed)

	// Redelivered webhook: no pending row left.
	changed, err = repo.Activate(ctx, g.ID)
	assert.NoError(t, err)
	assert.False(t, changed)

	got, err := repo.GetByID(ctx, g.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.GiftCardActive, got.Status)
}

func TestGiftCardRepository_MarkRedeemed_OnlyOnce(t *testing.T) {
	repo := NewGiftCardRepository(newTestDB(t))
	ctx := context.Background()

	g := testCard(domain.GiftCardActive, 10000)
	assert.NoError(t, repo.Create(ctx, g))

	changed, err := repo.MarkRedeemed(ctx, g.ID, "admin", time.Now().UTC())
	assert.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkRedeemed(ctx, g.ID, "admin", time.Now().UTC())
	assert.NoError(t, err)
	assert.False(t, changed)

	got, err := repo.GetByID(ctx, g.ID)
	assert.NoError(t, err)
	assert.True(t, got.Redeemed)
	assert.Equal(t, "admin", got.RedeemedBy)
	assert.NotNil(t, got.RedeemedAt)
}

func TestGiftCardRepository_Use_DecrementsAndRecords(t *testing.T) {
	repo := NewGiftCardRepository(newTestDB(t))
	ctx := context.Background()

	g := testCard(domain.GiftCardActive, 15000)
	assert.NoError(t, repo.Create(ctx, g))

	code, err := repo.Use(ctx, g.ID, 6000, "Signature Facial", "", "lena")
	assert.NoError(t, err)
	assert.Equal(t, UseOK, code)

	got, err := repo.GetByID(ctx, g.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(9000), got.BalanceCents)
	assert.Equal(t, domain.GiftCardPartiallyUsed, got.Status)

	usages, err := repo.ListUsages(ctx, g.ID)
	assert.NoError(t, err)
	assert.Len(t, usages, 1)
	assert.Equal(t, int64(6000), usages[0].AmountCents)
	assert.Equal(t, "lena", usages[0].UsedBy)
}

func TestGiftCardRepository_Use_ExactBalanceMarksUsed(t *testing.T) {
	repo := NewGiftCardRepository(newTestDB(t))
	ctx := context.Background()

	g := testCard(domain.GiftCardActive, 5000)
	assert.NoError(t, repo.Create(ctx, g))

	code, err := repo.Use(ctx, g.ID, 5000, "", "", "lena")
	assert.NoError(t, err)
	assert.Equal(t, UseOK, code)

	got, err := repo.GetByID(ctx, g.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), got.BalanceCents)
	assert.Equal(t, domain.GiftCardUsed, got.Status)
}

func TestGiftCardRepository_Use_InsufficientBalanceLeavesRowUntouched(t *testing.T) {
	repo := NewGiftCardRepository(newTestDB(t))
	ctx := context.Background()

	g := testCard(domain.GiftCardActive, 5000)
	assert.NoError(t, repo.Create(ctx, g))

	code, err := repo.Use(ctx, g.ID, 6000, "", "", "lena")
	assert.NoError(t, err)
	assert.Equal(t, UseInsufficientBalance, code)

	got, err := repo.GetByID(ctx, g.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), got.BalanceCents)
	assert.Equal(t, domain.GiftCardActive, got.Status)

	usages, err := repo.ListUsages(ctx, g.ID)
	assert.NoError(t, err)
	assert.Empty(t, usages)
}

func TestGiftCardRepository_Use_ResultCodes(t *testing.T) {
	repo := NewGiftCardRepository(newTestDB(t))
	ctx := context.Background()

	code, err := repo.Use(ctx, uuid.NewString(), 1000, "", "", "lena")
	assert.NoError(t, err)
	assert.Equal(t, UseNotFound, code)

	pending := testCard(domain.GiftCardPending, 5000)
	assert.NoError(t, repo.Create(ctx, pending))
	code, err = repo.Use(ctx, pending.ID, 1000, "", "", "lena")
	assert.NoError(t, err)
	assert.Equal(t, UseNotActive, code)

	active := testCard(domain.GiftCardActive, 5000)
	assert.NoError(t, repo.Create(ctx, active))
	code, err = repo.Use(ctx, active.ID, 0, "", "", "lena")
	assert.NoError(t, err)
	assert.Equal(t, UseInvalidAmount, code)
}

func TestGiftCardRepository_Use_PartiallyUsedStillUsable(t *testing.T) {
	repo := NewGiftCardRepository(newTestDB(t))
	ctx := context.Background()

	g := testCard(domain.GiftCardActive, 10000)
	assert.NoError(t, repo.Create(ctx, g))

	code, err := repo.Use(ctx, g.ID, 4000, "", "", "lena")
	assert.NoError(t, err)
	assert.Equal(t, UseOK, code)

	code, err = repo.Use(ctx, g.ID, 6000, "", "", "lena")
	assert.NoError(t, err)
	assert.Equal(t, UseOK, code)

	got, err := repo.GetByID(ctx, g.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), got.BalanceCents)
	assert.Equal(t, domain.GiftCardUsed, got.Status)
}

func TestGiftCardRepository_FindByCode_ReturnsAllMatches(t *testing.T) {
	repo := NewGiftCardRepository(newTestDB(t))
	ctx := context.Background()

	a := testCard(domain.GiftCardActive, 5000)
	a.Code = "SHAREDCODE"
	assert.NoError(t, repo.Create(ctx, a))

	b := testCard(domain.GiftCardActive, 8000)
	b.Code = "SHAREDCODE"
	assert.NoError(t, repo.Create(ctx, b))

	matches, err := repo.FindByCode(ctx, "SHAREDCODE")
	assert.NoError(t, err)
	assert.Len(t, matches, 2)

	none, err := repo.FindByCode(ctx, "NOSUCHCODE")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestGiftCardRepository_SetStripeSession(t *testing.T) {
	repo := NewGiftCardRepository(newTestDB(t))
	ctx := context.Background()

	g := testCard(domain.GiftCardPending, 5000)
	assert.NoError(t, repo.Create(ctx, g))

	assert.NoError(t, repo.SetStripeSession(ctx, g.ID, "cs_123"))

	got, err := repo.GetByID(ctx, g.ID)
	assert.NoError(t, err)
	assert.Equal(t, "cs_123", got.StripeSessionID)
}
