package giftcard

import (
	"context"
	"time"

	"dayspa/internal/domain"
	"dayspa/internal/external"
)

type cardRepo interface {
	Create(ctx context.Context, g *domain.GiftCard) error
	GetByID(ctx context.Context, id string) (*domain.GiftCard, error)
	FindByCode(ctx context.Context, code string) ([]domain.GiftCard, error)
	SetStripeSession(ctx context.Context, id, sessionID string) error
	MarkRedeemed(ctx context.Context, id, redeemedBy string, at time.Time) (bool, error)
	Use(ctx context.Context, id string, amountCents int64, serviceName, notes, usedBy string) (string, error)
	List(ctx context.Context, status string, limit, offset int) ([]domain.GiftCard, error)
	ListUsages(ctx context.Context, cardID string) ([]domain.GiftCardUsage, error)
}

type checkoutCreator interface {
	CreateGiftCardSession(ctx context.Context, g *domain.GiftCard) (*external.CheckoutSession, error)
}

type notifier interface {
	GiftCardUsed(ctx context.Context, g *domain.GiftCard, amountCents int64, serviceName string)
}
