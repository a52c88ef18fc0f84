package payment

import (
	"context"
	"time"

	"dayspa/internal/domain"
	"dayspa/internal/external"
)

type bookingRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetDepositAmounts(ctx context.Context, id, priceCents, depositCents int64) error
	ConfirmIdempotent(ctx context.Context, id int64, paymentIntentID string, at time.Time) (bool, error)
}

type giftCardRepo interface {
	GetByID(ctx context.Context, id string) (*domain.GiftCard, error)
	Activate(ctx context.Context, id string) (bool, error)
}

type stripeGateway interface {
	CreateCheckoutSession(ctx context.Context, p external.CheckoutSessionParams) (*external.CheckoutSession, error)
	ConstructEvent(payload []byte, sigHeader string, tolerance time.Duration) (*external.WebhookEvent, error)
}

type notifier interface {
	DepositRequested(ctx context.Context, b *domain.Booking, payURL string)
	BookingConfirmed(ctx context.Context, b *domain.Booking)
	GiftCardReceipt(ctx context.Context, g *domain.GiftCard)
	GiftCardDelivery(ctx context.Context, g *domain.GiftCard)
}
