package booking

import (
	"context"
	"time"

	"dayspa/internal/domain"
	"dayspa/internal/external"
	"dayspa/internal/repository"
)

// BookingRepository defines the storage operations the service needs.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetBusySlots(ctx context.Context, from, to time.Time) ([]repository.BusySlot, error)
	ClaimCancel(ctx context.Context, id int64) (bool, error)
	ReleaseCancel(ctx context.Context, id int64, previous domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, reason string, refundCents int64, refundStatus domain.RefundStatus, at time.Time) error
	Patch(ctx context.Context, id int64, fields map[string]any) error
	List(ctx context.Context, status string, limit, offset int) ([]domain.Booking, error)
	DueForReminder(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
	MarkReminded(ctx context.Context, id int64, at time.Time) (bool, error)
}

// RefundIssuer issues refunds against a captured payment.
type RefundIssuer interface {
	CreateRefund(ctx context.Context, paymentIntentID string, amountCents int64) (*external.Refund, error)
}

// Notifier sends booking emails. Sends are best-effort and never fail the
// operation that triggered them.
type Notifier interface {
	BookingReceived(ctx context.Context, b *domain.Booking)
	BookingCancelled(ctx context.Context, b *domain.Booking)
	BookingReminder(ctx context.Context, b *domain.Booking)
}
