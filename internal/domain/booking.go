package domain

import "time"

type BookingStatus string

const (
	BookingPending         BookingStatus = "pending"
	BookingAwaitingDeposit BookingStatus = "awaiting_deposit"
	BookingConfirmed       BookingStatus = "confirmed"
	// BookingCancelling marks a cancellation claimed but not yet final:
	// the refund call is in flight. Exactly one caller can hold it.
	BookingCancelling BookingStatus = "cancelling"
	BookingCancelled  BookingStatus = "cancelled"
)

type RefundStatus string

const (
	RefundNone    RefundStatus = "none"
	RefundPartial RefundStatus = "partial"
	RefundFull    RefundStatus = "refunded"
)

type Booking struct {
	ID                 int64         `json:"id"`
	Service            string        `json:"service" validate:"required"`
	StartTime          time.Time     `json:"start_time" validate:"required"`
	EndTime            time.Time     `json:"end_time" validate:"required"`
	CustomerName       string        `json:"customer_name"`
	CustomerEmail      string        `json:"customer_email"`
	CustomerPhone      string        `json:"customer_phone"`
	Notes              string        `json:"notes,omitempty" gorm:"type:text"`
	Status             BookingStatus `json:"status"`
	PriceCents         int64         `json:"price_cents"`
	DepositCents       int64         `json:"deposit_cents"`
	PaymentIntentID    string        `json:"payment_intent_id,omitempty"`
	RefundCents        int64         `json:"refund_cents"`
	RefundStatus       RefundStatus  `json:"refund_status"`
	CancellationReason string        `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	ReminderSentAt     *time.Time    `json:"reminder_sent_at,omitempty"`
}

// ActiveStatuses are the statuses that occupy a time slot. A cancelled
// booking frees its interval; a cancelling one still holds it until the
// cancellation is final.
var ActiveStatuses = []BookingStatus{BookingPending, BookingAwaitingDeposit, BookingConfirmed, BookingCancelling}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Touching intervals (a.End == b.Start) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
