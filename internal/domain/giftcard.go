package domain

import "time"

type GiftCardStatus string

const (
	GiftCardPending       GiftCardStatus = "pending"
	GiftCardActive        GiftCardStatus = "active"
	GiftCardPartiallyUsed GiftCardStatus = "partially_used"
	GiftCardUsed          GiftCardStatus = "used"
	GiftCardCancelled     GiftCardStatus = "cancelled"
	GiftCardExpired       GiftCardStatus = "expired"
)

// GiftCard is a purchased gift card or package. The card is created in
// pending status when the buyer starts checkout and becomes active once
// the payment provider reports capture. Balance only ever decreases.
type GiftCard struct {
	ID              string         `json:"id"`
	Code            string         `json:"code"`
	SenderName      string         `json:"sender_name"`
	SenderEmail     string         `json:"sender_email"`
	RecipientName   string         `json:"recipient_name"`
	RecipientEmail  string         `json:"recipient_email"`
	Message         string         `json:"message,omitempty" gorm:"type:text"`
	FaceCents       int64          `json:"face_cents"`
	BalanceCents    int64          `json:"balance_cents"`
	Status          GiftCardStatus `json:"status"`
	TestMode        bool           `json:"test_mode"`
	Redeemed        bool           `json:"redeemed"`
	RedeemedAt      *time.Time     `json:"redeemed_at,omitempty"`
	RedeemedBy      string         `json:"redeemed_by,omitempty"`
	StripeSessionID string         `json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Usable reports whether the card can still pay for services.
func (g *GiftCard) Usable() bool {
	return (g.Status == GiftCardActive || g.Status == GiftCardPartiallyUsed) && g.BalanceCents > 0
}

// GiftCardUsage is one balance decrement applied to a card.
type GiftCardUsage struct {
	ID          int64     `json:"id"`
	GiftCardID  string    `json:"gift_card_id"`
	AmountCents int64     `json:"amount_cents"`
	ServiceName string    `json:"service_name,omitempty"`
	Notes       string    `json:"notes,omitempty" gorm:"type:text"`
	UsedBy      string    `json:"used_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
