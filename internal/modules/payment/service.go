package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dayspa/internal/domain"
	"dayspa/internal/external"
	"dayspa/internal/metrics"
	"dayspa/internal/modules/booking"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("booking not found")
	ErrAlreadyConfirmed = errors.New("booking already confirmed")
	ErrBookingCancelled = errors.New("booking is cancelled")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

const (
	eventCheckoutCompleted = "checkout.session.completed"
	webhookTolerance       = 5 * time.Minute
)

type Service struct {
	bookings bookingRepo
	cards    giftCardRepo
	stripe   stripeGateway
	notifs   notifier
	baseURL  string
	loggerf  func(format string, args ...interface{})

	now func() time.Time
}

func NewService(bookings bookingRepo, cards giftCardRepo, stripe stripeGateway, notifs notifier, baseURL string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings: bookings,
		cards:    cards,
		stripe:   stripe,
		notifs:   notifs,
		baseURL:  baseURL,
		loggerf:  loggerf,
		now:      time.Now,
	}
}

// CreateDepositSession opens a hosted checkout for the booking's deposit
// and moves the booking to awaiting_deposit. The booking id rides along
// as correlation metadata for the webhook.
func (s *Service) CreateDepositSession(ctx context.Context, bookingID int64) (string, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if b.Status == domain.BookingConfirmed {
		return "", ErrAlreadyConfirmed
	}
	if b.Status == domain.BookingCancelled {
		return "", ErrBookingCancelled
	}

	price := b.PriceCents
	deposit := b.DepositCents
	if price == 0 {
		svc, ok := domain.LookupService(b.Service)
		if !ok {
			return "", fmt.Errorf("booking %d references unknown service %q", b.ID, b.Service)
		}
		price = svc.PriceCents
	}
	if deposit == 0 {
		deposit = booking.DepositCents(price)
	}
	if err := s.bookings.SetDepositAmounts(ctx, b.ID, price, deposit); err != nil {
		return "", err
	}
	b.PriceCents = price
	b.DepositCents = deposit

	session, err := s.stripe.CreateCheckoutSession(ctx, external.CheckoutSessionParams{
		AmountCents:   deposit,
		Currency:      "usd",
		ProductName:   fmt.Sprintf("Deposit: %s", b.Service),
		CustomerEmail: b.CustomerEmail,
		SuccessURL:    s.baseURL + "/booking/confirmed",
		CancelURL:     s.baseURL + "/booking/payment-cancelled",
		Metadata: map[string]string{
			"booking_id": strconv.FormatInt(b.ID, 10),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create deposit session: %w", err)
	}

	if s.notifs != nil {
		s.notifs.DepositRequested(ctx, b, session.URL)
	}

	return session.URL, nil
}

// CreateGiftCardSession opens a checkout for a pending gift card; the
// card activates only when the webhook reports capture.
func (s *Service) CreateGiftCardSession(ctx context.Context, g *domain.GiftCard) (*external.CheckoutSession, error) {
	session, err := s.stripe.CreateCheckoutSession(ctx, external.CheckoutSessionParams{
		AmountCents:   g.FaceCents,
		Currency:      "usd",
		ProductName:   "Gift Card",
		CustomerEmail: g.SenderEmail,
		SuccessURL:    s.baseURL + "/gift-cards/thank-you",
		CancelURL:     s.baseURL + "/gift-cards",
		Metadata: map[string]string{
			"gift_card_id": g.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gift card session: %w", err)
	}
	return session, nil
}

// HandleWebhook verifies the provider signature and dispatches the event.
// Signature failure is fatal to the request; redelivered events are
// no-ops.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.stripe.ConstructEvent(payload, sigHeader, webhookTolerance)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != eventCheckoutCompleted {
		s.loggerf("level=info msg=ignoring webhook event type=%s id=%s", event.Type, event.ID)
		return nil
	}

	meta := event.Data.Object.Metadata
	if id := meta["booking_id"]; id != "" {
		return s.confirmBooking(ctx, id, event.Data.Object.PaymentIntent)
	}
	if id := meta["gift_card_id"]; id != "" {
		return s.activateGiftCard(ctx, id)
	}

	s.loggerf("level=warn msg=checkout completed without correlation metadata event_id=%s", event.ID)
	return nil
}

func (s *Service) confirmBooking(ctx context.Context, correlationID, paymentIntentID string) error {
	bookingID, err := strconv.ParseInt(correlationID, 10, 64)
	if err != nil {
		s.loggerf("level=warn msg=webhook carried malformed booking id id=%q", correlationID)
		return nil
	}

	changed, err := s.bookings.ConfirmIdempotent(ctx, bookingID, paymentIntentID, s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=warn msg=webhook references unknown booking booking_id=%d", bookingID)
			return nil
		}
		return err
	}
	if !changed {
		// Redelivery of a confirmation we already processed.
		s.loggerf("level=info msg=idempotent confirmation skipped booking_id=%d", bookingID)
		return nil
	}

	metrics.PaymentsConfirmed.Inc()

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if s.notifs != nil {
		s.notifs.BookingConfirmed(ctx, b)
	}

	return nil
}

func (s *Service) activateGiftCard(ctx context.Context, cardID string) error {
	changed, err := s.cards.Activate(ctx, cardID)
	if err != nil {
		return err
	}
	if !changed {
		s.loggerf("level=info msg=idempotent gift card activation skipped card_id=%s", cardID)
		return nil
	}

	g, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if s.notifs != nil {
		s.notifs.GiftCardReceipt(ctx, g)
		s.notifs.GiftCardDelivery(ctx, g)
	}

	return nil
}
