package giftcard

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"strings"
	"time"

	"dayspa/internal/domain"
	"dayspa/internal/metrics"
	"dayspa/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fullIDThreshold: inputs of at least this length are treated as full
// identifiers (uuids are 36 chars), anything shorter as a redeem code.
const fullIDThreshold = 32

// Redeem codes avoid 0/O/1/I so staff can read them over the counter.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 10

type Service struct {
	cards    cardRepo
	checkout checkoutCreator
	notifs   notifier
	loggerf  func(format string, args ...interface{})

	now func() time.Time
}

func NewService(cards cardRepo, checkout checkoutCreator, notifs notifier, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		cards:    cards,
		checkout: checkout,
		notifs:   notifs,
		loggerf:  loggerf,
		now:      time.Now,
	}
}

// Purchase creates a pending card and a hosted checkout for it. The card
// only becomes usable when the payment webhook reports capture.
func (s *Service) Purchase(ctx context.Context, req PurchaseRequest) (*domain.GiftCard, string, error) {
	faceCents := int64(math.Round(req.Amount * 100))
	if faceCents <= 0 {
		return nil, "", ErrInvalidAmount
	}

	g := &domain.GiftCard{
		ID:             uuid.NewString(),
		Code:           newRedeemCode(),
		SenderName:     req.SenderName,
		SenderEmail:    req.SenderEmail,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		Message:        req.Message,
		FaceCents:      faceCents,
		BalanceCents:   faceCents,
		Status:         domain.GiftCardPending,
	}

	if err := s.cards.Create(ctx, g); err != nil {
		return nil, "", err
	}

	session, err := s.checkout.CreateGiftCardSession(ctx, g)
	if err != nil {
		return nil, "", err
	}
	if err := s.cards.SetStripeSession(ctx, g.ID, session.ID); err != nil {
		s.loggerf("level=error msg=failed to store checkout session card_id=%s err=%v", g.ID, err)
	}

	return g, session.URL, nil
}

// Redeem resolves a card by full id or short redeem code and marks it
// redeemed. Two cards sharing a short code is its own error, never
// silently resolved.
func (s *Service) Redeem(ctx context.Context, codeOrID, redeemedBy string) (*domain.GiftCard, error) {
	input := strings.TrimSpace(codeOrID)

	var card *domain.GiftCard
	if len(input) >= fullIDThreshold {
		// The id column is a UUID on postgres; a non-uuid input would
		// fail the cast there, so treat it as simply not found.
		if _, err := uuid.Parse(input); err != nil {
			return nil, ErrNotFound
		}
		g, err := s.cards.GetByID(ctx, input)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		card = g
	} else {
		matches, err := s.cards.FindByCode(ctx, strings.ToUpper(input))
		if err != nil {
			return nil, err
		}
		switch len(matches) {
		case 0:
			return nil, ErrNotFound
		case 1:
			card = &matches[0]
		default:
			return nil, ErrAmbiguousCode
		}
	}

	if card.Redeemed {
		return nil, ErrAlreadyRedeemed
	}
	if card.TestMode {
		return nil, ErrTestPurchase
	}
	if card.Status != domain.GiftCardActive && card.Status != domain.GiftCardPartiallyUsed {
		return nil, ErrNotActive
	}

	changed, err := s.cards.MarkRedeemed(ctx, card.ID, redeemedBy, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !changed {
		// Lost a redemption race.
		return nil, ErrAlreadyRedeemed
	}

	return s.cards.GetByID(ctx, card.ID)
}

// Use converts the dollar amount to cents and delegates the decrement to
// the atomic server-side procedure; this code only interprets its result.
func (s *Service) Use(ctx context.Context, cardID string, req UseRequest, usedBy string) (*domain.GiftCard, error) {
	amountCents := int64(math.Round(req.Amount * 100))

	code, err := s.cards.Use(ctx, cardID, amountCents, req.ServiceName, req.Notes, usedBy)
	if err != nil {
		return nil, err
	}

	switch code {
	case repository.UseOK:
	case repository.UseNotFound:
		return nil, ErrNotFound
	case repository.UseNotActive:
		return nil, ErrNotActive
	case repository.UseInvalidAmount:
		return nil, ErrInvalidAmount
	case repository.UseInsufficientBalance:
		return nil, ErrInsufficientBalance
	default:
		return nil, errors.New("unexpected use result: " + code)
	}

	metrics.GiftCardUses.Inc()

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	// The decrement is already committed; the receipt must not undo it.
	if s.notifs != nil {
		s.notifs.GiftCardUsed(ctx, card, amountCents, req.ServiceName)
	}

	return card, nil
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]domain.GiftCard, error) {
	return s.cards.List(ctx, status, limit, offset)
}

func (s *Service) Usages(ctx context.Context, cardID string) ([]domain.GiftCardUsage, error) {
	return s.cards.ListUsages(ctx, cardID)
}

func newRedeemCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
