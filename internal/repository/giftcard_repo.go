package repository

import (
	"context"
	"time"

	"dayspa/internal/database"
	"dayspa/internal/domain"

	"gorm.io/gorm"
)

// Use result codes, as returned by the use_gift_card function.
const (
	UseOK                  = "ok"
	UseNotFound            = "not_found"
	UseNotActive           = "not_active"
	UseInvalidAmount       = "invalid_amount"
	UseInsufficientBalance = "insufficient_balance"
)

type GiftCardRepository struct {
	db *gorm.DB
}

func NewGiftCardRepository(db *gorm.DB) *GiftCardRepository {
	return &GiftCardRepository{db: db}
}

type giftCardModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	Code            string     `gorm:"column:code"`
	SenderName      string     `gorm:"column:sender_name"`
	SenderEmail     string     `gorm:"column:sender_email"`
	RecipientName   string     `gorm:"column:recipient_name"`
	RecipientEmail  string     `gorm:"column:recipient_email"`
	Message         *string    `gorm:"column:message"`
	FaceCents       int64      `gorm:"column:face_cents"`
	BalanceCents    int64      `gorm:"column:balance_cents"`
	Status          string     `gorm:"column:status"`
	TestMode        bool       `gorm:"column:test_mode"`
	Redeemed        bool       `gorm:"column:redeemed"`
	RedeemedAt      *time.Time `gorm:"column:redeemed_at"`
	RedeemedBy      string     `gorm:"column:redeemed_by"`
	StripeSessionID string     `gorm:"column:stripe_session_id"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (giftCardModel) TableName() string { return "gift_cards" }

type giftCardUsageModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	GiftCardID  string    `gorm:"column:gift_card_id"`
	AmountCents int64     `gorm:"column:amount_cents"`
	ServiceName string    `gorm:"column:service_name"`
	Notes       *string   `gorm:"column:notes"`
	UsedBy      string    `gorm:"column:used_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (giftCardUsageModel) TableName() string { return "gift_card_usages" }

func toDomainGiftCard(m giftCardModel) *domain.GiftCard {
	g := &domain.GiftCard{
		ID:              m.ID,
		Code:            m.Code,
		SenderName:      m.SenderName,
		SenderEmail:     m.SenderEmail,
		RecipientName:   m.RecipientName,
		RecipientEmail:  m.RecipientEmail,
		FaceCents:       m.FaceCents,
		BalanceCents:    m.BalanceCents,
		Status:          domain.GiftCardStatus(m.Status),
		TestMode:        m.TestMode,
		Redeemed:        m.Redeemed,
		RedeemedAt:      m.RedeemedAt,
		RedeemedBy:      m.RedeemedBy,
		StripeSessionID: m.StripeSessionID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Message != nil {
		g.Message = *m.Message
	}
	return g
}

func toGiftCardModel(g *domain.GiftCard) giftCardModel {
	m := giftCardModel{
		ID:              g.ID,
		Code:            g.Code,
		SenderName:      g.SenderName,
		SenderEmail:     g.SenderEmail,
		RecipientName:   g.RecipientName,
		RecipientEmail:  g.RecipientEmail,
		FaceCents:       g.FaceCents,
		BalanceCents:    g.BalanceCents,
		Status:          string(g.Status),
		TestMode:        g.TestMode,
		Redeemed:        g.Redeemed,
		RedeemedAt:      g.RedeemedAt,
		RedeemedBy:      g.RedeemedBy,
		StripeSessionID: g.StripeSessionID,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
	if g.Message != "" {
		v := g.Message
		m.Message = &v
	}
	return m
}

func (r *GiftCardRepository) Create(ctx context.Context, g *domain.GiftCard) error {
	m := toGiftCardModel(g)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*g = *toDomainGiftCard(m)
	return nil
}

func (r *GiftCardRepository) GetByID(ctx context.Context, id string) (*domain.GiftCard, error) {
	var m giftCardModel
	tx := r.db.WithContext(ctx).Where("id = ?", id).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainGiftCard(m), nil
}

// SetStripeSession records the checkout session once it exists; the card
// id is already in the session metadata for the return trip.
func (r *GiftCardRepository) SetStripeSession(ctx context.Context, id, sessionID string) error {
	return r.db.WithContext(ctx).Model(&giftCardModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"stripe_session_id": sessionID, "updated_at": time.Now().UTC()}).Error
}

// FindByCode returns every card carrying the short redeem code. Short
// codes are not guaranteed unique; the caller decides what two matches
// mean.
func (r *GiftCardRepository) FindByCode(ctx context.Context, code string) ([]domain.GiftCard, error) {
	var models []giftCardModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.GiftCard, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainGiftCard(m))
	}
	return out, nil
}

// Activate flips a pending purchase to active once payment is captured.
// Redelivered webhooks find no pending row and report changed=false.
func (r *GiftCardRepository) Activate(ctx context.Context, id string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&giftCardModel{}).
		Where("id = ? AND status = ?", id, string(domain.GiftCardPending)).
		Updates(map[string]any{"status": string(domain.GiftCardActive), "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkRedeemed records the redemption in one guarded update; a second
// attempt affects no rows.
func (r *GiftCardRepository) MarkRedeemed(ctx context.Context, id, redeemedBy string, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&giftCardModel{}).
		Where("id = ? AND redeemed = ?", id, false).
		Updates(map[string]any{
			"redeemed":    true,
			"redeemed_at": at,
			"redeemed_by": redeemedBy,
			"updated_at":  at,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Use decrements the balance atomically and returns one of the Use*
// codes. On postgres this is a single call to the use_gift_card function;
// the sqlite path (local dev, tests) emulates the same check-and-decrement
// inside one transaction. Application code never updates balance_cents
// outside this method.
func (r *GiftCardRepository) Use(ctx context.Context, id string, amountCents int64, serviceName, notes, usedBy string) (string, error) {
	if database.IsPostgres(r.db) {
		var code string
		tx := r.db.WithContext(ctx).Raw(
			`SELECT use_gift_card(?::uuid, ?, ?, ?, ?)`,
			id, amountCents, serviceName, notes, usedBy,
		).Scan(&code)
		if tx.Error != nil {
			return "", tx.Error
		}
		return code, nil
	}

	code := UseOK
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if amountCents <= 0 {
			code = UseInvalidAmount
			return nil
		}

		var m giftCardModel
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				code = UseNotFound
				return nil
			}
			return err
		}

		if m.Status != string(domain.GiftCardActive) && m.Status != string(domain.GiftCardPartiallyUsed) {
			code = UseNotActive
			return nil
		}
		if m.BalanceCents < amountCents {
			code = UseInsufficientBalance
			return nil
		}

		newBalance := m.BalanceCents - amountCents
		newStatus := string(domain.GiftCardPartiallyUsed)
		if newBalance == 0 {
			newStatus = string(domain.GiftCardUsed)
		}

		res := tx.Model(&giftCardModel{}).
			Where("id = ? AND balance_cents = ?", id, m.BalanceCents).
			Updates(map[string]any{
				"balance_cents": newBalance,
				"status":        newStatus,
				"updated_at":    time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a concurrent decrement; the balance we read is stale.
			code = UseInsufficientBalance
			return nil
		}

		u := giftCardUsageModel{
			GiftCardID:  id,
			AmountCents: amountCents,
			ServiceName: serviceName,
			UsedBy:      usedBy,
			CreatedAt:   time.Now().UTC(),
		}
		if notes != "" {
			u.Notes = &notes
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

func (r *GiftCardRepository) List(ctx context.Context, status string, limit, offset int) ([]domain.GiftCard, error) {
	q := r.db.WithContext(ctx).Model(&giftCardModel{}).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var models []giftCardModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.GiftCard, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainGiftCard(m))
	}
	return out, nil
}

func (r *GiftCardRepository) ListUsages(ctx context.Context, cardID string) ([]domain.GiftCardUsage, error) {
	var models []giftCardUsageModel
	if err := r.db.WithContext(ctx).Where("gift_card_id = ?", cardID).Order("created_at").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.GiftCardUsage, 0, len(models))
	for _, m := range models {
		u := domain.GiftCardUsage{
			ID:          m.ID,
			GiftCardID:  m.GiftCardID,
			AmountCents: m.AmountCents,
			ServiceName: m.ServiceName,
			UsedBy:      m.UsedBy,
			CreatedAt:   m.CreatedAt,
		}
		if m.Notes != nil {
			u.Notes = *m.Notes
		}
		out = append(out, u)
	}
	return out, nil
}
