package repository

import (
	"context"
	"errors"
	"time"

	"dayspa/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrSlotConflict is returned when a booking would overlap an existing
// non-cancelled booking.
var ErrSlotConflict = errors.New("slot conflict")

type BusySlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func activeStatuses() []string {
	out := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		out[i] = string(s)
	}
	return out
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	Service            string     `gorm:"column:service"`
	StartTime          time.Time  `gorm:"column:start_time"`
	EndTime            time.Time  `gorm:"column:end_time"`
	CustomerName       string     `gorm:"column:customer_name"`
	CustomerEmail      string     `gorm:"column:customer_email"`
	CustomerPhone      string     `gorm:"column:customer_phone"`
	Notes              *string    `gorm:"column:notes"`
	Status             string     `gorm:"column:status"`
	PriceCents         int64      `gorm:"column:price_cents"`
	DepositCents       int64      `gorm:"column:deposit_cents"`
	PaymentIntentID    string     `gorm:"column:payment_intent_id"`
	RefundCents        int64      `gorm:"column:refund_cents"`
	RefundStatus       string     `gorm:"column:refund_status"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
	ConfirmedAt        *time.Time `gorm:"column:confirmed_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CompletedAt        *time.Time `gorm:"column:completed_at"`
	ReminderSentAt     *time.Time `gorm:"column:reminder_sent_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:              m.ID,
		Service:         m.Service,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		CustomerName:    m.CustomerName,
		CustomerEmail:   m.CustomerEmail,
		CustomerPhone:   m.CustomerPhone,
		Status:          domain.BookingStatus(m.Status),
		PriceCents:      m.PriceCents,
		DepositCents:    m.DepositCents,
		PaymentIntentID: m.PaymentIntentID,
		RefundCents:     m.RefundCents,
		RefundStatus:    domain.RefundStatus(m.RefundStatus),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		ConfirmedAt:     m.ConfirmedAt,
		CancelledAt:     m.CancelledAt,
		CompletedAt:     m.CompletedAt,
		ReminderSentAt:  m.ReminderSentAt,
	}
	if m.Notes != nil {
		b.Notes = *m.Notes
	}
	if m.CancellationReason != nil {
		b.CancellationReason = *m.CancellationReason
	}
	return b
}

func toBookingModel(b *domain.Booking) bookingModel {
	m := bookingModel{
		ID:              b.ID,
		Service:         b.Service,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		Status:          string(b.Status),
		PriceCents:      b.PriceCents,
		DepositCents:    b.DepositCents,
		PaymentIntentID: b.PaymentIntentID,
		RefundCents:     b.RefundCents,
		RefundStatus:    string(b.RefundStatus),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		ConfirmedAt:     b.ConfirmedAt,
		CancelledAt:     b.CancelledAt,
		CompletedAt:     b.CompletedAt,
		ReminderSentAt:  b.ReminderSentAt,
	}
	if b.Notes != "" {
		v := b.Notes
		m.Notes = &v
	}
	if b.CancellationReason != "" {
		v := b.CancellationReason
		m.CancellationReason = &v
	}
	return m
}

// Create inserts the booking only if no non-cancelled booking overlaps
// [start,end). The check and the insert run in one transaction, and the
// postgres exclusion constraint backstops the remaining race: its
// violation is surfaced as ErrSlotConflict too.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		q := `
SELECT COUNT(1)
FROM bookings
WHERE status IN ?
  AND start_time < ?
  AND end_time > ?
`
		if err := tx.Raw(q, activeStatuses(), b.EndTime, b.StartTime).Scan(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrSlotConflict
		}

		m := toBookingModel(b)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		*b = *toDomainBooking(m)
		return nil
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23P01 exclusion_violation, 23505 unique_violation
		if pgErr.Code == "23P01" || pgErr.Code == "23505" {
			return ErrSlotConflict
		}
	}
	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetBusySlots(ctx context.Context, from, to time.Time) ([]BusySlot, error) {
	var out []BusySlot
	q := `
SELECT start_time AS "start", end_time AS "end"
FROM bookings
WHERE status IN ?
  AND start_time < ?
  AND end_time > ?
ORDER BY start_time
`
	tx := r.db.WithContext(ctx).Raw(q, activeStatuses(), to, from).Scan(&out)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return out, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()}).Error
}

// SetDepositAmounts stores the computed price/deposit and moves the
// booking to awaiting_deposit in one update.
func (r *BookingRepository) SetDepositAmounts(ctx context.Context, id, priceCents, depositCents int64) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"price_cents":   priceCents,
			"deposit_cents": depositCents,
			"status":        string(domain.BookingAwaitingDeposit),
			"updated_at":    time.Now().UTC(),
		}).Error
}

// ConfirmIdempotent confirms the booking once. A redelivered confirmation
// for an already-confirmed (or cancelled) booking changes nothing and
// reports changed=false.
func (r *BookingRepository) ConfirmIdempotent(ctx context.Context, id int64, paymentIntentID string, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status IN ('pending', 'awaiting_deposit')", id).
		Updates(map[string]any{
			"status":            string(domain.BookingConfirmed),
			"payment_intent_id": paymentIntentID,
			"confirmed_at":      at,
			"updated_at":        at,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}

	// Distinguish "already confirmed" from "no such booking".
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// ClaimCancel moves the booking into the transient cancelling state.
// Exactly one caller wins the claim; everyone else sees changed=false.
// The claim is taken before the refund call so a concurrent cancellation
// cannot issue a second refund.
func (r *BookingRepository) ClaimCancel(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status NOT IN ('cancelling', 'cancelled')", id).
		Updates(map[string]any{
			"status":     string(domain.BookingCancelling),
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}

	// Distinguish "claimed or cancelled already" from "no such booking".
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// ReleaseCancel undoes a claim after a failed refund call, restoring the
// status the booking held before the claim.
func (r *BookingRepository) ReleaseCancel(ctx context.Context, id int64, previous domain.BookingStatus) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = 'cancelling'", id).
		Updates(map[string]any{
			"status":     string(previous),
			"updated_at": time.Now().UTC(),
		}).Error
}

// Cancel is the terminal transition; the guard on status makes the refund
// computation exactly-once even under concurrent cancellation requests.
func (r *BookingRepository) Cancel(ctx context.Context, id int64, reason string, refundCents int64, refundStatus domain.RefundStatus, at time.Time) error {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status <> 'cancelled'", id).
		Updates(map[string]any{
			"status":              string(domain.BookingCancelled),
			"cancellation_reason": reason,
			"refund_cents":        refundCents,
			"refund_status":       string(refundStatus),
			"cancelled_at":        at,
			"updated_at":          at,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DueForReminder lists confirmed bookings starting inside [from,to) whose
// reminder has not gone out yet.
func (r *BookingRepository) DueForReminder(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	var models []bookingModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND reminder_sent_at IS NULL AND start_time >= ? AND start_time < ?",
			string(domain.BookingConfirmed), from, to).
		Order("start_time").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// MarkReminded stamps reminder_sent_at once. The NULL guard means two
// overlapping reminder sweeps send at most one email per booking.
func (r *BookingRepository) MarkReminded(ctx context.Context, id int64, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND reminder_sent_at IS NULL", id).
		Updates(map[string]any{
			"reminder_sent_at": at,
			"updated_at":       at,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Patch applies an already allow-listed field map.
func (r *BookingRepository) Patch(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context, status string, limit, offset int) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&bookingModel{}).Order("start_time DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var models []bookingModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
