package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dayspa/internal/domain"
	"dayspa/internal/metrics"
	"dayspa/internal/repository"

	"gorm.io/gorm"
)

const defaultCancellationReason = "Cancelled by admin"

// patchableFields is the patch allow-list. Everything else is rejected by
// name.
var patchableFields = map[string]bool{
	"status":              true,
	"completed_at":        true,
	"cancellation_reason": true,
}

type Service struct {
	bookings BookingRepository
	refunds  RefundIssuer
	notifs   Notifier
	loc      *time.Location
	loggerf  func(format string, args ...interface{})

	now func() time.Time
}

func NewService(bookings BookingRepository, refunds RefundIssuer, notifs Notifier, loc *time.Location, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		bookings: bookings,
		refunds:  refunds,
		notifs:   notifs,
		loc:      loc,
		loggerf:  loggerf,
		now:      time.Now,
	}
}

// CreateBooking resolves the service from the catalog, computes the
// appointment interval in the business timezone and inserts a pending
// booking if the slot is free.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	svc, ok := domain.LookupService(req.Service)
	if !ok {
		return nil, ErrUnknownService
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, s.loc)
	if err != nil {
		return nil, ErrInvalidData
	}
	if start.Before(s.now()) {
		return nil, ErrPastBooking
	}
	end := start.Add(svc.DurationFor())

	b := &domain.Booking{
		Service:       svc.Name,
		StartTime:     start,
		EndTime:       end,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		Notes:         req.Notes,
		Status:        domain.BookingPending,
		PriceCents:    svc.PriceCents,
		DepositCents:  DepositCents(svc.PriceCents),
		RefundStatus:  domain.RefundNone,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	metrics.BookingsCreated.Inc()

	if s.notifs != nil {
		s.notifs.BookingReceived(ctx, b)
	}

	return b, nil
}

// CancelBooking is the terminal transition. The cancellation is claimed
// first with a guarded flip to the cancelling state, so the refund is
// issued at most once even under concurrent requests; a refund-API
// failure releases the claim and aborts the cancellation so the
// financial obligation stays visible and retryable.
func (s *Service) CancelBooking(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if b.Status == domain.BookingCancelled || b.Status == domain.BookingCancelling {
		return nil, ErrInvalidStatusTransition
	}

	claimed, err := s.bookings.ClaimCancel(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !claimed {
		// Lost a cancellation race; the other caller's refund stands.
		return nil, ErrInvalidStatusTransition
	}

	if reason == "" {
		reason = defaultCancellationReason
	}

	refundCents := int64(0)
	refundStatus := domain.RefundNone
	if b.PaymentIntentID != "" {
		hours := HoursUntil(b.StartTime, s.now())
		refundCents, refundStatus = RefundForCancellation(b.DepositCents, hours)

		if refundCents > 0 {
			if _, err := s.refunds.CreateRefund(ctx, b.PaymentIntentID, refundCents); err != nil {
				if relErr := s.bookings.ReleaseCancel(ctx, id, b.Status); relErr != nil {
					s.loggerf("level=error msg=failed to release cancellation claim booking_id=%d err=%v", id, relErr)
				}
				return nil, fmt.Errorf("issue refund: %w", err)
			}
		}
	}

	if err := s.bookings.Cancel(ctx, id, reason, refundCents, refundStatus, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}

	b, err = s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.BookingsCancelled.Inc()

	if s.notifs != nil {
		s.notifs.BookingCancelled(ctx, b)
	}

	return b, nil
}

// PatchBooking applies an admin patch. Only status, completed_at and
// cancellation_reason are mutable; setting status to cancelled routes
// through CancelBooking so the refund logic runs exactly once.
func (s *Service) PatchBooking(ctx context.Context, id int64, patch map[string]any) (*domain.Booking, error) {
	for k := range patch {
		if !patchableFields[k] {
			return nil, &UnknownFieldError{Field: k}
		}
	}

	fields := make(map[string]any, len(patch))

	if raw, ok := patch["status"]; ok {
		status, ok := raw.(string)
		if !ok {
			return nil, ErrInvalidData
		}
		switch domain.BookingStatus(status) {
		case domain.BookingCancelled:
			reason, _ := patch["cancellation_reason"].(string)
			return s.CancelBooking(ctx, id, reason)
		case domain.BookingPending, domain.BookingAwaitingDeposit, domain.BookingConfirmed:
			fields["status"] = status
		default:
			return nil, ErrInvalidData
		}
	}

	if raw, ok := patch["completed_at"]; ok {
		str, ok := raw.(string)
		if !ok {
			return nil, ErrInvalidData
		}
		at, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return nil, ErrInvalidData
		}
		fields["completed_at"] = at
	}

	if raw, ok := patch["cancellation_reason"]; ok {
		reason, ok := raw.(string)
		if !ok {
			return nil, ErrInvalidData
		}
		fields["cancellation_reason"] = reason
	}

	if err := s.bookings.Patch(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.bookings.GetByID(ctx, id)
}

// BusySlots returns the occupied intervals for one calendar day so the
// booking form can grey them out.
func (s *Service) BusySlots(ctx context.Context, dateStr string) ([]repository.BusySlot, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, s.loc)
	if err != nil {
		return nil, ErrInvalidData
	}
	return s.bookings.GetBusySlots(ctx, day, day.Add(24*time.Hour))
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.List(ctx, status, limit, offset)
}

// ReminderWindow is how far ahead of the appointment the reminder email
// goes out.
const ReminderWindow = 24 * time.Hour

// SendReminders emails every confirmed booking starting within the next
// ReminderWindow that has not been reminded yet. Each booking is claimed
// with a guarded reminder_sent_at stamp before the send, so overlapping
// sweeps email a customer at most once.
func (s *Service) SendReminders(ctx context.Context) error {
	now := s.now().UTC()
	due, err := s.bookings.DueForReminder(ctx, now, now.Add(ReminderWindow))
	if err != nil {
		return err
	}

	for i := range due {
		b := &due[i]

		changed, err := s.bookings.MarkReminded(ctx, b.ID, now)
		if err != nil {
			s.loggerf("level=error msg=failed to mark reminder booking_id=%d err=%v", b.ID, err)
			continue
		}
		if !changed {
			// Another sweep got here first.
			continue
		}

		if s.notifs != nil {
			s.notifs.BookingReminder(ctx, b)
		}
	}

	return nil
}
