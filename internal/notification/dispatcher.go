package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"dayspa/internal/domain"
	"dayspa/internal/external"
	"dayspa/internal/metrics"
)

// Mailer is what the dispatcher needs from the email provider.
type Mailer interface {
	Send(ctx context.Context, e external.Email) error
}

// Dispatcher composes and sends the transactional emails. Every send is
// best-effort: the state change that triggered it has already committed,
// so failures are logged and swallowed here rather than bubbled up.
type Dispatcher struct {
	mailer     Mailer
	from       string
	adminEmail string
	loggerf    func(format string, args ...interface{})
}

func NewDispatcher(mailer Mailer, from, adminEmail string, loggerf func(format string, args ...interface{})) *Dispatcher {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Dispatcher{
		mailer:     mailer,
		from:       from,
		adminEmail: adminEmail,
		loggerf:    loggerf,
	}
}

func (d *Dispatcher) BookingReceived(ctx context.Context, b *domain.Booking) {
	d.send(ctx, external.Email{
		From:    d.from,
		To:      []string{b.CustomerEmail},
		Subject: "We received your booking request",
		Text: fmt.Sprintf(
			"Hi %s,\n\nWe received your request for %s on %s. We'll send a deposit link shortly to confirm your appointment.\n",
			b.CustomerName, b.Service, formatSlot(b)),
	})

	if d.adminEmail != "" {
		d.send(ctx, external.Email{
			From:    d.from,
			To:      []string{d.adminEmail},
			Subject: fmt.Sprintf("New booking request: %s", b.Service),
			Text: fmt.Sprintf("Booking #%d: %s, %s (%s, %s)\nNotes: %s\n",
				b.ID, b.Service, formatSlot(b), b.CustomerName, b.CustomerEmail, b.Notes),
		})
	}
}

func (d *Dispatcher) DepositRequested(ctx context.Context, b *domain.Booking, payURL string) {
	d.send(ctx, external.Email{
		From:    d.from,
		To:      []string{b.CustomerEmail},
		Subject: "Deposit request for your appointment",
		Text: fmt.Sprintf(
			"Hi %s,\n\nTo confirm your %s on %s, please pay the %s deposit:\n\n%s\n",
			b.CustomerName, b.Service, formatSlot(b), formatCents(b.DepositCents), payURL),
	})
}

func (d *Dispatcher) BookingConfirmed(ctx context.Context, b *domain.Booking) {
	invite := BuildInvite(
		fmt.Sprintf("booking-%d@dayspa", b.ID),
		b.Service,
		fmt.Sprintf("Appointment for %s", b.CustomerName),
		b.StartTime, b.EndTime,
	)

	d.send(ctx, external.Email{
		From:    d.from,
		To:      []string{b.CustomerEmail},
		Subject: "Your appointment is confirmed",
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour %s on %s is confirmed. Deposit received: %s.\n\nSee you soon!\n",
			b.CustomerName, b.Service, formatSlot(b), formatCents(b.DepositCents)),
		Attachments: []external.Attachment{{
			Filename:    "appointment.ics",
			Content:     base64.StdEncoding.EncodeToString([]byte(invite)),
			ContentType: "text/calendar",
		}},
	})
}

func (d *Dispatcher) BookingCancelled(ctx context.Context, b *domain.Booking) {
	refundLine := "No refund applies."
	switch b.RefundStatus {
	case domain.RefundFull:
		refundLine = fmt.Sprintf("Your deposit of %s will be refunded in full.", formatCents(b.RefundCents))
	case domain.RefundPartial:
		refundLine = fmt.Sprintf("A partial refund of %s is on its way.", formatCents(b.RefundCents))
	}

	d.send(ctx, external.Email{
		From:    d.from,
		To:      []string{b.CustomerEmail},
		Subject: "Your appointment was cancelled",
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour %s on %s was cancelled. %s\nReason: %s\n",
			b.CustomerName, b.Service, formatSlot(b), refundLine, b.CancellationReason),
	})
}

func (d *Dispatcher) BookingReminder(ctx context.Context, b *domain.Booking) {
	d.send(ctx, external.Email{
		From:    d.from,
		To:      []string{b.CustomerEmail},
		Subject: "Reminder: your appointment is coming up",
		Text: fmt.Sprintf(
			"Hi %s,\n\nThis is a reminder that your %s is on %s. We look forward to seeing you!\n",
			b.CustomerName, b.Service, formatSlot(b)),
	})
}

func (d *Dispatcher) GiftCardReceipt(ctx context.Context, g *domain.GiftCard) {
	d.send(ctx, external.Email{
		From:    d.from,
		To:      []string{g.SenderEmail},
		Subject: "Your gift card purchase",
		Text: fmt.Sprintf(
			"Hi %s,\n\nThanks for your purchase! A %s gift card is on its way to %s.\n",
			g.SenderName, formatCents(g.FaceCents), g.RecipientName),
	})
}

func (d *Dispatcher) GiftCardDelivery(ctx context.Context, g *domain.GiftCard) {
	msg := ""
	if g.Message != "" {
		msg = fmt.Sprintf("\nMessage from %s:\n%s\n", g.SenderName, g.Message)
	}
	d.send(ctx, external.Email{
		From:    d.from,
		To:      []string{g.RecipientEmail},
		Subject: fmt.Sprintf("%s sent you a gift card!", g.SenderName),
		Text: fmt.Sprintf(
			"Hi %s,\n\nYou received a %s gift card. Your redeem code is %s — bring it to your next visit.\n%s",
			g.RecipientName, formatCents(g.FaceCents), g.Code, msg),
	})
}

func (d *Dispatcher) GiftCardUsed(ctx context.Context, g *domain.GiftCard, amountCents int64, serviceName string) {
	if g.RecipientEmail == "" {
		return
	}
	svc := serviceName
	if svc == "" {
		svc = "services"
	}
	d.send(ctx, external.Email{
		From:    d.from,
		To:      []string{g.RecipientEmail},
		Subject: "Gift card receipt",
		Text: fmt.Sprintf(
			"%s was applied to %s. Remaining balance: %s.\n",
			formatCents(amountCents), svc, formatCents(g.BalanceCents)),
	})
}

func (d *Dispatcher) send(ctx context.Context, e external.Email) {
	// Bounded: a slow provider must not hold the request hostage.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	if err := d.mailer.Send(sendCtx, e); err != nil {
		d.loggerf("level=error msg=email send failed subject=%q to=%v err=%v", e.Subject, e.To, err)
		return
	}
	metrics.EmailsSent.Inc()
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func formatSlot(b *domain.Booking) string {
	return fmt.Sprintf("%s – %s",
		b.StartTime.Format("Mon, Jan 2 2006 at 3:04 PM"),
		b.EndTime.Format("3:04 PM"))
}
