// Package metrics holds the business-level prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dayspa_bookings_created_total",
		Help: "Bookings accepted into pending state.",
	})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dayspa_bookings_cancelled_total",
		Help: "Bookings cancelled.",
	})

	PaymentsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dayspa_payments_confirmed_total",
		Help: "Deposit payments confirmed via webhook.",
	})

	GiftCardUses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dayspa_gift_card_uses_total",
		Help: "Successful gift card balance decrements.",
	})

	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dayspa_emails_sent_total",
		Help: "Transactional emails accepted by the provider.",
	})
)
