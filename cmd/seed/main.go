package main

import (
	"context"
	"log"
	"time"

	"dayspa/internal/database"
	"dayspa/internal/domain"
	"dayspa/internal/modules/booking"
	"dayspa/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	db, err := database.Connect("dayspa.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Migrations failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM gift_card_usages")
	db.Exec("DELETE FROM gift_cards")
	db.Exec("DELETE FROM bookings")

	ctx := context.Background()
	bookings := repository.NewBookingRepository(db)
	cards := repository.NewGiftCardRepository(db)

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Fatal(err)
	}
	tomorrow := time.Now().In(loc).AddDate(0, 0, 1).Truncate(24 * time.Hour)

	type slot struct {
		service string
		start   time.Time
		name    string
		email   string
		status  domain.BookingStatus
	}
	slots := []slot{
		{"Therapeutic Massage (60m)", tomorrow.Add(10 * time.Hour), "Ada Nowak", "ada@example.com", domain.BookingConfirmed},
		{"Signature Facial", tomorrow.Add(12 * time.Hour), "Ben Ito", "ben@example.com", domain.BookingAwaitingDeposit},
		{"Seqex Session (27m)", tomorrow.Add(15 * time.Hour), "Cleo Fall", "cleo@example.com", domain.BookingPending},
	}

	for _, s := range slots {
		svc, ok := domain.LookupService(s.service)
		if !ok {
			log.Fatalf("unknown service in seed data: %s", s.service)
		}
		b := &domain.Booking{
			Service:       svc.Name,
			StartTime:     s.start,
			EndTime:       s.start.Add(svc.DurationFor()),
			CustomerName:  s.name,
			CustomerEmail: s.email,
			Status:        domain.BookingPending,
			PriceCents:    svc.PriceCents,
			DepositCents:  booking.DepositCents(svc.PriceCents),
			RefundStatus:  domain.RefundNone,
		}
		if err := bookings.Create(ctx, b); err != nil {
			log.Fatal("seed booking failed:", err)
		}
		if s.status != domain.BookingPending {
			if err := bookings.UpdateStatus(ctx, b.ID, s.status); err != nil {
				log.Fatal("seed status update failed:", err)
			}
		}
	}

	// ================== GIFT CARDS ==================
	log.Println("Creating gift cards...")

	active := &domain.GiftCard{
		ID:             uuid.NewString(),
		Code:           "DEMO2ACTIV",
		SenderName:     "Dana Reed",
		SenderEmail:    "dana@example.com",
		RecipientName:  "Eli Park",
		RecipientEmail: "eli@example.com",
		Message:        "Happy birthday!",
		FaceCents:      15000,
		BalanceCents:   15000,
		Status:         domain.GiftCardActive,
	}
	if err := cards.Create(ctx, active); err != nil {
		log.Fatal("seed gift card failed:", err)
	}

	pending := &domain.GiftCard{
		ID:             uuid.NewString(),
		Code:           "DEMO2PENDG",
		SenderName:     "Finn Cole",
		SenderEmail:    "finn@example.com",
		RecipientName:  "Gia Lund",
		RecipientEmail: "gia@example.com",
		FaceCents:      5000,
		BalanceCents:   5000,
		Status:         domain.GiftCardPending,
	}
	if err := cards.Create(ctx, pending); err != nil {
		log.Fatal("seed gift card failed:", err)
	}

	// ================== ADMIN PASSWORD ==================
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Seed completed!")
	log.Println("Active gift card code: DEMO2ACTIV ($150.00)")
	log.Println("Admin password: admin123")
	log.Println("Export for the API process:")
	log.Printf("  ADMIN_PASSWORD_HASH='%s'", hash)
}
