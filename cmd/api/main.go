package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dayspa/internal/config"
	"dayspa/internal/database"
	"dayspa/internal/external"
	"dayspa/internal/middleware"
	"dayspa/internal/modules/admin"
	"dayspa/internal/modules/booking"
	"dayspa/internal/modules/catalog"
	"dayspa/internal/modules/giftcard"
	"dayspa/internal/modules/payment"
	"dayspa/internal/notification"
	jwtsvc "dayspa/internal/pkg/jwt"
	"dayspa/internal/pkg/token"
	"dayspa/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatal(err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	cardRepo := repository.NewGiftCardRepository(db)

	stripeClient := external.NewStripeClient(external.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	})
	mailer := external.NewResendClient(external.ResendConfig{
		APIKey: cfg.ResendAPIKey,
	})
	notifs := notification.NewDispatcher(mailer, cfg.FromEmail, cfg.AdminEmail, log.Printf)

	adminTokens := token.New(cfg.AdminSecret, cfg.AdminTokenTTL)
	staffTokens := jwtsvc.New(cfg.StaffTokenSecret, cfg.AdminTokenTTL)

	bookingService := booking.NewService(bookingRepo, stripeClient, notifs, cfg.BusinessTimezone, log.Printf)
	bookingHandler := booking.NewHandler(bookingService)

	paymentService := payment.NewService(bookingRepo, cardRepo, stripeClient, notifs, cfg.BaseURL, log.Printf)
	paymentHandler := payment.NewHandler(paymentService)

	cardService := giftcard.NewService(cardRepo, paymentService, notifs, log.Printf)
	cardHandler := giftcard.NewHandler(cardService)

	adminService := admin.NewService(cfg.AdminPasswordHash, adminTokens, staffTokens)
	adminHandler := admin.NewHandler(adminService, bookingService)

	catalogHandler := catalog.NewHandler()

	// Hourly reminder sweep. Each sweep claims its bookings with a
	// guarded stamp, so a restart mid-sweep cannot double-send.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := bookingService.SendReminders(context.Background()); err != nil {
				log.Printf("level=error msg=reminder sweep failed err=%v", err)
			}
		}
	}()

	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.CORS(), middleware.Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// public
		catalogHandler.RegisterRoutes(v1)
		bookingHandler.RegisterRoutes(v1)
		paymentHandler.RegisterRoutes(v1)
		cardHandler.RegisterPublicRoutes(v1)
		adminHandler.RegisterPublicRoutes(v1)

		// admin dashboard (cookie session)
		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.AdminAuth(admin.AdminCookieName, adminTokens))
		{
			adminHandler.RegisterProtectedRoutes(adminGroup)
			cardHandler.RegisterAdminRoutes(adminGroup)
		}

		// staff counter (bearer token)
		staffGroup := v1.Group("/staff")
		staffGroup.Use(middleware.StaffAuth(staffTokens))
		{
			cardHandler.RegisterStaffRoutes(staffGroup)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
