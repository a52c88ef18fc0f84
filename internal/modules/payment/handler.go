package payment

import (
	"errors"
	"net/http"

	"dayspa/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/deposit-session", h.CreateDepositSession)
	rg.POST("/payments/webhook", h.Webhook)
}

func (h *Handler) CreateDepositSession(c *gin.Context) {
	var req DepositSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid request body")
		return
	}

	url, err := h.service.CreateDepositSession(c.Request.Context(), req.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "not_found", "Booking not found")
		case errors.Is(err, ErrAlreadyConfirmed):
			response.Error(c, http.StatusConflict, "already_confirmed", "Booking is already confirmed")
		case errors.Is(err, ErrBookingCancelled):
			response.Error(c, http.StatusConflict, "cancelled", "Booking is cancelled")
		default:
			response.Error(c, http.StatusInternalServerError, "generic", "Failed to create payment session")
		}
		return
	}

	response.Success(c, http.StatusOK, DepositSessionResponse{URL: url})
}

// Webhook receives the payment provider's signed callbacks. An invalid
// signature rejects the request; processing errors return 500 so the
// provider redelivers.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Unreadable payload")
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			response.Error(c, http.StatusBadRequest, "invalid_signature", "Webhook signature verification failed")
			return
		}
		response.Error(c, http.StatusInternalServerError, "generic", "Failed to process webhook")
		return
	}

	c.Status(http.StatusOK)
}
