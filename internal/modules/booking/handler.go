package booking

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
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/availability", h.Availability)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownService):
			response.Error(c, http.StatusBadRequest, "invalid_service", "Unknown service")
		case errors.Is(err, ErrInvalidData):
			response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid date or time")
		case errors.Is(err, ErrPastBooking):
			response.Error(c, http.StatusBadRequest, "booking_in_past", "Booking start is in the past")
		case errors.Is(err, ErrSlotTaken):
			response.Error(c, http.StatusConflict, "time_taken", "The selected time is no longer available")
		default:
			response.Error(c, http.StatusInternalServerError, "generic", "Failed to create booking")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"id":     b.ID,
		"status": b.Status,
		"end_at": b.EndTime,
	})
}

func (h *Handler) Availability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, "invalid_data", "date query parameter is required")
		return
	}

	slots, err := h.service.BusySlots(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, ErrInvalidData) {
			response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid date")
			return
		}
		response.Error(c, http.StatusInternalServerError, "generic", "Failed to load availability")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"date":       date,
		"busy_slots": slots,
	})
}
