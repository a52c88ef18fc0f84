package admin

import (
	"errors"
	"net/http"
	"strconv"

	"dayspa/internal/modules/booking"
	"dayspa/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminCookieName carries the signed admin session token.
const AdminCookieName = "admin_session"

type Handler struct {
	service  *Service
	bookings *booking.Service
}

func NewHandler(service *Service, bookings *booking.Service) *Handler {
	return &Handler{service: service, bookings: bookings}
}

// RegisterPublicRoutes registers the login route, the only admin route
// reachable without the cookie.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/login", h.Login)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/logout", h.Logout)
	rg.GET("/bookings", h.ListBookings)
	rg.PATCH("/bookings/:id", h.PatchBooking)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
	rg.POST("/staff-tokens", h.MintStaffToken)
}

// Login godoc
// @Summary Admin Login
// @Description Authenticate with the shared admin password and receive the session cookie
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Router /admin/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid request body")
		return
	}

	tok, err := h.service.Login(req.Password)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid password")
		return
	}

	c.SetCookie(AdminCookieName, tok, h.service.TokenTTLSeconds(), "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"logged_in": true})
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(AdminCookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"logged_in": false})
}

func (h *Handler) ListBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, err := h.bookings.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "generic", "Failed to list bookings")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

// PatchBooking applies an allow-listed patch. Unknown fields are rejected
// by name; status=cancelled runs the full cancellation (refund included).
func (h *Handler) PatchBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid booking id")
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid request body")
		return
	}

	b, err := h.bookings.PatchBooking(c.Request.Context(), id, patch)
	if err != nil {
		var unknownField *booking.UnknownFieldError
		switch {
		case errors.As(err, &unknownField):
			response.Error(c, http.StatusBadRequest, "unknown_field", "Field is not patchable: "+unknownField.Field)
		case errors.Is(err, booking.ErrInvalidData):
			response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid patch value")
		case errors.Is(err, booking.ErrNotFound):
			response.Error(c, http.StatusNotFound, "not_found", "Booking not found")
		case errors.Is(err, booking.ErrInvalidStatusTransition):
			response.Error(c, http.StatusConflict, "invalid_transition", "Booking is already cancelled")
		default:
			response.Error(c, http.StatusInternalServerError, "generic", "Failed to patch booking")
		}
		return
	}

	response.Success(c, http.StatusOK, b)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid booking id")
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid request body")
		return
	}

	b, err := h.bookings.CancelBooking(c.Request.Context(), id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			response.Error(c, http.StatusNotFound, "not_found", "Booking not found")
		case errors.Is(err, booking.ErrInvalidStatusTransition):
			response.Error(c, http.StatusConflict, "invalid_transition", "Booking is already cancelled")
		default:
			// Includes refund-API failures: the booking stays uncancelled.
			response.Error(c, http.StatusInternalServerError, "generic", "Failed to cancel booking")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":            b.ID,
		"status":        b.Status,
		"refund_cents":  b.RefundCents,
		"refund_status": b.RefundStatus,
	})
}

func (h *Handler) MintStaffToken(c *gin.Context) {
	var req StaffTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid request body")
		return
	}

	tok, err := h.service.MintStaffToken(req.Name)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "generic", "Failed to mint staff token")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": tok})
}
