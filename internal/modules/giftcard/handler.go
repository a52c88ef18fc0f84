package giftcard

import (
	"errors"
	"net/http"
	"strconv"

	"dayspa/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/giftcards", h.Purchase)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/giftcards", h.List)
	rg.GET("/giftcards/:id/usages", h.Usages)
	rg.POST("/giftcards/redeem", h.Redeem)
}

func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.POST("/giftcards/:id/use", h.Use)
}

func (h *Handler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid request body")
		return
	}

	card, payURL, err := h.service.Purchase(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			response.Error(c, http.StatusBadRequest, "invalid_amount", "Amount must be positive")
			return
		}
		response.Error(c, http.StatusInternalServerError, "generic", "Failed to create gift card purchase")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"id":  card.ID,
		"url": payURL,
	})
}

// Redeem godoc
// @Summary Redeem a gift card
// @Description Resolve a card by redeem code or full id and mark it redeemed
// @Tags Admin Gift Cards
// @Accept json
// @Produce json
// @Router /admin/giftcards/redeem [post]
func (h *Handler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid request body")
		return
	}

	card, err := h.service.Redeem(c.Request.Context(), req.Code, "admin")
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "not_found", "Gift card not found")
		case errors.Is(err, ErrAmbiguousCode):
			response.Error(c, http.StatusConflict, "ambiguous_code", "Redeem code matches more than one card")
		case errors.Is(err, ErrAlreadyRedeemed):
			response.Error(c, http.StatusConflict, "already_redeemed", "Gift card was already redeemed")
		case errors.Is(err, ErrTestPurchase):
			response.Error(c, http.StatusConflict, "test_purchase", "Gift card is a test-mode purchase")
		case errors.Is(err, ErrNotActive):
			response.Error(c, http.StatusConflict, "not_active", "Gift card is not active")
		default:
			response.Error(c, http.StatusInternalServerError, "generic", "Failed to redeem gift card")
		}
		return
	}

	response.Success(c, http.StatusOK, card)
}

func (h *Handler) Use(c *gin.Context) {
	var req UseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_data", "Invalid request body")
		return
	}

	usedBy := c.GetString("staff_name")
	card, err := h.service.Use(c.Request.Context(), c.Param("id"), req, usedBy)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "not_found", "Gift card not found")
		case errors.Is(err, ErrNotActive):
			response.Error(c, http.StatusConflict, "not_active", "Gift card is not active")
		case errors.Is(err, ErrInvalidAmount):
			response.Error(c, http.StatusBadRequest, "invalid_amount", "Amount must be positive")
		case errors.Is(err, ErrInsufficientBalance):
			response.Error(c, http.StatusConflict, "insufficient_balance", "Amount exceeds remaining balance")
		default:
			response.Error(c, http.StatusInternalServerError, "generic", "Failed to apply gift card")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":            card.ID,
		"balance_cents": card.BalanceCents,
		"status":        card.Status,
	})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	cards, err := h.service.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "generic", "Failed to list gift cards")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"gift_cards": cards})
}

func (h *Handler) Usages(c *gin.Context) {
	usages, err := h.service.Usages(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "generic", "Failed to list usages")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"usages": usages})
}
