package catalog

import (
	"net/http"

	"dayspa/internal/domain"
	"dayspa/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/services", h.ListServices)
}

func (h *Handler) ListServices(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"services": domain.Catalog})
}
