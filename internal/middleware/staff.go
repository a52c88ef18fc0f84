package middleware

import (
	"net/http"
	"strings"

	jwtsvc "dayspa/internal/pkg/jwt"
	"dayspa/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// StaffAuth gates staff routes on a bearer token carrying a name claim,
// so gift-card usage is attributable to a person at the counter.
func StaffAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", "Missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwt.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}
		if claims.Role != "staff" && claims.Role != "admin" {
			response.AbortError(c, http.StatusForbidden, "forbidden", "Staff access required")
			return
		}

		c.Set("staff_name", claims.Name)
		c.Set("role", claims.Role)

		c.Next()
	}
}
