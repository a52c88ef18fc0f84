package middleware

import (
	"errors"
	"net/http"

	"dayspa/internal/pkg/response"
	"dayspa/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

// AdminAuth gates admin routes on the signed session cookie. There is no
// identity behind the token: possession of a valid, unexpired one is the
// whole authorization fact.
func AdminAuth(cookieName string, tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(cookieName)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "token_missing", "Admin session required")
			return
		}

		if _, err := tokens.Verify(tok); err != nil {
			response.AbortError(c, http.StatusUnauthorized, verifyErrorCode(err), "Invalid admin session")
			return
		}

		c.Next()
	}
}

func verifyErrorCode(err error) string {
	switch {
	case errors.Is(err, token.ErrMissing):
		return "token_missing"
	case errors.Is(err, token.ErrMalformed):
		return "token_malformed"
	case errors.Is(err, token.ErrInvalidBase64):
		return "invalid_base64"
	case errors.Is(err, token.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, token.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, token.ErrMissingClaims):
		return "missing_claims"
	case errors.Is(err, token.ErrExpired):
		return "expired"
	default:
		return "unauthorized"
	}
}
