package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtsvc "dayspa/internal/pkg/jwt"
	"dayspa/internal/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const testCookieName = "admin_session"

func adminRouter(tokens *token.Service) *gin.Engine {
	router := gin.New()
	router.Use(AdminAuth(testCookieName, tokens))
	router.GET("/admin/bookings", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAdminAuth_ValidCookie(t *testing.T) {
	tokens := token.New("test-secret", time.Hour)
	tok, _ := tokens.Sign()

	router := adminRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/bookings", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: tok})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuth_NoCookie(t *testing.T) {
	tokens := token.New("test-secret", time.Hour)

	router := adminRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/bookings", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token_missing")
}

func TestAdminAuth_WrongSecret(t *testing.T) {
	signer := token.New("other-secret", time.Hour)
	tok, _ := signer.Sign()

	router := adminRouter(token.New("test-secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/bookings", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: tok})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_signature")
}

func TestAdminAuth_ExpiredToken(t *testing.T) {
	tokens := token.New("test-secret", -time.Minute)
	tok, _ := tokens.Sign()

	router := adminRouter(tokens)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/bookings", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: tok})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAdminAuth_MalformedToken(t *testing.T) {
	router := adminRouter(token.New("test-secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/bookings", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "garbage"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token_malformed")
}

func staffRouter(jwt *jwtsvc.Service) *gin.Engine {
	router := gin.New()
	router.Use(StaffAuth(jwt))
	router.POST("/use", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"staff_name": c.GetString("staff_name")})
	})
	return router
}

func TestStaffAuth_ValidToken(t *testing.T) {
	jwt := jwtsvc.New("staff-secret", time.Hour)
	tok, _ := jwt.GenerateToken("lena", "staff")

	router := staffRouter(jwt)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/use", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lena")
}

func TestStaffAuth_WrongRole(t *testing.T) {
	jwt := jwtsvc.New("staff-secret", time.Hour)
	tok, _ := jwt.GenerateToken("eve", "client")

	router := staffRouter(jwt)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/use", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStaffAuth_MissingHeader(t *testing.T) {
	router := staffRouter(jwtsvc.New("staff-secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/use", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
