package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konelease/leasing-workflow/internal/auth"
	"github.com/konelease/leasing-workflow/internal/model"
)

func testRouter(parser *auth.Parser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", Auth(parser), func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID, "role": principal.Role})
	})
	return router
}

func TestAuthAcceptsValidToken(t *testing.T) {
	parser := auth.NewParser("test-secret")
	router := testRouter(parser)

	token, err := parser.Sign(model.Principal{
		UserID:   uuid.New(),
		Role:     model.RoleCustomer,
		FullName: "Maija Asiakas",
	}, *jwt.NewNumericDate(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(model.RoleCustomer))
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	router := testRouter(auth.NewParser("test-secret"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	router := testRouter(auth.NewParser("test-secret"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsForgedToken(t *testing.T) {
	router := testRouter(auth.NewParser("test-secret"))

	forged, err := auth.NewParser("other-secret").Sign(model.Principal{
		UserID: uuid.New(),
		Role:   model.RoleAdmin,
	}, *jwt.NewNumericDate(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
