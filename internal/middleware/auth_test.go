package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *service.AuthService, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	auth := service.NewAuthService(db, "test-secret")
	user := testhelpers.CreateTestUser(t, db, "vasya")

	router := gin.New()
	router.GET("/private", middleware.RequireAuth(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"caller": middleware.CallerID(c).String()})
	})
	router.GET("/public", middleware.OptionalAuth(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"caller": middleware.CallerID(c).String()})
	})
	return router, auth, user.ID
}

func get(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireAuth(t *testing.T) {
	router, auth, userID := newAuthRouter(t)

	token, err := auth.GenerateToken(&service.TokenClaims{UserID: userID, Username: "vasya"})
	require.NoError(t, err)

	resp := get(router, "/private", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), userID.String())

	assert.Equal(t, http.StatusUnauthorized, get(router, "/private", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/private", "Bearer not-a-token").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/private", "Token "+token).Code)
}

func TestOptionalAuth(t *testing.T) {
	router, auth, userID := newAuthRouter(t)

	resp := get(router, "/public", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), uuid.Nil.String())

	resp = get(router, "/public", "Bearer garbage")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), uuid.Nil.String())

	token, err := auth.GenerateToken(&service.TokenClaims{UserID: userID, Username: "vasya"})
	require.NoError(t, err)
	resp = get(router, "/public", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), userID.String())
}
