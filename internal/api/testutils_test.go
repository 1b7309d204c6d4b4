package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
)

const testBaseURL = "https://platefeed.test"

type testEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	Auth   *service.AuthService
	Images *testhelpers.FakeImageStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	auth := service.NewAuthService(db, "test-secret")
	images := &testhelpers.FakeImageStore{}

	users := service.NewUserService(db, images)
	catalog := service.NewCatalogService(db)
	recipes := service.NewRecipeService(db)
	interactions := service.NewInteractionService(db)
	follows := service.NewFollowService(db)

	engine := router.New(router.Options{
		Auth:         api.NewAuthHandler(auth),
		Users:        api.NewUserHandler(users, follows, recipes, auth),
		Catalog:      api.NewCatalogHandler(catalog),
		Recipes:      api.NewRecipeHandler(recipes, interactions, follows, images, auth, testBaseURL),
		Interactions: api.NewInteractionHandler(interactions, auth),
	})

	return &testEnv{DB: db, Router: engine, Auth: auth, Images: images}
}

// tokenFor issues a bearer token for an existing user.
func (e *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.Auth.GenerateToken(&service.TokenClaims{UserID: user.ID, Username: user.Username})
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// request performs an HTTP request against the in-memory router. A
// non-nil body is JSON-encoded; an empty token leaves the request
// anonymous.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	e.Router.ServeHTTP(recorder, req)
	return recorder
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}
