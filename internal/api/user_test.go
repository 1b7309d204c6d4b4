package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/testhelpers"
)

func TestRegisterLoginFlow(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":      "vasya@example.com",
		"username":   "vasya",
		"first_name": "Vasya",
		"last_name":  "Pupkin",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var registered struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeJSON(t, resp, &registered)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "vasya", registered.User.Username)

	resp = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "vasya@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var login struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &login)

	resp = env.request(t, http.MethodGet, "/api/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var me struct {
		Email string `json:"email"`
	}
	decodeJSON(t, resp, &me)
	assert.Equal(t, "vasya@example.com", me.Email)
}

func TestRegisterValidation(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":      "not-an-email",
		"username":   "vasya",
		"first_name": "Vasya",
		"last_name":  "Pupkin",
		"password":   "short",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]string
	decodeJSON(t, resp, &body)
	assert.Contains(t, body, "Email")
	assert.Contains(t, body, "Password")
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupTestEnv(t)
	testhelpers.CreateTestUser(t, env.DB, "vasya")

	resp := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "vasya@example.com",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSubscribeFlow(t *testing.T) {
	env := setupTestEnv(t)
	reader := testhelpers.CreateTestUser(t, env.DB, "reader")
	chef := testhelpers.CreateTestUser(t, env.DB, "chef")
	tag := testhelpers.CreateTestTag(t, env.DB, "dinner")
	for _, name := range []string{"borscht", "okroshka", "syrniki"} {
		testhelpers.CreateTestRecipe(t, env.DB, chef, name, tag, nil)
	}

	token := env.tokenFor(t, reader)
	path := "/api/users/" + chef.ID.String() + "/subscribe"

	resp := env.request(t, http.MethodPost, path+"?recipes_limit=2", token, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var entry struct {
		Username     string `json:"username"`
		IsSubscribed bool   `json:"is_subscribed"`
		Recipes      []struct {
			Name string `json:"name"`
		} `json:"recipes"`
		RecipesCount int64 `json:"recipes_count"`
	}
	decodeJSON(t, resp, &entry)
	assert.Equal(t, "chef", entry.Username)
	assert.True(t, entry.IsSubscribed)
	assert.Len(t, entry.Recipes, 2)
	assert.Equal(t, int64(3), entry.RecipesCount)

	resp = env.request(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = env.request(t, http.MethodGet, "/api/users/subscriptions", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var page struct {
		Count   int64 `json:"count"`
		Results []struct {
			Username string `json:"username"`
		} `json:"results"`
	}
	decodeJSON(t, resp, &page)
	require.Equal(t, int64(1), page.Count)
	assert.Equal(t, "chef", page.Results[0].Username)

	resp = env.request(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = env.request(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSubscribeToSelfRejected(t *testing.T) {
	env := setupTestEnv(t)
	user := testhelpers.CreateTestUser(t, env.DB, "loner")

	resp := env.request(t, http.MethodPost, "/api/users/"+user.ID.String()+"/subscribe", env.tokenFor(t, user), nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAvatarLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	user := testhelpers.CreateTestUser(t, env.DB, "vasya")
	token := env.tokenFor(t, user)

	resp := env.request(t, http.MethodPut, "/api/users/me/avatar", token, map[string]any{
		"avatar": "data:image/png;base64,aGVsbG8=",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body struct {
		Avatar string `json:"avatar"`
	}
	decodeJSON(t, resp, &body)
	assert.Contains(t, body.Avatar, "https://media.test/avatars/")
	assert.Equal(t, 1, env.Images.Uploads)

	resp = env.request(t, http.MethodDelete, "/api/users/me/avatar", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = env.request(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var me struct {
		Avatar string `json:"avatar"`
	}
	decodeJSON(t, resp, &me)
	assert.Empty(t, me.Avatar)
}
