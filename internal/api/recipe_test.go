package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
)

type recipePage struct {
	Count   int64 `json:"count"`
	Results []struct {
		ID               string `json:"id"`
		Name             string `json:"name"`
		IsFavorited      bool   `json:"is_favorited"`
		IsInShoppingCart bool   `json:"is_in_shopping_cart"`
		Author           struct {
			Username     string `json:"username"`
			IsSubscribed bool   `json:"is_subscribed"`
		} `json:"author"`
	} `json:"results"`
}

func TestCreateRecipeEndToEnd(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.DB, "chef")
	tag := testhelpers.CreateTestTag(t, env.DB, "dinner")
	salt := testhelpers.CreateTestIngredient(t, env.DB, "Salt", "g")

	body := map[string]any{
		"name":         "Borscht",
		"text":         "Cook it slowly.",
		"cooking_time": 90,
		"image":        "data:image/png;base64,aGVsbG8=",
		"tags":         []uint{tag.ID},
		"ingredients":  []map[string]any{{"id": salt.ID, "amount": 5}},
	}
	resp := env.request(t, http.MethodPost, "/api/recipes", env.tokenFor(t, author), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		Ingredients []struct {
			Name   string `json:"name"`
			Amount int    `json:"amount"`
		} `json:"ingredients"`
	}
	decodeJSON(t, resp, &created)
	assert.Equal(t, "Borscht", created.Name)
	require.Len(t, created.Ingredients, 1)
	assert.Equal(t, "Salt", created.Ingredients[0].Name)
	assert.Equal(t, 5, created.Ingredients[0].Amount)
	assert.Equal(t, 1, env.Images.Uploads)
	assert.Contains(t, created.Image, "https://media.test/recipes/")
}

func TestCreateRecipeRejectsDuplicateTagIDs(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.DB, "chef")
	tag := testhelpers.CreateTestTag(t, env.DB, "dinner")
	salt := testhelpers.CreateTestIngredient(t, env.DB, "Salt", "g")

	body := map[string]any{
		"name":         "Borscht",
		"text":         "Cook it.",
		"cooking_time": 30,
		"image":        "https://example.com/borscht.png",
		"tags":         []uint{tag.ID, tag.ID},
		"ingredients":  []map[string]any{{"id": salt.ID, "amount": 5}},
	}
	resp := env.request(t, http.MethodPost, "/api/recipes", env.tokenFor(t, author), body)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errBody map[string]string
	decodeJSON(t, resp, &errBody)
	assert.Contains(t, errBody, "tags")

	var count int64
	require.NoError(t, env.DB.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnonymousListAnnotationsAreFalse(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.DB, "chef")
	shopper := testhelpers.CreateTestUser(t, env.DB, "shopper")
	tag := testhelpers.CreateTestTag(t, env.DB, "dinner")
	recipe := testhelpers.CreateTestRecipe(t, env.DB, author, "borscht", tag, nil)

	interactions := service.NewInteractionService(env.DB)
	ctx := context.Background()
	_, err := interactions.AddFavorite(ctx, shopper.ID, recipe.ID)
	require.NoError(t, err)
	_, err = interactions.AddToCart(ctx, shopper.ID, recipe.ID)
	require.NoError(t, err)

	resp := env.request(t, http.MethodGet, "/api/recipes", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var page recipePage
	decodeJSON(t, resp, &page)
	require.Len(t, page.Results, 1)
	assert.False(t, page.Results[0].IsFavorited)
	assert.False(t, page.Results[0].IsInShoppingCart)
	assert.False(t, page.Results[0].Author.IsSubscribed)

	resp = env.request(t, http.MethodGet, "/api/recipes", env.tokenFor(t, shopper), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeJSON(t, resp, &page)
	require.Len(t, page.Results, 1)
	assert.True(t, page.Results[0].IsFavorited)
	assert.True(t, page.Results[0].IsInShoppingCart)
}

func TestListRecipesFilterByTag(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.DB, "chef")
	dinner := testhelpers.CreateTestTag(t, env.DB, "dinner")
	lunch := testhelpers.CreateTestTag(t, env.DB, "lunch")
	testhelpers.CreateTestRecipe(t, env.DB, author, "borscht", dinner, nil)
	testhelpers.CreateTestRecipe(t, env.DB, author, "okroshka", lunch, nil)

	resp := env.request(t, http.MethodGet, "/api/recipes?tags=lunch", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var page recipePage
	decodeJSON(t, resp, &page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "okroshka", page.Results[0].Name)
}

func TestDeleteRecipeForbiddenForNonOwner(t *testing.T) {
	env := setupTestEnv(t)
	owner := testhelpers.CreateTestUser(t, env.DB, "owner")
	intruder := testhelpers.CreateTestUser(t, env.DB, "intruder")
	tag := testhelpers.CreateTestTag(t, env.DB, "dinner")
	recipe := testhelpers.CreateTestRecipe(t, env.DB, owner, "borscht", tag, nil)

	resp := env.request(t, http.MethodDelete, "/api/recipes/"+recipe.ID.String(), env.tokenFor(t, intruder), nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = env.request(t, http.MethodGet, "/api/recipes/"+recipe.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = env.request(t, http.MethodDelete, "/api/recipes/"+recipe.ID.String(), env.tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = env.request(t, http.MethodGet, "/api/recipes/"+recipe.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestShortLinkRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	author := testhelpers.CreateTestUser(t, env.DB, "chef")
	tag := testhelpers.CreateTestTag(t, env.DB, "dinner")
	recipe := testhelpers.CreateTestRecipe(t, env.DB, author, "borscht", tag, nil)

	resp := env.request(t, http.MethodGet, "/api/recipes/"+recipe.ID.String()+"/get-link", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var link struct {
		ShortLink string `json:"short-link"`
	}
	decodeJSON(t, resp, &link)
	assert.Contains(t, link.ShortLink, testBaseURL+"/s/")

	code := link.ShortLink[len(testBaseURL+"/s/"):]
	resp = env.request(t, http.MethodGet, "/s/"+code, "", nil)
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, testBaseURL+"/recipes/"+recipe.ID.String(), resp.Header().Get("Location"))
}

func TestRecipeEndpointsRequireAuth(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/recipes", "", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
