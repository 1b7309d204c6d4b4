package api

import (
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/models"
)

// Request bodies. Binding tags cover shape-level validation; the
// duplicate/quantity/ownership rules live in the services.

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username"`
}

type SetAvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

type RecipeIngredientRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount *int `json:"amount"`
}

type CreateRecipeRequest struct {
	Name        string                    `json:"name" binding:"required,max=256"`
	Image       string                    `json:"image"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time"`
	Tags        []uint                    `json:"tags"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
}

type UpdateRecipeRequest struct {
	Name        *string                   `json:"name"`
	Image       *string                   `json:"image"`
	Text        *string                   `json:"text"`
	CookingTime *int                      `json:"cooking_time"`
	Tags        []uint                    `json:"tags"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
}

// Response projections. Each response shape has its own explicit
// projection function instead of a shared serializer chain.

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       string    `json:"avatar"`
	IsSubscribed bool      `json:"is_subscribed"`
}

func projectUser(user *models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Avatar:       user.AvatarURL,
		IsSubscribed: isSubscribed,
	}
}

type IngredientAmountResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []IngredientAmountResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// projectRecipe builds the full recipe representation from an
// already-loaded entity; nothing here re-queries storage.
func projectRecipe(recipe *models.Recipe, authorSubscribed, favorited, inCart bool) RecipeResponse {
	tags := make([]models.Tag, len(recipe.Tags))
	for i, rt := range recipe.Tags {
		tags[i] = rt.Tag
	}
	ingredients := make([]IngredientAmountResponse, len(recipe.Ingredients))
	for i, ri := range recipe.Ingredients {
		ingredients[i] = IngredientAmountResponse{
			ID:              ri.Ingredient.ID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	return RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           projectUser(&recipe.Author, authorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

// CompactRecipeResponse is the short projection returned by the
// favorite/cart endpoints and subscription previews.
type CompactRecipeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func projectCompactRecipe(recipe *models.Recipe) CompactRecipeResponse {
	return CompactRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []CompactRecipeResponse `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

// PageResponse is the envelope for paginated list endpoints.
type PageResponse[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}
