package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
)

type UserHandler struct {
	users   *service.UserService
	follows *service.FollowService
	recipes *service.RecipeService
	auth    *service.AuthService
}

func NewUserHandler(users *service.UserService, follows *service.FollowService, recipes *service.RecipeService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, follows: follows, recipes: recipes, auth: auth}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuth(h.auth), h.ListUsers)
		users.GET("/me", middleware.RequireAuth(h.auth), h.Me)
		users.PATCH("/me", middleware.RequireAuth(h.auth), h.UpdateProfile)
		users.PUT("/me/avatar", middleware.RequireAuth(h.auth), h.SetAvatar)
		users.DELETE("/me/avatar", middleware.RequireAuth(h.auth), h.DeleteAvatar)
		users.GET("/subscriptions", middleware.RequireAuth(h.auth), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuth(h.auth), h.GetUser)
		users.POST("/:id/subscribe", middleware.RequireAuth(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.RequireAuth(h.auth), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, total, err := h.users.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	following, err := h.follows.FollowingSet(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	results := make([]UserResponse, len(users))
	for i := range users {
		_, subscribed := following[users[i].ID]
		results[i] = projectUser(&users[i], subscribed)
	}
	c.JSON(http.StatusOK, PageResponse[UserResponse]{Count: total, Results: results})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	subscribed, err := h.follows.IsFollowing(c.Request.Context(), middleware.CallerID(c), user.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectUser(user, subscribed))
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectUser(user, false))
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.CallerID(c), service.UpdateProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectUser(user, false))
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req SetAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	url, err := h.users.SetAvatar(c.Request.Context(), middleware.CallerID(c), req.Avatar)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.users.DeleteAvatar(c.Request.Context(), middleware.CallerID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	target, err := h.follows.Follow(c.Request.Context(), middleware.CallerID(c), targetID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	entry, err := h.subscriptionEntry(c, target, recipesLimit(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	if err := h.follows.Unfollow(c.Request.Context(), middleware.CallerID(c), targetID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the users the caller follows, each with a
// preview of their recipes and a recipe count.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	followed, err := h.follows.Following(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	limit := recipesLimit(c)
	results := make([]SubscriptionResponse, len(followed))
	for i := range followed {
		entry, err := h.subscriptionEntry(c, &followed[i], limit)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		results[i] = entry
	}
	c.JSON(http.StatusOK, PageResponse[SubscriptionResponse]{Count: int64(len(results)), Results: results})
}

func (h *UserHandler) subscriptionEntry(c *gin.Context, user *models.User, limit int) (SubscriptionResponse, error) {
	recipes, err := h.recipes.ListUserRecipes(c.Request.Context(), user.ID, limit)
	if err != nil {
		return SubscriptionResponse{}, err
	}
	count, err := h.recipes.CountUserRecipes(c.Request.Context(), user.ID)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	preview := make([]CompactRecipeResponse, len(recipes))
	for i := range recipes {
		preview[i] = projectCompactRecipe(&recipes[i])
	}
	return SubscriptionResponse{
		UserResponse: projectUser(user, true),
		Recipes:      preview,
		RecipesCount: count,
	}, nil
}

func recipesLimit(c *gin.Context) int {
	if v := c.Query("recipes_limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}
