package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
)

type RecipeHandler struct {
	recipes      *service.RecipeService
	interactions *service.InteractionService
	follows      *service.FollowService
	images       service.ImageStore
	auth         *service.AuthService
	baseURL      string
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	interactions *service.InteractionService,
	follows *service.FollowService,
	images service.ImageStore,
	auth *service.AuthService,
	baseURL string,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		interactions: interactions,
		follows:      follows,
		images:       images,
		auth:         auth,
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuth(h.auth), h.ListRecipes)
		recipes.POST("", middleware.RequireAuth(h.auth), h.CreateRecipe)
		recipes.GET("/:id", middleware.OptionalAuth(h.auth), h.GetRecipe)
		recipes.PATCH("/:id", middleware.RequireAuth(h.auth), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.RequireAuth(h.auth), h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
	}
}

// RegisterShortLinkRoute mounts the /s/:code resolver outside the API
// group so share links stay short.
func (h *RecipeHandler) RegisterShortLinkRoute(router *gin.Engine) {
	router.GET("/s/:code", h.ResolveShortLink)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	callerID := middleware.CallerID(c)

	filter := service.RecipeFilter{
		TagSlugs:  c.QueryArray("tags"),
		Favorited: c.Query("is_favorited") == "1" || c.Query("is_favorited") == "true",
		InCart:    c.Query("is_in_shopping_cart") == "1" || c.Query("is_in_shopping_cart") == "true",
	}
	if callerID != uuid.Nil {
		filter.CallerID = &callerID
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"author": "invalid user id"})
			return
		}
		filter.AuthorID = &authorID
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	favorites, cart, err := h.interactions.MembershipSets(c.Request.Context(), callerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	following, err := h.follows.FollowingSet(c.Request.Context(), callerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	results := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		recipe := &recipes[i]
		_, favorited := favorites[recipe.ID]
		_, inCart := cart[recipe.ID]
		_, subscribed := following[recipe.AuthorID]
		results[i] = projectRecipe(recipe, subscribed, favorited, inCart)
	}
	c.JSON(http.StatusOK, PageResponse[RecipeResponse]{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.writeRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	imageURL, err := h.resolveImage(c, req.Image)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), service.CreateRecipeParams{
		AuthorID:    middleware.CallerID(c),
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: toIngredientAmounts(req.Ingredients),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.writeRecipe(c, http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}

	params := service.UpdateRecipeParams{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
	}
	if req.Ingredients != nil {
		params.Ingredients = toIngredientAmounts(req.Ingredients)
	}
	if req.Image != nil {
		imageURL, err := h.resolveImage(c, *req.Image)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		params.ImageURL = &imageURL
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), middleware.CallerID(c), id, params)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.writeRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), middleware.CallerID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLink returns the shareable short link for a recipe, built from
// its opaque code rather than the enumerable primary key.
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short-link": h.baseURL + "/s/" + recipe.ShortCode.String()})
}

// ResolveShortLink redirects a short link to the canonical recipe URL.
func (h *RecipeHandler) ResolveShortLink(c *gin.Context) {
	code, err := uuid.Parse(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid link"})
		return
	}

	recipe, err := h.recipes.GetRecipeByShortCode(c.Request.Context(), code)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.baseURL+"/recipes/"+recipe.ID.String())
}

// resolveImage uploads base64 data URIs to media storage and passes
// plain URLs through.
func (h *RecipeHandler) resolveImage(c *gin.Context, image string) (string, error) {
	if strings.HasPrefix(image, "data:image/") {
		return h.images.StoreDataURI(c.Request.Context(), image, "recipes")
	}
	return image, nil
}

func (h *RecipeHandler) writeRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	callerID := middleware.CallerID(c)

	favorited, err := h.interactions.IsFavorited(c.Request.Context(), callerID, recipe.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	inCart, err := h.interactions.IsInCart(c.Request.Context(), callerID, recipe.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	subscribed, err := h.follows.IsFollowing(c.Request.Context(), callerID, recipe.AuthorID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(status, projectRecipe(recipe, subscribed, favorited, inCart))
}

func toIngredientAmounts(items []RecipeIngredientRequest) []service.IngredientAmount {
	out := make([]service.IngredientAmount, len(items))
	for i, item := range items {
		out[i] = service.IngredientAmount{IngredientID: item.ID, Amount: item.Amount}
	}
	return out
}
