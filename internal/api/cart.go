package api

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/service"
)

// InteractionHandler exposes the favorite and shopping-cart membership
// toggles plus the cart export download.
type InteractionHandler struct {
	interactions *service.InteractionService
	auth         *service.AuthService
}

func NewInteractionHandler(interactions *service.InteractionService, auth *service.AuthService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions, auth: auth}
}

func (h *InteractionHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes", middleware.RequireAuth(h.auth))
	{
		recipes.POST("/:id/favorite", h.AddFavorite)
		recipes.DELETE("/:id/favorite", h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", h.RemoveFromCart)
		recipes.GET("/download_shopping_cart", h.DownloadCart)
	}
}

func (h *InteractionHandler) AddFavorite(c *gin.Context) {
	recipeID, ok := recipeParam(c)
	if !ok {
		return
	}
	recipe, err := h.interactions.AddFavorite(c.Request.Context(), middleware.CallerID(c), recipeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projectCompactRecipe(recipe))
}

func (h *InteractionHandler) RemoveFavorite(c *gin.Context) {
	recipeID, ok := recipeParam(c)
	if !ok {
		return
	}
	if err := h.interactions.RemoveFavorite(c.Request.Context(), middleware.CallerID(c), recipeID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InteractionHandler) AddToCart(c *gin.Context) {
	recipeID, ok := recipeParam(c)
	if !ok {
		return
	}
	recipe, err := h.interactions.AddToCart(c.Request.Context(), middleware.CallerID(c), recipeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projectCompactRecipe(recipe))
}

func (h *InteractionHandler) RemoveFromCart(c *gin.Context) {
	recipeID, ok := recipeParam(c)
	if !ok {
		return
	}
	if err := h.interactions.RemoveFromCart(c.Request.Context(), middleware.CallerID(c), recipeID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadCart streams the aggregated cart as a CSV attachment. An
// empty cart returns a message body instead of an empty file.
func (h *InteractionHandler) DownloadCart(c *gin.Context) {
	rows, err := h.interactions.AggregateCart(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusOK, gin.H{"shopping_cart": "cart is empty"})
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{"name", "measurement_unit", "amount"})
	for _, row := range rows {
		_ = writer.Write([]string{row.Name, row.Unit, strconv.Itoa(row.Amount)})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping-cart.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func recipeParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
