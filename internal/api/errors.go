package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/platefeed/backend/internal/service"
)

var conflictErrors = []error{
	service.ErrAlreadyFavorited,
	service.ErrNotFavorited,
	service.ErrAlreadyInCart,
	service.ErrNotInCart,
	service.ErrOwnRecipe,
	service.ErrSelfFollow,
	service.ErrAlreadyFollowing,
	service.ErrEmailTaken,
	service.ErrUsernameTaken,
}

// writeServiceError maps the service error taxonomy onto HTTP
// responses: field validation and conflicts are 400, missing rows 404,
// ownership failures 403.
func writeServiceError(c *gin.Context, err error) {
	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, gin.H{fieldErr.Field: fieldErr.Message})
		return
	}
	if service.IsNotFound(err) || errors.Is(err, service.ErrNotFollowing) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}
	if errors.Is(err, service.ErrNotOwner) {
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
		return
	}
	for _, conflict := range conflictErrors {
		if errors.Is(err, conflict) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// writeBindingError renders gin binding failures as per-field
// messages.
func writeBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(gin.H, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = "failed validation: " + fe.Tag()
		}
		c.JSON(http.StatusBadRequest, out)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
