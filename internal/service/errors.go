package service

import "errors"

// Conflict errors: the request is well-formed but clashes with current
// state. Handlers surface these as 400 with a fixed message.
var (
	ErrAlreadyFavorited = errors.New("recipe is already in favorites")
	ErrNotFavorited     = errors.New("recipe is not in favorites")
	ErrAlreadyInCart    = errors.New("recipe is already in the shopping cart")
	ErrNotInCart        = errors.New("recipe is not in the shopping cart")
	ErrOwnRecipe        = errors.New("cannot add your own recipe")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
)

// ErrNotOwner is returned when a caller mutates a recipe they do not
// own. Handlers surface it as 403.
var ErrNotOwner = errors.New("only the author can modify this recipe")

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FieldError is a per-field validation failure. Handlers render it as
// 400 with {"<field>": "<message>"}.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

var (
	ErrDuplicateTag        = NewFieldError("tags", "tag ids must be unique")
	ErrDuplicateIngredient = NewFieldError("ingredients", "ingredient ids must be unique")
	ErrInvalidQuantity     = NewFieldError("ingredients", "ingredient amount must be at least 1")
	ErrMissingTags         = NewFieldError("tags", "this field is required")
	ErrMissingIngredients  = NewFieldError("ingredients", "this field is required")
	ErrInvalidCookingTime  = NewFieldError("cooking_time", "cooking time must be at least 1")
	ErrMissingImage        = NewFieldError("image", "this field is required")
)
