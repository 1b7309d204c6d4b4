package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// RecipeService handles recipe CRUD, including the association rules:
// tag and ingredient id lists must be duplicate-free, every ingredient
// amount must be at least 1, and writes replace the full association
// set rather than merging into it.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientAmount pairs an ingredient id with its quantity. Amount is
// a pointer so a missing value can be told apart from zero.
type IngredientAmount struct {
	IngredientID uint
	Amount       *int
}

type CreateRecipeParams struct {
	AuthorID    uuid.UUID
	Name        string
	ImageURL    string
	Text        string
	CookingTime int
	TagIDs      []uint
	Ingredients []IngredientAmount
}

// UpdateRecipeParams carries a partial update. Nil TagIDs/Ingredients
// leave the existing association sets untouched; non-nil values fully
// replace them.
type UpdateRecipeParams struct {
	Name        *string
	ImageURL    *string
	Text        *string
	CookingTime *int
	TagIDs      []uint
	Ingredients []IngredientAmount
}

func validateTagIDs(ids []uint) error {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrDuplicateTag
		}
		seen[id] = struct{}{}
	}
	return nil
}

func validateIngredients(items []IngredientAmount) error {
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.IngredientID]; dup {
			return ErrDuplicateIngredient
		}
		seen[item.IngredientID] = struct{}{}
		if item.Amount == nil || *item.Amount < 1 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// checkTagsExist verifies every id refers to a stored tag.
func (s *RecipeService) checkTagsExist(tx *gorm.DB, ids []uint) error {
	var count int64
	if err := tx.Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *RecipeService) checkIngredientsExist(tx *gorm.DB, items []IngredientAmount) error {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.IngredientID
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// replaceAssociations applies delete-then-insert semantics for the
// recipe's tag and ingredient sets.
func (s *RecipeService) replaceAssociations(tx *gorm.DB, recipeID uuid.UUID, tagIDs []uint, ingredients []IngredientAmount) error {
	if tagIDs != nil {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		rows := make([]models.RecipeTag, len(tagIDs))
		for i, id := range tagIDs {
			rows[i] = models.RecipeTag{RecipeID: recipeID, TagID: id}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	if ingredients != nil {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		rows := make([]models.RecipeIngredient, len(ingredients))
		for i, item := range ingredients {
			rows[i] = models.RecipeIngredient{
				RecipeID:     recipeID,
				IngredientID: item.IngredientID,
				Amount:       *item.Amount,
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *RecipeService) CreateRecipe(ctx context.Context, params CreateRecipeParams) (*models.Recipe, error) {
	if len(params.TagIDs) == 0 {
		return nil, ErrMissingTags
	}
	if len(params.Ingredients) == 0 {
		return nil, ErrMissingIngredients
	}
	if params.ImageURL == "" {
		return nil, ErrMissingImage
	}
	if params.CookingTime < 1 {
		return nil, ErrInvalidCookingTime
	}
	if err := validateTagIDs(params.TagIDs); err != nil {
		return nil, err
	}
	if err := validateIngredients(params.Ingredients); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    params.AuthorID,
		Name:        params.Name,
		ImageURL:    params.ImageURL,
		Text:        params.Text,
		CookingTime: params.CookingTime,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkTagsExist(tx, params.TagIDs); err != nil {
			return err
		}
		if err := s.checkIngredientsExist(tx, params.Ingredients); err != nil {
			return err
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return s.replaceAssociations(tx, recipe.ID, params.TagIDs, params.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, recipe.ID)
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, callerID, recipeID uuid.UUID, params UpdateRecipeParams) (*models.Recipe, error) {
	if params.TagIDs != nil {
		if err := validateTagIDs(params.TagIDs); err != nil {
			return nil, err
		}
		if len(params.TagIDs) == 0 {
			return nil, ErrMissingTags
		}
	}
	if params.Ingredients != nil {
		if err := validateIngredients(params.Ingredients); err != nil {
			return nil, err
		}
		if len(params.Ingredients) == 0 {
			return nil, ErrMissingIngredients
		}
	}
	if params.CookingTime != nil && *params.CookingTime < 1 {
		return nil, ErrInvalidCookingTime
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			return err
		}
		if err := s.authorize(tx, callerID, &recipe); err != nil {
			return err
		}
		if params.TagIDs != nil {
			if err := s.checkTagsExist(tx, params.TagIDs); err != nil {
				return err
			}
		}
		if params.Ingredients != nil {
			if err := s.checkIngredientsExist(tx, params.Ingredients); err != nil {
				return err
			}
		}

		if params.Name != nil {
			recipe.Name = *params.Name
		}
		if params.ImageURL != nil {
			recipe.ImageURL = *params.ImageURL
		}
		if params.Text != nil {
			recipe.Text = *params.Text
		}
		if params.CookingTime != nil {
			recipe.CookingTime = *params.CookingTime
		}
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}
		return s.replaceAssociations(tx, recipe.ID, params.TagIDs, params.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, recipeID)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, callerID, recipeID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			return err
		}
		if err := s.authorize(tx, callerID, &recipe); err != nil {
			return err
		}
		// Association and membership rows go with the recipe.
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// authorize allows the recipe's author and administrators.
func (s *RecipeService) authorize(tx *gorm.DB, callerID uuid.UUID, recipe *models.Recipe) error {
	if recipe.AuthorID == callerID {
		return nil
	}
	var caller models.User
	if err := tx.First(&caller, "id = ?", callerID).Error; err != nil {
		return err
	}
	if caller.IsAdmin {
		return nil
	}
	return ErrNotOwner
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags.Tag").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// GetRecipeByShortCode resolves an opaque share token back to a recipe.
func (s *RecipeService) GetRecipeByShortCode(ctx context.Context, code uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "short_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// RecipeFilter narrows ListRecipes. Favorited/InCart are scoped to
// CallerID and ignored when no caller is set.
type RecipeFilter struct {
	AuthorID  *uuid.UUID
	TagSlugs  []string
	Favorited bool
	InCart    bool
	CallerID  *uuid.UUID
	Limit     int
	Offset    int
}

func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.Where(
			"id IN (?)",
			s.db.Model(&models.RecipeTag{}).
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs),
		)
	}
	if filter.CallerID != nil {
		if filter.Favorited {
			query = query.Where(
				"id IN (?)",
				s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", *filter.CallerID),
			)
		}
		if filter.InCart {
			query = query.Where(
				"id IN (?)",
				s.db.Model(&models.CartItem{}).Select("recipe_id").Where("user_id = ?", *filter.CallerID),
			)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var recipes []models.Recipe
	err := query.Order("created_at DESC").
		Preload("Author").
		Preload("Tags.Tag").
		Preload("Ingredients.Ingredient").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListUserRecipes returns a user's recipes, newest first, optionally
// capped. Used by the subscriptions preview.
func (s *RecipeService) ListUserRecipes(ctx context.Context, userID uuid.UUID, limit int) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Where("author_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// CountUserRecipes is the recipe count shown on subscription entries.
func (s *RecipeService) CountUserRecipes(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", userID).Count(&count).Error
	return count, err
}

// IsNotFound reports whether err is the storage-level missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
