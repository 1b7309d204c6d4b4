package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// InteractionService manages the per-user membership rows linking
// users to recipes: favorites and the shopping cart. Membership is the
// row's presence; removal deletes the row. Concurrent duplicate adds
// race to the unique (user, recipe) index and the loser surfaces as
// the already-member conflict.
type InteractionService struct {
	db *gorm.DB
}

func NewInteractionService(db *gorm.DB) *InteractionService {
	return &InteractionService{db: db}
}

func (s *InteractionService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addMembership(ctx, userID, recipeID, &models.Favorite{UserID: userID, RecipeID: recipeID}, ErrAlreadyFavorited)
}

func (s *InteractionService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFavorited
	}
	return nil
}

func (s *InteractionService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.addMembership(ctx, userID, recipeID, &models.CartItem{UserID: userID, RecipeID: recipeID}, ErrAlreadyInCart)
}

func (s *InteractionService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotInCart
	}
	return nil
}

func (s *InteractionService) addMembership(ctx context.Context, userID, recipeID uuid.UUID, row interface{}, conflict error) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, err
	}
	if recipe.AuthorID == userID {
		return nil, ErrOwnRecipe
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict
		}
		return nil, err
	}
	return &recipe, nil
}

// IsFavorited is false for the zero caller id, which is how anonymous
// reads are represented.
func (s *InteractionService) IsFavorited(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

func (s *InteractionService) IsInCart(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// MembershipSets loads the caller's favorite and cart recipe ids in
// two queries so list projections do not query per recipe.
func (s *InteractionService) MembershipSets(ctx context.Context, userID uuid.UUID) (favorites, cart map[uuid.UUID]struct{}, err error) {
	favorites = make(map[uuid.UUID]struct{})
	cart = make(map[uuid.UUID]struct{})
	if userID == uuid.Nil {
		return favorites, cart, nil
	}

	var favRows []models.Favorite
	if err = s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&favRows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range favRows {
		favorites[row.RecipeID] = struct{}{}
	}

	var cartRows []models.CartItem
	if err = s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&cartRows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range cartRows {
		cart[row.RecipeID] = struct{}{}
	}
	return favorites, cart, nil
}

// CartRow is one line of the shopping-cart export: an ingredient with
// its amounts summed across every recipe in the cart.
type CartRow struct {
	Name   string
	Unit   string
	Amount int
}

// AggregateCart groups the (ingredient, amount) pairs of the user's
// cart recipes by ingredient and sums the amounts. Rows come back
// ordered by ingredient name. An empty cart yields an empty slice.
func (s *InteractionService) AggregateCart(ctx context.Context, userID uuid.UUID) ([]CartRow, error) {
	var rows []CartRow
	err := s.db.WithContext(ctx).Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN (?)",
			s.db.Model(&models.CartItem{}).Select("recipe_id").Where("user_id = ?", userID)).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
