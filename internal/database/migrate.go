package database

import (
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// AutoMigrate creates or updates the schema for every model. The
// unique indexes on follows, favorites and cart_items are part of the
// model tags and are what enforce one membership row per pair.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Ingredient{},
		&models.Tag{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeTag{},
		&models.Favorite{},
		&models.CartItem{},
	)
}
