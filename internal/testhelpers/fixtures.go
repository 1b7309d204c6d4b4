package testhelpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// CreateTestUser inserts a user with a bcrypt-hashed password.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func CreateTestTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()

	tag := models.Tag{Name: slug, Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return &tag
}

func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return &ingredient
}

// CreateTestRecipe inserts a recipe with one tag and the given
// ingredient amounts.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tag *models.Tag, amounts map[uint]int) *models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		ImageURL:    "https://example.com/" + name + ".png",
		Text:        "test recipe",
		CookingTime: 10,
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	if tag != nil {
		if err := db.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("failed to attach tag: %v", err)
		}
	}
	for ingredientID, amount := range amounts {
		row := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ingredientID, Amount: amount}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("failed to attach ingredient: %v", err)
		}
	}
	return &recipe
}

// FakeImageStore satisfies service.ImageStore without touching S3.
type FakeImageStore struct {
	Uploads int
}

func (f *FakeImageStore) StoreDataURI(ctx context.Context, dataURI, prefix string) (string, error) {
	f.Uploads++
	return fmt.Sprintf("https://media.test/%s/%s.png", prefix, uuid.New().String()), nil
}
