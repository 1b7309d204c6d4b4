package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/models"
)

type ingredientFixture struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagFixture struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Seeds the ingredient and tag reference data from JSON fixtures.
func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "path to ingredient fixtures")
	tagsPath := flag.String("tags", "data/tags.json", "path to tag fixtures")
	flag.Parse()

	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}

	var ingredients []ingredientFixture
	if err := loadJSON(*ingredientsPath, &ingredients); err != nil {
		logger.Fatalf("failed to load ingredients: %v", err)
	}
	for _, fixture := range ingredients {
		row := models.Ingredient{Name: fixture.Name, MeasurementUnit: fixture.MeasurementUnit}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			logger.Fatalf("failed to seed ingredient %q: %v", fixture.Name, err)
		}
	}
	logger.WithFields(logrus.Fields{"count": len(ingredients)}).Info("seeded ingredients")

	var tags []tagFixture
	if err := loadJSON(*tagsPath, &tags); err != nil {
		logger.Fatalf("failed to load tags: %v", err)
	}
	for _, fixture := range tags {
		row := models.Tag{Name: fixture.Name, Slug: fixture.Slug}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			logger.Fatalf("failed to seed tag %q: %v", fixture.Slug, err)
		}
	}
	logger.WithFields(logrus.Fields{"count": len(tags)}).Info("seeded tags")
}

func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
