package models

// Ingredient and Tag are read-only reference data, seeded once via
// cmd/seed. API clients can list and read them but never mutate.

type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:128;not null;index" json:"name"`
	MeasurementUnit string `gorm:"size:64;not null" json:"measurement_unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:32;not null" json:"name"`
	Slug string `gorm:"size:32;uniqueIndex;not null" json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}
