package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RecipeIngredient struct {
	gorm.Model
	RecipeID     uint            `gorm:"not null;index" json:"recipe_id"` // Parent Recipe
	IngredientID uint            `gorm:"not null;index" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"quantity"` // in the ingredient's unit

	// Nil when the ingredient row no longer exists.
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
