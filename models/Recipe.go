package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultTargetFoodCostPct is applied to recipes created without a target.
var DefaultTargetFoodCostPct = decimal.RequireFromString("0.30")

type Recipe struct {
	gorm.Model
	Name              string             `gorm:"not null" json:"name"`
	Description       string             `gorm:"type:text" json:"description"`
	Category          string             `json:"category"`
	Tags              string             `json:"tags"`
	BatchYield        int                `gorm:"not null;default:1" json:"batch_yield"`
	TargetFoodCostPct decimal.Decimal    `gorm:"type:decimal(6,4);not null" json:"target_food_cost_pct"`
	SalesPrice        decimal.Decimal    `gorm:"type:decimal(12,4);not null;default:0" json:"sales_price"`
	Ingredients       []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}

// Servings is the batch yield used as a divisor; anything below one counts as one serving.
func (r Recipe) Servings() int {
	if r.BatchYield < 1 {
		return 1
	}
	return r.BatchYield
}

// TagList splits the free-text tags on commas, dropping blanks.
func (r Recipe) TagList() []string {
	var tags []string
	for _, part := range strings.Split(r.Tags, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
