package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StockOutOfStock = "out_of_stock"
	StockLow        = "low"
	StockOver       = "over"
	StockIn         = "in_stock"
)

// InventoryLevel is the current stock of one ingredient.
type InventoryLevel struct {
	gorm.Model
	IngredientID uint                `gorm:"uniqueIndex;not null" json:"ingredient_id"`
	Ingredient   *Ingredient         `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	CurrentStock decimal.Decimal     `gorm:"type:decimal(14,4);not null;default:0" json:"current_stock"`
	UnitCost     decimal.Decimal     `gorm:"type:decimal(12,4);not null;default:0" json:"unit_cost"`
	MinStock     decimal.NullDecimal `gorm:"type:decimal(14,4)" json:"min_stock"`
	MaxStock     decimal.NullDecimal `gorm:"type:decimal(14,4)" json:"max_stock"`
}

// StockStatus compares the current stock with the optional thresholds.
func (l InventoryLevel) StockStatus() string {
	switch {
	case !l.CurrentStock.IsPositive():
		return StockOutOfStock
	case l.MinStock.Valid && l.CurrentStock.LessThan(l.MinStock.Decimal):
		return StockLow
	case l.MaxStock.Valid && l.CurrentStock.GreaterThan(l.MaxStock.Decimal):
		return StockOver
	default:
		return StockIn
	}
}

// StockValue is the current stock priced at the unit cost snapshot.
func (l InventoryLevel) StockValue() decimal.Decimal {
	return l.CurrentStock.Mul(l.UnitCost)
}

// InventoryMovement records one adjustment of an ingredient's stock. Amount is the requested
// amount, StockAfter what was actually recorded after flooring.
type InventoryMovement struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	IngredientID uint            `gorm:"not null;index" json:"ingredient_id"`
	Type         string          `gorm:"not null" json:"type"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"amount"`
	StockBefore  decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"stock_before"`
	StockAfter   decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"stock_after"`
	Reason       string          `gorm:"type:text" json:"reason"`
	RecipeID     *uint           `gorm:"index" json:"recipe_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (InventoryMovement) BeforeUpdate(*gorm.DB) error { return ErrImmutableRecord }

func (InventoryMovement) BeforeDelete(*gorm.DB) error { return ErrImmutableRecord }
