package engine

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"costchef/internal/inventory"
	applog "costchef/internal/log"
	"costchef/models"
)

type InventoryView struct {
	Level      models.InventoryLevel      `json:"level"`
	Status     string                     `json:"status"`
	StockValue decimal.Decimal            `json:"stock_value"`
	Movements  []models.InventoryMovement `json:"movements"`
}

// AdjustInventory applies one stock movement atomically.
func (e *Engine) AdjustInventory(ctx context.Context, adj inventory.Adjustment) (inventory.Result, error) {
	var result inventory.Result
	err := e.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = inventory.Adjust(ctx, tx, adj)
		return err
	})
	if err != nil {
		return inventory.Result{}, err
	}

	e.metrics.InventoryMovement(result.Movement.Type)
	applog.Info(ctx, "inventory adjusted",
		"ingredient_id", adj.IngredientID,
		"type", result.Movement.Type,
		"amount", adj.Amount.String(),
		"stock", result.Level.CurrentStock.String(),
	)
	if result.Floored {
		applog.Warn(ctx, "inventory removal exceeded stock; floored at zero",
			"ingredient_id", adj.IngredientID,
			"stock_before", result.Movement.StockBefore.String(),
			"amount", adj.Amount.String(),
		)
	}
	return result, nil
}

// SetInventoryThresholds stores optional min and max stock levels.
func (e *Engine) SetInventoryThresholds(ctx context.Context, ingredientID uint, minStock, maxStock decimal.NullDecimal) (InventoryView, error) {
	err := e.transaction(ctx, func(tx *gorm.DB) error {
		_, err := inventory.SetThresholds(ctx, tx, ingredientID, minStock, maxStock)
		return err
	})
	if err != nil {
		return InventoryView{}, err
	}
	return e.GetInventory(ctx, ingredientID)
}

// GetInventory returns the stock level of an ingredient with its recent movements.
func (e *Engine) GetInventory(ctx context.Context, ingredientID uint) (InventoryView, error) {
	db, err := e.read(ctx)
	if err != nil {
		return InventoryView{}, err
	}
	if _, err := loadIngredient(db, ingredientID); err != nil {
		return InventoryView{}, err
	}

	level, err := inventory.Level(ctx, db, ingredientID)
	if err != nil {
		return InventoryView{}, err
	}
	movements, err := inventory.Movements(ctx, db, ingredientID, 0)
	if err != nil {
		return InventoryView{}, err
	}
	return InventoryView{
		Level:      level,
		Status:     level.StockStatus(),
		StockValue: level.StockValue(),
		Movements:  movements,
	}, nil
}
