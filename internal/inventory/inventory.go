// Package inventory applies stock adjustments and keeps the movement ledger.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"costchef/internal/apperr"
	"costchef/internal/costing"
	"costchef/models"
)

// MovementType is the kind of stock adjustment.
type MovementType string

const (
	Addition   MovementType = "addition"
	Removal    MovementType = "removal"
	Waste      MovementType = "waste"
	Correction MovementType = "correction"
)

// DefaultMovementLimit bounds Movements when the caller passes a non-positive limit.
const DefaultMovementLimit = 100

// ParseMovementType accepts the movement names case-insensitively.
func ParseMovementType(value string) (MovementType, error) {
	switch t := MovementType(strings.ToLower(strings.TrimSpace(value))); t {
	case Addition, Removal, Waste, Correction:
		return t, nil
	default:
		return "", apperr.Invalid("type", fmt.Sprintf("unknown movement type %q", value))
	}
}

// Adjustment is one requested stock change.
type Adjustment struct {
	IngredientID uint
	Type         MovementType
	Amount       decimal.Decimal
	Reason       string
	RecipeID     *uint
}

type Result struct {
	Level    models.InventoryLevel    `json:"level"`
	Movement models.InventoryMovement `json:"movement"`
	// Floored reports that a removal or waste asked for more than was in stock.
	Floored bool `json:"floored"`
}

// NextStock computes the stock after applying a movement. Removal and waste never go below
// zero; correction sets the stock outright.
func NextStock(current decimal.Decimal, kind MovementType, amount decimal.Decimal) (next decimal.Decimal, floored bool) {
	switch kind {
	case Addition:
		return current.Add(amount), false
	case Removal, Waste:
		next = current.Sub(amount)
		if next.IsNegative() {
			return decimal.Zero, true
		}
		return next, false
	default:
		return amount, false
	}
}

// Adjust applies the adjustment and writes exactly one movement, even when the stock does not
// change. Invalid input is rejected before anything is written.
func Adjust(ctx context.Context, tx *gorm.DB, adj Adjustment) (Result, error) {
	if tx == nil {
		return Result{}, gorm.ErrInvalidDB
	}

	kind, err := ParseMovementType(string(adj.Type))
	if err != nil {
		return Result{}, err
	}
	amount := adj.Amount.Round(models.QuantityScale)
	if amount.IsNegative() {
		return Result{}, apperr.Invalid("amount", "must not be negative")
	}

	var ing models.Ingredient
	if err := tx.WithContext(ctx).First(&ing, adj.IngredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, apperr.NotFound("ingredient", adj.IngredientID)
		}
		return Result{}, apperr.Storage("load ingredient", err)
	}

	level, err := lockLevel(ctx, tx, ing.ID)
	if err != nil {
		return Result{}, err
	}

	before := level.CurrentStock
	after, floored := NextStock(before, kind, amount)

	level.CurrentStock = after
	level.UnitCost = costing.EffectiveUnitCost(ing)
	if err := tx.WithContext(ctx).Save(&level).Error; err != nil {
		return Result{}, apperr.Storage("save inventory level", err)
	}

	movement := models.InventoryMovement{
		IngredientID: ing.ID,
		Type:         string(kind),
		Amount:       amount,
		StockBefore:  before,
		StockAfter:   after,
		Reason:       strings.TrimSpace(adj.Reason),
		RecipeID:     normalizeID(adj.RecipeID),
	}
	if err := tx.WithContext(ctx).Create(&movement).Error; err != nil {
		return Result{}, apperr.Storage("record inventory movement", err)
	}

	return Result{Level: level, Movement: movement, Floored: floored}, nil
}

// SetThresholds stores the optional min and max stock of an ingredient. Both must be
// non-negative and min may not exceed max.
func SetThresholds(ctx context.Context, tx *gorm.DB, ingredientID uint, minStock, maxStock decimal.NullDecimal) (models.InventoryLevel, error) {
	if tx == nil {
		return models.InventoryLevel{}, gorm.ErrInvalidDB
	}
	minStock = roundThreshold(minStock)
	maxStock = roundThreshold(maxStock)
	if minStock.Valid && minStock.Decimal.IsNegative() {
		return models.InventoryLevel{}, apperr.Invalid("min_stock", "must not be negative")
	}
	if maxStock.Valid && maxStock.Decimal.IsNegative() {
		return models.InventoryLevel{}, apperr.Invalid("max_stock", "must not be negative")
	}
	if minStock.Valid && maxStock.Valid && minStock.Decimal.GreaterThan(maxStock.Decimal) {
		return models.InventoryLevel{}, apperr.Invalid("min_stock", "must not exceed max_stock")
	}

	var count int64
	if err := tx.WithContext(ctx).Model(&models.Ingredient{}).Where("id = ?", ingredientID).Count(&count).Error; err != nil {
		return models.InventoryLevel{}, apperr.Storage("load ingredient", err)
	}
	if count == 0 {
		return models.InventoryLevel{}, apperr.NotFound("ingredient", ingredientID)
	}

	level, err := lockLevel(ctx, tx, ingredientID)
	if err != nil {
		return models.InventoryLevel{}, err
	}
	level.MinStock = minStock
	level.MaxStock = maxStock
	if err := tx.WithContext(ctx).Save(&level).Error; err != nil {
		return models.InventoryLevel{}, apperr.Storage("save inventory level", err)
	}
	return level, nil
}

// Level returns the stock record of an ingredient. An ingredient that was never adjusted has
// an unsaved zero level.
func Level(ctx context.Context, db *gorm.DB, ingredientID uint) (models.InventoryLevel, error) {
	if db == nil {
		return models.InventoryLevel{}, gorm.ErrInvalidDB
	}

	var level models.InventoryLevel
	err := db.WithContext(ctx).Where("ingredient_id = ?", ingredientID).First(&level).Error
	switch {
	case err == nil:
		return level, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.InventoryLevel{IngredientID: ingredientID}, nil
	default:
		return models.InventoryLevel{}, apperr.Storage("load inventory level", err)
	}
}

// Movements returns the ingredient's movements, newest first.
func Movements(ctx context.Context, db *gorm.DB, ingredientID uint, limit int) ([]models.InventoryMovement, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	if limit <= 0 {
		limit = DefaultMovementLimit
	}

	var movements []models.InventoryMovement
	if err := db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, apperr.Storage("load inventory movements", err)
	}
	return movements, nil
}

// lockLevel loads the level row for update, returning a zero level when none exists yet.
func lockLevel(ctx context.Context, tx *gorm.DB, ingredientID uint) (models.InventoryLevel, error) {
	query := tx.WithContext(ctx)
	if tx.Dialector != nil && tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var level models.InventoryLevel
	err := query.Where("ingredient_id = ?", ingredientID).First(&level).Error
	switch {
	case err == nil:
		return level, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.InventoryLevel{IngredientID: ingredientID}, nil
	default:
		return models.InventoryLevel{}, apperr.Storage("load inventory level", err)
	}
}

func roundThreshold(v decimal.NullDecimal) decimal.NullDecimal {
	if v.Valid {
		v.Decimal = v.Decimal.Round(models.QuantityScale)
	}
	return v
}

func normalizeID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}
