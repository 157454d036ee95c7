package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"costchef/internal/apperr"
	"costchef/internal/db/dbtest"
	"costchef/models"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func seedIngredient(t *testing.T, db *gorm.DB) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: "Onion", Unit: "kg", UnitPrice: dec("2.00"), TrimWastePct: dec("0.20")}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	return ing
}

func adjust(t *testing.T, db *gorm.DB, adj Adjustment) Result {
	t.Helper()
	result, err := Adjust(context.Background(), db, adj)
	if err != nil {
		t.Fatalf("Adjust(%+v) error = %v", adj, err)
	}
	return result
}

func TestNextStock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		kind    MovementType
		amount  string
		want    string
		floored bool
	}{
		{name: "addition", current: "5", kind: Addition, amount: "2.5", want: "7.5"},
		{name: "removal", current: "5", kind: Removal, amount: "2", want: "3"},
		{name: "removal to zero", current: "5", kind: Removal, amount: "5", want: "0"},
		{name: "removal floors", current: "5", kind: Removal, amount: "1000", want: "0", floored: true},
		{name: "waste floors", current: "0.5", kind: Waste, amount: "1", want: "0", floored: true},
		{name: "correction sets", current: "5", kind: Correction, amount: "12", want: "12"},
		{name: "correction to zero", current: "5", kind: Correction, amount: "0", want: "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, floored := NextStock(dec(tt.current), tt.kind, dec(tt.amount))
			if !got.Equal(dec(tt.want)) || floored != tt.floored {
				t.Fatalf("NextStock() = %s, %v; want %s, %v", got, floored, tt.want, tt.floored)
			}
		})
	}
}

func TestParseMovementType(t *testing.T) {
	t.Parallel()

	if got, err := ParseMovementType(" Waste "); err != nil || got != Waste {
		t.Fatalf("ParseMovementType(Waste) = %q, %v", got, err)
	}
	if _, err := ParseMovementType("theft"); !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestAdjustRemovalFloorsAndLogsRequestedAmount(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	ing := seedIngredient(t, db)

	adjust(t, db, Adjustment{IngredientID: ing.ID, Type: Addition, Amount: dec("5"), Reason: "delivery"})
	result := adjust(t, db, Adjustment{IngredientID: ing.ID, Type: Removal, Amount: dec("1000"), Reason: "service"})

	if !result.Floored || !result.Level.CurrentStock.IsZero() {
		t.Fatalf("expected floored zero stock, got %+v", result)
	}
	if !result.Movement.Amount.Equal(dec("1000")) || !result.Movement.StockBefore.Equal(dec("5")) || !result.Movement.StockAfter.IsZero() {
		t.Fatalf("unexpected movement %+v", result.Movement)
	}

	movements, err := Movements(context.Background(), db, ing.ID, 0)
	if err != nil {
		t.Fatalf("Movements() error = %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("len(movements) = %d, want 2", len(movements))
	}
	if movements[0].Type != string(Removal) || movements[1].Type != string(Addition) {
		t.Fatalf("movements not newest first: %s, %s", movements[0].Type, movements[1].Type)
	}
}

func TestAdjustAlwaysRecordsMovement(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	ing := seedIngredient(t, db)

	adjust(t, db, Adjustment{IngredientID: ing.ID, Type: Waste, Amount: dec("3")})
	adjust(t, db, Adjustment{IngredientID: ing.ID, Type: Correction, Amount: dec("0")})

	var count int64
	if err := db.Model(&models.InventoryMovement{}).Where("ingredient_id = ?", ing.ID).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 2 {
		t.Fatalf("movements = %d, want 2", count)
	}

	var levels int64
	if err := db.Model(&models.InventoryLevel{}).Where("ingredient_id = ?", ing.ID).Count(&levels).Error; err != nil {
		t.Fatalf("count levels: %v", err)
	}
	if levels != 1 {
		t.Fatalf("levels = %d, want 1", levels)
	}
}

func TestAdjustRoundsAmountToStoredScale(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	ing := seedIngredient(t, db)

	result := adjust(t, db, Adjustment{IngredientID: ing.ID, Type: Addition, Amount: dec("1.23456")})
	if !result.Movement.Amount.Equal(dec("1.2346")) || !result.Level.CurrentStock.Equal(dec("1.2346")) {
		t.Fatalf("unexpected rounding: amount %s stock %s", result.Movement.Amount, result.Level.CurrentStock)
	}

	level, err := SetThresholds(context.Background(), db, ing.ID, decimal.NewNullDecimal(dec("0.99999")), decimal.NullDecimal{})
	if err != nil {
		t.Fatalf("SetThresholds() error = %v", err)
	}
	if !level.MinStock.Decimal.Equal(dec("1")) {
		t.Fatalf("MinStock = %s, want 1", level.MinStock.Decimal)
	}
}

func TestAdjustCorrectionAndUnitCostSnapshot(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	ing := seedIngredient(t, db)

	adjust(t, db, Adjustment{IngredientID: ing.ID, Type: Addition, Amount: dec("4")})
	result := adjust(t, db, Adjustment{IngredientID: ing.ID, Type: Correction, Amount: dec("7.25"), Reason: "count"})

	if !result.Level.CurrentStock.Equal(dec("7.25")) {
		t.Fatalf("CurrentStock = %s, want 7.25", result.Level.CurrentStock)
	}
	if !result.Level.UnitCost.Equal(dec("2.5")) {
		t.Fatalf("UnitCost = %s, want 2.5 (2.00 / 0.80 yield)", result.Level.UnitCost)
	}

	level, err := Level(context.Background(), db, ing.ID)
	if err != nil {
		t.Fatalf("Level() error = %v", err)
	}
	if !level.CurrentStock.Equal(dec("7.25")) || !level.StockValue().Equal(dec("18.125")) {
		t.Fatalf("stored level = %s valued %s", level.CurrentStock, level.StockValue())
	}
}

func TestAdjustRejectsBeforeWriting(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	ing := seedIngredient(t, db)

	tests := []struct {
		name string
		adj  Adjustment
		want error
	}{
		{name: "negative amount", adj: Adjustment{IngredientID: ing.ID, Type: Addition, Amount: dec("-1")}, want: apperr.ErrInvalid},
		{name: "unknown type", adj: Adjustment{IngredientID: ing.ID, Type: "gift", Amount: dec("1")}, want: apperr.ErrInvalid},
		{name: "unknown ingredient", adj: Adjustment{IngredientID: 9999, Type: Addition, Amount: dec("1")}, want: apperr.ErrNotFound},
	}

	for _, tt := range tests {
		if _, err := Adjust(context.Background(), db, tt.adj); !errors.Is(err, tt.want) {
			t.Fatalf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}

	var count int64
	if err := db.Model(&models.InventoryMovement{}).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 0 {
		t.Fatalf("movements = %d, want 0", count)
	}
}

func TestAdjustKeepsRecipeLink(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	ing := seedIngredient(t, db)
	recipeID := uint(42)

	result := adjust(t, db, Adjustment{IngredientID: ing.ID, Type: Removal, Amount: dec("1"), RecipeID: &recipeID})
	if result.Movement.RecipeID == nil || *result.Movement.RecipeID != 42 {
		t.Fatalf("RecipeID = %v, want 42", result.Movement.RecipeID)
	}
}

func TestSetThresholds(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	ing := seedIngredient(t, db)

	if _, err := SetThresholds(context.Background(), db, ing.ID, decimal.NewNullDecimal(dec("5")), decimal.NewNullDecimal(dec("2"))); !errors.Is(err, apperr.ErrInvalid) {
		t.Fatalf("min > max error = %v, want ErrInvalid", err)
	}
	if _, err := SetThresholds(context.Background(), db, 777, decimal.NullDecimal{}, decimal.NullDecimal{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown ingredient error = %v, want ErrNotFound", err)
	}

	level, err := SetThresholds(context.Background(), db, ing.ID, decimal.NewNullDecimal(dec("2")), decimal.NullDecimal{})
	if err != nil {
		t.Fatalf("SetThresholds() error = %v", err)
	}
	if level.StockStatus() != models.StockOutOfStock {
		t.Fatalf("status = %s, want out of stock", level.StockStatus())
	}

	adjust(t, db, Adjustment{IngredientID: ing.ID, Type: Addition, Amount: dec("1")})
	stored, err := Level(context.Background(), db, ing.ID)
	if err != nil {
		t.Fatalf("Level() error = %v", err)
	}
	if !stored.MinStock.Valid || stored.MaxStock.Valid || stored.StockStatus() != models.StockLow {
		t.Fatalf("stored thresholds min=%v max=%v status=%s", stored.MinStock, stored.MaxStock, stored.StockStatus())
	}
}

func TestLevelOfUntouchedIngredient(t *testing.T) {
	t.Parallel()
	db := dbtest.Open(t)
	ing := seedIngredient(t, db)

	level, err := Level(context.Background(), db, ing.ID)
	if err != nil {
		t.Fatalf("Level() error = %v", err)
	}
	if level.ID != 0 || level.IngredientID != ing.ID || !level.CurrentStock.IsZero() {
		t.Fatalf("unexpected level %+v", level)
	}
}
