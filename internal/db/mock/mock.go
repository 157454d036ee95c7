package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"costchef/internal/db"
	"costchef/internal/inventory"
	applog "costchef/internal/log"
	"costchef/internal/pricing"
	"costchef/models"
)

var instances atomic.Uint64

// New returns an in-memory sqlite database seeded with a small demo kitchen: suppliers,
// ingredients with yield data, two costed recipes, stock levels and a price change.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:costchef-mock-%d?mode=memory&cache=shared", instances.Add(1))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return seed(ctx, tx)
	}); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func seed(ctx context.Context, tx *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	metro := models.Supplier{
		Name:          "Metro Cash & Carry",
		ContactPerson: "Dana Reyes",
		Phone:         "+1 555 0100",
		Email:         "orders@metro.example",
	}
	farm := models.Supplier{
		Name:          "Hillside Farm",
		ContactPerson: "Theo Marsh",
		Email:         "theo@hillside.example",
		Address:       "12 Orchard Lane",
	}
	for _, supplier := range []*models.Supplier{&metro, &farm} {
		if err := tx.Create(supplier).Error; err != nil {
			return err
		}
	}

	ingredients := []*models.Ingredient{
		{Name: "Plain Flour", Unit: "kg", Category: "Dry Goods", UnitPrice: d("1.20"), SupplierID: &metro.ID},
		{Name: "Unsalted Butter", Unit: "kg", Category: "Dairy", UnitPrice: d("8.50"), SupplierID: &metro.ID},
		{Name: "Free Range Eggs", Unit: "each", Category: "Dairy", UnitPrice: d("0.35"), SupplierID: &farm.ID},
		{Name: "Whole Chicken", Unit: "kg", Category: "Meat", UnitPrice: d("6.80"), SupplierID: &farm.ID,
			TrimWastePct: d("0.30"), CookingLossPct: d("0.25")},
		{Name: "Shallots", Unit: "kg", Category: "Produce", UnitPrice: d("4.00"),
			TrimWastePct: d("0.15")},
		{Name: "Double Cream", Unit: "l", Category: "Dairy", SupplierID: &metro.ID,
			IsMultiPack: true, MultiPackQty: d("6"), MultiPackPrice: d("21.00"), UnitPrice: d("3.50")},
	}
	for _, ing := range ingredients {
		if err := tx.Create(ing).Error; err != nil {
			return err
		}
	}
	flour, butter, eggs, chicken, shallots, cream := ingredients[0], ingredients[1], ingredients[2], ingredients[3], ingredients[4], ingredients[5]

	recipes := []struct {
		recipe models.Recipe
		lines  []models.RecipeIngredient
	}{
		{
			recipe: models.Recipe{
				Name: "Roast Chicken Supreme", Category: "Mains", Tags: "signature, gluten free",
				BatchYield: 4, SalesPrice: d("18.50"), TargetFoodCostPct: d("0.30"),
			},
			lines: []models.RecipeIngredient{
				{IngredientID: chicken.ID, Quantity: d("1.6")},
				{IngredientID: shallots.ID, Quantity: d("0.2")},
				{IngredientID: cream.ID, Quantity: d("0.25")},
				{IngredientID: butter.ID, Quantity: d("0.05")},
			},
		},
		{
			recipe: models.Recipe{
				Name: "Shortbread", Category: "Desserts", Tags: "bakery",
				BatchYield: 24, SalesPrice: d("2.50"), TargetFoodCostPct: d("0.25"),
			},
			lines: []models.RecipeIngredient{
				{IngredientID: flour.ID, Quantity: d("0.45")},
				{IngredientID: butter.ID, Quantity: d("0.30")},
				{IngredientID: eggs.ID, Quantity: d("1")},
			},
		},
	}
	for _, entry := range recipes {
		recipe := entry.recipe
		if err := tx.Omit("Ingredients").Create(&recipe).Error; err != nil {
			return err
		}
		for _, line := range entry.lines {
			line.RecipeID = recipe.ID
			if err := tx.Omit("Ingredient").Create(&line).Error; err != nil {
				return err
			}
		}
	}

	if _, err := pricing.ApplyPurchasePrice(ctx, tx, pricing.PurchaseRequest{
		IngredientID: butter.ID,
		NewPrice:     d("9.10"),
		SupplierID:   &metro.ID,
		Reason:       "Weekly invoice",
	}); err != nil {
		return err
	}
	if _, err := pricing.ApplyPurchasePrice(ctx, tx, pricing.PurchaseRequest{
		IngredientID: shallots.ID,
		NewPrice:     d("3.60"),
		SupplierID:   &farm.ID,
		Reason:       "Market run",
	}); err != nil {
		return err
	}

	stock := []inventory.Adjustment{
		{IngredientID: flour.ID, Type: inventory.Addition, Amount: d("25"), Reason: "Opening stock"},
		{IngredientID: butter.ID, Type: inventory.Addition, Amount: d("4"), Reason: "Opening stock"},
		{IngredientID: eggs.ID, Type: inventory.Addition, Amount: d("60"), Reason: "Opening stock"},
		{IngredientID: eggs.ID, Type: inventory.Waste, Amount: d("6"), Reason: "Cracked tray"},
		{IngredientID: chicken.ID, Type: inventory.Correction, Amount: d("3.2"), Reason: "Stock count"},
	}
	for _, adj := range stock {
		if _, err := inventory.Adjust(ctx, tx, adj); err != nil {
			return err
		}
	}
	if _, err := inventory.SetThresholds(ctx, tx, butter.ID, decimal.NewNullDecimal(d("5")), decimal.NullDecimal{}); err != nil {
		return err
	}

	return nil
}
