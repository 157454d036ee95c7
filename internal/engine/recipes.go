package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"costchef/internal/apperr"
	"costchef/internal/costing"
	"costchef/models"
)

// RecipeInput describes a menu item. A missing target uses the engine default.
type RecipeInput struct {
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	Category          string              `json:"category"`
	Tags              string              `json:"tags"`
	BatchYield        int                 `json:"batch_yield"`
	TargetFoodCostPct decimal.NullDecimal `json:"target_food_cost_pct"`
	SalesPrice        decimal.Decimal     `json:"sales_price"`
}

// RecipeView is a recipe with its cost and verdict recomputed from current prices.
type RecipeView struct {
	Recipe        models.Recipe         `json:"recipe"`
	Cost          costing.RecipeCost    `json:"cost"`
	Profitability costing.Profitability `json:"profitability"`
}

// MenuRow is one line of the menu profitability report.
type MenuRow struct {
	RecipeID          uint            `json:"recipe_id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	SalesPrice        decimal.Decimal `json:"sales_price"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	CostPerServing    decimal.Decimal `json:"cost_per_serving"`
	Servings          int             `json:"servings"`
	TargetFoodCostPct decimal.Decimal `json:"target_food_cost_pct"`
	costing.Profitability
}

func (e *Engine) CreateRecipe(ctx context.Context, in RecipeInput) (RecipeView, error) {
	recipe := models.Recipe{}
	if err := e.applyRecipeInput(&recipe, in); err != nil {
		return RecipeView{}, err
	}

	err := e.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients").Create(&recipe).Error; err != nil {
			return apperr.Storage("create recipe", err)
		}
		return nil
	})
	if err != nil {
		return RecipeView{}, err
	}
	return e.GetRecipeWithCost(ctx, recipe.ID)
}

// UpdateRecipe replaces the recipe's attributes; its lines are left alone.
func (e *Engine) UpdateRecipe(ctx context.Context, id uint, in RecipeInput) (RecipeView, error) {
	err := e.transaction(ctx, func(tx *gorm.DB) error {
		recipe, err := loadRecipeRow(tx, id)
		if err != nil {
			return err
		}
		if err := e.applyRecipeInput(&recipe, in); err != nil {
			return err
		}
		if err := tx.Model(&recipe).
			Select("name", "description", "category", "tags", "batch_yield", "target_food_cost_pct", "sales_price").
			Updates(&recipe).Error; err != nil {
			return apperr.Storage("update recipe", err)
		}
		return nil
	})
	if err != nil {
		return RecipeView{}, err
	}
	return e.GetRecipeWithCost(ctx, id)
}

// AddRecipeLine appends a quantity of an ingredient to the recipe.
func (e *Engine) AddRecipeLine(ctx context.Context, recipeID, ingredientID uint, quantity decimal.Decimal) (RecipeView, error) {
	quantity = quantity.Round(models.QuantityScale)
	if quantity.IsNegative() {
		return RecipeView{}, apperr.Invalid("quantity", "must not be negative")
	}

	err := e.transaction(ctx, func(tx *gorm.DB) error {
		if _, err := loadRecipeRow(tx, recipeID); err != nil {
			return err
		}
		if _, err := loadIngredient(tx, ingredientID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Invalid("ingredient_id", err.Error())
			}
			return err
		}

		line := models.RecipeIngredient{RecipeID: recipeID, IngredientID: ingredientID, Quantity: quantity}
		if err := tx.Omit("Ingredient").Create(&line).Error; err != nil {
			return apperr.Storage("add recipe line", err)
		}
		return nil
	})
	if err != nil {
		return RecipeView{}, err
	}
	return e.GetRecipeWithCost(ctx, recipeID)
}

// RemoveRecipeLine deletes a line owned by the recipe.
func (e *Engine) RemoveRecipeLine(ctx context.Context, recipeID, lineID uint) (RecipeView, error) {
	err := e.transaction(ctx, func(tx *gorm.DB) error {
		result := tx.Unscoped().Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}, lineID)
		if result.Error != nil {
			return apperr.Storage("remove recipe line", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("recipe line", lineID)
		}
		return nil
	})
	if err != nil {
		return RecipeView{}, err
	}
	return e.GetRecipeWithCost(ctx, recipeID)
}

// GetRecipeWithCost loads the recipe with its lines and recomputes cost and profitability.
func (e *Engine) GetRecipeWithCost(ctx context.Context, id uint) (RecipeView, error) {
	db, err := e.read(ctx)
	if err != nil {
		return RecipeView{}, err
	}

	var recipe models.Recipe
	if err := preloadLines(db).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecipeView{}, apperr.NotFound("recipe", id)
		}
		return RecipeView{}, apperr.Storage("load recipe", err)
	}
	return e.costRecipe(ctx, recipe), nil
}

func (e *Engine) ListRecipes(ctx context.Context) ([]RecipeView, error) {
	recipes, err := e.loadRecipes(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]RecipeView, 0, len(recipes))
	for _, recipe := range recipes {
		views = append(views, e.costRecipe(ctx, recipe))
	}
	return views, nil
}

// ListMenuProfitability returns one row per recipe, ordered by name.
func (e *Engine) ListMenuProfitability(ctx context.Context) ([]MenuRow, error) {
	recipes, err := e.loadRecipes(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]MenuRow, 0, len(recipes))
	for _, recipe := range recipes {
		view := e.costRecipe(ctx, recipe)
		rows = append(rows, MenuRow{
			RecipeID:          recipe.ID,
			Name:              recipe.Name,
			Category:          recipe.Category,
			SalesPrice:        recipe.SalesPrice,
			TotalCost:         view.Cost.TotalCost,
			CostPerServing:    view.Cost.CostPerServing,
			Servings:          view.Cost.Servings,
			TargetFoodCostPct: recipe.TargetFoodCostPct,
			Profitability:     view.Profitability,
		})
	}
	return rows, nil
}

func (e *Engine) loadRecipes(ctx context.Context) ([]models.Recipe, error) {
	db, err := e.read(ctx)
	if err != nil {
		return nil, err
	}

	var recipes []models.Recipe
	if err := preloadLines(db).Order("name asc, id asc").Find(&recipes).Error; err != nil {
		return nil, apperr.Storage("list recipes", err)
	}
	return recipes, nil
}

func (e *Engine) costRecipe(ctx context.Context, recipe models.Recipe) RecipeView {
	cost := costing.CostRecipe(recipe)
	e.reportWarnings(ctx, cost.Warnings)
	return RecipeView{
		Recipe:        recipe,
		Cost:          cost,
		Profitability: costing.ClassifyRecipe(recipe, cost),
	}
}

func (e *Engine) applyRecipeInput(recipe *models.Recipe, in RecipeInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Invalid("name", "is required")
	}
	if in.SalesPrice.IsNegative() {
		return apperr.Invalid("sales_price", "must not be negative")
	}

	target := e.target
	if in.TargetFoodCostPct.Valid {
		target = in.TargetFoodCostPct.Decimal
	}
	if err := checkFraction("target_food_cost_pct", target); err != nil {
		return err
	}

	recipe.Name = name
	recipe.Description = strings.TrimSpace(in.Description)
	recipe.Category = strings.TrimSpace(in.Category)
	recipe.Tags = strings.Join(models.Recipe{Tags: in.Tags}.TagList(), ", ")
	recipe.BatchYield = in.BatchYield
	if recipe.BatchYield < 1 {
		recipe.BatchYield = 1
	}
	recipe.TargetFoodCostPct = target
	recipe.SalesPrice = in.SalesPrice.Round(models.PriceScale)
	return nil
}

// preloadLines loads recipe lines in insertion order together with their ingredients. A line
// whose ingredient was deleted keeps a nil Ingredient.
func preloadLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Preload("Ingredients.Ingredient")
}

func loadRecipeRow(db *gorm.DB, id uint) (models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Recipe{}, apperr.NotFound("recipe", id)
		}
		return models.Recipe{}, apperr.Storage("load recipe", err)
	}
	return recipe, nil
}

