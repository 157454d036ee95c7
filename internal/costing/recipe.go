package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"costchef/models"
)

// LineCost is the contribution of one recipe line.
type LineCost struct {
	LineID         uint            `json:"line_id"`
	IngredientID   uint            `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Cost           decimal.Decimal `json:"cost"`
	Resolved       bool            `json:"resolved"`
}

// RecipeCost is recomputed from current ingredient prices on every call.
type RecipeCost struct {
	Lines          []LineCost      `json:"lines"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	CostPerServing decimal.Decimal `json:"cost_per_serving"`
	Servings       int             `json:"servings"`
	Warnings       []Warning       `json:"warnings,omitempty"`
}

// CostRecipe sums quantity * effective unit cost over the recipe's lines. Lines whose
// ingredient cannot be resolved contribute zero and produce a warning.
func CostRecipe(recipe models.Recipe) RecipeCost {
	result := RecipeCost{
		Lines:     make([]LineCost, 0, len(recipe.Ingredients)),
		TotalCost: decimal.Zero,
		Servings:  recipe.Servings(),
	}

	for _, line := range recipe.Ingredients {
		lc := LineCost{
			LineID:       line.ID,
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
			UnitCost:     decimal.Zero,
			Cost:         decimal.Zero,
		}

		if line.Ingredient == nil || line.Ingredient.ID == 0 {
			result.Warnings = append(result.Warnings, Warning{
				Kind:         WarnDanglingIngredient,
				IngredientID: line.IngredientID,
				Field:        "ingredient_id",
				Detail:       fmt.Sprintf("recipe line %d counted at zero cost", line.ID),
			})
			result.Lines = append(result.Lines, lc)
			continue
		}

		quantity := line.Quantity
		if quantity.IsNegative() {
			result.Warnings = append(result.Warnings, Warning{
				Kind:         WarnNegativeQuantity,
				IngredientID: line.IngredientID,
				Field:        "quantity",
				Detail:       fmt.Sprintf("recipe line %d quantity %s replaced by 0", line.ID, quantity),
			})
			quantity = decimal.Zero
		}

		unit := EvaluateIngredient(*line.Ingredient)
		result.Warnings = append(result.Warnings, unit.Warnings...)

		lc.IngredientName = line.Ingredient.Name
		lc.Unit = line.Ingredient.Unit
		lc.UnitCost = unit.Value
		lc.Cost = quantity.Mul(unit.Value)
		lc.Resolved = true

		result.TotalCost = result.TotalCost.Add(lc.Cost)
		result.Lines = append(result.Lines, lc)
	}

	result.CostPerServing = result.TotalCost.Div(decimal.NewFromInt(int64(result.Servings)))
	return result
}

func TotalCost(recipe models.Recipe) decimal.Decimal {
	return CostRecipe(recipe).TotalCost
}

func CostPerServing(recipe models.Recipe) decimal.Decimal {
	return CostRecipe(recipe).CostPerServing
}
