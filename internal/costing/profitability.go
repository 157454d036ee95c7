package costing

import (
	"github.com/shopspring/decimal"

	"costchef/models"
)

// Status is the profitability verdict for a menu item.
type Status string

const (
	StatusNoPrice     Status = "No Price"
	StatusNoCost      Status = "No Cost"
	StatusAboveTarget Status = "Above Target"
	StatusBelowTarget Status = "Below Target"
	StatusOnTarget    Status = "On Target"
)

// TargetTolerance is the symmetric band around the target food-cost percentage that still
// counts as on target.
var TargetTolerance = decimal.RequireFromString("0.02")

type ProfitabilityInput struct {
	CostPerServing    decimal.Decimal
	TotalCost         decimal.Decimal
	SalesPrice        decimal.Decimal
	TargetFoodCostPct decimal.Decimal
}

// Profitability holds fractions, not percentages: 0.30 is thirty percent.
type Profitability struct {
	FoodCostPct decimal.Decimal `json:"food_cost_pct"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	MarginPct   decimal.Decimal `json:"margin_pct"`
	Variance    decimal.Decimal `json:"variance"`
	Status      Status          `json:"status"`
}

// Classify derives the food-cost metrics and the status. Checks run in a fixed order: a missing
// price wins over a missing cost.
func Classify(in ProfitabilityInput) Profitability {
	out := Profitability{
		FoodCostPct: decimal.Zero,
		GrossProfit: decimal.Zero,
		MarginPct:   decimal.Zero,
	}

	priced := in.SalesPrice.IsPositive()
	if priced {
		out.FoodCostPct = in.CostPerServing.Div(in.SalesPrice)
		out.GrossProfit = in.SalesPrice.Sub(in.CostPerServing)
		out.MarginPct = out.GrossProfit.Div(in.SalesPrice)
	}
	out.Variance = out.FoodCostPct.Sub(in.TargetFoodCostPct)

	switch {
	case !priced:
		out.Status = StatusNoPrice
	case in.TotalCost.IsZero():
		out.Status = StatusNoCost
	case out.FoodCostPct.GreaterThan(in.TargetFoodCostPct.Add(TargetTolerance)):
		out.Status = StatusAboveTarget
	case out.FoodCostPct.LessThan(in.TargetFoodCostPct.Sub(TargetTolerance)):
		out.Status = StatusBelowTarget
	default:
		out.Status = StatusOnTarget
	}
	return out
}

// ClassifyRecipe classifies a recipe from its freshly computed cost.
func ClassifyRecipe(recipe models.Recipe, cost RecipeCost) Profitability {
	return Classify(ProfitabilityInput{
		CostPerServing:    cost.CostPerServing,
		TotalCost:         cost.TotalCost,
		SalesPrice:        recipe.SalesPrice,
		TargetFoodCostPct: recipe.TargetFoodCostPct,
	})
}
