// Package costing turns ingredient prices, yield attributes and recipe composition into unit
// costs, recipe costs and a profitability verdict. It performs no I/O; callers load the models
// and decide what to do with the returned warnings.
package costing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"costchef/models"
)

// WarningKind names a data-quality problem that was clamped to a safe value.
type WarningKind string

const (
	WarnNegativePrice      WarningKind = "negative_price"
	WarnNegativeFraction   WarningKind = "negative_fraction"
	WarnFractionOverOne    WarningKind = "fraction_over_one"
	WarnPackQuantity       WarningKind = "pack_quantity"
	WarnYieldDivisor       WarningKind = "yield_divisor"
	WarnDanglingIngredient WarningKind = "dangling_ingredient"
	WarnNegativeQuantity   WarningKind = "negative_quantity"
)

// Warning describes one clamp applied while costing. The calculation still produced a value.
type Warning struct {
	Kind         WarningKind `json:"kind"`
	IngredientID uint        `json:"ingredient_id"`
	Field        string      `json:"field"`
	Detail       string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: ingredient %d %s (%s)", w.Kind, w.IngredientID, w.Field, w.Detail)
}

// YieldEpsilon replaces a yield divisor that would otherwise be zero or negative.
var YieldEpsilon = decimal.New(1, -4)

var one = decimal.NewFromInt(1)

// UnitCost is the effective cost of one usable unit of an ingredient.
type UnitCost struct {
	Value    decimal.Decimal `json:"value"`
	Base     decimal.Decimal `json:"base"`    // list or pack price per unit, before yield
	Divisor  decimal.Decimal `json:"divisor"` // (1 - trim) * (1 - cooking loss) after clamping
	Warnings []Warning       `json:"warnings,omitempty"`
}

// EffectiveUnitCost returns the real cost of one usable unit of the ingredient.
func EffectiveUnitCost(ing models.Ingredient) decimal.Decimal {
	return EvaluateIngredient(ing).Value
}

// EvaluateIngredient computes the effective unit cost along with every clamp applied to
// malformed stored values. The result is never negative.
func EvaluateIngredient(ing models.Ingredient) UnitCost {
	var warnings []Warning
	warn := func(kind WarningKind, field string, value decimal.Decimal, replacement decimal.Decimal) {
		warnings = append(warnings, Warning{
			Kind:         kind,
			IngredientID: ing.ID,
			Field:        field,
			Detail:       fmt.Sprintf("%s replaced by %s", value, replacement),
		})
	}

	base := ing.UnitPrice
	if ing.IsMultiPack {
		price := ing.MultiPackPrice
		if price.IsNegative() {
			warn(WarnNegativePrice, "multi_pack_price", price, decimal.Zero)
			price = decimal.Zero
		}
		qty := ing.MultiPackQty
		if !qty.IsPositive() {
			warn(WarnPackQuantity, "multi_pack_qty", qty, one)
			qty = one
		}
		base = price.Div(qty)
	} else if base.IsNegative() {
		warn(WarnNegativePrice, "unit_price", base, decimal.Zero)
		base = decimal.Zero
	}

	trim := clampFraction(ing.TrimWastePct, "trim_waste_pct", warn)
	cook := clampFraction(ing.CookingLossPct, "cooking_loss_pct", warn)

	divisor := one.Sub(trim).Mul(one.Sub(cook))
	if !divisor.IsPositive() {
		warn(WarnYieldDivisor, "yield", divisor, YieldEpsilon)
		divisor = YieldEpsilon
	}

	return UnitCost{
		Value:    base.Div(divisor),
		Base:     base,
		Divisor:  divisor,
		Warnings: warnings,
	}
}

// clampFraction bounds a loss fraction to [0, 1]. A fraction of one leaves nothing usable and is
// caught by the yield divisor check.
func clampFraction(value decimal.Decimal, field string, warn func(WarningKind, string, decimal.Decimal, decimal.Decimal)) decimal.Decimal {
	switch {
	case value.IsNegative():
		warn(WarnNegativeFraction, field, value, decimal.Zero)
		return decimal.Zero
	case value.GreaterThan(one):
		warn(WarnFractionOverOne, field, value, one)
		return one
	default:
		return value
	}
}
