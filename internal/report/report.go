// Package report renders engine values for people: money with the operator's currency, food
// cost fractions as percentages and the menu profitability sheet as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"costchef/internal/config"
	"costchef/internal/engine"
)

var hundred = decimal.NewFromInt(100)

// Formatter is built from the operator settings and passed to whoever renders values.
type Formatter struct {
	Currency string
	Places   int32
}

func NewFormatter(settings config.Settings) Formatter {
	places := settings.MoneyPlaces
	if places < 0 {
		places = 2
	}
	return Formatter{Currency: settings.CurrencySymbol, Places: places}
}

// Money renders an amount as "$12.50", with the sign ahead of the symbol.
func (f Formatter) Money(value decimal.Decimal) string {
	fixed := value.Abs().StringFixed(f.Places)
	if value.IsNegative() && fixed != decimal.Zero.StringFixed(f.Places) {
		return "-" + f.Currency + fixed
	}
	return f.Currency + fixed
}

// Percent renders a fraction as a percentage with one decimal: 0.305 is "30.5%".
func (f Formatter) Percent(fraction decimal.Decimal) string {
	return fraction.Mul(hundred).StringFixed(1) + "%"
}

// Quantity renders a quantity with two decimals and a trailing unit.
func (f Formatter) Quantity(value decimal.Decimal, unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return value.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", value.StringFixed(2), unit)
}

func (f Formatter) Date(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format("02 Jan 2006")
}

var menuHeader = []string{
	"Recipe", "Category", "Sales price", "Cost per serving", "Food cost", "Target",
	"Gross profit", "Margin", "Status",
}

// WriteMenuCSV writes the menu profitability sheet with formatted values.
func (f Formatter) WriteMenuCSV(w io.Writer, rows []engine.MenuRow) error {
	out := csv.NewWriter(w)
	if err := out.Write(menuHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Name,
			row.Category,
			f.Money(row.SalesPrice),
			f.Money(row.CostPerServing),
			f.Percent(row.FoodCostPct),
			f.Percent(row.TargetFoodCostPct),
			f.Money(row.GrossProfit),
			f.Percent(row.MarginPct),
			string(row.Status),
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}
