package models

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestRecipeServings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		yield int
		want  int
	}{
		{"positive", 4, 4},
		{"zero", 0, 1},
		{"negative", -3, 1},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := (Recipe{BatchYield: tt.yield}).Servings(); got != tt.want {
				t.Fatalf("Servings() with yield %d = %d, want %d", tt.yield, got, tt.want)
			}
		})
	}
}

func TestRecipeTagList(t *testing.T) {
	t.Parallel()

	got := Recipe{Tags: " vegan, ,gluten-free ,spicy"}.TagList()
	want := []string{"vegan", "gluten-free", "spicy"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TagList() = %v, want %v", got, want)
	}
	if tags := (Recipe{}).TagList(); len(tags) != 0 {
		t.Fatalf("expected no tags, got %v", tags)
	}
}

func TestIngredientDerivedYield(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		trim string
		cook string
		want string
	}{
		{"no loss", "0", "0", "1"},
		{"combined loss", "0.2", "0.5", "0.4"},
		{"total trim", "1", "0.1", "0"},
		{"over-trimmed", "1.5", "0", "0"},
		{"negative fractions", "-0.5", "0", "1"},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ing := Ingredient{TrimWastePct: dec(tt.trim), CookingLossPct: dec(tt.cook)}
			if got := ing.DerivedYield(); !got.Equal(dec(tt.want)) {
				t.Fatalf("DerivedYield() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIngredientBeforeSaveRefreshesYield(t *testing.T) {
	t.Parallel()

	ing := Ingredient{TrimWastePct: dec("0.25")}
	if err := ing.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}
	if !ing.YieldPct.Equal(dec("0.75")) {
		t.Fatalf("YieldPct = %s, want 0.75", ing.YieldPct)
	}
}

func TestPriceHistoryDerivedValues(t *testing.T) {
	t.Parallel()

	entry := PriceHistory{OldPrice: dec("2.00"), NewPrice: dec("2.50")}
	if !entry.Change().Equal(dec("0.5")) {
		t.Fatalf("Change() = %s", entry.Change())
	}
	if !entry.PercentChange().Equal(dec("0.25")) {
		t.Fatalf("PercentChange() = %s", entry.PercentChange())
	}
	if !entry.IsIncrease() {
		t.Fatal("expected increase")
	}

	fromZero := PriceHistory{OldPrice: decimal.Zero, NewPrice: dec("3")}
	if !fromZero.PercentChange().IsZero() {
		t.Fatalf("PercentChange() from zero = %s, want 0", fromZero.PercentChange())
	}

	drop := PriceHistory{OldPrice: dec("4"), NewPrice: dec("3")}
	if drop.IsIncrease() {
		t.Fatal("expected decrease")
	}
}

func TestInventoryLevelStockStatus(t *testing.T) {
	t.Parallel()

	threshold := func(v string) decimal.NullDecimal {
		return decimal.NewNullDecimal(dec(v))
	}

	cases := []struct {
		name  string
		level InventoryLevel
		want  string
	}{
		{"empty", InventoryLevel{CurrentStock: decimal.Zero}, StockOutOfStock},
		{"below minimum", InventoryLevel{CurrentStock: dec("2"), MinStock: threshold("5")}, StockLow},
		{"above maximum", InventoryLevel{CurrentStock: dec("20"), MaxStock: threshold("10")}, StockOver},
		{"within band", InventoryLevel{CurrentStock: dec("7"), MinStock: threshold("5"), MaxStock: threshold("10")}, StockIn},
		{"no thresholds", InventoryLevel{CurrentStock: dec("1")}, StockIn},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.level.StockStatus(); got != tt.want {
				t.Fatalf("StockStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
