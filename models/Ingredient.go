package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Scales of the stored decimal columns. Values are rounded to these before comparison and
// storage so the database never rounds a value the application compared unrounded.
const (
	PriceScale    int32 = 4
	QuantityScale int32 = 4
)

// Ingredient is a purchasable item with its list price and the yield attributes used to derive
// the real cost of a usable unit.
type Ingredient struct {
	gorm.Model
	Name       string          `gorm:"uniqueIndex;not null" json:"name"`
	Unit       string          `gorm:"not null;default:unit" json:"unit"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"unit_price"`
	Category   string          `json:"category"`
	SupplierID *uint           `gorm:"index" json:"supplier_id,omitempty"`
	Supplier   *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	// --- Yield management ---
	// Fractions, 0.10 means ten percent.
	TrimWastePct   decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"trim_waste_pct"`
	CookingLossPct decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"cooking_loss_pct"`
	IsMultiPack    bool            `gorm:"not null;default:false" json:"is_multi_pack"`
	MultiPackQty   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"multi_pack_qty"`
	MultiPackPrice decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"multi_pack_price"`

	// YieldPct is refreshed on save for reporting. Cost calculations derive yield from the
	// trim and cooking fractions and never read this column.
	YieldPct decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"yield_pct"`
}

// BeforeSave keeps the stored yield percentage in step with the loss fractions.
func (i *Ingredient) BeforeSave(*gorm.DB) error {
	i.YieldPct = i.DerivedYield()
	return nil
}

// DerivedYield returns (1 - trim waste) * (1 - cooking loss) bounded to [0, 1].
func (i Ingredient) DerivedYield() decimal.Decimal {
	one := decimal.NewFromInt(1)
	yield := one.Sub(i.TrimWastePct).Mul(one.Sub(i.CookingLossPct))
	if yield.IsNegative() {
		return decimal.Zero
	}
	if yield.GreaterThan(one) {
		return one
	}
	return yield
}

// HasSupplier reports whether the ingredient currently references a supplier.
func (i Ingredient) HasSupplier() bool {
	return i.SupplierID != nil && *i.SupplierID != 0
}
