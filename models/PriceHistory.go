package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrImmutableRecord is returned when an append-only ledger row is updated or deleted.
var ErrImmutableRecord = errors.New("models: ledger records are append-only")

// PriceHistory records one accepted change of an ingredient's purchase price.
type PriceHistory struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	IngredientID uint            `gorm:"not null;index" json:"ingredient_id"`
	SupplierID   *uint           `gorm:"index" json:"supplier_id,omitempty"`
	OldPrice     decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"old_price"`
	NewPrice     decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"new_price"`
	ChangeDate   time.Time       `gorm:"not null;index" json:"change_date"`
	ChangedBy    string          `gorm:"not null" json:"changed_by"`
	Reason       string          `gorm:"type:text" json:"reason"`
}

func (PriceHistory) TableName() string { return "price_history" }

func (PriceHistory) BeforeUpdate(*gorm.DB) error { return ErrImmutableRecord }

func (PriceHistory) BeforeDelete(*gorm.DB) error { return ErrImmutableRecord }

// Change is NewPrice - OldPrice.
func (p PriceHistory) Change() decimal.Decimal {
	return p.NewPrice.Sub(p.OldPrice)
}

// PercentChange is the change as a fraction of the old price, zero when the old price was zero.
func (p PriceHistory) PercentChange() decimal.Decimal {
	if p.OldPrice.IsZero() {
		return decimal.Zero
	}
	return p.Change().Div(p.OldPrice)
}

func (p PriceHistory) IsIncrease() bool {
	return p.Change().IsPositive()
}
