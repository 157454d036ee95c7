// Package pricing decides whether an observed purchase price may overwrite an ingredient's
// stored price and keeps the append-only history of accepted changes. Every function takes
// the transaction handle it must run in; callers own commit and rollback.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"costchef/internal/apperr"
	"costchef/models"
)

// Outcome is the result of a purchase price request.
type Outcome string

const (
	Applied  Outcome = "applied"
	Rejected Outcome = "rejected"
	NoChange Outcome = "no_change"
)

// DefaultActor labels history entries written from purchase entry.
const DefaultActor = "PurchaseEntry"

const (
	ReasonNonPositivePrice = "price must be greater than zero"
	ReasonSupplierMismatch = "purchase supplier is not the ingredient's supplier; record this price on a separate ingredient"
)

// PurchaseRequest is a price observed on a purchase. SupplierID is the supplier the purchase was
// made from and may be nil.
type PurchaseRequest struct {
	IngredientID uint
	NewPrice     decimal.Decimal
	SupplierID   *uint
	Reason       string
	Actor        string
}

type Result struct {
	Outcome         Outcome              `json:"outcome"`
	RejectReason    string               `json:"reject_reason,omitempty"`
	Ingredient      models.Ingredient    `json:"ingredient"`
	OldPrice        decimal.Decimal      `json:"old_price"`
	Entry           *models.PriceHistory `json:"entry,omitempty"`
	SupplierAdopted bool                 `json:"supplier_adopted"`
}

// ApplyPurchasePrice evaluates the governance rules in order:
//
//  1. a non-positive price is rejected;
//  2. a purchase supplier is adopted when the ingredient has none;
//  3. a purchase supplier different from the ingredient's supplier is rejected;
//  4. an identical price with an unchanged supplier is a no-op;
//  5. otherwise the price (and adopted supplier) is written with one history entry.
//
// The price is rounded to the stored scale first. Rejected and NoChange outcomes never write.
func ApplyPurchasePrice(ctx context.Context, tx *gorm.DB, req PurchaseRequest) (Result, error) {
	if tx == nil {
		return Result{}, gorm.ErrInvalidDB
	}

	newPrice := req.NewPrice.Round(models.PriceScale)
	if !newPrice.IsPositive() {
		return Result{Outcome: Rejected, RejectReason: ReasonNonPositivePrice}, nil
	}

	ing, err := lockIngredient(ctx, tx, req.IngredientID)
	if err != nil {
		return Result{}, err
	}
	result := Result{Ingredient: ing, OldPrice: ing.UnitPrice}

	purchaseSupplier := normalizeID(req.SupplierID)
	if purchaseSupplier != nil {
		if err := ensureSupplier(ctx, tx, *purchaseSupplier); err != nil {
			return Result{}, err
		}
	}

	adopt := false
	if purchaseSupplier != nil {
		switch {
		case !ing.HasSupplier():
			adopt = true
		case *ing.SupplierID != *purchaseSupplier:
			result.Outcome = Rejected
			result.RejectReason = ReasonSupplierMismatch
			return result, nil
		}
	}

	if !adopt && ing.UnitPrice.Equal(newPrice) {
		result.Outcome = NoChange
		return result, nil
	}

	updates := map[string]any{"unit_price": newPrice}
	if adopt {
		updates["supplier_id"] = *purchaseSupplier
	}
	if err := tx.WithContext(ctx).Model(&models.Ingredient{}).Where("id = ?", ing.ID).Updates(updates).Error; err != nil {
		return Result{}, apperr.Storage("update ingredient price", err)
	}

	ing.UnitPrice = newPrice
	if adopt {
		ing.SupplierID = purchaseSupplier
	}

	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = DefaultActor
	}

	entry, err := RecordChange(ctx, tx, Change{
		IngredientID: ing.ID,
		SupplierID:   ing.SupplierID,
		OldPrice:     result.OldPrice,
		NewPrice:     newPrice,
		Actor:        actor,
		Reason:       strings.TrimSpace(req.Reason),
	})
	if err != nil {
		return Result{}, err
	}

	result.Outcome = Applied
	result.Ingredient = ing
	result.Entry = entry
	result.SupplierAdopted = adopt
	return result, nil
}

// lockIngredient loads the ingredient, holding a row lock on dialects that support one so two
// purchase updates cannot interleave their compare and write.
func lockIngredient(ctx context.Context, tx *gorm.DB, id uint) (models.Ingredient, error) {
	query := tx.WithContext(ctx)
	if supportsRowLocks(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ing models.Ingredient
	if err := query.First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Ingredient{}, apperr.NotFound("ingredient", id)
		}
		return models.Ingredient{}, apperr.Storage("load ingredient", err)
	}
	return ing, nil
}

func ensureSupplier(ctx context.Context, tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Storage("load supplier", err)
	}
	if count == 0 {
		return apperr.Invalid("supplier_id", fmt.Sprintf("supplier %d does not exist", id))
	}
	return nil
}

func supportsRowLocks(tx *gorm.DB) bool {
	return tx.Dialector != nil && tx.Dialector.Name() == "postgres"
}

func normalizeID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}
