package engine

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"costchef/internal/apperr"
	applog "costchef/internal/log"
	"costchef/internal/pricing"
	"costchef/models"
)

// ApplyPurchasePrice runs price governance and the history write in one transaction. Policy
// rejections come back as a Rejected outcome with a nil error.
func (e *Engine) ApplyPurchasePrice(ctx context.Context, req pricing.PurchaseRequest) (pricing.Result, error) {
	var result pricing.Result
	err := e.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = pricing.ApplyPurchasePrice(ctx, tx, req)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrStorage) {
			applog.Error(ctx, "purchase price update failed", "ingredient_id", req.IngredientID, "error", err)
		} else {
			applog.Debug(ctx, "purchase price request refused", "ingredient_id", req.IngredientID, "error", err)
		}
		return pricing.Result{}, err
	}

	e.metrics.PriceUpdate(string(result.Outcome))
	args := []any{
		"ingredient_id", req.IngredientID,
		"outcome", string(result.Outcome),
		"old_price", result.OldPrice.String(),
		"new_price", req.NewPrice.String(),
	}
	if result.RejectReason != "" {
		args = append(args, "reason", result.RejectReason)
	}
	if result.SupplierAdopted {
		args = append(args, "supplier_adopted", true)
	}
	applog.Info(ctx, "purchase price evaluated", args...)
	return result, nil
}

// GetPriceHistory returns the ingredient's price changes, newest first.
func (e *Engine) GetPriceHistory(ctx context.Context, ingredientID uint) ([]models.PriceHistory, error) {
	db, err := e.read(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.HistoryFor(ctx, db, ingredientID)
}

// RecentPriceChanges lists the latest changes across ingredients. A non-positive limit uses
// the configured default.
func (e *Engine) RecentPriceChanges(ctx context.Context, limit int) ([]pricing.RecentChange, error) {
	db, err := e.read(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.recent
	}
	return pricing.RecentChanges(ctx, db, limit)
}
