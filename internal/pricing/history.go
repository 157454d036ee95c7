package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"costchef/internal/apperr"
	"costchef/models"
)

// DefaultRecentLimit bounds RecentChanges when the caller passes a non-positive limit.
const DefaultRecentLimit = 50

var nowFunc = time.Now

// Change is one price movement to be written to the ledger.
type Change struct {
	IngredientID uint
	SupplierID   *uint
	OldPrice     decimal.Decimal
	NewPrice     decimal.Decimal
	Actor        string
	Reason       string
}

// RecentChange is a history entry joined with the ingredient name for display. The name is
// empty when the ingredient no longer exists or was soft deleted, the same rule recipe costing
// uses for dangling lines.
type RecentChange struct {
	models.PriceHistory
	IngredientName string `json:"ingredient_name"`
}

// RecordChange appends one history entry. It writes nothing and returns a nil entry when the
// old and new prices are equal.
func RecordChange(ctx context.Context, tx *gorm.DB, change Change) (*models.PriceHistory, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidDB
	}
	if change.OldPrice.Equal(change.NewPrice) {
		return nil, nil
	}

	actor := change.Actor
	if actor == "" {
		actor = DefaultActor
	}

	entry := &models.PriceHistory{
		IngredientID: change.IngredientID,
		SupplierID:   change.SupplierID,
		OldPrice:     change.OldPrice,
		NewPrice:     change.NewPrice,
		ChangeDate:   nowFunc().UTC(),
		ChangedBy:    actor,
		Reason:       change.Reason,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, apperr.Storage("record price change", err)
	}
	return entry, nil
}

// HistoryFor returns the ingredient's history, newest first.
func HistoryFor(ctx context.Context, db *gorm.DB, ingredientID uint) ([]models.PriceHistory, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var entries []models.PriceHistory
	if err := db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("change_date desc, id desc").
		Find(&entries).Error; err != nil {
		return nil, apperr.Storage("load price history", err)
	}
	return entries, nil
}

// RecentChanges returns the latest changes across all ingredients, newest first.
func RecentChanges(ctx context.Context, db *gorm.DB, limit int) ([]RecentChange, error) {
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var rows []RecentChange
	if err := db.WithContext(ctx).
		Table("price_history").
		Select("price_history.*, COALESCE(ingredients.name, '') AS ingredient_name").
		Joins("LEFT JOIN ingredients ON ingredients.id = price_history.ingredient_id AND ingredients.deleted_at IS NULL").
		Order("price_history.change_date desc, price_history.id desc").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Storage("load recent price changes", err)
	}
	return rows, nil
}
