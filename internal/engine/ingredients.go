package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"costchef/internal/apperr"
	"costchef/internal/costing"
	"costchef/models"
)

// IngredientDetails are the manually edited attributes of an ingredient. Price and supplier
// are absent on purpose: they only change through purchase price governance.
type IngredientDetails struct {
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	Category       string          `json:"category"`
	TrimWastePct   decimal.Decimal `json:"trim_waste_pct"`
	CookingLossPct decimal.Decimal `json:"cooking_loss_pct"`
	IsMultiPack    bool            `json:"is_multi_pack"`
	MultiPackQty   decimal.Decimal `json:"multi_pack_qty"`
	MultiPackPrice decimal.Decimal `json:"multi_pack_price"`
}

// NewIngredient carries the initial list price and supplier of a new ingredient.
type NewIngredient struct {
	IngredientDetails
	UnitPrice  decimal.Decimal `json:"unit_price"`
	SupplierID *uint           `json:"supplier_id"`
}

type IngredientView struct {
	models.Ingredient
	EffectiveUnitCost decimal.Decimal   `json:"effective_unit_cost"`
	Warnings          []costing.Warning `json:"warnings,omitempty"`
}

type SupplierInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

func (e *Engine) GetIngredient(ctx context.Context, id uint) (IngredientView, error) {
	db, err := e.read(ctx)
	if err != nil {
		return IngredientView{}, err
	}
	ing, err := loadIngredient(db.Preload("Supplier"), id)
	if err != nil {
		return IngredientView{}, err
	}
	return e.viewIngredient(ctx, ing), nil
}

func (e *Engine) ListIngredients(ctx context.Context) ([]IngredientView, error) {
	db, err := e.read(ctx)
	if err != nil {
		return nil, err
	}

	var ingredients []models.Ingredient
	if err := db.Preload("Supplier").Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, apperr.Storage("list ingredients", err)
	}

	views := make([]IngredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		views = append(views, e.viewIngredient(ctx, ing))
	}
	return views, nil
}

// FindIngredientByName resolves an ingredient by its exact, case-insensitive name.
func (e *Engine) FindIngredientByName(ctx context.Context, name string) (models.Ingredient, error) {
	db, err := e.read(ctx)
	if err != nil {
		return models.Ingredient{}, err
	}

	var ing models.Ingredient
	err = db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&ing).Error
	switch {
	case err == nil:
		return ing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.Ingredient{}, fmt.Errorf("ingredient %q: %w", name, apperr.ErrNotFound)
	default:
		return models.Ingredient{}, apperr.Storage("find ingredient", err)
	}
}

func (e *Engine) CreateIngredient(ctx context.Context, in NewIngredient) (IngredientView, error) {
	details, err := normalizeDetails(in.IngredientDetails)
	if err != nil {
		return IngredientView{}, err
	}
	if in.UnitPrice.IsNegative() {
		return IngredientView{}, apperr.Invalid("unit_price", "must not be negative")
	}

	ing := models.Ingredient{UnitPrice: in.UnitPrice.Round(models.PriceScale)}
	applyDetails(&ing, details)

	err = e.transaction(ctx, func(tx *gorm.DB) error {
		if err := ensureUniqueIngredientName(tx, ing.Name, 0); err != nil {
			return err
		}
		if in.SupplierID != nil && *in.SupplierID != 0 {
			if _, err := loadSupplier(tx, *in.SupplierID); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return apperr.Invalid("supplier_id", err.Error())
				}
				return err
			}
			supplierID := *in.SupplierID
			ing.SupplierID = &supplierID
		}
		if err := tx.Create(&ing).Error; err != nil {
			return apperr.Storage("create ingredient", err)
		}
		return nil
	})
	if err != nil {
		return IngredientView{}, err
	}
	return e.GetIngredient(ctx, ing.ID)
}

// UpdateIngredient replaces the descriptive and yield attributes. The stored price and
// supplier are left untouched.
func (e *Engine) UpdateIngredient(ctx context.Context, id uint, in IngredientDetails) (IngredientView, error) {
	details, err := normalizeDetails(in)
	if err != nil {
		return IngredientView{}, err
	}

	err = e.transaction(ctx, func(tx *gorm.DB) error {
		ing, err := loadIngredient(tx, id)
		if err != nil {
			return err
		}
		if err := ensureUniqueIngredientName(tx, details.Name, id); err != nil {
			return err
		}

		applyDetails(&ing, details)
		if err := tx.Model(&ing).
			Select("name", "unit", "category", "trim_waste_pct", "cooking_loss_pct",
				"is_multi_pack", "multi_pack_qty", "multi_pack_price", "yield_pct").
			Updates(&ing).Error; err != nil {
			return apperr.Storage("update ingredient", err)
		}
		return nil
	})
	if err != nil {
		return IngredientView{}, err
	}
	return e.GetIngredient(ctx, id)
}

func (e *Engine) CreateSupplier(ctx context.Context, in SupplierInput) (models.Supplier, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Supplier{}, apperr.Invalid("name", "is required")
	}

	supplier := models.Supplier{
		Name:          name,
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Phone:         strings.TrimSpace(in.Phone),
		Email:         strings.TrimSpace(in.Email),
		Address:       strings.TrimSpace(in.Address),
	}

	err := e.transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Unscoped().Model(&models.Supplier{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&count).Error; err != nil {
			return apperr.Storage("check supplier name", err)
		}
		if count > 0 {
			return apperr.Invalid("name", fmt.Sprintf("supplier %q already exists", name))
		}
		if err := tx.Create(&supplier).Error; err != nil {
			return apperr.Storage("create supplier", err)
		}
		return nil
	})
	if err != nil {
		return models.Supplier{}, err
	}
	return supplier, nil
}

func (e *Engine) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	db, err := e.read(ctx)
	if err != nil {
		return nil, err
	}

	var suppliers []models.Supplier
	if err := db.Order("name asc").Find(&suppliers).Error; err != nil {
		return nil, apperr.Storage("list suppliers", err)
	}
	return suppliers, nil
}

// FindSupplierByName resolves a supplier by its case-insensitive name.
func (e *Engine) FindSupplierByName(ctx context.Context, name string) (models.Supplier, error) {
	db, err := e.read(ctx)
	if err != nil {
		return models.Supplier{}, err
	}

	var supplier models.Supplier
	err = db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&supplier).Error
	switch {
	case err == nil:
		return supplier, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.Supplier{}, fmt.Errorf("supplier %q: %w", name, apperr.ErrNotFound)
	default:
		return models.Supplier{}, apperr.Storage("find supplier", err)
	}
}

func (e *Engine) viewIngredient(ctx context.Context, ing models.Ingredient) IngredientView {
	unit := costing.EvaluateIngredient(ing)
	e.reportWarnings(ctx, unit.Warnings)
	return IngredientView{Ingredient: ing, EffectiveUnitCost: unit.Value, Warnings: unit.Warnings}
}

func normalizeDetails(in IngredientDetails) (IngredientDetails, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Category = strings.TrimSpace(in.Category)

	if in.Name == "" {
		return in, apperr.Invalid("name", "is required")
	}
	if in.Unit == "" {
		in.Unit = "unit"
	}
	if err := checkFraction("trim_waste_pct", in.TrimWastePct); err != nil {
		return in, err
	}
	if err := checkFraction("cooking_loss_pct", in.CookingLossPct); err != nil {
		return in, err
	}
	if in.IsMultiPack {
		if !in.MultiPackQty.IsPositive() {
			return in, apperr.Invalid("multi_pack_qty", "must be greater than zero")
		}
		if in.MultiPackPrice.IsNegative() {
			return in, apperr.Invalid("multi_pack_price", "must not be negative")
		}
	}
	return in, nil
}

// checkFraction accepts values in [0, 1).
func checkFraction(field string, value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return apperr.Invalid(field, "must be a fraction in [0, 1)")
	}
	return nil
}

func applyDetails(ing *models.Ingredient, d IngredientDetails) {
	ing.Name = d.Name
	ing.Unit = d.Unit
	ing.Category = d.Category
	ing.TrimWastePct = d.TrimWastePct
	ing.CookingLossPct = d.CookingLossPct
	ing.IsMultiPack = d.IsMultiPack
	ing.MultiPackQty = d.MultiPackQty
	ing.MultiPackPrice = d.MultiPackPrice
}

func ensureUniqueIngredientName(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	query := tx.Unscoped().Model(&models.Ingredient{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return apperr.Storage("check ingredient name", err)
	}
	if count > 0 {
		return apperr.Invalid("name", fmt.Sprintf("ingredient %q already exists", name))
	}
	return nil
}

func loadIngredient(db *gorm.DB, id uint) (models.Ingredient, error) {
	var ing models.Ingredient
	if err := db.First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Ingredient{}, apperr.NotFound("ingredient", id)
		}
		return models.Ingredient{}, apperr.Storage("load ingredient", err)
	}
	return ing, nil
}

func loadSupplier(db *gorm.DB, id uint) (models.Supplier, error) {
	var supplier models.Supplier
	if err := db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Supplier{}, apperr.NotFound("supplier", id)
		}
		return models.Supplier{}, apperr.Storage("load supplier", err)
	}
	return supplier, nil
}
