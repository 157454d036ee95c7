package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"costchef/internal/engine"
	"costchef/internal/inventory"
	applog "costchef/internal/log"
	"costchef/internal/pricing"
)

const ingredientsPrefix = "/api/ingredients"

type purchaseRequest struct {
	Price      decimal.Decimal `json:"price"`
	SupplierID *uint           `json:"supplier_id"`
	Reason     string          `json:"reason"`
}

type adjustmentRequest struct {
	Type     string              `json:"type"`
	Amount   decimal.NullDecimal `json:"amount"`
	Reason   string              `json:"reason"`
	RecipeID *uint               `json:"recipe_id"`
}

type thresholdRequest struct {
	MinStock decimal.NullDecimal `json:"min_stock"`
	MaxStock decimal.NullDecimal `json:"max_stock"`
}

type purchaseResponse struct {
	pricing.Result
	Display map[string]string `json:"display"`
}

// IngredientResource serves /api/ingredients and its nested price, purchase and inventory
// resources.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if !requireEngine(w, r) {
		return
	}

	segments := pathSegments(r, ingredientsPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, ok := parseID(segments[0])
	if !ok || len(segments) > 2 {
		applog.Debug(r.Context(), "invalid ingredient path", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			showIngredient(w, r, id)
		case http.MethodPut:
			updateIngredient(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch segments[1] {
	case "price-history":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		showPriceHistory(w, r, id)
	case "purchases":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		applyPurchase(w, r, id)
	case "inventory":
		switch r.Method {
		case http.MethodGet:
			showInventory(w, r, id)
		case http.MethodPost:
			adjustInventory(w, r, id)
		case http.MethodPut:
			setThresholds(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	views, err := costEngine.ListIngredients(r.Context())
	if err != nil {
		writeEngineError(w, r, err, "load ingredients")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func showIngredient(w http.ResponseWriter, r *http.Request, id uint) {
	view, err := costEngine.GetIngredient(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err, "load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	var payload engine.NewIngredient
	if !decodeJSON(w, r, &payload) {
		return
	}
	view, err := costEngine.CreateIngredient(r.Context(), payload)
	if err != nil {
		writeEngineError(w, r, err, "create ingredient")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func updateIngredient(w http.ResponseWriter, r *http.Request, id uint) {
	var payload engine.IngredientDetails
	if !decodeJSON(w, r, &payload) {
		return
	}
	view, err := costEngine.UpdateIngredient(r.Context(), id, payload)
	if err != nil {
		writeEngineError(w, r, err, "update ingredient")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func showPriceHistory(w http.ResponseWriter, r *http.Request, id uint) {
	entries, err := costEngine.GetPriceHistory(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err, "load price history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func applyPurchase(w http.ResponseWriter, r *http.Request, id uint) {
	var payload purchaseRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	result, err := costEngine.ApplyPurchasePrice(r.Context(), pricing.PurchaseRequest{
		IngredientID: id,
		NewPrice:     payload.Price,
		SupplierID:   payload.SupplierID,
		Reason:       payload.Reason,
		Actor:        currentOperator(r),
	})
	if err != nil {
		writeEngineError(w, r, err, "apply purchase price")
		return
	}

	// Rejections are governance outcomes, reported with 200 like the others.
	writeJSON(w, http.StatusOK, purchaseResponse{
		Result: result,
		Display: map[string]string{
			"old_price":       formatter.Money(result.OldPrice),
			"requested_price": formatter.Money(payload.Price),
		},
	})
}

func showInventory(w http.ResponseWriter, r *http.Request, id uint) {
	view, err := costEngine.GetInventory(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err, "load inventory")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func adjustInventory(w http.ResponseWriter, r *http.Request, id uint) {
	var payload adjustmentRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	if !payload.Amount.Valid {
		applog.Debug(r.Context(), "inventory adjustment without amount", "ingredient_id", id)
		writeJSONError(w, http.StatusBadRequest, "amount is required")
		return
	}

	result, err := costEngine.AdjustInventory(r.Context(), inventory.Adjustment{
		IngredientID: id,
		Type:         inventory.MovementType(payload.Type),
		Amount:       payload.Amount.Decimal,
		Reason:       payload.Reason,
		RecipeID:     payload.RecipeID,
	})
	if err != nil {
		writeEngineError(w, r, err, "adjust inventory")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func setThresholds(w http.ResponseWriter, r *http.Request, id uint) {
	var payload thresholdRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	view, err := costEngine.SetInventoryThresholds(r.Context(), id, payload.MinStock, payload.MaxStock)
	if err != nil {
		writeEngineError(w, r, err, "update inventory thresholds")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
