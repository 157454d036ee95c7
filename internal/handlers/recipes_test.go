package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"costchef/internal/costing"
	"costchef/internal/engine"
	"costchef/models"
)

func TestRecipeEndpointsAndMenu(t *testing.T) {
	_, db := withTestEngine(t)

	ing := models.Ingredient{Name: "Ingredient A", Unit: "kg", UnitPrice: decimal.RequireFromString("2.00")}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}

	w := serve(RecipeResource, jsonRequest(t, http.MethodPost, "/api/recipes", map[string]any{
		"name":                 "House Plate",
		"category":             "Mains",
		"batch_yield":          2,
		"sales_price":          "6.00",
		"target_food_cost_pct": "0.30",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created engine.RecipeView
	decodeBody(t, w, &created)

	linesPath := fmt.Sprintf("/api/recipes/%d/lines", created.Recipe.ID)
	w = serve(RecipeResource, jsonRequest(t, http.MethodPost, linesPath, map[string]any{"ingredient_id": ing.ID, "quantity": "3"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201 on line add, got %d: %s", w.Code, w.Body.String())
	}
	var withLine engine.RecipeView
	decodeBody(t, w, &withLine)
	if !withLine.Cost.TotalCost.Equal(decimal.NewFromInt(6)) || withLine.Profitability.Status != costing.StatusAboveTarget {
		t.Fatalf("unexpected recipe cost: %+v %+v", withLine.Cost, withLine.Profitability)
	}

	w = serve(Menu, httptest.NewRequest(http.MethodGet, "/api/menu", nil))
	var rows []engine.MenuRow
	decodeBody(t, w, &rows)
	if len(rows) != 1 || rows[0].Status != costing.StatusAboveTarget || !rows[0].CostPerServing.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected menu rows: %+v", rows)
	}

	w = serve(Menu, httptest.NewRequest(http.MethodGet, "/api/menu?format=csv", nil))
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected csv content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "House Plate,Mains,$6.00,$3.00,50.0%,30.0%,$3.00,50.0%,Above Target") {
		t.Fatalf("unexpected csv body: %s", w.Body.String())
	}

	lineID := withLine.Recipe.Ingredients[0].ID
	w = serve(RecipeResource, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("%s/%d", linesPath, lineID), nil))
	var removed engine.RecipeView
	decodeBody(t, w, &removed)
	if w.Code != http.StatusOK || !removed.Cost.TotalCost.IsZero() {
		t.Fatalf("expected empty recipe after removal, got %d %+v", w.Code, removed.Cost)
	}

	w = serve(RecipeResource, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("%s/%d", linesPath, lineID), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for removed line, got %d", w.Code)
	}

	w = serve(RecipeResource, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/recipes/%d/steps", created.Recipe.ID), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown nested resource, got %d", w.Code)
	}

	w = serve(RecipeResource, jsonRequest(t, http.MethodPost, linesPath, map[string]any{"ingredient_id": 999, "quantity": "1"}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown ingredient, got %d", w.Code)
	}
}

func TestSupplierResource(t *testing.T) {
	withTestEngine(t)

	w := serve(SupplierResource, jsonRequest(t, http.MethodPost, "/api/suppliers", map[string]any{"name": "Metro", "phone": "555-0100"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = serve(SupplierResource, jsonRequest(t, http.MethodPost, "/api/suppliers", map[string]any{"name": "metro"}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate supplier, got %d", w.Code)
	}

	w = serve(SupplierResource, httptest.NewRequest(http.MethodGet, "/api/suppliers", nil))
	var suppliers []models.Supplier
	decodeBody(t, w, &suppliers)
	if len(suppliers) != 1 || suppliers[0].Phone != "555-0100" {
		t.Fatalf("unexpected suppliers: %+v", suppliers)
	}
}
