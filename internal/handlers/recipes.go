package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"costchef/internal/engine"
	applog "costchef/internal/log"
)

const recipesPrefix = "/api/recipes"

type recipeLineRequest struct {
	IngredientID uint            `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// RecipeResource serves /api/recipes, /api/recipes/{id} and the recipe line resources.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if !requireEngine(w, r) {
		return
	}

	segments := pathSegments(r, recipesPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			views, err := costEngine.ListRecipes(r.Context())
			if err != nil {
				writeEngineError(w, r, err, "load recipes")
				return
			}
			writeJSON(w, http.StatusOK, views)
		case http.MethodPost:
			var payload engine.RecipeInput
			if !decodeJSON(w, r, &payload) {
				return
			}
			view, err := costEngine.CreateRecipe(r.Context(), payload)
			if err != nil {
				writeEngineError(w, r, err, "create recipe")
				return
			}
			writeJSON(w, http.StatusCreated, view)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, ok := parseID(segments[0])
	if !ok || len(segments) > 3 || (len(segments) > 1 && segments[1] != "lines") {
		applog.Debug(r.Context(), "invalid recipe path", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	switch len(segments) {
	case 1:
		switch r.Method {
		case http.MethodGet:
			view, err := costEngine.GetRecipeWithCost(r.Context(), id)
			if err != nil {
				writeEngineError(w, r, err, "load recipe")
				return
			}
			writeJSON(w, http.StatusOK, view)
		case http.MethodPut:
			var payload engine.RecipeInput
			if !decodeJSON(w, r, &payload) {
				return
			}
			view, err := costEngine.UpdateRecipe(r.Context(), id, payload)
			if err != nil {
				writeEngineError(w, r, err, "update recipe")
				return
			}
			writeJSON(w, http.StatusOK, view)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 2:
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var payload recipeLineRequest
		if !decodeJSON(w, r, &payload) {
			return
		}
		view, err := costEngine.AddRecipeLine(r.Context(), id, payload.IngredientID, payload.Quantity)
		if err != nil {
			writeEngineError(w, r, err, "add recipe line")
			return
		}
		writeJSON(w, http.StatusCreated, view)
	case 3:
		lineID, ok := parseID(segments[2])
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		view, err := costEngine.RemoveRecipeLine(r.Context(), id, lineID)
		if err != nil {
			writeEngineError(w, r, err, "remove recipe line")
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
