package handlers

import (
	"net/http"

	"costchef/internal/engine"
)

// SupplierResource lists (GET) and creates (POST) suppliers.
func SupplierResource(w http.ResponseWriter, r *http.Request) {
	if !requireEngine(w, r) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		suppliers, err := costEngine.ListSuppliers(r.Context())
		if err != nil {
			writeEngineError(w, r, err, "load suppliers")
			return
		}
		writeJSON(w, http.StatusOK, suppliers)
	case http.MethodPost:
		var payload engine.SupplierInput
		if !decodeJSON(w, r, &payload) {
			return
		}
		supplier, err := costEngine.CreateSupplier(r.Context(), payload)
		if err != nil {
			writeEngineError(w, r, err, "create supplier")
			return
		}
		writeJSON(w, http.StatusCreated, supplier)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
