package handlers

import (
	"net/http"
	"strconv"
	"strings"

	applog "costchef/internal/log"
)

// Menu returns the profitability of every recipe, as JSON or as CSV with ?format=csv.
func Menu(w http.ResponseWriter, r *http.Request) {
	if !requireEngine(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rows, err := costEngine.ListMenuProfitability(r.Context())
	if err != nil {
		writeEngineError(w, r, err, "load menu profitability")
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="menu-profitability.csv"`)
		if err := formatter.WriteMenuCSV(w, rows); err != nil {
			applog.Error(r.Context(), "failed to write menu csv", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// PriceChanges lists the latest price changes across ingredients; ?limit bounds the result.
func PriceChanges(w http.ResponseWriter, r *http.Request) {
	if !requireEngine(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	changes, err := costEngine.RecentPriceChanges(r.Context(), limit)
	if err != nil {
		writeEngineError(w, r, err, "load price changes")
		return
	}
	writeJSON(w, http.StatusOK, changes)
}
