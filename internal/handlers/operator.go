package handlers

import (
	"net/http"
	"strings"

	applog "costchef/internal/log"
)

const sessionOperatorKey = "operator:name"

const maxOperatorLength = 64

type operatorPayload struct {
	Operator string `json:"operator"`
}

// Operator reads (GET) or stores (PUT, POST) the operator label of the session. The label is
// recorded as the actor on price history entries.
func Operator(w http.ResponseWriter, r *http.Request) {
	if sessionManager == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "sessions not available")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, operatorPayload{Operator: currentOperator(r)})
	case http.MethodPut, http.MethodPost:
		var payload operatorPayload
		if !decodeJSON(w, r, &payload) {
			return
		}
		name := strings.TrimSpace(payload.Operator)
		if name == "" || len(name) > maxOperatorLength {
			writeJSONError(w, http.StatusBadRequest, "operator must be between 1 and 64 characters")
			return
		}
		if err := sessionManager.RenewToken(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to renew session token", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to store operator")
			return
		}
		sessionManager.Put(r.Context(), sessionOperatorKey, name)
		applog.Info(r.Context(), "operator signed in", "operator", name)
		writeJSON(w, http.StatusOK, operatorPayload{Operator: name})
	case http.MethodDelete:
		sessionManager.Remove(r.Context(), sessionOperatorKey)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// currentOperator returns the session's operator label, or "" when none is set. The request
// must have passed through the session middleware.
func currentOperator(r *http.Request) string {
	if sessionManager == nil {
		return ""
	}
	return sessionManager.GetString(r.Context(), sessionOperatorKey)
}
