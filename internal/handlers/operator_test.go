package handlers

import (
	"net/http"
	"testing"
)

func TestOperatorSession(t *testing.T) {
	sm := withTestSessionManager(t)

	req := withSession(t, sm, jsonRequest(t, http.MethodPut, "/session/operator", map[string]string{"operator": "  Sam "}))
	w := serve(Operator, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := currentOperator(req); got != "Sam" {
		t.Fatalf("expected operator Sam, got %q", got)
	}

	get := req.Clone(req.Context())
	get.Method = http.MethodGet
	w = serve(Operator, get)
	var payload operatorPayload
	decodeBody(t, w, &payload)
	if payload.Operator != "Sam" {
		t.Fatalf("expected Sam from GET, got %q", payload.Operator)
	}

	bad := withSession(t, sm, jsonRequest(t, http.MethodPut, "/session/operator", map[string]string{"operator": " "}))
	if w := serve(Operator, bad); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank operator, got %d", w.Code)
	}

	del := req.Clone(req.Context())
	del.Method = http.MethodDelete
	if w := serve(Operator, del); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := currentOperator(req); got != "" {
		t.Fatalf("expected operator cleared, got %q", got)
	}
}

func TestOperatorWithoutSessionManager(t *testing.T) {
	original := sessionManager
	sessionManager = nil
	t.Cleanup(func() { sessionManager = original })

	w := serve(Operator, jsonRequest(t, http.MethodGet, "/session/operator", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if got := currentOperator(jsonRequest(t, http.MethodGet, "/", nil)); got != "" {
		t.Fatalf("expected empty operator, got %q", got)
	}
}
