package server

import (
	"context"
	"net/http"

	"costchef/internal/handlers"
	applog "costchef/internal/log"
	"costchef/internal/metrics"
)

func newRouter(recorder *metrics.Recorder) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	routes := []struct {
		path    string
		handler http.Handler
	}{
		{"/healthz", http.HandlerFunc(handlers.Health)},
		{"/metrics", recorder.Handler()},
		{"/session/operator", http.HandlerFunc(handlers.Operator)},
		{"/api/ingredients", http.HandlerFunc(handlers.IngredientResource)},
		{"/api/ingredients/", http.HandlerFunc(handlers.IngredientResource)},
		{"/api/suppliers", http.HandlerFunc(handlers.SupplierResource)},
		{"/api/recipes", http.HandlerFunc(handlers.RecipeResource)},
		{"/api/recipes/", http.HandlerFunc(handlers.RecipeResource)},
		{"/api/menu", http.HandlerFunc(handlers.Menu)},
		{"/api/price-changes", http.HandlerFunc(handlers.PriceChanges)},
	}
	for _, route := range routes {
		mux.Handle(route.path, route.handler)
		applog.Debug(context.Background(), "route registered", "path", route.path)
	}
	return mux
}
