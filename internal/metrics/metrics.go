// Package metrics exposes counters for price governance, inventory movements and costing data
// quality on a private Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "costchef"

// Recorder owns the application counters. A nil *Recorder records nothing.
type Recorder struct {
	registry     *prometheus.Registry
	priceUpdates *prometheus.CounterVec
	movements    *prometheus.CounterVec
	costWarnings *prometheus.CounterVec
}

// New registers the counters together with the Go runtime and process collectors.
func New() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		priceUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_updates_total",
				Help:      "Purchase price requests by governance outcome.",
			},
			[]string{"outcome"},
		),
		movements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inventory_movements_total",
				Help:      "Inventory movements recorded by type.",
			},
			[]string{"type"},
		),
		costWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cost_warnings_total",
				Help:      "Malformed stored values clamped while costing.",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		r.priceUpdates,
		r.movements,
		r.costWarnings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) PriceUpdate(outcome string) {
	if r == nil {
		return
	}
	r.priceUpdates.WithLabelValues(outcome).Inc()
}

func (r *Recorder) InventoryMovement(kind string) {
	if r == nil {
		return
	}
	r.movements.WithLabelValues(kind).Inc()
}

func (r *Recorder) CostWarning(kind string) {
	if r == nil {
		return
	}
	r.costWarnings.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
