// Package engine is the boundary used by the HTTP handlers and the purchase CLI. It owns the
// transaction of every mutating call and hands the transaction to the domain packages.
package engine

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"costchef/internal/costing"
	applog "costchef/internal/log"
	"costchef/internal/metrics"
	"costchef/models"
)

// Options tune defaults the engine applies when a caller leaves a value out.
type Options struct {
	// DefaultTargetFoodCostPct applies to recipes saved without a target. Unset uses
	// models.DefaultTargetFoodCostPct; a set zero is kept.
	DefaultTargetFoodCostPct decimal.NullDecimal
	RecentChangesLimit       int
	Metrics                  *metrics.Recorder
}

type Engine struct {
	db      *gorm.DB
	target  decimal.Decimal
	recent  int
	metrics *metrics.Recorder
}

func New(db *gorm.DB, opts Options) *Engine {
	target := models.DefaultTargetFoodCostPct
	if opts.DefaultTargetFoodCostPct.Valid {
		target = opts.DefaultTargetFoodCostPct.Decimal
	}
	return &Engine{
		db:      db,
		target:  target,
		recent:  opts.RecentChangesLimit,
		metrics: opts.Metrics,
	}
}

// DB exposes the underlying handle for health checks.
func (e *Engine) DB() *gorm.DB {
	return e.db
}

func (e *Engine) read(ctx context.Context) (*gorm.DB, error) {
	if e == nil || e.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return e.db.WithContext(ctx), nil
}

// transaction runs fn atomically; any error rolls every write back.
func (e *Engine) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db, err := e.read(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(fn)
}

func (e *Engine) reportWarnings(ctx context.Context, warnings []costing.Warning) {
	for _, w := range warnings {
		applog.Warn(ctx, "clamped malformed cost input",
			"kind", string(w.Kind),
			"ingredient_id", w.IngredientID,
			"field", w.Field,
			"detail", w.Detail,
		)
		e.metrics.CostWarning(string(w.Kind))
	}
}
