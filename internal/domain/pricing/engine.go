package pricing

import (
	"context"
	"time"

	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/calendar"
	"supplyfin/internal/domain/tariff"
)

// PlanChecker validates planned payment dates for a buyer.
type PlanChecker interface {
	ValidatePlan(ctx context.Context, buyerID id.ID, plan time.Time) error
	Today() time.Time
}

// Engine prices dynamic-discounting registries.
type Engine struct {
	tariffs tariff.Repository
	plans   PlanChecker
}

// NewEngine creates a pricing engine.
func NewEngine(tariffs tariff.Repository, plans PlanChecker) *Engine {
	return &Engine{tariffs: tariffs, plans: plans}
}

// Price validates plan and allocates discounts from the buyer's bands.
func (e *Engine) Price(ctx context.Context, buyerID id.ID, total types.Money, plan time.Time, items []Item) (Result, error) {
	if err := e.plans.ValidatePlan(ctx, buyerID, plan); err != nil {
		return Result{}, err
	}
	bands, err := e.tariffs.ListByOwner(ctx, buyerID)
	if err != nil {
		return Result{}, err
	}
	return Allocate(total, plan, e.plans.Today(), items, bands)
}

// Recompute keeps caller-supplied allocations and only refreshes the totals.
// The plan is still checked against the calendar and the members' delay end dates.
func (e *Engine) Recompute(ctx context.Context, buyerID id.ID, total types.Money, plan time.Time, items []Item, allocations []Allocation) (Result, error) {
	if err := e.plans.ValidatePlan(ctx, buyerID, plan); err != nil {
		return Result{}, err
	}
	ends := make([]time.Time, 0, len(items))
	for _, item := range items {
		ends = append(ends, item.DelayEndDate)
	}
	if err := calendar.ValidateNotAfterDelayEnd(plan, ends); err != nil {
		return Result{}, err
	}

	rounded := make([]Allocation, len(allocations))
	for i, a := range allocations {
		a.DiscountedAmount = types.RoundCurrency(a.DiscountedAmount)
		rounded[i] = a
	}
	return Totals(total, rounded), nil
}
