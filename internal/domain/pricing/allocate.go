// Package pricing computes early-payment discounts from a buyer's tariff grid.
package pricing

import (
	"time"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/tariff"
)

// Validation reasons.
const (
	ReasonAmountBandNotFound = "tariff-amount-band-not-found"
	ReasonDayBandNotFound    = "tariff-day-band-not-found"
)

// Item is a main-type receivable to be discounted.
type Item struct {
	SupplyID     id.ID
	Number       string
	Amount       types.Money
	DelayEndDate time.Time
}

// Allocation is the discount assigned to one receivable.
type Allocation struct {
	SupplyID         id.ID       `json:"supplyId"`
	Rate             types.Money `json:"rate"`
	DiscountedAmount types.Money `json:"discountedAmount"`
}

// Result is the aggregate discount of a registry.
type Result struct {
	Rate             types.Money
	DiscountedAmount types.Money
	AmountToPay      types.Money
	Allocations      []Allocation
}

// Allocate picks, for every item, the band covering total on the amount axis
// and the item's delay length on the day axis, then computes the discount.
// today fixes the year length for annual bands.
func Allocate(total types.Money, plan, today time.Time, items []Item, bands []*tariff.Tariff) (Result, error) {
	if len(items) == 0 {
		return Totals(total, nil), nil
	}

	var byAmount []*tariff.Tariff
	for _, b := range bands {
		if b.ContainsAmount(total) {
			byAmount = append(byAmount, b)
		}
	}
	if len(byAmount) == 0 {
		return Result{}, apperror.NewValidation(ReasonAmountBandNotFound, "no tariff covers the registry amount").
			WithDetail("amount", total.StringFixed(types.CurrencyPlaces))
	}

	daysInYear := types.NewMoneyFromInt(int64(types.DaysInYear(today.Year())))
	allocations := make([]Allocation, 0, len(items))
	for _, item := range items {
		days := types.DaysBetween(plan, item.DelayEndDate)
		band := findDayBand(byAmount, days)
		if band == nil {
			return Result{}, apperror.NewValidation(ReasonDayBandNotFound, "no tariff covers the delay length").
				WithDetail("number", item.Number).
				WithDetail("days", days)
		}

		var discounted types.Money
		switch band.Type {
		case tariff.TypeDiscounting:
			discounted = types.Percent(item.Amount, band.Rate)
		default:
			discounted = band.Rate.Div(daysInYear).
				Mul(types.NewMoneyFromInt(int64(days))).
				Mul(item.Amount).
				Mul(types.MinorUnit)
		}

		allocations = append(allocations, Allocation{
			SupplyID:         item.SupplyID,
			Rate:             band.Rate,
			DiscountedAmount: types.RoundCurrency(discounted),
		})
	}

	return Totals(total, allocations), nil
}

// Totals aggregates allocations against the registry amount.
func Totals(total types.Money, allocations []Allocation) Result {
	discounted := types.Zero()
	for _, a := range allocations {
		discounted = discounted.Add(a.DiscountedAmount)
	}
	toPay := total.Sub(discounted)
	return Result{
		Rate:             types.RoundCurrency(types.RateOf(total.Sub(toPay), total)),
		DiscountedAmount: discounted,
		AmountToPay:      toPay,
		Allocations:      allocations,
	}
}

func findDayBand(bands []*tariff.Tariff, days int) *tariff.Tariff {
	for _, b := range bands {
		if b.ContainsDays(days) {
			return b
		}
	}
	return nil
}
