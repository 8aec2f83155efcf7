package registry

import (
	"context"
	"time"

	"supplyfin/internal/core/apperror"
	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/pricing"
	"supplyfin/internal/domain/supply"
	"supplyfin/pkg/logger"
)

// Reasons returned for invalid manual allocations.
const (
	// ReasonAllocationNotMember: the supply is not a main-type member of the registry.
	ReasonAllocationNotMember = "discount-allocation-supply-not-in-registry"
	ReasonAllocationDuplicate = "discount-allocation-supply-duplicate"
	// ReasonAllocationOutOfRange: a discounted amount is negative or exceeds
	// the supply amount, or the total exceeds the registry amount.
	ReasonAllocationOutOfRange = "discount-allocation-amount-out-of-range"
)

// UpdateDiscount moves the planned payment date of a dynamic-discounting
// registry. Without allocations the discount is re-priced from tariffs;
// with allocations they replace the computed ones and only totals are derived.
func (s *Service) UpdateDiscount(ctx context.Context, registryID id.ID, plan time.Time, allocations []pricing.Allocation) (*Discount, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}

	var updated *Discount
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		r, _, err := s.load(ctx, session, registryID)
		if err != nil {
			return err
		}
		if r.FinanceType != FinanceDynamicDiscounting {
			return apperror.NewForbidden(ReasonFinanceTypeMismatch, "registry is not dynamic discounting")
		}
		if r.Status != StatusInProcess {
			return statusNotInProcess(r)
		}

		members, err := s.supplies.ListByRegistry(ctx, r.ID)
		if err != nil {
			return err
		}
		items := mainItems(members)

		d, err := s.discountOf(ctx, r)
		if err != nil {
			return err
		}
		plan = types.Date(plan)

		var res pricing.Result
		if allocations == nil {
			res, err = s.pricer.Price(ctx, r.BuyerID, r.Amount, plan, items)
			d.HasChanged = false
		} else {
			if err := checkAllocations(allocations, items, r.Amount); err != nil {
				return err
			}
			res, err = s.pricer.Recompute(ctx, r.BuyerID, r.Amount, plan, items, allocations)
			d.HasChanged = true
		}
		if err != nil {
			return err
		}

		d.PlannedPaymentDate = plan
		d.apply(res, now)
		if err := s.discounts.Save(ctx, d); err != nil {
			return err
		}

		if r.SignStatus != SignNotSigned {
			r.SignStatus = SignNotSigned
			if err := s.signatures.RemoveSignatures(ctx, SignatureSubject, r.ID); err != nil {
				return err
			}
			r.Touch(now)
			if err := s.registries.Update(ctx, r); err != nil {
				return err
			}
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "discount updated",
		"registry_id", registryID,
		"has_changed", updated.HasChanged,
		"amount_to_pay", updated.AmountToPay.String(),
	)
	return updated, nil
}

// repriceOnMembership refreshes the discount after members changed. Manual
// allocations survive for supplies still in the registry.
func (s *Service) repriceOnMembership(ctx context.Context, r *Registry, members []*supply.Supply, plan *time.Time) error {
	d, err := s.discountOf(ctx, r)
	if err != nil {
		return err
	}
	if plan != nil {
		d.PlannedPaymentDate = types.Date(*plan)
	}
	if d.PlannedPaymentDate.IsZero() {
		return apperror.NewValidation(ReasonPlannedDateRequired, "planned payment date is required")
	}

	items := mainItems(members)
	var res pricing.Result
	switch {
	case len(items) == 0:
		res = pricing.Totals(r.Amount, nil)
	case d.HasChanged:
		present := make(map[id.ID]struct{}, len(items))
		for _, item := range items {
			present[item.SupplyID] = struct{}{}
		}
		kept := make([]pricing.Allocation, 0, len(d.Allocations))
		for _, a := range d.Allocations {
			if _, ok := present[a.SupplyID]; ok {
				kept = append(kept, pricing.Allocation{SupplyID: a.SupplyID, Rate: a.Rate, DiscountedAmount: a.DiscountedAmount})
			}
		}
		res, err = s.pricer.Recompute(ctx, r.BuyerID, r.Amount, d.PlannedPaymentDate, items, kept)
	default:
		res, err = s.pricer.Price(ctx, r.BuyerID, r.Amount, d.PlannedPaymentDate, items)
	}
	if err != nil {
		return err
	}

	d.apply(res, s.now())
	if err := s.discounts.Save(ctx, d); err != nil {
		return err
	}
	r.Discount = d
	return nil
}

// discountOf loads the registry discount or starts an empty one.
func (s *Service) discountOf(ctx context.Context, r *Registry) (*Discount, error) {
	d, err := s.discounts.Get(ctx, r.ID)
	if apperror.IsNotFound(err) {
		return &Discount{RegistryID: r.ID}, nil
	}
	return d, err
}

func (d *Discount) apply(res pricing.Result, now time.Time) {
	d.Rate = res.Rate
	d.DiscountedAmount = res.DiscountedAmount
	d.AmountToPay = res.AmountToPay
	d.UpdateDate = now.UTC()
	d.Allocations = make([]SupplyDiscount, len(res.Allocations))
	for i, a := range res.Allocations {
		d.Allocations[i] = SupplyDiscount{
			RegistryID:       d.RegistryID,
			SupplyID:         a.SupplyID,
			Rate:             a.Rate,
			DiscountedAmount: a.DiscountedAmount,
		}
	}
}

func checkAllocations(allocations []pricing.Allocation, items []pricing.Item, total types.Money) error {
	members := make(map[id.ID]types.Money, len(items))
	for _, item := range items {
		members[item.SupplyID] = item.Amount
	}
	seen := make(id.Set, len(allocations))
	discounted := types.Zero()
	for i, a := range allocations {
		amount, ok := members[a.SupplyID]
		if !ok {
			return apperror.NewValidation(ReasonAllocationNotMember, "allocation references a supply outside the registry").
				WithDetail("index", i).
				WithDetail("supplyId", a.SupplyID)
		}
		if seen.Has(a.SupplyID) {
			return apperror.NewValidation(ReasonAllocationDuplicate, "supply is allocated more than once").
				WithDetail("index", i).
				WithDetail("supplyId", a.SupplyID)
		}
		seen[a.SupplyID] = struct{}{}
		if a.DiscountedAmount.IsNegative() || a.DiscountedAmount.GreaterThan(amount) {
			return apperror.NewValidation(ReasonAllocationOutOfRange, "discounted amount must be between zero and the supply amount").
				WithDetail("index", i).
				WithDetail("supplyId", a.SupplyID).
				WithDetail("amount", amount.String())
		}
		discounted = discounted.Add(a.DiscountedAmount)
	}
	if discounted.GreaterThan(total) {
		return apperror.NewValidation(ReasonAllocationOutOfRange, "discounted amount exceeds the registry amount").
			WithDetail("amount", total.String())
	}
	return nil
}

func mainItems(members []*supply.Supply) []pricing.Item {
	items := make([]pricing.Item, 0, len(members))
	for _, sup := range members {
		if !sup.Type.IsMain() {
			continue
		}
		items = append(items, pricing.Item{
			SupplyID:     sup.ID,
			Number:       sup.Number,
			Amount:       sup.Amount,
			DelayEndDate: sup.DelayEndDate,
		})
	}
	return items
}
