package memory

import (
	"context"
	"slices"
	"strings"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
	"supplyfin/internal/domain/registry"
)

// Registries returns the registry repository.
func (s *Store) Registries() registry.Repository { return registryRepo{s} }

// Discounts returns the discount repository.
func (s *Store) Discounts() registry.DiscountRepository { return discountRepo{s} }

type registryRepo struct{ s *Store }

func (r registryRepo) Create(ctx context.Context, reg *registry.Registry) error {
	return r.s.do(ctx, func(st *state) error {
		st.registries[reg.ID] = stripRegistry(*reg)
		return nil
	})
}

func (r registryRepo) Update(ctx context.Context, reg *registry.Registry) error {
	return r.s.do(ctx, func(st *state) error {
		stored, ok := st.registries[reg.ID]
		if !ok {
			return apperror.NewNotFound("registry", reg.ID)
		}
		if stored.Version != reg.Version {
			return apperror.NewConcurrentModification("registry", reg.ID)
		}
		reg.Version++
		st.registries[reg.ID] = stripRegistry(*reg)
		return nil
	})
}

func (r registryRepo) Delete(ctx context.Context, registryID id.ID) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.registries[registryID]; !ok {
			return apperror.NewNotFound("registry", registryID)
		}
		delete(st.registries, registryID)
		return nil
	})
}

func (r registryRepo) GetByID(ctx context.Context, registryID id.ID) (*registry.Registry, error) {
	var out *registry.Registry
	err := r.s.do(ctx, func(st *state) error {
		reg, ok := st.registries[registryID]
		if !ok {
			return apperror.NewNotFound("registry", registryID)
		}
		out = &reg
		return nil
	})
	return out, err
}

func (r registryRepo) List(ctx context.Context, filter registry.ListFilter) (domain.ListResult[*registry.Registry], error) {
	var items []*registry.Registry
	err := r.s.do(ctx, func(st *state) error {
		for _, reg := range st.registries {
			switch {
			case filter.VisibleTo != nil && !registry.VisibleTo(&reg, *filter.VisibleTo):
				continue
			case filter.Status != nil && reg.Status != *filter.Status:
				continue
			case filter.FinanceType != nil && reg.FinanceType != *filter.FinanceType:
				continue
			case filter.ContractID != nil && reg.ContractID != *filter.ContractID:
				continue
			case !filter.InRange(types.Date(reg.CreationDate)):
				continue
			}
			items = append(items, &reg)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[*registry.Registry]{}, err
	}
	slices.SortFunc(items, func(a, b *registry.Registry) int {
		return strings.Compare(a.Number, b.Number)
	})
	return domain.Paginate(items, filter.Limit, filter.Offset), nil
}

// stripRegistry drops the loaded associations before storing.
func stripRegistry(reg registry.Registry) registry.Registry {
	reg.Supplies = nil
	reg.Discount = nil
	return reg
}

type discountRepo struct{ s *Store }

func (r discountRepo) Get(ctx context.Context, registryID id.ID) (*registry.Discount, error) {
	var out *registry.Discount
	err := r.s.do(ctx, func(st *state) error {
		d, ok := st.discounts[registryID]
		if !ok {
			return apperror.NewNotFound("discount", registryID)
		}
		d.Allocations = slices.Clone(d.Allocations)
		out = &d
		return nil
	})
	return out, err
}

func (r discountRepo) Save(ctx context.Context, d *registry.Discount) error {
	return r.s.do(ctx, func(st *state) error {
		stored := *d
		stored.Allocations = slices.Clone(d.Allocations)
		st.discounts[d.RegistryID] = stored
		return nil
	})
}

func (r discountRepo) Delete(ctx context.Context, registryID id.ID) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.discounts[registryID]; !ok {
			return apperror.NewNotFound("discount", registryID)
		}
		delete(st.discounts, registryID)
		return nil
	})
}
