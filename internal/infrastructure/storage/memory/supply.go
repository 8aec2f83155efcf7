package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
	"supplyfin/internal/domain/supply"
)

// Supplies returns the supply repository.
func (s *Store) Supplies() supply.Repository { return supplyRepo{s} }

type supplyRepo struct{ s *Store }

func (r supplyRepo) Create(ctx context.Context, sup *supply.Supply) error {
	return r.s.do(ctx, func(st *state) error {
		st.supplies[sup.ID] = *sup
		return nil
	})
}

func (r supplyRepo) Update(ctx context.Context, sup *supply.Supply) error {
	return r.s.do(ctx, func(st *state) error {
		stored, ok := st.supplies[sup.ID]
		if !ok {
			return apperror.NewNotFound("supply", sup.ID)
		}
		if stored.Version != sup.Version {
			return apperror.NewConcurrentModification("supply", sup.ID)
		}
		sup.Version++
		st.supplies[sup.ID] = *sup
		return nil
	})
}

func (r supplyRepo) GetByID(ctx context.Context, supplyID id.ID) (*supply.Supply, error) {
	var out *supply.Supply
	err := r.s.do(ctx, func(st *state) error {
		sup, ok := st.supplies[supplyID]
		if !ok {
			return apperror.NewNotFound("supply", supplyID)
		}
		out = &sup
		return nil
	})
	return out, err
}

func (r supplyRepo) GetByIDs(ctx context.Context, ids []id.ID) ([]*supply.Supply, error) {
	out := make([]*supply.Supply, 0, len(ids))
	err := r.s.do(ctx, func(st *state) error {
		for _, supplyID := range ids {
			sup, ok := st.supplies[supplyID]
			if !ok {
				return apperror.NewNotFound("supply", supplyID)
			}
			out = append(out, &sup)
		}
		return nil
	})
	return out, err
}

func (r supplyRepo) FindByDocument(ctx context.Context, contractID id.ID, number string, date time.Time, typ supply.DocumentType) (*supply.Supply, error) {
	var out *supply.Supply
	err := r.s.do(ctx, func(st *state) error {
		for _, sup := range st.supplies {
			if sup.SameDocument(contractID, number, date, typ) {
				out = &sup
				return nil
			}
		}
		return apperror.NewNotFound("supply", number)
	})
	return out, err
}

func (r supplyRepo) ListByRegistry(ctx context.Context, registryID id.ID) ([]*supply.Supply, error) {
	return r.collect(ctx, func(sup *supply.Supply) bool {
		return sup.RegistryID != nil && *sup.RegistryID == registryID
	})
}

func (r supplyRepo) ListExpired(ctx context.Context, today time.Time) ([]*supply.Supply, error) {
	return r.collect(ctx, func(sup *supply.Supply) bool {
		return sup.Status == supply.StatusInProcess && sup.IsExpired(today)
	})
}

func (r supplyRepo) List(ctx context.Context, filter supply.ListFilter) (domain.ListResult[*supply.Supply], error) {
	items, err := r.collect(ctx, func(sup *supply.Supply) bool {
		switch {
		case filter.CompanyID != nil && sup.SellerID != *filter.CompanyID && sup.BuyerID != *filter.CompanyID &&
			!id.Equal(sup.BankID, filter.CompanyID):
			return false
		case filter.Status != nil && sup.Status != *filter.Status:
			return false
		case filter.ContractID != nil && sup.ContractID != *filter.ContractID:
			return false
		case filter.RegistryID != nil && !id.Equal(sup.RegistryID, filter.RegistryID):
			return false
		}
		return filter.InRange(types.Date(sup.Date))
	})
	if err != nil {
		return domain.ListResult[*supply.Supply]{}, err
	}
	return domain.Paginate(items, filter.Limit, filter.Offset), nil
}

// collect returns matching supplies ordered by creation.
func (r supplyRepo) collect(ctx context.Context, match func(*supply.Supply) bool) ([]*supply.Supply, error) {
	var out []*supply.Supply
	err := r.s.do(ctx, func(st *state) error {
		for _, sup := range st.supplies {
			if match(&sup) {
				out = append(out, &sup)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *supply.Supply) int {
		if c := a.CreationDate.Compare(b.CreationDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, err
}
