package memory

import (
	"context"
	"slices"

	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/tariff"
)

// Tariffs returns the tariff repository.
func (s *Store) Tariffs() tariff.Repository { return tariffRepo{s} }

type tariffRepo struct{ s *Store }

func (r tariffRepo) ListByOwner(ctx context.Context, ownerID id.ID) ([]*tariff.Tariff, error) {
	var out []*tariff.Tariff
	err := r.s.do(ctx, func(st *state) error {
		for _, b := range st.tariffs[ownerID] {
			out = append(out, &b)
		}
		return nil
	})
	return out, err
}

func (r tariffRepo) ReplaceForOwner(ctx context.Context, ownerID id.ID, bands []*tariff.Tariff) error {
	return r.s.do(ctx, func(st *state) error {
		stored := make([]tariff.Tariff, 0, len(bands))
		for _, b := range bands {
			stored = append(stored, *b)
		}
		slices.SortFunc(stored, func(a, b tariff.Tariff) int {
			if c := a.FromAmount.Cmp(b.FromAmount); c != 0 {
				return c
			}
			return a.FromDay - b.FromDay
		})
		st.tariffs[ownerID] = stored
		return nil
	})
}
