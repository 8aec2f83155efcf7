package finance_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
	"supplyfin/internal/domain"
	"supplyfin/internal/domain/supply"
	"supplyfin/internal/infrastructure/storage/postgres"
)

// SupplyRepo stores supplies.
type SupplyRepo struct {
	t table[supply.Supply]
}

// NewSupplyRepo creates a supply repository.
func NewSupplyRepo(txm *postgres.TxManager) *SupplyRepo {
	return &SupplyRepo{t: newTable[supply.Supply](txm, "supplies", "supply")}
}

var _ supply.Repository = (*SupplyRepo)(nil)

const supplyOrder = "creation_date, id"

func (r *SupplyRepo) Create(ctx context.Context, sup *supply.Supply) error {
	return r.t.insert(ctx, sup)
}

func (r *SupplyRepo) Update(ctx context.Context, sup *supply.Supply) error {
	return r.t.update(ctx, sup, sup)
}

func (r *SupplyRepo) GetByID(ctx context.Context, supplyID id.ID) (*supply.Supply, error) {
	return r.t.get(ctx, squirrel.Eq{"id": supplyID}, supplyID)
}

// GetByIDs locks the rows and returns them in the order of ids.
func (r *SupplyRepo) GetByIDs(ctx context.Context, ids []id.ID) ([]*supply.Supply, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.t.selectRows(ctx, r.t.selectAll().
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		Suffix("FOR UPDATE"))
	if err != nil {
		return nil, err
	}

	byID := make(map[id.ID]*supply.Supply, len(rows))
	for _, sup := range rows {
		byID[sup.ID] = sup
	}
	out := make([]*supply.Supply, 0, len(ids))
	for _, supplyID := range ids {
		sup, ok := byID[supplyID]
		if !ok {
			return nil, apperror.NewNotFound("supply", supplyID)
		}
		out = append(out, sup)
	}
	return out, nil
}

func (r *SupplyRepo) FindByDocument(ctx context.Context, contractID id.ID, number string, date time.Time, typ supply.DocumentType) (*supply.Supply, error) {
	return r.t.get(ctx, squirrel.Eq{
		"contract_id": contractID,
		"number":      number,
		"date":        date,
		"type":        typ,
	}, number)
}

func (r *SupplyRepo) ListByRegistry(ctx context.Context, registryID id.ID) ([]*supply.Supply, error) {
	return r.t.selectRows(ctx, r.t.selectAll().
		Where(squirrel.Eq{"registry_id": registryID}).
		OrderBy(supplyOrder))
}

func (r *SupplyRepo) ListExpired(ctx context.Context, today time.Time) ([]*supply.Supply, error) {
	return r.t.selectRows(ctx, r.t.selectAll().
		Where(squirrel.Eq{"status": supply.StatusInProcess}).
		Where(squirrel.Lt{"delay_end_date": today}).
		OrderBy(supplyOrder))
}

func (r *SupplyRepo) List(ctx context.Context, filter supply.ListFilter) (domain.ListResult[*supply.Supply], error) {
	where := squirrel.And{}
	if filter.CompanyID != nil {
		c := *filter.CompanyID
		where = append(where, squirrel.Or{
			squirrel.Eq{"seller_id": c},
			squirrel.Eq{"buyer_id": c},
			squirrel.Eq{"bank_id": c},
		})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.ContractID != nil {
		where = append(where, squirrel.Eq{"contract_id": *filter.ContractID})
	}
	if filter.RegistryID != nil {
		where = append(where, squirrel.Eq{"registry_id": *filter.RegistryID})
	}
	where = dateRange(where, "date", filter.ListFilter)
	return r.t.page(ctx, where, supplyOrder, filter.ListFilter)
}
