package finance_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"supplyfin/internal/core/id"
	"supplyfin/internal/domain"
	"supplyfin/internal/domain/registry"
	"supplyfin/internal/infrastructure/storage/postgres"
)

// RegistryRepo stores registries. Member supplies and discounts live in their
// own tables and are loaded by the service.
type RegistryRepo struct {
	t table[registry.Registry]
}

// NewRegistryRepo creates a registry repository.
func NewRegistryRepo(txm *postgres.TxManager) *RegistryRepo {
	return &RegistryRepo{t: newTable[registry.Registry](txm, "registries", "registry")}
}

var _ registry.Repository = (*RegistryRepo)(nil)

func (r *RegistryRepo) Create(ctx context.Context, reg *registry.Registry) error {
	return r.t.insert(ctx, reg)
}

func (r *RegistryRepo) Update(ctx context.Context, reg *registry.Registry) error {
	return r.t.update(ctx, reg, reg)
}

func (r *RegistryRepo) Delete(ctx context.Context, registryID id.ID) error {
	return r.t.delete(ctx, squirrel.Eq{"id": registryID}, registryID)
}

func (r *RegistryRepo) GetByID(ctx context.Context, registryID id.ID) (*registry.Registry, error) {
	return r.t.get(ctx, squirrel.Eq{"id": registryID}, registryID)
}

func (r *RegistryRepo) List(ctx context.Context, filter registry.ListFilter) (domain.ListResult[*registry.Registry], error) {
	where := squirrel.And{}
	if filter.VisibleTo != nil {
		where = append(where, visibleTo(*filter.VisibleTo))
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.FinanceType != nil {
		where = append(where, squirrel.Eq{"finance_type": *filter.FinanceType})
	}
	if filter.ContractID != nil {
		where = append(where, squirrel.Eq{"contract_id": *filter.ContractID})
	}
	where = dateRange(where, "creation_date", filter.ListFilter)
	return r.t.page(ctx, where, "number", filter.ListFilter)
}

// visibleTo mirrors registry.VisibleTo: sellers see their registries, buyers
// once the seller signed or confirmed, banks once both parties signed.
func visibleTo(companyID id.ID) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.Eq{"seller_id": companyID},
		squirrel.And{
			squirrel.Eq{"buyer_id": companyID},
			squirrel.Or{
				squirrel.NotEq{"sign_status": registry.SignNotSigned},
				squirrel.Eq{"is_confirmed": true},
			},
		},
		squirrel.And{
			squirrel.Eq{"bank_id": companyID},
			squirrel.Eq{"sign_status": []registry.SignStatus{registry.SignSellerBuyer, registry.SignAll}},
		},
	}
}
