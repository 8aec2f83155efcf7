package finance_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/company"
	"supplyfin/internal/domain/contract"
	"supplyfin/internal/infrastructure/storage/postgres"
)

// CompanyRepo stores companies.
type CompanyRepo struct {
	t table[company.Company]
}

// NewCompanyRepo creates a company repository.
func NewCompanyRepo(txm *postgres.TxManager) *CompanyRepo {
	return &CompanyRepo{t: newTable[company.Company](txm, "companies", "company")}
}

var _ company.Repository = (*CompanyRepo)(nil)

func (r *CompanyRepo) GetByID(ctx context.Context, companyID id.ID) (*company.Company, error) {
	return r.t.get(ctx, squirrel.Eq{"id": companyID}, companyID)
}

func (r *CompanyRepo) GetByTIN(ctx context.Context, tin string) (*company.Company, error) {
	return r.t.get(ctx, squirrel.Eq{"tin": tin}, tin)
}

// Save inserts c or replaces the company with the same TIN.
func (r *CompanyRepo) Save(ctx context.Context, c *company.Company) error {
	return r.t.upsert(ctx, c, "tin", "id", "creation_date")
}

// AgreementRepo stores factoring agreements.
type AgreementRepo struct {
	t table[company.FactoringAgreement]
}

// NewAgreementRepo creates a factoring agreement repository.
func NewAgreementRepo(txm *postgres.TxManager) *AgreementRepo {
	return &AgreementRepo{t: newTable[company.FactoringAgreement](txm, "factoring_agreements", "factoring agreement")}
}

var _ company.AgreementRepository = (*AgreementRepo)(nil)

func (r *AgreementRepo) GetByID(ctx context.Context, agreementID id.ID) (*company.FactoringAgreement, error) {
	return r.t.get(ctx, squirrel.Eq{"id": agreementID}, agreementID)
}

func (r *AgreementRepo) ListActive(ctx context.Context, companyID id.ID) ([]*company.FactoringAgreement, error) {
	return r.t.selectRows(ctx, r.t.selectAll().
		Where(squirrel.Eq{"company_id": companyID, "is_active": true}).
		OrderBy("creation_date", "id"))
}

// Save inserts a or replaces the agreement with the same id.
func (r *AgreementRepo) Save(ctx context.Context, a *company.FactoringAgreement) error {
	return r.t.upsert(ctx, a, "id", "creation_date")
}

// ContractRepo stores contracts.
type ContractRepo struct {
	t         table[contract.Contract]
	companies *CompanyRepo
}

// NewContractRepo creates a contract repository.
func NewContractRepo(txm *postgres.TxManager, companies *CompanyRepo) *ContractRepo {
	return &ContractRepo{t: newTable[contract.Contract](txm, "contracts", "contract"), companies: companies}
}

var _ contract.Repository = (*ContractRepo)(nil)

func (r *ContractRepo) GetByID(ctx context.Context, contractID id.ID) (*contract.Contract, error) {
	return r.t.get(ctx, squirrel.Eq{"id": contractID}, contractID)
}

// FindOrCreate returns the seller/buyer contract, inserting an active one when absent.
// Concurrent creators converge on the row guarded by the (seller_id, buyer_id) key.
func (r *ContractRepo) FindOrCreate(ctx context.Context, sellerTIN, buyerTIN string) (*contract.Contract, error) {
	seller, err := r.companies.GetByTIN(ctx, sellerTIN)
	if err != nil {
		return nil, err
	}
	buyer, err := r.companies.GetByTIN(ctx, buyerTIN)
	if err != nil {
		return nil, err
	}

	key := squirrel.Eq{"seller_id": seller.ID, "buyer_id": buyer.ID}
	c, err := r.t.get(ctx, key, sellerTIN+"/"+buyerTIN)
	if err == nil || !apperror.IsNotFound(err) {
		return c, err
	}

	c = &contract.Contract{
		BaseEntity: entity.NewBaseEntity(time.Now()),
		SellerID:   seller.ID,
		BuyerID:    buyer.ID,
		Status:     contract.StatusActive,
	}
	sql, args, err := r.insertOrReturn(c).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	out := new(contract.Contract)
	if err := pgxscan.Get(ctx, r.t.querier(ctx), out, sql, args...); err != nil {
		return nil, fmt.Errorf("insert contracts: %w", err)
	}
	return out, nil
}

// insertOrReturn inserts c and returns the stored row. On a (seller_id, buyer_id)
// conflict the no-op update returns the competing row from the same statement,
// which a follow-up read would not see under a RepeatableRead snapshot.
func (r *ContractRepo) insertOrReturn(c *contract.Contract) squirrel.InsertBuilder {
	return builder.Insert(r.t.name).
		SetMap(r.t.values(c, r.t.cols)).
		Suffix("ON CONFLICT (seller_id, buyer_id) DO UPDATE SET seller_id = EXCLUDED.seller_id").
		Suffix("RETURNING " + strings.Join(r.t.cols, ", "))
}

// Save inserts c or replaces the contract with the same id.
func (r *ContractRepo) Save(ctx context.Context, c *contract.Contract) error {
	return r.t.upsert(ctx, c, "id", "creation_date")
}
