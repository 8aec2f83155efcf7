package memory

import (
	"context"
	"slices"
	"time"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/company"
	"supplyfin/internal/domain/contract"
)

// PutCompany stores c, replacing an entry with the same id.
func (s *Store) PutCompany(c company.Company) {
	_ = s.do(context.Background(), func(st *state) error {
		st.companies[c.ID] = c
		return nil
	})
}

// PutAgreement stores a.
func (s *Store) PutAgreement(a company.FactoringAgreement) {
	a.SupplyContractNumbers = slices.Clone(a.SupplyContractNumbers)
	_ = s.do(context.Background(), func(st *state) error {
		st.agreements[a.ID] = a
		return nil
	})
}

// PutContract stores c.
func (s *Store) PutContract(c contract.Contract) {
	_ = s.do(context.Background(), func(st *state) error {
		st.contracts[c.ID] = c
		return nil
	})
}

// Companies returns the company repository.
func (s *Store) Companies() company.Repository { return companyRepo{s} }

// Agreements returns the factoring agreement repository.
func (s *Store) Agreements() company.AgreementRepository { return agreementRepo{s} }

// Contracts returns the contract repository.
func (s *Store) Contracts() contract.Repository { return contractRepo{s} }

type companyRepo struct{ s *Store }

func (r companyRepo) GetByID(ctx context.Context, companyID id.ID) (*company.Company, error) {
	var out *company.Company
	err := r.s.do(ctx, func(st *state) error {
		c, ok := st.companies[companyID]
		if !ok {
			return apperror.NewNotFound("company", companyID)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r companyRepo) GetByTIN(ctx context.Context, tin string) (*company.Company, error) {
	var out *company.Company
	err := r.s.do(ctx, func(st *state) error {
		c, ok := findByTIN(st, tin)
		if !ok {
			return apperror.NewNotFound("company", tin)
		}
		out = &c
		return nil
	})
	return out, err
}

func findByTIN(st *state, tin string) (company.Company, bool) {
	for _, c := range st.companies {
		if c.TIN == tin {
			return c, true
		}
	}
	return company.Company{}, false
}

type agreementRepo struct{ s *Store }

func (r agreementRepo) GetByID(ctx context.Context, agreementID id.ID) (*company.FactoringAgreement, error) {
	var out *company.FactoringAgreement
	err := r.s.do(ctx, func(st *state) error {
		a, ok := st.agreements[agreementID]
		if !ok {
			return apperror.NewNotFound("factoring agreement", agreementID)
		}
		a.SupplyContractNumbers = slices.Clone(a.SupplyContractNumbers)
		out = &a
		return nil
	})
	return out, err
}

func (r agreementRepo) ListActive(ctx context.Context, companyID id.ID) ([]*company.FactoringAgreement, error) {
	var out []*company.FactoringAgreement
	err := r.s.do(ctx, func(st *state) error {
		for _, a := range st.agreements {
			if a.CompanyID == companyID && a.IsActive {
				a.SupplyContractNumbers = slices.Clone(a.SupplyContractNumbers)
				out = append(out, &a)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *company.FactoringAgreement) int {
		return a.CreationDate.Compare(b.CreationDate)
	})
	return out, err
}

type contractRepo struct{ s *Store }

func (r contractRepo) GetByID(ctx context.Context, contractID id.ID) (*contract.Contract, error) {
	var out *contract.Contract
	err := r.s.do(ctx, func(st *state) error {
		c, ok := st.contracts[contractID]
		if !ok {
			return apperror.NewNotFound("contract", contractID)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r contractRepo) FindOrCreate(ctx context.Context, sellerTIN, buyerTIN string) (*contract.Contract, error) {
	var out *contract.Contract
	err := r.s.do(ctx, func(st *state) error {
		seller, ok := findByTIN(st, sellerTIN)
		if !ok {
			return apperror.NewNotFound("company", sellerTIN)
		}
		buyer, ok := findByTIN(st, buyerTIN)
		if !ok {
			return apperror.NewNotFound("company", buyerTIN)
		}
		for _, c := range st.contracts {
			if c.SellerID == seller.ID && c.BuyerID == buyer.ID {
				out = &c
				return nil
			}
		}

		c := contract.Contract{
			BaseEntity: entity.NewBaseEntity(time.Now()),
			SellerID:   seller.ID,
			BuyerID:    buyer.ID,
			Status:     contract.StatusActive,
		}
		st.contracts[c.ID] = c
		out = &c
		return nil
	})
	return out, err
}
