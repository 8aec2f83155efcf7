// Package company provides participant companies and their factoring agreements.
package company

import (
	"slices"

	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
)

// Company is a seller/buyer or a bank taking part in supply financing.
type Company struct {
	entity.BaseEntity

	TIN  string      `db:"tin" json:"tin"`
	Name string      `db:"name" json:"name"`
	Role appctx.Role `db:"role" json:"role"`

	// SendAutomatically lets factoring-enabled supplies skip manual seller verification.
	SendAutomatically bool `db:"send_automatically" json:"sendAutomatically"`
}

// FactoringAgreement enables factoring of a company's supplies through a bank.
type FactoringAgreement struct {
	entity.BaseEntity

	CompanyID id.ID  `db:"company_id" json:"companyId"`
	BankID    id.ID  `db:"bank_id" json:"bankId"`
	Number    string `db:"number" json:"number"`
	IsActive  bool   `db:"is_active" json:"isActive"`

	// SupplyContractNumbers lists the supply-agreement numbers the agreement covers.
	SupplyContractNumbers []string `db:"supply_contract_numbers" json:"supplyContractNumbers"`
}

// Covers reports whether the agreement finances supplies under contractNumber.
func (a *FactoringAgreement) Covers(contractNumber string) bool {
	return slices.Contains(a.SupplyContractNumbers, contractNumber)
}

// FindCovering returns the first active agreement covering contractNumber,
// optionally restricted to bankID.
func FindCovering(agreements []*FactoringAgreement, contractNumber string, bankID *id.ID) *FactoringAgreement {
	for _, a := range agreements {
		if !a.IsActive || !a.Covers(contractNumber) {
			continue
		}
		if bankID != nil && a.BankID != *bankID {
			continue
		}
		return a
	}
	return nil
}
