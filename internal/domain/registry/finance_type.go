package registry

import (
	"context"
	"time"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
	"supplyfin/internal/domain/company"
	"supplyfin/internal/domain/contract"
	"supplyfin/internal/domain/supply"
)

// FinanceType selects how a registry is financed.
type FinanceType string

const (
	FinanceSupplyVerification FinanceType = "supply_verification"
	FinanceDynamicDiscounting FinanceType = "dynamic_discounting"
)

// Reasons raised by finance-type rules.
const (
	ReasonFinanceTypeUnknown        = "registry-finance-type-unknown"
	ReasonBankRequired              = "registry-bank-and-agreement-required"
	ReasonBankNotAllowed            = "registry-bank-not-allowed-for-dynamic-discounting"
	ReasonContractNotDiscounting    = "contract-is-not-dynamic-discounting"
	ReasonContractNotFactoring      = "contract-is-not-factoring"
	ReasonPlannedDateRequired       = "registry-planned-payment-date-required"
	ReasonFinanceTypeMismatch       = "registry-finance-type-mismatch"
	ReasonVerificationNotApplicable = "registry-verification-not-applicable"
)

// Valid reports whether f is a known finance type.
func (f FinanceType) Valid() bool {
	_, err := f.policy()
	return err == nil
}

// policy is the single dispatch point for behaviour that differs by finance type.
type policy interface {
	numberPrefix() string
	// terminalSign is the sign status that finishes the registry.
	terminalSign() SignStatus
	// bankSigns reports whether the bank signs and verifies the registry.
	bankSigns() bool
	// financing resolves bank and agreement for a new registry.
	financing(ctx context.Context, s *Service, req *CreateRequest, ctr *contract.Contract, contractNumber string) (bankID, agreementID *id.ID, err error)
	// membershipChanged runs after members were attached or released. plan
	// is set only when a registry is created.
	membershipChanged(ctx context.Context, s *Service, r *Registry, members []*supply.Supply, plan *time.Time) error
	// dispose removes finance-type data of a deleted registry.
	dispose(ctx context.Context, s *Service, r *Registry) error
}

func (f FinanceType) policy() (policy, error) {
	switch f {
	case FinanceSupplyVerification:
		return supplyVerification{}, nil
	case FinanceDynamicDiscounting:
		return dynamicDiscounting{}, nil
	}
	return nil, apperror.NewValidation(ReasonFinanceTypeUnknown, "unknown finance type").
		WithDetail("financeType", string(f))
}

type supplyVerification struct{}

func (supplyVerification) numberPrefix() string     { return "SV" }
func (supplyVerification) terminalSign() SignStatus { return SignAll }
func (supplyVerification) bankSigns() bool          { return true }

func (supplyVerification) financing(ctx context.Context, s *Service, req *CreateRequest, ctr *contract.Contract, contractNumber string) (*id.ID, *id.ID, error) {
	if req.BankID == nil || req.FactoringAgreementID == nil {
		return nil, nil, apperror.NewValidation(ReasonBankRequired, "bank and factoring agreement are required")
	}
	if !ctr.IsFactoring {
		return nil, nil, apperror.NewForbidden(ReasonContractNotFactoring, "contract does not allow factoring")
	}
	agreement, err := s.agreements.GetByID(ctx, *req.FactoringAgreementID)
	if err != nil {
		return nil, nil, err
	}
	if company.FindCovering([]*company.FactoringAgreement{agreement}, contractNumber, req.BankID) == nil ||
		agreement.CompanyID != ctr.SellerID {
		return nil, nil, apperror.NewNotFound("factoring agreement", *req.FactoringAgreementID).
			WithDetail("contractNumber", contractNumber)
	}
	return id.Ptr(agreement.BankID), id.Ptr(agreement.ID), nil
}

func (supplyVerification) membershipChanged(context.Context, *Service, *Registry, []*supply.Supply, *time.Time) error {
	return nil
}

func (supplyVerification) dispose(context.Context, *Service, *Registry) error { return nil }

type dynamicDiscounting struct{}

func (dynamicDiscounting) numberPrefix() string     { return "DD" }
func (dynamicDiscounting) terminalSign() SignStatus { return SignSellerBuyer }
func (dynamicDiscounting) bankSigns() bool          { return false }

func (dynamicDiscounting) financing(_ context.Context, _ *Service, req *CreateRequest, ctr *contract.Contract, _ string) (*id.ID, *id.ID, error) {
	if req.BankID != nil || req.FactoringAgreementID != nil {
		return nil, nil, apperror.NewValidation(ReasonBankNotAllowed, "dynamic discounting registries have no bank")
	}
	if !ctr.IsDynamicDiscounting {
		return nil, nil, apperror.NewForbidden(ReasonContractNotDiscounting, "contract does not allow dynamic discounting")
	}
	if req.PlannedPaymentDate == nil {
		return nil, nil, apperror.NewValidation(ReasonPlannedDateRequired, "planned payment date is required")
	}
	return nil, nil, nil
}

func (dynamicDiscounting) membershipChanged(ctx context.Context, s *Service, r *Registry, members []*supply.Supply, plan *time.Time) error {
	return s.repriceOnMembership(ctx, r, members, plan)
}

func (dynamicDiscounting) dispose(ctx context.Context, s *Service, r *Registry) error {
	err := s.discounts.Delete(ctx, r.ID)
	if apperror.IsNotFound(err) {
		return nil
	}
	return err
}
