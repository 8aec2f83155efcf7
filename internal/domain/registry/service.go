package registry

import (
	"context"
	"time"

	"supplyfin/internal/core/apperror"
	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/numerator"
	"supplyfin/internal/core/tx"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
	"supplyfin/internal/domain/company"
	"supplyfin/internal/domain/contract"
	"supplyfin/internal/domain/pricing"
	"supplyfin/internal/domain/supply"
	"supplyfin/pkg/logger"
)

// Rule violation reasons.
const (
	ReasonSuppliesRequired       = "registry-supplies-required"
	ReasonSuppliesSpanContracts  = "registry-supplies-span-contracts"
	ReasonNotSeller              = "registry-company-is-not-seller"
	ReasonSupplyInRegistry       = "supply-already-in-registry"
	ReasonSupplyNotInProcess     = "supply-status-is-not-in-process"
	ReasonSupplyExpired          = "supply-delay-end-date-passed"
	ReasonBaseNotIncluded        = "registry-base-document-not-included"
	ReasonStatusNotInProcess     = "registry-status-is-not-in-process"
	ReasonStatusFinished         = "registry-status-is-finished"
	ReasonAlreadyDeclined        = "registry-already-declined"
	ReasonAlreadySigned          = "registry-already-signed-by-party"
	ReasonConfirmedOrVerified    = "registry-is-confirmed-or-verified"
	ReasonConfirmByBuyerOnly     = "registry-confirm-by-buyer-only"
	ReasonVerifyByBankOnly       = "registry-verify-by-bank-only"
	ReasonBankChangeBySellerOnly = "registry-bank-change-by-seller-only"
)

// Pricer prices dynamic-discounting registries.
type Pricer interface {
	Price(ctx context.Context, buyerID id.ID, total types.Money, plan time.Time, items []pricing.Item) (pricing.Result, error)
	Recompute(ctx context.Context, buyerID id.ID, total types.Money, plan time.Time, items []pricing.Item, allocations []pricing.Allocation) (pricing.Result, error)
}

// ServiceConfig wires the registry service.
type ServiceConfig struct {
	Registries Repository
	Discounts  DiscountRepository
	Supplies   supply.Repository
	Contracts  contract.Repository
	Agreements company.AgreementRepository
	Pricer     Pricer
	Numerator  numerator.Generator
	Signatures SignatureRemover
	TxManager  tx.Manager
}

// Service manages registry aggregation and lifecycle.
type Service struct {
	registries Repository
	discounts  DiscountRepository
	supplies   supply.Repository
	contracts  contract.Repository
	agreements company.AgreementRepository
	pricer     Pricer
	numerator  numerator.Generator
	signatures SignatureRemover
	txManager  tx.Manager
	now        func() time.Time
}

// NewService creates a registry service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		registries: cfg.Registries,
		discounts:  cfg.Discounts,
		supplies:   cfg.Supplies,
		contracts:  cfg.Contracts,
		agreements: cfg.Agreements,
		pricer:     cfg.Pricer,
		numerator:  cfg.Numerator,
		signatures: cfg.Signatures,
		txManager:  cfg.TxManager,
		now:        time.Now,
	}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateRequest describes a new registry.
type CreateRequest struct {
	SupplyIDs            []id.ID
	FinanceType          FinanceType
	BankID               *id.ID
	FactoringAgreementID *id.ID
	// PlannedPaymentDate is required for dynamic discounting.
	PlannedPaymentDate *time.Time
}

// UpdateRequest carries lifecycle changes. Nil fields are left untouched.
type UpdateRequest struct {
	Sign        bool
	IsConfirmed *bool
	IsVerified  *bool
	BankID      *id.ID
}

// Create aggregates supplies of one contract into a new registry.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Registry, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	pol, err := req.FinanceType.policy()
	if err != nil {
		return nil, err
	}
	if len(req.SupplyIDs) == 0 {
		return nil, apperror.NewValidation(ReasonSuppliesRequired, "at least one supply is required")
	}

	var created *Registry
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		members, err := s.supplies.GetByIDs(ctx, ReconcileMembership(nil, req.SupplyIDs).Added)
		if err != nil {
			return err
		}
		ctr, err := s.commonContract(ctx, members)
		if err != nil {
			return err
		}
		if session.CompanyID != ctr.SellerID {
			return apperror.NewForbidden(ReasonNotSeller, "only the contract seller creates registries")
		}
		if err := checkMembers(members, members, id.ID{}, now); err != nil {
			return err
		}

		contractNumber := members[0].ContractNumber
		bankID, agreementID, err := pol.financing(ctx, s, &req, ctr, contractNumber)
		if err != nil {
			return err
		}
		number, err := s.numerator.GetNextNumber(ctx,
			numerator.DefaultConfig(pol.numberPrefix(), ctr.SellerID.String()), now)
		if err != nil {
			return err
		}

		r := &Registry{
			BaseEntity:           entity.NewBaseEntity(now),
			Number:               number,
			Amount:               AmountOf(members),
			ContractID:           ctr.ID,
			ContractNumber:       contractNumber,
			SellerID:             ctr.SellerID,
			BuyerID:              ctr.BuyerID,
			Status:               StatusInProcess,
			SignStatus:           SignNotSigned,
			FinanceType:          req.FinanceType,
			BankID:               bankID,
			FactoringAgreementID: agreementID,
		}
		if err := s.registries.Create(ctx, r); err != nil {
			return err
		}
		if err := s.attach(ctx, r, members, now); err != nil {
			return err
		}
		if err := pol.membershipChanged(ctx, s, r, members, req.PlannedPaymentDate); err != nil {
			return err
		}

		r.Supplies = members
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "registry created",
		"registry_id", created.ID,
		"number", created.Number,
		"finance_type", string(created.FinanceType),
		"supplies", len(created.Supplies),
	)
	return created, nil
}

// SetSupplies replaces the members of an in-process registry.
func (s *Service) SetSupplies(ctx context.Context, registryID id.ID, supplyIDs []id.ID) (*Registry, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}

	var updated *Registry
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		r, party, err := s.load(ctx, session, registryID)
		if err != nil {
			return err
		}
		if party != PartySeller && party != PartyAdmin {
			return apperror.NewForbidden(ReasonNotSeller, "only the seller changes registry supplies")
		}
		if r.Status != StatusInProcess {
			return statusNotInProcess(r)
		}

		current, err := s.supplies.ListByRegistry(ctx, r.ID)
		if err != nil {
			return err
		}
		m := ReconcileMembership(supply.IDs(current), supplyIDs)
		if !m.Changed() {
			r.Supplies = current
			updated = r
			return nil
		}

		var added []*supply.Supply
		if len(m.Added) > 0 {
			if added, err = s.supplies.GetByIDs(ctx, m.Added); err != nil {
				return err
			}
		}
		for _, sup := range added {
			if sup.ContractID != r.ContractID || sup.ContractNumber != r.ContractNumber {
				return spanContracts(sup)
			}
		}

		kept := id.NewSet(m.Kept...)
		var final, released []*supply.Supply
		for _, sup := range current {
			if kept.Has(sup.ID) {
				final = append(final, sup)
			} else {
				released = append(released, sup)
			}
		}
		final = append(final, added...)
		if err := checkMembers(final, added, r.ID, now); err != nil {
			return err
		}

		if err := s.applyMembership(ctx, r, released, added, final, now); err != nil {
			return err
		}
		logger.Info(ctx, "registry supplies changed",
			"registry_id", r.ID,
			"kept", len(m.Kept),
			"released", len(m.Released),
			"added", len(m.Added),
		)
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Decline releases all supplies of a registry and marks it declined.
// A party that has already signed cannot decline.
func (s *Service) Decline(ctx context.Context, registryID id.ID) (*Registry, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}

	var declined *Registry
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		r, party, err := s.load(ctx, session, registryID)
		if err != nil {
			return err
		}
		switch r.Status {
		case StatusFinished:
			return apperror.NewForbidden(ReasonStatusFinished, "finished registry cannot be declined")
		case StatusDeclined:
			return apperror.NewForbidden(ReasonAlreadyDeclined, "registry is already declined")
		}
		if HasSigned(r.SignStatus, party) {
			return apperror.NewForbidden(ReasonAlreadySigned, "party has already signed the registry").
				WithDetail("party", party.String()).
				WithDetail("signStatus", string(r.SignStatus))
		}

		current, err := s.supplies.ListByRegistry(ctx, r.ID)
		if err != nil {
			return err
		}
		r.Status = StatusDeclined
		if err := s.applyMembership(ctx, r, current, nil, nil, now); err != nil {
			return err
		}
		declined = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "registry declined", "registry_id", declined.ID, "number", declined.Number)
	return declined, nil
}

// Remove deletes an in-process registry that nobody confirmed or verified.
func (s *Service) Remove(ctx context.Context, registryID id.ID) error {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		r, party, err := s.load(ctx, session, registryID)
		if err != nil {
			return err
		}
		if party != PartySeller && party != PartyAdmin {
			return apperror.NewForbidden(ReasonNotSeller, "only the seller removes registries")
		}
		if r.Status != StatusInProcess {
			return statusNotInProcess(r)
		}
		if r.IsConfirmed || r.IsVerified {
			return apperror.NewForbidden(ReasonConfirmedOrVerified, "confirmed or verified registry cannot be removed")
		}
		pol, err := r.FinanceType.policy()
		if err != nil {
			return err
		}

		current, err := s.supplies.ListByRegistry(ctx, r.ID)
		if err != nil {
			return err
		}
		if err := s.release(ctx, current, now); err != nil {
			return err
		}
		if err := pol.dispose(ctx, s, r); err != nil {
			return err
		}
		if err := s.signatures.RemoveSignatures(ctx, SignatureSubject, r.ID); err != nil {
			return err
		}
		return s.registries.Delete(ctx, r.ID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "registry removed", "registry_id", registryID)
	return nil
}

// Update applies bank reassignment, confirmation, verification and a
// signature of the acting party, in that order.
func (s *Service) Update(ctx context.Context, registryID id.ID, req UpdateRequest) (*Registry, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}

	var updated *Registry
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		r, party, err := s.load(ctx, session, registryID)
		if err != nil {
			return err
		}
		if r.Status != StatusInProcess {
			return statusNotInProcess(r)
		}
		pol, err := r.FinanceType.policy()
		if err != nil {
			return err
		}

		if req.BankID != nil && !id.Equal(req.BankID, r.BankID) {
			if err := s.changeBank(ctx, r, party, pol, *req.BankID, now); err != nil {
				return err
			}
		}
		if req.IsConfirmed != nil {
			if party != PartyBuyer && party != PartyAdmin {
				return apperror.NewForbidden(ReasonConfirmByBuyerOnly, "only the buyer confirms a registry")
			}
			r.IsConfirmed = *req.IsConfirmed
		}
		if req.IsVerified != nil {
			if !pol.bankSigns() {
				return apperror.NewForbidden(ReasonVerificationNotApplicable, "registry has no bank verification")
			}
			if party != PartyBank && party != PartyAdmin {
				return apperror.NewForbidden(ReasonVerifyByBankOnly, "only the bank verifies a registry")
			}
			r.IsVerified = *req.IsVerified
		}
		if req.Sign {
			next, err := NextSignStatus(r.SignStatus, party, r.FinanceType)
			if err != nil {
				return err
			}
			r.SignStatus = next
			if next == pol.terminalSign() {
				r.Status = StatusFinished
			}
		}

		r.Touch(now)
		if err := s.registries.Update(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "registry updated",
		"registry_id", updated.ID,
		"status", string(updated.Status),
		"sign_status", string(updated.SignStatus),
	)
	return updated, nil
}

func (s *Service) changeBank(ctx context.Context, r *Registry, party Party, pol policy, bankID id.ID, now time.Time) error {
	if !pol.bankSigns() {
		return apperror.NewForbidden(ReasonFinanceTypeMismatch, "registry is not financed by a bank")
	}
	if party != PartySeller && party != PartyAdmin {
		return apperror.NewForbidden(ReasonBankChangeBySellerOnly, "only the seller changes the bank")
	}
	active, err := s.agreements.ListActive(ctx, r.SellerID)
	if err != nil {
		return err
	}
	agreement := company.FindCovering(active, r.ContractNumber, &bankID)
	if agreement == nil {
		return apperror.NewNotFound("factoring agreement", bankID).
			WithDetail("contractNumber", r.ContractNumber)
	}
	r.BankID = id.Ptr(agreement.BankID)
	r.FactoringAgreementID = id.Ptr(agreement.ID)

	members, err := s.supplies.ListByRegistry(ctx, r.ID)
	if err != nil {
		return err
	}
	return s.attach(ctx, r, members, now)
}

// Get returns a registry with its supplies and discount.
func (s *Service) Get(ctx context.Context, registryID id.ID) (*Registry, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && !VisibleTo(r, session.CompanyID) {
		return nil, apperror.NewNotFound("registry", registryID)
	}

	if r.Supplies, err = s.supplies.ListByRegistry(ctx, r.ID); err != nil {
		return nil, err
	}
	if r.FinanceType == FinanceDynamicDiscounting {
		d, err := s.discounts.Get(ctx, r.ID)
		if err != nil && !apperror.IsNotFound(err) {
			return nil, err
		}
		r.Discount = d
	}
	return r, nil
}

// List returns registries visible to the acting company.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Registry], error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return domain.ListResult[*Registry]{}, err
	}
	if !session.IsAdmin() {
		filter.VisibleTo = id.Ptr(session.CompanyID)
	}
	return s.registries.List(ctx, filter)
}

// load fetches a registry and resolves the caller's party. Callers taking
// no part in the registry get NotFound.
func (s *Service) load(ctx context.Context, session *appctx.Session, registryID id.ID) (*Registry, Party, error) {
	r, err := s.registries.GetByID(ctx, registryID)
	if err != nil {
		return nil, PartyNone, err
	}
	party := PartyOf(session, r)
	if party == PartyNone {
		return nil, PartyNone, apperror.NewNotFound("registry", registryID)
	}
	return r, party, nil
}

// applyMembership releases and attaches supplies, resets signatures and
// recomputes totals for the final member set.
func (s *Service) applyMembership(ctx context.Context, r *Registry, released, added, final []*supply.Supply, now time.Time) error {
	pol, err := r.FinanceType.policy()
	if err != nil {
		return err
	}
	if err := s.release(ctx, released, now); err != nil {
		return err
	}
	if err := s.attach(ctx, r, added, now); err != nil {
		return err
	}

	r.Amount = AmountOf(final)
	r.SignStatus = SignNotSigned
	if err := s.signatures.RemoveSignatures(ctx, SignatureSubject, r.ID); err != nil {
		return err
	}
	r.Touch(now)
	if err := s.registries.Update(ctx, r); err != nil {
		return err
	}

	r.Supplies = final
	return pol.membershipChanged(ctx, s, r, final, nil)
}

func (s *Service) attach(ctx context.Context, r *Registry, supplies []*supply.Supply, now time.Time) error {
	for _, sup := range supplies {
		sup.RegistryID = id.Ptr(r.ID)
		sup.Status = supply.StatusInFinance
		sup.BankID = r.BankID
		sup.FactoringAgreementID = r.FactoringAgreementID
		sup.Touch(now)
		if err := s.supplies.Update(ctx, sup); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) release(ctx context.Context, supplies []*supply.Supply, now time.Time) error {
	for _, sup := range supplies {
		sup.Release(now)
		if err := s.supplies.Update(ctx, sup); err != nil {
			return err
		}
	}
	return nil
}

// commonContract returns the single contract shared by supplies.
func (s *Service) commonContract(ctx context.Context, supplies []*supply.Supply) (*contract.Contract, error) {
	first := supplies[0]
	for _, sup := range supplies[1:] {
		if sup.ContractID != first.ContractID || sup.ContractNumber != first.ContractNumber {
			return nil, spanContracts(sup)
		}
	}
	return s.contracts.GetByID(ctx, first.ContractID)
}

// checkMembers validates candidates joining registryID and that every
// dependent document in final keeps its base document alongside.
func checkMembers(final, candidates []*supply.Supply, registryID id.ID, now time.Time) error {
	for _, sup := range candidates {
		switch {
		case sup.RegistryID != nil && *sup.RegistryID != registryID:
			return memberError(ReasonSupplyInRegistry, "supply already belongs to a registry", sup)
		case sup.Status != supply.StatusInProcess:
			return memberError(ReasonSupplyNotInProcess, "supply is not in process", sup).
				WithDetail("status", string(sup.Status))
		case sup.IsExpired(now):
			return memberError(ReasonSupplyExpired, "supply delay end date has passed", sup)
		}
	}

	members := id.NewSet(supply.IDs(final)...)
	for _, sup := range final {
		if sup.Type.IsDependent() && (sup.BaseDocumentID == nil || !members.Has(*sup.BaseDocumentID)) {
			return memberError(ReasonBaseNotIncluded, "base document must be included in the registry", sup).
				WithDetail("baseNumber", sup.BaseDocumentNumber)
		}
	}
	return nil
}

func memberError(code, message string, sup *supply.Supply) *apperror.AppError {
	return apperror.NewForbidden(code, message).
		WithDetail("supplyId", sup.ID).
		WithDetail("number", sup.Number).
		WithDetail("type", string(sup.Type))
}

func spanContracts(sup *supply.Supply) *apperror.AppError {
	return memberError(ReasonSuppliesSpanContracts, "supplies must share one contract and contract number", sup)
}

func statusNotInProcess(r *Registry) *apperror.AppError {
	return apperror.NewForbidden(ReasonStatusNotInProcess, "registry is not in process").
		WithDetail("status", string(r.Status))
}
