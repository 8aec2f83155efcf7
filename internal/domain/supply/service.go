package supply

import (
	"context"
	"time"

	"supplyfin/internal/core/apperror"
	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/tx"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
	"supplyfin/internal/domain/company"
	"supplyfin/internal/domain/contract"
	"supplyfin/pkg/logger"
)

// Rule violation reasons.
const (
	ReasonCreatorNotParticipant    = "supply-creator-must-be-seller-or-buyer"
	ReasonNotSeller                = "supply-company-is-not-seller"
	ReasonNotBuyer                 = "supply-company-is-not-buyer"
	ReasonAlreadyVerifiedBySeller  = "supply-already-verified-by-seller"
	ReasonAlreadyVerifiedByBuyer   = "supply-already-verified-by-buyer"
	ReasonContractRequiresRegistry = "supply-contract-requires-registry"
	ReasonStatusNotInProcess       = "supply-status-is-not-in-process"
	ReasonAgreementNotCovering     = "factoring-agreement-does-not-cover-contract"
	ReasonSendAutomaticallyOff     = "send-automatically-disabled"
)

// CreateResult lists accepted supplies and the items that were rejected.
type CreateResult struct {
	Accepted []*Supply            `json:"accepted"`
	Errors   []apperror.ItemError `json:"errors"`
}

// VerifyResult lists verified supplies and the ids that were rejected.
type VerifyResult struct {
	Verified []*Supply            `json:"verified"`
	Errors   []apperror.ItemError `json:"errors"`
}

type side int

const (
	sideSeller side = iota
	sideBuyer
)

// Service drives the supply verification state machine.
type Service struct {
	repo       Repository
	contracts  contract.Repository
	companies  company.Repository
	agreements company.AgreementRepository
	txManager  tx.Manager
	now        func() time.Time
}

// NewService creates a supply service.
func NewService(
	repo Repository,
	contracts contract.Repository,
	companies company.Repository,
	agreements company.AgreementRepository,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		contracts:  contracts,
		companies:  companies,
		agreements: agreements,
		txManager:  txManager,
		now:        time.Now,
	}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create registers a batch of receivables for the acting company.
// Invalid items are reported and skipped; the rest are stored together.
func (s *Service) Create(ctx context.Context, items []CreateItem, provider string) (*CreateResult, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	acting, err := s.companies.GetByID(ctx, session.CompanyID)
	if err != nil {
		return nil, err
	}
	if acting.Role != appctx.RoleSellerBuyer {
		return nil, apperror.NewForbidden(ReasonCreatorNotParticipant, "only sellers and buyers register supplies")
	}

	var result *CreateResult
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		result = &CreateResult{}
		var errs apperror.BatchErrors

		for i := range items {
			item := &items[i]
			sup, err := s.prepare(ctx, item, acting, result.Accepted, provider)
			if err != nil {
				if !isItemFailure(err) {
					return err
				}
				logger.Debug(ctx, "supply rejected", "index", i, "number", item.Number, "error", err)
				errs.Add(i, item.Number, err)
				continue
			}
			if err := s.repo.Create(ctx, sup); err != nil {
				return err
			}
			result.Accepted = append(result.Accepted, sup)
		}

		result.Errors = errs.Items
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "supplies created",
		"accepted", len(result.Accepted),
		"rejected", len(result.Errors),
		"provider", provider,
	)
	return result, nil
}

func (s *Service) prepare(
	ctx context.Context,
	item *CreateItem,
	acting *company.Company,
	batch []*Supply,
	provider string,
) (*Supply, error) {
	now := s.now()
	if err := validateFields(item, now); err != nil {
		return nil, err
	}
	if acting.TIN != item.SellerTIN && acting.TIN != item.BuyerTIN {
		return nil, itemError(ReasonTINMismatch, "acting company is neither seller nor buyer", item)
	}
	addedBySeller := acting.TIN == item.SellerTIN

	ctr, err := s.contracts.FindOrCreate(ctx, item.SellerTIN, item.BuyerTIN)
	if err != nil {
		return nil, err
	}

	dup, err := s.findDocument(ctx, batch, ctr.ID, item.Number, item.Date, item.Type)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, itemError(ReasonDuplicate, "supply already registered", item)
	}

	sup := &Supply{
		BaseEntity:     entity.NewBaseEntity(now),
		Number:         item.Number,
		Date:           types.Date(item.Date),
		Type:           item.Type,
		Amount:         item.Amount,
		ContractID:     ctr.ID,
		ContractNumber: item.ContractNumber,
		SellerID:       ctr.SellerID,
		BuyerID:        ctr.BuyerID,
		Status:         StatusInProcess,
		BuyerVerified:  !addedBySeller,
		AddedBySeller:  addedBySeller,
		DelayEndDate:   types.Date(item.DelayEndDate),
		Provider:       provider,
	}

	if item.Type.IsDependent() {
		base, err := s.findDocument(ctx, batch, ctr.ID, item.BaseDocumentNumber, *item.BaseDocumentDate, item.BaseDocumentType)
		if err != nil {
			return nil, err
		}
		if base == nil {
			return nil, itemError(ReasonBaseDocumentNotFound, "base document not found", item).
				WithDetail("baseNumber", item.BaseDocumentNumber).
				WithDetail("baseType", string(item.BaseDocumentType))
		}
		sup.BaseDocumentID = id.Ptr(base.ID)
		sup.BaseDocumentNumber = base.Number
		sup.BaseDocumentDate = &base.Date
		sup.BaseDocumentType = base.Type
	}

	if err := s.fastTrack(ctx, sup, ctr, acting, addedBySeller); err != nil {
		return nil, err
	}
	sup.RecomputeVerification()
	return sup, nil
}

// fastTrack marks the seller side verified when the seller sends factoring
// supplies automatically and holds an agreement covering the contract.
func (s *Service) fastTrack(ctx context.Context, sup *Supply, ctr *contract.Contract, acting *company.Company, addedBySeller bool) error {
	if !ctr.IsFactoring || ctr.RequiresAggregation() {
		return nil
	}
	seller := acting
	if !addedBySeller {
		var err error
		if seller, err = s.companies.GetByID(ctx, ctr.SellerID); err != nil {
			return err
		}
	}
	if !seller.SendAutomatically {
		return nil
	}

	active, err := s.agreements.ListActive(ctx, seller.ID)
	if err != nil {
		return err
	}
	agreement := company.FindCovering(active, sup.ContractNumber, nil)
	if agreement == nil {
		return nil
	}
	sup.SellerVerified = true
	sup.BankID = id.Ptr(agreement.BankID)
	sup.FactoringAgreementID = id.Ptr(agreement.ID)
	return nil
}

// findDocument looks in the pending batch first, then in storage. A nil
// supply with a nil error means no match.
func (s *Service) findDocument(ctx context.Context, batch []*Supply, contractID id.ID, number string, date time.Time, typ DocumentType) (*Supply, error) {
	for _, b := range batch {
		if b.SameDocument(contractID, number, date, typ) {
			return b, nil
		}
	}
	found, err := s.repo.FindByDocument(ctx, contractID, number, types.Date(date), typ)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	return found, err
}

// VerifyBySeller confirms supplies on the seller side and assigns the bank
// financing them under agreementID.
func (s *Service) VerifyBySeller(ctx context.Context, ids []id.ID, bankID, agreementID id.ID) (*VerifyResult, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	agreement, err := s.agreements.GetByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if !agreement.IsActive || agreement.BankID != bankID ||
		(!session.IsAdmin() && agreement.CompanyID != session.CompanyID) {
		return nil, apperror.NewNotFound("factoring agreement", agreementID)
	}

	return s.verify(ctx, session, ids, sideSeller, func(sup *Supply) (*company.FactoringAgreement, error) {
		if !agreement.Covers(sup.ContractNumber) {
			return nil, apperror.NewForbidden(ReasonAgreementNotCovering, "agreement does not cover the supply contract").
				WithDetail("contractNumber", sup.ContractNumber)
		}
		return agreement, nil
	})
}

// VerifyByBuyer confirms supplies on the buyer side.
func (s *Service) VerifyByBuyer(ctx context.Context, ids []id.ID) (*VerifyResult, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.verify(ctx, session, ids, sideBuyer, nil)
}

// VerifyAutomatically performs seller verification for companies that send
// supplies automatically, picking the covering agreement per supply.
func (s *Service) VerifyAutomatically(ctx context.Context, ids []id.ID) (*VerifyResult, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	acting, err := s.companies.GetByID(ctx, session.CompanyID)
	if err != nil {
		return nil, err
	}
	if !acting.SendAutomatically {
		return nil, apperror.NewForbidden(ReasonSendAutomaticallyOff, "automatic sending is disabled for the company")
	}
	active, err := s.agreements.ListActive(ctx, acting.ID)
	if err != nil {
		return nil, err
	}

	return s.verify(ctx, session, ids, sideSeller, func(sup *Supply) (*company.FactoringAgreement, error) {
		agreement := company.FindCovering(active, sup.ContractNumber, nil)
		if agreement == nil {
			return nil, apperror.NewNotFound("factoring agreement", sup.ContractNumber)
		}
		return agreement, nil
	})
}

func (s *Service) verify(
	ctx context.Context,
	session *appctx.Session,
	ids []id.ID,
	by side,
	pickAgreement func(*Supply) (*company.FactoringAgreement, error),
) (*VerifyResult, error) {
	var result *VerifyResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		result = &VerifyResult{}
		var errs apperror.BatchErrors
		contracts := make(map[id.ID]*contract.Contract)
		now := s.now()

		for i, supplyID := range ids {
			sup, err := s.repo.GetByID(ctx, supplyID)
			if err == nil {
				err = s.checkVerifiable(ctx, session, sup, by, contracts)
			}
			var agreement *company.FactoringAgreement
			if err == nil && pickAgreement != nil {
				agreement, err = pickAgreement(sup)
			}
			if err != nil {
				if !isItemFailure(err) {
					return err
				}
				errs.Add(i, supplyID.String(), err)
				continue
			}

			switch by {
			case sideSeller:
				sup.SellerVerified = true
				if agreement != nil {
					sup.BankID = id.Ptr(agreement.BankID)
					sup.FactoringAgreementID = id.Ptr(agreement.ID)
				}
			case sideBuyer:
				sup.BuyerVerified = true
			}
			sup.RecomputeVerification()
			sup.Touch(now)

			if err := s.repo.Update(ctx, sup); err != nil {
				return err
			}
			result.Verified = append(result.Verified, sup)
		}

		result.Errors = errs.Items
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "supplies verified",
		"side", by.String(),
		"verified", len(result.Verified),
		"rejected", len(result.Errors),
	)
	return result, nil
}

func (s *Service) checkVerifiable(
	ctx context.Context,
	session *appctx.Session,
	sup *Supply,
	by side,
	contracts map[id.ID]*contract.Contract,
) error {
	switch by {
	case sideSeller:
		if !session.IsAdmin() && sup.SellerID != session.CompanyID {
			return apperror.NewForbidden(ReasonNotSeller, "acting company is not the supply seller")
		}
		if sup.SellerVerified {
			return apperror.NewForbidden(ReasonAlreadyVerifiedBySeller, "supply already verified by seller")
		}
	case sideBuyer:
		if !session.IsAdmin() && sup.BuyerID != session.CompanyID {
			return apperror.NewForbidden(ReasonNotBuyer, "acting company is not the supply buyer")
		}
		if sup.BuyerVerified {
			return apperror.NewForbidden(ReasonAlreadyVerifiedByBuyer, "supply already verified by buyer")
		}
	}

	ctr, ok := contracts[sup.ContractID]
	if !ok {
		var err error
		if ctr, err = s.contracts.GetByID(ctx, sup.ContractID); err != nil {
			return err
		}
		contracts[sup.ContractID] = ctr
	}
	if ctr.RequiresAggregation() {
		return apperror.NewForbidden(ReasonContractRequiresRegistry, "supply must be financed through a registry")
	}
	if sup.Status != StatusInProcess {
		return apperror.NewForbidden(ReasonStatusNotInProcess, "supply is not in process").
			WithDetail("status", string(sup.Status))
	}
	return nil
}

// SweepNotAvailable moves expired in-process supplies to NotAvailable and
// returns how many were moved.
func (s *Service) SweepNotAvailable(ctx context.Context) (int, error) {
	var moved int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		expired, err := s.repo.ListExpired(ctx, types.Date(now))
		if err != nil {
			return err
		}
		moved = 0
		for _, sup := range expired {
			sup.Status = StatusNotAvailable
			sup.Touch(now)
			if err := s.repo.Update(ctx, sup); err != nil {
				return err
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		logger.Info(ctx, "supplies moved to not available", "count", moved)
	}
	return moved, nil
}

// Get returns a supply visible to the acting company.
func (s *Service) Get(ctx context.Context, supplyID id.ID) (*Supply, error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return nil, err
	}
	sup, err := s.repo.GetByID(ctx, supplyID)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && !isParticipant(sup, session.CompanyID) {
		return nil, apperror.NewNotFound("supply", supplyID)
	}
	return sup, nil
}

// List returns supplies of the acting company.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Supply], error) {
	session, err := appctx.RequireSession(ctx)
	if err != nil {
		return domain.ListResult[*Supply]{}, err
	}
	if !session.IsAdmin() {
		filter.CompanyID = id.Ptr(session.CompanyID)
	}
	return s.repo.List(ctx, filter)
}

func isParticipant(sup *Supply, companyID id.ID) bool {
	return sup.SellerID == companyID || sup.BuyerID == companyID ||
		(sup.BankID != nil && *sup.BankID == companyID)
}

// isItemFailure reports whether err rejects a single item rather than the batch.
func isItemFailure(err error) bool {
	appErr, ok := apperror.AsAppError(err)
	return ok && appErr.Kind != apperror.KindInternal && appErr.Kind != apperror.KindConflict
}

func (d side) String() string {
	if d == sideBuyer {
		return "buyer"
	}
	return "seller"
}
