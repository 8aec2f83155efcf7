// Package supply implements trade receivables and their verification state machine.
package supply

import (
	"slices"
	"time"

	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
)

// Status of a supply.
type Status string

const (
	StatusInProcess    Status = "in_process"
	StatusInFinance    Status = "in_finance"
	StatusNotAvailable Status = "not_available"
)

// DocumentType is the kind of document backing a supply.
type DocumentType string

const (
	TypeAct             DocumentType = "act"
	TypeConsignmentNote DocumentType = "consignment_note"
	TypeUPD             DocumentType = "upd"
	TypeInvoice         DocumentType = "invoice"
	TypeCorrectionNote  DocumentType = "correction_note"
)

// allowedBases maps dependent types to the main types they may reference.
var allowedBases = map[DocumentType][]DocumentType{
	TypeInvoice:        {TypeAct, TypeConsignmentNote},
	TypeCorrectionNote: {TypeAct, TypeConsignmentNote, TypeUPD},
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t.IsMain() || t.IsDependent()
}

// IsMain reports whether t stands on its own.
func (t DocumentType) IsMain() bool {
	return t == TypeAct || t == TypeConsignmentNote || t == TypeUPD
}

// IsDependent reports whether t must reference a base document.
func (t DocumentType) IsDependent() bool {
	_, ok := allowedBases[t]
	return ok
}

// AcceptsBase reports whether a document of type t may reference base.
func (t DocumentType) AcceptsBase(base DocumentType) bool {
	return slices.Contains(allowedBases[t], base)
}

// CountsInAmount reports whether the document contributes to registry totals.
func (t DocumentType) CountsInAmount() bool {
	return t != TypeInvoice
}

// Supply is a trade receivable.
type Supply struct {
	entity.BaseEntity

	Number string       `db:"number" json:"number"`
	Date   time.Time    `db:"date" json:"date"`
	Type   DocumentType `db:"type" json:"type"`
	Amount types.Money  `db:"amount" json:"amount"`

	ContractID     id.ID  `db:"contract_id" json:"contractId"`
	ContractNumber string `db:"contract_number" json:"contractNumber"`
	SellerID       id.ID  `db:"seller_id" json:"sellerId"`
	BuyerID        id.ID  `db:"buyer_id" json:"buyerId"`

	BaseDocumentID     *id.ID       `db:"base_document_id" json:"baseDocumentId,omitempty"`
	BaseDocumentNumber string       `db:"base_document_number" json:"baseDocumentNumber,omitempty"`
	BaseDocumentDate   *time.Time   `db:"base_document_date" json:"baseDocumentDate,omitempty"`
	BaseDocumentType   DocumentType `db:"base_document_type" json:"baseDocumentType,omitempty"`

	Status          Status `db:"status" json:"status"`
	SellerVerified  bool   `db:"seller_verified" json:"sellerVerified"`
	BuyerVerified   bool   `db:"buyer_verified" json:"buyerVerified"`
	HasVerification bool   `db:"has_verification" json:"hasVerification"`
	AddedBySeller   bool   `db:"added_by_seller" json:"addedBySeller"`

	DelayEndDate time.Time `db:"delay_end_date" json:"delayEndDate"`

	RegistryID           *id.ID `db:"registry_id" json:"registryId,omitempty"`
	BankID               *id.ID `db:"bank_id" json:"bankId,omitempty"`
	FactoringAgreementID *id.ID `db:"factoring_agreement_id" json:"factoringAgreementId,omitempty"`

	Provider string `db:"provider" json:"provider"`
}

// RecomputeVerification derives HasVerification and moves an in-process
// supply to InFinance once both sides have verified it.
func (s *Supply) RecomputeVerification() {
	s.HasVerification = s.SellerVerified && s.BuyerVerified
	if s.HasVerification && s.Status == StatusInProcess {
		s.Status = StatusInFinance
	}
}

// IsExpired reports whether the delay end date is before today.
func (s *Supply) IsExpired(today time.Time) bool {
	return types.Date(s.DelayEndDate).Before(types.Date(today))
}

// Release detaches the supply from its registry and bank and puts it back
// into InProcess, or NotAvailable when it can no longer be financed.
func (s *Supply) Release(now time.Time) {
	s.RegistryID = nil
	s.BankID = nil
	s.FactoringAgreementID = nil
	if s.IsExpired(now) {
		s.Status = StatusNotAvailable
	} else {
		s.Status = StatusInProcess
	}
	s.Touch(now)
}

// SameDocument reports whether s is the document identified by the given key.
func (s *Supply) SameDocument(contractID id.ID, number string, date time.Time, typ DocumentType) bool {
	return s.ContractID == contractID &&
		s.Number == number &&
		s.Type == typ &&
		types.Date(s.Date).Equal(types.Date(date))
}

// IDs returns the identifiers of supplies.
func IDs(supplies []*Supply) []id.ID {
	ids := make([]id.ID, len(supplies))
	for i, s := range supplies {
		ids[i] = s.ID
	}
	return ids
}
