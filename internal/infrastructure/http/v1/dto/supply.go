package dto

import (
	"time"

	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/supply"
)

// SupplyItemRequest is one receivable of a batch upload.
type SupplyItemRequest struct {
	Number             string      `json:"number"`
	Date               *Date       `json:"date"`
	Type               string      `json:"type"`
	Amount             types.Money `json:"amount"`
	SellerTIN          string      `json:"sellerTin"`
	BuyerTIN           string      `json:"buyerTin"`
	ContractNumber     string      `json:"contractNumber"`
	DelayEndDate       *Date       `json:"delayEndDate"`
	BaseDocumentNumber string      `json:"baseDocumentNumber"`
	BaseDocumentDate   *Date       `json:"baseDocumentDate"`
	BaseDocumentType   string      `json:"baseDocumentType"`
}

// CreateSuppliesRequest uploads a batch. Items are validated one by one.
type CreateSuppliesRequest struct {
	Items    []SupplyItemRequest `json:"items" binding:"required,min=1,max=1000,dive"`
	Provider string              `json:"provider"`
}

// ToItems converts the request for supply.Service.Create.
func (r *CreateSuppliesRequest) ToItems() []supply.CreateItem {
	out := make([]supply.CreateItem, 0, len(r.Items))
	for _, it := range r.Items {
		item := supply.CreateItem{
			Number:             it.Number,
			Type:               supply.DocumentType(it.Type),
			Amount:             it.Amount,
			SellerTIN:          it.SellerTIN,
			BuyerTIN:           it.BuyerTIN,
			ContractNumber:     it.ContractNumber,
			BaseDocumentNumber: it.BaseDocumentNumber,
			BaseDocumentDate:   it.BaseDocumentDate.Ptr(),
			BaseDocumentType:   supply.DocumentType(it.BaseDocumentType),
		}
		if it.Date != nil {
			item.Date = it.Date.Time
		}
		if it.DelayEndDate != nil {
			item.DelayEndDate = it.DelayEndDate.Time
		}
		out = append(out, item)
	}
	return out
}

// VerifyRequest lists supplies to verify. BankID and AgreementID are used by
// seller verification only.
type VerifyRequest struct {
	IDs         []string `json:"ids" binding:"required,min=1"`
	BankID      string   `json:"bankId"`
	AgreementID string   `json:"agreementId"`
}

// SupplyListQuery filters GET /supplies.
type SupplyListQuery struct {
	ListQuery
	Status     string `form:"status" binding:"omitempty,oneof=in_process in_finance not_available"`
	ContractID string `form:"contractId"`
	RegistryID string `form:"registryId"`
}

// ToFilter converts the query.
func (q SupplyListQuery) ToFilter() (supply.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return supply.ListFilter{}, err
	}
	f := supply.ListFilter{ListFilter: base}
	if q.Status != "" {
		st := supply.Status(q.Status)
		f.Status = &st
	}
	if f.ContractID, err = ParseOptionalID("contractId", q.ContractID); err != nil {
		return f, err
	}
	if f.RegistryID, err = ParseOptionalID("registryId", q.RegistryID); err != nil {
		return f, err
	}
	return f, nil
}

// SupplyResponse is the API view of a supply.
type SupplyResponse struct {
	ID             string      `json:"id"`
	Version        int         `json:"version"`
	Number         string      `json:"number"`
	Date           Date        `json:"date"`
	Type           string      `json:"type"`
	Amount         types.Money `json:"amount"`
	ContractID     string      `json:"contractId"`
	ContractNumber string      `json:"contractNumber"`
	SellerID       string      `json:"sellerId"`
	BuyerID        string      `json:"buyerId"`

	BaseDocumentID     *string `json:"baseDocumentId,omitempty"`
	BaseDocumentNumber string  `json:"baseDocumentNumber,omitempty"`
	BaseDocumentDate   *Date   `json:"baseDocumentDate,omitempty"`
	BaseDocumentType   string  `json:"baseDocumentType,omitempty"`

	Status          string `json:"status"`
	SellerVerified  bool   `json:"sellerVerified"`
	BuyerVerified   bool   `json:"buyerVerified"`
	HasVerification bool   `json:"hasVerification"`
	AddedBySeller   bool   `json:"addedBySeller"`
	DelayEndDate    Date   `json:"delayEndDate"`

	RegistryID           *string `json:"registryId,omitempty"`
	BankID               *string `json:"bankId,omitempty"`
	FactoringAgreementID *string `json:"factoringAgreementId,omitempty"`
	Provider             string  `json:"provider,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromSupply converts a domain supply.
func FromSupply(s *supply.Supply) SupplyResponse {
	resp := SupplyResponse{
		ID:                   s.ID.String(),
		Version:              s.Version,
		Number:               s.Number,
		Date:                 NewDate(s.Date),
		Type:                 string(s.Type),
		Amount:               s.Amount,
		ContractID:           s.ContractID.String(),
		ContractNumber:       s.ContractNumber,
		SellerID:             s.SellerID.String(),
		BuyerID:              s.BuyerID.String(),
		BaseDocumentID:       optionalString(s.BaseDocumentID),
		BaseDocumentNumber:   s.BaseDocumentNumber,
		BaseDocumentType:     string(s.BaseDocumentType),
		Status:               string(s.Status),
		SellerVerified:       s.SellerVerified,
		BuyerVerified:        s.BuyerVerified,
		HasVerification:      s.HasVerification,
		AddedBySeller:        s.AddedBySeller,
		DelayEndDate:         NewDate(s.DelayEndDate),
		RegistryID:           optionalString(s.RegistryID),
		BankID:               optionalString(s.BankID),
		FactoringAgreementID: optionalString(s.FactoringAgreementID),
		Provider:             s.Provider,
		CreatedAt:            s.CreationDate,
		UpdatedAt:            s.UpdateDate,
	}
	if s.BaseDocumentDate != nil {
		d := NewDate(*s.BaseDocumentDate)
		resp.BaseDocumentDate = &d
	}
	return resp
}

// SupplyBatchResponse reports accepted supplies and rejected items.
type SupplyBatchResponse struct {
	Items  []SupplyResponse    `json:"items"`
	Errors []ItemErrorResponse `json:"errors"`
}

// NewSupplyBatchResponse builds the batch response.
func NewSupplyBatchResponse(ok []*supply.Supply, failed []ItemErrorResponse) SupplyBatchResponse {
	items := make([]SupplyResponse, 0, len(ok))
	for _, s := range ok {
		items = append(items, FromSupply(s))
	}
	return SupplyBatchResponse{Items: items, Errors: failed}
}
