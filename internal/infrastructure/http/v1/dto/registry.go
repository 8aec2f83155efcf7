package dto

import (
	"time"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/pricing"
	"supplyfin/internal/domain/registry"
)

// CreateRegistryRequest aggregates supplies into a registry.
type CreateRegistryRequest struct {
	SupplyIDs            []string `json:"supplyIds" binding:"required,min=1"`
	FinanceType          string   `json:"financeType" binding:"required"`
	BankID               string   `json:"bankId"`
	FactoringAgreementID string   `json:"factoringAgreementId"`
	PlannedPaymentDate   *Date    `json:"plannedPaymentDate"`
}

// ToDomain converts the request.
func (r *CreateRegistryRequest) ToDomain() (registry.CreateRequest, error) {
	var (
		req registry.CreateRequest
		err error
	)
	if req.SupplyIDs, err = ParseIDs(r.SupplyIDs); err != nil {
		return req, err
	}
	if req.BankID, err = ParseOptionalID("bankId", r.BankID); err != nil {
		return req, err
	}
	if req.FactoringAgreementID, err = ParseOptionalID("factoringAgreementId", r.FactoringAgreementID); err != nil {
		return req, err
	}
	req.FinanceType = registry.FinanceType(r.FinanceType)
	req.PlannedPaymentDate = r.PlannedPaymentDate.Ptr()
	return req, nil
}

// SetSuppliesRequest replaces the registry's membership.
type SetSuppliesRequest struct {
	SupplyIDs []string `json:"supplyIds" binding:"required,min=1"`
}

// UpdateRegistryRequest carries lifecycle changes; absent fields are untouched.
type UpdateRegistryRequest struct {
	Sign        bool   `json:"sign"`
	IsConfirmed *bool  `json:"isConfirmed"`
	IsVerified  *bool  `json:"isVerified"`
	BankID      string `json:"bankId"`
}

// ToDomain converts the request.
func (r *UpdateRegistryRequest) ToDomain() (registry.UpdateRequest, error) {
	bankID, err := ParseOptionalID("bankId", r.BankID)
	if err != nil {
		return registry.UpdateRequest{}, err
	}
	return registry.UpdateRequest{
		Sign:        r.Sign,
		IsConfirmed: r.IsConfirmed,
		IsVerified:  r.IsVerified,
		BankID:      bankID,
	}, nil
}

// AllocationRequest overrides the discount of one supply.
type AllocationRequest struct {
	SupplyID         string      `json:"supplyId" binding:"required"`
	Rate             types.Money `json:"rate"`
	DiscountedAmount types.Money `json:"discountedAmount"`
}

// UpdateDiscountRequest moves the planned payment date; allocations, when
// present, replace the computed ones.
type UpdateDiscountRequest struct {
	PlannedPaymentDate *Date               `json:"plannedPaymentDate" binding:"required"`
	Allocations        []AllocationRequest `json:"allocations" binding:"omitempty,dive"`
}

// ToAllocations converts manual allocations; nil means re-price.
func (r *UpdateDiscountRequest) ToAllocations() ([]pricing.Allocation, error) {
	if r.Allocations == nil {
		return nil, nil
	}
	out := make([]pricing.Allocation, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		supplyID, err := id.Parse(a.SupplyID)
		if err != nil {
			return nil, apperror.NewValidation(apperror.CodeValidation, "invalid id").WithDetail("value", a.SupplyID)
		}
		out = append(out, pricing.Allocation{SupplyID: supplyID, Rate: a.Rate, DiscountedAmount: a.DiscountedAmount})
	}
	return out, nil
}

// RegistryListQuery filters GET /registries.
type RegistryListQuery struct {
	ListQuery
	Status      string `form:"status" binding:"omitempty,oneof=in_process finished declined"`
	FinanceType string `form:"financeType"`
	ContractID  string `form:"contractId"`
}

// ToFilter converts the query.
func (q RegistryListQuery) ToFilter() (registry.ListFilter, error) {
	base, err := q.ListQuery.ToFilter()
	if err != nil {
		return registry.ListFilter{}, err
	}
	f := registry.ListFilter{ListFilter: base}
	if q.Status != "" {
		st := registry.Status(q.Status)
		f.Status = &st
	}
	if q.FinanceType != "" {
		ft := registry.FinanceType(q.FinanceType)
		f.FinanceType = &ft
	}
	if f.ContractID, err = ParseOptionalID("contractId", q.ContractID); err != nil {
		return f, err
	}
	return f, nil
}

// AllocationResponse is the discount of one member supply.
type AllocationResponse struct {
	SupplyID         string      `json:"supplyId"`
	Rate             types.Money `json:"rate"`
	DiscountedAmount types.Money `json:"discountedAmount"`
}

// DiscountResponse is the pricing of a dynamic-discounting registry.
type DiscountResponse struct {
	PlannedPaymentDate Date                 `json:"plannedPaymentDate"`
	Rate               types.Money          `json:"rate"`
	DiscountedAmount   types.Money          `json:"discountedAmount"`
	AmountToPay        types.Money          `json:"amountToPay"`
	HasChanged         bool                 `json:"hasChanged"`
	UpdatedAt          time.Time            `json:"updatedAt"`
	Allocations        []AllocationResponse `json:"allocations"`
}

// FromDiscount converts a discount; nil stays nil.
func FromDiscount(d *registry.Discount) *DiscountResponse {
	if d == nil {
		return nil
	}
	resp := &DiscountResponse{
		PlannedPaymentDate: NewDate(d.PlannedPaymentDate),
		Rate:               d.Rate,
		DiscountedAmount:   d.DiscountedAmount,
		AmountToPay:        d.AmountToPay,
		HasChanged:         d.HasChanged,
		UpdatedAt:          d.UpdateDate,
		Allocations:        make([]AllocationResponse, 0, len(d.Allocations)),
	}
	for _, a := range d.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationResponse{
			SupplyID:         a.SupplyID.String(),
			Rate:             a.Rate,
			DiscountedAmount: a.DiscountedAmount,
		})
	}
	return resp
}

// RegistryResponse is the API view of a registry.
type RegistryResponse struct {
	ID             string      `json:"id"`
	Version        int         `json:"version"`
	Number         string      `json:"number"`
	Amount         types.Money `json:"amount"`
	ContractID     string      `json:"contractId"`
	ContractNumber string      `json:"contractNumber"`
	SellerID       string      `json:"sellerId"`
	BuyerID        string      `json:"buyerId"`

	Status      string `json:"status"`
	SignStatus  string `json:"signStatus"`
	FinanceType string `json:"financeType"`

	BankID               *string `json:"bankId,omitempty"`
	FactoringAgreementID *string `json:"factoringAgreementId,omitempty"`
	IsConfirmed          bool    `json:"isConfirmed"`
	IsVerified           bool    `json:"isVerified"`

	Supplies []SupplyResponse  `json:"supplies,omitempty"`
	Discount *DiscountResponse `json:"discount,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromRegistry converts a registry together with any loaded members and discount.
func FromRegistry(r *registry.Registry) RegistryResponse {
	resp := RegistryResponse{
		ID:                   r.ID.String(),
		Version:              r.Version,
		Number:               r.Number,
		Amount:               r.Amount,
		ContractID:           r.ContractID.String(),
		ContractNumber:       r.ContractNumber,
		SellerID:             r.SellerID.String(),
		BuyerID:              r.BuyerID.String(),
		Status:               string(r.Status),
		SignStatus:           string(r.SignStatus),
		FinanceType:          string(r.FinanceType),
		BankID:               optionalString(r.BankID),
		FactoringAgreementID: optionalString(r.FactoringAgreementID),
		IsConfirmed:          r.IsConfirmed,
		IsVerified:           r.IsVerified,
		Discount:             FromDiscount(r.Discount),
		CreatedAt:            r.CreationDate,
		UpdatedAt:            r.UpdateDate,
	}
	for _, s := range r.Supplies {
		resp.Supplies = append(resp.Supplies, FromSupply(s))
	}
	return resp
}
