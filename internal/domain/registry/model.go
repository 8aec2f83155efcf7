// Package registry aggregates verified supplies for factoring or dynamic
// discounting and drives the registry status and sign-status machines.
package registry

import (
	"context"
	"time"

	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain"
	"supplyfin/internal/domain/supply"
)

// Status of a registry.
type Status string

const (
	StatusInProcess Status = "in_process"
	StatusFinished  Status = "finished"
	StatusDeclined  Status = "declined"
)

// SignStatus is the multi-party signature progress of a registry.
type SignStatus string

const (
	SignNotSigned   SignStatus = "not_signed"
	SignSeller      SignStatus = "signed_by_seller"
	SignBuyer       SignStatus = "signed_by_buyer"
	SignSellerBuyer SignStatus = "signed_by_seller_buyer"
	SignAll         SignStatus = "signed_by_all"
)

// Registry is a batch of supplies submitted together for financing.
type Registry struct {
	entity.BaseEntity

	Number         string      `db:"number" json:"number"`
	Amount         types.Money `db:"amount" json:"amount"`
	ContractID     id.ID       `db:"contract_id" json:"contractId"`
	ContractNumber string      `db:"contract_number" json:"contractNumber"`
	SellerID       id.ID       `db:"seller_id" json:"sellerId"`
	BuyerID        id.ID       `db:"buyer_id" json:"buyerId"`

	Status      Status      `db:"status" json:"status"`
	SignStatus  SignStatus  `db:"sign_status" json:"signStatus"`
	FinanceType FinanceType `db:"finance_type" json:"financeType"`

	BankID               *id.ID `db:"bank_id" json:"bankId,omitempty"`
	FactoringAgreementID *id.ID `db:"factoring_agreement_id" json:"factoringAgreementId,omitempty"`

	IsConfirmed bool `db:"is_confirmed" json:"isConfirmed"`
	IsVerified  bool `db:"is_verified" json:"isVerified"`

	Supplies []*supply.Supply `db:"-" json:"supplies,omitempty"`
	Discount *Discount        `db:"-" json:"discount,omitempty"`
}

// Discount is the early-payment pricing of a dynamic-discounting registry.
type Discount struct {
	RegistryID         id.ID       `db:"registry_id" json:"registryId"`
	PlannedPaymentDate time.Time   `db:"planned_payment_date" json:"plannedPaymentDate"`
	Rate               types.Money `db:"rate" json:"rate"`
	DiscountedAmount   types.Money `db:"discounted_amount" json:"discountedAmount"`
	AmountToPay        types.Money `db:"amount_to_pay" json:"amountToPay"`
	// HasChanged is set once a party overrides the computed allocations.
	HasChanged bool      `db:"has_changed" json:"hasChanged"`
	UpdateDate time.Time `db:"update_date" json:"updateDate"`

	Allocations []SupplyDiscount `db:"-" json:"allocations"`
}

// SupplyDiscount is the discount allocated to one main-type member supply.
type SupplyDiscount struct {
	RegistryID       id.ID       `db:"registry_id" json:"registryId"`
	SupplyID         id.ID       `db:"supply_id" json:"supplyId"`
	Rate             types.Money `db:"rate" json:"rate"`
	DiscountedAmount types.Money `db:"discounted_amount" json:"discountedAmount"`
}

// ListFilter narrows registry listings.
type ListFilter struct {
	domain.ListFilter

	// VisibleTo restricts results to registries the company may see.
	VisibleTo   *id.ID
	Status      *Status
	FinanceType *FinanceType
	ContractID  *id.ID
}

// Repository persists registries.
type Repository interface {
	Create(ctx context.Context, r *Registry) error
	// Update saves r with optimistic locking on Version.
	Update(ctx context.Context, r *Registry) error
	Delete(ctx context.Context, registryID id.ID) error
	GetByID(ctx context.Context, registryID id.ID) (*Registry, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Registry], error)
}

// DiscountRepository persists discounts together with their allocations.
type DiscountRepository interface {
	// Get returns NotFound when the registry has no discount.
	Get(ctx context.Context, registryID id.ID) (*Discount, error)
	// Save upserts d and replaces its allocation set.
	Save(ctx context.Context, d *Discount) error
	Delete(ctx context.Context, registryID id.ID) error
}

// SignatureRemover invalidates stored signatures of a subject.
type SignatureRemover interface {
	RemoveSignatures(ctx context.Context, subjectType string, subjectID id.ID) error
}

// SignatureSubject is the subject type registries are signed under.
const SignatureSubject = "registry"

// AmountOf sums the supplies that count toward registry totals.
func AmountOf(supplies []*supply.Supply) types.Money {
	total := types.Zero()
	for _, s := range supplies {
		if s.Type.CountsInAmount() {
			total = total.Add(s.Amount)
		}
	}
	return total
}
