// Package contract provides the seller/buyer contract that owns supplies.
package contract

import (
	"context"

	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
)

// Status of a contract.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Contract binds exactly one seller and one buyer.
type Contract struct {
	entity.BaseEntity

	SellerID id.ID  `db:"seller_id" json:"sellerId"`
	BuyerID  id.ID  `db:"buyer_id" json:"buyerId"`
	Status   Status `db:"status" json:"status"`

	IsFactoring            bool `db:"is_factoring" json:"isFactoring"`
	IsDynamicDiscounting   bool `db:"is_dynamic_discounting" json:"isDynamicDiscounting"`
	IsRequiredRegistry     bool `db:"is_required_registry" json:"isRequiredRegistry"`
	IsRequiredNotification bool `db:"is_required_notification" json:"isRequiredNotification"`
}

// RequiresAggregation reports whether supplies must go through a registry
// instead of manual verification.
func (c *Contract) RequiresAggregation() bool {
	return c.IsRequiredRegistry || c.IsRequiredNotification
}

// Repository resolves contracts.
type Repository interface {
	GetByID(ctx context.Context, contractID id.ID) (*Contract, error)
	// FindOrCreate returns the contract between the companies with the given
	// tax identifiers, creating it when absent.
	FindOrCreate(ctx context.Context, sellerTIN, buyerTIN string) (*Contract, error)
}
