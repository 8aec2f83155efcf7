// Package tariff provides the price bands companies use to quote early-payment discounts.
package tariff

import (
	"context"

	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/types"
)

// Type selects how a band's rate is applied.
type Type string

const (
	// TypeDiscounting applies Rate as a flat percentage of the amount.
	TypeDiscounting Type = "discounting"
	// TypeAnnual treats Rate as an annual percentage prorated by days of delay.
	TypeAnnual Type = "annual"
)

// Valid reports whether t is a known band type.
func (t Type) Valid() bool {
	return t == TypeDiscounting || t == TypeAnnual
}

// Tariff is one cell of a company's price grid: an amount range crossed with a
// day range. Nil upper bounds are open-ended.
type Tariff struct {
	entity.BaseEntity

	OwnerID id.ID  `db:"owner_id" json:"ownerId"`
	UserID  string `db:"user_id" json:"userId,omitempty"`

	FromAmount  types.Money  `db:"from_amount" json:"fromAmount"`
	UntilAmount *types.Money `db:"until_amount" json:"untilAmount,omitempty"`
	FromDay     int          `db:"from_day" json:"fromDay"`
	UntilDay    *int         `db:"until_day" json:"untilDay,omitempty"`

	Rate types.Money `db:"rate" json:"rate"`
	Type Type        `db:"type" json:"type"`
}

// ContainsAmount reports whether amount falls inside the band's amount range.
func (t *Tariff) ContainsAmount(amount types.Money) bool {
	if amount.LessThan(t.FromAmount) {
		return false
	}
	return t.UntilAmount == nil || amount.LessThanOrEqual(*t.UntilAmount)
}

// ContainsDays reports whether days falls inside the band's day range.
func (t *Tariff) ContainsDays(days int) bool {
	if days < t.FromDay {
		return false
	}
	return t.UntilDay == nil || days <= *t.UntilDay
}

// Repository persists tariff bands.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID id.ID) ([]*Tariff, error)
	// ReplaceForOwner deletes the owner's bands and stores the given ones.
	ReplaceForOwner(ctx context.Context, ownerID id.ID, bands []*Tariff) error
}
