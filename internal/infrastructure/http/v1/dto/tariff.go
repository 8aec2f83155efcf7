package dto

import (
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/tariff"
)

// TariffBand is one band of a tariff grid.
type TariffBand struct {
	FromAmount  types.Money  `json:"fromAmount"`
	UntilAmount *types.Money `json:"untilAmount,omitempty"`
	FromDay     int          `json:"fromDay"`
	UntilDay    *int         `json:"untilDay,omitempty"`
	Rate        types.Money  `json:"rate"`
	Type        string       `json:"type"`
}

// ReplaceTariffsRequest swaps the owner's whole grid.
type ReplaceTariffsRequest struct {
	Bands []TariffBand `json:"bands" binding:"required,min=1"`
}

// ToDomain converts the bands; ids, owner and user are set by the service.
func (r *ReplaceTariffsRequest) ToDomain() []*tariff.Tariff {
	out := make([]*tariff.Tariff, 0, len(r.Bands))
	for _, b := range r.Bands {
		out = append(out, &tariff.Tariff{
			FromAmount:  b.FromAmount,
			UntilAmount: b.UntilAmount,
			FromDay:     b.FromDay,
			UntilDay:    b.UntilDay,
			Rate:        b.Rate,
			Type:        tariff.Type(b.Type),
		})
	}
	return out
}

// TariffResponse is a stored band.
type TariffResponse struct {
	ID string `json:"id"`
	TariffBand
}

// FromTariffs converts stored bands.
func FromTariffs(bands []*tariff.Tariff) []TariffResponse {
	out := make([]TariffResponse, 0, len(bands))
	for _, b := range bands {
		out = append(out, TariffResponse{
			ID: b.ID.String(),
			TariffBand: TariffBand{
				FromAmount:  b.FromAmount,
				UntilAmount: b.UntilAmount,
				FromDay:     b.FromDay,
				UntilDay:    b.UntilDay,
				Rate:        b.Rate,
				Type:        string(b.Type),
			},
		})
	}
	return out
}
