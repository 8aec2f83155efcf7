package registry

import (
	"supplyfin/internal/core/id"
)

// VisibleTo reports whether companyID may see r. Sellers always see their
// registries; buyers once signing has started or the registry is confirmed;
// banks once both seller and buyer have signed.
func VisibleTo(r *Registry, companyID id.ID) bool {
	switch {
	case r.SellerID == companyID:
		return true
	case r.BuyerID == companyID:
		return r.SignStatus != SignNotSigned || r.IsConfirmed
	case r.BankID != nil && *r.BankID == companyID:
		return r.SignStatus == SignSellerBuyer || r.SignStatus == SignAll
	}
	return false
}
