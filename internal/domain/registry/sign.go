package registry

import (
	"supplyfin/internal/core/apperror"
	appctx "supplyfin/internal/core/context"
)

// Party is the side a caller acts for on a particular registry.
type Party int

const (
	PartyNone Party = iota
	PartySeller
	PartyBuyer
	PartyBank
	PartyAdmin
)

func (p Party) String() string {
	switch p {
	case PartySeller:
		return "seller"
	case PartyBuyer:
		return "buyer"
	case PartyBank:
		return "bank"
	case PartyAdmin:
		return "admin"
	}
	return "none"
}

// PartyOf resolves which side session acts for on r.
func PartyOf(session *appctx.Session, r *Registry) Party {
	switch {
	case session.IsAdmin():
		return PartyAdmin
	case session.CompanyID == r.SellerID:
		return PartySeller
	case session.CompanyID == r.BuyerID:
		return PartyBuyer
	case r.BankID != nil && session.CompanyID == *r.BankID:
		return PartyBank
	}
	return PartyNone
}

// ReasonSignTransition is returned for a signature the current state does not accept.
const ReasonSignTransition = "registry-sign-status-transition-not-allowed"

// signTransitions lists, per party, the sign status reached from each state.
var signTransitions = map[Party]map[SignStatus]SignStatus{
	PartySeller: {
		SignNotSigned: SignSeller,
		SignBuyer:     SignSellerBuyer,
	},
	PartyBuyer: {
		SignNotSigned: SignBuyer,
		SignSeller:    SignSellerBuyer,
	},
	PartyBank: {
		SignSellerBuyer: SignAll,
	},
}

// NextSignStatus returns the status after party signs in state current.
// Banks sign only under finance types that involve them.
func NextSignStatus(current SignStatus, party Party, ft FinanceType) (SignStatus, error) {
	pol, err := ft.policy()
	if err != nil {
		return "", err
	}
	next, ok := signTransitions[party][current]
	if !ok || (party == PartyBank && !pol.bankSigns()) {
		return "", apperror.NewForbidden(ReasonSignTransition, "signature not allowed in the current state").
			WithDetail("signStatus", string(current)).
			WithDetail("party", party.String())
	}
	return next, nil
}

// HasSigned reports whether party has already advanced the sign status.
func HasSigned(current SignStatus, party Party) bool {
	switch party {
	case PartySeller:
		return current == SignSeller || current == SignSellerBuyer || current == SignAll
	case PartyBuyer:
		return current == SignBuyer || current == SignSellerBuyer || current == SignAll
	case PartyBank:
		return current == SignAll
	}
	return false
}
