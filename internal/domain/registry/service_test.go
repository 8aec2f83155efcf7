package registry_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyfin/internal/core/apperror"
	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/id"
	"supplyfin/internal/core/numerator"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/calendar"
	"supplyfin/internal/domain/company"
	"supplyfin/internal/domain/contract"
	"supplyfin/internal/domain/pricing"
	"supplyfin/internal/domain/registry"
	"supplyfin/internal/domain/supply"
	"supplyfin/internal/domain/tariff"
	"supplyfin/internal/infrastructure/storage/memory"
)

var today = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

type fixture struct {
	t         *testing.T
	store     *memory.Store
	svc       *registry.Service
	clock     time.Time
	seller    company.Company
	buyer     company.Company
	bank      company.Company
	contract  contract.Contract
	agreement company.FactoringAgreement
	seq       int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, store: memory.New(), clock: today}
	f.seller = company.Company{BaseEntity: entity.NewBaseEntity(today), TIN: "7701", Role: appctx.RoleSellerBuyer}
	f.buyer = company.Company{BaseEntity: entity.NewBaseEntity(today), TIN: "7702", Role: appctx.RoleSellerBuyer}
	f.bank = company.Company{BaseEntity: entity.NewBaseEntity(today), TIN: "7703", Role: appctx.RoleBank}
	for _, c := range []company.Company{f.seller, f.buyer, f.bank} {
		f.store.PutCompany(c)
	}
	f.contract = contract.Contract{
		BaseEntity:           entity.NewBaseEntity(today),
		SellerID:             f.seller.ID,
		BuyerID:              f.buyer.ID,
		Status:               contract.StatusActive,
		IsFactoring:          true,
		IsDynamicDiscounting: true,
	}
	f.store.PutContract(f.contract)
	f.agreement = f.addAgreement(f.bank.ID, "C-1")

	f.svc = f.service(f.store)
	return f
}

func (f *fixture) service(numbers numerator.Generator) *registry.Service {
	clock := func() time.Time { return f.clock }
	plans := calendar.NewService(f.store.FreeDays(), f.store.DiscountSettings(), f.store, calendar.NewPlanValidator(0)).
		WithClock(clock)
	return registry.NewService(registry.ServiceConfig{
		Registries: f.store.Registries(),
		Discounts:  f.store.Discounts(),
		Supplies:   f.store.Supplies(),
		Contracts:  f.store.Contracts(),
		Agreements: f.store.Agreements(),
		Pricer:     pricing.NewEngine(f.store.Tariffs(), plans),
		Numerator:  numbers,
		Signatures: f.store,
		TxManager:  f.store,
	}).WithClock(clock)
}

func (f *fixture) addAgreement(bankID id.ID, numbers ...string) company.FactoringAgreement {
	a := company.FactoringAgreement{
		BaseEntity:            entity.NewBaseEntity(today),
		CompanyID:             f.seller.ID,
		BankID:                bankID,
		Number:                "FA",
		IsActive:              true,
		SupplyContractNumbers: numbers,
	}
	f.store.PutAgreement(a)
	return a
}

func (f *fixture) as(c company.Company) context.Context {
	return appctx.WithSession(context.Background(), &appctx.Session{UserID: "u-" + c.TIN, CompanyID: c.ID, Role: c.Role})
}

func (f *fixture) supply(typ supply.DocumentType, amount string, base *supply.Supply) *supply.Supply {
	f.t.Helper()
	f.seq++
	s := &supply.Supply{
		BaseEntity:     entity.NewBaseEntity(today),
		Number:         fmt.Sprintf("%s-%d", typ, f.seq),
		Date:           types.AddDays(today, -3),
		Type:           typ,
		Amount:         types.MustMoney(amount),
		ContractID:     f.contract.ID,
		ContractNumber: "C-1",
		SellerID:       f.seller.ID,
		BuyerID:        f.buyer.ID,
		Status:         supply.StatusInProcess,
		AddedBySeller:  true,
		DelayEndDate:   types.AddDays(today, 40),
	}
	if base != nil {
		s.BaseDocumentID = id.Ptr(base.ID)
		s.BaseDocumentNumber = base.Number
		s.BaseDocumentType = base.Type
	}
	require.NoError(f.t, f.store.Supplies().Create(context.Background(), s))
	return s
}

func (f *fixture) flatTariff(rate string) {
	f.t.Helper()
	err := f.store.Tariffs().ReplaceForOwner(context.Background(), f.buyer.ID, []*tariff.Tariff{{
		BaseEntity: entity.NewBaseEntity(today),
		OwnerID:    f.buyer.ID,
		FromAmount: types.Zero(),
		Rate:       types.MustMoney(rate),
		Type:       tariff.TypeDiscounting,
	}})
	require.NoError(f.t, err)
}

func (f *fixture) stored(s *supply.Supply) *supply.Supply {
	f.t.Helper()
	got, err := f.store.Supplies().GetByID(context.Background(), s.ID)
	require.NoError(f.t, err)
	return got
}

func plan() *time.Time {
	p := types.AddDays(today, 10)
	return &p
}

func (f *fixture) createDD(supplies ...*supply.Supply) *registry.Registry {
	f.t.Helper()
	r, err := f.svc.Create(f.as(f.seller), registry.CreateRequest{
		SupplyIDs:          supply.IDs(supplies),
		FinanceType:        registry.FinanceDynamicDiscounting,
		PlannedPaymentDate: plan(),
	})
	require.NoError(f.t, err)
	return r
}

func (f *fixture) createSV(supplies ...*supply.Supply) *registry.Registry {
	f.t.Helper()
	r, err := f.svc.Create(f.as(f.seller), registry.CreateRequest{
		SupplyIDs:            supply.IDs(supplies),
		FinanceType:          registry.FinanceSupplyVerification,
		BankID:               id.Ptr(f.bank.ID),
		FactoringAgreementID: id.Ptr(f.agreement.ID),
	})
	require.NoError(f.t, err)
	return r
}

func (f *fixture) sign(c company.Company, r *registry.Registry) *registry.Registry {
	f.t.Helper()
	out, err := f.svc.Update(f.as(c), r.ID, registry.UpdateRequest{Sign: true})
	require.NoError(f.t, err)
	return out
}

// assertAmountInvariant checks Amount against the stored members.
func (f *fixture) assertAmountInvariant(registryID id.ID) {
	f.t.Helper()
	r, err := f.store.Registries().GetByID(context.Background(), registryID)
	require.NoError(f.t, err)
	members, err := f.store.Supplies().ListByRegistry(context.Background(), registryID)
	require.NoError(f.t, err)
	assert.True(f.t, registry.AmountOf(members).Equal(r.Amount), "amount %s, members sum %s", r.Amount, registry.AmountOf(members))
}

func assertMoney(t *testing.T, want string, got types.Money) {
	t.Helper()
	assert.True(t, types.MustMoney(want).Equal(got), "want %s, got %s", want, got)
}

func TestCreate_DynamicDiscountingIsPriced(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	act := f.supply(supply.TypeAct, "1000", nil)

	r := f.createDD(act)

	assert.Equal(t, "DD-2026-00001", r.Number)
	assert.Equal(t, registry.StatusInProcess, r.Status)
	assert.Equal(t, registry.SignNotSigned, r.SignStatus)
	assertMoney(t, "1000", r.Amount)
	require.NotNil(t, r.Discount)
	assertMoney(t, "50", r.Discount.DiscountedAmount)
	assertMoney(t, "950", r.Discount.AmountToPay)
	assertMoney(t, "5", r.Discount.Rate)
	require.Len(t, r.Discount.Allocations, 1)
	assert.Equal(t, act.ID, r.Discount.Allocations[0].SupplyID)

	member := f.stored(act)
	assert.Equal(t, supply.StatusInFinance, member.Status)
	assert.Equal(t, r.ID, *member.RegistryID)
	assert.Nil(t, member.BankID)
}

func TestCreate_SupplyVerificationNeedsCoveringAgreement(t *testing.T) {
	f := newFixture(t)
	act := f.supply(supply.TypeAct, "1000", nil)
	foreign := f.addAgreement(f.bank.ID, "C-9")

	for name, agreementID := range map[string]id.ID{
		"unknown agreement":      id.New(),
		"agreement not covering": foreign.ID,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(f.as(f.seller), registry.CreateRequest{
				SupplyIDs:            []id.ID{act.ID},
				FinanceType:          registry.FinanceSupplyVerification,
				BankID:               id.Ptr(f.bank.ID),
				FactoringAgreementID: id.Ptr(agreementID),
			})
			require.Error(t, err)
			assert.True(t, apperror.IsNotFound(err), "got %v", err)
		})
	}

	_, err := f.svc.Create(f.as(f.seller), registry.CreateRequest{
		SupplyIDs:   []id.ID{act.ID},
		FinanceType: registry.FinanceSupplyVerification,
	})
	assert.True(t, apperror.HasCode(err, registry.ReasonBankRequired))

	r := f.createSV(act)
	assert.Equal(t, "SV-2026-00001", r.Number)
	assert.Equal(t, f.bank.ID, *f.stored(act).BankID)
	assert.Nil(t, r.Discount)
}

func TestCreate_SupplyVerificationNeedsFactoringContract(t *testing.T) {
	f := newFixture(t)
	act := f.supply(supply.TypeAct, "1000", nil)
	f.contract.IsFactoring = false
	f.store.PutContract(f.contract)

	_, err := f.svc.Create(f.as(f.seller), registry.CreateRequest{
		SupplyIDs:            []id.ID{act.ID},
		FinanceType:          registry.FinanceSupplyVerification,
		BankID:               id.Ptr(f.bank.ID),
		FactoringAgreementID: id.Ptr(f.agreement.ID),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.True(t, apperror.HasCode(err, registry.ReasonContractNotFactoring))
	assert.Nil(t, f.stored(act).RegistryID)
}

func TestCreate_Rules(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	act := f.supply(supply.TypeAct, "1000", nil)
	other := f.supply(supply.TypeAct, "10", nil)
	other.ContractNumber = "C-2"
	require.NoError(t, f.store.Supplies().Update(context.Background(), other))
	correction := f.supply(supply.TypeCorrectionNote, "-10", act)

	tests := []struct {
		name    string
		ctx     context.Context
		req     registry.CreateRequest
		wantErr string
	}{
		{
			name:    "buyer cannot create",
			ctx:     f.as(f.buyer),
			req:     registry.CreateRequest{SupplyIDs: []id.ID{act.ID}, FinanceType: registry.FinanceDynamicDiscounting, PlannedPaymentDate: plan()},
			wantErr: registry.ReasonNotSeller,
		},
		{
			name:    "mixed contract numbers",
			ctx:     f.as(f.seller),
			req:     registry.CreateRequest{SupplyIDs: []id.ID{act.ID, other.ID}, FinanceType: registry.FinanceDynamicDiscounting, PlannedPaymentDate: plan()},
			wantErr: registry.ReasonSuppliesSpanContracts,
		},
		{
			name:    "base document left out",
			ctx:     f.as(f.seller),
			req:     registry.CreateRequest{SupplyIDs: []id.ID{correction.ID}, FinanceType: registry.FinanceDynamicDiscounting, PlannedPaymentDate: plan()},
			wantErr: registry.ReasonBaseNotIncluded,
		},
		{
			name: "bank on dynamic discounting",
			ctx:  f.as(f.seller),
			req: registry.CreateRequest{
				SupplyIDs: []id.ID{act.ID}, FinanceType: registry.FinanceDynamicDiscounting,
				PlannedPaymentDate: plan(), BankID: id.Ptr(f.bank.ID),
			},
			wantErr: registry.ReasonBankNotAllowed,
		},
		{
			name:    "planned date missing",
			ctx:     f.as(f.seller),
			req:     registry.CreateRequest{SupplyIDs: []id.ID{act.ID}, FinanceType: registry.FinanceDynamicDiscounting},
			wantErr: registry.ReasonPlannedDateRequired,
		},
		{
			name:    "unknown finance type",
			ctx:     f.as(f.seller),
			req:     registry.CreateRequest{SupplyIDs: []id.ID{act.ID}, FinanceType: "leasing"},
			wantErr: registry.ReasonFinanceTypeUnknown,
		},
		{
			name:    "no supplies",
			ctx:     f.as(f.seller),
			req:     registry.CreateRequest{FinanceType: registry.FinanceDynamicDiscounting, PlannedPaymentDate: plan()},
			wantErr: registry.ReasonSuppliesRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(tt.ctx, tt.req)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.wantErr), "got %v", err)
		})
	}

	assert.Nil(t, f.stored(act).RegistryID)
}

func TestCreate_SupplyCannotJoinTwoRegistries(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	act := f.supply(supply.TypeAct, "1000", nil)
	first := f.createDD(act)

	_, err := f.svc.Create(f.as(f.seller), registry.CreateRequest{
		SupplyIDs:            []id.ID{act.ID},
		FinanceType:          registry.FinanceSupplyVerification,
		BankID:               id.Ptr(f.bank.ID),
		FactoringAgreementID: id.Ptr(f.agreement.ID),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	assert.True(t, apperror.HasCode(err, registry.ReasonSupplyInRegistry))
	assert.Equal(t, first.ID, *f.stored(act).RegistryID)
}

func TestCreate_ExpiredSupplyRejected(t *testing.T) {
	f := newFixture(t)
	act := f.supply(supply.TypeAct, "1000", nil)
	f.clock = types.AddDays(today, 41)

	_, err := f.svc.Create(f.as(f.seller), registry.CreateRequest{
		SupplyIDs:            []id.ID{act.ID},
		FinanceType:          registry.FinanceSupplyVerification,
		BankID:               id.Ptr(f.bank.ID),
		FactoringAgreementID: id.Ptr(f.agreement.ID),
	})
	assert.True(t, apperror.HasCode(err, registry.ReasonSupplyExpired))
}

func TestCreate_PricingFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	act := f.supply(supply.TypeAct, "1000", nil)

	_, err := f.svc.Create(f.as(f.seller), registry.CreateRequest{
		SupplyIDs:          []id.ID{act.ID},
		FinanceType:        registry.FinanceDynamicDiscounting,
		PlannedPaymentDate: plan(),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, pricing.ReasonAmountBandNotFound))

	member := f.stored(act)
	assert.Nil(t, member.RegistryID)
	assert.Equal(t, supply.StatusInProcess, member.Status)

	list, err := f.svc.List(f.as(f.seller), registry.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	f.flatTariff("5")
	r := f.createDD(act)
	assert.Equal(t, "DD-2026-00001", r.Number)
}

func TestCreate_Numbering(t *testing.T) {
	f := newFixture(t)
	var seen []numerator.Config
	f.svc = f.service(&numerator.MockGenerator{})

	first := f.createSV(f.supply(supply.TypeAct, "10", nil))
	second := f.createSV(f.supply(supply.TypeAct, "20", nil))
	assert.Equal(t, "SV-2026-00001", first.Number)
	assert.Equal(t, "SV-2026-00002", second.Number)

	f.svc = f.service(&numerator.MockGenerator{
		GetNextNumberFunc: func(_ context.Context, cfg numerator.Config, _ time.Time) (string, error) {
			seen = append(seen, cfg)
			return "", fmt.Errorf("sequence unavailable")
		},
	})
	act := f.supply(supply.TypeAct, "30", nil)
	_, err := f.svc.Create(f.as(f.seller), registry.CreateRequest{
		SupplyIDs:            []id.ID{act.ID},
		FinanceType:          registry.FinanceSupplyVerification,
		BankID:               id.Ptr(f.bank.ID),
		FactoringAgreementID: id.Ptr(f.agreement.ID),
	})
	require.Error(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "SV", seen[0].Prefix)
	assert.Nil(t, f.stored(act).RegistryID)
}

func TestAmountExcludesInvoices(t *testing.T) {
	f := newFixture(t)
	act := f.supply(supply.TypeAct, "1000", nil)
	invoice := f.supply(supply.TypeInvoice, "1000", act)
	correction := f.supply(supply.TypeCorrectionNote, "-100", act)
	upd := f.supply(supply.TypeUPD, "250", nil)

	r := f.createSV(act, invoice, correction)
	assertMoney(t, "900", r.Amount)
	f.assertAmountInvariant(r.ID)

	r, err := f.svc.SetSupplies(f.as(f.seller), r.ID, []id.ID{act.ID, invoice.ID, upd.ID})
	require.NoError(t, err)
	assertMoney(t, "1250", r.Amount)
	f.assertAmountInvariant(r.ID)

	_, err = f.svc.SetSupplies(f.as(f.seller), r.ID, []id.ID{invoice.ID, upd.ID})
	assert.True(t, apperror.HasCode(err, registry.ReasonBaseNotIncluded))
	f.assertAmountInvariant(r.ID)
}

func TestSetSupplies_RemovingLastDynamicDiscountingSupply(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	act := f.supply(supply.TypeAct, "1000", nil)
	r := f.createDD(act)

	r, err := f.svc.SetSupplies(f.as(f.seller), r.ID, nil)
	require.NoError(t, err)

	assertMoney(t, "0", r.Amount)
	require.NotNil(t, r.Discount)
	assert.Empty(t, r.Discount.Allocations)
	assertMoney(t, "0", r.Discount.AmountToPay)

	stored, err := f.store.Discounts().Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Allocations)
	assertMoney(t, "0", stored.AmountToPay)

	member := f.stored(act)
	assert.Nil(t, member.RegistryID)
	assert.Equal(t, supply.StatusInProcess, member.Status)
	assert.Contains(t, f.store.RemovedSignatures(), memory.SignatureRef{SubjectType: registry.SignatureSubject, SubjectID: r.ID})
}

func TestSetSupplies_ResetsSignStatus(t *testing.T) {
	f := newFixture(t)
	a := f.supply(supply.TypeAct, "100", nil)
	b := f.supply(supply.TypeAct, "200", nil)
	r := f.createSV(a)
	r = f.sign(f.seller, r)
	require.Equal(t, registry.SignSeller, r.SignStatus)

	r, err := f.svc.SetSupplies(f.as(f.seller), r.ID, []id.ID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, registry.SignNotSigned, r.SignStatus)
	assertMoney(t, "300", r.Amount)
	assert.Equal(t, f.bank.ID, *f.stored(b).BankID)
	assert.Equal(t, supply.StatusInFinance, f.stored(b).Status)

	_, err = f.svc.SetSupplies(f.as(f.buyer), r.ID, []id.ID{a.ID})
	assert.True(t, apperror.HasCode(err, registry.ReasonNotSeller))
}

func TestSetSupplies_ReleasedExpiredSupplyIsNotAvailable(t *testing.T) {
	f := newFixture(t)
	short := f.supply(supply.TypeAct, "100", nil)
	short.DelayEndDate = types.AddDays(today, 5)
	require.NoError(t, f.store.Supplies().Update(context.Background(), short))
	long := f.supply(supply.TypeAct, "200", nil)

	r := f.createSV(short, long)
	f.clock = types.AddDays(today, 6)

	_, err := f.svc.SetSupplies(f.as(f.seller), r.ID, []id.ID{long.ID})
	require.NoError(t, err)

	released := f.stored(short)
	assert.Equal(t, supply.StatusNotAvailable, released.Status)
	assert.Nil(t, released.BankID)
	assert.Nil(t, released.FactoringAgreementID)
}

func TestSetSupplies_OnlyInProcess(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	act := f.supply(supply.TypeAct, "1000", nil)
	r := f.createDD(act)
	f.sign(f.seller, r)
	r = f.sign(f.buyer, r)
	require.Equal(t, registry.StatusFinished, r.Status)

	_, err := f.svc.SetSupplies(f.as(f.seller), r.ID, nil)
	assert.True(t, apperror.HasCode(err, registry.ReasonStatusNotInProcess))
}

func TestDecline_AfterSellerSigned(t *testing.T) {
	tests := []struct {
		name    string
		actor   func(f *fixture) company.Company
		wantErr string
	}{
		{name: "seller", actor: func(f *fixture) company.Company { return f.seller }, wantErr: registry.ReasonAlreadySigned},
		{name: "buyer", actor: func(f *fixture) company.Company { return f.buyer }},
		{name: "bank", actor: func(f *fixture) company.Company { return f.bank }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			act := f.supply(supply.TypeAct, "1000", nil)
			r := f.sign(f.seller, f.createSV(act))
			require.Equal(t, registry.SignSeller, r.SignStatus)

			declined, err := f.svc.Decline(f.as(tt.actor(f)), r.ID)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperror.IsForbidden(err))
				assert.True(t, apperror.HasCode(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registry.StatusDeclined, declined.Status)
			assert.Equal(t, registry.SignNotSigned, declined.SignStatus)
			assert.Nil(t, f.stored(act).RegistryID)
			assert.Equal(t, supply.StatusInProcess, f.stored(act).Status)
			f.assertAmountInvariant(r.ID)

			_, err = f.svc.Decline(f.as(f.buyer), r.ID)
			assert.True(t, apperror.HasCode(err, registry.ReasonAlreadyDeclined))
		})
	}
}

func TestDecline_FinishedRegistry(t *testing.T) {
	f := newFixture(t)
	act := f.supply(supply.TypeAct, "1000", nil)
	r := f.createSV(act)
	f.sign(f.seller, r)
	f.sign(f.buyer, r)
	r = f.sign(f.bank, r)
	require.Equal(t, registry.StatusFinished, r.Status)

	_, err := f.svc.Decline(f.as(f.seller), r.ID)
	assert.True(t, apperror.HasCode(err, registry.ReasonStatusFinished))
}

func TestDecline_OutsiderGetsNotFound(t *testing.T) {
	f := newFixture(t)
	r := f.createSV(f.supply(supply.TypeAct, "1000", nil))
	outsider := company.Company{BaseEntity: entity.NewBaseEntity(today), TIN: "7709", Role: appctx.RoleSellerBuyer}

	_, err := f.svc.Decline(f.as(outsider), r.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	act := f.supply(supply.TypeAct, "1000", nil)
	r := f.createDD(act)

	confirmed := true
	_, err := f.svc.Update(f.as(f.buyer), r.ID, registry.UpdateRequest{IsConfirmed: &confirmed})
	require.NoError(t, err)
	assert.True(t, apperror.HasCode(f.svc.Remove(f.as(f.seller), r.ID), registry.ReasonConfirmedOrVerified))

	confirmed = false
	_, err = f.svc.Update(f.as(f.buyer), r.ID, registry.UpdateRequest{IsConfirmed: &confirmed})
	require.NoError(t, err)
	require.NoError(t, f.svc.Remove(f.as(f.seller), r.ID))

	_, err = f.store.Registries().GetByID(context.Background(), r.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = f.store.Discounts().Get(context.Background(), r.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Nil(t, f.stored(act).RegistryID)
	assert.Equal(t, supply.StatusInProcess, f.stored(act).Status)
}

func TestUpdate_SignWorkflow(t *testing.T) {
	t.Run("supply verification finishes after bank", func(t *testing.T) {
		f := newFixture(t)
		r := f.createSV(f.supply(supply.TypeAct, "1000", nil))

		r = f.sign(f.buyer, r)
		assert.Equal(t, registry.SignBuyer, r.SignStatus)
		r = f.sign(f.seller, r)
		assert.Equal(t, registry.SignSellerBuyer, r.SignStatus)
		assert.Equal(t, registry.StatusInProcess, r.Status)

		verified := true
		_, err := f.svc.Update(f.as(f.seller), r.ID, registry.UpdateRequest{IsVerified: &verified})
		assert.True(t, apperror.HasCode(err, registry.ReasonVerifyByBankOnly))

		r, err = f.svc.Update(f.as(f.bank), r.ID, registry.UpdateRequest{IsVerified: &verified, Sign: true})
		require.NoError(t, err)
		assert.True(t, r.IsVerified)
		assert.Equal(t, registry.SignAll, r.SignStatus)
		assert.Equal(t, registry.StatusFinished, r.Status)
	})

	t.Run("dynamic discounting finishes after both parties", func(t *testing.T) {
		f := newFixture(t)
		f.flatTariff("5")
		r := f.createDD(f.supply(supply.TypeAct, "1000", nil))

		r = f.sign(f.seller, r)
		_, err := f.svc.Update(f.as(f.seller), r.ID, registry.UpdateRequest{Sign: true})
		assert.True(t, apperror.HasCode(err, registry.ReasonSignTransition))

		verified := true
		_, err = f.svc.Update(f.as(f.buyer), r.ID, registry.UpdateRequest{IsVerified: &verified})
		assert.True(t, apperror.HasCode(err, registry.ReasonVerificationNotApplicable))

		r = f.sign(f.buyer, r)
		assert.Equal(t, registry.SignSellerBuyer, r.SignStatus)
		assert.Equal(t, registry.StatusFinished, r.Status)
	})
}

func TestUpdate_BankChange(t *testing.T) {
	f := newFixture(t)
	act := f.supply(supply.TypeAct, "1000", nil)
	r := f.createSV(act)
	other := company.Company{BaseEntity: entity.NewBaseEntity(today), TIN: "7704", Role: appctx.RoleBank}
	f.store.PutCompany(other)

	_, err := f.svc.Update(f.as(f.seller), r.ID, registry.UpdateRequest{BankID: id.Ptr(other.ID)})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Update(f.as(f.buyer), r.ID, registry.UpdateRequest{BankID: id.Ptr(other.ID)})
	assert.True(t, apperror.HasCode(err, registry.ReasonBankChangeBySellerOnly))

	agreement := f.addAgreement(other.ID, "C-1")
	r, err = f.svc.Update(f.as(f.seller), r.ID, registry.UpdateRequest{BankID: id.Ptr(other.ID)})
	require.NoError(t, err)
	assert.Equal(t, other.ID, *r.BankID)
	assert.Equal(t, agreement.ID, *r.FactoringAgreementID)
	assert.Equal(t, other.ID, *f.stored(act).BankID)
}

func TestListAndGet_Visibility(t *testing.T) {
	f := newFixture(t)
	r := f.createSV(f.supply(supply.TypeAct, "1000", nil))

	count := func(c company.Company) int {
		list, err := f.svc.List(f.as(c), registry.ListFilter{})
		require.NoError(t, err)
		return len(list.Items)
	}

	assert.Equal(t, 1, count(f.seller))
	assert.Zero(t, count(f.buyer))
	assert.Zero(t, count(f.bank))
	_, err := f.svc.Get(f.as(f.buyer), r.ID)
	assert.True(t, apperror.IsNotFound(err))

	r = f.sign(f.seller, r)
	assert.Equal(t, 1, count(f.buyer))
	assert.Zero(t, count(f.bank))

	f.sign(f.buyer, r)
	assert.Equal(t, 1, count(f.bank))
	got, err := f.svc.Get(f.as(f.bank), r.ID)
	require.NoError(t, err)
	assert.Len(t, got.Supplies, 1)
}

func TestUpdateDiscount(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	act := f.supply(supply.TypeAct, "1000", nil)
	correction := f.supply(supply.TypeCorrectionNote, "-100", act)
	r := f.createDD(act, correction)
	assertMoney(t, "900", r.Amount)
	assertMoney(t, "50", r.Discount.DiscountedAmount)
	assertMoney(t, "850", r.Discount.AmountToPay)

	manual := []pricing.Allocation{{SupplyID: act.ID, Rate: types.MustMoney("7"), DiscountedAmount: types.MustMoney("70")}}
	d, err := f.svc.UpdateDiscount(f.as(f.buyer), r.ID, *plan(), manual)
	require.NoError(t, err)
	assert.True(t, d.HasChanged)
	assertMoney(t, "830", d.AmountToPay)

	_, err = f.svc.UpdateDiscount(f.as(f.buyer), r.ID, *plan(),
		[]pricing.Allocation{{SupplyID: correction.ID, DiscountedAmount: types.MustMoney("1")}})
	assert.True(t, apperror.HasCode(err, registry.ReasonAllocationNotMember))

	_, err = f.svc.UpdateDiscount(f.as(f.buyer), r.ID, types.AddDays(today, 60), manual)
	assert.True(t, apperror.HasCode(err, calendar.ReasonAfterDelayEndDate))

	d, err = f.svc.UpdateDiscount(f.as(f.seller), r.ID, *plan(), nil)
	require.NoError(t, err)
	assert.False(t, d.HasChanged)
	assertMoney(t, "850", d.AmountToPay)

	sv := f.createSV(f.supply(supply.TypeAct, "10", nil))
	_, err = f.svc.UpdateDiscount(f.as(f.seller), sv.ID, *plan(), nil)
	assert.True(t, apperror.HasCode(err, registry.ReasonFinanceTypeMismatch))
}

func TestUpdateDiscount_RejectsInvalidAllocations(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	act := f.supply(supply.TypeAct, "1000", nil)
	r := f.createDD(act)

	alloc := func(amount string) pricing.Allocation {
		return pricing.Allocation{SupplyID: act.ID, Rate: types.MustMoney("7"), DiscountedAmount: types.MustMoney(amount)}
	}
	tests := []struct {
		name        string
		allocations []pricing.Allocation
		reason      string
	}{
		{"duplicate supply", []pricing.Allocation{alloc("70"), alloc("70")}, registry.ReasonAllocationDuplicate},
		{"above supply amount", []pricing.Allocation{alloc("2000")}, registry.ReasonAllocationOutOfRange},
		{"negative", []pricing.Allocation{alloc("-1")}, registry.ReasonAllocationOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateDiscount(f.as(f.buyer), r.ID, *plan(), tt.allocations)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.True(t, apperror.HasCode(err, tt.reason))
		})
	}

	// the whole supply amount is an allowed upper bound
	d, err := f.svc.UpdateDiscount(f.as(f.buyer), r.ID, *plan(), []pricing.Allocation{alloc("1000")})
	require.NoError(t, err)
	assertMoney(t, "0", d.AmountToPay)
}

func TestUpdateDiscount_AllocationsBoundedByRegistryAmount(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	act := f.supply(supply.TypeAct, "1000", nil)
	r := f.createDD(act, f.supply(supply.TypeCorrectionNote, "-100", act))

	_, err := f.svc.UpdateDiscount(f.as(f.buyer), r.ID, *plan(),
		[]pricing.Allocation{{SupplyID: act.ID, DiscountedAmount: types.MustMoney("950")}})
	assert.True(t, apperror.HasCode(err, registry.ReasonAllocationOutOfRange))

	d, err := f.svc.UpdateDiscount(f.as(f.buyer), r.ID, *plan(),
		[]pricing.Allocation{{SupplyID: act.ID, DiscountedAmount: types.MustMoney("900")}})
	require.NoError(t, err)
	assertMoney(t, "0", d.AmountToPay)
}

func TestUpdateDiscount_SignedRegistryResetsSignatures(t *testing.T) {
	f := newFixture(t)
	f.flatTariff("5")
	r := f.createDD(f.supply(supply.TypeAct, "1000", nil))
	f.sign(f.seller, r)

	_, err := f.svc.UpdateDiscount(f.as(f.buyer), r.ID, *plan(), nil)
	require.NoError(t, err)

	got, err := f.svc.Get(f.as(f.seller), r.ID)
	require.NoError(t, err)
	assert.Equal(t, registry.SignNotSigned, got.SignStatus)
}
