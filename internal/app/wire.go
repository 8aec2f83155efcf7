// Package app assembles repositories and domain services.
package app

import (
	"supplyfin/internal/core/numerator"
	"supplyfin/internal/core/tx"
	"supplyfin/internal/domain/calendar"
	"supplyfin/internal/domain/company"
	"supplyfin/internal/domain/contract"
	"supplyfin/internal/domain/pricing"
	"supplyfin/internal/domain/registry"
	"supplyfin/internal/domain/supply"
	"supplyfin/internal/domain/tariff"
	infranumerator "supplyfin/internal/infrastructure/numerator"
	"supplyfin/internal/infrastructure/storage/memory"
	"supplyfin/internal/infrastructure/storage/postgres"
	"supplyfin/internal/infrastructure/storage/postgres/finance_repo"
)

// Repositories is the storage backend of the services.
type Repositories struct {
	Companies  company.Repository
	Agreements company.AgreementRepository
	Contracts  contract.Repository
	Supplies   supply.Repository
	Registries registry.Repository
	Discounts  registry.DiscountRepository
	Tariffs    tariff.Repository
	FreeDays   calendar.FreeDayRepository
	Settings   calendar.SettingsRepository
	Numerator  numerator.Generator
	Signatures registry.SignatureRemover
	TxManager  tx.Manager
}

// MemoryRepositories serves everything from one in-process store.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Companies:  store.Companies(),
		Agreements: store.Agreements(),
		Contracts:  store.Contracts(),
		Supplies:   store.Supplies(),
		Registries: store.Registries(),
		Discounts:  store.Discounts(),
		Tariffs:    store.Tariffs(),
		FreeDays:   store.FreeDays(),
		Settings:   store.DiscountSettings(),
		Numerator:  store,
		Signatures: store,
		TxManager:  store,
	}
}

// PostgresRepositories serves everything from PostgreSQL through txm.
func PostgresRepositories(txm *postgres.TxManager) Repositories {
	companies := finance_repo.NewCompanyRepo(txm)
	return Repositories{
		Companies:  companies,
		Agreements: finance_repo.NewAgreementRepo(txm),
		Contracts:  finance_repo.NewContractRepo(txm, companies),
		Supplies:   finance_repo.NewSupplyRepo(txm),
		Registries: finance_repo.NewRegistryRepo(txm),
		Discounts:  finance_repo.NewDiscountRepo(txm),
		Tariffs:    finance_repo.NewTariffRepo(txm),
		FreeDays:   finance_repo.NewFreeDayRepo(txm),
		Settings:   finance_repo.NewSettingsRepo(txm),
		Numerator:  infranumerator.New(txm),
		Signatures: finance_repo.NewSignatureRepo(txm),
		TxManager:  txm,
	}
}

// Services are the domain services exposed over HTTP and run by the worker.
type Services struct {
	Supplies   *supply.Service
	Registries *registry.Service
	Tariffs    *tariff.Service
	Calendar   *calendar.Service
}

// NewServices wires the services over repos. horizon bounds the planned
// payment date search; zero uses the default.
func NewServices(repos Repositories, horizon int) *Services {
	cal := calendar.NewService(repos.FreeDays, repos.Settings, repos.TxManager, calendar.NewPlanValidator(horizon))
	return &Services{
		Supplies: supply.NewService(repos.Supplies, repos.Contracts, repos.Companies, repos.Agreements, repos.TxManager),
		Registries: registry.NewService(registry.ServiceConfig{
			Registries: repos.Registries,
			Discounts:  repos.Discounts,
			Supplies:   repos.Supplies,
			Contracts:  repos.Contracts,
			Agreements: repos.Agreements,
			Pricer:     pricing.NewEngine(repos.Tariffs, cal),
			Numerator:  repos.Numerator,
			Signatures: repos.Signatures,
			TxManager:  repos.TxManager,
		}),
		Tariffs:  tariff.NewService(repos.Tariffs, repos.TxManager),
		Calendar: cal,
	}
}
