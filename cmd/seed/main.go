// Package main seeds a database with a demo seller, buyer and bank.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/entity"
	"supplyfin/internal/core/types"
	"supplyfin/internal/domain/auth"
	"supplyfin/internal/domain/calendar"
	"supplyfin/internal/domain/company"
	"supplyfin/internal/domain/tariff"
	"supplyfin/internal/infrastructure/config"
	"supplyfin/internal/infrastructure/storage/postgres"
	"supplyfin/internal/infrastructure/storage/postgres/finance_repo"
	"supplyfin/pkg/logger"
)

// Demo tax identifiers.
const (
	sellerTIN = "7700000001"
	buyerTIN  = "7700000002"
	bankTIN   = "7700000003"

	demoContractNumber = "SUP-2024-001"
)

type seeder struct {
	txm        *postgres.TxManager
	companies  *finance_repo.CompanyRepo
	agreements *finance_repo.AgreementRepo
	contracts  *finance_repo.ContractRepo
	tariffs    *finance_repo.TariffRepo
	settings   *finance_repo.SettingsRepo
	log        *logger.Logger
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	companies := finance_repo.NewCompanyRepo(txm)
	s := &seeder{
		txm:        txm,
		companies:  companies,
		agreements: finance_repo.NewAgreementRepo(txm),
		contracts:  finance_repo.NewContractRepo(txm, companies),
		tariffs:    finance_repo.NewTariffRepo(txm),
		settings:   finance_repo.NewSettingsRepo(txm),
		log:        log,
	}

	var parties []*company.Company
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		parties, err = s.seed(ctx)
		return err
	})
	if err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	if os.Getenv("SEED_PRINT_TOKENS") == "true" {
		printTokens(cfg, parties, log)
	}

	log.Info("seeding completed successfully")
}

func (s *seeder) seed(ctx context.Context) ([]*company.Company, error) {
	now := time.Now()

	seller, err := s.company(ctx, company.Company{TIN: sellerTIN, Name: "Demo Seller LLC", Role: appctx.RoleSellerBuyer}, now)
	if err != nil {
		return nil, err
	}
	buyer, err := s.company(ctx, company.Company{TIN: buyerTIN, Name: "Demo Buyer LLC", Role: appctx.RoleSellerBuyer}, now)
	if err != nil {
		return nil, err
	}
	bank, err := s.company(ctx, company.Company{TIN: bankTIN, Name: "Demo Bank", Role: appctx.RoleBank}, now)
	if err != nil {
		return nil, err
	}

	ctr, err := s.contracts.FindOrCreate(ctx, sellerTIN, buyerTIN)
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	ctr.IsFactoring = true
	ctr.IsDynamicDiscounting = true
	ctr.Touch(now)
	if err := s.contracts.Save(ctx, ctr); err != nil {
		return nil, fmt.Errorf("save contract: %w", err)
	}
	s.log.Infow("contract ready", "contract_id", ctr.ID)

	if err := s.agreement(ctx, seller, bank, now); err != nil {
		return nil, err
	}

	// Flat 3% up to 30 days, 5% beyond, for any amount.
	until30 := 30
	bands := []*tariff.Tariff{
		{FromAmount: types.Zero(), FromDay: 0, UntilDay: &until30, Rate: types.MustMoney("3"), Type: tariff.TypeDiscounting},
		{FromAmount: types.Zero(), FromDay: 31, Rate: types.MustMoney("5"), Type: tariff.TypeDiscounting},
	}
	for _, b := range bands {
		b.BaseEntity = entity.NewBaseEntity(now)
		b.OwnerID = buyer.ID
		b.UserID = "seed"
	}
	if err := tariff.ValidateBands(bands); err != nil {
		return nil, fmt.Errorf("demo tariffs: %w", err)
	}
	if err := s.tariffs.ReplaceForOwner(ctx, buyer.ID, bands); err != nil {
		return nil, fmt.Errorf("save tariffs: %w", err)
	}

	settings := &calendar.DiscountSettings{
		CompanyID:          buyer.ID,
		PaymentWeekDays:    calendar.Tuesday | calendar.Thursday,
		DaysType:           calendar.DaysTypeWorking,
		MinimumDaysToShift: 2,
		UpdateDate:         now.UTC(),
	}
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("save discount settings: %w", err)
	}

	return []*company.Company{seller, buyer, bank}, nil
}

// company upserts c by TIN and returns the stored row.
func (s *seeder) company(ctx context.Context, c company.Company, now time.Time) (*company.Company, error) {
	c.BaseEntity = entity.NewBaseEntity(now)
	if err := s.companies.Save(ctx, &c); err != nil {
		return nil, fmt.Errorf("save company %s: %w", c.TIN, err)
	}
	stored, err := s.companies.GetByTIN(ctx, c.TIN)
	if err != nil {
		return nil, err
	}
	s.log.Infow("company ready", "tin", stored.TIN, "company_id", stored.ID, "role", string(stored.Role))
	return stored, nil
}

func (s *seeder) agreement(ctx context.Context, seller, bank *company.Company, now time.Time) error {
	active, err := s.agreements.ListActive(ctx, seller.ID)
	if err != nil {
		return err
	}
	bankID := bank.ID
	if existing := company.FindCovering(active, demoContractNumber, &bankID); existing != nil {
		s.log.Infow("factoring agreement already exists", "agreement_id", existing.ID)
		return nil
	}

	a := &company.FactoringAgreement{
		BaseEntity:            entity.NewBaseEntity(now),
		CompanyID:             seller.ID,
		BankID:                bank.ID,
		Number:                "FA-001",
		IsActive:              true,
		SupplyContractNumbers: []string{demoContractNumber},
	}
	if err := s.agreements.Save(ctx, a); err != nil {
		return fmt.Errorf("save factoring agreement: %w", err)
	}
	s.log.Infow("factoring agreement created", "agreement_id", a.ID)
	return nil
}

func printTokens(cfg *config.Config, parties []*company.Company, log *logger.Logger) {
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer
	jwtConfig.AccessTokenTTL = 24 * time.Hour
	jwt := auth.NewJWTService(jwtConfig)

	for _, c := range parties {
		token, _, err := jwt.GenerateAccessToken(appctx.Session{UserID: "demo-" + c.TIN, CompanyID: c.ID, Role: c.Role})
		if err != nil {
			log.Warnw("failed to issue token", "tin", c.TIN, "error", err)
			continue
		}
		fmt.Printf("%s (%s): %s\n", c.Name, c.Role, token)
	}
}
