package projects

import (
	"context"
	"testing"

	"launchpad-backend/internal/chain"
	"launchpad-backend/internal/custody"
	"launchpad-backend/internal/events"
	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/identity"
	"launchpad-backend/internal/models"
	"launchpad-backend/internal/oracle"
	"launchpad-backend/internal/rounds"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProjectTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Project{}, &models.ProjectDetails{}, &models.Evaluation{},
		&models.Bid{}, &models.Contribution{}, &models.Balance{},
		&models.Identity{}, &models.ProjectEvent{}, &models.ChainState{},
	))
	svc := &Service{
		DB:      db,
		Clock:   &chain.Clock{DB: db},
		Custody: &custody.Service{DB: db},
		Oracle: &oracle.StaticProvider{Prices: map[string]decimal.Decimal{
			models.AssetPLMC: decimal.NewFromFloat(0.5),
		}},
		Events:   &events.Sink{DB: db},
		Identity: &identity.Resolver{DB: db},
	}
	require.NoError(t, svc.Identity.Register(db, "issuer", "did:issuer", models.InvestorInstitutional))
	return svc, db
}

func issuerParams() CreateProjectParams {
	return CreateProjectParams{
		TokenName:              "Contribution Token",
		TokenSymbol:            "CT",
		MinimumPriceUSD:        decimal.NewFromInt(1),
		TotalAllocation:        decimal.NewFromInt(100_000),
		AuctionAllocationPct:   50,
		FundingTargetUSD:       decimal.NewFromInt(100_000),
		TicketMinRetail:        decimal.NewFromInt(100),
		TicketMinProfessional:  decimal.NewFromInt(1_000),
		TicketMinInstitutional: decimal.NewFromInt(10_000),
		AcceptedAssets:         []string{models.AssetUSDT, models.AssetDOT},
		Policy:                 "participation policy v1",
		IssuerAccount:          "issuer",
	}
}

func TestCreateProject(t *testing.T) {
	svc, db := setupProjectTest(t)

	project, err := svc.CreateProject(context.Background(), issuerParams())
	require.NoError(t, err)
	assert.Equal(t, "did:issuer", project.IssuerDID)
	assert.Equal(t, 10, project.TokenDecimals)
	assert.Equal(t, identity.PolicyHash([]byte("participation policy v1")), project.PolicyHash)
	assert.Equal(t, 16, project.MaxParticipationsPerUser)

	details, err := funding.LoadDetails(db, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusApplication, details.Status)

	var created int64
	require.NoError(t, db.Model(&models.ProjectEvent{}).
		Where("project_id = ? AND event_type = ?", project.ID, models.EventProjectCreated).
		Count(&created).Error)
	assert.Equal(t, int64(1), created)
}

func TestCreateProject_RejectsBadMetadata(t *testing.T) {
	svc, _ := setupProjectTest(t)
	ctx := context.Background()

	params := issuerParams()
	params.TokenSymbol = ""
	_, err := svc.CreateProject(ctx, params)
	assert.Equal(t, ErrInvalidMetadata, err)

	params = issuerParams()
	params.AuctionAllocationPct = 120
	_, err = svc.CreateProject(ctx, params)
	assert.Equal(t, ErrInvalidMetadata, err)

	params = issuerParams()
	params.AcceptedAssets = nil
	_, err = svc.CreateProject(ctx, params)
	assert.Equal(t, ErrInvalidMetadata, err)
}

func TestCreateProject_UnknownIssuer(t *testing.T) {
	svc, _ := setupProjectTest(t)
	params := issuerParams()
	params.IssuerAccount = "stranger"
	_, err := svc.CreateProject(context.Background(), params)
	assert.Equal(t, identity.ErrIdentityNotFound, err)
}

func TestStartEvaluation(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()
	project, err := svc.CreateProject(ctx, issuerParams())
	require.NoError(t, err)

	assert.Equal(t, funding.ErrNotIssuer, svc.StartEvaluation(ctx, project.ID, "stranger"))

	require.NoError(t, svc.StartEvaluation(ctx, project.ID, "issuer"))
	details, err := funding.LoadDetails(db, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusEvaluationRound, details.Status)
	assert.Equal(t, rounds.EvaluationDuration, details.RoundEnd-details.RoundStart)

	// Already past Application.
	assert.Equal(t, funding.ErrIncorrectRound, svc.StartEvaluation(ctx, project.ID, "issuer"))
}

func TestBond_HoldsAndAccrues(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()
	project, err := svc.CreateProject(ctx, issuerParams())
	require.NoError(t, err)
	require.NoError(t, svc.StartEvaluation(ctx, project.ID, "issuer"))
	require.NoError(t, svc.Identity.Register(db, "eve", "did:eve", models.InvestorProfessional))
	require.NoError(t, svc.Custody.Deposit(db, "eve", models.AssetPLMC, decimal.NewFromInt(50_000)))

	evaluation, err := svc.Bond(ctx, project.ID, "eve", decimal.NewFromInt(5_000))
	require.NoError(t, err)
	// 5000 USD at 0.5 USD per PLMC locks 10000 PLMC.
	assert.True(t, evaluation.PlmcBond.Equal(decimal.NewFromInt(10_000)))

	evaluation, err = svc.Bond(ctx, project.ID, "eve", decimal.NewFromInt(1_000))
	require.NoError(t, err)
	assert.True(t, evaluation.BondUSD.Equal(decimal.NewFromInt(6_000)))
	assert.True(t, evaluation.PlmcBond.Equal(decimal.NewFromInt(12_000)))

	var count int64
	require.NoError(t, db.Model(&models.Evaluation{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	details, err := funding.LoadDetails(db, project.ID)
	require.NoError(t, err)
	assert.True(t, details.EvaluationBondedUSD.Equal(decimal.NewFromInt(6_000)))

	var balance models.Balance
	require.NoError(t, db.Where("account = ? AND asset = ?", "eve", models.AssetPLMC).First(&balance).Error)
	assert.True(t, balance.Held.Equal(decimal.NewFromInt(12_000)))
}

func TestBond_Gates(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()
	project, err := svc.CreateProject(ctx, issuerParams())
	require.NoError(t, err)

	_, err = svc.Bond(ctx, project.ID, "eve", decimal.NewFromInt(100))
	assert.Equal(t, funding.ErrEvaluationNotStarted, err)

	require.NoError(t, svc.StartEvaluation(ctx, project.ID, "issuer"))
	_, err = svc.Bond(ctx, project.ID, "eve", decimal.Zero)
	assert.Equal(t, ErrZeroBond, err)

	require.NoError(t, svc.Clock.SetHeight(db, rounds.EvaluationDuration))
	_, err = svc.Bond(ctx, project.ID, "eve", decimal.NewFromInt(100))
	assert.Equal(t, funding.ErrTooLateForRound, err)
}

func TestStartAuction(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()
	project, err := svc.CreateProject(ctx, issuerParams())
	require.NoError(t, err)

	assert.Equal(t, funding.ErrIncorrectRound, svc.StartAuction(ctx, project.ID, "issuer"))

	require.NoError(t, db.Model(&models.ProjectDetails{}).Where("project_id = ?", project.ID).
		Update("status", models.ProjectStatusEvaluationEnded).Error)
	require.NoError(t, svc.Clock.SetHeight(db, 100))

	assert.Equal(t, funding.ErrNotIssuer, svc.StartAuction(ctx, project.ID, "stranger"))
	require.NoError(t, svc.StartAuction(ctx, project.ID, "issuer"))

	details, err := funding.LoadDetails(db, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusAuctionEnglish, details.Status)
	assert.Equal(t, int64(100+rounds.AuctionEnglishDuration), details.EnglishEnd)
	assert.Equal(t, int64(100+rounds.AuctionEnglishDuration+rounds.AuctionCandleDuration), details.RoundEnd)
}

func TestBondedPerAccount_AggregatesAcrossKinds(t *testing.T) {
	svc, db := setupProjectTest(t)
	ctx := context.Background()
	project, err := svc.CreateProject(ctx, issuerParams())
	require.NoError(t, err)
	require.NoError(t, svc.StartEvaluation(ctx, project.ID, "issuer"))
	require.NoError(t, svc.Identity.Register(db, "eve", "did:eve", models.InvestorProfessional))
	require.NoError(t, svc.Custody.Deposit(db, "eve", models.AssetPLMC, decimal.NewFromInt(50_000)))
	_, err = svc.Bond(ctx, project.ID, "eve", decimal.NewFromInt(1_000))
	require.NoError(t, err)

	// Escrow from later rounds folds into the same per-account totals. A
	// refunded bid no longer counts.
	require.NoError(t, db.Create(&models.Bid{
		ProjectID: project.ID, BidID: 0, Bidder: "eve", DID: "did:eve",
		TokenAmount: decimal.NewFromInt(100), PriceUSD: decimal.NewFromInt(1),
		FundingAsset: models.AssetUSDT, FundingAssetAmount: decimal.NewFromInt(100),
		Multiplier: 1, PlmcBond: decimal.NewFromInt(200), Status: models.BidStatusAccepted,
	}).Error)
	require.NoError(t, db.Create(&models.Bid{
		ProjectID: project.ID, BidID: 1, Bidder: "mallory", DID: "did:mallory",
		TokenAmount: decimal.NewFromInt(100), PriceUSD: decimal.NewFromInt(1),
		FundingAsset: models.AssetUSDT, FundingAssetAmount: decimal.Zero,
		Multiplier: 1, PlmcBond: decimal.Zero, Status: models.BidStatusRefunded,
	}).Error)
	require.NoError(t, db.Create(&models.Contribution{
		ProjectID: project.ID, ContributionID: 0, Contributor: "carol", DID: "did:carol",
		TokenAmount: decimal.NewFromInt(50), UsdAmount: decimal.NewFromInt(50),
		Multiplier: 1, FundingAsset: models.AssetUSDT,
		FundingAssetAmount: decimal.NewFromInt(50), PlmcBond: decimal.NewFromInt(75),
	}).Error)

	entries, err := svc.BondedPerAccount(ctx, project.ID)
	require.NoError(t, err)

	totals := make(map[string]decimal.Decimal, len(entries))
	for _, entry := range entries {
		assert.Equal(t, models.AssetPLMC, entry.Asset)
		totals[entry.Account] = entry.Amount
	}
	require.Len(t, totals, 2)
	assert.True(t, totals["eve"].Equal(decimal.NewFromInt(2_200))) // 2000 bond + 200 bid
	assert.True(t, totals["carol"].Equal(decimal.NewFromInt(75)))
}
