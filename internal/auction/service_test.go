package auction

import (
	"context"
	"encoding/json"
	"testing"

	"launchpad-backend/internal/chain"
	"launchpad-backend/internal/collateral"
	"launchpad-backend/internal/custody"
	"launchpad-backend/internal/events"
	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/identity"
	"launchpad-backend/internal/models"
	"launchpad-backend/internal/oracle"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testPolicy = "participation policy v1"

func setupAuctionTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Project{}, &models.ProjectDetails{}, &models.Bid{},
		&models.Balance{}, &models.Identity{}, &models.DidWinningBid{},
		&models.DidUsdTotal{}, &models.ProjectEvent{}, &models.ChainState{},
	))
	svc := &Service{
		DB:      db,
		Clock:   &chain.Clock{DB: db},
		Custody: &custody.Service{DB: db},
		Oracle: &oracle.StaticProvider{Prices: map[string]decimal.Decimal{
			models.AssetPLMC: decimal.NewFromInt(1),
			models.AssetUSDT: decimal.NewFromInt(1),
			models.AssetDOT:  decimal.NewFromInt(5),
		}},
		Events:   &events.Sink{DB: db},
		Identity: &identity.Resolver{DB: db},
	}
	return svc, db
}

// seedAuctionProject creates a project in the English sub-phase with a
// 100k allocation, half of it auctioned, and registers three retail bidders
// with funded balances.
func seedAuctionProject(t *testing.T, svc *Service, db *gorm.DB) *models.Project {
	t.Helper()
	assets, _ := json.Marshal([]string{models.AssetUSDT, models.AssetDOT})
	project := models.Project{
		TokenName:                "Contribution Token",
		TokenSymbol:              "CT",
		TokenDecimals:            10,
		MinimumPriceUSD:          decimal.NewFromInt(1),
		TotalAllocation:          decimal.NewFromInt(100_000),
		AuctionAllocationPct:     50,
		FundingTargetUSD:         decimal.NewFromInt(100_000),
		TicketMinRetail:          decimal.NewFromInt(100),
		TicketMinProfessional:    decimal.NewFromInt(1_000),
		TicketMinInstitutional:   decimal.NewFromInt(10_000),
		MaxParticipationsPerUser: 16,
		AcceptedAssets:           datatypes.JSON(assets),
		IssuerAccount:            "issuer",
		IssuerDID:                "did:issuer",
		PolicyHash:               identity.PolicyHash([]byte(testPolicy)),
	}
	require.NoError(t, db.Create(&project).Error)
	details := models.ProjectDetails{
		ProjectID:  project.ID,
		Status:     models.ProjectStatusAuctionEnglish,
		RoundStart: 0,
		EnglishEnd: 30,
		RoundEnd:   50,
	}
	require.NoError(t, db.Create(&details).Error)

	for _, account := range []string{"alice", "bob", "carol"} {
		require.NoError(t, svc.Identity.Register(db, account, "did:"+account, models.InvestorRetail))
		require.NoError(t, svc.Custody.Deposit(db, account, models.AssetPLMC, decimal.NewFromInt(50_000)))
		require.NoError(t, svc.Custody.Deposit(db, account, models.AssetUSDT, decimal.NewFromInt(50_000)))
	}
	require.NoError(t, svc.Identity.Register(db, "issuer", "did:issuer", models.InvestorInstitutional))
	require.NoError(t, svc.Clock.SetHeight(db, 10))
	return &project
}

func retailBid(amount, price int64) BidParams {
	return BidParams{
		TokenAmount:  decimal.NewFromInt(amount),
		PriceUSD:     decimal.NewFromInt(price),
		Multiplier:   1,
		FundingAsset: models.AssetUSDT,
		PolicyHash:   identity.PolicyHash([]byte(testPolicy)),
	}
}

func TestPlaceBid_EscrowsCollateral(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)

	bid, err := svc.PlaceBid(context.Background(), project.ID, "alice", retailBid(1_000, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(0), bid.BidID)
	assert.Equal(t, models.BidStatusPending, bid.Status)
	// Ticket 2000 USD at 1x: 2000 PLMC bond and 2000 USDT locked.
	assert.True(t, bid.PlmcBond.Equal(decimal.NewFromInt(2_000)), bid.PlmcBond.String())
	assert.True(t, bid.FundingAssetAmount.Equal(decimal.NewFromInt(2_000)))

	var balance models.Balance
	require.NoError(t, db.Where("account = ? AND asset = ?", "alice", models.AssetPLMC).First(&balance).Error)
	assert.True(t, balance.Held.Equal(decimal.NewFromInt(2_000)))

	var details models.ProjectDetails
	require.NoError(t, db.Where("project_id = ?", project.ID).First(&details).Error)
	assert.Equal(t, int64(1), details.NextBidID)
	require.NotNil(t, details.HighestEnglishPrice)
	assert.True(t, details.HighestEnglishPrice.Equal(decimal.NewFromInt(2)))
}

func TestPlaceBid_WrongPhase(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)
	require.NoError(t, db.Model(&models.ProjectDetails{}).Where("project_id = ?", project.ID).
		Update("status", models.ProjectStatusEvaluationRound).Error)

	_, err := svc.PlaceBid(context.Background(), project.ID, "alice", retailBid(1_000, 2))
	assert.Equal(t, funding.ErrAuctionNotStarted, err)
}

func TestPlaceBid_BelowMinimumPrice(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)

	params := retailBid(1_000, 2)
	params.PriceUSD = decimal.NewFromFloat(0.5)
	_, err := svc.PlaceBid(context.Background(), project.ID, "alice", params)
	assert.Equal(t, funding.ErrTooLow, err)
}

func TestPlaceBid_PolicyMismatch(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)

	params := retailBid(1_000, 2)
	params.PolicyHash = identity.PolicyHash([]byte("some other policy"))
	_, err := svc.PlaceBid(context.Background(), project.ID, "alice", params)
	assert.Equal(t, funding.ErrPolicyMismatch, err)
}

func TestPlaceBid_ForbiddenMultiplier_NoEscrowTouched(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)

	params := retailBid(1_000, 2)
	params.Multiplier = collateral.RetailMaxMultiplier + 1
	_, err := svc.PlaceBid(context.Background(), project.ID, "alice", params)
	assert.Equal(t, collateral.ErrForbiddenMultiplier, err)

	var balance models.Balance
	require.NoError(t, db.Where("account = ? AND asset = ?", "alice", models.AssetPLMC).First(&balance).Error)
	assert.True(t, balance.Held.IsZero())
}

func TestPlaceBid_FundingAssetNotAccepted(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)

	params := retailBid(1_000, 2)
	params.FundingAsset = models.AssetUSDC
	_, err := svc.PlaceBid(context.Background(), project.ID, "alice", params)
	assert.Equal(t, collateral.ErrFundingAssetNotAccepted, err)
}

func TestPlaceBid_IssuerCannotBid(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)

	_, err := svc.PlaceBid(context.Background(), project.ID, "issuer", retailBid(1_000, 2))
	assert.Equal(t, funding.ErrParticipationToOwnProject, err)
}

func TestPlaceBid_InsufficientBalance_NotRecorded(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)
	require.NoError(t, svc.Identity.Register(db, "dave", "did:dave", models.InvestorRetail))

	_, err := svc.PlaceBid(context.Background(), project.ID, "dave", retailBid(1_000, 2))
	assert.Equal(t, custody.ErrInsufficientBalance, err)

	var count int64
	require.NoError(t, db.Model(&models.Bid{}).Where("project_id = ?", project.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceBid_TooLateForRound(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)
	require.NoError(t, svc.Clock.SetHeight(db, 50))

	_, err := svc.PlaceBid(context.Background(), project.ID, "alice", retailBid(1_000, 2))
	assert.Equal(t, funding.ErrTooLateForRound, err)
}

func TestCandlePrice_DecaysTowardFloor(t *testing.T) {
	two := decimal.NewFromInt(2)
	project := &models.Project{MinimumPriceUSD: decimal.NewFromInt(1)}
	details := &models.ProjectDetails{EnglishEnd: 30, RoundEnd: 50, HighestEnglishPrice: &two}

	assert.True(t, CandlePrice(project, details, 30).Equal(decimal.NewFromInt(2)))
	assert.True(t, CandlePrice(project, details, 40).Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, CandlePrice(project, details, 50).Equal(decimal.NewFromInt(1)))
	// Past the end the floor holds.
	assert.True(t, CandlePrice(project, details, 60).Equal(decimal.NewFromInt(1)))
}

func TestCandlePrice_NoEnglishBids_FlatFloor(t *testing.T) {
	project := &models.Project{MinimumPriceUSD: decimal.NewFromInt(1)}
	details := &models.ProjectDetails{EnglishEnd: 30, RoundEnd: 50}
	assert.True(t, CandlePrice(project, details, 35).Equal(decimal.NewFromInt(1)))
}

func TestPlaceBid_CandlePhase_AcceptsDecayedPrice(t *testing.T) {
	svc, db := setupAuctionTest(t)
	project := seedAuctionProject(t, svc, db)

	// English bid at 2 USD sets the decay anchor.
	_, err := svc.PlaceBid(context.Background(), project.ID, "alice", retailBid(1_000, 2))
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.ProjectDetails{}).Where("project_id = ?", project.ID).
		Update("status", models.ProjectStatusAuctionCandle).Error)
	require.NoError(t, svc.Clock.SetHeight(db, 40)) // candle price now 1.5

	params := retailBid(1_000, 2)
	params.PriceUSD = decimal.NewFromFloat(1.2)
	_, err = svc.PlaceBid(context.Background(), project.ID, "bob", params)
	assert.Equal(t, funding.ErrTooLow, err)

	params.PriceUSD = decimal.NewFromFloat(1.5)
	_, err = svc.PlaceBid(context.Background(), project.ID, "bob", params)
	assert.NoError(t, err)
}
