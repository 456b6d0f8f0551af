package auction

import (
	"context"

	"launchpad-backend/internal/chain"
	"launchpad-backend/internal/collateral"
	"launchpad-backend/internal/custody"
	"launchpad-backend/internal/events"
	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/identity"
	"launchpad-backend/internal/models"
	"launchpad-backend/internal/oracle"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Clock    *chain.Clock
	Custody  *custody.Service
	Oracle   oracle.PriceProvider
	Events   *events.Sink
	Identity *identity.Resolver
}

// BidParams is one auction order as submitted.
type BidParams struct {
	TokenAmount  decimal.Decimal `json:"token_amount"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
	Multiplier   int             `json:"multiplier"`
	FundingAsset string          `json:"funding_asset"`
	PolicyHash   string          `json:"policy_hash"`
}

// CandlePrice is the minimum acceptable offer during the candle sub-phase. It
// decays linearly from the highest English-phase price toward the issuer
// minimum as the candle window burns down. With no English bids the floor is
// flat at the minimum price.
func CandlePrice(project *models.Project, details *models.ProjectDetails, now int64) decimal.Decimal {
	start := project.MinimumPriceUSD
	if details.HighestEnglishPrice != nil && details.HighestEnglishPrice.GreaterThan(start) {
		start = *details.HighestEnglishPrice
	}
	window := details.RoundEnd - details.EnglishEnd
	if window <= 0 || now >= details.RoundEnd {
		return project.MinimumPriceUSD
	}
	remaining := details.RoundEnd - now
	if remaining > window {
		remaining = window
	}
	spread := start.Sub(project.MinimumPriceUSD)
	decayed := spread.Mul(decimal.NewFromInt(remaining)).Div(decimal.NewFromInt(window))
	return project.MinimumPriceUSD.Add(decayed)
}

// PlaceBid validates and records an auction order. Collateral is escrowed
// before the bid row exists; any failure leaves nothing written.
func (s *Service) PlaceBid(ctx context.Context, projectID int64, account string, params BidParams) (*models.Bid, error) {
	var bid models.Bid
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := funding.LoadProject(tx, projectID)
		if err != nil {
			return err
		}
		details, err := funding.LoadDetails(tx, projectID)
		if err != nil {
			return err
		}
		if details.Status != models.ProjectStatusAuctionEnglish && details.Status != models.ProjectStatusAuctionCandle {
			return funding.ErrAuctionNotStarted
		}
		now, err := s.Clock.Now(tx)
		if err != nil {
			return err
		}
		if now >= details.RoundEnd {
			return funding.ErrTooLateForRound
		}
		if !params.TokenAmount.IsPositive() {
			return funding.ErrTooLow
		}

		caller, err := s.Identity.Resolve(tx, account)
		if err != nil {
			return err
		}
		if caller.DID == project.IssuerDID {
			return funding.ErrParticipationToOwnProject
		}
		if project.PolicyHash != params.PolicyHash {
			return funding.ErrPolicyMismatch
		}
		if !funding.AcceptsAsset(project, params.FundingAsset) {
			return collateral.ErrFundingAssetNotAccepted
		}
		if err := collateral.ValidateMultiplier(params.Multiplier, caller.InvestorType); err != nil {
			return err
		}

		// Price floor depends on the sub-phase.
		floor := project.MinimumPriceUSD
		if details.Status == models.ProjectStatusAuctionCandle {
			floor = CandlePrice(project, details, now)
		}
		if params.PriceUSD.LessThan(floor) {
			return funding.ErrTooLow
		}

		var existing int64
		if err := tx.Model(&models.Bid{}).Where("project_id = ? AND bidder = ?", projectID, account).Count(&existing).Error; err != nil {
			return err
		}
		if existing >= int64(project.MaxParticipationsPerUser) {
			return funding.ErrTooManyUserParticipations
		}

		ticket := params.PriceUSD.Mul(params.TokenAmount)
		minTicket, maxTicket := project.TicketBounds(caller.InvestorType)
		if ticket.LessThan(minTicket) {
			return funding.ErrTooLow
		}
		didTotal, err := loadUsdTotal(tx, projectID, caller.DID, models.UsdTotalKindBid)
		if err != nil {
			return err
		}
		if maxTicket != nil && didTotal.UsdAmount.Add(ticket).GreaterThan(*maxTicket) {
			return funding.ErrTooHigh
		}

		plmcPrice, err := s.Oracle.Price(ctx, models.AssetPLMC)
		if err != nil {
			return err
		}
		assetPrice, err := s.Oracle.Price(ctx, params.FundingAsset)
		if err != nil {
			return err
		}
		plmcBond, err := collateral.RequiredBond(ticket, params.Multiplier, plmcPrice)
		if err != nil {
			return err
		}
		fundingAmount, err := collateral.RequiredFundingAssetAmount(ticket, assetPrice)
		if err != nil {
			return err
		}

		if err := s.Custody.Hold(tx, account, models.AssetPLMC, plmcBond); err != nil {
			return err
		}
		if err := s.Custody.Hold(tx, account, params.FundingAsset, fundingAmount); err != nil {
			return err
		}

		bid = models.Bid{
			ProjectID:          projectID,
			BidID:              details.NextBidID,
			Bidder:             account,
			DID:                caller.DID,
			TokenAmount:        params.TokenAmount,
			PriceUSD:           params.PriceUSD,
			FundingAsset:       params.FundingAsset,
			FundingAssetAmount: fundingAmount,
			Multiplier:         params.Multiplier,
			PlmcBond:           plmcBond,
			Status:             models.BidStatusPending,
			PlacedAt:           now,
		}
		if err := tx.Create(&bid).Error; err != nil {
			return err
		}

		didTotal.UsdAmount = didTotal.UsdAmount.Add(ticket)
		if err := tx.Save(didTotal).Error; err != nil {
			return err
		}

		details.NextBidID++
		if details.Status == models.ProjectStatusAuctionEnglish {
			if details.HighestEnglishPrice == nil || params.PriceUSD.GreaterThan(*details.HighestEnglishPrice) {
				price := params.PriceUSD
				details.HighestEnglishPrice = &price
			}
		}
		if err := tx.Save(details).Error; err != nil {
			return err
		}

		return s.Events.Emit(tx, projectID, models.EventBidPlaced, map[string]interface{}{
			"bidder":        account,
			"bid_id":        bid.BidID,
			"token_amount":  bid.TokenAmount,
			"price_usd":     bid.PriceUSD,
			"funding_asset": bid.FundingAsset,
			"plmc_bond":     bid.PlmcBond,
			"multiplier":    bid.Multiplier,
		})
	})
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// ListBids returns a project's bids in submission order.
func (s *Service) ListBids(ctx context.Context, projectID int64) ([]models.Bid, error) {
	var bids []models.Bid
	err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).Order("bid_id ASC").Find(&bids).Error
	return bids, err
}

func loadUsdTotal(tx *gorm.DB, projectID int64, did, kind string) (*models.DidUsdTotal, error) {
	var total models.DidUsdTotal
	err := tx.Where("project_id = ? AND did = ? AND kind = ?", projectID, did, kind).First(&total).Error
	if err == gorm.ErrRecordNotFound {
		total = models.DidUsdTotal{ProjectID: projectID, DID: did, Kind: kind, UsdAmount: decimal.Zero}
		if err := tx.Create(&total).Error; err != nil {
			return nil, err
		}
		return &total, nil
	}
	if err != nil {
		return nil, err
	}
	return &total, nil
}
