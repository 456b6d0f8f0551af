package contributions

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

// ContributionParams is one community/remainder-round purchase request. The
// price is not a parameter: contributions settle at the frozen clearing price.
type ContributionParams struct {
	TokenAmount  decimal.Decimal `json:"token_amount"`
	Multiplier   int             `json:"multiplier"`
	FundingAsset string          `json:"funding_asset"`
	PolicyHash   string          `json:"policy_hash"`
}

// Contribute validates and records a purchase at the weighted-average price.
// All checks run before any escrow or write; a failure leaves nothing behind.
func (s *Service) Contribute(ctx context.Context, projectID int64, account string, params ContributionParams) (*models.Contribution, error) {
	var contribution models.Contribution
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		details, err := funding.LoadDetails(tx, projectID)
		if err != nil {
			return err
		}
		if details.Status != models.ProjectStatusCommunityRound && details.Status != models.ProjectStatusRemainderRound {
			return funding.ErrIncorrectRound
		}
		now, err := s.Clock.Now(tx)
		if err != nil {
			return err
		}
		remainderStarted := details.Status == models.ProjectStatusRemainderRound || now >= details.RemainderStart

		caller, err := s.Identity.Resolve(tx, account)
		if err != nil {
			return err
		}
		var winningBids int64
		if err := tx.Model(&models.DidWinningBid{}).Where("project_id = ? AND did = ?", projectID, caller.DID).Count(&winningBids).Error; err != nil {
			return err
		}
		// Winning bidders get access only once the remainder opens, so they
		// cannot double-dip during Community.
		if winningBids > 0 && !remainderStarted {
			return funding.ErrUserHasWinningBid
		}
		if now >= details.RoundEnd {
			return funding.ErrTooLateForRound
		}

		buyable := params.TokenAmount
		if buyable.GreaterThan(details.RemainingContributionTokens) {
			buyable = details.RemainingContributionTokens
		}
		if !buyable.IsPositive() {
			return funding.ErrProjectSoldOut
		}
		remainingAfter := details.RemainingContributionTokens.Sub(buyable)

		project, err := funding.LoadProject(tx, projectID)
		if err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&models.Contribution{}).Where("project_id = ? AND contributor = ?", projectID, account).Count(&existing).Error; err != nil {
			return err
		}
		didTotal, err := loadUsdTotal(tx, projectID, caller.DID)
		if err != nil {
			return err
		}
		if details.WeightedAveragePrice == nil {
			return funding.ErrWapNotSet
		}
		wap := *details.WeightedAveragePrice
		ticket := wap.Mul(buyable)
		minTicket, maxTicket := project.TicketBounds(caller.InvestorType)

		if project.PolicyHash != params.PolicyHash {
			return funding.ErrPolicyMismatch
		}
		if err := collateral.ValidateMultiplier(params.Multiplier, caller.InvestorType); err != nil {
			return err
		}
		if !funding.AcceptsAsset(project, params.FundingAsset) {
			return collateral.ErrFundingAssetNotAccepted
		}
		if caller.DID == project.IssuerDID {
			return funding.ErrParticipationToOwnProject
		}
		if existing >= int64(project.MaxParticipationsPerUser) {
			return funding.ErrTooManyUserParticipations
		}
		// The buyer who empties the pool may close it out below the normal
		// floor; everyone else meets the class minimum.
		if ticket.LessThan(minTicket) && !remainingAfter.IsZero() {
			return funding.ErrTooLow
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

		contribution = models.Contribution{
			ProjectID:          projectID,
			ContributionID:     details.NextContributionID,
			Contributor:        account,
			DID:                caller.DID,
			TokenAmount:        buyable,
			UsdAmount:          ticket,
			Multiplier:         params.Multiplier,
			FundingAsset:       params.FundingAsset,
			FundingAssetAmount: fundingAmount,
			PlmcBond:           plmcBond,
			PlacedAt:           now,
		}
		if err := tx.Create(&contribution).Error; err != nil {
			return err
		}

		didTotal.UsdAmount = didTotal.UsdAmount.Add(ticket)
		if err := tx.Save(didTotal).Error; err != nil {
			return err
		}

		details.NextContributionID++
		details.RemainingContributionTokens = remainingAfter
		details.FundingReachedUSD = details.FundingReachedUSD.Add(ticket)
		if err := tx.Save(details).Error; err != nil {
			return err
		}

		return s.Events.Emit(tx, projectID, models.EventContribution, map[string]interface{}{
			"contributor":     account,
			"contribution_id": contribution.ContributionID,
			"token_amount":    contribution.TokenAmount,
			"usd_amount":      contribution.UsdAmount,
			"funding_asset":   contribution.FundingAsset,
			"plmc_bond":       contribution.PlmcBond,
			"multiplier":      contribution.Multiplier,
		})
	})
	if err != nil {
		return nil, err
	}
	return &contribution, nil
}

// List returns a project's contributions in purchase order.
func (s *Service) List(ctx context.Context, projectID int64) ([]models.Contribution, error) {
	var list []models.Contribution
	err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).Order("contribution_id ASC").Find(&list).Error
	return list, err
}

func loadUsdTotal(tx *gorm.DB, projectID int64, did string) (*models.DidUsdTotal, error) {
	var total models.DidUsdTotal
	err := tx.Where("project_id = ? AND did = ? AND kind = ?", projectID, did, models.UsdTotalKindContribution).First(&total).Error
	if err == gorm.ErrRecordNotFound {
		total = models.DidUsdTotal{ProjectID: projectID, DID: did, Kind: models.UsdTotalKindContribution, UsdAmount: decimal.Zero}
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
