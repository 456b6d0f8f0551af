package auction

import (
	"sort"

	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/ledger"
	"launchpad-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Close settles the auction once, at auction end. It fills bids in price
// order up to the auction allocation, computes the weighted-average clearing
// price, re-prices every accepted bid to it, refunds the rest, and freezes the
// result into ProjectDetails. Runs inside the caller's transaction; rounds
// invokes it on the Candle -> Community transition.
func (s *Service) Close(tx *gorm.DB, project *models.Project, details *models.ProjectDetails) error {
	if details.WeightedAveragePrice != nil {
		// The price is frozen; a second close is a programming error.
		return funding.ErrImpossibleState
	}

	var bids []models.Bid
	if err := tx.Where("project_id = ? AND status = ?", project.ID, models.BidStatusPending).Find(&bids).Error; err != nil {
		return err
	}

	// Price descending; earlier bid wins ties.
	sort.SliceStable(bids, func(i, j int) bool {
		if !bids[i].PriceUSD.Equal(bids[j].PriceUSD) {
			return bids[i].PriceUSD.GreaterThan(bids[j].PriceUSD)
		}
		if bids[i].PlacedAt != bids[j].PlacedAt {
			return bids[i].PlacedAt < bids[j].PlacedAt
		}
		return bids[i].BidID < bids[j].BidID
	})

	auctionCap := project.TotalAllocation.
		Mul(decimal.NewFromInt(int64(project.AuctionAllocationPct))).
		Div(decimal.NewFromInt(100))

	remaining := auctionCap
	weightedSum := decimal.Zero
	totalAccepted := decimal.Zero
	for i := range bids {
		bid := &bids[i]
		if remaining.IsZero() {
			bid.Status = models.BidStatusRejected
			continue
		}
		accepted := bid.TokenAmount
		if accepted.GreaterThan(remaining) {
			accepted = remaining
			bid.Status = models.BidStatusPartiallyAccepted
		} else {
			bid.Status = models.BidStatusAccepted
		}
		bid.AcceptedAmount = accepted
		remaining = remaining.Sub(accepted)
		weightedSum = weightedSum.Add(bid.PriceUSD.Mul(accepted))
		totalAccepted = totalAccepted.Add(accepted)
	}

	wap := project.MinimumPriceUSD
	if totalAccepted.IsPositive() {
		wap = weightedSum.Div(totalAccepted)
	}

	// Uniform-price semantics: everyone settles at the clearing price, whether
	// they bid above or below it. Collateral held beyond the settled ticket is
	// refunded, aggregated per account and asset so each balance is touched once.
	refunds := make([]ledger.Entry, 0, len(bids)*2)
	raisedUSD := decimal.Zero
	winningDIDs := make(map[string]struct{})
	for i := range bids {
		bid := &bids[i]
		switch bid.Status {
		case models.BidStatusAccepted, models.BidStatusPartiallyAccepted:
			settled := wap
			bid.SettlementPriceUSD = &settled
			finalTicket := wap.Mul(bid.AcceptedAmount)
			originalTicket := bid.PriceUSD.Mul(bid.TokenAmount)
			keptRatio := decimal.NewFromInt(1)
			if originalTicket.IsPositive() {
				keptRatio = finalTicket.Div(originalTicket)
			}
			keptBond := bid.PlmcBond.Mul(keptRatio)
			keptFunding := bid.FundingAssetAmount.Mul(keptRatio)
			if keptRatio.GreaterThan(decimal.NewFromInt(1)) {
				// Bid below WAP still pays the clearing price, which needs more
				// escrow than was locked at bid time. Top up from the bidder's
				// free balance; if it cannot cover, the existing escrow caps
				// the exposure so settlement itself never fails.
				extraBond := keptBond.Sub(bid.PlmcBond)
				extraFunding := keptFunding.Sub(bid.FundingAssetAmount)
				if err := s.holdTopUp(tx, bid.Bidder, bid.FundingAsset, extraBond, extraFunding); err != nil {
					keptBond = bid.PlmcBond
					keptFunding = bid.FundingAssetAmount
					finalTicket = originalTicket
				}
			}
			refundBond := bid.PlmcBond.Sub(keptBond)
			refundFunding := bid.FundingAssetAmount.Sub(keptFunding)
			if refundBond.IsNegative() {
				refundBond = decimal.Zero
			}
			if refundFunding.IsNegative() {
				refundFunding = decimal.Zero
			}
			refunds = append(refunds,
				ledger.Entry{Account: bid.Bidder, Asset: models.AssetPLMC, Amount: refundBond},
				ledger.Entry{Account: bid.Bidder, Asset: bid.FundingAsset, Amount: refundFunding},
			)
			bid.PlmcBond = keptBond
			bid.FundingAssetAmount = keptFunding
			raisedUSD = raisedUSD.Add(finalTicket)
			winningDIDs[bid.DID] = struct{}{}
		case models.BidStatusRejected:
			refunds = append(refunds,
				ledger.Entry{Account: bid.Bidder, Asset: models.AssetPLMC, Amount: bid.PlmcBond},
				ledger.Entry{Account: bid.Bidder, Asset: bid.FundingAsset, Amount: bid.FundingAssetAmount},
			)
			bid.PlmcBond = decimal.Zero
			bid.FundingAssetAmount = decimal.Zero
			bid.Status = models.BidStatusRefunded
		}
		if err := tx.Save(bid).Error; err != nil {
			return err
		}
	}

	for _, refund := range ledger.Merge(refunds, ledger.Add) {
		if refund.Amount.IsZero() {
			continue
		}
		if err := s.Custody.Release(tx, refund.Account, refund.Asset, refund.Amount); err != nil {
			return err
		}
	}

	for did := range winningDIDs {
		if err := tx.Create(&models.DidWinningBid{ProjectID: project.ID, DID: did}).Error; err != nil {
			return err
		}
	}

	details.WeightedAveragePrice = &wap
	details.RemainingContributionTokens = project.TotalAllocation.Sub(totalAccepted)
	details.FundingReachedUSD = details.FundingReachedUSD.Add(raisedUSD)
	if err := tx.Save(details).Error; err != nil {
		return err
	}

	log.Info().
		Int64("project_id", project.ID).
		Str("wap", wap.String()).
		Str("accepted_tokens", totalAccepted.String()).
		Int("bids", len(bids)).
		Msg("Auction settled")

	return s.Events.Emit(tx, project.ID, models.EventAuctionClosed, map[string]interface{}{
		"weighted_average_price": wap,
		"accepted_tokens":        totalAccepted,
		"raised_usd":             raisedUSD,
	})
}

func (s *Service) holdTopUp(tx *gorm.DB, account, fundingAsset string, extraBond, extraFunding decimal.Decimal) error {
	if err := s.Custody.Hold(tx, account, models.AssetPLMC, extraBond); err != nil {
		return err
	}
	if err := s.Custody.Hold(tx, account, fundingAsset, extraFunding); err != nil {
		if rerr := s.Custody.Release(tx, account, models.AssetPLMC, extraBond); rerr != nil {
			return rerr
		}
		return err
	}
	return nil
}
