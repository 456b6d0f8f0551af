// Package rounds owns the project lifecycle: the closed phase set, the pure
// transition decision, and the tick-driven advance service.
package rounds

import (
	"launchpad-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Round durations in blocks.
const (
	EvaluationDuration     int64 = 100
	AuctionEnglishDuration int64 = 30
	AuctionCandleDuration  int64 = 20
	CommunityDuration      int64 = 40
	RemainderDuration      int64 = 20
)

// Evaluation succeeds when bonds reach a tenth of the funding target; funding
// succeeds when at least a third of the target was raised by funding end.
var (
	EvaluationSuccessRatio = decimal.NewFromFloat(0.10)
	FundingSuccessRatio    = decimal.NewFromFloat(1.0 / 3.0)
)

var phaseIndex = map[string]int{
	models.ProjectStatusApplication:     0,
	models.ProjectStatusEvaluationRound: 1,
	models.ProjectStatusEvaluationEnded: 2,
	models.ProjectStatusAuctionEnglish:  3,
	models.ProjectStatusAuctionCandle:   4,
	models.ProjectStatusCommunityRound:  5,
	models.ProjectStatusRemainderRound:  6,
	models.ProjectStatusFundingEnded:    7,
	models.ProjectStatusFundingFailed:   8,
}

// PhaseIndex returns the position of a status in the lifecycle. Statuses only
// ever move to a higher index.
func PhaseIndex(status string) int {
	return phaseIndex[status]
}

// Decide returns the next status for a project given the current block
// height, or ("", false) when no deadline has passed. It is pure: callers
// apply the transition and its side effects.
func Decide(project *models.Project, details *models.ProjectDetails, now int64) (string, bool) {
	switch details.Status {
	case models.ProjectStatusEvaluationRound:
		if now < details.RoundEnd {
			return "", false
		}
		target := project.FundingTargetUSD.Mul(EvaluationSuccessRatio)
		if details.EvaluationBondedUSD.GreaterThanOrEqual(target) {
			return models.ProjectStatusEvaluationEnded, true
		}
		return models.ProjectStatusFundingFailed, true

	case models.ProjectStatusAuctionEnglish:
		if now < details.EnglishEnd {
			return "", false
		}
		return models.ProjectStatusAuctionCandle, true

	case models.ProjectStatusAuctionCandle:
		if now < details.RoundEnd {
			return "", false
		}
		return models.ProjectStatusCommunityRound, true

	case models.ProjectStatusCommunityRound:
		if now < details.RemainderStart {
			return "", false
		}
		return models.ProjectStatusRemainderRound, true

	case models.ProjectStatusRemainderRound:
		if now < details.RoundEnd {
			return "", false
		}
		target := project.FundingTargetUSD.Mul(FundingSuccessRatio)
		if details.FundingReachedUSD.GreaterThanOrEqual(target) {
			return models.ProjectStatusFundingEnded, true
		}
		return models.ProjectStatusFundingFailed, true
	}
	return "", false
}
