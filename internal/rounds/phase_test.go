package rounds

import (
	"testing"

	"launchpad-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDecide_NoDeadlinePassed(t *testing.T) {
	project := &models.Project{FundingTargetUSD: decimal.NewFromInt(100_000)}
	for status, deadline := range map[string]models.ProjectDetails{
		models.ProjectStatusEvaluationRound: {RoundEnd: 100},
		models.ProjectStatusAuctionEnglish:  {EnglishEnd: 130},
		models.ProjectStatusAuctionCandle:   {RoundEnd: 150},
		models.ProjectStatusCommunityRound:  {RemainderStart: 190},
		models.ProjectStatusRemainderRound:  {RoundEnd: 210},
	} {
		details := deadline
		details.Status = status
		next, ok := Decide(project, &details, 50)
		assert.False(t, ok, "status %s advanced to %s early", status, next)
	}
}

func TestDecide_TerminalAndGatedStatusesNeverAdvance(t *testing.T) {
	project := &models.Project{FundingTargetUSD: decimal.NewFromInt(100_000)}
	for _, status := range []string{
		models.ProjectStatusApplication,
		models.ProjectStatusEvaluationEnded, // waits for the issuer, not the clock
		models.ProjectStatusFundingEnded,
		models.ProjectStatusFundingFailed,
	} {
		details := &models.ProjectDetails{Status: status, RoundEnd: 10}
		_, ok := Decide(project, details, 1_000_000)
		assert.False(t, ok, "status %s advanced", status)
	}
}

func TestDecide_EvaluationThreshold(t *testing.T) {
	project := &models.Project{FundingTargetUSD: decimal.NewFromInt(100_000)}

	details := &models.ProjectDetails{
		Status:              models.ProjectStatusEvaluationRound,
		RoundEnd:            100,
		EvaluationBondedUSD: decimal.NewFromInt(10_000), // exactly a tenth
	}
	next, ok := Decide(project, details, 100)
	assert.True(t, ok)
	assert.Equal(t, models.ProjectStatusEvaluationEnded, next)

	details.EvaluationBondedUSD = decimal.NewFromFloat(9_999.99)
	next, ok = Decide(project, details, 100)
	assert.True(t, ok)
	assert.Equal(t, models.ProjectStatusFundingFailed, next)
}

func TestDecide_FundingThreshold(t *testing.T) {
	project := &models.Project{FundingTargetUSD: decimal.NewFromInt(90_000)}

	details := &models.ProjectDetails{
		Status:            models.ProjectStatusRemainderRound,
		RoundEnd:          210,
		FundingReachedUSD: decimal.NewFromInt(30_000), // exactly a third
	}
	next, ok := Decide(project, details, 210)
	assert.True(t, ok)
	assert.Equal(t, models.ProjectStatusFundingEnded, next)

	details.FundingReachedUSD = decimal.NewFromInt(29_000)
	next, ok = Decide(project, details, 210)
	assert.True(t, ok)
	assert.Equal(t, models.ProjectStatusFundingFailed, next)
}

func TestDecide_AuctionSubPhases(t *testing.T) {
	project := &models.Project{FundingTargetUSD: decimal.NewFromInt(100_000)}

	details := &models.ProjectDetails{Status: models.ProjectStatusAuctionEnglish, EnglishEnd: 130, RoundEnd: 150}
	next, ok := Decide(project, details, 130)
	assert.True(t, ok)
	assert.Equal(t, models.ProjectStatusAuctionCandle, next)

	details.Status = models.ProjectStatusAuctionCandle
	_, ok = Decide(project, details, 149)
	assert.False(t, ok)
	next, ok = Decide(project, details, 150)
	assert.True(t, ok)
	assert.Equal(t, models.ProjectStatusCommunityRound, next)
}

func TestPhaseIndex_Monotonic(t *testing.T) {
	order := []string{
		models.ProjectStatusApplication,
		models.ProjectStatusEvaluationRound,
		models.ProjectStatusEvaluationEnded,
		models.ProjectStatusAuctionEnglish,
		models.ProjectStatusAuctionCandle,
		models.ProjectStatusCommunityRound,
		models.ProjectStatusRemainderRound,
		models.ProjectStatusFundingEnded,
	}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, PhaseIndex(order[i]), PhaseIndex(order[i-1]))
	}
	// The failure status outranks everything it can be entered from.
	assert.Greater(t, PhaseIndex(models.ProjectStatusFundingFailed), PhaseIndex(models.ProjectStatusRemainderRound))
}

// Decide never proposes a move to a lower lifecycle index.
func TestDecide_NeverMovesBackward(t *testing.T) {
	project := &models.Project{FundingTargetUSD: decimal.NewFromInt(100_000)}
	for status := range phaseIndex {
		details := &models.ProjectDetails{
			Status:              status,
			EvaluationBondedUSD: decimal.NewFromInt(50_000),
			FundingReachedUSD:   decimal.NewFromInt(50_000),
		}
		next, ok := Decide(project, details, 1_000_000)
		if ok {
			assert.Greater(t, PhaseIndex(next), PhaseIndex(status))
		}
	}
}
