package rounds

import (
	"context"

	"launchpad-backend/internal/auction"
	"launchpad-backend/internal/chain"
	"launchpad-backend/internal/events"
	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB      *gorm.DB
	Clock   *chain.Clock
	Auction *auction.Service
	Events  *events.Sink
}

// AdvanceRound applies every transition whose deadline has passed. Calling it
// when nothing is due is a no-op, so the tick may fire as often as it likes.
// Returns the statuses entered, oldest first.
func (s *Service) AdvanceRound(ctx context.Context, projectID int64) ([]string, error) {
	var entered []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := funding.LoadProject(tx, projectID)
		if err != nil {
			return err
		}
		details, err := funding.LoadDetails(tx, projectID)
		if err != nil {
			return err
		}
		now, err := s.Clock.Now(tx)
		if err != nil {
			return err
		}

		for {
			next, ok := Decide(project, details, now)
			if !ok {
				break
			}
			if err := s.apply(tx, project, details, next, now); err != nil {
				return err
			}
			entered = append(entered, next)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entered, nil
}

// apply performs one transition plus its side effects and persists details.
func (s *Service) apply(tx *gorm.DB, project *models.Project, details *models.ProjectDetails, next string, now int64) error {
	previous := details.Status
	details.Status = next

	switch next {
	case models.ProjectStatusCommunityRound:
		// Auction close computes and freezes the clearing price.
		if err := s.Auction.Close(tx, project, details); err != nil {
			return err
		}
		details.RoundStart = details.RoundEnd
		details.RemainderStart = details.RoundStart + CommunityDuration
		details.RoundEnd = details.RemainderStart + RemainderDuration
	case models.ProjectStatusRemainderRound:
		details.RoundStart = details.RemainderStart
	}

	if err := tx.Save(details).Error; err != nil {
		return err
	}

	log.Info().
		Int64("project_id", project.ID).
		Str("from", previous).
		Str("to", next).
		Int64("height", now).
		Msg("Round advanced")

	if err := s.Events.Emit(tx, project.ID, models.EventRoundAdvanced, map[string]interface{}{
		"from":   previous,
		"to":     next,
		"height": now,
	}); err != nil {
		return err
	}
	switch next {
	case models.ProjectStatusFundingEnded:
		return s.Events.Emit(tx, project.ID, models.EventFundingEnded, map[string]interface{}{
			"raised_usd": details.FundingReachedUSD,
		})
	case models.ProjectStatusFundingFailed:
		return s.Events.Emit(tx, project.ID, models.EventFundingFailed, map[string]interface{}{
			"raised_usd": details.FundingReachedUSD,
		})
	}
	return nil
}

// AdvanceAll ticks every project still in a live round.
func (s *Service) AdvanceAll(ctx context.Context) error {
	var live []models.ProjectDetails
	err := s.DB.WithContext(ctx).Where("status IN ?", []string{
		models.ProjectStatusEvaluationRound,
		models.ProjectStatusAuctionEnglish,
		models.ProjectStatusAuctionCandle,
		models.ProjectStatusCommunityRound,
		models.ProjectStatusRemainderRound,
	}).Find(&live).Error
	if err != nil {
		return err
	}
	for _, details := range live {
		if _, err := s.AdvanceRound(ctx, details.ProjectID); err != nil {
			log.Error().Err(err).Int64("project_id", details.ProjectID).Msg("Round advance failed")
		}
	}
	return nil
}
