package projects

import (
	"context"
	"encoding/json"
	"errors"

	"launchpad-backend/internal/chain"
	"launchpad-backend/internal/custody"
	"launchpad-backend/internal/events"
	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/identity"
	"launchpad-backend/internal/ledger"
	"launchpad-backend/internal/models"
	"launchpad-backend/internal/oracle"
	"launchpad-backend/internal/rounds"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInvalidMetadata = errors.New("Invalid project metadata")
	ErrZeroBond        = errors.New("Bond amount must be positive")
)

type Service struct {
	DB       *gorm.DB
	Clock    *chain.Clock
	Custody  *custody.Service
	Oracle   oracle.PriceProvider
	Events   *events.Sink
	Identity *identity.Resolver
}

// CreateProjectParams carries the immutable metadata for a new project.
type CreateProjectParams struct {
	TokenName              string           `json:"token_name"`
	TokenSymbol            string           `json:"token_symbol"`
	TokenDecimals          int              `json:"token_decimals"`
	MinimumPriceUSD        decimal.Decimal  `json:"minimum_price_usd"`
	TotalAllocation        decimal.Decimal  `json:"total_allocation"`
	AuctionAllocationPct   int              `json:"auction_allocation_pct"`
	FundingTargetUSD       decimal.Decimal  `json:"funding_target_usd"`
	TicketMinRetail        decimal.Decimal  `json:"ticket_min_retail"`
	TicketMaxRetail        *decimal.Decimal `json:"ticket_max_retail"`
	TicketMinProfessional  decimal.Decimal  `json:"ticket_min_professional"`
	TicketMaxProfessional  *decimal.Decimal `json:"ticket_max_professional"`
	TicketMinInstitutional decimal.Decimal  `json:"ticket_min_institutional"`
	TicketMaxInstitutional *decimal.Decimal `json:"ticket_max_institutional"`
	AcceptedAssets         []string         `json:"accepted_assets"`
	Policy                 string           `json:"policy"`
	IssuerAccount          string           `json:"issuer_account"`
}

// CreateProject registers a new project in Application state. The policy
// document is hashed at creation; participants must later present the digest.
func (s *Service) CreateProject(ctx context.Context, params CreateProjectParams) (*models.Project, error) {
	if params.TokenName == "" || params.TokenSymbol == "" ||
		!params.MinimumPriceUSD.IsPositive() || !params.TotalAllocation.IsPositive() ||
		!params.FundingTargetUSD.IsPositive() || len(params.AcceptedAssets) == 0 {
		return nil, ErrInvalidMetadata
	}
	if params.AuctionAllocationPct <= 0 || params.AuctionAllocationPct > 100 {
		return nil, ErrInvalidMetadata
	}

	var project models.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		issuer, err := s.Identity.Resolve(tx, params.IssuerAccount)
		if err != nil {
			return err
		}
		assets, err := json.Marshal(params.AcceptedAssets)
		if err != nil {
			return err
		}
		decimals := params.TokenDecimals
		if decimals == 0 {
			decimals = 10
		}
		maxParticipations := 16
		project = models.Project{
			TokenName:                params.TokenName,
			TokenSymbol:              params.TokenSymbol,
			TokenDecimals:            decimals,
			MinimumPriceUSD:          params.MinimumPriceUSD,
			TotalAllocation:          params.TotalAllocation,
			AuctionAllocationPct:     params.AuctionAllocationPct,
			FundingTargetUSD:         params.FundingTargetUSD,
			TicketMinRetail:          params.TicketMinRetail,
			TicketMaxRetail:          params.TicketMaxRetail,
			TicketMinProfessional:    params.TicketMinProfessional,
			TicketMaxProfessional:    params.TicketMaxProfessional,
			TicketMinInstitutional:   params.TicketMinInstitutional,
			TicketMaxInstitutional:   params.TicketMaxInstitutional,
			MaxParticipationsPerUser: maxParticipations,
			AcceptedAssets:           datatypes.JSON(assets),
			IssuerAccount:            params.IssuerAccount,
			IssuerDID:                issuer.DID,
			PolicyHash:               identity.PolicyHash([]byte(params.Policy)),
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		details := models.ProjectDetails{
			ProjectID: project.ID,
			Status:    models.ProjectStatusApplication,
		}
		if err := tx.Create(&details).Error; err != nil {
			return err
		}
		return s.Events.Emit(tx, project.ID, models.EventProjectCreated, map[string]interface{}{
			"token_symbol":       project.TokenSymbol,
			"total_allocation":   project.TotalAllocation,
			"funding_target_usd": project.FundingTargetUSD,
		})
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// StartEvaluation moves an Application project into the evaluation round.
// Issuer-only.
func (s *Service) StartEvaluation(ctx context.Context, projectID int64, caller string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := funding.LoadProject(tx, projectID)
		if err != nil {
			return err
		}
		if project.IssuerAccount != caller {
			return funding.ErrNotIssuer
		}
		details, err := funding.LoadDetails(tx, projectID)
		if err != nil {
			return err
		}
		if details.Status != models.ProjectStatusApplication {
			return funding.ErrIncorrectRound
		}
		now, err := s.Clock.Now(tx)
		if err != nil {
			return err
		}
		details.Status = models.ProjectStatusEvaluationRound
		details.RoundStart = now
		details.RoundEnd = now + rounds.EvaluationDuration
		if err := tx.Save(details).Error; err != nil {
			return err
		}
		return s.Events.Emit(tx, projectID, models.EventEvaluationStarted, map[string]interface{}{
			"round_end": details.RoundEnd,
		})
	})
}

// Bond locks a PLMC bond worth usdAmount for the evaluation round. Re-bonding
// by the same evaluator accrues onto the existing record.
func (s *Service) Bond(ctx context.Context, projectID int64, account string, usdAmount decimal.Decimal) (*models.Evaluation, error) {
	if !usdAmount.IsPositive() {
		return nil, ErrZeroBond
	}
	var evaluation models.Evaluation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		details, err := funding.LoadDetails(tx, projectID)
		if err != nil {
			return err
		}
		if details.Status != models.ProjectStatusEvaluationRound {
			return funding.ErrEvaluationNotStarted
		}
		now, err := s.Clock.Now(tx)
		if err != nil {
			return err
		}
		if now >= details.RoundEnd {
			return funding.ErrTooLateForRound
		}
		if _, err := s.Identity.Resolve(tx, account); err != nil {
			return err
		}
		plmcPrice, err := s.Oracle.Price(ctx, models.AssetPLMC)
		if err != nil {
			return err
		}
		plmcBond := usdAmount.Div(plmcPrice)
		if err := s.Custody.Hold(tx, account, models.AssetPLMC, plmcBond); err != nil {
			return err
		}

		err = tx.Where("project_id = ? AND evaluator = ?", projectID, account).First(&evaluation).Error
		if err == gorm.ErrRecordNotFound {
			evaluation = models.Evaluation{
				ProjectID: projectID,
				Evaluator: account,
				BondUSD:   usdAmount,
				PlmcBond:  plmcBond,
				PlacedAt:  now,
			}
			if err := tx.Create(&evaluation).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			evaluation.BondUSD = evaluation.BondUSD.Add(usdAmount)
			evaluation.PlmcBond = evaluation.PlmcBond.Add(plmcBond)
			if err := tx.Save(&evaluation).Error; err != nil {
				return err
			}
		}

		details.EvaluationBondedUSD = details.EvaluationBondedUSD.Add(usdAmount)
		if err := tx.Save(details).Error; err != nil {
			return err
		}
		return s.Events.Emit(tx, projectID, models.EventEvaluationBonded, map[string]interface{}{
			"evaluator": account,
			"usd_bond":  usdAmount,
			"plmc_bond": plmcBond,
		})
	})
	if err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// StartAuction moves a project whose evaluation succeeded into the English
// auction sub-phase. Issuer-only.
func (s *Service) StartAuction(ctx context.Context, projectID int64, caller string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := funding.LoadProject(tx, projectID)
		if err != nil {
			return err
		}
		if project.IssuerAccount != caller {
			return funding.ErrNotIssuer
		}
		details, err := funding.LoadDetails(tx, projectID)
		if err != nil {
			return err
		}
		if details.Status != models.ProjectStatusEvaluationEnded {
			return funding.ErrIncorrectRound
		}
		now, err := s.Clock.Now(tx)
		if err != nil {
			return err
		}
		details.Status = models.ProjectStatusAuctionEnglish
		details.RoundStart = now
		details.EnglishEnd = now + rounds.AuctionEnglishDuration
		details.RoundEnd = now + rounds.AuctionEnglishDuration + rounds.AuctionCandleDuration
		if err := tx.Save(details).Error; err != nil {
			return err
		}
		return s.Events.Emit(tx, projectID, models.EventAuctionStarted, map[string]interface{}{
			"english_end": details.EnglishEnd,
			"round_end":   details.RoundEnd,
		})
	})
}

// Get returns a project with its round details.
func (s *Service) Get(ctx context.Context, projectID int64) (*models.Project, *models.ProjectDetails, error) {
	tx := s.DB.WithContext(ctx)
	project, err := funding.LoadProject(tx, projectID)
	if err != nil {
		return nil, nil, err
	}
	details, err := funding.LoadDetails(tx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return project, details, nil
}

// List returns all projects, newest first.
func (s *Service) List(ctx context.Context) ([]models.Project, error) {
	var list []models.Project
	err := s.DB.WithContext(ctx).Order("id DESC").Find(&list).Error
	return list, err
}

// BondedPerAccount aggregates the outstanding PLMC obligations of a project
// across evaluations, bids and contributions into one entry per account.
func (s *Service) BondedPerAccount(ctx context.Context, projectID int64) ([]ledger.Entry, error) {
	tx := s.DB.WithContext(ctx)

	var evaluations []models.Evaluation
	if err := tx.Where("project_id = ?", projectID).Find(&evaluations).Error; err != nil {
		return nil, err
	}
	var bids []models.Bid
	if err := tx.Where("project_id = ? AND status <> ?", projectID, models.BidStatusRefunded).Find(&bids).Error; err != nil {
		return nil, err
	}
	var contributions []models.Contribution
	if err := tx.Where("project_id = ?", projectID).Find(&contributions).Error; err != nil {
		return nil, err
	}

	entries := make([]ledger.Entry, 0, len(evaluations)+len(bids)+len(contributions))
	for _, e := range evaluations {
		entries = append(entries, ledger.Entry{Account: e.Evaluator, Asset: models.AssetPLMC, Amount: e.PlmcBond})
	}
	bidBonds := make([]ledger.Entry, 0, len(bids))
	for _, b := range bids {
		bidBonds = append(bidBonds, ledger.Entry{Account: b.Bidder, Asset: models.AssetPLMC, Amount: b.PlmcBond})
	}
	contributionBonds := make([]ledger.Entry, 0, len(contributions))
	for _, c := range contributions {
		contributionBonds = append(contributionBonds, ledger.Entry{Account: c.Contributor, Asset: models.AssetPLMC, Amount: c.PlmcBond})
	}
	return ledger.SumLists(ledger.SumLists(entries, bidBonds), contributionBonds), nil
}
