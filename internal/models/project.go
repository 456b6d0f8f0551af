package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Project status values. The order of phaseIndex below is the only legal
// progression; FundingFailed is terminal and reachable from any round.
const (
	ProjectStatusApplication     = "application"
	ProjectStatusEvaluationRound = "evaluation_round"
	ProjectStatusEvaluationEnded = "evaluation_ended"
	ProjectStatusAuctionEnglish  = "auction_english"
	ProjectStatusAuctionCandle   = "auction_candle"
	ProjectStatusCommunityRound  = "community_round"
	ProjectStatusRemainderRound  = "remainder_round"
	ProjectStatusFundingEnded    = "funding_ended"
	ProjectStatusFundingFailed   = "funding_failed"
)

// Investor classes, in ascending leverage order.
const (
	InvestorRetail        = "retail"
	InvestorProfessional  = "professional"
	InvestorInstitutional = "institutional"
)

// Asset symbols. PLMC is the native bonding token; the rest are funding assets
// a project may accept.
const (
	AssetPLMC = "PLMC"
	AssetUSDT = "USDT"
	AssetUSDC = "USDC"
	AssetDOT  = "DOT"
)

// Project is the immutable metadata set at creation. Mutable round state lives
// in ProjectDetails.
type Project struct {
	ID                    int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TokenName             string          `gorm:"column:token_name;type:varchar(64);not null" json:"token_name"`
	TokenSymbol           string          `gorm:"column:token_symbol;type:varchar(16);not null" json:"token_symbol"`
	TokenDecimals         int             `gorm:"column:token_decimals;not null;default:10" json:"token_decimals"`
	MinimumPriceUSD       decimal.Decimal `gorm:"column:minimum_price_usd;type:decimal(38,18);not null" json:"minimum_price_usd"`
	TotalAllocation       decimal.Decimal `gorm:"column:total_allocation;type:decimal(38,18);not null" json:"total_allocation"`
	AuctionAllocationPct  int             `gorm:"column:auction_allocation_pct;not null;default:50" json:"auction_allocation_pct"`
	FundingTargetUSD      decimal.Decimal `gorm:"column:funding_target_usd;type:decimal(38,18);not null" json:"funding_target_usd"`
	TicketMinRetail       decimal.Decimal `gorm:"column:ticket_min_retail;type:decimal(38,18);not null" json:"ticket_min_retail"`
	TicketMaxRetail       *decimal.Decimal `gorm:"column:ticket_max_retail;type:decimal(38,18)" json:"ticket_max_retail"`
	TicketMinProfessional decimal.Decimal `gorm:"column:ticket_min_professional;type:decimal(38,18);not null" json:"ticket_min_professional"`
	TicketMaxProfessional *decimal.Decimal `gorm:"column:ticket_max_professional;type:decimal(38,18)" json:"ticket_max_professional"`
	TicketMinInstitutional decimal.Decimal `gorm:"column:ticket_min_institutional;type:decimal(38,18);not null" json:"ticket_min_institutional"`
	TicketMaxInstitutional *decimal.Decimal `gorm:"column:ticket_max_institutional;type:decimal(38,18)" json:"ticket_max_institutional"`
	MaxParticipationsPerUser int           `gorm:"column:max_participations_per_user;not null;default:16" json:"max_participations_per_user"`
	AcceptedAssets        datatypes.JSON  `gorm:"column:accepted_assets;type:jsonb;not null" json:"accepted_assets"`
	IssuerAccount         string          `gorm:"column:issuer_account;type:varchar(64);not null" json:"issuer_account"`
	IssuerDID             string          `gorm:"column:issuer_did;type:varchar(64);not null" json:"issuer_did"`
	PolicyHash            string          `gorm:"column:policy_hash;type:varchar(64);not null" json:"policy_hash"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

func (Project) TableName() string {
	return "Projects"
}

// TicketBounds returns the (min per participation, max per DID) USD ticket
// bounds for an investor class. A nil max means uncapped.
func (p *Project) TicketBounds(investorType string) (decimal.Decimal, *decimal.Decimal) {
	switch investorType {
	case InvestorProfessional:
		return p.TicketMinProfessional, p.TicketMaxProfessional
	case InvestorInstitutional:
		return p.TicketMinInstitutional, p.TicketMaxInstitutional
	default:
		return p.TicketMinRetail, p.TicketMaxRetail
	}
}

// ProjectDetails is the mutable per-project round state, keyed 1:1 with Project.
type ProjectDetails struct {
	ProjectID                   int64            `gorm:"column:project_id;primaryKey" json:"project_id"`
	Status                      string           `gorm:"column:status;type:varchar(32);not null;default:'application'" json:"status"`
	RoundStart                  int64            `gorm:"column:round_start;not null;default:0" json:"round_start"`
	RoundEnd                    int64            `gorm:"column:round_end;not null;default:0" json:"round_end"`
	EnglishEnd                  int64            `gorm:"column:english_end;not null;default:0" json:"english_end"`
	RemainderStart              int64            `gorm:"column:remainder_start;not null;default:0" json:"remainder_start"`
	WeightedAveragePrice        *decimal.Decimal `gorm:"column:weighted_average_price;type:decimal(38,18)" json:"weighted_average_price"`
	HighestEnglishPrice         *decimal.Decimal `gorm:"column:highest_english_price;type:decimal(38,18)" json:"highest_english_price"`
	RemainingContributionTokens decimal.Decimal  `gorm:"column:remaining_contribution_tokens;type:decimal(38,18);not null;default:0" json:"remaining_contribution_tokens"`
	FundingReachedUSD           decimal.Decimal  `gorm:"column:funding_reached_usd;type:decimal(38,18);not null;default:0" json:"funding_reached_usd"`
	EvaluationBondedUSD         decimal.Decimal  `gorm:"column:evaluation_bonded_usd;type:decimal(38,18);not null;default:0" json:"evaluation_bonded_usd"`
	NextBidID                   int64            `gorm:"column:next_bid_id;not null;default:0" json:"next_bid_id"`
	NextContributionID          int64            `gorm:"column:next_contribution_id;not null;default:0" json:"next_contribution_id"`
	UpdatedAt                   time.Time        `json:"updatedAt"`
}

func (ProjectDetails) TableName() string {
	return "ProjectDetails"
}
