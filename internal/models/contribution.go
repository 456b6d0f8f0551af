package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Contribution is a community/remainder-round purchase at the frozen clearing
// price. Immutable once created; refunds and claims are settled elsewhere.
type Contribution struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID          int64           `gorm:"column:project_id;not null;index" json:"project_id"`
	ContributionID     int64           `gorm:"column:contribution_id;not null" json:"contribution_id"`
	Contributor        string          `gorm:"column:contributor;type:varchar(64);not null;index" json:"contributor"`
	DID                string          `gorm:"column:did;type:varchar(64);not null;index" json:"did"`
	TokenAmount        decimal.Decimal `gorm:"column:token_amount;type:decimal(38,18);not null" json:"token_amount"`
	UsdAmount          decimal.Decimal `gorm:"column:usd_amount;type:decimal(38,18);not null" json:"usd_amount"`
	Multiplier         int             `gorm:"column:multiplier;not null;default:1" json:"multiplier"`
	FundingAsset       string          `gorm:"column:funding_asset;type:varchar(16);not null" json:"funding_asset"`
	FundingAssetAmount decimal.Decimal `gorm:"column:funding_asset_amount;type:decimal(38,18);not null" json:"funding_asset_amount"`
	PlmcBond           decimal.Decimal `gorm:"column:plmc_bond;type:decimal(38,18);not null" json:"plmc_bond"`
	PlacedAt           int64           `gorm:"column:placed_at;not null" json:"placed_at"`
	CreatedAt          time.Time       `json:"createdAt"`
}

func (Contribution) TableName() string {
	return "Contributions"
}

func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Evaluation is a (project, evaluator) USD bond placed during the evaluation
// round. One row per evaluator per project; re-bonding accrues the amount.
type Evaluation struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID int64           `gorm:"column:project_id;not null;index:idx_eval_project_evaluator,unique" json:"project_id"`
	Evaluator string          `gorm:"column:evaluator;type:varchar(64);not null;index:idx_eval_project_evaluator,unique" json:"evaluator"`
	BondUSD   decimal.Decimal `gorm:"column:bond_usd;type:decimal(38,18);not null" json:"bond_usd"`
	PlmcBond  decimal.Decimal `gorm:"column:plmc_bond;type:decimal(38,18);not null" json:"plmc_bond"`
	PlacedAt  int64           `gorm:"column:placed_at;not null" json:"placed_at"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (Evaluation) TableName() string {
	return "Evaluations"
}

func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
