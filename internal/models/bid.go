package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bid statuses. A bid is pending until auction close settles it; statuses only
// move pending -> accepted/partially_accepted/rejected -> refunded.
const (
	BidStatusPending           = "pending"
	BidStatusAccepted          = "accepted"
	BidStatusPartiallyAccepted = "partially_accepted"
	BidStatusRejected          = "rejected"
	BidStatusRefunded          = "refunded"
)

// Bid is one auction-round order, unique per (project_id, bidder, bid_id).
// TokenAmount and PriceUSD keep the original submission; AcceptedAmount and
// SettlementPrice are written once by auction settlement.
type Bid struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID          int64            `gorm:"column:project_id;not null;index" json:"project_id"`
	BidID              int64            `gorm:"column:bid_id;not null" json:"bid_id"`
	Bidder             string           `gorm:"column:bidder;type:varchar(64);not null;index" json:"bidder"`
	DID                string           `gorm:"column:did;type:varchar(64);not null" json:"did"`
	TokenAmount        decimal.Decimal  `gorm:"column:token_amount;type:decimal(38,18);not null" json:"token_amount"`
	AcceptedAmount     decimal.Decimal  `gorm:"column:accepted_amount;type:decimal(38,18);not null;default:0" json:"accepted_amount"`
	PriceUSD           decimal.Decimal  `gorm:"column:price_usd;type:decimal(38,18);not null" json:"price_usd"`
	SettlementPriceUSD *decimal.Decimal `gorm:"column:settlement_price_usd;type:decimal(38,18)" json:"settlement_price_usd"`
	FundingAsset       string           `gorm:"column:funding_asset;type:varchar(16);not null" json:"funding_asset"`
	FundingAssetAmount decimal.Decimal  `gorm:"column:funding_asset_amount;type:decimal(38,18);not null" json:"funding_asset_amount"`
	Multiplier         int              `gorm:"column:multiplier;not null;default:1" json:"multiplier"`
	PlmcBond           decimal.Decimal  `gorm:"column:plmc_bond;type:decimal(38,18);not null" json:"plmc_bond"`
	Status             string           `gorm:"column:status;type:varchar(24);not null;default:'pending'" json:"status"`
	PlacedAt           int64            `gorm:"column:placed_at;not null" json:"placed_at"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

func (Bid) TableName() string {
	return "Bids"
}

func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
