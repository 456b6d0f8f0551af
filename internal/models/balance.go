package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Balance is one (account, asset) custody row. Free is spendable; Held is
// escrowed for open bids, bonds and contributions.
type Balance struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Account   string          `gorm:"column:account;type:varchar(64);not null;index:idx_balance_account_asset,unique" json:"account"`
	Asset     string          `gorm:"column:asset;type:varchar(16);not null;index:idx_balance_account_asset,unique" json:"asset"`
	Free      decimal.Decimal `gorm:"column:free;type:decimal(38,18);not null;default:0" json:"free"`
	Held      decimal.Decimal `gorm:"column:held;type:decimal(38,18);not null;default:0" json:"held"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (Balance) TableName() string {
	return "Balances"
}

func (b *Balance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Identity maps an on-chain account to its DID and investor class. Several
// accounts may share one DID; per-participant ceilings aggregate on the DID.
type Identity struct {
	Account      string    `gorm:"column:account;type:varchar(64);primaryKey" json:"account"`
	DID          string    `gorm:"column:did;type:varchar(64);not null;index" json:"did"`
	InvestorType string    `gorm:"column:investor_type;type:varchar(16);not null;default:'retail'" json:"investor_type"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Identity) TableName() string {
	return "Identities"
}

// ChainState is the singleton block-height row advanced by the scheduler tick.
type ChainState struct {
	ID     int   `gorm:"column:id;primaryKey" json:"id"`
	Height int64 `gorm:"column:height;not null;default:0" json:"height"`
}

func (ChainState) TableName() string {
	return "ChainState"
}
