package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DidWinningBid marks a DID as holding at least one accepted bid for a
// project. Written at auction settlement, read by the contribution gate.
type DidWinningBid struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID int64     `gorm:"column:project_id;not null;index:idx_winning_project_did,unique" json:"project_id"`
	DID       string    `gorm:"column:did;type:varchar(64);not null;index:idx_winning_project_did,unique" json:"did"`
	CreatedAt time.Time `json:"createdAt"`
}

func (DidWinningBid) TableName() string {
	return "DidWinningBids"
}

func (w *DidWinningBid) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// DidUsdTotal accumulates USD bought by one DID on one project, split by kind
// ("bid" or "contribution") so each path enforces its own ceiling.
type DidUsdTotal struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID int64           `gorm:"column:project_id;not null;index:idx_usd_project_did_kind,unique" json:"project_id"`
	DID       string          `gorm:"column:did;type:varchar(64);not null;index:idx_usd_project_did_kind,unique" json:"did"`
	Kind      string          `gorm:"column:kind;type:varchar(16);not null;index:idx_usd_project_did_kind,unique" json:"kind"`
	UsdAmount decimal.Decimal `gorm:"column:usd_amount;type:decimal(38,18);not null;default:0" json:"usd_amount"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

const (
	UsdTotalKindBid          = "bid"
	UsdTotalKindContribution = "contribution"
)

func (DidUsdTotal) TableName() string {
	return "DidUsdTotals"
}

func (d *DidUsdTotal) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
