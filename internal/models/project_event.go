package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project event types, one per successful logical effect.
const (
	EventProjectCreated    = "PROJECT_CREATED"
	EventEvaluationStarted = "EVALUATION_STARTED"
	EventEvaluationBonded  = "EVALUATION_BONDED"
	EventAuctionStarted    = "AUCTION_STARTED"
	EventBidPlaced         = "BID_PLACED"
	EventAuctionClosed     = "AUCTION_CLOSED"
	EventContribution      = "CONTRIBUTION"
	EventRoundAdvanced     = "ROUND_ADVANCED"
	EventFundingEnded      = "FUNDING_ENDED"
	EventFundingFailed     = "FUNDING_FAILED"
)

type ProjectEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	ProjectID int64          `gorm:"column:project_id;not null;index" json:"project_id"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (ProjectEvent) TableName() string {
	return "ProjectEvents"
}

func (pe *ProjectEvent) BeforeCreate(tx *gorm.DB) error {
	if pe.EventID == uuid.Nil {
		pe.EventID = uuid.New()
	}
	return nil
}
