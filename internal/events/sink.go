// Package events records one ProjectEvent row per successful logical effect.
// Emission is fire-and-forget for observers but the row is written in the same
// transaction as the effect so the log never references rolled-back state.
package events

import (
	"encoding/json"

	"launchpad-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Sink struct {
	DB *gorm.DB
}

// Emit writes an event inside the caller's transaction.
func (s *Sink) Emit(tx *gorm.DB, projectID int64, eventType string, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	event := models.ProjectEvent{
		ProjectID: projectID,
		EventType: eventType,
		EventData: datatypes.JSON(payload),
	}
	if err := tx.Create(&event).Error; err != nil {
		return err
	}
	log.Info().Int64("project_id", projectID).Str("event", eventType).Msg("Event emitted")
	return nil
}
