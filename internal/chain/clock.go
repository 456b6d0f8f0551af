// Package chain owns the monotonic block height the round state machine is
// gated on. Height lives in a singleton row and is advanced by the scheduler
// tick, so tests control time by writing the row directly.
package chain

import (
	"launchpad-backend/internal/models"

	"gorm.io/gorm"
)

const stateRowID = 1

type Clock struct {
	DB *gorm.DB
}

// Now returns the current block height, creating the state row at height 0 on
// first use.
func (c *Clock) Now(tx *gorm.DB) (int64, error) {
	var state models.ChainState
	err := tx.Where("id = ?", stateRowID).First(&state).Error
	if err == gorm.ErrRecordNotFound {
		state = models.ChainState{ID: stateRowID, Height: 0}
		if err := tx.Create(&state).Error; err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return state.Height, nil
}

// Advance bumps the height by one block and returns the new height.
func (c *Clock) Advance(tx *gorm.DB) (int64, error) {
	height, err := c.Now(tx)
	if err != nil {
		return 0, err
	}
	height++
	if err := tx.Model(&models.ChainState{}).Where("id = ?", stateRowID).Update("height", height).Error; err != nil {
		return 0, err
	}
	return height, nil
}

// SetHeight forces the height. Fixture helper for tests; production height
// only moves through Advance.
func (c *Clock) SetHeight(tx *gorm.DB, height int64) error {
	if _, err := c.Now(tx); err != nil {
		return err
	}
	return tx.Model(&models.ChainState{}).Where("id = ?", stateRowID).Update("height", height).Error
}
