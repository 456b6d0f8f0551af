package funding

import (
	"encoding/json"

	"launchpad-backend/internal/models"

	"gorm.io/gorm"
)

// LoadProject fetches the immutable metadata for a project id.
func LoadProject(tx *gorm.DB, projectID int64) (*models.Project, error) {
	var project models.Project
	if err := tx.Where("id = ?", projectID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// LoadDetails fetches the mutable round state for a project id.
func LoadDetails(tx *gorm.DB, projectID int64) (*models.ProjectDetails, error) {
	var details models.ProjectDetails
	if err := tx.Where("project_id = ?", projectID).First(&details).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &details, nil
}

// AcceptsAsset reports whether the project's accepted-assets list contains the
// given funding asset.
func AcceptsAsset(project *models.Project, asset string) bool {
	var accepted []string
	if err := json.Unmarshal(project.AcceptedAssets, &accepted); err != nil {
		return false
	}
	for _, a := range accepted {
		if a == asset {
			return true
		}
	}
	return false
}
