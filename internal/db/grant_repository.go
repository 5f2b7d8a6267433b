package db

import (
	"github.com/terraincognita07/tempo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GrantRepository struct {
	database *gorm.DB
}

func NewGrantRepository(database *gorm.DB) *GrantRepository {
	return &GrantRepository{database: database}
}

func (repo *GrantRepository) Find(userID uint, projectID uint) (models.ProjectUser, bool, error) {
	var grants []models.ProjectUser
	if err := repo.database.
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Limit(1).
		Find(&grants).Error; err != nil {
		return models.ProjectUser{}, false, err
	}
	if len(grants) == 0 {
		return models.ProjectUser{}, false, nil
	}
	return grants[0], true, nil
}

func (repo *GrantRepository) ListByUser(userID uint) ([]models.ProjectUser, error) {
	grants := make([]models.ProjectUser, 0)
	if err := repo.database.Where("user_id = ?", userID).Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (repo *GrantRepository) ListByProject(projectID uint) ([]models.ProjectUser, error) {
	grants := make([]models.ProjectUser, 0)
	if err := repo.database.
		Preload("User").
		Where("project_id = ?", projectID).
		Order("granted_at ASC, id ASC").
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// Upsert inserts the grant or replaces the level of the existing
// (user, project) row.
func (repo *GrantRepository) Upsert(grant *models.ProjectUser) error {
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "project_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permission_level", "granted_by", "granted_at"}),
	}).Create(grant).Error
}

func (repo *GrantRepository) Delete(userID uint, projectID uint) error {
	return repo.database.
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.ProjectUser{}).Error
}
