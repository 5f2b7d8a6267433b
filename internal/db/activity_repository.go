package db

import (
	"github.com/terraincognita07/tempo/internal/models"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	database *gorm.DB
}

func NewActivityRepository(database *gorm.DB) *ActivityRepository {
	return &ActivityRepository{database: database}
}

func (repo *ActivityRepository) Create(activity *models.UserActivity) error {
	return repo.database.Create(activity).Error
}

func (repo *ActivityRepository) ListRecent(limit int) ([]models.UserActivity, error) {
	activities := make([]models.UserActivity, 0, limit)
	if err := repo.database.Order("created_at DESC, id DESC").Limit(limit).Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
