package db

import (
	"time"

	"github.com/terraincognita07/tempo/internal/models"
	"gorm.io/gorm"
)

type AuthSessionRepository struct {
	database *gorm.DB
}

func NewAuthSessionRepository(database *gorm.DB) *AuthSessionRepository {
	return &AuthSessionRepository{database: database}
}

func (repo *AuthSessionRepository) Create(session *models.AuthSession) error {
	return repo.database.Create(session).Error
}

func (repo *AuthSessionRepository) FindByID(sessionID string) (models.AuthSession, error) {
	var session models.AuthSession
	if err := repo.database.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return models.AuthSession{}, err
	}
	return session, nil
}

func (repo *AuthSessionRepository) Delete(sessionID string) error {
	return repo.database.Where("id = ?", sessionID).Delete(&models.AuthSession{}).Error
}

func (repo *AuthSessionRepository) DeleteByUser(userID uint) error {
	return repo.database.Where("user_id = ?", userID).Delete(&models.AuthSession{}).Error
}

// DeleteExpired removes every session whose expiry is at or before now.
func (repo *AuthSessionRepository) DeleteExpired(now time.Time) (int64, error) {
	result := repo.database.Where("expires_at <= ?", now).Delete(&models.AuthSession{})
	return result.RowsAffected, result.Error
}
