package db

import (
	"github.com/terraincognita07/tempo/internal/models"
	"gorm.io/gorm"
)

type QuickLinkRepository struct {
	database *gorm.DB
}

func NewQuickLinkRepository(database *gorm.DB) *QuickLinkRepository {
	return &QuickLinkRepository{database: database}
}

func (repo *QuickLinkRepository) ListByProject(projectID uint) ([]models.QuickLink, error) {
	links := make([]models.QuickLink, 0)
	if err := repo.database.
		Where("project_id = ?", projectID).
		Order("position ASC, id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (repo *QuickLinkRepository) FindByID(linkID uint) (models.QuickLink, error) {
	var link models.QuickLink
	if err := repo.database.First(&link, linkID).Error; err != nil {
		return models.QuickLink{}, err
	}
	return link, nil
}

func (repo *QuickLinkRepository) NextPosition(projectID uint) (int, error) {
	var last int
	row := repo.database.Model(&models.QuickLink{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(position), -1)").
		Row()
	if err := row.Scan(&last); err != nil {
		return 0, err
	}
	return last + 1, nil
}

func (repo *QuickLinkRepository) Create(link *models.QuickLink) error {
	return repo.database.Create(link).Error
}

func (repo *QuickLinkRepository) UpdateFields(linkID uint, updates map[string]any) error {
	result := repo.database.Model(&models.QuickLink{}).Where("id = ?", linkID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *QuickLinkRepository) Delete(linkID uint) error {
	result := repo.database.Delete(&models.QuickLink{}, linkID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *QuickLinkRepository) Reorder(projectID uint, orderedIDs []uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		for position, linkID := range orderedIDs {
			if err := tx.Model(&models.QuickLink{}).
				Where("id = ? AND project_id = ?", linkID, projectID).
				Update("position", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
