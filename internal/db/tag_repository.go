package db

import (
	"github.com/terraincognita07/tempo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository struct {
	database *gorm.DB
}

func NewTagRepository(database *gorm.DB) *TagRepository {
	return &TagRepository{database: database}
}

func (repo *TagRepository) List() ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	if err := repo.database.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// FindOrCreate returns the tag with the given name, creating it with the
// default color when missing.
func (repo *TagRepository) FindOrCreate(name string) (models.Tag, error) {
	tag := models.Tag{Name: name, Color: models.DefaultTagColor}
	if err := repo.database.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
		return models.Tag{}, err
	}

	var stored models.Tag
	if err := repo.database.Where("name = ?", name).First(&stored).Error; err != nil {
		return models.Tag{}, err
	}
	return stored, nil
}

func (repo *TagRepository) Attach(taskID uint, tagID uint) error {
	return repo.database.Exec(
		`INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		taskID,
		tagID,
	).Error
}

func (repo *TagRepository) Detach(taskID uint, tagID uint) error {
	return repo.database.Exec(`DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?`, taskID, tagID).Error
}
