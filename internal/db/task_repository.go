package db

import (
	"time"

	"github.com/terraincognita07/tempo/internal/models"
	"gorm.io/gorm"
)

type TaskRepository struct {
	database *gorm.DB
}

func NewTaskRepository(database *gorm.DB) *TaskRepository {
	return &TaskRepository{database: database}
}

func (repo *TaskRepository) List(filters ...TaskFilter) ([]models.Task, error) {
	query, err := applyTaskFilters(repo.database.Model(&models.Task{}), filters)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0)
	if err := query.
		Preload("Tags").
		Order("project_id ASC, board_column ASC, position ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (repo *TaskRepository) FindByID(taskID uint) (models.Task, error) {
	var task models.Task
	if err := repo.database.Preload("Tags").First(&task, taskID).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (repo *TaskRepository) Create(task *models.Task) error {
	return repo.database.Omit("Tags").Create(task).Error
}

func (repo *TaskRepository) UpdateFields(taskID uint, updates map[string]any) error {
	result := repo.database.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *TaskRepository) Delete(taskID uint) error {
	result := repo.database.Delete(&models.Task{}, taskID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NextPosition returns the slot after the last task of a board column.
func (repo *TaskRepository) NextPosition(projectID uint, column string) (int, error) {
	var last int
	row := repo.database.Model(&models.Task{}).
		Where("project_id = ? AND board_column = ?", projectID, column).
		Select("COALESCE(MAX(position), -1)").
		Row()
	if err := row.Scan(&last); err != nil {
		return 0, err
	}
	return last + 1, nil
}

// Reorder assigns positions 0..n-1 in the given order. Ids outside the
// project are left untouched.
func (repo *TaskRepository) Reorder(projectID uint, column string, orderedIDs []uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		for position, taskID := range orderedIDs {
			if err := tx.Model(&models.Task{}).
				Where("id = ? AND project_id = ?", taskID, projectID).
				Updates(map[string]any{"position": position, "board_column": column}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Complete stores the completion fields and closes any running timer of the
// task. It reports false when the task was already done.
func (repo *TaskRepository) Complete(task *models.Task, now time.Time) (bool, error) {
	completed := false
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Task{}).
			Where("id = ? AND status <> ?", task.ID, models.TaskStatusDone).
			Updates(map[string]any{
				"status":           models.TaskStatusDone,
				"board_column":     task.BoardColumn,
				"actual_intensity": task.ActualIntensity,
				"actual_minutes":   task.ActualMinutes,
				"completed_at":     task.CompletedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		completed = true

		_, err := stopActiveSessions(tx, task.ID, now)
		return err
	})
	return completed, err
}
