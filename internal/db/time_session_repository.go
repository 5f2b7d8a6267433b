package db

import (
	"time"

	"github.com/terraincognita07/tempo/internal/models"
	"gorm.io/gorm"
)

type TimeSessionRepository struct {
	database *gorm.DB
}

func NewTimeSessionRepository(database *gorm.DB) *TimeSessionRepository {
	return &TimeSessionRepository{database: database}
}

func (repo *TimeSessionRepository) List(filters ...TimeSessionFilter) ([]models.TimeSession, error) {
	query, err := applyTimeSessionFilters(repo.database.Model(&models.TimeSession{}), filters)
	if err != nil {
		return nil, err
	}

	sessions := make([]models.TimeSession, 0)
	if err := query.Order("start_time DESC, id DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (repo *TimeSessionRepository) FindByID(sessionID uint) (models.TimeSession, error) {
	var session models.TimeSession
	if err := repo.database.First(&session, sessionID).Error; err != nil {
		return models.TimeSession{}, err
	}
	return session, nil
}

func (repo *TimeSessionRepository) FindActiveByTask(taskID uint) (models.TimeSession, bool, error) {
	var sessions []models.TimeSession
	if err := repo.database.
		Where("task_id = ? AND is_active = ?", taskID, true).
		Order("start_time DESC, id DESC").
		Limit(1).
		Find(&sessions).Error; err != nil {
		return models.TimeSession{}, false, err
	}
	if len(sessions) == 0 {
		return models.TimeSession{}, false, nil
	}
	return sessions[0], true, nil
}

// StartForTask stops whatever is running on the task, opens a new active
// session and moves a todo task to in_progress, all in one transaction.
// It returns the new session and the sessions it stopped.
func (repo *TimeSessionRepository) StartForTask(task models.Task, userID *uint, description string, now time.Time) (models.TimeSession, []models.TimeSession, error) {
	var (
		started models.TimeSession
		stopped []models.TimeSession
	)

	err := repo.database.Transaction(func(tx *gorm.DB) error {
		var err error
		stopped, err = stopActiveSessions(tx, task.ID, now)
		if err != nil {
			return err
		}

		taskID := task.ID
		started = models.TimeSession{
			TaskID:      &taskID,
			ProjectID:   task.ProjectID,
			UserID:      userID,
			StartTime:   now,
			IsActive:    true,
			Description: description,
			CreatedAt:   now,
		}
		if err := tx.Create(&started).Error; err != nil {
			return err
		}

		return tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", task.ID, models.TaskStatusTodo).
			Updates(map[string]any{
				"status": models.TaskStatusInProgress,
				"board_column": gorm.Expr(
					"CASE WHEN board_column = ? THEN ? ELSE board_column END",
					models.TaskStatusTodo,
					models.TaskStatusInProgress,
				),
			}).Error
	})
	if err != nil {
		return models.TimeSession{}, nil, err
	}
	return started, stopped, nil
}

// Stop closes the session if it is still active and reports whether it was.
func (repo *TimeSessionRepository) Stop(session *models.TimeSession) (bool, error) {
	result := repo.database.Model(&models.TimeSession{}).
		Where("id = ? AND is_active = ?", session.ID, true).
		Updates(map[string]any{
			"end_time":  session.EndTime,
			"duration":  session.Duration,
			"is_active": false,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *TimeSessionRepository) Create(session *models.TimeSession) error {
	return repo.database.Create(session).Error
}

func (repo *TimeSessionRepository) Delete(sessionID uint) error {
	result := repo.database.Delete(&models.TimeSession{}, sessionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TrackedSecondsForTask sums the durations of the finished sessions of a task.
func (repo *TimeSessionRepository) TrackedSecondsForTask(taskID uint) (int64, error) {
	var total int64
	row := repo.database.Model(&models.TimeSession{}).
		Where("task_id = ? AND is_active = ?", taskID, false).
		Select("COALESCE(SUM(duration), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func stopActiveSessions(tx *gorm.DB, taskID uint, now time.Time) ([]models.TimeSession, error) {
	active := make([]models.TimeSession, 0)
	if err := tx.Where("task_id = ? AND is_active = ?", taskID, true).Find(&active).Error; err != nil {
		return nil, err
	}

	for index := range active {
		active[index].StopAt(now)
		if err := tx.Model(&models.TimeSession{}).
			Where("id = ?", active[index].ID).
			Updates(map[string]any{
				"end_time":  active[index].EndTime,
				"duration":  active[index].Duration,
				"is_active": false,
			}).Error; err != nil {
			return nil, err
		}
	}
	return active, nil
}
