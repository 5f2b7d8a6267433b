package db

import (
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/terraincognita07/tempo/internal/models"
	"gorm.io/gorm"
)

// StatsRepository is the read model for grouped statistics. It shares the
// connection pool of the GORM handle but builds its aggregate queries with
// squirrel. Aggregate columns are scanned untyped because drivers disagree
// on their representation.
type StatsRepository struct {
	database    *sqlx.DB
	placeholder squirrel.PlaceholderFormat
}

type TaskStatsRow struct {
	ProjectID       uint `db:"project_id"`
	TotalTasks      any  `db:"total_tasks"`
	CompletedTasks  any  `db:"completed_tasks"`
	InProgressTasks any  `db:"in_progress_tasks"`
	TotalMinutes    any  `db:"total_minutes"`
}

type TrackedTimeRow struct {
	ProjectID      uint `db:"project_id"`
	TrackedSeconds any  `db:"tracked_seconds"`
	SessionCount   any  `db:"session_count"`
}

type CompletionRow struct {
	ProjectID       uint `db:"project_id"`
	CompletedTasks  any  `db:"completed_tasks"`
	AverageAccuracy any  `db:"average_accuracy"`
	IntensityMatch  any  `db:"intensity_matches"`
}

func NewStatsRepository(database *gorm.DB) (*StatsRepository, error) {
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("stats repository: %w", err)
	}
	driver := database.Dialector.Name()
	return NewStatsRepositoryFromSQLX(sqlx.NewDb(sqlDB, driver), driver), nil
}

func NewStatsRepositoryFromSQLX(database *sqlx.DB, driver string) *StatsRepository {
	var placeholder squirrel.PlaceholderFormat = squirrel.Question
	if driver == DriverPostgres {
		placeholder = squirrel.Dollar
	}
	return &StatsRepository{database: database, placeholder: placeholder}
}

// TaskStatsByProject groups task counts per project for the given ids.
// Projects without tasks produce no row.
func (repo *StatsRepository) TaskStatsByProject(projectIDs []uint) ([]TaskStatsRow, error) {
	rows := make([]TaskStatsRow, 0, len(projectIDs))
	if len(projectIDs) == 0 {
		return rows, nil
	}

	query, args, err := squirrel.
		Select(
			"project_id",
			"COUNT(*) AS total_tasks",
			fmt.Sprintf("SUM(CASE WHEN status = '%s' THEN 1 ELSE 0 END) AS completed_tasks", models.TaskStatusDone),
			fmt.Sprintf("SUM(CASE WHEN status = '%s' THEN 1 ELSE 0 END) AS in_progress_tasks", models.TaskStatusInProgress),
			"SUM(COALESCE(actual_minutes, 0)) AS total_minutes",
		).
		From("tasks").
		Where(squirrel.Eq{"project_id": projectIDs}).
		GroupBy("project_id").
		PlaceholderFormat(repo.placeholder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build task stats query: %w", err)
	}

	if err := repo.database.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("query task stats: %w", err)
	}
	return rows, nil
}

// TrackedTimeByProject sums finished session durations that started in
// [from, to).
func (repo *StatsRepository) TrackedTimeByProject(projectIDs []uint, from time.Time, to time.Time) ([]TrackedTimeRow, error) {
	rows := make([]TrackedTimeRow, 0, len(projectIDs))
	if len(projectIDs) == 0 {
		return rows, nil
	}

	query, args, err := squirrel.
		Select(
			"project_id",
			"SUM(COALESCE(duration, 0)) AS tracked_seconds",
			"COUNT(*) AS session_count",
		).
		From("time_sessions").
		Where(squirrel.Eq{"project_id": projectIDs}).
		Where(squirrel.Eq{"is_active": false}).
		Where(squirrel.GtOrEq{"start_time": from}).
		Where(squirrel.Lt{"start_time": to}).
		GroupBy("project_id").
		PlaceholderFormat(repo.placeholder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tracked time query: %w", err)
	}

	if err := repo.database.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("query tracked time: %w", err)
	}
	return rows, nil
}

// CompletionsByProject summarises tasks completed in [from, to). The average
// accuracy is the mean percentage deviation of actual from estimated minutes.
func (repo *StatsRepository) CompletionsByProject(projectIDs []uint, from time.Time, to time.Time) ([]CompletionRow, error) {
	rows := make([]CompletionRow, 0, len(projectIDs))
	if len(projectIDs) == 0 {
		return rows, nil
	}

	query, args, err := squirrel.
		Select(
			"project_id",
			"COUNT(*) AS completed_tasks",
			"AVG(CASE WHEN actual_minutes IS NOT NULL AND estimated_minutes > 0 THEN (actual_minutes - estimated_minutes) * 100.0 / estimated_minutes END) AS average_accuracy",
			"SUM(CASE WHEN actual_intensity = estimated_intensity THEN 1 ELSE 0 END) AS intensity_matches",
		).
		From("tasks").
		Where(squirrel.Eq{"project_id": projectIDs}).
		Where(squirrel.Eq{"status": models.TaskStatusDone}).
		Where(squirrel.GtOrEq{"completed_at": from}).
		Where(squirrel.Lt{"completed_at": to}).
		GroupBy("project_id").
		PlaceholderFormat(repo.placeholder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build completion query: %w", err)
	}

	if err := repo.database.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	return rows, nil
}
