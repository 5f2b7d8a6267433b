package db

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatsRepositoryWithMock(t *testing.T, driver string) (*StatsRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return NewStatsRepositoryFromSQLX(sqlx.NewDb(sqlDB, driver), driver), mock
}

func TestTaskStatsByProjectGroupsRequestedIDs(t *testing.T) {
	repo, mock := newStatsRepositoryWithMock(t, DriverSQLite)

	rows := sqlmock.NewRows([]string{"project_id", "total_tasks", "completed_tasks", "in_progress_tasks", "total_minutes"}).
		AddRow(1, int64(4), int64(2), int64(1), int64(95)).
		AddRow(2, "3", []byte("1"), "0", "NaN")
	mock.ExpectQuery(`SELECT project_id, COUNT\(\*\) AS total_tasks, .* FROM tasks WHERE project_id IN \(\?,\?,\?\) GROUP BY project_id`).
		WithArgs(1, 2, 3).
		WillReturnRows(rows)

	result, err := repo.TaskStatsByProject([]uint{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, uint(1), result[0].ProjectID)
	assert.Equal(t, int64(4), result[0].TotalTasks)
	assert.Equal(t, uint(2), result[1].ProjectID)
	assert.Equal(t, "3", result[1].TotalTasks)
	assert.Equal(t, "NaN", result[1].TotalMinutes)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStatsByProjectSkipsQueryForEmptyInput(t *testing.T) {
	repo, mock := newStatsRepositoryWithMock(t, DriverSQLite)

	result, err := repo.TaskStatsByProject(nil)
	require.NoError(t, err)
	assert.Empty(t, result)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStatsByProjectUsesDollarPlaceholdersForPostgres(t *testing.T) {
	repo, mock := newStatsRepositoryWithMock(t, DriverPostgres)

	mock.ExpectQuery(`FROM tasks WHERE project_id IN \(\$1,\$2\) GROUP BY project_id`).
		WithArgs(7, 8).
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "total_tasks", "completed_tasks", "in_progress_tasks", "total_minutes"}))

	result, err := repo.TaskStatsByProject([]uint{7, 8})
	require.NoError(t, err)
	assert.Empty(t, result)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStatsByProjectWrapsQueryErrors(t *testing.T) {
	repo, mock := newStatsRepositoryWithMock(t, DriverSQLite)

	failure := errors.New("disk I/O error")
	mock.ExpectQuery(`FROM tasks`).WillReturnError(failure)

	_, err := repo.TaskStatsByProject([]uint{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackedTimeByProjectFiltersFinishedSessionsInRange(t *testing.T) {
	repo, mock := newStatsRepositoryWithMock(t, DriverSQLite)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery(`FROM time_sessions WHERE project_id IN \(\?\) AND is_active = \? AND start_time >= \? AND start_time < \? GROUP BY project_id`).
		WithArgs(5, false, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "tracked_seconds", "session_count"}).AddRow(5, int64(5400), int64(3)))

	result, err := repo.TrackedTimeByProject([]uint{5}, from, to)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(5400), result[0].TrackedSeconds)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletionsByProjectReturnsRawAverages(t *testing.T) {
	repo, mock := newStatsRepositoryWithMock(t, DriverSQLite)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	mock.ExpectQuery(`FROM tasks WHERE project_id IN \(\?,\?\) AND status = \? AND completed_at >= \? AND completed_at < \? GROUP BY project_id`).
		WithArgs(1, 2, "done", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "completed_tasks", "average_accuracy", "intensity_matches"}).
			AddRow(1, int64(2), 12.5, int64(1)).
			AddRow(2, int64(1), nil, int64(0)))

	result, err := repo.CompletionsByProject([]uint{1, 2}, from, to)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 12.5, result[0].AverageAccuracy)
	assert.Nil(t, result[1].AverageAccuracy)

	require.NoError(t, mock.ExpectationsWereMet())
}
