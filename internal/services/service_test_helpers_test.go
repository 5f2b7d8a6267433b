package services

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
)

type testServices struct {
	repos       *db.Repositories
	permissions *PermissionService
	stats       *StatsService
	projects    *ProjectService
	tasks       *TaskService
	timer       *TimerService
	clock       *fakeClock
}

type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	return clock.current
}

func (clock *fakeClock) Advance(duration time.Duration) {
	clock.current = clock.current.Add(duration)
}

func openRepositoriesForTest(t *testing.T) *db.Repositories {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "tempo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("load sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repos, err := db.NewRepositories(database)
	if err != nil {
		t.Fatalf("build repositories: %v", err)
	}
	return repos
}

func newServicesForTest(t *testing.T) testServices {
	t.Helper()

	repos := openRepositoriesForTest(t)
	clock := newFakeClock()
	permissions := NewPermissionService(repos.Projects, repos.Grants, repos.Users, true)
	stats := NewStatsService(repos.Stats, repos.Projects)
	projects := NewProjectService(repos.Projects, permissions, stats, false)
	tasks := NewTaskService(repos.Tasks, repos.TimeSessions, repos.Tags)
	tasks.now = clock.Now
	timer := NewTimerService(repos.TimeSessions, repos.Tasks, clock.Now)

	return testServices{
		repos:       repos,
		permissions: permissions,
		stats:       stats,
		projects:    projects,
		tasks:       tasks,
		timer:       timer,
		clock:       clock,
	}
}

func createUserForTest(t *testing.T, repos *db.Repositories, username string, role string) models.User {
	t.Helper()

	now := time.Now().UTC()
	user := models.User{
		Username:     username,
		PasswordHash: "not-a-real-hash",
		Role:         role,
		Status:       models.UserStatusApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repos.Users.Create(&user, false); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func mustCreateProject(t *testing.T, service *ProjectService, name string, parent *models.Project, public bool, creator *Identity) models.Project {
	t.Helper()

	input := CreateProjectInput{Name: name, IsPublic: public}
	if parent != nil {
		input.ParentID = &parent.ID
	}
	project, err := service.Create(input, creator)
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return project
}

func mustCreateTask(t *testing.T, service *TaskService, projectID uint, title string) models.Task {
	t.Helper()

	task, err := service.Create(CreateTaskInput{
		ProjectID:          projectID,
		Title:              title,
		EstimatedMinutes:   60,
		EstimatedIntensity: 3,
	})
	if err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}

func adminIdentityForTest(t *testing.T, repos *db.Repositories) *Identity {
	t.Helper()
	return IdentityFromUser(createUserForTest(t, repos, "root", models.RoleAdmin))
}

func assertErrorKind(t *testing.T, err error, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
