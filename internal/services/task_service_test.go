package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
)

func TestCreateTaskAppendsToColumn(t *testing.T) {
	t.Parallel()

	env := newServicesForTest(t)
	admin := adminIdentityForTest(t, env.repos)
	project := mustCreateProject(t, env.projects, "Board", nil, false, admin)

	first := mustCreateTask(t, env.tasks, project.ID, "First")
	second := mustCreateTask(t, env.tasks, project.ID, "Second")
	if first.Position != 0 || second.Position != 1 {
		t.Fatalf("expected positions 0 and 1, got %d and %d", first.Position, second.Position)
	}
	if first.BoardColumn != models.TaskStatusTodo || first.Priority != models.TaskPriorityMedium {
		t.Fatalf("expected todo column and medium priority, got %q and %q", first.BoardColumn, first.Priority)
	}

	doing, err := env.tasks.Create(CreateTaskInput{
		ProjectID:          project.ID,
		Title:              "Doing",
		Status:             models.TaskStatusInProgress,
		EstimatedMinutes:   30,
		EstimatedIntensity: 2,
	})
	if err != nil {
		t.Fatalf("create in_progress task: %v", err)
	}
	if doing.Position != 0 || doing.BoardColumn != models.TaskStatusInProgress {
		t.Fatalf("expected first slot of in_progress column, got %q/%d", doing.BoardColumn, doing.Position)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	env := newServicesForTest(t)
	tests := []struct {
		name  string
		input CreateTaskInput
	}{
		{"missing project", CreateTaskInput{Title: "x", EstimatedMinutes: 10, EstimatedIntensity: 1}},
		{"blank title", CreateTaskInput{ProjectID: 1, Title: " ", EstimatedMinutes: 10, EstimatedIntensity: 1}},
		{"created done", CreateTaskInput{ProjectID: 1, Title: "x", Status: models.TaskStatusDone, EstimatedMinutes: 10, EstimatedIntensity: 1}},
		{"zero minutes", CreateTaskInput{ProjectID: 1, Title: "x", EstimatedMinutes: 0, EstimatedIntensity: 1}},
		{"too many minutes", CreateTaskInput{ProjectID: 1, Title: "x", EstimatedMinutes: 1441, EstimatedIntensity: 1}},
		{"intensity too high", CreateTaskInput{ProjectID: 1, Title: "x", EstimatedMinutes: 10, EstimatedIntensity: 6}},
		{"bad priority", CreateTaskInput{ProjectID: 1, Title: "x", Priority: "urgent", EstimatedMinutes: 10, EstimatedIntensity: 1}},
	}

	for _, tt := range tests {
		_, err := env.tasks.Create(tt.input)
		if err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
		assertErrorKind(t, err, ErrValidation)
	}
}

func TestUpdateTaskCannotReachDoneDirectly(t *testing.T) {
	t.Parallel()

	env := newServicesForTest(t)
	admin := adminIdentityForTest(t, env.repos)
	project := mustCreateProject(t, env.projects, "Board", nil, false, admin)
	task := mustCreateTask(t, env.tasks, project.ID, "Edit me")

	done := models.TaskStatusDone
	_, err := env.tasks.Update(task.ID, UpdateTaskInput{Status: &done})
	assertErrorKind(t, err, ErrValidation)

	title := "Edited"
	priority := models.TaskPriorityHigh
	updated, err := env.tasks.Update(task.ID, UpdateTaskInput{Title: &title, Priority: &priority})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Edited" || updated.Priority != models.TaskPriorityHigh {
		t.Fatalf("expected edited title and high priority, got %q/%q", updated.Title, updated.Priority)
	}
}

func TestCompleteTaskValidatesAndRejectsRepeat(t *testing.T) {
	t.Parallel()

	env := newServicesForTest(t)
	admin := adminIdentityForTest(t, env.repos)
	project := mustCreateProject(t, env.projects, "Board", nil, false, admin)
	task := mustCreateTask(t, env.tasks, project.ID, "Finish")

	for _, intensity := range []int{0, 6} {
		_, err := env.tasks.Complete(task.ID, CompleteTaskInput{ActualIntensity: intensity})
		assertErrorKind(t, err, ErrValidation)
	}

	minutes := 75
	result, err := env.tasks.Complete(task.ID, CompleteTaskInput{ActualIntensity: 3, ActualMinutes: &minutes})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.TimeAccuracy == nil || *result.TimeAccuracy != 25 {
		t.Fatalf("expected accuracy 25, got %v", result.TimeAccuracy)
	}
	if !result.IntensityMatch {
		t.Fatal("expected intensity match")
	}
	if result.Task.Status != models.TaskStatusDone || result.Task.CompletedAt == nil {
		t.Fatalf("expected done task with completion time, got %+v", result.Task)
	}

	_, err = env.tasks.Complete(task.ID, CompleteTaskInput{ActualIntensity: 3})
	assertErrorKind(t, err, ErrConflict)

	reopened := models.TaskStatusTodo
	again, err := env.tasks.Update(task.ID, UpdateTaskInput{Status: &reopened})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.CompletedAt != nil || again.ActualIntensity != nil {
		t.Fatalf("expected reopening to clear completion, got %+v", again)
	}
}

func TestCompleteTaskDerivesMinutesFromTrackedTime(t *testing.T) {
	t.Parallel()

	env := newServicesForTest(t)
	admin := adminIdentityForTest(t, env.repos)
	project := mustCreateProject(t, env.projects, "Board", nil, false, admin)
	task := mustCreateTask(t, env.tasks, project.ID, "Timed")

	if _, err := env.timer.Start(task.ID, &admin.UserID, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	env.clock.Advance(61 * time.Second)
	if _, err := env.timer.Stop(StopByTask{TaskID: task.ID}); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := env.timer.Start(task.ID, &admin.UserID, ""); err != nil {
		t.Fatalf("restart: %v", err)
	}
	env.clock.Advance(5 * time.Minute)

	result, err := env.tasks.Complete(task.ID, CompleteTaskInput{ActualIntensity: 4})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Task.ActualMinutes == nil || *result.Task.ActualMinutes != 2 {
		t.Fatalf("expected 61 tracked seconds to round up to 2 minutes, got %v", result.Task.ActualMinutes)
	}
	if result.TimeAccuracy == nil || *result.TimeAccuracy != -97 {
		t.Fatalf("expected accuracy -97, got %v", result.TimeAccuracy)
	}
	if result.IntensityMatch {
		t.Fatal("expected intensity mismatch")
	}

	active, err := env.timer.List(db.SessionsByTask{TaskID: task.ID}, db.ActiveSessions{})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected completion to stop the running timer, got %d active", len(active))
	}
}

func TestCompleteTaskWithoutTrackedTimeHasNoAccuracy(t *testing.T) {
	t.Parallel()

	env := newServicesForTest(t)
	admin := adminIdentityForTest(t, env.repos)
	project := mustCreateProject(t, env.projects, "Board", nil, false, admin)
	task := mustCreateTask(t, env.tasks, project.ID, "Untracked")

	result, err := env.tasks.Complete(task.ID, CompleteTaskInput{ActualIntensity: 3})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.TimeAccuracy != nil || result.Task.ActualMinutes != nil {
		t.Fatalf("expected no minutes and no accuracy, got %v / %v", result.Task.ActualMinutes, result.TimeAccuracy)
	}
}

func TestTimeAccuracy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		actual, estimated, want int
	}{
		{60, 60, 0},
		{90, 60, 50},
		{30, 60, -50},
		{1, 3, -67},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := TimeAccuracy(tt.actual, tt.estimated); got != tt.want {
			t.Fatalf("TimeAccuracy(%d, %d): expected %d, got %d", tt.actual, tt.estimated, tt.want, got)
		}
	}
}

func TestReorderTasksAssignsSequentialPositions(t *testing.T) {
	t.Parallel()

	env := newServicesForTest(t)
	admin := adminIdentityForTest(t, env.repos)
	project := mustCreateProject(t, env.projects, "Board", nil, false, admin)
	a := mustCreateTask(t, env.tasks, project.ID, "A")
	b := mustCreateTask(t, env.tasks, project.ID, "B")
	c := mustCreateTask(t, env.tasks, project.ID, "C")

	assertErrorKind(t, env.tasks.Reorder(project.ID, models.TaskStatusTodo, []uint{a.ID, a.ID}), ErrValidation)

	if err := env.tasks.Reorder(project.ID, models.TaskStatusTodo, []uint{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	tasks, err := env.tasks.List(db.TasksByProject{ProjectID: project.ID}, db.TasksByColumn{Column: models.TaskStatusTodo})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []uint{c.ID, a.ID, b.ID}
	for index, task := range tasks {
		if task.ID != want[index] || task.Position != index {
			t.Fatalf("expected %v in order, got task %d at position %d", want, task.ID, task.Position)
		}
	}
}

func TestTaskTags(t *testing.T) {
	t.Parallel()

	env := newServicesForTest(t)
	admin := adminIdentityForTest(t, env.repos)
	project := mustCreateProject(t, env.projects, "Board", nil, false, admin)
	task := mustCreateTask(t, env.tasks, project.ID, "Tagged")

	tagged, err := env.tasks.AttachTag(task.ID, " Urgent ")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := env.tasks.AttachTag(task.ID, "urgent"); err != nil {
		t.Fatalf("attach twice: %v", err)
	}
	if len(tagged.Tags) != 1 || tagged.Tags[0].Name != "urgent" {
		t.Fatalf("expected one lower-cased tag, got %+v", tagged.Tags)
	}

	untagged, err := env.tasks.DetachTag(task.ID, tagged.Tags[0].ID)
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if len(untagged.Tags) != 0 {
		t.Fatalf("expected no tags after detach, got %+v", untagged.Tags)
	}

	_, err = env.tasks.AttachTag(task.ID, "   ")
	assertErrorKind(t, err, ErrValidation)
}
