package services

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
)

const maxTaskTitleLength = 200

type TaskRepository interface {
	List(filters ...db.TaskFilter) ([]models.Task, error)
	FindByID(taskID uint) (models.Task, error)
	Create(task *models.Task) error
	UpdateFields(taskID uint, updates map[string]any) error
	Delete(taskID uint) error
	NextPosition(projectID uint, column string) (int, error)
	Reorder(projectID uint, column string, orderedIDs []uint) error
	Complete(task *models.Task, now time.Time) (bool, error)
}

type TaskTimeReader interface {
	TrackedSecondsForTask(taskID uint) (int64, error)
}

type TaskTagRepository interface {
	FindOrCreate(name string) (models.Tag, error)
	Attach(taskID uint, tagID uint) error
	Detach(taskID uint, tagID uint) error
}

type CreateTaskInput struct {
	ProjectID          uint       `json:"projectId"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Status             string     `json:"status"`
	Priority           string     `json:"priority"`
	EstimatedMinutes   int        `json:"estimatedMinutes"`
	EstimatedIntensity int        `json:"estimatedIntensity"`
	DueDate            *time.Time `json:"dueDate"`
	BoardColumn        string     `json:"boardColumn"`
}

// UpdateTaskInput is a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
	Status             *string    `json:"status"`
	Priority           *string    `json:"priority"`
	EstimatedMinutes   *int       `json:"estimatedMinutes"`
	EstimatedIntensity *int       `json:"estimatedIntensity"`
	DueDate            *time.Time `json:"dueDate"`
	ClearDueDate       bool       `json:"clearDueDate"`
	BoardColumn        *string    `json:"boardColumn"`
	Position           *int       `json:"position"`
}

type CompleteTaskInput struct {
	ActualIntensity int  `json:"actualIntensity"`
	ActualMinutes   *int `json:"actualMinutes"`
}

// CompletionResult compares the completed task with its estimates.
// TimeAccuracy is the signed percentage deviation of actual from estimated
// minutes and is nil when no actual minutes are known.
type CompletionResult struct {
	Task           models.Task `json:"task"`
	TimeAccuracy   *int        `json:"timeAccuracy"`
	IntensityMatch bool        `json:"intensityMatch"`
}

type TaskService struct {
	tasks    TaskRepository
	sessions TaskTimeReader
	tags     TaskTagRepository
	now      func() time.Time
}

func NewTaskService(tasks TaskRepository, sessions TaskTimeReader, tags TaskTagRepository) *TaskService {
	return &TaskService{
		tasks:    tasks,
		sessions: sessions,
		tags:     tags,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (service *TaskService) List(filters ...db.TaskFilter) ([]models.Task, error) {
	tasks, err := service.tasks.List(filters...)
	if err != nil {
		return nil, internalError("list tasks", err)
	}
	return tasks, nil
}

func (service *TaskService) Get(taskID uint) (models.Task, error) {
	task, err := service.tasks.FindByID(taskID)
	if err != nil {
		return models.Task{}, lookupError("task", err)
	}
	return task, nil
}

func (service *TaskService) Create(input CreateTaskInput) (models.Task, error) {
	if input.ProjectID == 0 {
		return models.Task{}, validationError("projectId is required")
	}
	title, err := normalizeTaskTitle(input.Title)
	if err != nil {
		return models.Task{}, err
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.TaskStatusTodo
	}
	if status == models.TaskStatusDone {
		return models.Task{}, validationError("tasks are marked done through completion")
	}
	if !models.IsValidTaskStatus(status) {
		return models.Task{}, validationError("status must be todo, in_progress or archived")
	}

	priority := strings.TrimSpace(input.Priority)
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.IsValidTaskPriority(priority) {
		return models.Task{}, validationError("priority must be low, medium or high")
	}
	if err := validateEstimates(input.EstimatedMinutes, input.EstimatedIntensity); err != nil {
		return models.Task{}, err
	}

	column := strings.TrimSpace(input.BoardColumn)
	if column == "" {
		column = status
	}
	position, err := service.tasks.NextPosition(input.ProjectID, column)
	if err != nil {
		return models.Task{}, internalError("compute task position", err)
	}

	now := service.now()
	task := models.Task{
		ProjectID:          input.ProjectID,
		Title:              title,
		Description:        strings.TrimSpace(input.Description),
		Status:             status,
		Priority:           priority,
		EstimatedMinutes:   input.EstimatedMinutes,
		EstimatedIntensity: input.EstimatedIntensity,
		DueDate:            input.DueDate,
		BoardColumn:        column,
		Position:           position,
		CreatedAt:          now,
		UpdatedAt:          now,
		Tags:               []models.Tag{},
	}
	if err := service.tasks.Create(&task); err != nil {
		return models.Task{}, internalError("create task", err)
	}
	return task, nil
}

// Update applies a partial update. Reaching done is only possible through
// Complete; moving a done task back to an open status clears its completion.
func (service *TaskService) Update(taskID uint, input UpdateTaskInput) (models.Task, error) {
	task, err := service.Get(taskID)
	if err != nil {
		return models.Task{}, err
	}

	updates := make(map[string]any)
	if input.Title != nil {
		title, err := normalizeTaskTitle(*input.Title)
		if err != nil {
			return models.Task{}, err
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if status == models.TaskStatusDone && task.Status != models.TaskStatusDone {
			return models.Task{}, validationError("tasks are marked done through completion")
		}
		if !models.IsValidTaskStatus(status) {
			return models.Task{}, validationError("status must be todo, in_progress or archived")
		}
		if status != task.Status {
			updates["status"] = status
			if task.Status == models.TaskStatusDone {
				updates["completed_at"] = nil
				updates["actual_intensity"] = nil
			}
		}
	}
	if input.Priority != nil {
		if !models.IsValidTaskPriority(*input.Priority) {
			return models.Task{}, validationError("priority must be low, medium or high")
		}
		updates["priority"] = *input.Priority
	}

	minutes, intensity := task.EstimatedMinutes, task.EstimatedIntensity
	if input.EstimatedMinutes != nil {
		minutes = *input.EstimatedMinutes
		updates["estimated_minutes"] = minutes
	}
	if input.EstimatedIntensity != nil {
		intensity = *input.EstimatedIntensity
		updates["estimated_intensity"] = intensity
	}
	if err := validateEstimates(minutes, intensity); err != nil {
		return models.Task{}, err
	}

	if input.ClearDueDate {
		updates["due_date"] = nil
	} else if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.BoardColumn != nil {
		column := strings.TrimSpace(*input.BoardColumn)
		if column == "" {
			return models.Task{}, validationError("boardColumn must not be empty")
		}
		updates["board_column"] = column
	}
	if input.Position != nil {
		if *input.Position < 0 {
			return models.Task{}, validationError("position must not be negative")
		}
		updates["position"] = *input.Position
	}

	if len(updates) > 0 {
		updates["updated_at"] = service.now()
		if err := service.tasks.UpdateFields(task.ID, updates); err != nil {
			return models.Task{}, lookupError("task", err)
		}
	}
	return service.Get(task.ID)
}

func (service *TaskService) Delete(taskID uint) error {
	if err := service.tasks.Delete(taskID); err != nil {
		return lookupError("task", err)
	}
	return nil
}

// Reorder gives the listed tasks positions 0..n-1 inside one board column.
func (service *TaskService) Reorder(projectID uint, column string, orderedIDs []uint) error {
	column = strings.TrimSpace(column)
	if column == "" {
		return validationError("column is required")
	}
	seen := make(map[uint]struct{}, len(orderedIDs))
	for _, taskID := range orderedIDs {
		if _, duplicate := seen[taskID]; duplicate {
			return validationError("task ids must be unique")
		}
		seen[taskID] = struct{}{}
	}
	if err := service.tasks.Reorder(projectID, column, orderedIDs); err != nil {
		return internalError("reorder tasks", err)
	}
	return nil
}

// Complete marks the task done. Without explicit minutes the tracked
// session time is used, rounded up to whole minutes. Any running timer on
// the task is stopped.
func (service *TaskService) Complete(taskID uint, input CompleteTaskInput) (CompletionResult, error) {
	if input.ActualIntensity < models.MinIntensity || input.ActualIntensity > models.MaxIntensity {
		return CompletionResult{}, validationError("actualIntensity must be between 1 and 5")
	}
	if input.ActualMinutes != nil && *input.ActualMinutes < 0 {
		return CompletionResult{}, validationError("actualMinutes must not be negative")
	}

	task, err := service.Get(taskID)
	if err != nil {
		return CompletionResult{}, err
	}
	if task.Status == models.TaskStatusDone {
		return CompletionResult{}, conflictError("task is already completed")
	}

	minutes := input.ActualMinutes
	if minutes == nil {
		seconds, err := service.sessions.TrackedSecondsForTask(task.ID)
		if err != nil {
			return CompletionResult{}, internalError("load tracked time", err)
		}
		if seconds > 0 {
			tracked := int((seconds + 59) / 60)
			minutes = &tracked
		}
	}

	now := service.now()
	intensity := input.ActualIntensity
	task.Status = models.TaskStatusDone
	task.BoardColumn = models.TaskStatusDone
	task.ActualIntensity = &intensity
	task.ActualMinutes = minutes
	task.CompletedAt = &now

	completed, err := service.tasks.Complete(&task, now)
	if err != nil {
		return CompletionResult{}, internalError("complete task", err)
	}
	if !completed {
		return CompletionResult{}, conflictError("task is already completed")
	}

	result := CompletionResult{
		Task:           task,
		IntensityMatch: intensity == task.EstimatedIntensity,
	}
	if minutes != nil {
		accuracy := TimeAccuracy(*minutes, task.EstimatedMinutes)
		result.TimeAccuracy = &accuracy
	}
	return result, nil
}

// TimeAccuracy is round((actual-estimated)/estimated*100). A missing
// estimate yields 0.
func TimeAccuracy(actualMinutes int, estimatedMinutes int) int {
	if estimatedMinutes <= 0 {
		return 0
	}
	return int(math.Round(float64(actualMinutes-estimatedMinutes) / float64(estimatedMinutes) * 100))
}

func (service *TaskService) AttachTag(taskID uint, name string) (models.Task, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || utf8.RuneCountInString(name) > 40 {
		return models.Task{}, validationError("tag name must be 1 to 40 characters")
	}
	if _, err := service.Get(taskID); err != nil {
		return models.Task{}, err
	}

	tag, err := service.tags.FindOrCreate(name)
	if err != nil {
		return models.Task{}, internalError("save tag", err)
	}
	if err := service.tags.Attach(taskID, tag.ID); err != nil {
		return models.Task{}, internalError("attach tag", err)
	}
	return service.Get(taskID)
}

func (service *TaskService) DetachTag(taskID uint, tagID uint) (models.Task, error) {
	if _, err := service.Get(taskID); err != nil {
		return models.Task{}, err
	}
	if err := service.tags.Detach(taskID, tagID); err != nil {
		return models.Task{}, internalError("detach tag", err)
	}
	return service.Get(taskID)
}

func normalizeTaskTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", validationError("title is required")
	}
	if utf8.RuneCountInString(title) > maxTaskTitleLength {
		return "", validationError("title must be at most 200 characters")
	}
	return title, nil
}

func validateEstimates(minutes int, intensity int) error {
	if minutes < models.MinEstimatedMinutes || minutes > models.MaxEstimatedMinutes {
		return validationError("estimatedMinutes must be between 1 and 1440")
	}
	if intensity < models.MinIntensity || intensity > models.MaxIntensity {
		return validationError("estimatedIntensity must be between 1 and 5")
	}
	return nil
}
