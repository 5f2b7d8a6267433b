package models

import "time"

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
	TaskStatusArchived   = "archived"
)

const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

const (
	MinEstimatedMinutes = 1
	MaxEstimatedMinutes = 1440
	MinIntensity        = 1
	MaxIntensity        = 5
)

type Task struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	ProjectID          uint       `gorm:"not null;index" json:"projectId"`
	Title              string     `gorm:"not null" json:"title"`
	Description        string     `gorm:"not null;default:''" json:"description"`
	Status             string     `gorm:"not null;default:todo" json:"status"`
	Priority           string     `gorm:"not null;default:medium" json:"priority"`
	EstimatedMinutes   int        `gorm:"not null" json:"estimatedMinutes"`
	EstimatedIntensity int        `gorm:"not null" json:"estimatedIntensity"`
	ActualMinutes      *int       `json:"actualMinutes"`
	ActualIntensity    *int       `json:"actualIntensity"`
	DueDate            *time.Time `json:"dueDate"`
	BoardColumn        string     `gorm:"not null;default:todo" json:"boardColumn"`
	Position           int        `gorm:"not null" json:"position"`
	CompletedAt        *time.Time `json:"completedAt"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	Project *Project `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tags    []Tag    `gorm:"many2many:task_tags;constraint:OnDelete:CASCADE" json:"tags"`
}

func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusArchived:
		return true
	default:
		return false
	}
}

func IsValidTaskPriority(priority string) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}
