package services

import (
	"strings"
	"time"

	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
)

type TimerSessionRepository interface {
	List(filters ...db.TimeSessionFilter) ([]models.TimeSession, error)
	FindByID(sessionID uint) (models.TimeSession, error)
	FindActiveByTask(taskID uint) (models.TimeSession, bool, error)
	StartForTask(task models.Task, userID *uint, description string, now time.Time) (models.TimeSession, []models.TimeSession, error)
	Stop(session *models.TimeSession) (bool, error)
	Create(session *models.TimeSession) error
	Delete(sessionID uint) error
}

type TimerTaskReader interface {
	FindByID(taskID uint) (models.Task, error)
}

// StopTarget selects the session to stop. Implementations are limited to
// StopBySession and StopByTask.
type StopTarget interface {
	stopTarget()
}

type StopBySession struct{ SessionID uint }

type StopByTask struct{ TaskID uint }

func (StopBySession) stopTarget() {}
func (StopByTask) stopTarget()    {}

type StartTimerResult struct {
	Session models.TimeSession   `json:"session"`
	Stopped []models.TimeSession `json:"stopped"`
}

// ManualSessionInput records time that was not tracked with the timer.
type ManualSessionInput struct {
	ProjectID   uint      `json:"projectId"`
	TaskID      *uint     `json:"taskId"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Description string    `json:"description"`
}

type TimerService struct {
	sessions TimerSessionRepository
	tasks    TimerTaskReader
	now      func() time.Time
}

func NewTimerService(sessions TimerSessionRepository, tasks TimerTaskReader, now func() time.Time) *TimerService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &TimerService{
		sessions: sessions,
		tasks:    tasks,
		now:      now,
	}
}

// Start begins tracking the task. Any session already running on the task
// is stopped first, so a task never has two active sessions.
func (service *TimerService) Start(taskID uint, userID *uint, description string) (StartTimerResult, error) {
	task, err := service.tasks.FindByID(taskID)
	if err != nil {
		return StartTimerResult{}, lookupError("task", err)
	}
	if task.Status == models.TaskStatusDone || task.Status == models.TaskStatusArchived {
		return StartTimerResult{}, validationError("time cannot be tracked on a closed task")
	}

	session, stopped, err := service.sessions.StartForTask(task, userID, strings.TrimSpace(description), service.now())
	if err != nil {
		return StartTimerResult{}, internalError("start timer", err)
	}
	return StartTimerResult{Session: session, Stopped: stopped}, nil
}

func (service *TimerService) Stop(target StopTarget) (models.TimeSession, error) {
	var session models.TimeSession
	switch typed := target.(type) {
	case StopBySession:
		found, err := service.sessions.FindByID(typed.SessionID)
		if err != nil {
			return models.TimeSession{}, lookupError("time session", err)
		}
		if !found.IsActive {
			return models.TimeSession{}, notFoundError("active time session")
		}
		session = found
	case StopByTask:
		found, ok, err := service.sessions.FindActiveByTask(typed.TaskID)
		if err != nil {
			return models.TimeSession{}, internalError("load active session", err)
		}
		if !ok {
			return models.TimeSession{}, notFoundError("active time session")
		}
		session = found
	default:
		return models.TimeSession{}, validationError("sessionId or taskId is required")
	}

	session.StopAt(service.now())
	stopped, err := service.sessions.Stop(&session)
	if err != nil {
		return models.TimeSession{}, internalError("stop timer", err)
	}
	if !stopped {
		return models.TimeSession{}, notFoundError("active time session")
	}
	return session, nil
}

// Record stores a finished session with explicit bounds.
func (service *TimerService) Record(input ManualSessionInput, userID *uint) (models.TimeSession, error) {
	if input.ProjectID == 0 {
		return models.TimeSession{}, validationError("projectId is required")
	}
	if input.StartTime.IsZero() || input.EndTime.IsZero() {
		return models.TimeSession{}, validationError("startTime and endTime are required")
	}
	if !input.EndTime.After(input.StartTime) {
		return models.TimeSession{}, validationError("endTime must be after startTime")
	}
	if input.TaskID != nil {
		task, err := service.tasks.FindByID(*input.TaskID)
		if err != nil {
			return models.TimeSession{}, lookupError("task", err)
		}
		if task.ProjectID != input.ProjectID {
			return models.TimeSession{}, validationError("task does not belong to the project")
		}
	}

	session := models.TimeSession{
		TaskID:      input.TaskID,
		ProjectID:   input.ProjectID,
		UserID:      userID,
		StartTime:   input.StartTime.UTC(),
		IsActive:    true,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   service.now(),
	}
	session.StopAt(input.EndTime.UTC())
	if err := service.sessions.Create(&session); err != nil {
		return models.TimeSession{}, internalError("record time session", err)
	}
	return session, nil
}

func (service *TimerService) Get(sessionID uint) (models.TimeSession, error) {
	session, err := service.sessions.FindByID(sessionID)
	if err != nil {
		return models.TimeSession{}, lookupError("time session", err)
	}
	return session, nil
}

func (service *TimerService) List(filters ...db.TimeSessionFilter) ([]models.TimeSession, error) {
	sessions, err := service.sessions.List(filters...)
	if err != nil {
		return nil, internalError("list time sessions", err)
	}
	return sessions, nil
}

// Active lists the running sessions started by the user.
func (service *TimerService) Active(userID uint) ([]models.TimeSession, error) {
	return service.List(db.SessionsByUser{UserID: userID}, db.ActiveSessions{})
}

func (service *TimerService) Delete(sessionID uint) error {
	if err := service.sessions.Delete(sessionID); err != nil {
		return lookupError("time session", err)
	}
	return nil
}
