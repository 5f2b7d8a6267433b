package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
	"github.com/terraincognita07/tempo/internal/services"
)

type startTimerInput struct {
	TaskID      uint   `json:"taskId"`
	Description string `json:"description"`
}

type stopTimerInput struct {
	SessionID *uint `json:"sessionId"`
	TaskID    *uint `json:"taskId"`
}

func (handler *Handler) ListTimeSessions(c *fiber.Ctx) error {
	projectID, err := queryID(c, "projectId")
	if err != nil {
		return respondError(c, err)
	}
	taskID, err := queryID(c, "taskId")
	if err != nil {
		return respondError(c, err)
	}

	identity := currentIdentity(c)
	filters := make([]db.TimeSessionFilter, 0, 3)
	if taskID != nil {
		task, err := handler.tasks.Get(*taskID)
		if err != nil {
			return respondError(c, err)
		}
		if err := handler.permissions.Authorize(identity, task.ProjectID, services.PermissionViewOnly); err != nil {
			return respondError(c, err)
		}
		filters = append(filters, db.SessionsByTask{TaskID: task.ID})
	}
	if projectID != nil {
		if err := handler.permissions.Authorize(identity, *projectID, services.PermissionViewOnly); err != nil {
			return respondError(c, err)
		}
		filters = append(filters, db.SessionsByProject{ProjectID: *projectID})
	}
	if taskID == nil && projectID == nil {
		ids, err := handler.visibleProjectIDs(c)
		if err != nil {
			return respondError(c, err)
		}
		if len(ids) == 0 {
			return c.JSON([]models.TimeSession{})
		}
		filters = append(filters, db.SessionsByProjects{ProjectIDs: ids})
	}
	if queryBool(c, "active") {
		filters = append(filters, db.ActiveSessions{})
	}

	sessions, err := handler.timer.List(filters...)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessions)
}

func (handler *Handler) ActiveTimeSessions(c *fiber.Ctx) error {
	sessions, err := handler.timer.Active(currentIdentity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessions)
}

func (handler *Handler) StartTimer(c *fiber.Ctx) error {
	var input startTimerInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	if input.TaskID == 0 {
		return respondError(c, invalidParameter("taskId"))
	}

	identity := currentIdentity(c)
	task, err := handler.tasks.Get(input.TaskID)
	if err != nil {
		return respondError(c, err)
	}
	if err := handler.permissions.Authorize(identity, task.ProjectID, services.PermissionEditor); err != nil {
		return respondError(c, err)
	}

	result, err := handler.timer.Start(task.ID, identity.UserIDPtr(), input.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// StopTimer accepts either a session id or a task id; the session id wins
// when both are given.
func (handler *Handler) StopTimer(c *fiber.Ctx) error {
	var input stopTimerInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}

	var (
		target    services.StopTarget
		projectID uint
	)
	switch {
	case input.SessionID != nil:
		session, err := handler.timer.Get(*input.SessionID)
		if err != nil {
			return respondError(c, err)
		}
		target = services.StopBySession{SessionID: session.ID}
		projectID = session.ProjectID
	case input.TaskID != nil:
		task, err := handler.tasks.Get(*input.TaskID)
		if err != nil {
			return respondError(c, err)
		}
		target = services.StopByTask{TaskID: task.ID}
		projectID = task.ProjectID
	default:
		return respondError(c, invalidParameter("sessionId or taskId"))
	}

	if err := handler.permissions.Authorize(currentIdentity(c), projectID, services.PermissionEditor); err != nil {
		return respondError(c, err)
	}
	session, err := handler.timer.Stop(target)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (handler *Handler) RecordTimeSession(c *fiber.Ctx) error {
	var input services.ManualSessionInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	if input.ProjectID == 0 {
		return respondError(c, invalidParameter("projectId"))
	}

	identity := currentIdentity(c)
	if err := handler.permissions.Authorize(identity, input.ProjectID, services.PermissionEditor); err != nil {
		return respondError(c, err)
	}
	session, err := handler.timer.Record(input, identity.UserIDPtr())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (handler *Handler) DeleteTimeSession(c *fiber.Ctx) error {
	sessionID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	session, err := handler.timer.Get(sessionID)
	if err != nil {
		return respondError(c, err)
	}
	if err := handler.permissions.Authorize(currentIdentity(c), session.ProjectID, services.PermissionEditor); err != nil {
		return respondError(c, err)
	}

	if err := handler.timer.Delete(session.ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
