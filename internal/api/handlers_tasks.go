package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
	"github.com/terraincognita07/tempo/internal/services"
)

type reorderTasksInput struct {
	ProjectID  uint   `json:"projectId"`
	Column     string `json:"column"`
	OrderedIDs []uint `json:"orderedIds"`
}

type tagInput struct {
	Name string `json:"name"`
}

// authorizeTask loads the :id task and checks the caller's level on its
// project.
func (handler *Handler) authorizeTask(c *fiber.Ctx, required services.PermissionLevel) (models.Task, error) {
	taskID, err := paramID(c, "id")
	if err != nil {
		return models.Task{}, err
	}
	task, err := handler.tasks.Get(taskID)
	if err != nil {
		return models.Task{}, err
	}
	if err := handler.permissions.Authorize(currentIdentity(c), task.ProjectID, required); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// visibleProjectIDs is the scope of listings that name no project.
func (handler *Handler) visibleProjectIDs(c *fiber.Ctx) ([]uint, error) {
	visible, err := handler.permissions.FindVisibleProjects(currentIdentity(c))
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(visible))
	for _, project := range visible {
		ids = append(ids, project.ID)
	}
	return ids, nil
}

func (handler *Handler) ListTasks(c *fiber.Ctx) error {
	projectID, err := queryID(c, "projectId")
	if err != nil {
		return respondError(c, err)
	}

	filters := make([]db.TaskFilter, 0, 3)
	if projectID != nil {
		if err := handler.permissions.Authorize(currentIdentity(c), *projectID, services.PermissionViewOnly); err != nil {
			return respondError(c, err)
		}
		filters = append(filters, db.TasksByProject{ProjectID: *projectID})
	} else {
		ids, err := handler.visibleProjectIDs(c)
		if err != nil {
			return respondError(c, err)
		}
		if len(ids) == 0 {
			return c.JSON([]models.Task{})
		}
		filters = append(filters, db.TasksByProjects{ProjectIDs: ids})
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filters = append(filters, db.TasksByStatus{Status: status})
	}
	if column := strings.TrimSpace(c.Query("column")); column != "" {
		filters = append(filters, db.TasksByColumn{Column: column})
	}

	tasks, err := handler.tasks.List(filters...)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tasks)
}

func (handler *Handler) CreateTask(c *fiber.Ctx) error {
	var input services.CreateTaskInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	if input.ProjectID == 0 {
		return respondError(c, invalidParameter("projectId"))
	}
	if err := handler.permissions.Authorize(currentIdentity(c), input.ProjectID, services.PermissionEditor); err != nil {
		return respondError(c, err)
	}

	task, err := handler.tasks.Create(input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (handler *Handler) GetTask(c *fiber.Ctx) error {
	task, err := handler.authorizeTask(c, services.PermissionViewOnly)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(task)
}

func (handler *Handler) UpdateTask(c *fiber.Ctx) error {
	task, err := handler.authorizeTask(c, services.PermissionEditor)
	if err != nil {
		return respondError(c, err)
	}

	var input services.UpdateTaskInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	updated, err := handler.tasks.Update(task.ID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (handler *Handler) DeleteTask(c *fiber.Ctx) error {
	task, err := handler.authorizeTask(c, services.PermissionEditor)
	if err != nil {
		return respondError(c, err)
	}

	if err := handler.tasks.Delete(task.ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) CompleteTask(c *fiber.Ctx) error {
	task, err := handler.authorizeTask(c, services.PermissionEditor)
	if err != nil {
		return respondError(c, err)
	}

	var input services.CompleteTaskInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	result, err := handler.tasks.Complete(task.ID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (handler *Handler) ReorderTasks(c *fiber.Ctx) error {
	var input reorderTasksInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	if input.ProjectID == 0 {
		return respondError(c, invalidParameter("projectId"))
	}
	if err := handler.permissions.Authorize(currentIdentity(c), input.ProjectID, services.PermissionEditor); err != nil {
		return respondError(c, err)
	}

	if err := handler.tasks.Reorder(input.ProjectID, input.Column, input.OrderedIDs); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) AttachTaskTag(c *fiber.Ctx) error {
	task, err := handler.authorizeTask(c, services.PermissionEditor)
	if err != nil {
		return respondError(c, err)
	}

	var input tagInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	updated, err := handler.tasks.AttachTag(task.ID, input.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (handler *Handler) DetachTaskTag(c *fiber.Ctx) error {
	task, err := handler.authorizeTask(c, services.PermissionEditor)
	if err != nil {
		return respondError(c, err)
	}
	tagID, err := paramID(c, "tagId")
	if err != nil {
		return respondError(c, err)
	}

	updated, err := handler.tasks.DetachTag(task.ID, tagID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}
