package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/models"
	"github.com/terraincognita07/tempo/internal/services"
)

type reorderLinksInput struct {
	ProjectID  uint   `json:"projectId"`
	OrderedIDs []uint `json:"orderedIds"`
}

func (handler *Handler) authorizeQuickLink(c *fiber.Ctx, required services.PermissionLevel) (models.QuickLink, error) {
	linkID, err := paramID(c, "id")
	if err != nil {
		return models.QuickLink{}, err
	}
	link, err := handler.quickLinks.Get(linkID)
	if err != nil {
		return models.QuickLink{}, err
	}
	if err := handler.permissions.Authorize(currentIdentity(c), link.ProjectID, required); err != nil {
		return models.QuickLink{}, err
	}
	return link, nil
}

func (handler *Handler) ListQuickLinks(c *fiber.Ctx) error {
	projectID, err := queryID(c, "projectId")
	if err != nil {
		return respondError(c, err)
	}
	if projectID == nil {
		return respondError(c, invalidParameter("projectId"))
	}
	if err := handler.permissions.Authorize(currentIdentity(c), *projectID, services.PermissionViewOnly); err != nil {
		return respondError(c, err)
	}

	links, err := handler.quickLinks.List(*projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(links)
}

func (handler *Handler) CreateQuickLink(c *fiber.Ctx) error {
	var input services.CreateQuickLinkInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	if input.ProjectID == 0 {
		return respondError(c, invalidParameter("projectId"))
	}
	if err := handler.permissions.Authorize(currentIdentity(c), input.ProjectID, services.PermissionEditor); err != nil {
		return respondError(c, err)
	}

	link, err := handler.quickLinks.Create(input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

func (handler *Handler) UpdateQuickLink(c *fiber.Ctx) error {
	link, err := handler.authorizeQuickLink(c, services.PermissionEditor)
	if err != nil {
		return respondError(c, err)
	}

	var input services.UpdateQuickLinkInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	updated, err := handler.quickLinks.Update(link.ID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (handler *Handler) DeleteQuickLink(c *fiber.Ctx) error {
	link, err := handler.authorizeQuickLink(c, services.PermissionEditor)
	if err != nil {
		return respondError(c, err)
	}

	if err := handler.quickLinks.Delete(link.ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ReorderQuickLinks(c *fiber.Ctx) error {
	var input reorderLinksInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	if input.ProjectID == 0 {
		return respondError(c, invalidParameter("projectId"))
	}
	if err := handler.permissions.Authorize(currentIdentity(c), input.ProjectID, services.PermissionEditor); err != nil {
		return respondError(c, err)
	}

	if err := handler.quickLinks.Reorder(input.ProjectID, input.OrderedIDs); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
