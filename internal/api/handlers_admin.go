package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/services"
)

func (handler *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := handler.admin.ListUsers()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (handler *Handler) UpdateUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var input services.UpdateUserInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	user, err := handler.admin.UpdateUser(currentIdentity(c).UserID, userID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (handler *Handler) ListActivities(c *fiber.Ctx) error {
	activities, err := handler.admin.ListActivities(c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(activities)
}
