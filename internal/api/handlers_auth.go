package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/models"
	"github.com/terraincognita07/tempo/internal/services"
)

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}

	user, err := handler.auth.Register(input, sessionMeta(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":             user,
		"requiresApproval": user.Status != models.UserStatusApproved,
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}

	limiterKey := loginLimiterKey(c, input.Username)
	now := time.Now().UTC()
	if handler.loginLimiter.tooManyRecent(limiterKey, now, handler.loginMaxAttempts, handler.loginWindow) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, session, err := handler.auth.Login(input, sessionMeta(c))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			handler.loginLimiter.addFailure(limiterKey, now, handler.loginWindow)
		}
		return respondError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)

	handler.replaceSession(c)
	if err := handler.setSessionCookie(c, session); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user, "expiresAt": session.ExpiresAt})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	if err := handler.auth.Logout(currentSessionID(c), currentIdentity(c), sessionMeta(c)); err != nil {
		return respondError(c, err)
	}
	handler.clearSessionCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	setupRequired, err := handler.auth.RequiresInitialSetup()
	if err != nil {
		return respondError(c, err)
	}

	identity := currentIdentity(c)
	if identity == nil {
		return c.JSON(fiber.Map{"authenticated": false, "user": nil, "setupRequired": setupRequired})
	}
	user, err := handler.auth.CurrentUser(identity.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"authenticated": true, "user": user, "setupRequired": setupRequired})
}

// ChangePassword signs the user out of every session, this one included.
func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	var input changePasswordInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}

	identity := currentIdentity(c)
	if err := handler.auth.ChangePassword(identity.UserID, input.CurrentPassword, input.NewPassword, sessionMeta(c)); err != nil {
		return respondError(c, err)
	}
	handler.clearSessionCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}
