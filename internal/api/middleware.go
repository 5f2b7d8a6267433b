package api

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/models"
	"github.com/terraincognita07/tempo/internal/services"
)

const (
	sessionCookieName  = "tempo_session"
	contextIdentityKey = "identity"
	contextSessionKey  = "session_id"
)

func currentIdentity(c *fiber.Ctx) *services.Identity {
	identity, _ := c.Locals(contextIdentityKey).(*services.Identity)
	return identity
}

func currentSessionID(c *fiber.Ctx) string {
	sessionID, _ := c.Locals(contextSessionKey).(string)
	return sessionID
}

// ResolveIdentity attaches the caller to the request. Requests without a
// live session get a fresh anonymous one.
func (handler *Handler) ResolveIdentity(c *fiber.Ctx) error {
	identity, session, err := handler.sessionFromCookie(c)
	if err != nil {
		return respondError(c, err)
	}

	if session.ID == "" {
		session, err = handler.auth.StartAnonymousSession(sessionMeta(c))
		if err != nil {
			return respondError(c, err)
		}
		if err := handler.setSessionCookie(c, session); err != nil {
			return respondError(c, err)
		}
	}

	c.Locals(contextIdentityKey, identity)
	c.Locals(contextSessionKey, session.ID)
	handler.auth.MaybeSweep()
	return c.Next()
}

func (handler *Handler) sessionFromCookie(c *fiber.Ctx) (*services.Identity, models.AuthSession, error) {
	sessionID, err := services.ParseSessionToken(handler.secretKey, c.Cookies(sessionCookieName))
	if err != nil {
		return nil, models.AuthSession{}, nil
	}

	identity, session, err := handler.auth.ResolveSession(sessionID)
	switch {
	case errors.Is(err, services.ErrSessionExpired), errors.Is(err, services.ErrSessionUnknown):
		return nil, models.AuthSession{}, nil
	case err != nil:
		return nil, models.AuthSession{}, err
	}
	return identity, session, nil
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	if currentIdentity(c) == nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.Next()
}

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	identity := currentIdentity(c)
	if identity == nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !identity.IsAdmin() {
		return apiError(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

func (handler *Handler) setSessionCookie(c *fiber.Ctx, session models.AuthSession) error {
	token, err := services.BuildSessionToken(handler.secretKey, session.ID, session.ExpiresAt, time.Now().UTC())
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
	})
	return nil
}

func (handler *Handler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
	})
}

// replaceSession drops the session the request arrived with. Failures only
// leave an orphan row for the sweep to collect.
func (handler *Handler) replaceSession(c *fiber.Ctx) {
	previous := currentSessionID(c)
	if previous == "" {
		return
	}
	if err := handler.auth.Logout(previous, nil, sessionMeta(c)); err != nil {
		log.Printf("api: drop previous session failed: %v", err)
	}
}
