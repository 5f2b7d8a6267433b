package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/config"
)

func TestMeReportsAnonymousAndSignedInCallers(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)

	anonymous := doRequest(t, app, http.MethodGet, "/api/auth/me", "", nil)
	expectStatus(t, anonymous, fiber.StatusOK, "anonymous me")
	var payload struct {
		Authenticated bool         `json:"authenticated"`
		SetupRequired bool         `json:"setupRequired"`
		User          *userPayload `json:"user"`
	}
	anonymous.decode(t, &payload)
	if payload.Authenticated || payload.User != nil || !payload.SetupRequired {
		t.Fatalf("unexpected anonymous payload: %s", anonymous.body)
	}

	anonymousCookie := anonymous.sessionCookie()
	if anonymousCookie == "" {
		t.Fatal("expected anonymous session cookie")
	}
	reused := doRequest(t, app, http.MethodGet, "/api/auth/me", anonymousCookie, nil)
	if reused.sessionCookie() != "" {
		t.Fatal("expected a live anonymous session to be reused")
	}

	registerUser(t, app, "ada")
	cookie := loginUser(t, app, "ada")
	signedIn := doRequest(t, app, http.MethodGet, "/api/auth/me", cookie, nil)
	expectStatus(t, signedIn, fiber.StatusOK, "signed-in me")
	payload.User = nil
	signedIn.decode(t, &payload)
	if !payload.Authenticated || payload.User == nil || payload.User.Username != "ada" || payload.SetupRequired {
		t.Fatalf("unexpected signed-in payload: %s", signedIn.body)
	}
	if strings.Contains(string(signedIn.body), "passwordHash") || strings.Contains(string(signedIn.body), "$2a$") {
		t.Fatalf("me leaked the password hash: %s", signedIn.body)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	registerUser(t, app, "ada")

	response := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ada",
		"password": "wrong password 1",
	})
	expectStatus(t, response, fiber.StatusUnauthorized, "wrong password")
	if got := response.errorMessage(t); got != "invalid username or password" {
		t.Fatalf("unexpected error %q", got)
	}

	unknown := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "correct horse 1",
	})
	expectStatus(t, unknown, fiber.StatusUnauthorized, "unknown user")
}

func TestLoginIsRateLimited(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, func(cfg *config.Config) {
		cfg.Auth.LoginMaxAttempts = 2
	})
	registerUser(t, app, "ada")

	for attempt := 0; attempt < 2; attempt++ {
		response := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "ada",
			"password": "wrong password 1",
		})
		expectStatus(t, response, fiber.StatusUnauthorized, "failed attempt")
	}

	blocked := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "ada",
		"password": "correct horse 1",
	})
	expectStatus(t, blocked, fiber.StatusTooManyRequests, "blocked attempt")
}

func TestLogoutEndsTheSession(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	registerUser(t, app, "ada")
	cookie := loginUser(t, app, "ada")

	expectStatus(t, doRequest(t, app, http.MethodPost, "/api/auth/logout", cookie, nil), fiber.StatusOK, "logout")

	after := doRequest(t, app, http.MethodPost, "/api/auth/change-password", cookie, map[string]string{
		"currentPassword": "correct horse 1",
		"newPassword":     "another horse 2",
	})
	expectStatus(t, after, fiber.StatusUnauthorized, "change password after logout")
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	registerUser(t, app, "ada")
	cookie := loginUser(t, app, "ada")
	other := loginUser(t, app, "ada")

	weak := doRequest(t, app, http.MethodPost, "/api/auth/change-password", cookie, map[string]string{
		"currentPassword": "correct horse 1",
		"newPassword":     "short",
	})
	expectStatus(t, weak, fiber.StatusBadRequest, "weak password")

	changed := doRequest(t, app, http.MethodPost, "/api/auth/change-password", cookie, map[string]string{
		"currentPassword": "correct horse 1",
		"newPassword":     "another horse 2",
	})
	expectStatus(t, changed, fiber.StatusOK, "change password")

	expectStatus(t, doRequest(t, app, http.MethodGet, "/api/time-sessions/active", other, nil), fiber.StatusUnauthorized, "other session after change")
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	registerUser(t, app, "ada")

	duplicate := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ADA",
		"password": "correct horse 1",
	})
	expectStatus(t, duplicate, fiber.StatusConflict, "duplicate username")

	weak := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "grace",
		"password": "password",
	})
	expectStatus(t, weak, fiber.StatusBadRequest, "weak password")

	request := doRequest(t, app, http.MethodPost, "/api/auth/register", "", nil)
	expectStatus(t, request, fiber.StatusBadRequest, "empty body")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	registerUser(t, app, "admin")
	adminCookie := loginUser(t, app, "admin")
	member := registerUser(t, app, "member")
	approveUser(t, app, adminCookie, member.ID)
	memberCookie := loginUser(t, app, "member")

	expectStatus(t, doRequest(t, app, http.MethodGet, "/api/admin/users", "", nil), fiber.StatusUnauthorized, "anonymous admin")
	expectStatus(t, doRequest(t, app, http.MethodGet, "/api/admin/users", memberCookie, nil), fiber.StatusForbidden, "member admin")

	activities := doRequest(t, app, http.MethodGet, "/api/admin/activities?limit=10", adminCookie, nil)
	expectStatus(t, activities, fiber.StatusOK, "activities")
	if !strings.Contains(string(activities.body), "user_updated") {
		t.Fatalf("expected the approval in the activity log, got %s", activities.body)
	}
}
