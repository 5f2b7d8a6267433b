package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/config"
	"github.com/terraincognita07/tempo/internal/db"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

func newTestApp(t *testing.T, configure func(cfg *config.Config)) (*fiber.App, *Handler) {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.SecretKey = testSecretKey
	cfg.Database.DSN = filepath.Join(t.TempDir(), "tempo-api.db")
	cfg.Sessions.SweepProbability = 0
	if configure != nil {
		configure(cfg)
	}

	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("load sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	handler, err := NewHandler(database, cfg)
	if err != nil {
		t.Fatalf("NewHandler returned error: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, handler)
	return app, handler
}

type testResponse struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

func (response testResponse) decode(t *testing.T, target any) {
	t.Helper()
	if err := json.Unmarshal(response.body, target); err != nil {
		t.Fatalf("decode %s: %v", response.body, err)
	}
}

func (response testResponse) errorMessage(t *testing.T) string {
	t.Helper()
	payload := map[string]string{}
	response.decode(t, &payload)
	return payload["error"]
}

// sessionCookie returns the last session cookie the response set, formatted
// for a Cookie header.
func (response testResponse) sessionCookie() string {
	value := ""
	for _, cookie := range response.cookies {
		if cookie.Name == sessionCookieName {
			value = cookie.Value
		}
	}
	if value == "" {
		return ""
	}
	return sessionCookieName + "=" + value
}

func doRequest(t *testing.T, app *fiber.App, method string, path string, cookie string, payload any) testResponse {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("%s %s read body failed: %v", method, path, err)
	}
	return testResponse{status: response.StatusCode, body: raw, cookies: response.Cookies()}
}

func expectStatus(t *testing.T, response testResponse, want int, context string) {
	t.Helper()
	if response.status != want {
		t.Fatalf("%s: expected status %d, got %d (%s)", context, want, response.status, response.body)
	}
}

type userPayload struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func registerUser(t *testing.T, app *fiber.App, username string) userPayload {
	t.Helper()

	response := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"password": "correct horse 1",
	})
	expectStatus(t, response, fiber.StatusCreated, "register "+username)

	var payload struct {
		User userPayload `json:"user"`
	}
	response.decode(t, &payload)
	return payload.User
}

func loginUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	response := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": username,
		"password": "correct horse 1",
	})
	expectStatus(t, response, fiber.StatusOK, "login "+username)

	cookie := response.sessionCookie()
	if cookie == "" {
		t.Fatalf("login %s set no session cookie", username)
	}
	return cookie
}

func approveUser(t *testing.T, app *fiber.App, adminCookie string, userID uint) {
	t.Helper()

	response := doRequest(t, app, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d", userID), adminCookie, map[string]string{
		"status": "approved",
	})
	expectStatus(t, response, fiber.StatusOK, "approve user")
}

type projectPayload struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	Depth      int     `json:"depth"`
	IsPublic   bool    `json:"isPublic"`
	Permission *string `json:"permission"`
}

func createProject(t *testing.T, app *fiber.App, cookie string, payload map[string]any) projectPayload {
	t.Helper()

	response := doRequest(t, app, http.MethodPost, "/api/projects", cookie, payload)
	expectStatus(t, response, fiber.StatusCreated, "create project")

	var project projectPayload
	response.decode(t, &project)
	return project
}
