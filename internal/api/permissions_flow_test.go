package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestEditorFlowAndGrantBoundary(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)

	admin := registerUser(t, app, "admin")
	if admin.Role != "admin" || admin.Status != "approved" {
		t.Fatalf("expected first user to be an approved admin, got %+v", admin)
	}
	adminCookie := loginUser(t, app, "admin")

	erin := registerUser(t, app, "erin")
	if erin.Status != "pending" {
		t.Fatalf("expected second user pending, got %q", erin.Status)
	}
	pending := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "erin",
		"password": "correct horse 1",
	})
	expectStatus(t, pending, fiber.StatusForbidden, "pending login")
	approveUser(t, app, adminCookie, erin.ID)
	erinCookie := loginUser(t, app, "erin")

	work := createProject(t, app, adminCookie, map[string]any{"name": "Work"})
	grant := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/projects/%d/users", work.ID), adminCookie, map[string]any{
		"userId":          erin.ID,
		"permissionLevel": "editor",
	})
	expectStatus(t, grant, fiber.StatusOK, "grant editor")

	created := doRequest(t, app, http.MethodPost, "/api/tasks", erinCookie, map[string]any{
		"projectId":          work.ID,
		"title":              "Write report",
		"estimatedMinutes":   60,
		"estimatedIntensity": 3,
	})
	expectStatus(t, created, fiber.StatusCreated, "editor creates task")
	var task struct {
		ID uint `json:"id"`
	}
	created.decode(t, &task)

	completed := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), erinCookie, map[string]any{
		"actualIntensity": 3,
		"actualMinutes":   75,
	})
	expectStatus(t, completed, fiber.StatusOK, "editor completes task")
	var result struct {
		TimeAccuracy   *int `json:"timeAccuracy"`
		IntensityMatch bool `json:"intensityMatch"`
	}
	completed.decode(t, &result)
	if result.TimeAccuracy == nil || *result.TimeAccuracy != 25 || !result.IntensityMatch {
		t.Fatalf("unexpected completion result: %s", completed.body)
	}

	again := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), erinCookie, map[string]any{
		"actualIntensity": 3,
	})
	expectStatus(t, again, fiber.StatusConflict, "second completion")

	selfGrant := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/projects/%d/users", work.ID), erinCookie, map[string]any{
		"userId":          erin.ID,
		"permissionLevel": "project_admin",
	})
	expectStatus(t, selfGrant, fiber.StatusForbidden, "editor grants")

	revoke := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/projects/%d/users/%d", work.ID, admin.ID), erinCookie, nil)
	expectStatus(t, revoke, fiber.StatusForbidden, "editor revokes")

	archive := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/projects/%d/archive", work.ID), erinCookie, nil)
	expectStatus(t, archive, fiber.StatusForbidden, "editor archives")

	adminRevoke := doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/projects/%d/users/%d", work.ID, erin.ID), adminCookie, nil)
	expectStatus(t, adminRevoke, fiber.StatusNoContent, "admin revokes")

	afterRevoke := doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), erinCookie, nil)
	expectStatus(t, afterRevoke, fiber.StatusForbidden, "read after revoke")
}

func TestAnonymousSeesOnlyPublicProjects(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	registerUser(t, app, "admin")
	adminCookie := loginUser(t, app, "admin")

	private := createProject(t, app, adminCookie, map[string]any{"name": "Private"})
	public := createProject(t, app, adminCookie, map[string]any{"name": "Open", "isPublic": true})

	listed := doRequest(t, app, http.MethodGet, "/api/projects", "", nil)
	expectStatus(t, listed, fiber.StatusOK, "anonymous list")
	if listed.sessionCookie() == "" {
		t.Fatal("expected an anonymous session cookie")
	}
	var projects []projectPayload
	listed.decode(t, &projects)
	if len(projects) != 1 || projects[0].ID != public.ID || projects[0].Permission != nil {
		t.Fatalf("expected only the public project without a level, got %s", listed.body)
	}

	expectStatus(t, doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/projects/%d", public.ID), "", nil), fiber.StatusOK, "anonymous view public")
	expectStatus(t, doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/projects/%d", private.ID), "", nil), fiber.StatusUnauthorized, "anonymous view private")

	write := doRequest(t, app, http.MethodPost, "/api/tasks", "", map[string]any{
		"projectId":          public.ID,
		"title":              "Drive-by",
		"estimatedMinutes":   10,
		"estimatedIntensity": 1,
	})
	expectStatus(t, write, fiber.StatusUnauthorized, "anonymous write")

	expectStatus(t, doRequest(t, app, http.MethodPost, "/api/projects", "", map[string]any{"name": "Nope"}), fiber.StatusUnauthorized, "anonymous create project")
	expectStatus(t, doRequest(t, app, http.MethodGet, "/api/projects/999", adminCookie, nil), fiber.StatusNotFound, "missing project")
}

func TestProjectTreeMoveAndStats(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	registerUser(t, app, "admin")
	cookie := loginUser(t, app, "admin")

	root := createProject(t, app, cookie, map[string]any{"name": "X"})
	b := createProject(t, app, cookie, map[string]any{"name": "B"})
	c := createProject(t, app, cookie, map[string]any{"name": "C", "parentId": b.ID})

	moved := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/projects/%d/move", b.ID), cookie, map[string]any{"parentId": root.ID})
	expectStatus(t, moved, fiber.StatusOK, "move")

	descendants := doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/projects/%d/descendants", root.ID), cookie, nil)
	expectStatus(t, descendants, fiber.StatusOK, "descendants")
	var nodes []projectPayload
	descendants.decode(t, &nodes)
	if len(nodes) != 2 || nodes[1].ID != c.ID || nodes[1].Path != "X/B/C" || nodes[1].Depth != 2 {
		t.Fatalf("unexpected descendants after move: %s", descendants.body)
	}

	cycle := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/projects/%d/move", root.ID), cookie, map[string]any{"parentId": c.ID})
	expectStatus(t, cycle, fiber.StatusBadRequest, "cycle")

	doRequest(t, app, http.MethodPost, "/api/tasks", cookie, map[string]any{
		"projectId": c.ID, "title": "Leaf", "estimatedMinutes": 30, "estimatedIntensity": 2,
	})
	subtree := doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/projects/%d/stats?subtree=1", root.ID), cookie, nil)
	expectStatus(t, subtree, fiber.StatusOK, "subtree stats")
	var stats struct {
		TotalTasks int64 `json:"totalTasks"`
	}
	subtree.decode(t, &stats)
	if stats.TotalTasks != 1 {
		t.Fatalf("expected subtree to count the leaf task, got %s", subtree.body)
	}

	tree := doRequest(t, app, http.MethodGet, "/api/projects/tree?stats=1", cookie, nil)
	expectStatus(t, tree, fiber.StatusOK, "tree")
	var forest struct {
		Roots []struct {
			ID           uint `json:"id"`
			SubtreeStats struct {
				TotalTasks int64 `json:"totalTasks"`
			} `json:"subtreeStats"`
		} `json:"roots"`
	}
	tree.decode(t, &forest)
	if len(forest.Roots) != 1 || forest.Roots[0].ID != root.ID || forest.Roots[0].SubtreeStats.TotalTasks != 1 {
		t.Fatalf("unexpected tree: %s", tree.body)
	}

	expectStatus(t, doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/projects/%d", root.ID), cookie, nil), fiber.StatusConflict, "delete without force")
	expectStatus(t, doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/projects/%d?force=1", root.ID), cookie, nil), fiber.StatusNoContent, "forced delete")
}

func TestTimerEndpoints(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	registerUser(t, app, "admin")
	cookie := loginUser(t, app, "admin")
	project := createProject(t, app, cookie, map[string]any{"name": "Timers"})

	created := doRequest(t, app, http.MethodPost, "/api/tasks", cookie, map[string]any{
		"projectId": project.ID, "title": "Focus", "estimatedMinutes": 25, "estimatedIntensity": 4,
	})
	var task struct {
		ID uint `json:"id"`
	}
	created.decode(t, &task)

	started := doRequest(t, app, http.MethodPost, "/api/time-sessions/start", cookie, map[string]any{"taskId": task.ID})
	expectStatus(t, started, fiber.StatusCreated, "start")

	active := doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/time-sessions?taskId=%d&active=1", task.ID), cookie, nil)
	expectStatus(t, active, fiber.StatusOK, "list active")
	var sessions []struct {
		ID       uint `json:"id"`
		IsActive bool `json:"isActive"`
	}
	active.decode(t, &sessions)
	if len(sessions) != 1 || !sessions[0].IsActive {
		t.Fatalf("expected one active session, got %s", active.body)
	}

	expectStatus(t, doRequest(t, app, http.MethodPost, "/api/time-sessions/stop", cookie, map[string]any{"taskId": task.ID}), fiber.StatusOK, "stop")
	expectStatus(t, doRequest(t, app, http.MethodPost, "/api/time-sessions/stop", cookie, map[string]any{"taskId": task.ID}), fiber.StatusNotFound, "stop again")
	expectStatus(t, doRequest(t, app, http.MethodPost, "/api/time-sessions/stop", cookie, map[string]any{}), fiber.StatusBadRequest, "stop without target")
	expectStatus(t, doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/time-sessions/%d", sessions[0].ID), cookie, nil), fiber.StatusNoContent, "delete session")
}
