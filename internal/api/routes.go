package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.ResolveIdentity)

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)
	auth.Get("/me", handler.Me)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	projects := api.Group("/projects")
	projects.Get("", handler.ListProjects)
	projects.Post("", handler.AuthRequired, handler.CreateProject)
	projects.Get("/tree", handler.ProjectTree)
	projects.Get("/:id", handler.GetProject)
	projects.Put("/:id", handler.UpdateProject)
	projects.Patch("/:id", handler.UpdateProject)
	projects.Delete("/:id", handler.DeleteProject)
	projects.Post("/:id/move", handler.AuthRequired, handler.MoveProject)
	projects.Post("/:id/archive", handler.ArchiveProject)
	projects.Patch("/:id/expanded", handler.SetProjectExpanded)
	projects.Get("/:id/ancestors", handler.ProjectAncestors)
	projects.Get("/:id/descendants", handler.ProjectDescendants)
	projects.Get("/:id/stats", handler.ProjectStats)
	projects.Get("/:id/users", handler.ListProjectUsers)
	projects.Post("/:id/users", handler.AuthRequired, handler.GrantProjectUser)
	projects.Delete("/:id/users/:userId", handler.RevokeProjectUser)

	tasks := api.Group("/tasks")
	tasks.Get("", handler.ListTasks)
	tasks.Post("", handler.CreateTask)
	tasks.Post("/reorder", handler.ReorderTasks)
	tasks.Get("/:id", handler.GetTask)
	tasks.Put("/:id", handler.UpdateTask)
	tasks.Patch("/:id", handler.UpdateTask)
	tasks.Delete("/:id", handler.DeleteTask)
	tasks.Post("/:id/complete", handler.CompleteTask)
	tasks.Post("/:id/tags", handler.AttachTaskTag)
	tasks.Delete("/:id/tags/:tagId", handler.DetachTaskTag)

	timeSessions := api.Group("/time-sessions")
	timeSessions.Get("", handler.ListTimeSessions)
	timeSessions.Post("", handler.RecordTimeSession)
	timeSessions.Get("/active", handler.AuthRequired, handler.ActiveTimeSessions)
	timeSessions.Post("/start", handler.StartTimer)
	timeSessions.Post("/stop", handler.StopTimer)
	timeSessions.Delete("/:id", handler.DeleteTimeSession)

	quickLinks := api.Group("/quick-links")
	quickLinks.Get("", handler.ListQuickLinks)
	quickLinks.Post("", handler.CreateQuickLink)
	quickLinks.Post("/reorder", handler.ReorderQuickLinks)
	quickLinks.Put("/:id", handler.UpdateQuickLink)
	quickLinks.Patch("/:id", handler.UpdateQuickLink)
	quickLinks.Delete("/:id", handler.DeleteQuickLink)

	analytics := api.Group("/analytics")
	analytics.Get("/summary", handler.AnalyticsSummary)

	admin := api.Group("/admin", handler.AdminOnly)
	admin.Get("/users", handler.ListUsers)
	admin.Patch("/users/:id", handler.UpdateUser)
	admin.Put("/users/:id", handler.UpdateUser)
	admin.Get("/activities", handler.ListActivities)
}
