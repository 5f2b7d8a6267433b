package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/models"
	"github.com/terraincognita07/tempo/internal/services"
)

type moveProjectInput struct {
	ParentID *uint `json:"parentId"`
}

type expandedInput struct {
	Expanded bool `json:"expanded"`
}

type grantInput struct {
	UserID          uint   `json:"userId"`
	PermissionLevel string `json:"permissionLevel"`
}

// authorizeProject reads the :id parameter and checks the caller's level on
// that project.
func (handler *Handler) authorizeProject(c *fiber.Ctx, required services.PermissionLevel) (uint, error) {
	projectID, err := paramID(c, "id")
	if err != nil {
		return 0, err
	}
	if err := handler.permissions.Authorize(currentIdentity(c), projectID, required); err != nil {
		return 0, err
	}
	return projectID, nil
}

func (handler *Handler) ListProjects(c *fiber.Ctx) error {
	projects, err := handler.permissions.FindVisibleProjects(currentIdentity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(projects)
}

func (handler *Handler) CreateProject(c *fiber.Ctx) error {
	var input services.CreateProjectInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}

	identity := currentIdentity(c)
	if input.ParentID != nil {
		if err := handler.permissions.Authorize(identity, *input.ParentID, services.PermissionEditor); err != nil {
			return respondError(c, err)
		}
	}

	project, err := handler.projects.Create(input, identity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (handler *Handler) ProjectTree(c *fiber.Ctx) error {
	tree, err := handler.projects.GetTree(currentIdentity(c), queryBool(c, "stats"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"roots": tree.Roots, "byId": tree.Flat()})
}

func (handler *Handler) GetProject(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionViewOnly)
	if err != nil {
		return respondError(c, err)
	}

	project, err := handler.projects.Get(projectID)
	if err != nil {
		return respondError(c, err)
	}
	level, err := handler.permissions.EffectiveLevel(currentIdentity(c), projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(services.VisibleProject{Project: project, Permission: level})
}

func (handler *Handler) UpdateProject(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionEditor)
	if err != nil {
		return respondError(c, err)
	}

	var input services.UpdateProjectInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	project, err := handler.projects.Update(projectID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// MoveProject needs project_admin on the node and editor on the new parent.
// Moving to the root only needs the former.
func (handler *Handler) MoveProject(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionProjectAdmin)
	if err != nil {
		return respondError(c, err)
	}

	var input moveProjectInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	if input.ParentID != nil {
		if err := handler.permissions.Authorize(currentIdentity(c), *input.ParentID, services.PermissionEditor); err != nil {
			return respondError(c, err)
		}
	}

	project, err := handler.projects.Move(projectID, input.ParentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

func (handler *Handler) ArchiveProject(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionProjectAdmin)
	if err != nil {
		return respondError(c, err)
	}

	archived, err := handler.projects.Archive(projectID, queryBool(c, "cascade"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"archived": archived})
}

func (handler *Handler) SetProjectExpanded(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionViewOnly)
	if err != nil {
		return respondError(c, err)
	}

	var input expandedInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	project, err := handler.projects.SetExpanded(projectID, input.Expanded)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

func (handler *Handler) DeleteProject(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionProjectAdmin)
	if err != nil {
		return respondError(c, err)
	}

	if err := handler.projects.Delete(projectID, queryBool(c, "force")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ProjectAncestors(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionViewOnly)
	if err != nil {
		return respondError(c, err)
	}

	ancestors, err := handler.projects.FindAncestors(projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ancestors)
}

func (handler *Handler) ProjectDescendants(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionViewOnly)
	if err != nil {
		return respondError(c, err)
	}

	maxDepth, err := queryInt(c, "maxDepth")
	if err != nil {
		return respondError(c, err)
	}
	descendants, err := handler.projects.FindDescendants(projectID, maxDepth)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(descendants)
}

func (handler *Handler) ProjectStats(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionViewOnly)
	if err != nil {
		return respondError(c, err)
	}

	if queryBool(c, "subtree") {
		stats, err := handler.stats.SubtreeStats(projectID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	}

	direct, err := handler.stats.DirectStats([]uint{projectID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(direct[projectID])
}

func (handler *Handler) ListProjectUsers(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionProjectAdmin)
	if err != nil {
		return respondError(c, err)
	}

	grants, err := handler.permissions.ListGrants(projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(grants)
}

func (handler *Handler) GrantProjectUser(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionProjectAdmin)
	if err != nil {
		return respondError(c, err)
	}

	var input grantInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, err)
	}
	if input.UserID == 0 {
		return respondError(c, invalidParameter("userId"))
	}
	level, err := services.ParsePermissionLevel(input.PermissionLevel)
	if err != nil {
		return respondError(c, err)
	}

	identity := currentIdentity(c)
	grant, err := handler.permissions.Grant(projectID, input.UserID, level, identity.UserIDPtr())
	if err != nil {
		return respondError(c, err)
	}
	handler.activity.Record(identity.UserIDPtr(), models.ActivityGrantChanged,
		fmt.Sprintf("project=%d user=%d level=%s", projectID, input.UserID, level), c.IP())
	return c.JSON(grant)
}

func (handler *Handler) RevokeProjectUser(c *fiber.Ctx) error {
	projectID, err := handler.authorizeProject(c, services.PermissionProjectAdmin)
	if err != nil {
		return respondError(c, err)
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}

	if err := handler.permissions.Revoke(projectID, userID); err != nil {
		return respondError(c, err)
	}
	handler.activity.Record(currentIdentity(c).UserIDPtr(), models.ActivityGrantChanged,
		fmt.Sprintf("project=%d user=%d level=none", projectID, userID), c.IP())
	return c.SendStatus(fiber.StatusNoContent)
}
