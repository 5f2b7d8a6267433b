package services

import (
	"bytes"
	"encoding/json"
	"log"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
)

type PermissionProjectRepository interface {
	FindByID(projectID uint) (models.Project, error)
	List(filters ...db.ProjectFilter) ([]models.Project, error)
}

type PermissionGrantRepository interface {
	Find(userID uint, projectID uint) (models.ProjectUser, bool, error)
	ListByUser(userID uint) ([]models.ProjectUser, error)
	ListByProject(projectID uint) ([]models.ProjectUser, error)
	Upsert(grant *models.ProjectUser) error
	Delete(userID uint, projectID uint) error
}

type PermissionUserRepository interface {
	FindByID(userID uint) (models.User, error)
}

// VisibleProject is a project annotated with the caller's effective level.
// Permission is nil when the project is visible only because it is public.
type VisibleProject struct {
	models.Project
	Permission *PermissionLevel `json:"permission"`
}

type PermissionService struct {
	projects     PermissionProjectRepository
	grants       PermissionGrantRepository
	users        PermissionUserRepository
	legacyAccess bool
	now          func() time.Time
}

func NewPermissionService(projects PermissionProjectRepository, grants PermissionGrantRepository, users PermissionUserRepository, legacyAccess bool) *PermissionService {
	return &PermissionService{
		projects:     projects,
		grants:       grants,
		users:        users,
		legacyAccess: legacyAccess,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Resolve decides whether identity may act on the project with the required
// level. Admins always pass, anonymous callers may only view public
// projects, and everyone else needs a grant unless viewing a public project.
func (service *PermissionService) Resolve(identity *Identity, projectID uint, required PermissionLevel) (bool, error) {
	if !required.Valid() {
		return false, validationError("invalid permission level")
	}

	project, err := service.projects.FindByID(projectID)
	if err != nil {
		return false, lookupError("project", err)
	}
	return service.resolveProject(identity, project, required)
}

// Authorize is Resolve returning an error for a denial: unauthorized for
// anonymous callers and permission denied for signed-in ones.
func (service *PermissionService) Authorize(identity *Identity, projectID uint, required PermissionLevel) error {
	granted, err := service.Resolve(identity, projectID, required)
	if err != nil {
		return err
	}
	if granted {
		return nil
	}
	if identity == nil {
		return &Error{Kind: ErrUnauthenticated, Message: "unauthorized"}
	}
	return permissionError("insufficient project permission")
}

func (service *PermissionService) resolveProject(identity *Identity, project models.Project, required PermissionLevel) (bool, error) {
	if identity == nil {
		return project.IsPublic && required == PermissionViewOnly, nil
	}
	if identity.IsAdmin() {
		return true, nil
	}
	if project.IsPublic && required == PermissionViewOnly {
		return true, nil
	}

	level, err := service.grantedLevel(identity.UserID, project.ID)
	if err != nil {
		return false, err
	}
	if level == nil {
		return false, nil
	}
	return level.Satisfies(required), nil
}

// EffectiveLevel is the level shown next to a project: project_admin for
// admins, the granted level for members, nil for public-only visibility.
func (service *PermissionService) EffectiveLevel(identity *Identity, projectID uint) (*PermissionLevel, error) {
	if identity == nil {
		return nil, nil
	}
	if identity.IsAdmin() {
		return levelPtr(PermissionProjectAdmin), nil
	}
	return service.grantedLevel(identity.UserID, projectID)
}

func (service *PermissionService) grantedLevel(userID uint, projectID uint) (*PermissionLevel, error) {
	grant, found, err := service.grants.Find(userID, projectID)
	if err != nil {
		return nil, internalError("load project grant", err)
	}
	if found {
		level := PermissionLevel(grant.PermissionLevel)
		if !level.Valid() {
			return nil, nil
		}
		return &level, nil
	}

	legacy, err := service.legacyProjectIDs(userID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(legacy, projectID) {
		return levelPtr(PermissionViewOnly), nil
	}
	return nil, nil
}

func (service *PermissionService) legacyProjectIDs(userID uint) ([]uint, error) {
	if !service.legacyAccess {
		return nil, nil
	}
	user, err := service.users.FindByID(userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, internalError("load user", err)
	}
	return LegacyProjectAccess(user), nil
}

// FindVisibleProjects lists what identity can see, ordered by (depth, name).
func (service *PermissionService) FindVisibleProjects(identity *Identity) ([]VisibleProject, error) {
	if identity.IsAdmin() {
		projects, err := service.projects.List()
		if err != nil {
			return nil, internalError("list projects", err)
		}
		return annotate(projects, func(models.Project) *PermissionLevel {
			return levelPtr(PermissionProjectAdmin)
		}), nil
	}

	public, err := service.projects.List(db.PublicProjects{})
	if err != nil {
		return nil, internalError("list public projects", err)
	}
	if identity == nil {
		return annotate(public, func(models.Project) *PermissionLevel { return nil }), nil
	}

	grants, err := service.grants.ListByUser(identity.UserID)
	if err != nil {
		return nil, internalError("list project grants", err)
	}
	levels := make(map[uint]PermissionLevel, len(grants))
	for _, grant := range grants {
		if level := PermissionLevel(grant.PermissionLevel); level.Valid() {
			levels[grant.ProjectID] = level
		}
	}

	legacy, err := service.legacyProjectIDs(identity.UserID)
	if err != nil {
		return nil, err
	}
	for _, projectID := range legacy {
		if _, granted := levels[projectID]; !granted {
			levels[projectID] = PermissionViewOnly
		}
	}

	merged := public
	if len(levels) > 0 {
		ids := make([]uint, 0, len(levels))
		for projectID := range levels {
			ids = append(ids, projectID)
		}
		granted, err := service.projects.List(db.ProjectsByIDs{IDs: ids})
		if err != nil {
			return nil, internalError("list granted projects", err)
		}
		merged = mergeProjects(public, granted)
	}

	return annotate(merged, func(project models.Project) *PermissionLevel {
		if level, ok := levels[project.ID]; ok {
			return levelPtr(level)
		}
		return nil
	}), nil
}

// Grant creates or replaces the grant of userID on projectID.
func (service *PermissionService) Grant(projectID uint, userID uint, level PermissionLevel, grantedBy *uint) (models.ProjectUser, error) {
	if !level.Valid() {
		return models.ProjectUser{}, validationError("permission level must be view_only, editor or project_admin")
	}
	if _, err := service.projects.FindByID(projectID); err != nil {
		return models.ProjectUser{}, lookupError("project", err)
	}
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.ProjectUser{}, lookupError("user", err)
	}

	grant := models.ProjectUser{
		UserID:          user.ID,
		ProjectID:       projectID,
		PermissionLevel: string(level),
		GrantedBy:       grantedBy,
		GrantedAt:       service.now(),
	}
	if err := service.grants.Upsert(&grant); err != nil {
		return models.ProjectUser{}, internalError("save project grant", err)
	}
	grant.User = &user
	return grant, nil
}

// Revoke deletes the grant. Revoking a missing grant is not an error.
func (service *PermissionService) Revoke(projectID uint, userID uint) error {
	if _, err := service.projects.FindByID(projectID); err != nil {
		return lookupError("project", err)
	}
	if err := service.grants.Delete(userID, projectID); err != nil {
		return internalError("delete project grant", err)
	}
	return nil
}

func (service *PermissionService) ListGrants(projectID uint) ([]models.ProjectUser, error) {
	if _, err := service.projects.FindByID(projectID); err != nil {
		return nil, lookupError("project", err)
	}
	grants, err := service.grants.ListByProject(projectID)
	if err != nil {
		return nil, internalError("list project grants", err)
	}
	return grants, nil
}

// LegacyProjectAccess decodes the deprecated users.project_access column.
// Entries may be numbers or numeric strings. Anything unreadable yields no
// access and a logged warning.
func LegacyProjectAccess(user models.User) []uint {
	raw := bytes.TrimSpace(user.ProjectAccess)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Printf("warning: ignoring malformed project_access for user %d: %v", user.ID, err)
		return nil
	}

	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		text := strings.Trim(strings.TrimSpace(string(entry)), `"`)
		projectID, err := strconv.ParseUint(text, 10, 64)
		if err != nil || projectID == 0 {
			log.Printf("warning: ignoring malformed project_access for user %d: entry %s", user.ID, entry)
			return nil
		}
		ids = append(ids, uint(projectID))
	}
	return ids
}

func annotate(projects []models.Project, levelFor func(models.Project) *PermissionLevel) []VisibleProject {
	visible := make([]VisibleProject, 0, len(projects))
	for _, project := range projects {
		visible = append(visible, VisibleProject{Project: project, Permission: levelFor(project)})
	}
	return visible
}

func mergeProjects(left []models.Project, right []models.Project) []models.Project {
	seen := make(map[uint]struct{}, len(left)+len(right))
	merged := make([]models.Project, 0, len(left)+len(right))
	for _, group := range [][]models.Project{left, right} {
		for _, project := range group {
			if _, duplicate := seen[project.ID]; duplicate {
				continue
			}
			seen[project.ID] = struct{}{}
			merged = append(merged, project)
		}
	}
	slices.SortStableFunc(merged, compareProjectsForTree)
	return merged
}

func compareProjectsForTree(left models.Project, right models.Project) int {
	if left.Depth != right.Depth {
		return left.Depth - right.Depth
	}
	if byName := strings.Compare(left.Name, right.Name); byName != 0 {
		return byName
	}
	return int(left.ID) - int(right.ID)
}
