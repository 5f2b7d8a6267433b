package services

import (
	"strings"
	"time"

	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
)

type ProjectRepository interface {
	FindByID(projectID uint) (models.Project, error)
	FindByPath(path string) (models.Project, bool, error)
	ListByPaths(paths []string) ([]models.Project, error)
	ListDescendants(project models.Project, maxDepth *int) ([]models.Project, error)
	CreateWithGrant(project *models.Project, grant *models.ProjectUser) error
	Relocate(project *models.Project, previousPath string, previousDepth int, extra map[string]any) error
	UpdateFields(projectID uint, updates map[string]any) error
	Archive(projectIDs []uint, cascadeTasks bool) error
	CountDependents(projectID uint) (db.ProjectDependents, error)
	Delete(projectID uint) error
}

type ProjectVisibility interface {
	FindVisibleProjects(identity *Identity) ([]VisibleProject, error)
}

type ProjectStatsSource interface {
	DirectStats(projectIDs []uint) (map[uint]ProjectStats, error)
}

type CreateProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Status      string `json:"status"`
	IsPublic    bool   `json:"isPublic"`
	ParentID    *uint  `json:"parentId"`
}

// UpdateProjectInput is a partial update; nil fields are left unchanged.
type UpdateProjectInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Status      *string `json:"status"`
	IsPublic    *bool   `json:"isPublic"`
}

type ProjectService struct {
	projects             ProjectRepository
	visibility           ProjectVisibility
	stats                ProjectStatsSource
	archiveCascadesTasks bool
	now                  func() time.Time
}

func NewProjectService(projects ProjectRepository, visibility ProjectVisibility, stats ProjectStatsSource, archiveCascadesTasks bool) *ProjectService {
	return &ProjectService{
		projects:             projects,
		visibility:           visibility,
		stats:                stats,
		archiveCascadesTasks: archiveCascadesTasks,
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts the project under its parent and, unless the creator is a
// global admin, grants the creator project_admin in the same transaction.
func (service *ProjectService) Create(input CreateProjectInput, creator *Identity) (models.Project, error) {
	name, err := NormalizeProjectName(input.Name)
	if err != nil {
		return models.Project{}, err
	}
	color, err := NormalizeProjectColor(input.Color)
	if err != nil {
		return models.Project{}, err
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.ProjectStatusActive
	}
	if !models.IsValidProjectStatus(status) {
		return models.Project{}, validationError("status must be active, done or archived")
	}

	var parent *models.Project
	if input.ParentID != nil {
		found, err := service.projects.FindByID(*input.ParentID)
		if err != nil {
			return models.Project{}, lookupError("parent project", err)
		}
		parent = &found
	}

	path, depth := ChildPath(parent, name)
	if err := service.ensurePathFree(path); err != nil {
		return models.Project{}, err
	}

	now := service.now()
	project := models.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Color:       color,
		Status:      status,
		IsPublic:    input.IsPublic,
		CreatedBy:   creator.UserIDPtr(),
		ParentID:    input.ParentID,
		Path:        path,
		Depth:       depth,
		IsExpanded:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var grant *models.ProjectUser
	if creator != nil && !creator.IsAdmin() {
		grant = &models.ProjectUser{
			UserID:          creator.UserID,
			PermissionLevel: string(PermissionProjectAdmin),
			GrantedBy:       creator.UserIDPtr(),
			GrantedAt:       now,
		}
	}

	if err := service.projects.CreateWithGrant(&project, grant); err != nil {
		if db.IsUniqueViolation(err) {
			return models.Project{}, conflictError("a project with this name already exists here")
		}
		return models.Project{}, internalError("create project", err)
	}
	return project, nil
}

func (service *ProjectService) Get(projectID uint) (models.Project, error) {
	project, err := service.projects.FindByID(projectID)
	if err != nil {
		return models.Project{}, lookupError("project", err)
	}
	return project, nil
}

// Update applies a partial update. A rename rewrites the path of the project
// and all of its descendants.
func (service *ProjectService) Update(projectID uint, input UpdateProjectInput) (models.Project, error) {
	project, err := service.Get(projectID)
	if err != nil {
		return models.Project{}, err
	}

	updates := make(map[string]any)
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
		updates["description"] = project.Description
	}
	if input.Color != nil {
		color, err := NormalizeProjectColor(*input.Color)
		if err != nil {
			return models.Project{}, err
		}
		project.Color = color
		updates["color"] = color
	}
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if !models.IsValidProjectStatus(status) {
			return models.Project{}, validationError("status must be active, done or archived")
		}
		project.Status = status
		updates["status"] = status
	}
	if input.IsPublic != nil {
		project.IsPublic = *input.IsPublic
		updates["is_public"] = project.IsPublic
	}

	renamed := false
	if input.Name != nil {
		name, err := NormalizeProjectName(*input.Name)
		if err != nil {
			return models.Project{}, err
		}
		renamed = name != project.Name
		if renamed {
			updates["updated_at"] = service.now()
			if err := service.rename(&project, name, updates); err != nil {
				return models.Project{}, err
			}
		}
	}

	if !renamed && len(updates) > 0 {
		updates["updated_at"] = service.now()
		if err := service.projects.UpdateFields(project.ID, updates); err != nil {
			return models.Project{}, lookupError("project", err)
		}
	}
	return service.Get(project.ID)
}

// rename writes the new name and any pending field updates together.
func (service *ProjectService) rename(project *models.Project, name string, updates map[string]any) error {
	previousPath, previousDepth := project.Path, project.Depth

	var parent *models.Project
	if project.ParentID != nil {
		found, err := service.projects.FindByID(*project.ParentID)
		if err != nil {
			return lookupError("parent project", err)
		}
		parent = &found
	}

	path, depth := ChildPath(parent, name)
	if err := service.ensurePathFree(path); err != nil {
		return err
	}

	project.Name = name
	project.Path = path
	project.Depth = depth
	return service.relocate(project, previousPath, previousDepth, updates)
}

// Move reparents the project; a nil parent moves it to the root. Moving a
// project into itself or into one of its descendants is rejected.
func (service *ProjectService) Move(projectID uint, newParentID *uint) (models.Project, error) {
	project, err := service.Get(projectID)
	if err != nil {
		return models.Project{}, err
	}

	var parent *models.Project
	if newParentID != nil {
		if *newParentID == project.ID {
			return models.Project{}, validationError("a project cannot be moved into itself")
		}
		found, err := service.projects.FindByID(*newParentID)
		if err != nil {
			return models.Project{}, lookupError("parent project", err)
		}
		if IsWithin(found.Path, project.Path) {
			return models.Project{}, validationError("a project cannot be moved into its own descendant")
		}
		parent = &found
	}

	previousPath, previousDepth := project.Path, project.Depth
	path, depth := ChildPath(parent, project.Name)
	if path == previousPath {
		return project, nil
	}
	if err := service.ensurePathFree(path); err != nil {
		return models.Project{}, err
	}

	project.ParentID = newParentID
	project.Path = path
	project.Depth = depth
	if err := service.relocate(&project, previousPath, previousDepth, nil); err != nil {
		return models.Project{}, err
	}
	return service.Get(project.ID)
}

func (service *ProjectService) relocate(project *models.Project, previousPath string, previousDepth int, extra map[string]any) error {
	if err := service.projects.Relocate(project, previousPath, previousDepth, extra); err != nil {
		if db.IsUniqueViolation(err) {
			return conflictError("a project with this name already exists here")
		}
		return internalError("relocate project", err)
	}
	return nil
}

func (service *ProjectService) ensurePathFree(path string) error {
	_, taken, err := service.projects.FindByPath(path)
	if err != nil {
		return internalError("check project path", err)
	}
	if taken {
		return conflictError("a project with this name already exists here")
	}
	return nil
}

// GetTree builds the forest of projects visible to identity. With stats,
// every node carries its own task stats and the sum over its visible
// subtree.
func (service *ProjectService) GetTree(identity *Identity, includeStats bool) (ProjectTree, error) {
	visible, err := service.visibility.FindVisibleProjects(identity)
	if err != nil {
		return ProjectTree{}, err
	}

	tree := BuildProjectTree(visible)
	if !includeStats {
		return tree, nil
	}

	direct, err := service.stats.DirectStats(tree.IDs())
	if err != nil {
		return ProjectTree{}, err
	}
	tree.ApplyStats(direct)
	return tree, nil
}

// FindAncestors returns [root, ..., parent]. It resolves ancestors from the
// path prefixes and falls back to walking parent links when the stored
// paths are inconsistent.
func (service *ProjectService) FindAncestors(projectID uint) ([]models.Project, error) {
	project, err := service.Get(projectID)
	if err != nil {
		return nil, err
	}

	prefixes := AncestorPaths(project.Path)
	if len(prefixes) == 0 && project.ParentID == nil {
		return []models.Project{}, nil
	}

	ancestors, err := service.projects.ListByPaths(prefixes)
	if err != nil {
		return nil, internalError("load ancestors", err)
	}
	if len(ancestors) == project.Depth && len(ancestors) == len(prefixes) {
		return ancestors, nil
	}
	return service.walkAncestors(project)
}

func (service *ProjectService) walkAncestors(project models.Project) ([]models.Project, error) {
	chain := make([]models.Project, 0, project.Depth)
	seen := map[uint]struct{}{project.ID: {}}
	current := project
	for current.ParentID != nil {
		if _, loop := seen[*current.ParentID]; loop {
			break
		}
		parent, err := service.projects.FindByID(*current.ParentID)
		if err != nil {
			if db.IsNotFound(err) {
				break
			}
			return nil, internalError("load ancestor", err)
		}
		seen[parent.ID] = struct{}{}
		chain = append(chain, parent)
		current = parent
	}

	for left, right := 0, len(chain)-1; left < right; left, right = left+1, right-1 {
		chain[left], chain[right] = chain[right], chain[left]
	}
	return chain, nil
}

// FindDescendants lists the subtree below the project ordered by (depth,
// name). maxDepth bounds the depth relative to the project.
func (service *ProjectService) FindDescendants(projectID uint, maxDepth *int) ([]models.Project, error) {
	if maxDepth != nil && *maxDepth < 0 {
		return nil, validationError("maxDepth must not be negative")
	}
	project, err := service.Get(projectID)
	if err != nil {
		return nil, err
	}
	descendants, err := service.projects.ListDescendants(project, maxDepth)
	if err != nil {
		return nil, internalError("load descendants", err)
	}
	return descendants, nil
}

func (service *ProjectService) SetExpanded(projectID uint, expanded bool) (models.Project, error) {
	if err := service.projects.UpdateFields(projectID, map[string]any{"is_expanded": expanded}); err != nil {
		return models.Project{}, lookupError("project", err)
	}
	return service.Get(projectID)
}

// Archive marks the project archived, and its whole subtree when cascade is
// set.
func (service *ProjectService) Archive(projectID uint, cascade bool) ([]uint, error) {
	project, err := service.Get(projectID)
	if err != nil {
		return nil, err
	}

	ids := []uint{project.ID}
	if cascade {
		descendants, err := service.projects.ListDescendants(project, nil)
		if err != nil {
			return nil, internalError("load descendants", err)
		}
		for _, descendant := range descendants {
			ids = append(ids, descendant.ID)
		}
	}

	if err := service.projects.Archive(ids, service.archiveCascadesTasks); err != nil {
		return nil, internalError("archive projects", err)
	}
	return ids, nil
}

// Delete removes the project. Without force a project that still owns
// children, tasks or quick links is refused.
func (service *ProjectService) Delete(projectID uint, force bool) error {
	if _, err := service.Get(projectID); err != nil {
		return err
	}

	if !force {
		dependents, err := service.projects.CountDependents(projectID)
		if err != nil {
			return internalError("count project dependents", err)
		}
		if dependents.Any() {
			return conflictError("project has sub-projects, tasks or links; delete with force to remove them")
		}
	}

	if err := service.projects.Delete(projectID); err != nil {
		return lookupError("project", err)
	}
	return nil
}
