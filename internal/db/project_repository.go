package db

import (
	"unicode/utf8"

	"github.com/terraincognita07/tempo/internal/models"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	database *gorm.DB
}

func NewProjectRepository(database *gorm.DB) *ProjectRepository {
	return &ProjectRepository{database: database}
}

// ProjectDependents counts the rows that a project delete would cascade to.
type ProjectDependents struct {
	Children   int64
	Tasks      int64
	QuickLinks int64
}

func (dependents ProjectDependents) Any() bool {
	return dependents.Children > 0 || dependents.Tasks > 0 || dependents.QuickLinks > 0
}

func (repo *ProjectRepository) FindByID(projectID uint) (models.Project, error) {
	var project models.Project
	if err := repo.database.First(&project, projectID).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (repo *ProjectRepository) FindByPath(path string) (models.Project, bool, error) {
	var projects []models.Project
	if err := repo.database.Where("path = ?", path).Limit(1).Find(&projects).Error; err != nil {
		return models.Project{}, false, err
	}
	if len(projects) == 0 {
		return models.Project{}, false, nil
	}
	return projects[0], true, nil
}

// List returns projects ordered by (depth, name), the order tree building
// relies on.
func (repo *ProjectRepository) List(filters ...ProjectFilter) ([]models.Project, error) {
	query, err := applyProjectFilters(repo.database.Model(&models.Project{}), filters)
	if err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0)
	if err := query.Order("depth ASC, name ASC, id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (repo *ProjectRepository) ListByPaths(paths []string) ([]models.Project, error) {
	projects := make([]models.Project, 0, len(paths))
	if len(paths) == 0 {
		return projects, nil
	}
	if err := repo.database.Where("path IN ?", paths).Order("depth ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListDescendants matches on the path prefix. maxDepth is relative to the
// project and nil means unbounded.
func (repo *ProjectRepository) ListDescendants(project models.Project, maxDepth *int) ([]models.Project, error) {
	condition, length, prefix := descendantCondition(project.Path)
	query := repo.database.Where(condition, length, prefix)
	if maxDepth != nil {
		query = query.Where("depth <= ?", project.Depth+*maxDepth)
	}

	projects := make([]models.Project, 0)
	if err := query.Order("depth ASC, name ASC, id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (repo *ProjectRepository) CreateWithGrant(project *models.Project, grant *models.ProjectUser) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		if grant == nil {
			return nil
		}
		grant.ProjectID = project.ID
		return tx.Create(grant).Error
	})
}

// Relocate persists a renamed or moved project together with any extra
// column updates, and rewrites the path and depth of every descendant in the
// same transaction.
func (repo *ProjectRepository) Relocate(project *models.Project, previousPath string, previousDepth int, extra map[string]any) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":      project.Name,
			"parent_id": project.ParentID,
			"path":      project.Path,
			"depth":     project.Depth,
		}
		for column, value := range extra {
			updates[column] = value
		}
		if err := tx.Model(&models.Project{}).Where("id = ?", project.ID).Updates(updates).Error; err != nil {
			return err
		}

		if project.Path == previousPath && project.Depth == previousDepth {
			return nil
		}

		condition, length, prefix := descendantCondition(previousPath)
		return tx.Model(&models.Project{}).
			Where(condition, length, prefix).
			Updates(map[string]any{
				"path":  gorm.Expr("CAST(? AS TEXT) || SUBSTR(path, ?)", project.Path, utf8.RuneCountInString(previousPath)+1),
				"depth": gorm.Expr("depth + ?", project.Depth-previousDepth),
			}).Error
	})
}

func (repo *ProjectRepository) UpdateFields(projectID uint, updates map[string]any) error {
	result := repo.database.Model(&models.Project{}).Where("id = ?", projectID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Archive marks every listed project archived. With cascadeTasks the
// unfinished tasks of those projects are archived too.
func (repo *ProjectRepository) Archive(projectIDs []uint, cascadeTasks bool) error {
	if len(projectIDs) == 0 {
		return nil
	}

	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).
			Where("id IN ?", projectIDs).
			Update("status", models.ProjectStatusArchived).Error; err != nil {
			return err
		}
		if !cascadeTasks {
			return nil
		}
		return tx.Model(&models.Task{}).
			Where("project_id IN ? AND status <> ?", projectIDs, models.TaskStatusDone).
			Update("status", models.TaskStatusArchived).Error
	})
}

func (repo *ProjectRepository) CountDependents(projectID uint) (ProjectDependents, error) {
	var dependents ProjectDependents
	if err := repo.database.Model(&models.Project{}).Where("parent_id = ?", projectID).Count(&dependents.Children).Error; err != nil {
		return ProjectDependents{}, err
	}
	if err := repo.database.Model(&models.Task{}).Where("project_id = ?", projectID).Count(&dependents.Tasks).Error; err != nil {
		return ProjectDependents{}, err
	}
	if err := repo.database.Model(&models.QuickLink{}).Where("project_id = ?", projectID).Count(&dependents.QuickLinks).Error; err != nil {
		return ProjectDependents{}, err
	}
	return dependents, nil
}

func (repo *ProjectRepository) Delete(projectID uint) error {
	result := repo.database.Delete(&models.Project{}, projectID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
