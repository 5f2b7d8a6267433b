package db

import (
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// TaskFilter narrows a task listing. Implementations are limited to the
// types declared in this package.
type TaskFilter interface {
	taskFilter()
}

type TasksByProject struct{ ProjectID uint }

type TasksByProjects struct{ ProjectIDs []uint }

type TasksByStatus struct{ Status string }

type TasksByColumn struct{ Column string }

type TasksDueBefore struct{ Before time.Time }

func (TasksByProject) taskFilter()  {}
func (TasksByProjects) taskFilter() {}
func (TasksByStatus) taskFilter()   {}
func (TasksByColumn) taskFilter()   {}
func (TasksDueBefore) taskFilter()  {}

// TimeSessionFilter narrows a time session listing.
type TimeSessionFilter interface {
	timeSessionFilter()
}

type SessionsByProject struct{ ProjectID uint }

type SessionsByProjects struct{ ProjectIDs []uint }

type SessionsByTask struct{ TaskID uint }

type SessionsByUser struct{ UserID uint }

type ActiveSessions struct{}

type SessionsStartedBetween struct{ From, To time.Time }

func (SessionsByProject) timeSessionFilter()      {}
func (SessionsByProjects) timeSessionFilter()     {}
func (SessionsByTask) timeSessionFilter()         {}
func (SessionsByUser) timeSessionFilter()         {}
func (ActiveSessions) timeSessionFilter()         {}
func (SessionsStartedBetween) timeSessionFilter() {}

// ProjectFilter narrows a project listing.
type ProjectFilter interface {
	projectFilter()
}

type ProjectsByIDs struct{ IDs []uint }

type PublicProjects struct{}

type ProjectsByParent struct{ ParentID *uint }

type ProjectsByStatus struct{ Status string }

func (ProjectsByIDs) projectFilter()    {}
func (PublicProjects) projectFilter()   {}
func (ProjectsByParent) projectFilter() {}
func (ProjectsByStatus) projectFilter() {}

func applyTaskFilters(query *gorm.DB, filters []TaskFilter) (*gorm.DB, error) {
	for _, filter := range filters {
		switch typed := filter.(type) {
		case TasksByProject:
			query = query.Where("project_id = ?", typed.ProjectID)
		case TasksByProjects:
			query = query.Where("project_id IN ?", nonEmptyIDs(typed.ProjectIDs))
		case TasksByStatus:
			query = query.Where("status = ?", typed.Status)
		case TasksByColumn:
			query = query.Where("board_column = ?", typed.Column)
		case TasksDueBefore:
			query = query.Where("due_date IS NOT NULL AND due_date < ?", typed.Before)
		default:
			return nil, fmt.Errorf("unsupported task filter %T", filter)
		}
	}
	return query, nil
}

func applyTimeSessionFilters(query *gorm.DB, filters []TimeSessionFilter) (*gorm.DB, error) {
	for _, filter := range filters {
		switch typed := filter.(type) {
		case SessionsByProject:
			query = query.Where("project_id = ?", typed.ProjectID)
		case SessionsByProjects:
			query = query.Where("project_id IN ?", nonEmptyIDs(typed.ProjectIDs))
		case SessionsByTask:
			query = query.Where("task_id = ?", typed.TaskID)
		case SessionsByUser:
			query = query.Where("user_id = ?", typed.UserID)
		case ActiveSessions:
			query = query.Where("is_active = ?", true)
		case SessionsStartedBetween:
			query = query.Where("start_time >= ? AND start_time < ?", typed.From, typed.To)
		default:
			return nil, fmt.Errorf("unsupported time session filter %T", filter)
		}
	}
	return query, nil
}

func applyProjectFilters(query *gorm.DB, filters []ProjectFilter) (*gorm.DB, error) {
	for _, filter := range filters {
		switch typed := filter.(type) {
		case ProjectsByIDs:
			query = query.Where("id IN ?", nonEmptyIDs(typed.IDs))
		case PublicProjects:
			query = query.Where("is_public = ?", true)
		case ProjectsByParent:
			if typed.ParentID == nil {
				query = query.Where("parent_id IS NULL")
			} else {
				query = query.Where("parent_id = ?", *typed.ParentID)
			}
		case ProjectsByStatus:
			query = query.Where("status = ?", typed.Status)
		default:
			return nil, fmt.Errorf("unsupported project filter %T", filter)
		}
	}
	return query, nil
}

// nonEmptyIDs keeps "IN ?" valid SQL for an empty set. Zero is never a
// generated primary key, so the placeholder matches nothing.
func nonEmptyIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return []uint{0}
	}
	return ids
}

// descendantCondition matches rows whose path lies under the given path.
// SUBSTR compares case-sensitively on every driver, which LIKE does not on
// SQLite, and needs no wildcard escaping.
func descendantCondition(path string) (string, int, string) {
	prefix := path + "/"
	return "SUBSTR(path, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix
}
