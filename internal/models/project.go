package models

import "time"

const (
	ProjectStatusActive   = "active"
	ProjectStatusDone     = "done"
	ProjectStatusArchived = "archived"
)

const DefaultProjectColor = "#6366F1"

// PathSeparator joins project names into a materialized path.
const PathSeparator = "/"

type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"not null;default:''" json:"description"`
	Color       string `gorm:"not null;default:'#6366F1'" json:"color"`
	Status      string `gorm:"not null;default:active" json:"status"`
	IsPublic    bool   `gorm:"not null" json:"isPublic"`
	CreatedBy   *uint  `json:"createdBy"`
	ParentID    *uint  `gorm:"index" json:"parentId"`
	Path        string `gorm:"not null;uniqueIndex" json:"path"`
	Depth       int    `gorm:"not null" json:"depth"`
	IsExpanded  bool   `gorm:"not null" json:"isExpanded"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	Parent  *Project `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	Creator *User    `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"-"`
}

func IsValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusActive, ProjectStatusDone, ProjectStatusArchived:
		return true
	default:
		return false
	}
}
