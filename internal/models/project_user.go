package models

import "time"

const (
	PermissionViewOnly     = "view_only"
	PermissionEditor       = "editor"
	PermissionProjectAdmin = "project_admin"
)

// ProjectUser is an explicit per-user grant on a single project.
type ProjectUser struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:uidx_project_users_user_project" json:"userId"`
	ProjectID       uint      `gorm:"not null;uniqueIndex:uidx_project_users_user_project;index" json:"projectId"`
	PermissionLevel string    `gorm:"not null" json:"permissionLevel"`
	GrantedBy       *uint     `json:"grantedBy"`
	GrantedAt       time.Time `gorm:"not null" json:"grantedAt"`

	User    *User    `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Project *Project `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
