package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

const (
	UserStatusPending   = "pending"
	UserStatusApproved  = "approved"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Email        string `gorm:"not null;default:''" json:"email"`
	Role         string `gorm:"not null;default:member" json:"role"`
	Status       string `gorm:"not null;default:pending" json:"status"`
	// ProjectAccess is the deprecated per-user list of visible project ids.
	// It is only read through the permission compatibility shim.
	ProjectAccess      datatypes.JSON `json:"-"`
	MustChangePassword bool           `gorm:"not null" json:"mustChangePassword"`
	CreatedAt          time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updatedAt"`
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}

func IsValidUserStatus(status string) bool {
	switch status {
	case UserStatusPending, UserStatusApproved, UserStatusSuspended:
		return true
	default:
		return false
	}
}
