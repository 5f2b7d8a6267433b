package services

import (
	"strings"

	"github.com/terraincognita07/tempo/internal/models"
)

// PermissionLevel is ordered: view_only < editor < project_admin.
type PermissionLevel string

const (
	PermissionViewOnly     PermissionLevel = models.PermissionViewOnly
	PermissionEditor       PermissionLevel = models.PermissionEditor
	PermissionProjectAdmin PermissionLevel = models.PermissionProjectAdmin
)

func (level PermissionLevel) rank() int {
	switch level {
	case PermissionViewOnly:
		return 1
	case PermissionEditor:
		return 2
	case PermissionProjectAdmin:
		return 3
	default:
		return 0
	}
}

func (level PermissionLevel) Valid() bool {
	return level.rank() > 0
}

// Satisfies reports whether holding level is enough for required.
func (level PermissionLevel) Satisfies(required PermissionLevel) bool {
	return level.Valid() && required.Valid() && level.rank() >= required.rank()
}

func ParsePermissionLevel(raw string) (PermissionLevel, error) {
	level := PermissionLevel(strings.ToLower(strings.TrimSpace(raw)))
	if !level.Valid() {
		return "", validationError("permission level must be view_only, editor or project_admin")
	}
	return level, nil
}

func levelPtr(level PermissionLevel) *PermissionLevel {
	return &level
}
