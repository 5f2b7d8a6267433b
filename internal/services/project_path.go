package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/tempo/internal/models"
)

const maxProjectNameLength = 120

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// NormalizeProjectName trims the name and rejects values that would break
// the materialized path.
func NormalizeProjectName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", validationError("project name is required")
	}
	if utf8.RuneCountInString(name) > maxProjectNameLength {
		return "", validationError("project name must be at most 120 characters")
	}
	if strings.Contains(name, models.PathSeparator) {
		return "", validationError("project name must not contain '/'")
	}
	return name, nil
}

func NormalizeProjectColor(raw string) (string, error) {
	color := strings.TrimSpace(raw)
	if color == "" {
		return models.DefaultProjectColor, nil
	}
	if !hexColorPattern.MatchString(color) {
		return "", validationError("color must be a #RRGGBB hex value")
	}
	return strings.ToUpper(color), nil
}

// ChildPath returns the path and depth of a project named name placed under
// parent, or at the root when parent is nil.
func ChildPath(parent *models.Project, name string) (string, int) {
	if parent == nil {
		return name, 0
	}
	return parent.Path + models.PathSeparator + name, parent.Depth + 1
}

// AncestorPaths lists the path of every ancestor of path, root first.
func AncestorPaths(path string) []string {
	segments := strings.Split(path, models.PathSeparator)
	if len(segments) < 2 {
		return nil
	}
	prefixes := make([]string, 0, len(segments)-1)
	for end := 1; end < len(segments); end++ {
		prefixes = append(prefixes, strings.Join(segments[:end], models.PathSeparator))
	}
	return prefixes
}

// IsWithin reports whether candidate is the project at path or one of its
// descendants.
func IsWithin(candidate string, path string) bool {
	return candidate == path || strings.HasPrefix(candidate, path+models.PathSeparator)
}
