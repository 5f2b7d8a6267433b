package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
)

type StatsReader interface {
	TaskStatsByProject(projectIDs []uint) ([]db.TaskStatsRow, error)
}

type StatsProjectReader interface {
	FindByID(projectID uint) (models.Project, error)
	ListDescendants(project models.Project, maxDepth *int) ([]models.Project, error)
}

type ProjectStats struct {
	TotalTasks      int64 `json:"totalTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	TotalMinutes    int64 `json:"totalMinutes"`
}

func (stats ProjectStats) Add(other ProjectStats) ProjectStats {
	return ProjectStats{
		TotalTasks:      stats.TotalTasks + other.TotalTasks,
		CompletedTasks:  stats.CompletedTasks + other.CompletedTasks,
		InProgressTasks: stats.InProgressTasks + other.InProgressTasks,
		TotalMinutes:    stats.TotalMinutes + other.TotalMinutes,
	}
}

type StatsService struct {
	stats    StatsReader
	projects StatsProjectReader
}

func NewStatsService(stats StatsReader, projects StatsProjectReader) *StatsService {
	return &StatsService{
		stats:    stats,
		projects: projects,
	}
}

// DirectStats returns one entry per requested id, zero-filled for projects
// without tasks. An empty input yields an empty map without querying.
func (service *StatsService) DirectStats(projectIDs []uint) (map[uint]ProjectStats, error) {
	result := make(map[uint]ProjectStats, len(projectIDs))
	for _, projectID := range projectIDs {
		result[projectID] = ProjectStats{}
	}
	if len(result) == 0 {
		return result, nil
	}

	unique := make([]uint, 0, len(result))
	for projectID := range result {
		unique = append(unique, projectID)
	}

	rows, err := service.stats.TaskStatsByProject(unique)
	if err != nil {
		return nil, internalError("load project stats", err)
	}
	for _, row := range rows {
		if _, requested := result[row.ProjectID]; !requested {
			continue
		}
		result[row.ProjectID] = ProjectStats{
			TotalTasks:      CoerceCount(row.TotalTasks),
			CompletedTasks:  CoerceCount(row.CompletedTasks),
			InProgressTasks: CoerceCount(row.InProgressTasks),
			TotalMinutes:    CoerceCount(row.TotalMinutes),
		}
	}
	return result, nil
}

// SubtreeStats sums the direct stats of the project and all its descendants.
func (service *StatsService) SubtreeStats(projectID uint) (ProjectStats, error) {
	project, err := service.projects.FindByID(projectID)
	if err != nil {
		return ProjectStats{}, lookupError("project", err)
	}
	descendants, err := service.projects.ListDescendants(project, nil)
	if err != nil {
		return ProjectStats{}, internalError("load descendants", err)
	}

	ids := make([]uint, 0, len(descendants)+1)
	ids = append(ids, project.ID)
	for _, descendant := range descendants {
		ids = append(ids, descendant.ID)
	}

	direct, err := service.DirectStats(ids)
	if err != nil {
		return ProjectStats{}, err
	}

	var total ProjectStats
	for _, stats := range direct {
		total = total.Add(stats)
	}
	return total, nil
}

// CoerceCount converts a raw aggregate into an integer. Strings and byte
// slices are parsed; anything unparsable, NaN or infinite becomes 0.
func CoerceCount(value any) int64 {
	number, ok := coerceNumber(value)
	if !ok {
		return 0
	}
	return int64(math.Round(number))
}

// CoerceFloat is CoerceCount without rounding. The second result is false
// when the value was missing or unusable.
func CoerceFloat(value any) (float64, bool) {
	return coerceNumber(value)
}

func coerceNumber(value any) (float64, bool) {
	var number float64
	switch typed := value.(type) {
	case nil:
		return 0, false
	case int64:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case float32:
		number = float64(typed)
	case float64:
		number = typed
	case []byte:
		return parseNumber(string(typed))
	case string:
		return parseNumber(typed)
	case bool:
		if typed {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}

func parseNumber(raw string) (float64, bool) {
	text := strings.TrimSpace(raw)
	if integer, err := strconv.ParseInt(text, 10, 64); err == nil {
		return float64(integer), true
	}
	number, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}
