package services

import (
	"math"
	"time"

	"github.com/terraincognita07/tempo/internal/db"
)

const maxAnalyticsRange = 366 * 24 * time.Hour

type AnalyticsReader interface {
	TrackedTimeByProject(projectIDs []uint, from time.Time, to time.Time) ([]db.TrackedTimeRow, error)
	CompletionsByProject(projectIDs []uint, from time.Time, to time.Time) ([]db.CompletionRow, error)
}

type ProjectActivitySummary struct {
	ProjectID        uint     `json:"projectId"`
	Name             string   `json:"name"`
	Path             string   `json:"path"`
	TrackedSeconds   int64    `json:"trackedSeconds"`
	SessionCount     int64    `json:"sessionCount"`
	CompletedTasks   int64    `json:"completedTasks"`
	AverageAccuracy  *float64 `json:"averageAccuracy"`
	IntensityMatches int64    `json:"intensityMatches"`
}

type AnalyticsSummary struct {
	From           time.Time                `json:"from"`
	To             time.Time                `json:"to"`
	Projects       []ProjectActivitySummary `json:"projects"`
	TrackedSeconds int64                    `json:"trackedSeconds"`
	SessionCount   int64                    `json:"sessionCount"`
	CompletedTasks int64                    `json:"completedTasks"`
}

type AnalyticsService struct {
	visibility ProjectVisibility
	reader     AnalyticsReader
}

func NewAnalyticsService(visibility ProjectVisibility, reader AnalyticsReader) *AnalyticsService {
	return &AnalyticsService{visibility: visibility, reader: reader}
}

// Summary reports tracked time and completions in [from, to) for every
// project the caller can see. Projects without activity are omitted.
func (service *AnalyticsService) Summary(identity *Identity, from time.Time, to time.Time) (AnalyticsSummary, error) {
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return AnalyticsSummary{}, validationError("to must be after from")
	}
	if to.Sub(from) > maxAnalyticsRange {
		return AnalyticsSummary{}, validationError("range must not exceed 366 days")
	}

	visible, err := service.visibility.FindVisibleProjects(identity)
	if err != nil {
		return AnalyticsSummary{}, err
	}

	summary := AnalyticsSummary{From: from, To: to, Projects: []ProjectActivitySummary{}}
	if len(visible) == 0 {
		return summary, nil
	}

	projectIDs := make([]uint, 0, len(visible))
	for _, project := range visible {
		projectIDs = append(projectIDs, project.ID)
	}

	tracked, err := service.reader.TrackedTimeByProject(projectIDs, from, to)
	if err != nil {
		return AnalyticsSummary{}, internalError("load tracked time", err)
	}
	completions, err := service.reader.CompletionsByProject(projectIDs, from, to)
	if err != nil {
		return AnalyticsSummary{}, internalError("load completions", err)
	}

	byProject := make(map[uint]*ProjectActivitySummary, len(visible))
	for _, row := range tracked {
		entry := summaryEntry(byProject, row.ProjectID)
		entry.TrackedSeconds = CoerceCount(row.TrackedSeconds)
		entry.SessionCount = CoerceCount(row.SessionCount)
	}
	for _, row := range completions {
		entry := summaryEntry(byProject, row.ProjectID)
		entry.CompletedTasks = CoerceCount(row.CompletedTasks)
		entry.IntensityMatches = CoerceCount(row.IntensityMatch)
		if accuracy, ok := CoerceFloat(row.AverageAccuracy); ok {
			rounded := math.Round(accuracy*10) / 10
			entry.AverageAccuracy = &rounded
		}
	}

	for _, project := range visible {
		entry, ok := byProject[project.ID]
		if !ok {
			continue
		}
		entry.Name = project.Name
		entry.Path = project.Path
		summary.Projects = append(summary.Projects, *entry)
		summary.TrackedSeconds += entry.TrackedSeconds
		summary.SessionCount += entry.SessionCount
		summary.CompletedTasks += entry.CompletedTasks
	}
	return summary, nil
}

func summaryEntry(entries map[uint]*ProjectActivitySummary, projectID uint) *ProjectActivitySummary {
	entry, ok := entries[projectID]
	if !ok {
		entry = &ProjectActivitySummary{ProjectID: projectID}
		entries[projectID] = entry
	}
	return entry
}
