package db

import "gorm.io/gorm"

type Repositories struct {
	Users        *UserRepository
	Projects     *ProjectRepository
	Grants       *GrantRepository
	Tasks        *TaskRepository
	TimeSessions *TimeSessionRepository
	QuickLinks   *QuickLinkRepository
	Tags         *TagRepository
	AuthSessions *AuthSessionRepository
	Activities   *ActivityRepository
	Stats        *StatsRepository
}

func NewRepositories(database *gorm.DB) (*Repositories, error) {
	stats, err := NewStatsRepository(database)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Users:        NewUserRepository(database),
		Projects:     NewProjectRepository(database),
		Grants:       NewGrantRepository(database),
		Tasks:        NewTaskRepository(database),
		TimeSessions: NewTimeSessionRepository(database),
		QuickLinks:   NewQuickLinkRepository(database),
		Tags:         NewTagRepository(database),
		AuthSessions: NewAuthSessionRepository(database),
		Activities:   NewActivityRepository(database),
		Stats:        stats,
	}, nil
}
