package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/tempo/internal/config"
	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/services"
	"gorm.io/gorm"
)

type Handler struct {
	secretKey    []byte
	cookieSecure bool

	loginLimiter     *attemptLimiter
	loginMaxAttempts int
	loginWindow      time.Duration

	activity    *services.ActivityService
	auth        *services.AuthService
	permissions *services.PermissionService
	stats       *services.StatsService
	projects    *services.ProjectService
	tasks       *services.TaskService
	timer       *services.TimerService
	quickLinks  *services.QuickLinkService
	admin       *services.AdminService
	analytics   *services.AnalyticsService
}

func NewHandler(database *gorm.DB, cfg *config.Config) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := config.ValidateSecretKey(cfg.Auth.SecretKey); err != nil {
		return nil, err
	}

	handler := &Handler{
		secretKey:        []byte(cfg.Auth.SecretKey),
		cookieSecure:     cfg.Server.CookieSecure,
		loginLimiter:     newAttemptLimiter(),
		loginMaxAttempts: cfg.Auth.LoginMaxAttempts,
		loginWindow:      cfg.Auth.LoginAttemptsWindow,
	}
	return handler.withDependencies(database, cfg)
}

func (handler *Handler) withDependencies(database *gorm.DB, cfg *config.Config) (*Handler, error) {
	repositories, err := db.NewRepositories(database)
	if err != nil {
		return nil, err
	}

	handler.activity = services.NewActivityService(repositories.Activities)
	handler.auth = services.NewAuthService(repositories.Users, repositories.AuthSessions, handler.activity, services.AuthOptions{
		SessionTTL:       cfg.Auth.SessionTTL,
		RememberMeTTL:    cfg.Auth.RememberMeTTL,
		SweepProbability: cfg.Sessions.SweepProbability,
	})
	handler.permissions = services.NewPermissionService(repositories.Projects, repositories.Grants, repositories.Users, cfg.Permissions.LegacyProjectAccess)
	handler.stats = services.NewStatsService(repositories.Stats, repositories.Projects)
	handler.projects = services.NewProjectService(repositories.Projects, handler.permissions, handler.stats, cfg.Hierarchy.ArchiveCascadesTasks)
	handler.tasks = services.NewTaskService(repositories.Tasks, repositories.TimeSessions, repositories.Tags)
	handler.timer = services.NewTimerService(repositories.TimeSessions, repositories.Tasks, nil)
	handler.quickLinks = services.NewQuickLinkService(repositories.QuickLinks)
	handler.admin = services.NewAdminService(repositories.Users, handler.activity, handler.activity)
	handler.analytics = services.NewAnalyticsService(handler.permissions, repositories.Stats)
	return handler, nil
}
