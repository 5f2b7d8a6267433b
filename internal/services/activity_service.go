package services

import (
	"log"
	"time"

	"github.com/terraincognita07/tempo/internal/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

type ActivityRepository interface {
	Create(activity *models.UserActivity) error
	ListRecent(limit int) ([]models.UserActivity, error)
}

type ActivityService struct {
	activities ActivityRepository
	now        func() time.Time
}

func NewActivityService(activities ActivityRepository) *ActivityService {
	return &ActivityService{
		activities: activities,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Record stores an audit entry. Failures are logged and never reach the
// caller.
func (service *ActivityService) Record(userID *uint, action string, detail string, ipAddress string) {
	if service == nil {
		return
	}
	activity := models.UserActivity{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		IPAddress: ipAddress,
		CreatedAt: service.now(),
	}
	if err := service.activities.Create(&activity); err != nil {
		log.Printf("activity log: record %s failed: %v", action, err)
	}
}

func (service *ActivityService) ListRecent(limit int) ([]models.UserActivity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	activities, err := service.activities.ListRecent(limit)
	if err != nil {
		return nil, internalError("list activities", err)
	}
	return activities, nil
}
