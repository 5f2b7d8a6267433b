package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/tempo/internal/models"
)

type AdminUserRepository interface {
	List() ([]models.User, error)
	FindByID(userID uint) (models.User, error)
	UpdateByID(userID uint, updates map[string]any) error
}

type ActivityLister interface {
	ListRecent(limit int) ([]models.UserActivity, error)
}

type UpdateUserInput struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

type AdminService struct {
	users      AdminUserRepository
	activities ActivityLister
	recorder   ActivityRecorder
	now        func() time.Time
}

func NewAdminService(users AdminUserRepository, activities ActivityLister, recorder ActivityRecorder) *AdminService {
	return &AdminService{
		users:      users,
		activities: activities,
		recorder:   recorder,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (service *AdminService) ListUsers() ([]models.User, error) {
	users, err := service.users.List()
	if err != nil {
		return nil, internalError("list users", err)
	}
	return users, nil
}

// UpdateUser changes the role or status of another account. Admins cannot
// change their own.
func (service *AdminService) UpdateUser(actorID uint, userID uint, input UpdateUserInput) (models.User, error) {
	if actorID == userID {
		return models.User{}, validationError("you cannot change your own role or status")
	}

	updates := make(map[string]any)
	changes := make([]string, 0, 2)
	if input.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*input.Role))
		if !models.IsValidRole(role) {
			return models.User{}, validationError("role must be admin or member")
		}
		updates["role"] = role
		changes = append(changes, "role="+role)
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !models.IsValidUserStatus(status) {
			return models.User{}, validationError("status must be pending, approved or suspended")
		}
		updates["status"] = status
		changes = append(changes, "status="+status)
	}
	if len(updates) == 0 {
		return models.User{}, validationError("role or status is required")
	}

	updates["updated_at"] = service.now()
	if err := service.users.UpdateByID(userID, updates); err != nil {
		return models.User{}, lookupError("user", err)
	}

	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, lookupError("user", err)
	}
	service.recorder.Record(&actorID, models.ActivityUserUpdated, fmt.Sprintf("user=%d %s", userID, strings.Join(changes, " ")), "")
	return user, nil
}

func (service *AdminService) ListActivities(limit int) ([]models.UserActivity, error) {
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
