package services

import (
	"errors"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/tempo/internal/db"
	"github.com/terraincognita07/tempo/internal/models"
	"github.com/terraincognita07/tempo/internal/security"
)

var (
	ErrInvalidCredentials = &Error{Kind: ErrUnauthenticated, Message: "invalid username or password"}
	ErrAccountPending     = &Error{Kind: ErrPermission, Message: "account is awaiting approval"}
	ErrAccountSuspended   = &Error{Kind: ErrPermission, Message: "account is suspended"}
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionUnknown     = errors.New("session unknown")
)

const (
	DefaultSessionTTL      = 7 * 24 * time.Hour
	DefaultRememberMeTTL   = 30 * 24 * time.Hour
	DefaultSweepProbability = 0.01
)

type AuthUserRepository interface {
	CountUsers() (int64, error)
	FindByID(userID uint) (models.User, error)
	FindByUsername(username string) (models.User, error)
	ExistsByUsername(username string) (bool, error)
	Create(user *models.User, promoteFirst bool) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

type AuthSessionRepository interface {
	Create(session *models.AuthSession) error
	FindByID(sessionID string) (models.AuthSession, error)
	Delete(sessionID string) error
	DeleteByUser(userID uint) error
	DeleteExpired(now time.Time) (int64, error)
}

type ActivityRecorder interface {
	Record(userID *uint, action string, detail string, ipAddress string)
}

// SessionMeta describes the client that opened a session.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type AuthOptions struct {
	SessionTTL       time.Duration
	RememberMeTTL    time.Duration
	SweepProbability float64
}

type AuthService struct {
	users    AuthUserRepository
	sessions AuthSessionRepository
	activity ActivityRecorder
	options  AuthOptions
	now      func() time.Time
	roll     func() float64
	newID    func() string
}

func NewAuthService(users AuthUserRepository, sessions AuthSessionRepository, activity ActivityRecorder, options AuthOptions) *AuthService {
	if options.SessionTTL <= 0 {
		options.SessionTTL = DefaultSessionTTL
	}
	if options.RememberMeTTL <= 0 {
		options.RememberMeTTL = DefaultRememberMeTTL
	}
	if options.SweepProbability < 0 || options.SweepProbability > 1 {
		options.SweepProbability = DefaultSweepProbability
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		activity: activity,
		options:  options,
		now:      func() time.Time { return time.Now().UTC() },
		roll:     rand.Float64,
		newID:    uuid.NewString,
	}
}

// Register creates a pending account. The first account of an empty
// database becomes an approved admin.
func (service *AuthService) Register(input RegisterInput, meta SessionMeta) (models.User, error) {
	username, err := NormalizeUsername(input.Username)
	if err != nil {
		return models.User{}, validationError("username must be 3 to 32 letters, digits, '.', '_' or '-'")
	}
	email := ""
	if input.Email != "" {
		email = NormalizeAuthEmail(input.Email)
		if email == "" {
			return models.User{}, validationError("email address is invalid")
		}
	}
	password := strings.TrimSpace(input.Password)
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, validationError("password must be at least 8 characters with a letter and a digit")
	}

	exists, err := service.users.ExistsByUsername(username)
	if err != nil {
		return models.User{}, internalError("check username", err)
	}
	if exists {
		return models.User{}, conflictError("username is already taken")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, internalError("hash password", err)
	}

	now := service.now()
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleMember,
		Status:       models.UserStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := service.users.Create(&user, true); err != nil {
		if db.IsUniqueViolation(err) {
			return models.User{}, conflictError("username is already taken")
		}
		return models.User{}, internalError("create user", err)
	}

	service.activity.Record(&user.ID, models.ActivityRegister, user.Status, meta.IPAddress)
	return user, nil
}

// Login verifies credentials and opens a session for an approved account.
func (service *AuthService) Login(input LoginInput, meta SessionMeta) (models.User, models.AuthSession, error) {
	username, password, err := NormalizeCredentialsInput(input.Username, input.Password)
	if err != nil {
		return models.User{}, models.AuthSession{}, ErrInvalidCredentials
	}

	user, err := service.users.FindByUsername(username)
	if err != nil {
		if db.IsNotFound(err) {
			service.activity.Record(nil, models.ActivityLoginFailed, username, meta.IPAddress)
			return models.User{}, models.AuthSession{}, ErrInvalidCredentials
		}
		return models.User{}, models.AuthSession{}, internalError("load user", err)
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		service.activity.Record(&user.ID, models.ActivityLoginFailed, username, meta.IPAddress)
		return models.User{}, models.AuthSession{}, ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserStatusApproved:
	case models.UserStatusSuspended:
		return models.User{}, models.AuthSession{}, ErrAccountSuspended
	default:
		return models.User{}, models.AuthSession{}, ErrAccountPending
	}

	ttl := service.options.SessionTTL
	if input.RememberMe {
		ttl = service.options.RememberMeTTL
	}
	session, err := service.openSession(&user.ID, meta, ttl)
	if err != nil {
		return models.User{}, models.AuthSession{}, err
	}

	service.activity.Record(&user.ID, models.ActivityLogin, "", meta.IPAddress)
	return user, session, nil
}

// StartAnonymousSession opens a session that carries no user.
func (service *AuthService) StartAnonymousSession(meta SessionMeta) (models.AuthSession, error) {
	return service.openSession(nil, meta, service.options.SessionTTL)
}

func (service *AuthService) openSession(userID *uint, meta SessionMeta, ttl time.Duration) (models.AuthSession, error) {
	now := service.now()
	session := models.AuthSession{
		ID:        service.newID(),
		UserID:    userID,
		IPAddress: meta.IPAddress,
		UserAgent: truncate(meta.UserAgent, 255),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := service.sessions.Create(&session); err != nil {
		return models.AuthSession{}, internalError("create session", err)
	}
	return session, nil
}

// ResolveSession maps a session id to the caller. Expired sessions are
// deleted and reported as ErrSessionExpired. Sessions of accounts that are
// no longer approved resolve to an anonymous caller.
func (service *AuthService) ResolveSession(sessionID string) (*Identity, models.AuthSession, error) {
	session, err := service.sessions.FindByID(sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, models.AuthSession{}, ErrSessionUnknown
		}
		return nil, models.AuthSession{}, internalError("load session", err)
	}

	if session.ExpiredAt(service.now()) {
		if err := service.sessions.Delete(session.ID); err != nil {
			log.Printf("auth: delete expired session failed: %v", err)
		}
		return nil, models.AuthSession{}, ErrSessionExpired
	}

	if session.UserID == nil {
		return nil, session, nil
	}
	user, err := service.users.FindByID(*session.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, session, nil
		}
		return nil, models.AuthSession{}, internalError("load session user", err)
	}
	if user.Status != models.UserStatusApproved {
		return nil, session, nil
	}
	return IdentityFromUser(user), session, nil
}

func (service *AuthService) Logout(sessionID string, identity *Identity, meta SessionMeta) error {
	if err := service.sessions.Delete(sessionID); err != nil {
		return internalError("delete session", err)
	}
	if identity != nil {
		service.activity.Record(identity.UserIDPtr(), models.ActivityLogout, "", meta.IPAddress)
	}
	return nil
}

// SweepExpired deletes every expired session and returns how many were
// removed.
func (service *AuthService) SweepExpired() (int64, error) {
	removed, err := service.sessions.DeleteExpired(service.now())
	if err != nil {
		return 0, internalError("sweep sessions", err)
	}
	return removed, nil
}

// MaybeSweep starts a background sweep with the configured probability and
// reports whether it did. The sweep never blocks the caller.
func (service *AuthService) MaybeSweep() bool {
	if service.options.SweepProbability <= 0 || service.roll() >= service.options.SweepProbability {
		return false
	}
	go func() {
		if _, err := service.SweepExpired(); err != nil {
			log.Printf("auth: session sweep failed: %v", err)
		}
	}()
	return true
}

// ChangePassword replaces the password after checking the current one and
// signs the user out of every session.
func (service *AuthService) ChangePassword(userID uint, currentPassword string, newPassword string, meta SessionMeta) error {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return lookupError("user", err)
	}
	currentPassword = strings.TrimSpace(currentPassword)
	if !security.CheckPassword(user.PasswordHash, currentPassword) {
		return validationError("current password is incorrect")
	}
	newPassword = strings.TrimSpace(newPassword)
	if currentPassword == newPassword {
		return validationError("new password must differ from the current one")
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return validationError("password must be at least 8 characters with a letter and a digit")
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return internalError("hash password", err)
	}
	if err := service.users.UpdatePassword(user.ID, hash, false); err != nil {
		return internalError("update password", err)
	}
	if err := service.sessions.DeleteByUser(user.ID); err != nil {
		return internalError("revoke sessions", err)
	}

	service.activity.Record(&user.ID, models.ActivityPasswordChange, "", meta.IPAddress)
	return nil
}

// RequiresInitialSetup reports whether no account exists yet, so the next
// registration becomes the admin.
func (service *AuthService) RequiresInitialSetup() (bool, error) {
	count, err := service.users.CountUsers()
	if err != nil {
		return false, internalError("count users", err)
	}
	return count == 0, nil
}

func (service *AuthService) CurrentUser(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, lookupError("user", err)
	}
	return user, nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
