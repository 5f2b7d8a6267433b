package services

import "github.com/terraincognita07/tempo/internal/models"

// Identity is the resolved caller of a request. A nil *Identity is an
// anonymous visitor.
type Identity struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func IdentityFromUser(user models.User) *Identity {
	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Status:   user.Status,
	}
}

func (identity *Identity) IsAdmin() bool {
	return identity != nil && identity.Role == models.RoleAdmin
}

func (identity *Identity) IsAnonymous() bool {
	return identity == nil
}

func (identity *Identity) UserIDPtr() *uint {
	if identity == nil {
		return nil
	}
	userID := identity.UserID
	return &userID
}
