package models

import "time"

const (
	ActivityRegister       = "register"
	ActivityLogin          = "login"
	ActivityLoginFailed    = "login_failed"
	ActivityLogout         = "logout"
	ActivityPasswordChange = "password_change"
	ActivityUserUpdated    = "user_updated"
	ActivityGrantChanged   = "grant_changed"
)

type UserActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"userId"`
	Action    string    `gorm:"not null" json:"action"`
	Detail    string    `gorm:"not null;default:''" json:"detail"`
	IPAddress string    `gorm:"not null;default:''" json:"ipAddress"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`

	User *User `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}
