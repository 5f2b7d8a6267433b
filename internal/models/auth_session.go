package models

import "time"

// AuthSession is a server-side browser session. A nil UserID marks an
// anonymous visitor.
type AuthSession struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    *uint     `gorm:"index"`
	IPAddress string    `gorm:"not null;default:''"`
	UserAgent string    `gorm:"not null;default:''"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`

	User *User `gorm:"constraint:OnDelete:CASCADE"`
}

func (session AuthSession) ExpiredAt(now time.Time) bool {
	return !now.Before(session.ExpiresAt)
}
