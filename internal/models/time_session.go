package models

import "time"

type TimeSession struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TaskID      *uint      `gorm:"index" json:"taskId"`
	ProjectID   uint       `gorm:"not null;index" json:"projectId"`
	UserID      *uint      `json:"userId"`
	StartTime   time.Time  `gorm:"not null" json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Duration    *int64     `json:"duration"`
	IsActive    bool       `gorm:"not null" json:"isActive"`
	Description string     `gorm:"not null;default:''" json:"description"`
	CreatedAt   time.Time  `gorm:"not null" json:"createdAt"`

	Task    *Task    `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Project *Project `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// StopAt closes an active session at the given instant. Duration is counted
// in whole seconds and never negative.
func (session *TimeSession) StopAt(now time.Time) {
	seconds := int64(now.Sub(session.StartTime) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	end := now
	session.EndTime = &end
	session.Duration = &seconds
	session.IsActive = false
}
