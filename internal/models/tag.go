package models

import "time"

const DefaultTagColor = "#94A3B8"

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	Color     string    `gorm:"not null;default:'#94A3B8'" json:"color"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
