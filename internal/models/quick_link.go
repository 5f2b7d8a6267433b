package models

import "time"

const (
	LinkCategoryDocs      = "docs"
	LinkCategoryTools     = "tools"
	LinkCategoryResources = "resources"
	LinkCategoryOther     = "other"
)

type QuickLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"projectId"`
	Title     string    `gorm:"not null" json:"title"`
	URL       string    `gorm:"column:url;not null" json:"url"`
	Category  string    `gorm:"not null;default:other" json:"category"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	Project *Project `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func IsValidLinkCategory(category string) bool {
	switch category {
	case LinkCategoryDocs, LinkCategoryTools, LinkCategoryResources, LinkCategoryOther:
		return true
	default:
		return false
	}
}
