package services

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/tempo/internal/models"
)

type QuickLinkRepository interface {
	ListByProject(projectID uint) ([]models.QuickLink, error)
	FindByID(linkID uint) (models.QuickLink, error)
	NextPosition(projectID uint) (int, error)
	Create(link *models.QuickLink) error
	UpdateFields(linkID uint, updates map[string]any) error
	Delete(linkID uint) error
	Reorder(projectID uint, orderedIDs []uint) error
}

type CreateQuickLinkInput struct {
	ProjectID uint   `json:"projectId"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Category  string `json:"category"`
}

type UpdateQuickLinkInput struct {
	Title    *string `json:"title"`
	URL      *string `json:"url"`
	Category *string `json:"category"`
}

type QuickLinkService struct {
	links QuickLinkRepository
	now   func() time.Time
}

func NewQuickLinkService(links QuickLinkRepository) *QuickLinkService {
	return &QuickLinkService{
		links: links,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (service *QuickLinkService) List(projectID uint) ([]models.QuickLink, error) {
	links, err := service.links.ListByProject(projectID)
	if err != nil {
		return nil, internalError("list quick links", err)
	}
	return links, nil
}

func (service *QuickLinkService) Get(linkID uint) (models.QuickLink, error) {
	link, err := service.links.FindByID(linkID)
	if err != nil {
		return models.QuickLink{}, lookupError("quick link", err)
	}
	return link, nil
}

func (service *QuickLinkService) Create(input CreateQuickLinkInput) (models.QuickLink, error) {
	if input.ProjectID == 0 {
		return models.QuickLink{}, validationError("projectId is required")
	}
	title, err := normalizeLinkTitle(input.Title)
	if err != nil {
		return models.QuickLink{}, err
	}
	target, err := NormalizeLinkURL(input.URL)
	if err != nil {
		return models.QuickLink{}, err
	}
	category, err := normalizeLinkCategory(input.Category)
	if err != nil {
		return models.QuickLink{}, err
	}

	position, err := service.links.NextPosition(input.ProjectID)
	if err != nil {
		return models.QuickLink{}, internalError("compute link position", err)
	}

	now := service.now()
	link := models.QuickLink{
		ProjectID: input.ProjectID,
		Title:     title,
		URL:       target,
		Category:  category,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := service.links.Create(&link); err != nil {
		return models.QuickLink{}, internalError("create quick link", err)
	}
	return link, nil
}

func (service *QuickLinkService) Update(linkID uint, input UpdateQuickLinkInput) (models.QuickLink, error) {
	updates := make(map[string]any)
	if input.Title != nil {
		title, err := normalizeLinkTitle(*input.Title)
		if err != nil {
			return models.QuickLink{}, err
		}
		updates["title"] = title
	}
	if input.URL != nil {
		target, err := NormalizeLinkURL(*input.URL)
		if err != nil {
			return models.QuickLink{}, err
		}
		updates["url"] = target
	}
	if input.Category != nil {
		category, err := normalizeLinkCategory(*input.Category)
		if err != nil {
			return models.QuickLink{}, err
		}
		updates["category"] = category
	}

	if len(updates) > 0 {
		updates["updated_at"] = service.now()
		if err := service.links.UpdateFields(linkID, updates); err != nil {
			return models.QuickLink{}, lookupError("quick link", err)
		}
	}
	return service.Get(linkID)
}

func (service *QuickLinkService) Delete(linkID uint) error {
	if err := service.links.Delete(linkID); err != nil {
		return lookupError("quick link", err)
	}
	return nil
}

func (service *QuickLinkService) Reorder(projectID uint, orderedIDs []uint) error {
	seen := make(map[uint]struct{}, len(orderedIDs))
	for _, linkID := range orderedIDs {
		if _, duplicate := seen[linkID]; duplicate {
			return validationError("link ids must be unique")
		}
		seen[linkID] = struct{}{}
	}
	if err := service.links.Reorder(projectID, orderedIDs); err != nil {
		return internalError("reorder quick links", err)
	}
	return nil
}

// NormalizeLinkURL accepts absolute http and https URLs only.
func NormalizeLinkURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", validationError("url must be an absolute http or https address")
	}
	return parsed.String(), nil
}

func normalizeLinkTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", validationError("title is required")
	}
	if utf8.RuneCountInString(title) > maxTaskTitleLength {
		return "", validationError("title must be at most 200 characters")
	}
	return title, nil
}

func normalizeLinkCategory(raw string) (string, error) {
	category := strings.ToLower(strings.TrimSpace(raw))
	if category == "" {
		return models.LinkCategoryOther, nil
	}
	if !models.IsValidLinkCategory(category) {
		return "", validationError("category must be docs, tools, resources or other")
	}
	return category, nil
}
