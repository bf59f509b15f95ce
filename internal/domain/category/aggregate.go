package category

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Category"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidName      = errors.New("name is required")
	ErrInvalidSlug      = errors.New("invalid slug format")
)

var (
	// lowercase letters, digits, single hyphens
	slugRegex      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugStripRegex = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashRegex  = regexp.MustCompile(`-+`)
)

// Category groups books for browsing and promotion targeting. Deletion
// is soft: the read model keeps the row with IsActive false.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	ParentID    string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Service handles category domain operations
type Service struct {
	eventStore store.EventStoreInterface
}

// NewService creates a new category service
func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) resolveSlug(name, slug string) (string, error) {
	if slug == "" {
		slug = slugify(name)
	}
	if !slugRegex.MatchString(slug) {
		return "", ErrInvalidSlug
	}
	return slug, nil
}

// Create creates a new category
func (s *Service) Create(ctx context.Context, name, slug, description, parentID string, sortOrder int) (*Category, error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	slug, err := s.resolveSlug(name, slug)
	if err != nil {
		return nil, err
	}

	categoryID := uuid.New().String()
	now := time.Now()

	event := CategoryCreated{
		CategoryID:  categoryID,
		Name:        name,
		Slug:        slug,
		Description: description,
		ParentID:    parentID,
		SortOrder:   sortOrder,
		CreatedAt:   now,
	}

	if _, err := s.eventStore.Append(ctx, categoryID, AggregateType, EventCategoryCreated, event); err != nil {
		return nil, err
	}

	return &Category{
		ID:          categoryID,
		Name:        name,
		Slug:        slug,
		Description: description,
		ParentID:    parentID,
		SortOrder:   sortOrder,
		IsActive:    true,
		CreatedAt:   now,
	}, nil
}

// Update updates an existing category
func (s *Service) Update(ctx context.Context, categoryID, name, slug, description, parentID string, sortOrder int) error {
	if name == "" {
		return ErrInvalidName
	}
	if len(s.eventStore.GetEvents(categoryID)) == 0 {
		return ErrCategoryNotFound
	}

	slug, err := s.resolveSlug(name, slug)
	if err != nil {
		return err
	}

	event := CategoryUpdated{
		CategoryID:  categoryID,
		Name:        name,
		Slug:        slug,
		Description: description,
		ParentID:    parentID,
		SortOrder:   sortOrder,
		UpdatedAt:   time.Now(),
	}

	_, err = s.eventStore.Append(ctx, categoryID, AggregateType, EventCategoryUpdated, event)
	return err
}

// Delete retires a category. Books keep their assignment; the category
// just stops showing in listings.
func (s *Service) Delete(ctx context.Context, categoryID string) error {
	if len(s.eventStore.GetEvents(categoryID)) == 0 {
		return ErrCategoryNotFound
	}

	event := CategoryDeleted{
		CategoryID: categoryID,
		DeletedAt:  time.Now(),
	}

	_, err := s.eventStore.Append(ctx, categoryID, AggregateType, EventCategoryDeleted, event)
	return err
}

// slugify derives a URL-friendly slug from a display name
func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	slug = slugStripRegex.ReplaceAllString(slug, "")
	slug = slugDashRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
