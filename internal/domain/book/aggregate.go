package book

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/aggregate"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Book"

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidPrice = errors.New("price must be positive")
	ErrInvalidTitle = errors.New("title is required")
)

// Book is the catalog aggregate. The attribute IDs (author, publisher,
// series, categories) are what promotion targeting matches against.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	AuthorID    string    `json:"author_id,omitempty"`
	PublisherID string    `json:"publisher_id,omitempty"`
	SeriesID    string    `json:"series_id,omitempty"`
	CategoryIDs []string  `json:"category_ids,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsDeleted   bool      `json:"is_deleted,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

func (b *Book) GetID() string    { return b.ID }
func (b *Book) GetVersion() int  { return b.Version }
func (b *Book) SetVersion(v int) { b.Version = v }

// ApplyEvent applies a single stored event to the book state
func (b *Book) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventBookCreated:
		var data BookCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		b.ID = data.BookID
		b.Title = data.Title
		b.Description = data.Description
		b.Price = data.Price
		b.AuthorID = data.AuthorID
		b.PublisherID = data.PublisherID
		b.SeriesID = data.SeriesID
		b.CreatedAt = data.CreatedAt
		b.UpdatedAt = data.CreatedAt
	case EventBookUpdated:
		var data BookUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		b.Title = data.Title
		b.Description = data.Description
		b.Price = data.Price
		b.AuthorID = data.AuthorID
		b.PublisherID = data.PublisherID
		b.SeriesID = data.SeriesID
		b.UpdatedAt = data.UpdatedAt
	case EventBookDeleted:
		var data BookDeleted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		b.IsDeleted = true
		b.UpdatedAt = data.DeletedAt
	case EventBookCategoryAssigned:
		var data BookCategoryAssigned
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		for _, id := range b.CategoryIDs {
			if id == data.CategoryID {
				b.Version = event.Version
				return nil
			}
		}
		b.CategoryIDs = append(b.CategoryIDs, data.CategoryID)
		b.UpdatedAt = data.AssignedAt
	case EventBookCategoryRemoved:
		var data BookCategoryRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		kept := b.CategoryIDs[:0]
		for _, id := range b.CategoryIDs {
			if id != data.CategoryID {
				kept = append(kept, id)
			}
		}
		b.CategoryIDs = kept
		b.UpdatedAt = data.RemovedAt
	case EventBookImageUpdated:
		var data BookImageUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		b.ImageURL = data.ImageURL
		b.UpdatedAt = data.UpdatedAt
	}
	b.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) load(ctx context.Context, bookID string) (*Book, error) {
	b, found, err := aggregate.LoadAggregate(ctx, s.eventStore, bookID, func() *Book {
		return &Book{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrBookNotFound
	}
	return b, nil
}

// Get returns the current state of a book
func (s *Service) Get(ctx context.Context, bookID string) (*Book, error) {
	return s.load(ctx, bookID)
}

func (s *Service) Create(ctx context.Context, title, description string, price int64, authorID, publisherID, seriesID string) (*Book, error) {
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	bookID := uuid.New().String()
	now := time.Now()

	event := BookCreated{
		BookID:      bookID,
		Title:       title,
		Description: description,
		Price:       price,
		AuthorID:    authorID,
		PublisherID: publisherID,
		SeriesID:    seriesID,
		CreatedAt:   now,
	}

	_, err := s.eventStore.Append(ctx, bookID, AggregateType, EventBookCreated, event)
	if err != nil {
		return nil, err
	}

	return &Book{
		ID:          bookID,
		Title:       title,
		Description: description,
		Price:       price,
		AuthorID:    authorID,
		PublisherID: publisherID,
		SeriesID:    seriesID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Service) Update(ctx context.Context, bookID, title, description string, price int64, authorID, publisherID, seriesID string) error {
	if title == "" {
		return ErrInvalidTitle
	}
	if price <= 0 {
		return ErrInvalidPrice
	}

	events := s.eventStore.GetEvents(bookID)
	if len(events) == 0 {
		return ErrBookNotFound
	}

	event := BookUpdated{
		BookID:      bookID,
		Title:       title,
		Description: description,
		Price:       price,
		AuthorID:    authorID,
		PublisherID: publisherID,
		SeriesID:    seriesID,
		UpdatedAt:   time.Now(),
	}

	_, err := s.eventStore.Append(ctx, bookID, AggregateType, EventBookUpdated, event)
	return err
}

func (s *Service) Delete(ctx context.Context, bookID string) error {
	events := s.eventStore.GetEvents(bookID)
	if len(events) == 0 {
		return ErrBookNotFound
	}

	event := BookDeleted{
		BookID:    bookID,
		DeletedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, bookID, AggregateType, EventBookDeleted, event)
	return err
}

// AssignCategory links a book to a category
func (s *Service) AssignCategory(ctx context.Context, bookID, categoryID string) error {
	events := s.eventStore.GetEvents(bookID)
	if len(events) == 0 {
		return ErrBookNotFound
	}

	event := BookCategoryAssigned{
		BookID:     bookID,
		CategoryID: categoryID,
		AssignedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, bookID, AggregateType, EventBookCategoryAssigned, event)
	return err
}

// RemoveCategory unlinks a book from a category
func (s *Service) RemoveCategory(ctx context.Context, bookID, categoryID string) error {
	events := s.eventStore.GetEvents(bookID)
	if len(events) == 0 {
		return ErrBookNotFound
	}

	event := BookCategoryRemoved{
		BookID:     bookID,
		CategoryID: categoryID,
		RemovedAt:  time.Now(),
	}

	_, err := s.eventStore.Append(ctx, bookID, AggregateType, EventBookCategoryRemoved, event)
	return err
}

// UpdateImage sets the cover image URL
func (s *Service) UpdateImage(ctx context.Context, bookID, imageURL string) error {
	events := s.eventStore.GetEvents(bookID)
	if len(events) == 0 {
		return ErrBookNotFound
	}

	event := BookImageUpdated{
		BookID:    bookID,
		ImageURL:  imageURL,
		UpdatedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, bookID, AggregateType, EventBookImageUpdated, event)
	return err
}
