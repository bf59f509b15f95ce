package book

import "time"

const (
	EventBookCreated          = "BookCreated"
	EventBookUpdated          = "BookUpdated"
	EventBookDeleted          = "BookDeleted"
	EventBookCategoryAssigned = "BookCategoryAssigned"
	EventBookCategoryRemoved  = "BookCategoryRemoved"
	EventBookImageUpdated     = "BookImageUpdated"
)

type BookCreated struct {
	BookID      string    `json:"book_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	AuthorID    string    `json:"author_id,omitempty"`
	PublisherID string    `json:"publisher_id,omitempty"`
	SeriesID    string    `json:"series_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type BookUpdated struct {
	BookID      string    `json:"book_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	AuthorID    string    `json:"author_id,omitempty"`
	PublisherID string    `json:"publisher_id,omitempty"`
	SeriesID    string    `json:"series_id,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BookDeleted struct {
	BookID    string    `json:"book_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// BookCategoryAssigned is emitted when a category is assigned to a book
type BookCategoryAssigned struct {
	BookID     string    `json:"book_id"`
	CategoryID string    `json:"category_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// BookCategoryRemoved is emitted when a category is removed from a book
type BookCategoryRemoved struct {
	BookID     string    `json:"book_id"`
	CategoryID string    `json:"category_id"`
	RemovedAt  time.Time `json:"removed_at"`
}

// BookImageUpdated is emitted when the cover image is updated
type BookImageUpdated struct {
	BookID    string    `json:"book_id"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `json:"updated_at"`
}
