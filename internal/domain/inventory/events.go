package inventory

import "time"

const (
	EventStockAdded    = "StockAdded"
	EventStockReserved = "StockReserved"
	EventStockReleased = "StockReleased"
	EventStockDeducted = "StockDeducted"
)

type StockAdded struct {
	BookID   string    `json:"book_id"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

// RefID names what the stock movement belongs to: the cart during
// checkout, the bill afterwards.
type StockReserved struct {
	BookID     string    `json:"book_id"`
	RefID      string    `json:"ref_id"`
	Quantity   int       `json:"quantity"`
	ReservedAt time.Time `json:"reserved_at"`
}

type StockReleased struct {
	BookID     string    `json:"book_id"`
	RefID      string    `json:"ref_id"`
	Quantity   int       `json:"quantity"`
	ReleasedAt time.Time `json:"released_at"`
}

type StockDeducted struct {
	BookID     string    `json:"book_id"`
	RefID      string    `json:"ref_id"`
	Quantity   int       `json:"quantity"`
	DeductedAt time.Time `json:"deducted_at"`
}
