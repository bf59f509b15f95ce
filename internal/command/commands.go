package command

// Book Commands
type CreateBook struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	AuthorID    string `json:"author_id,omitempty"`
	PublisherID string `json:"publisher_id,omitempty"`
	SeriesID    string `json:"series_id,omitempty"`
}

type UpdateBook struct {
	BookID      string `json:"book_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	AuthorID    string `json:"author_id,omitempty"`
	PublisherID string `json:"publisher_id,omitempty"`
	SeriesID    string `json:"series_id,omitempty"`
}

type DeleteBook struct {
	BookID string `json:"book_id"`
}

type AssignBookCategory struct {
	BookID     string `json:"book_id"`
	CategoryID string `json:"category_id"`
}

type RemoveBookCategory struct {
	BookID     string `json:"book_id"`
	CategoryID string `json:"category_id"`
}

// Cart Commands
type AddToCart struct {
	UserID   string `json:"user_id"`
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

type RemoveFromCart struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
}

type ClearCart struct {
	UserID string `json:"user_id"`
}

// Checkout turns the user's cart into a bill. Pricing runs exactly once
// here; the result is frozen into the bill.
type Checkout struct {
	UserID           string `json:"user_id"`
	ShippingMethodID string `json:"shipping_method_id"`
	PaymentMethodID  string `json:"payment_method_id"`
	Address          string `json:"address"`
}

// Bill Commands
type UpdateBillStatus struct {
	BillID    string `json:"bill_id"`
	NewStatus string `json:"new_status"`
}

type CancelBill struct {
	BillID string `json:"bill_id"`
	Reason string `json:"reason"`
}

// Inventory Commands
type AddStock struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}
