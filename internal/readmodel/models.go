package readmodel

import "time"

// Prices throughout are integer VND; the currency has no subunit, so no
// fixed-point scaling is needed, but all arithmetic stays in int64.

// BookReadModel is the read model for catalog books
type BookReadModel struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	AuthorID    string    `json:"author_id,omitempty"`
	PublisherID string    `json:"publisher_id,omitempty"`
	SeriesID    string    `json:"series_id,omitempty"`
	CategoryIDs []string  `json:"category_ids,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CartItemReadModel represents a line in the cart
type CartItemReadModel struct {
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// CartReadModel is the read model for shopping carts
type CartReadModel struct {
	ID     string              `json:"id"`
	UserID string              `json:"user_id"`
	Items  []CartItemReadModel `json:"items"`
	Total  int64               `json:"total"`
}

// BillLineReadModel is one priced line of a bill. UnitPrice and FinalPrice
// are the frozen snapshot values taken at checkout.
type BillLineReadModel struct {
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	FinalPrice int64  `json:"final_price"`
}

// BillReadModel is the read model for bills
type BillReadModel struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"user_id"`
	Lines              []BillLineReadModel `json:"lines"`
	OriginalSubtotal   int64               `json:"original_subtotal"`
	DiscountedSubtotal int64               `json:"discounted_subtotal"`
	TotalSaved         int64               `json:"total_saved"`
	ShippingCost       int64               `json:"shipping_cost"`
	GrandTotal         int64               `json:"grand_total"`
	ShippingMethodID   string              `json:"shipping_method_id"`
	PaymentMethodID    string              `json:"payment_method_id"`
	Address            string              `json:"address"`
	AppliedEventID     string              `json:"applied_event_id,omitempty"`
	AppliedEventName   string              `json:"applied_event_name,omitempty"`
	Status             string              `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// InventoryReadModel is the read model for book stock
type InventoryReadModel struct {
	BookID         string `json:"book_id"`
	TotalStock     int    `json:"total_stock"`
	ReservedStock  int    `json:"reserved_stock"`
	AvailableStock int    `json:"available_stock"`
}

// UserReadModel is the read model for users; it also carries the profile
// facts the promotion rule matcher evaluates.
type UserReadModel struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	VIP          bool      `json:"vip"`
	Location     string    `json:"location,omitempty"`
	GroupIDs     []string  `json:"group_ids,omitempty"`
	BillsPlaced  int       `json:"bills_placed"`
	IsActive     bool      `json:"is_active"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionReadModel is the read model for user sessions
type SessionReadModel struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
}

// CategoryReadModel is the read model for book categories
type CategoryReadModel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ParentID    string    `json:"parent_id,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PromoRuleReadModel is one eligibility rule of a promotional event
type PromoRuleReadModel struct {
	ID        string `json:"id"`
	RuleType  string `json:"rule_type"`
	RuleValue string `json:"rule_value"`
}

// PromoTargetReadModel is one target of a promotional event
type PromoTargetReadModel struct {
	ID         string `json:"id"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id,omitempty"`
}

// PromoActionReadModel is one price action of a promotional event
type PromoActionReadModel struct {
	ID          string `json:"id"`
	ActionType  string `json:"action_type"`
	ActionValue string `json:"action_value"`
}

// PromoImageReadModel is a display-only banner image
type PromoImageReadModel struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// PromoEventReadModel is the read model for promotional events, including
// the owned rule/target/action collections the pricing engine evaluates.
type PromoEventReadModel struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	StartAt     time.Time              `json:"start_at"`
	EndAt       time.Time              `json:"end_at"`
	Status      string                 `json:"status"`
	Priority    int                    `json:"priority"`
	CreatedBy   string                 `json:"created_by"`
	Rules       []PromoRuleReadModel   `json:"rules"`
	Targets     []PromoTargetReadModel `json:"targets"`
	Actions     []PromoActionReadModel `json:"actions"`
	Images      []PromoImageReadModel  `json:"images,omitempty"`
	UsageCount  int                    `json:"usage_count"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// PromoUsageReadModel counts how often one user redeemed one event.
// Keyed in the read store by "<event_id>:<user_id>".
type PromoUsageReadModel struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Uses    int    `json:"uses"`
}
