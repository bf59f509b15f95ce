package bill

import "time"

const (
	EventBillPlaced        = "BillPlaced"
	EventBillStatusChanged = "BillStatusChanged"
	EventBillCancelled     = "BillCancelled"
)

// Line is one priced bill line. UnitPrice and FinalPrice are frozen at
// placement; later promo event changes never touch them.
type Line struct {
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	FinalPrice int64  `json:"final_price"`
}

// BillPlaced carries the full price snapshot taken at checkout
type BillPlaced struct {
	BillID             string    `json:"bill_id"`
	UserID             string    `json:"user_id"`
	Lines              []Line    `json:"lines"`
	OriginalSubtotal   int64     `json:"original_subtotal"`
	DiscountedSubtotal int64     `json:"discounted_subtotal"`
	TotalSaved         int64     `json:"total_saved"`
	ShippingCost       int64     `json:"shipping_cost"`
	GrandTotal         int64     `json:"grand_total"`
	ShippingMethodID   string    `json:"shipping_method_id"`
	PaymentMethodID    string    `json:"payment_method_id"`
	Address            string    `json:"address"`
	AppliedEventID     string    `json:"applied_event_id,omitempty"`
	AppliedEventName   string    `json:"applied_event_name,omitempty"`
	PlacedAt           time.Time `json:"placed_at"`
}

// BillStatusChanged is emitted for every forward lifecycle move
type BillStatusChanged struct {
	BillID    string    `json:"bill_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// BillCancelled is emitted when a bill is cancelled before shipping completes
type BillCancelled struct {
	BillID      string    `json:"bill_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}
