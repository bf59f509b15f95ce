package pricing

import (
	"log"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/promo"
)

// LineInput is one cart line enriched with the catalog attributes that
// promotion targets can reference.
type LineInput struct {
	BookID      string
	Title       string
	Quantity    int
	UnitPrice   int64
	CategoryIDs []string
	AuthorID    string
	PublisherID string
	SeriesID    string
}

// Input is everything one pricing computation needs. It is assembled
// up front by the caller so the engine itself never touches a store.
type Input struct {
	Lines          []LineInput
	ShippingMethod string
	ShippingCost   int64
	PaymentMethod  string
	PaymentOnline  bool
	User           promo.UserFacts
	Events         []*promo.PromoEvent
	EventUses      map[string]int // eventID -> total redemptions
	UserEventUses  map[string]int // eventID -> redemptions by this user
	Now            time.Time
}

// QuoteLine is one priced line of the result
type QuoteLine struct {
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	FinalPrice int64  `json:"final_price"`
	Saved      int64  `json:"saved"`
	Discounted bool   `json:"discounted"`
}

// Quote is the complete pricing result. It always satisfies
// DiscountedSubtotal + TotalSaved == OriginalSubtotal and
// GrandTotal == DiscountedSubtotal + ShippingCost.
type Quote struct {
	Lines              []QuoteLine `json:"lines"`
	OriginalSubtotal   int64       `json:"original_subtotal"`
	DiscountedSubtotal int64       `json:"discounted_subtotal"`
	TotalSaved         int64       `json:"total_saved"`
	ShippingCost       int64       `json:"shipping_cost"`
	GrandTotal         int64       `json:"grand_total"`
	FreeShipping       bool        `json:"free_shipping"`
	AppliedEventID     string      `json:"applied_event_id,omitempty"`
	AppliedEventName   string      `json:"applied_event_name,omitempty"`
}

// Compute prices an order. At most one promotional event applies: the
// selector picks the highest-priority eligible event, its rules are
// checked against the whole order, and only then do its actions run over
// the lines its targets put in scope. An event that is selected but whose
// rules fail does not cascade to the next event; the order is simply
// priced without a discount.
func Compute(in Input) Quote {
	q := Quote{Lines: make([]QuoteLine, 0, len(in.Lines))}

	for _, l := range in.Lines {
		q.OriginalSubtotal += l.UnitPrice * int64(l.Quantity)
	}

	selected := promo.Select(in.Events, in.Now)

	var apply bool
	if selected != nil {
		ctx := buildContext(in, selected)
		apply = promo.Matches(selected, ctx)
		if !apply {
			log.Printf("[Pricing] Event %s selected but rules not satisfied", selected.ID)
		}
	}

	for _, l := range in.Lines {
		line := QuoteLine{
			BookID:     l.BookID,
			Title:      l.Title,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			FinalPrice: l.UnitPrice * int64(l.Quantity),
		}
		if apply && promo.InScope(selected.Targets, lineFacts(l), in.User, in.Now) {
			finalUnit := promo.ApplyToPrice(selected.Actions, l.UnitPrice)
			line.FinalPrice = finalUnit * int64(l.Quantity)
			line.Saved = (l.UnitPrice - finalUnit) * int64(l.Quantity)
			line.Discounted = line.Saved != 0
		}
		q.DiscountedSubtotal += line.FinalPrice
		q.TotalSaved += line.Saved
		q.Lines = append(q.Lines, line)
	}

	q.ShippingCost = in.ShippingCost
	if apply && promo.GrantsFreeShipping(selected.Actions) {
		q.FreeShipping = true
		q.ShippingCost = 0
	}
	q.GrandTotal = q.DiscountedSubtotal + q.ShippingCost

	if apply && (q.TotalSaved > 0 || q.FreeShipping || anyDiscounted(q.Lines)) {
		q.AppliedEventID = selected.ID
		q.AppliedEventName = selected.Name
	}

	return q
}

func anyDiscounted(lines []QuoteLine) bool {
	for _, l := range lines {
		if l.Discounted {
			return true
		}
	}
	return false
}

func lineFacts(l LineInput) promo.LineFacts {
	return promo.LineFacts{
		BookID:      l.BookID,
		CategoryIDs: l.CategoryIDs,
		AuthorID:    l.AuthorID,
		PublisherID: l.PublisherID,
		SeriesID:    l.SeriesID,
	}
}

// buildContext assembles the order-level facts for rule matching
func buildContext(in Input, candidate *promo.PromoEvent) promo.Context {
	ctx := promo.Context{
		Now:            in.Now,
		BookIDs:        make(map[string]bool),
		CategoryIDs:    make(map[string]bool),
		AuthorIDs:      make(map[string]bool),
		PublisherIDs:   make(map[string]bool),
		PaymentMethod:  in.PaymentMethod,
		PaymentOnline:  in.PaymentOnline,
		ShippingMethod: in.ShippingMethod,
		User:           in.User,
	}

	for _, l := range in.Lines {
		ctx.Subtotal += l.UnitPrice * int64(l.Quantity)
		ctx.TotalQuantity += l.Quantity
		if !ctx.BookIDs[l.BookID] {
			ctx.DistinctBooks++
		}
		ctx.BookIDs[l.BookID] = true
		for _, c := range l.CategoryIDs {
			ctx.CategoryIDs[c] = true
		}
		if l.AuthorID != "" {
			ctx.AuthorIDs[l.AuthorID] = true
		}
		if l.PublisherID != "" {
			ctx.PublisherIDs[l.PublisherID] = true
		}
	}

	if candidate != nil {
		ctx.EventUses = in.EventUses[candidate.ID]
		ctx.UserEventUses = in.UserEventUses[candidate.ID]
	}

	return ctx
}
