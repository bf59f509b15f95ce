package query

import (
	"log"
	"sort"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/bill"
	"github.com/example/bookshop-event-driven/internal/domain/cart"
	"github.com/example/bookshop-event-driven/internal/domain/promo"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/example/bookshop-event-driven/internal/pricing"
	"github.com/example/bookshop-event-driven/internal/registry"
)

type Handler struct {
	readStore store.ReadStoreInterface
	registry  *registry.Registry
}

func NewHandler(readStore store.ReadStoreInterface, reg *registry.Registry) *Handler {
	return &Handler{readStore: readStore, registry: reg}
}

// Books
func (h *Handler) GetBook(id string) (*BookReadModel, bool) {
	data, ok, err := h.readStore.Get("books", id)
	if err != nil {
		log.Printf("[Query] Error getting book %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*BookReadModel), true
}

func (h *Handler) ListBooks() []*BookReadModel {
	items, err := h.readStore.GetAll("books")
	if err != nil {
		log.Printf("[Query] Error listing books: %v", err)
		return nil
	}
	books := make([]*BookReadModel, 0, len(items))
	for _, item := range items {
		books = append(books, item.(*BookReadModel))
	}
	return books
}

// Cart
func (h *Handler) GetCart(userID string) (*CartReadModel, bool) {
	cartID := cart.GetCartID(userID)
	data, ok, err := h.readStore.Get("carts", cartID)
	if err != nil {
		log.Printf("[Query] Error getting cart %s: %v", cartID, err)
		return nil, false
	}
	if !ok {
		// Return empty cart
		return &CartReadModel{
			ID:     cartID,
			UserID: userID,
			Items:  []CartItemReadModel{},
			Total:  0,
		}, true
	}
	return data.(*CartReadModel), true
}

// Bills
func (h *Handler) GetBill(id string) (*BillReadModel, bool) {
	data, ok, err := h.readStore.Get("bills", id)
	if err != nil {
		log.Printf("[Query] Error getting bill %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*BillReadModel), true
}

func (h *Handler) ListBillsByUser(userID string) []*BillReadModel {
	items, err := h.readStore.GetAll("bills")
	if err != nil {
		log.Printf("[Query] Error listing bills: %v", err)
		return nil
	}
	bills := make([]*BillReadModel, 0)
	for _, item := range items {
		b := item.(*BillReadModel)
		if b.UserID == userID {
			bills = append(bills, b)
		}
	}
	return bills
}

// ListAllBills returns all bills (for admin use)
func (h *Handler) ListAllBills() []*BillReadModel {
	items, err := h.readStore.GetAll("bills")
	if err != nil {
		log.Printf("[Query] Error listing all bills: %v", err)
		return nil
	}
	bills := make([]*BillReadModel, 0, len(items))
	for _, item := range items {
		bills = append(bills, item.(*BillReadModel))
	}
	return bills
}

// GetBillTransitions returns the legal next statuses for a bill. Clients
// render exactly this set; they never compute transitions themselves.
func (h *Handler) GetBillTransitions(id string) ([]bill.Status, bool) {
	b, ok := h.GetBill(id)
	if !ok {
		return nil, false
	}
	return bill.NextStatuses(bill.Status(b.Status)), true
}

// Inventory
func (h *Handler) GetInventory(bookID string) (*InventoryReadModel, bool) {
	data, ok, err := h.readStore.Get("inventory", bookID)
	if err != nil {
		log.Printf("[Query] Error getting inventory %s: %v", bookID, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*InventoryReadModel), true
}

// Categories
func (h *Handler) GetCategory(id string) (*CategoryReadModel, bool) {
	data, ok, err := h.readStore.Get("categories", id)
	if err != nil {
		log.Printf("[Query] Error getting category %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*CategoryReadModel), true
}

func (h *Handler) ListCategories() []*CategoryReadModel {
	items, err := h.readStore.GetAll("categories")
	if err != nil {
		log.Printf("[Query] Error listing categories: %v", err)
		return nil
	}
	categories := make([]*CategoryReadModel, 0, len(items))
	for _, item := range items {
		c := item.(*CategoryReadModel)
		if c.IsActive {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})
	return categories
}

// Promotional events
func (h *Handler) GetPromoEvent(id string) (*PromoEventReadModel, bool) {
	data, ok, err := h.readStore.Get("promo_events", id)
	if err != nil {
		log.Printf("[Query] Error getting promo event %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*PromoEventReadModel), true
}

func (h *Handler) ListPromoEvents() []*PromoEventReadModel {
	items, err := h.readStore.GetAll("promo_events")
	if err != nil {
		log.Printf("[Query] Error listing promo events: %v", err)
		return nil
	}
	events := make([]*PromoEventReadModel, 0, len(items))
	for _, item := range items {
		events = append(events, item.(*PromoEventReadModel))
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Priority > events[j].Priority
	})
	return events
}

// GetCurrentPromoEvent returns the event the selector would pick right
// now, for storefront banners and admin diagnostics
func (h *Handler) GetCurrentPromoEvent(now time.Time) (*PromoEventReadModel, bool) {
	items, err := h.readStore.GetAll("promo_events")
	if err != nil {
		log.Printf("[Query] Error listing promo events: %v", err)
		return nil, false
	}
	domainEvents := make([]*promo.PromoEvent, 0, len(items))
	byID := make(map[string]*PromoEventReadModel, len(items))
	for _, item := range items {
		ev := item.(*PromoEventReadModel)
		byID[ev.ID] = ev
		domainEvents = append(domainEvents, pricing.EventFromReadModel(ev))
	}
	selected := promo.Select(domainEvents, now)
	if selected == nil {
		return nil, false
	}
	return byID[selected.ID], true
}

// PreviewCheckout prices the user's current cart without placing a bill
func (h *Handler) PreviewCheckout(userID, shippingMethodID, paymentMethodID string, now time.Time) (*pricing.Quote, error) {
	c, _ := h.GetCart(userID)
	if len(c.Items) == 0 {
		return nil, bill.ErrEmptyBill
	}

	shipping, err := h.registry.ShippingMethod(shippingMethodID)
	if err != nil {
		return nil, err
	}
	payment, err := h.registry.PaymentMethod(paymentMethodID)
	if err != nil {
		return nil, err
	}

	input, err := pricing.BuildInput(h.readStore, userID, c.Items,
		shipping.ID, shipping.BaseCost, payment.ID, payment.Online, now)
	if err != nil {
		return nil, err
	}

	quote := pricing.Compute(input)
	return &quote, nil
}

// Users
func (h *Handler) GetUser(id string) (*UserReadModel, bool) {
	data, ok, err := h.readStore.Get("users", id)
	if err != nil {
		log.Printf("[Query] Error getting user %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*UserReadModel), true
}

// GetUserByEmail scans the users collection for a matching email
func (h *Handler) GetUserByEmail(email string) (*UserReadModel, bool) {
	items, err := h.readStore.GetAll("users")
	if err != nil {
		log.Printf("[Query] Error listing users: %v", err)
		return nil, false
	}
	for _, item := range items {
		u := item.(*UserReadModel)
		if u.Email == email {
			return u, true
		}
	}
	return nil, false
}
