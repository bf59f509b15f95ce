package command

import (
	"context"
	"log"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/bill"
	"github.com/example/bookshop-event-driven/internal/domain/book"
	"github.com/example/bookshop-event-driven/internal/domain/cart"
	"github.com/example/bookshop-event-driven/internal/domain/inventory"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/example/bookshop-event-driven/internal/pricing"
	"github.com/example/bookshop-event-driven/internal/readmodel"
	"github.com/example/bookshop-event-driven/internal/registry"
)

type Handler struct {
	bookSvc      *book.Service
	cartSvc      *cart.Service
	billSvc      *bill.Service
	inventorySvc *inventory.Service
	registry     *registry.Registry
	readStore    store.ReadStoreInterface
}

func NewHandler(
	bookSvc *book.Service,
	cartSvc *cart.Service,
	billSvc *bill.Service,
	inventorySvc *inventory.Service,
	reg *registry.Registry,
	readStore store.ReadStoreInterface,
) *Handler {
	return &Handler{
		bookSvc:      bookSvc,
		cartSvc:      cartSvc,
		billSvc:      billSvc,
		inventorySvc: inventorySvc,
		registry:     reg,
		readStore:    readStore,
	}
}

// CreateBook creates a new book (read store updated async via Kafka)
func (h *Handler) CreateBook(ctx context.Context, cmd CreateBook) (*book.Book, error) {
	b, err := h.bookSvc.Create(ctx, cmd.Title, cmd.Description, cmd.Price, cmd.AuthorID, cmd.PublisherID, cmd.SeriesID)
	if err != nil {
		return nil, err
	}

	if cmd.Stock > 0 {
		if err := h.inventorySvc.AddStock(ctx, b.ID, cmd.Stock); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (h *Handler) UpdateBook(ctx context.Context, cmd UpdateBook) error {
	return h.bookSvc.Update(ctx, cmd.BookID, cmd.Title, cmd.Description, cmd.Price, cmd.AuthorID, cmd.PublisherID, cmd.SeriesID)
}

func (h *Handler) DeleteBook(ctx context.Context, cmd DeleteBook) error {
	return h.bookSvc.Delete(ctx, cmd.BookID)
}

func (h *Handler) AssignBookCategory(ctx context.Context, cmd AssignBookCategory) error {
	return h.bookSvc.AssignCategory(ctx, cmd.BookID, cmd.CategoryID)
}

func (h *Handler) RemoveBookCategory(ctx context.Context, cmd RemoveBookCategory) error {
	return h.bookSvc.RemoveCategory(ctx, cmd.BookID, cmd.CategoryID)
}

func (h *Handler) AddStock(ctx context.Context, cmd AddStock) error {
	return h.inventorySvc.AddStock(ctx, cmd.BookID, cmd.Quantity)
}

// AddToCart adds an item to cart at the book's current catalog price
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) error {
	raw, ok, err := h.readStore.Get("books", cmd.BookID)
	if err != nil {
		return err
	}
	if !ok {
		return book.ErrBookNotFound
	}
	b := raw.(*readmodel.BookReadModel)

	return h.cartSvc.AddItem(ctx, cmd.UserID, cmd.BookID, cmd.Quantity, b.Price)
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	return h.cartSvc.RemoveItem(ctx, cmd.UserID, cmd.BookID)
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	return h.cartSvc.Clear(ctx, cmd.UserID)
}

// Checkout prices the cart, reserves stock, and places the bill. The
// quote is computed once and frozen into the BillPlaced event; later
// promotion changes never reprice an existing bill.
func (h *Handler) Checkout(ctx context.Context, cmd Checkout) (*bill.Bill, error) {
	cartID := cart.GetCartID(cmd.UserID)
	raw, ok, err := h.readStore.Get("carts", cartID)
	if err != nil {
		return nil, err
	}
	if !ok || len(raw.(*readmodel.CartReadModel).Items) == 0 {
		return nil, bill.ErrEmptyBill
	}
	cartModel := raw.(*readmodel.CartReadModel)

	shipping, err := h.registry.ShippingMethod(cmd.ShippingMethodID)
	if err != nil {
		return nil, err
	}
	payment, err := h.registry.PaymentMethod(cmd.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	input, err := pricing.BuildInput(h.readStore, cmd.UserID, cartModel.Items,
		shipping.ID, shipping.BaseCost, payment.ID, payment.Online, now)
	if err != nil {
		return nil, err
	}

	quote := pricing.Compute(input)

	// Reserve stock before the bill exists; roll back reservations on
	// any failure so a rejected checkout holds nothing.
	reserved := make([]pricing.QuoteLine, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		if err := h.inventorySvc.Reserve(ctx, line.BookID, cartID, line.Quantity); err != nil {
			for _, r := range reserved {
				if relErr := h.inventorySvc.Release(ctx, r.BookID, cartID, r.Quantity); relErr != nil {
					log.Printf("[Command] Failed to release stock for book %s: %v", r.BookID, relErr)
				}
			}
			return nil, err
		}
		reserved = append(reserved, line)
	}

	lines := make([]bill.Line, len(quote.Lines))
	for i, l := range quote.Lines {
		lines[i] = bill.Line{
			BookID:     l.BookID,
			Title:      l.Title,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			FinalPrice: l.FinalPrice,
		}
	}

	b, err := h.billSvc.Place(ctx, bill.Placement{
		UserID:             cmd.UserID,
		Lines:              lines,
		OriginalSubtotal:   quote.OriginalSubtotal,
		DiscountedSubtotal: quote.DiscountedSubtotal,
		TotalSaved:         quote.TotalSaved,
		ShippingCost:       quote.ShippingCost,
		GrandTotal:         quote.GrandTotal,
		ShippingMethodID:   shipping.ID,
		PaymentMethodID:    payment.ID,
		Address:            cmd.Address,
		AppliedEventID:     quote.AppliedEventID,
		AppliedEventName:   quote.AppliedEventName,
	})
	if err != nil {
		for _, r := range reserved {
			if relErr := h.inventorySvc.Release(ctx, r.BookID, cartID, r.Quantity); relErr != nil {
				log.Printf("[Command] Failed to release stock for book %s: %v", r.BookID, relErr)
			}
		}
		return nil, err
	}

	// The bill exists; a failed cart clear is logged, never rolled back
	if err := h.cartSvc.Clear(ctx, cmd.UserID); err != nil {
		log.Printf("[Command] Failed to clear cart for user %s after placing bill %s: %v", cmd.UserID, b.ID, err)
	}

	return b, nil
}

// UpdateBillStatus moves a bill along its lifecycle and keeps inventory
// in step: SHIPPED commits the reserved stock, CANCELED releases it.
func (h *Handler) UpdateBillStatus(ctx context.Context, cmd UpdateBillStatus) (*bill.Bill, error) {
	newStatus := bill.Status(cmd.NewStatus)
	if newStatus == bill.StatusCanceled {
		return h.CancelBill(ctx, CancelBill{BillID: cmd.BillID, Reason: ""})
	}

	b, err := h.billSvc.UpdateStatus(ctx, cmd.BillID, newStatus)
	if err != nil {
		return nil, err
	}

	if newStatus == bill.StatusShipped {
		for _, line := range b.Lines {
			if err := h.inventorySvc.Deduct(ctx, line.BookID, b.ID, line.Quantity); err != nil {
				log.Printf("[Command] Failed to deduct stock for book %s on bill %s: %v", line.BookID, b.ID, err)
			}
		}
	}

	return b, nil
}

// CancelBill cancels a bill and releases its reserved stock
func (h *Handler) CancelBill(ctx context.Context, cmd CancelBill) (*bill.Bill, error) {
	b, err := h.billSvc.Cancel(ctx, cmd.BillID, cmd.Reason)
	if err != nil {
		return nil, err
	}

	for _, line := range b.Lines {
		if err := h.inventorySvc.Release(ctx, line.BookID, b.ID, line.Quantity); err != nil {
			log.Printf("[Command] Failed to release stock for book %s on bill %s: %v", line.BookID, b.ID, err)
		}
	}

	return b, nil
}
