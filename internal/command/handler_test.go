package command

import (
	"context"
	"testing"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/bill"
	"github.com/example/bookshop-event-driven/internal/domain/book"
	"github.com/example/bookshop-event-driven/internal/domain/cart"
	"github.com/example/bookshop-event-driven/internal/domain/inventory"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store/mocks"
	"github.com/example/bookshop-event-driven/internal/readmodel"
	"github.com/example/bookshop-event-driven/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() (*Handler, *mocks.MockEventStore, *mocks.MockReadStore) {
	eventStore := mocks.NewMockEventStore()
	readStore := mocks.NewMockReadStore()

	h := NewHandler(
		book.NewService(eventStore),
		cart.NewService(eventStore),
		bill.NewService(eventStore),
		inventory.NewService(eventStore),
		registry.NewRegistry(),
		readStore,
	)
	return h, eventStore, readStore
}

func seedCheckoutState(eventStore *mocks.MockEventStore, readStore *mocks.MockReadStore) {
	readStore.SetData("books", "book-1", &readmodel.BookReadModel{
		ID:          "book-1",
		Title:       "Số Đỏ",
		Price:       120000,
		CategoryIDs: []string{"cat-fiction"},
	})
	readStore.SetData("users", "user-1", &readmodel.UserReadModel{
		ID:           "user-1",
		RegisteredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		BillsPlaced:  2,
	})
	readStore.SetData("carts", cart.GetCartID("user-1"), &readmodel.CartReadModel{
		ID:     cart.GetCartID("user-1"),
		UserID: "user-1",
		Items:  []readmodel.CartItemReadModel{{BookID: "book-1", Title: "Số Đỏ", Quantity: 2, Price: 120000}},
		Total:  240000,
	})
	eventStore.AddEvent("book-1", inventory.AggregateType, inventory.EventStockAdded, inventory.StockAdded{
		BookID: "book-1", Quantity: 10, AddedAt: time.Now(),
	})
}

func eventTypes(eventStore *mocks.MockEventStore) []string {
	types := make([]string, 0, len(eventStore.AppendCalls))
	for _, c := range eventStore.AppendCalls {
		types = append(types, c.EventType)
	}
	return types
}

// ============================================
// Books
// ============================================

func TestCreateBook_WithInitialStock(t *testing.T) {
	h, eventStore, _ := newTestHandler()

	b, err := h.CreateBook(context.Background(), CreateBook{
		Title: "Số Đỏ",
		Price: 120000,
		Stock: 5,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Contains(t, eventTypes(eventStore), book.EventBookCreated)
	assert.Contains(t, eventTypes(eventStore), inventory.EventStockAdded)
}

func TestCreateBook_NoStockSkipsInventory(t *testing.T) {
	h, eventStore, _ := newTestHandler()

	_, err := h.CreateBook(context.Background(), CreateBook{Title: "Số Đỏ", Price: 120000})

	require.NoError(t, err)
	assert.NotContains(t, eventTypes(eventStore), inventory.EventStockAdded)
}

// ============================================
// Cart
// ============================================

func TestAddToCart_UsesCatalogPrice(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	readStore.SetData("books", "book-1", &readmodel.BookReadModel{ID: "book-1", Price: 120000})

	err := h.AddToCart(context.Background(), AddToCart{UserID: "user-1", BookID: "book-1", Quantity: 2})

	require.NoError(t, err)
	require.Len(t, eventStore.AppendCalls, 1)
	added := eventStore.AppendCalls[0].Data.(cart.ItemAddedToCart)
	assert.Equal(t, int64(120000), added.Price)
	assert.Equal(t, 2, added.Quantity)
}

func TestAddToCart_UnknownBook(t *testing.T) {
	h, eventStore, _ := newTestHandler()

	err := h.AddToCart(context.Background(), AddToCart{UserID: "user-1", BookID: "book-9", Quantity: 1})

	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.Empty(t, eventStore.AppendCalls)
}

// ============================================
// Checkout
// ============================================

func TestCheckout_Success(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	seedCheckoutState(eventStore, readStore)

	b, err := h.Checkout(context.Background(), Checkout{
		UserID:           "user-1",
		ShippingMethodID: "standard",
		PaymentMethodID:  "cod",
		Address:          "1 Phố Huế, Hà Nội",
	})

	require.NoError(t, err)
	assert.Equal(t, bill.StatusPending, b.Status)
	assert.Equal(t, int64(240000), b.OriginalSubtotal)
	assert.Equal(t, int64(240000), b.DiscountedSubtotal)
	assert.Equal(t, int64(30000), b.ShippingCost)
	assert.Equal(t, int64(270000), b.GrandTotal)
	require.Len(t, b.Lines, 1)
	assert.Equal(t, "Số Đỏ", b.Lines[0].Title)

	// Stock reserved, bill placed, cart cleared, in that order
	types := eventTypes(eventStore)
	assert.Equal(t, []string{inventory.EventStockReserved, bill.EventBillPlaced, cart.EventCartCleared}, types)
}

func TestCheckout_ReservationRecordsCartReference(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	seedCheckoutState(eventStore, readStore)

	b, err := h.Checkout(context.Background(), Checkout{
		UserID:           "user-1",
		ShippingMethodID: "standard",
		PaymentMethodID:  "cod",
		Address:          "1 Phố Huế, Hà Nội",
	})
	require.NoError(t, err)

	var reserved inventory.StockReserved
	for _, c := range eventStore.AppendCalls {
		if c.EventType == inventory.EventStockReserved {
			reserved = c.Data.(inventory.StockReserved)
		}
	}
	// The bill id does not exist yet when stock is held, so the hold is
	// recorded against the cart
	assert.Equal(t, cart.GetCartID("user-1"), reserved.RefID)
	assert.NotEqual(t, b.ID, reserved.RefID)
}

func TestCheckout_AppliesActivePromotion(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	seedCheckoutState(eventStore, readStore)

	now := time.Now()
	readStore.SetData("promo_events", "event-1", &readmodel.PromoEventReadModel{
		ID:       "event-1",
		Name:     "Summer Sale",
		Status:   "ACTIVE",
		Priority: 5,
		StartAt:  now.Add(-time.Hour),
		EndAt:    now.Add(time.Hour),
		Targets:  []readmodel.PromoTargetReadModel{{ID: "t1", TargetType: "ALL"}},
		Actions:  []readmodel.PromoActionReadModel{{ID: "a1", ActionType: "DISCOUNT_PERCENT", ActionValue: "20"}},
	})

	b, err := h.Checkout(context.Background(), Checkout{
		UserID:           "user-1",
		ShippingMethodID: "standard",
		PaymentMethodID:  "cod",
		Address:          "1 Phố Huế, Hà Nội",
	})

	require.NoError(t, err)
	assert.Equal(t, "event-1", b.AppliedEventID)
	assert.Equal(t, "Summer Sale", b.AppliedEventName)
	assert.Equal(t, int64(240000), b.OriginalSubtotal)
	assert.Equal(t, int64(192000), b.DiscountedSubtotal)
	assert.Equal(t, int64(48000), b.TotalSaved)
	assert.Equal(t, int64(222000), b.GrandTotal)
	require.Len(t, b.Lines, 1)
	assert.Equal(t, int64(192000), b.Lines[0].FinalPrice)
}

func TestCheckout_EmptyCart(t *testing.T) {
	h, _, readStore := newTestHandler()
	readStore.SetData("carts", cart.GetCartID("user-1"), &readmodel.CartReadModel{
		ID:     cart.GetCartID("user-1"),
		UserID: "user-1",
		Items:  []readmodel.CartItemReadModel{},
	})

	_, err := h.Checkout(context.Background(), Checkout{
		UserID:           "user-1",
		ShippingMethodID: "standard",
		PaymentMethodID:  "cod",
		Address:          "somewhere",
	})

	assert.ErrorIs(t, err, bill.ErrEmptyBill)
}

func TestCheckout_UnknownMethods(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	seedCheckoutState(eventStore, readStore)

	_, err := h.Checkout(context.Background(), Checkout{
		UserID:           "user-1",
		ShippingMethodID: "drone",
		PaymentMethodID:  "cod",
		Address:          "somewhere",
	})
	assert.ErrorIs(t, err, registry.ErrUnknownShippingMethod)

	_, err = h.Checkout(context.Background(), Checkout{
		UserID:           "user-1",
		ShippingMethodID: "standard",
		PaymentMethodID:  "crypto",
		Address:          "somewhere",
	})
	assert.ErrorIs(t, err, registry.ErrUnknownPaymentMethod)
}

func TestCheckout_InsufficientStockRollsBackReservations(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	seedCheckoutState(eventStore, readStore)

	// Second book has no stock at all
	readStore.SetData("books", "book-2", &readmodel.BookReadModel{ID: "book-2", Title: "Dế Mèn", Price: 80000})
	readStore.SetData("carts", cart.GetCartID("user-1"), &readmodel.CartReadModel{
		ID:     cart.GetCartID("user-1"),
		UserID: "user-1",
		Items: []readmodel.CartItemReadModel{
			{BookID: "book-1", Quantity: 2, Price: 120000},
			{BookID: "book-2", Quantity: 1, Price: 80000},
		},
	})

	_, err := h.Checkout(context.Background(), Checkout{
		UserID:           "user-1",
		ShippingMethodID: "standard",
		PaymentMethodID:  "cod",
		Address:          "somewhere",
	})

	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// The reservation on book-1 was undone, and no bill was placed
	types := eventTypes(eventStore)
	assert.Contains(t, types, inventory.EventStockReleased)
	assert.NotContains(t, types, bill.EventBillPlaced)
	assert.NotContains(t, types, cart.EventCartCleared)
}

// ============================================
// Bill status
// ============================================

func placeTestBill(t *testing.T, h *Handler, eventStore *mocks.MockEventStore, readStore *mocks.MockReadStore) string {
	t.Helper()
	seedCheckoutState(eventStore, readStore)
	b, err := h.Checkout(context.Background(), Checkout{
		UserID:           "user-1",
		ShippingMethodID: "standard",
		PaymentMethodID:  "cod",
		Address:          "1 Phố Huế, Hà Nội",
	})
	require.NoError(t, err)
	return b.ID
}

func TestUpdateBillStatus_ShippedDeductsStock(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	billID := placeTestBill(t, h, eventStore, readStore)

	for _, next := range []string{"APPROVED", "SHIPPING"} {
		_, err := h.UpdateBillStatus(context.Background(), UpdateBillStatus{BillID: billID, NewStatus: next})
		require.NoError(t, err)
	}
	assert.NotContains(t, eventTypes(eventStore), inventory.EventStockDeducted)

	b, err := h.UpdateBillStatus(context.Background(), UpdateBillStatus{BillID: billID, NewStatus: "SHIPPED"})
	require.NoError(t, err)
	assert.Equal(t, bill.StatusShipped, b.Status)
	assert.Contains(t, eventTypes(eventStore), inventory.EventStockDeducted)
}

func TestUpdateBillStatus_CanceledReleasesStock(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	billID := placeTestBill(t, h, eventStore, readStore)

	b, err := h.UpdateBillStatus(context.Background(), UpdateBillStatus{BillID: billID, NewStatus: "CANCELED"})

	require.NoError(t, err)
	assert.Equal(t, bill.StatusCanceled, b.Status)
	types := eventTypes(eventStore)
	assert.Contains(t, types, bill.EventBillCancelled)
	assert.Contains(t, types, inventory.EventStockReleased)
}

func TestCancelBill_RecordsReason(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	billID := placeTestBill(t, h, eventStore, readStore)

	b, err := h.CancelBill(context.Background(), CancelBill{BillID: billID, Reason: "đổi ý"})

	require.NoError(t, err)
	assert.Equal(t, "đổi ý", b.CancelReason)
}

func TestUpdateBillStatus_InvalidTransition(t *testing.T) {
	h, eventStore, readStore := newTestHandler()
	billID := placeTestBill(t, h, eventStore, readStore)

	_, err := h.UpdateBillStatus(context.Background(), UpdateBillStatus{BillID: billID, NewStatus: "SHIPPED"})

	assert.ErrorIs(t, err, bill.ErrInvalidTransition)
}
