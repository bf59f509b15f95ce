package query

import (
	"testing"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/bill"
	"github.com/example/bookshop-event-driven/internal/domain/cart"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store/mocks"
	"github.com/example/bookshop-event-driven/internal/readmodel"
	"github.com/example/bookshop-event-driven/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryHandler() (*Handler, *mocks.MockReadStore) {
	readStore := mocks.NewMockReadStore()
	handler := NewHandler(readStore, registry.NewRegistry())
	return handler, readStore
}

func TestGetBook(t *testing.T) {
	h, rs := newTestQueryHandler()
	rs.SetData("books", "book-1", &readmodel.BookReadModel{ID: "book-1", Title: "Số Đỏ"})

	b, ok := h.GetBook("book-1")
	require.True(t, ok)
	assert.Equal(t, "Số Đỏ", b.Title)

	_, ok = h.GetBook("book-9")
	assert.False(t, ok)
}

func TestGetCart_MissingCartIsEmpty(t *testing.T) {
	h, _ := newTestQueryHandler()

	c, ok := h.GetCart("user-1")

	require.True(t, ok)
	assert.Equal(t, cart.GetCartID("user-1"), c.ID)
	assert.Empty(t, c.Items)
	assert.Equal(t, int64(0), c.Total)
}

func TestListBillsByUser(t *testing.T) {
	h, rs := newTestQueryHandler()
	rs.SetData("bills", "bill-1", &readmodel.BillReadModel{ID: "bill-1", UserID: "user-1"})
	rs.SetData("bills", "bill-2", &readmodel.BillReadModel{ID: "bill-2", UserID: "user-2"})
	rs.SetData("bills", "bill-3", &readmodel.BillReadModel{ID: "bill-3", UserID: "user-1"})

	bills := h.ListBillsByUser("user-1")
	assert.Len(t, bills, 2)

	all := h.ListAllBills()
	assert.Len(t, all, 3)
}

func TestGetBillTransitions(t *testing.T) {
	h, rs := newTestQueryHandler()
	rs.SetData("bills", "bill-1", &readmodel.BillReadModel{ID: "bill-1", Status: "SHIPPED"})

	next, ok := h.GetBillTransitions("bill-1")
	require.True(t, ok)
	assert.Equal(t, []bill.Status{bill.StatusCompleted}, next)

	_, ok = h.GetBillTransitions("bill-9")
	assert.False(t, ok)
}

func TestListCategories_ActiveOnlySorted(t *testing.T) {
	h, rs := newTestQueryHandler()
	rs.SetData("categories", "cat-1", &readmodel.CategoryReadModel{ID: "cat-1", SortOrder: 2, IsActive: true})
	rs.SetData("categories", "cat-2", &readmodel.CategoryReadModel{ID: "cat-2", SortOrder: 1, IsActive: true})
	rs.SetData("categories", "cat-3", &readmodel.CategoryReadModel{ID: "cat-3", SortOrder: 0, IsActive: false})

	categories := h.ListCategories()

	require.Len(t, categories, 2)
	assert.Equal(t, "cat-2", categories[0].ID)
	assert.Equal(t, "cat-1", categories[1].ID)
}

func TestListPromoEvents_SortedByPriority(t *testing.T) {
	h, rs := newTestQueryHandler()
	rs.SetData("promo_events", "event-1", &readmodel.PromoEventReadModel{ID: "event-1", Priority: 1})
	rs.SetData("promo_events", "event-2", &readmodel.PromoEventReadModel{ID: "event-2", Priority: 9})

	events := h.ListPromoEvents()

	require.Len(t, events, 2)
	assert.Equal(t, "event-2", events[0].ID)
}

func TestGetCurrentPromoEvent(t *testing.T) {
	h, rs := newTestQueryHandler()
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	rs.SetData("promo_events", "event-live", &readmodel.PromoEventReadModel{
		ID:       "event-live",
		Status:   "ACTIVE",
		Priority: 5,
		StartAt:  now.Add(-time.Hour),
		EndAt:    now.Add(time.Hour),
	})
	rs.SetData("promo_events", "event-draft", &readmodel.PromoEventReadModel{
		ID:       "event-draft",
		Status:   "DRAFT",
		Priority: 9,
		StartAt:  now.Add(-time.Hour),
		EndAt:    now.Add(time.Hour),
	})

	current, ok := h.GetCurrentPromoEvent(now)
	require.True(t, ok)
	assert.Equal(t, "event-live", current.ID)

	// Outside every window nothing is current
	_, ok = h.GetCurrentPromoEvent(now.Add(48 * time.Hour))
	assert.False(t, ok)
}

func TestPreviewCheckout(t *testing.T) {
	h, rs := newTestQueryHandler()
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	rs.SetData("books", "book-1", &readmodel.BookReadModel{ID: "book-1", Title: "Số Đỏ", Price: 100000})
	rs.SetData("users", "user-1", &readmodel.UserReadModel{ID: "user-1", RegisteredAt: now.AddDate(-1, 0, 0)})
	rs.SetData("carts", cart.GetCartID("user-1"), &readmodel.CartReadModel{
		ID:     cart.GetCartID("user-1"),
		UserID: "user-1",
		Items:  []readmodel.CartItemReadModel{{BookID: "book-1", Quantity: 2, Price: 100000}},
	})
	rs.SetData("promo_events", "event-1", &readmodel.PromoEventReadModel{
		ID:       "event-1",
		Name:     "Summer Sale",
		Status:   "ACTIVE",
		Priority: 5,
		StartAt:  now.Add(-time.Hour),
		EndAt:    now.Add(time.Hour),
		Targets:  []readmodel.PromoTargetReadModel{{ID: "t1", TargetType: "ALL"}},
		Actions:  []readmodel.PromoActionReadModel{{ID: "a1", ActionType: "DISCOUNT_PERCENT", ActionValue: "10"}},
	})

	quote, err := h.PreviewCheckout("user-1", "standard", "cod", now)

	require.NoError(t, err)
	assert.Equal(t, int64(200000), quote.OriginalSubtotal)
	assert.Equal(t, int64(180000), quote.DiscountedSubtotal)
	assert.Equal(t, int64(20000), quote.TotalSaved)
	assert.Equal(t, int64(210000), quote.GrandTotal)
	assert.Equal(t, "event-1", quote.AppliedEventID)
}

func TestPreviewCheckout_EmptyCart(t *testing.T) {
	h, _ := newTestQueryHandler()

	_, err := h.PreviewCheckout("user-1", "standard", "cod", time.Now())

	assert.ErrorIs(t, err, bill.ErrEmptyBill)
}

func TestPreviewCheckout_UnknownShippingMethod(t *testing.T) {
	h, rs := newTestQueryHandler()
	rs.SetData("carts", cart.GetCartID("user-1"), &readmodel.CartReadModel{
		ID:    cart.GetCartID("user-1"),
		Items: []readmodel.CartItemReadModel{{BookID: "book-1", Quantity: 1}},
	})

	_, err := h.PreviewCheckout("user-1", "drone", "cod", time.Now())

	assert.ErrorIs(t, err, registry.ErrUnknownShippingMethod)
}

func TestGetUserByEmail(t *testing.T) {
	h, rs := newTestQueryHandler()
	rs.SetData("users", "user-1", &readmodel.UserReadModel{ID: "user-1", Email: "reader@example.com"})

	u, ok := h.GetUserByEmail("reader@example.com")
	require.True(t, ok)
	assert.Equal(t, "user-1", u.ID)

	_, ok = h.GetUserByEmail("nobody@example.com")
	assert.False(t, ok)
}
