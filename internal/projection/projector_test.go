package projection

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/bill"
	"github.com/example/bookshop-event-driven/internal/domain/book"
	"github.com/example/bookshop-event-driven/internal/domain/cart"
	"github.com/example/bookshop-event-driven/internal/domain/category"
	"github.com/example/bookshop-event-driven/internal/domain/inventory"
	"github.com/example/bookshop-event-driven/internal/domain/promo"
	"github.com/example/bookshop-event-driven/internal/domain/user"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store/mocks"
	"github.com/example/bookshop-event-driven/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProjector() (*Projector, *mocks.MockReadStore) {
	readStore := mocks.NewMockReadStore()
	projector := NewProjector(readStore)
	return projector, readStore
}

// project marshals a domain event into the stored-event envelope and runs
// it through the projector the way the Kafka consumer would.
func project(t *testing.T, p *Projector, aggregateID, aggregateType, eventType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	require.NoError(t, err)

	event := store.Event{
		ID:            "evt-" + eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          payload,
		Timestamp:     time.Now(),
		Version:       1,
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, p.HandleEvent(context.Background(), []byte(aggregateID), value))
}

var projTime = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

// ============================================
// Book projections
// ============================================

func TestProjector_BookLifecycle(t *testing.T) {
	p, rs := newTestProjector()

	project(t, p, "book-1", book.AggregateType, book.EventBookCreated, book.BookCreated{
		BookID:    "book-1",
		Title:     "Số Đỏ",
		Price:     120000,
		AuthorID:  "author-1",
		CreatedAt: projTime,
	})

	raw, ok := rs.GetData("books", "book-1")
	require.True(t, ok)
	b := raw.(*readmodel.BookReadModel)
	assert.Equal(t, "Số Đỏ", b.Title)
	assert.Equal(t, int64(120000), b.Price)

	project(t, p, "book-1", book.AggregateType, book.EventBookUpdated, book.BookUpdated{
		BookID:    "book-1",
		Title:     "Số Đỏ (Tái bản)",
		Price:     135000,
		AuthorID:  "author-1",
		UpdatedAt: projTime.Add(time.Hour),
	})
	project(t, p, "book-1", book.AggregateType, book.EventBookCategoryAssigned, book.BookCategoryAssigned{
		BookID:     "book-1",
		CategoryID: "cat-fiction",
		AssignedAt: projTime.Add(time.Hour),
	})
	// Assigning the same category twice is a no-op
	project(t, p, "book-1", book.AggregateType, book.EventBookCategoryAssigned, book.BookCategoryAssigned{
		BookID:     "book-1",
		CategoryID: "cat-fiction",
		AssignedAt: projTime.Add(2 * time.Hour),
	})

	raw, _ = rs.GetData("books", "book-1")
	b = raw.(*readmodel.BookReadModel)
	assert.Equal(t, "Số Đỏ (Tái bản)", b.Title)
	assert.Equal(t, int64(135000), b.Price)
	assert.Equal(t, []string{"cat-fiction"}, b.CategoryIDs)

	project(t, p, "book-1", book.AggregateType, book.EventBookCategoryRemoved, book.BookCategoryRemoved{
		BookID:     "book-1",
		CategoryID: "cat-fiction",
		RemovedAt:  projTime.Add(3 * time.Hour),
	})
	raw, _ = rs.GetData("books", "book-1")
	assert.Empty(t, raw.(*readmodel.BookReadModel).CategoryIDs)

	project(t, p, "book-1", book.AggregateType, book.EventBookDeleted, book.BookDeleted{
		BookID:    "book-1",
		DeletedAt: projTime.Add(4 * time.Hour),
	})
	_, ok = rs.GetData("books", "book-1")
	assert.False(t, ok)
}

// ============================================
// Cart projections
// ============================================

func TestProjector_CartItems(t *testing.T) {
	p, rs := newTestProjector()
	rs.SetData("books", "book-1", &readmodel.BookReadModel{ID: "book-1", Title: "Số Đỏ"})

	project(t, p, "cart-1", cart.AggregateType, cart.EventItemAdded, cart.ItemAddedToCart{
		CartID:   "cart-1",
		UserID:   "user-1",
		BookID:   "book-1",
		Quantity: 1,
		Price:    120000,
		AddedAt:  projTime,
	})

	raw, ok := rs.GetData("carts", "cart-1")
	require.True(t, ok)
	c := raw.(*readmodel.CartReadModel)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Số Đỏ", c.Items[0].Title)
	assert.Equal(t, int64(120000), c.Total)

	// Same book again merges into one line
	project(t, p, "cart-1", cart.AggregateType, cart.EventItemAdded, cart.ItemAddedToCart{
		CartID:   "cart-1",
		UserID:   "user-1",
		BookID:   "book-1",
		Quantity: 2,
		Price:    120000,
		AddedAt:  projTime,
	})
	raw, _ = rs.GetData("carts", "cart-1")
	c = raw.(*readmodel.CartReadModel)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, int64(360000), c.Total)

	project(t, p, "cart-1", cart.AggregateType, cart.EventItemRemoved, cart.ItemRemovedFromCart{
		CartID: "cart-1",
		UserID: "user-1",
		BookID: "book-1",
	})
	raw, _ = rs.GetData("carts", "cart-1")
	c = raw.(*readmodel.CartReadModel)
	assert.Empty(t, c.Items)
	assert.Equal(t, int64(0), c.Total)
}

func TestProjector_CartCleared(t *testing.T) {
	p, rs := newTestProjector()
	rs.SetData("carts", "cart-1", &readmodel.CartReadModel{
		ID:     "cart-1",
		UserID: "user-1",
		Items:  []readmodel.CartItemReadModel{{BookID: "book-1", Quantity: 2, Price: 120000}},
		Total:  240000,
	})

	project(t, p, "cart-1", cart.AggregateType, cart.EventCartCleared, cart.CartCleared{
		CartID:    "cart-1",
		UserID:    "user-1",
		ClearedAt: projTime,
	})

	raw, ok := rs.GetData("carts", "cart-1")
	require.True(t, ok)
	c := raw.(*readmodel.CartReadModel)
	assert.Empty(t, c.Items)
	assert.Equal(t, int64(0), c.Total)
}

// ============================================
// Bill projections
// ============================================

func billPlacedEvent() bill.BillPlaced {
	return bill.BillPlaced{
		BillID: "bill-1",
		UserID: "user-1",
		Lines: []bill.Line{
			{BookID: "book-1", Title: "Số Đỏ", Quantity: 2, UnitPrice: 120000, FinalPrice: 96000},
		},
		OriginalSubtotal:   240000,
		DiscountedSubtotal: 192000,
		TotalSaved:         48000,
		ShippingCost:       30000,
		GrandTotal:         222000,
		ShippingMethodID:   "standard",
		PaymentMethodID:    "cod",
		Address:            "1 Phố Huế, Hà Nội",
		AppliedEventID:     "event-1",
		AppliedEventName:   "Summer Sale",
		PlacedAt:           projTime,
	}
}

func TestProjector_BillPlaced(t *testing.T) {
	p, rs := newTestProjector()
	rs.SetData("users", "user-1", &readmodel.UserReadModel{ID: "user-1", BillsPlaced: 2})
	rs.SetData("promo_events", "event-1", &readmodel.PromoEventReadModel{ID: "event-1", UsageCount: 10})

	project(t, p, "bill-1", bill.AggregateType, bill.EventBillPlaced, billPlacedEvent())

	raw, ok := rs.GetData("bills", "bill-1")
	require.True(t, ok)
	b := raw.(*readmodel.BillReadModel)
	assert.Equal(t, string(bill.StatusPending), b.Status)
	assert.Equal(t, int64(48000), b.TotalSaved)
	assert.Equal(t, int64(222000), b.GrandTotal)
	assert.Equal(t, "Summer Sale", b.AppliedEventName)
	require.Len(t, b.Lines, 1)
	assert.Equal(t, int64(96000), b.Lines[0].FinalPrice)

	// The placement bumps the user's order count
	raw, _ = rs.GetData("users", "user-1")
	assert.Equal(t, 3, raw.(*readmodel.UserReadModel).BillsPlaced)

	// And records the promotion redemption
	raw, ok = rs.GetData("promo_usage", "event-1:user-1")
	require.True(t, ok)
	assert.Equal(t, 1, raw.(*readmodel.PromoUsageReadModel).Uses)

	raw, _ = rs.GetData("promo_events", "event-1")
	assert.Equal(t, 11, raw.(*readmodel.PromoEventReadModel).UsageCount)
}

func TestProjector_BillPlaced_SecondRedemptionIncrements(t *testing.T) {
	p, rs := newTestProjector()
	rs.SetData("users", "user-1", &readmodel.UserReadModel{ID: "user-1"})
	rs.SetData("promo_events", "event-1", &readmodel.PromoEventReadModel{ID: "event-1"})
	rs.SetData("promo_usage", "event-1:user-1", &readmodel.PromoUsageReadModel{
		EventID: "event-1", UserID: "user-1", Uses: 1,
	})

	project(t, p, "bill-1", bill.AggregateType, bill.EventBillPlaced, billPlacedEvent())

	raw, _ := rs.GetData("promo_usage", "event-1:user-1")
	assert.Equal(t, 2, raw.(*readmodel.PromoUsageReadModel).Uses)
}

func TestProjector_BillPlaced_NoAppliedEvent(t *testing.T) {
	p, rs := newTestProjector()
	rs.SetData("users", "user-1", &readmodel.UserReadModel{ID: "user-1"})

	e := billPlacedEvent()
	e.AppliedEventID = ""
	e.AppliedEventName = ""
	project(t, p, "bill-1", bill.AggregateType, bill.EventBillPlaced, e)

	_, ok := rs.GetData("promo_usage", "event-1:user-1")
	assert.False(t, ok)
}

func TestProjector_BillStatusChangedAndCancelled(t *testing.T) {
	p, rs := newTestProjector()
	rs.SetData("users", "user-1", &readmodel.UserReadModel{ID: "user-1"})
	rs.SetData("promo_events", "event-1", &readmodel.PromoEventReadModel{ID: "event-1"})

	project(t, p, "bill-1", bill.AggregateType, bill.EventBillPlaced, billPlacedEvent())
	project(t, p, "bill-1", bill.AggregateType, bill.EventBillStatusChanged, bill.BillStatusChanged{
		BillID:    "bill-1",
		OldStatus: bill.StatusPending,
		NewStatus: bill.StatusApproved,
		ChangedAt: projTime.Add(time.Hour),
	})

	raw, _ := rs.GetData("bills", "bill-1")
	b := raw.(*readmodel.BillReadModel)
	assert.Equal(t, string(bill.StatusApproved), b.Status)
	// Frozen totals survive status changes
	assert.Equal(t, int64(222000), b.GrandTotal)

	project(t, p, "bill-1", bill.AggregateType, bill.EventBillCancelled, bill.BillCancelled{
		BillID:      "bill-1",
		Reason:      "out of stock",
		CancelledAt: projTime.Add(2 * time.Hour),
	})
	raw, _ = rs.GetData("bills", "bill-1")
	assert.Equal(t, string(bill.StatusCanceled), raw.(*readmodel.BillReadModel).Status)
}

// ============================================
// Inventory projections
// ============================================

func TestProjector_InventoryFlow(t *testing.T) {
	p, rs := newTestProjector()
	rs.SetData("books", "book-1", &readmodel.BookReadModel{ID: "book-1"})

	project(t, p, "book-1", inventory.AggregateType, inventory.EventStockAdded, inventory.StockAdded{
		BookID: "book-1", Quantity: 10, AddedAt: projTime,
	})

	raw, ok := rs.GetData("inventory", "book-1")
	require.True(t, ok)
	inv := raw.(*readmodel.InventoryReadModel)
	assert.Equal(t, 10, inv.TotalStock)
	assert.Equal(t, 10, inv.AvailableStock)

	raw, _ = rs.GetData("books", "book-1")
	assert.Equal(t, 10, raw.(*readmodel.BookReadModel).Stock)

	project(t, p, "book-1", inventory.AggregateType, inventory.EventStockReserved, inventory.StockReserved{
		BookID: "book-1", RefID: "bill-1", Quantity: 3,
	})
	raw, _ = rs.GetData("inventory", "book-1")
	inv = raw.(*readmodel.InventoryReadModel)
	assert.Equal(t, 3, inv.ReservedStock)
	assert.Equal(t, 7, inv.AvailableStock)

	project(t, p, "book-1", inventory.AggregateType, inventory.EventStockReleased, inventory.StockReleased{
		BookID: "book-1", RefID: "bill-1", Quantity: 1,
	})
	raw, _ = rs.GetData("inventory", "book-1")
	inv = raw.(*readmodel.InventoryReadModel)
	assert.Equal(t, 2, inv.ReservedStock)
	assert.Equal(t, 8, inv.AvailableStock)

	project(t, p, "book-1", inventory.AggregateType, inventory.EventStockDeducted, inventory.StockDeducted{
		BookID: "book-1", RefID: "bill-1", Quantity: 2,
	})
	raw, _ = rs.GetData("inventory", "book-1")
	inv = raw.(*readmodel.InventoryReadModel)
	assert.Equal(t, 8, inv.TotalStock)
	assert.Equal(t, 0, inv.ReservedStock)
	assert.Equal(t, 8, inv.AvailableStock)
}

// ============================================
// User projections
// ============================================

func TestProjector_UserProfileFacts(t *testing.T) {
	p, rs := newTestProjector()

	project(t, p, "user-1", user.AggregateType, user.EventUserRegistered, user.UserRegistered{
		UserID:       "user-1",
		Email:        "reader@example.com",
		Name:         "Nguyễn Văn A",
		Role:         "customer",
		Location:     "hanoi",
		RegisteredAt: projTime,
	})

	raw, ok := rs.GetData("users", "user-1")
	require.True(t, ok)
	u := raw.(*readmodel.UserReadModel)
	assert.True(t, u.IsActive)
	assert.False(t, u.VIP)
	assert.Equal(t, "hanoi", u.Location)

	project(t, p, "user-1", user.AggregateType, user.EventUserVIPGranted, user.UserVIPGranted{
		UserID: "user-1", GrantedAt: projTime.Add(time.Hour),
	})
	project(t, p, "user-1", user.AggregateType, user.EventUserAddedToGroup, user.UserAddedToGroup{
		UserID: "user-1", GroupID: "group-students", AddedAt: projTime.Add(time.Hour),
	})

	raw, _ = rs.GetData("users", "user-1")
	u = raw.(*readmodel.UserReadModel)
	assert.True(t, u.VIP)
	assert.Equal(t, []string{"group-students"}, u.GroupIDs)

	project(t, p, "user-1", user.AggregateType, user.EventUserVIPRevoked, user.UserVIPRevoked{
		UserID: "user-1", RevokedAt: projTime.Add(2 * time.Hour),
	})
	project(t, p, "user-1", user.AggregateType, user.EventUserRemovedFromGroup, user.UserRemovedFromGroup{
		UserID: "user-1", GroupID: "group-students", RemovedAt: projTime.Add(2 * time.Hour),
	})
	project(t, p, "user-1", user.AggregateType, user.EventUserDeactivated, user.UserDeactivated{
		UserID: "user-1", DeactivatedAt: projTime.Add(3 * time.Hour),
	})

	raw, _ = rs.GetData("users", "user-1")
	u = raw.(*readmodel.UserReadModel)
	assert.False(t, u.VIP)
	assert.Empty(t, u.GroupIDs)
	assert.False(t, u.IsActive)
}

// ============================================
// Category projections
// ============================================

func TestProjector_CategoryLifecycle(t *testing.T) {
	p, rs := newTestProjector()

	project(t, p, "cat-1", category.AggregateType, category.EventCategoryCreated, category.CategoryCreated{
		CategoryID: "cat-1",
		Name:       "Văn học",
		Slug:       "van-hoc",
		SortOrder:  1,
		CreatedAt:  projTime,
	})

	raw, ok := rs.GetData("categories", "cat-1")
	require.True(t, ok)
	assert.True(t, raw.(*readmodel.CategoryReadModel).IsActive)

	project(t, p, "cat-1", category.AggregateType, category.EventCategoryDeleted, category.CategoryDeleted{
		CategoryID: "cat-1",
		DeletedAt:  projTime.Add(time.Hour),
	})

	// Deletion is soft: the row stays, marked inactive
	raw, ok = rs.GetData("categories", "cat-1")
	require.True(t, ok)
	assert.False(t, raw.(*readmodel.CategoryReadModel).IsActive)
}

// ============================================
// Promo projections
// ============================================

func TestProjector_PromoEventAssembly(t *testing.T) {
	p, rs := newTestProjector()

	project(t, p, "event-1", promo.AggregateType, promo.EventPromoCreated, promo.PromoEventCreated{
		EventID:   "event-1",
		Name:      "Summer Sale",
		StartAt:   projTime,
		EndAt:     projTime.Add(30 * 24 * time.Hour),
		Priority:  5,
		CreatedBy: "admin-1",
		CreatedAt: projTime,
	})

	raw, ok := rs.GetData("promo_events", "event-1")
	require.True(t, ok)
	ev := raw.(*readmodel.PromoEventReadModel)
	assert.Equal(t, string(promo.StatusDraft), ev.Status)
	assert.Equal(t, 5, ev.Priority)

	project(t, p, "event-1", promo.AggregateType, promo.EventPromoRuleAdded, promo.PromoRuleAdded{
		EventID: "event-1", RuleID: "rule-1", RuleType: promo.RuleMinOrderValue, RuleValue: "100000", AddedAt: projTime,
	})
	project(t, p, "event-1", promo.AggregateType, promo.EventPromoTargetAdded, promo.PromoTargetAdded{
		EventID: "event-1", ID: "target-1", TargetType: promo.TargetCategory, TargetID: "cat-fiction", AddedAt: projTime,
	})
	project(t, p, "event-1", promo.AggregateType, promo.EventPromoActionAdded, promo.PromoActionAdded{
		EventID: "event-1", ID: "action-1", ActionType: promo.ActionDiscountPercent, ActionValue: "20", AddedAt: projTime,
	})

	raw, _ = rs.GetData("promo_events", "event-1")
	ev = raw.(*readmodel.PromoEventReadModel)
	require.Len(t, ev.Rules, 1)
	assert.Equal(t, "MIN_ORDER_VALUE", ev.Rules[0].RuleType)
	require.Len(t, ev.Targets, 1)
	assert.Equal(t, "cat-fiction", ev.Targets[0].TargetID)
	require.Len(t, ev.Actions, 1)
	assert.Equal(t, "20", ev.Actions[0].ActionValue)

	project(t, p, "event-1", promo.AggregateType, promo.EventPromoStatusChanged, promo.PromoStatusChanged{
		EventID: "event-1", OldStatus: promo.StatusDraft, NewStatus: promo.StatusActive, ChangedAt: projTime,
	})
	raw, _ = rs.GetData("promo_events", "event-1")
	assert.Equal(t, string(promo.StatusActive), raw.(*readmodel.PromoEventReadModel).Status)

	project(t, p, "event-1", promo.AggregateType, promo.EventPromoRuleRemoved, promo.PromoRuleRemoved{
		EventID: "event-1", RuleID: "rule-1", RemovedAt: projTime,
	})
	project(t, p, "event-1", promo.AggregateType, promo.EventPromoTargetRemoved, promo.PromoTargetRemoved{
		EventID: "event-1", ID: "target-1", RemovedAt: projTime,
	})
	project(t, p, "event-1", promo.AggregateType, promo.EventPromoActionRemoved, promo.PromoActionRemoved{
		EventID: "event-1", ID: "action-1", RemovedAt: projTime,
	})

	raw, _ = rs.GetData("promo_events", "event-1")
	ev = raw.(*readmodel.PromoEventReadModel)
	assert.Empty(t, ev.Rules)
	assert.Empty(t, ev.Targets)
	assert.Empty(t, ev.Actions)
}

func TestProjector_PromoImages(t *testing.T) {
	p, rs := newTestProjector()
	rs.SetData("promo_events", "event-1", &readmodel.PromoEventReadModel{ID: "event-1"})

	project(t, p, "event-1", promo.AggregateType, promo.EventPromoImageAdded, promo.PromoImageAdded{
		EventID: "event-1", URL: "https://cdn.example.com/banner.png", Caption: "Summer", AddedAt: projTime,
	})
	raw, _ := rs.GetData("promo_events", "event-1")
	require.Len(t, raw.(*readmodel.PromoEventReadModel).Images, 1)

	project(t, p, "event-1", promo.AggregateType, promo.EventPromoImageRemoved, promo.PromoImageRemoved{
		EventID: "event-1", URL: "https://cdn.example.com/banner.png", RemovedAt: projTime,
	})
	raw, _ = rs.GetData("promo_events", "event-1")
	assert.Empty(t, raw.(*readmodel.PromoEventReadModel).Images)
}

// ============================================
// Unknown events
// ============================================

func TestProjector_UnknownAggregateIgnored(t *testing.T) {
	p, rs := newTestProjector()

	project(t, p, "x-1", "Warehouse", "WarehouseOpened", map[string]string{"id": "x-1"})

	assert.Empty(t, rs.SetCalls)
	assert.Empty(t, rs.UpdateCalls)
}

func TestProjector_MalformedEnvelope(t *testing.T) {
	p, _ := newTestProjector()

	err := p.HandleEvent(context.Background(), []byte("key"), []byte("{not json"))

	assert.Error(t, err)
}
