package projection

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/bill"
	"github.com/example/bookshop-event-driven/internal/domain/book"
	"github.com/example/bookshop-event-driven/internal/domain/cart"
	"github.com/example/bookshop-event-driven/internal/domain/category"
	"github.com/example/bookshop-event-driven/internal/domain/inventory"
	"github.com/example/bookshop-event-driven/internal/domain/promo"
	"github.com/example/bookshop-event-driven/internal/domain/user"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/example/bookshop-event-driven/internal/readmodel"
)

// Projector folds domain events into the read models the query side and
// the pricing engine consume.
type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	log.Printf("[Projector] Received event: %s (aggregate: %s)", event.EventType, event.AggregateType)

	switch event.AggregateType {
	case book.AggregateType:
		return p.handleBookEvent(event)
	case cart.AggregateType:
		return p.handleCartEvent(event)
	case bill.AggregateType:
		return p.handleBillEvent(event)
	case inventory.AggregateType:
		return p.handleInventoryEvent(event)
	case user.AggregateType:
		return p.handleUserEvent(event)
	case category.AggregateType:
		return p.handleCategoryEvent(event)
	case promo.AggregateType:
		return p.handlePromoEvent(event)
	}

	return nil
}

func (p *Projector) handleBookEvent(event store.Event) error {
	switch event.EventType {
	case book.EventBookCreated:
		var e book.BookCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set("books", e.BookID, &readmodel.BookReadModel{
			ID:          e.BookID,
			Title:       e.Title,
			Description: e.Description,
			Price:       e.Price,
			AuthorID:    e.AuthorID,
			PublisherID: e.PublisherID,
			SeriesID:    e.SeriesID,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.CreatedAt,
		})

	case book.EventBookUpdated:
		var e book.BookUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("books", e.BookID, func(current any) any {
			b := current.(*readmodel.BookReadModel)
			b.Title = e.Title
			b.Description = e.Description
			b.Price = e.Price
			b.AuthorID = e.AuthorID
			b.PublisherID = e.PublisherID
			b.SeriesID = e.SeriesID
			b.UpdatedAt = e.UpdatedAt
			return b
		})
		return err

	case book.EventBookDeleted:
		var e book.BookDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Delete("books", e.BookID)

	case book.EventBookCategoryAssigned:
		var e book.BookCategoryAssigned
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("books", e.BookID, func(current any) any {
			b := current.(*readmodel.BookReadModel)
			for _, id := range b.CategoryIDs {
				if id == e.CategoryID {
					return b
				}
			}
			b.CategoryIDs = append(b.CategoryIDs, e.CategoryID)
			b.UpdatedAt = e.AssignedAt
			return b
		})
		return err

	case book.EventBookCategoryRemoved:
		var e book.BookCategoryRemoved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("books", e.BookID, func(current any) any {
			b := current.(*readmodel.BookReadModel)
			kept := make([]string, 0, len(b.CategoryIDs))
			for _, id := range b.CategoryIDs {
				if id != e.CategoryID {
					kept = append(kept, id)
				}
			}
			b.CategoryIDs = kept
			b.UpdatedAt = e.RemovedAt
			return b
		})
		return err

	case book.EventBookImageUpdated:
		var e book.BookImageUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("books", e.BookID, func(current any) any {
			b := current.(*readmodel.BookReadModel)
			b.ImageURL = e.ImageURL
			b.UpdatedAt = e.UpdatedAt
			return b
		})
		return err
	}

	return nil
}

func (p *Projector) handleCartEvent(event store.Event) error {
	switch event.EventType {
	case cart.EventItemAdded:
		var e cart.ItemAddedToCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}

		title := ""
		if b, ok, _ := p.readStore.Get("books", e.BookID); ok {
			title = b.(*readmodel.BookReadModel).Title
		}

		_, ok, err := p.readStore.Get("carts", e.CartID)
		if err != nil {
			return err
		}
		if !ok {
			return p.readStore.Set("carts", e.CartID, &readmodel.CartReadModel{
				ID:     e.CartID,
				UserID: e.UserID,
				Items: []readmodel.CartItemReadModel{
					{BookID: e.BookID, Title: title, Quantity: e.Quantity, Price: e.Price},
				},
				Total: e.Price * int64(e.Quantity),
			})
		}
		_, err = p.readStore.Update("carts", e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel)
			found := false
			for i, item := range c.Items {
				if item.BookID == e.BookID {
					c.Items[i].Quantity += e.Quantity
					c.Items[i].Price = e.Price
					found = true
					break
				}
			}
			if !found {
				c.Items = append(c.Items, readmodel.CartItemReadModel{
					BookID:   e.BookID,
					Title:    title,
					Quantity: e.Quantity,
					Price:    e.Price,
				})
			}
			c.Total = calculateCartTotal(c.Items)
			return c
		})
		return err

	case cart.EventItemRemoved:
		var e cart.ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("carts", e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel)
			newItems := make([]readmodel.CartItemReadModel, 0)
			for _, item := range c.Items {
				if item.BookID != e.BookID {
					newItems = append(newItems, item)
				}
			}
			c.Items = newItems
			c.Total = calculateCartTotal(c.Items)
			return c
		})
		return err

	case cart.EventCartCleared:
		var e cart.CartCleared
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set("carts", e.CartID, &readmodel.CartReadModel{
			ID:     e.CartID,
			UserID: e.UserID,
			Items:  []readmodel.CartItemReadModel{},
			Total:  0,
		})
	}

	return nil
}

func (p *Projector) handleBillEvent(event store.Event) error {
	switch event.EventType {
	case bill.EventBillPlaced:
		var e bill.BillPlaced
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		lines := make([]readmodel.BillLineReadModel, len(e.Lines))
		for i, l := range e.Lines {
			lines[i] = readmodel.BillLineReadModel{
				BookID:     l.BookID,
				Title:      l.Title,
				Quantity:   l.Quantity,
				UnitPrice:  l.UnitPrice,
				FinalPrice: l.FinalPrice,
			}
		}
		if err := p.readStore.Set("bills", e.BillID, &readmodel.BillReadModel{
			ID:                 e.BillID,
			UserID:             e.UserID,
			Lines:              lines,
			OriginalSubtotal:   e.OriginalSubtotal,
			DiscountedSubtotal: e.DiscountedSubtotal,
			TotalSaved:         e.TotalSaved,
			ShippingCost:       e.ShippingCost,
			GrandTotal:         e.GrandTotal,
			ShippingMethodID:   e.ShippingMethodID,
			PaymentMethodID:    e.PaymentMethodID,
			Address:            e.Address,
			AppliedEventID:     e.AppliedEventID,
			AppliedEventName:   e.AppliedEventName,
			Status:             string(bill.StatusPending),
			CreatedAt:          e.PlacedAt,
			UpdatedAt:          e.PlacedAt,
		}); err != nil {
			return err
		}

		// Order count feeds FIRST_ORDER_ONLY and MIN_ORDERS_PLACED rules
		if _, err := p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.BillsPlaced++
			return u
		}); err != nil {
			return err
		}

		if e.AppliedEventID != "" {
			return p.recordPromoUsage(e.AppliedEventID, e.UserID)
		}
		return nil

	case bill.EventBillStatusChanged:
		var e bill.BillStatusChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("bills", e.BillID, func(current any) any {
			b := current.(*readmodel.BillReadModel)
			b.Status = string(e.NewStatus)
			b.UpdatedAt = e.ChangedAt
			return b
		})
		return err

	case bill.EventBillCancelled:
		var e bill.BillCancelled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("bills", e.BillID, func(current any) any {
			b := current.(*readmodel.BillReadModel)
			b.Status = string(bill.StatusCanceled)
			b.UpdatedAt = e.CancelledAt
			return b
		})
		return err
	}

	return nil
}

// recordPromoUsage bumps both the per-user usage counter and the event's
// aggregate usage count
func (p *Projector) recordPromoUsage(eventID, userID string) error {
	usageKey := eventID + ":" + userID
	updated, err := p.readStore.Update("promo_usage", usageKey, func(current any) any {
		u := current.(*readmodel.PromoUsageReadModel)
		u.Uses++
		return u
	})
	if err != nil {
		return err
	}
	if !updated {
		if err := p.readStore.Set("promo_usage", usageKey, &readmodel.PromoUsageReadModel{
			EventID: eventID,
			UserID:  userID,
			Uses:    1,
		}); err != nil {
			return err
		}
	}

	_, err = p.readStore.Update("promo_events", eventID, func(current any) any {
		ev := current.(*readmodel.PromoEventReadModel)
		ev.UsageCount++
		return ev
	})
	return err
}

func (p *Projector) handleInventoryEvent(event store.Event) error {
	switch event.EventType {
	case inventory.EventStockAdded:
		var e inventory.StockAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		existing, ok, err := p.readStore.Get("inventory", e.BookID)
		if err != nil {
			return err
		}
		if !ok {
			if err := p.readStore.Set("inventory", e.BookID, &readmodel.InventoryReadModel{
				BookID:         e.BookID,
				TotalStock:     e.Quantity,
				ReservedStock:  0,
				AvailableStock: e.Quantity,
			}); err != nil {
				return err
			}
		} else {
			inv := existing.(*readmodel.InventoryReadModel)
			inv.TotalStock += e.Quantity
			inv.AvailableStock = inv.TotalStock - inv.ReservedStock
			if err := p.readStore.Set("inventory", e.BookID, inv); err != nil {
				return err
			}
		}

		_, err = p.readStore.Update("books", e.BookID, func(current any) any {
			b := current.(*readmodel.BookReadModel)
			b.Stock += e.Quantity
			b.UpdatedAt = time.Now()
			return b
		})
		return err

	case inventory.EventStockReserved:
		var e inventory.StockReserved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		if _, err := p.readStore.Update("inventory", e.BookID, func(current any) any {
			inv := current.(*readmodel.InventoryReadModel)
			inv.ReservedStock += e.Quantity
			inv.AvailableStock = inv.TotalStock - inv.ReservedStock
			return inv
		}); err != nil {
			return err
		}
		_, err := p.readStore.Update("books", e.BookID, func(current any) any {
			b := current.(*readmodel.BookReadModel)
			b.Stock -= e.Quantity
			b.UpdatedAt = time.Now()
			return b
		})
		return err

	case inventory.EventStockReleased:
		var e inventory.StockReleased
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		if _, err := p.readStore.Update("inventory", e.BookID, func(current any) any {
			inv := current.(*readmodel.InventoryReadModel)
			inv.ReservedStock -= e.Quantity
			inv.AvailableStock = inv.TotalStock - inv.ReservedStock
			return inv
		}); err != nil {
			return err
		}
		_, err := p.readStore.Update("books", e.BookID, func(current any) any {
			b := current.(*readmodel.BookReadModel)
			b.Stock += e.Quantity
			b.UpdatedAt = time.Now()
			return b
		})
		return err

	case inventory.EventStockDeducted:
		var e inventory.StockDeducted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("inventory", e.BookID, func(current any) any {
			inv := current.(*readmodel.InventoryReadModel)
			inv.TotalStock -= e.Quantity
			inv.ReservedStock -= e.Quantity
			inv.AvailableStock = inv.TotalStock - inv.ReservedStock
			return inv
		})
		return err
	}

	return nil
}

func calculateCartTotal(items []readmodel.CartItemReadModel) int64 {
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

func (p *Projector) handleUserEvent(event store.Event) error {
	switch event.EventType {
	case user.EventUserRegistered:
		var e user.UserRegistered
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set("users", e.UserID, &readmodel.UserReadModel{
			ID:           e.UserID,
			Email:        e.Email,
			PasswordHash: e.PasswordHash,
			Name:         e.Name,
			Role:         e.Role,
			Location:     e.Location,
			IsActive:     true,
			RegisteredAt: e.RegisteredAt,
			UpdatedAt:    e.RegisteredAt,
		})

	case user.EventUserProfileUpdated:
		var e user.UserProfileUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.Name = e.Name
			u.Location = e.Location
			u.UpdatedAt = e.UpdatedAt
			return u
		})
		return err

	case user.EventUserPasswordChanged:
		var e user.UserPasswordChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.PasswordHash = e.PasswordHash
			u.UpdatedAt = e.ChangedAt
			return u
		})
		return err

	case user.EventUserVIPGranted:
		var e user.UserVIPGranted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.VIP = true
			u.UpdatedAt = e.GrantedAt
			return u
		})
		return err

	case user.EventUserVIPRevoked:
		var e user.UserVIPRevoked
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.VIP = false
			u.UpdatedAt = e.RevokedAt
			return u
		})
		return err

	case user.EventUserAddedToGroup:
		var e user.UserAddedToGroup
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			for _, id := range u.GroupIDs {
				if id == e.GroupID {
					return u
				}
			}
			u.GroupIDs = append(u.GroupIDs, e.GroupID)
			u.UpdatedAt = e.AddedAt
			return u
		})
		return err

	case user.EventUserRemovedFromGroup:
		var e user.UserRemovedFromGroup
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			kept := make([]string, 0, len(u.GroupIDs))
			for _, id := range u.GroupIDs {
				if id != e.GroupID {
					kept = append(kept, id)
				}
			}
			u.GroupIDs = kept
			u.UpdatedAt = e.RemovedAt
			return u
		})
		return err

	case user.EventUserDeactivated:
		var e user.UserDeactivated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.IsActive = false
			u.UpdatedAt = e.DeactivatedAt
			return u
		})
		return err
	}

	return nil
}

func (p *Projector) handleCategoryEvent(event store.Event) error {
	switch event.EventType {
	case category.EventCategoryCreated:
		var e category.CategoryCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set("categories", e.CategoryID, &readmodel.CategoryReadModel{
			ID:          e.CategoryID,
			Name:        e.Name,
			Slug:        e.Slug,
			Description: e.Description,
			ParentID:    e.ParentID,
			SortOrder:   e.SortOrder,
			IsActive:    true,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.CreatedAt,
		})

	case category.EventCategoryUpdated:
		var e category.CategoryUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("categories", e.CategoryID, func(current any) any {
			c := current.(*readmodel.CategoryReadModel)
			c.Name = e.Name
			c.Slug = e.Slug
			c.Description = e.Description
			c.ParentID = e.ParentID
			c.SortOrder = e.SortOrder
			c.UpdatedAt = e.UpdatedAt
			return c
		})
		return err

	case category.EventCategoryDeleted:
		var e category.CategoryDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		// Soft delete by marking as inactive
		_, err := p.readStore.Update("categories", e.CategoryID, func(current any) any {
			c := current.(*readmodel.CategoryReadModel)
			c.IsActive = false
			c.UpdatedAt = e.DeletedAt
			return c
		})
		return err
	}

	return nil
}
