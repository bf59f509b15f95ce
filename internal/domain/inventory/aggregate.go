package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/aggregate"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
)

const AggregateType = "Inventory"

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// Inventory tracks stock per book. The aggregate ID is the book ID.
type Inventory struct {
	BookID        string `json:"book_id"`
	TotalStock    int    `json:"total_stock"`
	ReservedStock int    `json:"reserved_stock"`
	Version       int    `json:"version"`
}

func (i *Inventory) AvailableStock() int {
	return i.TotalStock - i.ReservedStock
}

func (i *Inventory) GetID() string    { return i.BookID }
func (i *Inventory) GetVersion() int  { return i.Version }
func (i *Inventory) SetVersion(v int) { i.Version = v }

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// ApplyEvent applies a single event to the inventory state
func (i *Inventory) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventStockAdded:
		var data StockAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.BookID = data.BookID
		i.TotalStock += data.Quantity
	case EventStockReserved:
		var data StockReserved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.ReservedStock += data.Quantity
	case EventStockReleased:
		var data StockReleased
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.ReservedStock -= data.Quantity
		if i.ReservedStock < 0 {
			i.ReservedStock = 0
		}
	case EventStockDeducted:
		var data StockDeducted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.TotalStock -= data.Quantity
		i.ReservedStock -= data.Quantity
		if i.TotalStock < 0 {
			i.TotalStock = 0
		}
		if i.ReservedStock < 0 {
			i.ReservedStock = 0
		}
	}
	i.Version = event.Version
	return nil
}

func (s *Service) loadInventory(ctx context.Context, bookID string) (*Inventory, error) {
	inv, _, err := aggregate.LoadAggregate(ctx, s.eventStore, bookID, func() *Inventory {
		return &Inventory{BookID: bookID}
	})
	if err != nil {
		return nil, err
	}
	if inv.BookID == "" {
		inv.BookID = bookID
	}
	return inv, nil
}

// Get returns the current stock levels for a book
func (s *Service) Get(ctx context.Context, bookID string) (*Inventory, error) {
	return s.loadInventory(ctx, bookID)
}

func (s *Service) maybeSnapshot(ctx context.Context, inv *Inventory) {
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, inv, AggregateType); err != nil {
		log.Printf("[Inventory] Failed to create snapshot for book %s: %v", inv.BookID, err)
	}
}

func (s *Service) AddStock(ctx context.Context, bookID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	inv, err := s.loadInventory(ctx, bookID)
	if err != nil {
		inv = &Inventory{BookID: bookID}
	}

	event := StockAdded{
		BookID:   bookID,
		Quantity: quantity,
		AddedAt:  time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, bookID, AggregateType, EventStockAdded, event)
	if err != nil {
		return err
	}

	inv.TotalStock += quantity
	if storedEvent != nil {
		inv.Version = storedEvent.Version
	}
	s.maybeSnapshot(ctx, inv)

	return nil
}

// Reserve holds stock under the caller's reference (the cart at
// checkout). Fails when available stock is below the requested quantity.
func (s *Service) Reserve(ctx context.Context, bookID, refID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	inv, err := s.loadInventory(ctx, bookID)
	if err != nil {
		return err
	}

	if inv.AvailableStock() < quantity {
		return ErrInsufficientStock
	}

	event := StockReserved{
		BookID:     bookID,
		RefID:      refID,
		Quantity:   quantity,
		ReservedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, bookID, AggregateType, EventStockReserved, event)
	if err != nil {
		return err
	}

	inv.ReservedStock += quantity
	if storedEvent != nil {
		inv.Version = storedEvent.Version
	}
	s.maybeSnapshot(ctx, inv)

	return nil
}

// Release returns reserved stock to the pool (cancellation or a
// checkout rollback)
func (s *Service) Release(ctx context.Context, bookID, refID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	inv, err := s.loadInventory(ctx, bookID)
	if err != nil {
		inv = &Inventory{BookID: bookID}
	}

	event := StockReleased{
		BookID:     bookID,
		RefID:      refID,
		Quantity:   quantity,
		ReleasedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, bookID, AggregateType, EventStockReleased, event)
	if err != nil {
		return err
	}

	inv.ReservedStock -= quantity
	if inv.ReservedStock < 0 {
		inv.ReservedStock = 0
	}
	if storedEvent != nil {
		inv.Version = storedEvent.Version
	}
	s.maybeSnapshot(ctx, inv)

	return nil
}

// Deduct commits reserved stock once a bill ships
func (s *Service) Deduct(ctx context.Context, bookID, refID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	inv, err := s.loadInventory(ctx, bookID)
	if err != nil {
		inv = &Inventory{BookID: bookID}
	}

	event := StockDeducted{
		BookID:     bookID,
		RefID:      refID,
		Quantity:   quantity,
		DeductedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, bookID, AggregateType, EventStockDeducted, event)
	if err != nil {
		return err
	}

	inv.TotalStock -= quantity
	inv.ReservedStock -= quantity
	if inv.TotalStock < 0 {
		inv.TotalStock = 0
	}
	if inv.ReservedStock < 0 {
		inv.ReservedStock = 0
	}
	if storedEvent != nil {
		inv.Version = storedEvent.Version
	}
	s.maybeSnapshot(ctx, inv)

	return nil
}
