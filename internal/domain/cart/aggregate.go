package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/aggregate"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
)

const AggregateType = "Cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidBook     = errors.New("book_id is required")
)

type CartItem struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type Cart struct {
	ID      string              `json:"id"`
	UserID  string              `json:"user_id"`
	Items   map[string]CartItem `json:"items"` // bookID -> item
	Version int                 `json:"version"`
}

func (c *Cart) GetID() string    { return c.ID }
func (c *Cart) GetVersion() int  { return c.Version }
func (c *Cart) SetVersion(v int) { c.Version = v }

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// GetCartID returns the cart ID for a user (using userID as cartID for simplicity)
func GetCartID(userID string) string {
	return "cart-" + userID
}

// ApplyEvent applies a single event to the cart state
func (c *Cart) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventItemAdded:
		var data ItemAddedToCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if c.Items == nil {
			c.Items = make(map[string]CartItem)
		}
		c.ID = data.CartID
		c.UserID = data.UserID
		if existing, ok := c.Items[data.BookID]; ok {
			existing.Quantity += data.Quantity
			existing.Price = data.Price
			c.Items[data.BookID] = existing
		} else {
			c.Items[data.BookID] = CartItem{
				BookID:   data.BookID,
				Quantity: data.Quantity,
				Price:    data.Price,
			}
		}
	case EventItemRemoved:
		var data ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		delete(c.Items, data.BookID)
	case EventCartCleared:
		var data CartCleared
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.Items = make(map[string]CartItem)
	}
	c.Version = event.Version
	return nil
}

func (s *Service) loadCart(ctx context.Context, cartID string) (*Cart, error) {
	c, _, err := aggregate.LoadAggregate(ctx, s.eventStore, cartID, func() *Cart {
		return &Cart{Items: make(map[string]CartItem)}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the current cart for a user
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	cart, err := s.loadCart(ctx, GetCartID(userID))
	if err != nil {
		return nil, err
	}
	if cart.ID == "" {
		cart.ID = GetCartID(userID)
		cart.UserID = userID
	}
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, userID, bookID string, quantity int, price int64) error {
	if bookID == "" {
		return ErrInvalidBook
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	cartID := GetCartID(userID)

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		cart = &Cart{ID: cartID, UserID: userID, Items: make(map[string]CartItem)}
	}
	cart.ID = cartID
	cart.UserID = userID

	event := ItemAddedToCart{
		CartID:   cartID,
		UserID:   userID,
		BookID:   bookID,
		Quantity: quantity,
		Price:    price,
		AddedAt:  time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, EventItemAdded, event)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		cart.Version = storedEvent.Version
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, cart, AggregateType); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}

	return nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, bookID string) error {
	if bookID == "" {
		return ErrInvalidBook
	}

	cartID := GetCartID(userID)

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		cart = &Cart{ID: cartID, UserID: userID, Items: make(map[string]CartItem)}
	}
	cart.ID = cartID
	cart.UserID = userID

	event := ItemRemovedFromCart{
		CartID:    cartID,
		UserID:    userID,
		BookID:    bookID,
		RemovedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, EventItemRemoved, event)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		cart.Version = storedEvent.Version
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, cart, AggregateType); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}

	return nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	cartID := GetCartID(userID)

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		cart = &Cart{ID: cartID, UserID: userID, Items: make(map[string]CartItem)}
	}
	cart.ID = cartID
	cart.UserID = userID

	event := CartCleared{
		CartID:    cartID,
		UserID:    userID,
		ClearedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, EventCartCleared, event)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		cart.Version = storedEvent.Version
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, cart, AggregateType); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}

	return nil
}
