package bill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/aggregate"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Bill"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusShipping  Status = "SHIPPING"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

var (
	ErrBillNotFound      = errors.New("bill not found")
	ErrEmptyBill         = errors.New("bill must have at least one line")
	ErrMissingAddress    = errors.New("shipping address is required")
	ErrUnknownStatus     = errors.New("unknown bill status")
	ErrInvalidTransition = errors.New("invalid bill status transition")
)

// validTransitions defines the strict forward-only lifecycle.
// COMPLETED and CANCELED are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusCanceled},
	StatusApproved:  {StatusShipping, StatusCanceled},
	StatusShipping:  {StatusShipped, StatusCanceled},
	StatusShipped:   {StatusCompleted},
	StatusCompleted: {},
	StatusCanceled:  {},
}

// KnownStatus reports whether s is one of the lifecycle statuses
func KnownStatus(s Status) bool {
	_, ok := validTransitions[s]
	return ok
}

// NextStatuses returns the legal next states from the given status. The
// set is computed here and offered to callers; clients never infer it.
func NextStatuses(from Status) []Status {
	allowed := validTransitions[from]
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out
}

// InvalidTransitionError reports an illegal status change together with
// the legal next-state set from the current status.
type InvalidTransitionError struct {
	From  Status
	To    Status
	Legal []Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid bill status transition from %s to %s (legal: %v)", e.From, e.To, e.Legal)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// CanTransitionTo checks if the bill can move to the target status
func (b *Bill) CanTransitionTo(target Status) bool {
	for _, s := range validTransitions[b.Status] {
		if s == target {
			return true
		}
	}
	return false
}

func (b *Bill) transitionError(target Status) error {
	return &InvalidTransitionError{From: b.Status, To: target, Legal: NextStatuses(b.Status)}
}

// Bill is a persisted order snapshot: the priced lines and totals are
// frozen at placement and only the status moves afterwards.
type Bill struct {
	ID                 string    `json:"id"`
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
	Status             Status    `json:"status"`
	CancelReason       string    `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Version            int       `json:"version"`
}

// Aggregate interface implementation
func (b *Bill) GetID() string    { return b.ID }
func (b *Bill) GetVersion() int  { return b.Version }
func (b *Bill) SetVersion(v int) { b.Version = v }

// ApplyEvent applies a single stored event to the bill state
func (b *Bill) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventBillPlaced:
		var data BillPlaced
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		b.ID = data.BillID
		b.UserID = data.UserID
		b.Lines = data.Lines
		b.OriginalSubtotal = data.OriginalSubtotal
		b.DiscountedSubtotal = data.DiscountedSubtotal
		b.TotalSaved = data.TotalSaved
		b.ShippingCost = data.ShippingCost
		b.GrandTotal = data.GrandTotal
		b.ShippingMethodID = data.ShippingMethodID
		b.PaymentMethodID = data.PaymentMethodID
		b.Address = data.Address
		b.AppliedEventID = data.AppliedEventID
		b.AppliedEventName = data.AppliedEventName
		b.Status = StatusPending
		b.CreatedAt = data.PlacedAt
		b.UpdatedAt = data.PlacedAt
	case EventBillStatusChanged:
		var data BillStatusChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		b.Status = data.NewStatus
		b.UpdatedAt = data.ChangedAt
	case EventBillCancelled:
		var data BillCancelled
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		b.Status = StatusCanceled
		b.CancelReason = data.Reason
		b.UpdatedAt = data.CancelledAt
	}
	b.Version = event.Version
	return nil
}

// Placement carries everything frozen into a new bill at checkout
type Placement struct {
	UserID             string
	Lines              []Line
	OriginalSubtotal   int64
	DiscountedSubtotal int64
	TotalSaved         int64
	ShippingCost       int64
	GrandTotal         int64
	ShippingMethodID   string
	PaymentMethodID    string
	Address            string
	AppliedEventID     string
	AppliedEventName   string
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) loadBill(ctx context.Context, billID string) (*Bill, error) {
	b, found, err := aggregate.LoadAggregate(ctx, s.eventStore, billID, func() *Bill {
		return &Bill{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrBillNotFound
	}
	return b, nil
}

// Get returns the current state of a bill
func (s *Service) Get(ctx context.Context, billID string) (*Bill, error) {
	return s.loadBill(ctx, billID)
}

// Place creates a bill from an already-priced placement (emits BillPlaced)
func (s *Service) Place(ctx context.Context, p Placement) (*Bill, error) {
	if len(p.Lines) == 0 {
		return nil, ErrEmptyBill
	}
	if p.Address == "" {
		return nil, ErrMissingAddress
	}

	billID := uuid.New().String()
	now := time.Now()

	event := BillPlaced{
		BillID:             billID,
		UserID:             p.UserID,
		Lines:              p.Lines,
		OriginalSubtotal:   p.OriginalSubtotal,
		DiscountedSubtotal: p.DiscountedSubtotal,
		TotalSaved:         p.TotalSaved,
		ShippingCost:       p.ShippingCost,
		GrandTotal:         p.GrandTotal,
		ShippingMethodID:   p.ShippingMethodID,
		PaymentMethodID:    p.PaymentMethodID,
		Address:            p.Address,
		AppliedEventID:     p.AppliedEventID,
		AppliedEventName:   p.AppliedEventName,
		PlacedAt:           now,
	}

	storedEvent, err := s.eventStore.Append(ctx, billID, AggregateType, EventBillPlaced, event)
	if err != nil {
		return nil, err
	}

	b := &Bill{
		ID:                 billID,
		UserID:             p.UserID,
		Lines:              p.Lines,
		OriginalSubtotal:   p.OriginalSubtotal,
		DiscountedSubtotal: p.DiscountedSubtotal,
		TotalSaved:         p.TotalSaved,
		ShippingCost:       p.ShippingCost,
		GrandTotal:         p.GrandTotal,
		ShippingMethodID:   p.ShippingMethodID,
		PaymentMethodID:    p.PaymentMethodID,
		Address:            p.Address,
		AppliedEventID:     p.AppliedEventID,
		AppliedEventName:   p.AppliedEventName,
		Status:             StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if storedEvent != nil {
		b.Version = storedEvent.Version
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, b, AggregateType); err != nil {
		log.Printf("[Bill] Failed to create snapshot for bill %s: %v", b.ID, err)
	}

	return b, nil
}

// UpdateStatus moves a bill along its lifecycle. Cancellation must go
// through Cancel so a reason is recorded.
func (s *Service) UpdateStatus(ctx context.Context, billID string, newStatus Status) (*Bill, error) {
	if !KnownStatus(newStatus) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, newStatus)
	}
	if newStatus == StatusCanceled {
		return s.Cancel(ctx, billID, "")
	}

	b, err := s.loadBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	if !b.CanTransitionTo(newStatus) {
		return nil, b.transitionError(newStatus)
	}

	now := time.Now()
	event := BillStatusChanged{
		BillID:    billID,
		OldStatus: b.Status,
		NewStatus: newStatus,
		ChangedAt: now,
	}

	storedEvent, err := s.eventStore.Append(ctx, billID, AggregateType, EventBillStatusChanged, event)
	if err != nil {
		return nil, err
	}

	b.Status = newStatus
	b.UpdatedAt = now
	if storedEvent != nil {
		b.Version = storedEvent.Version
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, b, AggregateType); err != nil {
		log.Printf("[Bill] Failed to create snapshot for bill %s: %v", b.ID, err)
	}

	return b, nil
}

// Cancel cancels a bill with a reason (emits BillCancelled)
func (s *Service) Cancel(ctx context.Context, billID, reason string) (*Bill, error) {
	b, err := s.loadBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	if !b.CanTransitionTo(StatusCanceled) {
		return nil, b.transitionError(StatusCanceled)
	}

	now := time.Now()
	event := BillCancelled{
		BillID:      billID,
		Reason:      reason,
		CancelledAt: now,
	}

	storedEvent, err := s.eventStore.Append(ctx, billID, AggregateType, EventBillCancelled, event)
	if err != nil {
		return nil, err
	}

	b.Status = StatusCanceled
	b.CancelReason = reason
	b.UpdatedAt = now
	if storedEvent != nil {
		b.Version = storedEvent.Version
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, b, AggregateType); err != nil {
		log.Printf("[Bill] Failed to create snapshot for bill %s: %v", b.ID, err)
	}

	return b, nil
}
