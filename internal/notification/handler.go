package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/bookshop-event-driven/internal/domain/bill"
	"github.com/example/bookshop-event-driven/internal/email"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/example/bookshop-event-driven/internal/readmodel"
)

// Handler processes events for sending notifications
type Handler struct {
	emailService *email.Service
	readStore    store.ReadStoreInterface
}

// NewHandler creates a new notification handler
func NewHandler(emailSvc *email.Service, readStore store.ReadStoreInterface) *Handler {
	return &Handler{
		emailService: emailSvc,
		readStore:    readStore,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	// Only process BillPlaced events
	if event.EventType == bill.EventBillPlaced {
		return h.handleBillPlaced(event)
	}

	return nil
}

func (h *Handler) handleBillPlaced(event store.Event) error {
	var e bill.BillPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal BillPlaced event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing BillPlaced event for bill %s, user %s", e.BillID, e.UserID)

	userData, exists, err := h.readStore.Get("users", e.UserID)
	if err != nil {
		log.Printf("[Notifier] Error getting user %s: %v", e.UserID, err)
		return nil
	}
	if !exists {
		log.Printf("[Notifier] User not found: %s", e.UserID)
		return nil
	}

	user, ok := userData.(*readmodel.UserReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid user data type for user: %s", e.UserID)
		return nil
	}

	// Titles and prices were frozen into the bill lines at checkout
	emailLines := make([]email.BillLine, len(e.Lines))
	for i, line := range e.Lines {
		emailLines[i] = email.BillLine{
			BookID:     line.BookID,
			Title:      line.Title,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			FinalPrice: line.FinalPrice,
		}
	}

	summary := email.BillSummary{
		BillID:           e.BillID,
		Lines:            emailLines,
		OriginalSubtotal: e.OriginalSubtotal,
		TotalSaved:       e.TotalSaved,
		ShippingCost:     e.ShippingCost,
		GrandTotal:       e.GrandTotal,
		AppliedEventName: e.AppliedEventName,
	}

	if err := h.emailService.SendBillConfirmation(user.Email, summary); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", user.Email, err)
		return err
	}

	log.Printf("[Notifier] Bill confirmation email sent to %s for bill %s", user.Email, e.BillID)
	return nil
}
