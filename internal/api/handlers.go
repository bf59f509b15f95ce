package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/bookshop-event-driven/internal/api/middleware"
	"github.com/example/bookshop-event-driven/internal/command"
	"github.com/example/bookshop-event-driven/internal/domain/bill"
	"github.com/example/bookshop-event-driven/internal/domain/inventory"
	"github.com/example/bookshop-event-driven/internal/query"
	"github.com/example/bookshop-event-driven/internal/registry"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	registry     *registry.Registry
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, reg *registry.Registry) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		registry:     reg,
	}
}

// Book Handlers

func (h *Handlers) CreateBook(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateBook
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.cmdHandler.CreateBook(r.Context(), cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, b)
}

func (h *Handlers) GetBooks(w http.ResponseWriter, r *http.Request) {
	books := h.queryHandler.ListBooks()
	respondJSON(w, http.StatusOK, books)
}

func (h *Handlers) GetBook(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/books/")
	b, ok := h.queryHandler.GetBook(id)
	if !ok {
		http.Error(w, "Book not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (h *Handlers) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/books/")

	var cmd command.UpdateBook
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.BookID = id

	if err := h.cmdHandler.UpdateBook(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Book updated"})
}

func (h *Handlers) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/books/")

	cmd := command.DeleteBook{BookID: id}
	if err := h.cmdHandler.DeleteBook(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Book deleted"})
}

func (h *Handlers) AddStock(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/books/"), "/stock")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.AddStock{BookID: id, Quantity: req.Quantity}
	if err := h.cmdHandler.AddStock(r.Context(), cmd); err != nil {
		if errors.Is(err, inventory.ErrInvalidQuantity) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Cart Handlers

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	var req struct {
		BookID   string `json:"book_id"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.AddToCart{
		UserID:   userID,
		BookID:   req.BookID,
		Quantity: req.Quantity,
	}
	if err := h.cmdHandler.AddToCart(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	bookID := extractPathParam(r.URL.Path, "/cart/items/")
	cmd := command.RemoveFromCart{
		UserID: userID,
		BookID: bookID,
	}
	if err := h.cmdHandler.RemoveFromCart(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	c, _ := h.queryHandler.GetCart(userID)
	respondJSON(w, http.StatusOK, c)
}

// Checkout Handlers

// PreviewCheckout prices the current cart without placing a bill
func (h *Handlers) PreviewCheckout(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	var req struct {
		ShippingMethodID string `json:"shipping_method_id"`
		PaymentMethodID  string `json:"payment_method_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	quote, err := h.queryHandler.PreviewCheckout(userID, req.ShippingMethodID, req.PaymentMethodID, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Checkout places a bill from the current cart
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	var req struct {
		ShippingMethodID string `json:"shipping_method_id"`
		PaymentMethodID  string `json:"payment_method_id"`
		Address          string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.Checkout{
		UserID:           userID,
		ShippingMethodID: req.ShippingMethodID,
		PaymentMethodID:  req.PaymentMethodID,
		Address:          req.Address,
	}
	b, err := h.cmdHandler.Checkout(r.Context(), cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, b)
}

// Bill Handlers

func (h *Handlers) GetBills(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	bills := h.queryHandler.ListBillsByUser(userID)
	respondJSON(w, http.StatusOK, bills)
}

func (h *Handlers) GetBill(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/bills/")
	id = strings.TrimSuffix(id, "/cancel")
	id = strings.TrimSuffix(id, "/transitions")

	b, ok := h.queryHandler.GetBill(id)
	if !ok {
		http.Error(w, "Bill not found", http.StatusNotFound)
		return
	}

	// Authorization check: user can only access their own bills (admins can access all)
	userID := getUserID(r)
	if b.UserID != userID && !isAdmin(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, b)
}

// GetBillTransitions returns the legal next statuses for a bill so
// clients render exactly the server-computed set
func (h *Handlers) GetBillTransitions(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/bills/")
	id := strings.TrimSuffix(path, "/transitions")

	b, ok := h.queryHandler.GetBill(id)
	if !ok {
		http.Error(w, "Bill not found", http.StatusNotFound)
		return
	}

	userID := getUserID(r)
	if b.UserID != userID && !isAdmin(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	transitions, _ := h.queryHandler.GetBillTransitions(id)
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      b.Status,
		"transitions": transitions,
	})
}

// UpdateBillStatus moves a bill along its lifecycle (admin only)
func (h *Handlers) UpdateBillStatus(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/bills/")
	id := strings.TrimSuffix(path, "/status")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.UpdateBillStatus{BillID: id, NewStatus: req.Status}
	b, err := h.cmdHandler.UpdateBillStatus(r.Context(), cmd)
	if err != nil {
		switch {
		case errors.Is(err, bill.ErrBillNotFound):
			http.Error(w, "Bill not found", http.StatusNotFound)
		case errors.Is(err, bill.ErrInvalidTransition):
			var transErr *bill.InvalidTransitionError
			if errors.As(err, &transErr) {
				respondJSON(w, http.StatusConflict, map[string]any{
					"error":       err.Error(),
					"from":        transErr.From,
					"to":          transErr.To,
					"transitions": transErr.Legal,
				})
				return
			}
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, bill.ErrUnknownStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, b)
}

func (h *Handlers) CancelBill(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/bills/")
	id := strings.TrimSuffix(path, "/cancel")

	// Authorization check: user can only cancel their own bills (admins can cancel all)
	b, ok := h.queryHandler.GetBill(id)
	if !ok {
		http.Error(w, "Bill not found", http.StatusNotFound)
		return
	}

	userID := getUserID(r)
	if b.UserID != userID && !isAdmin(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	cmd := command.CancelBill{BillID: id, Reason: req.Reason}
	if _, err := h.cmdHandler.CancelBill(r.Context(), cmd); err != nil {
		if errors.Is(err, bill.ErrInvalidTransition) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Method catalogs

func (h *Handlers) GetShippingMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.ShippingMethods())
}

func (h *Handlers) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.PaymentMethods())
}

// Admin Handlers

func (h *Handlers) GetAllBills(w http.ResponseWriter, r *http.Request) {
	bills := h.queryHandler.ListAllBills()
	respondJSON(w, http.StatusOK, bills)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// getUserID extracts user ID from JWT context or falls back to X-User-ID header
func getUserID(r *http.Request) string {
	// First try to get from JWT context
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		return userID
	}

	// Fall back to X-User-ID header for backward compatibility
	if userID := r.Header.Get("X-User-ID"); userID != "" {
		return userID
	}

	return "default-user"
}

// isAdmin checks if the current user has admin role
func isAdmin(r *http.Request) bool {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Role == "admin"
}
