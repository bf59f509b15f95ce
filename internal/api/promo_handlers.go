package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/promo"
	"github.com/example/bookshop-event-driven/internal/query"
)

// PromoHandlers handles the admin promotion CRUD surface plus the public
// current-event endpoint
type PromoHandlers struct {
	promoService *promo.Service
	queryHandler *query.Handler
}

func NewPromoHandlers(promoService *promo.Service, queryHandler *query.Handler) *PromoHandlers {
	return &PromoHandlers{
		promoService: promoService,
		queryHandler: queryHandler,
	}
}

func promoStatusCode(err error) int {
	switch {
	case errors.Is(err, promo.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, promo.ErrChildNotFound):
		return http.StatusNotFound
	case errors.Is(err, promo.ErrInvalidStatus):
		return http.StatusConflict
	case errors.Is(err, promo.ErrInvalidName),
		errors.Is(err, promo.ErrInvalidWindow),
		errors.Is(err, promo.ErrUnknownRuleType),
		errors.Is(err, promo.ErrUnknownTargetType),
		errors.Is(err, promo.ErrUnknownActionType),
		errors.Is(err, promo.ErrInvalidRuleValue),
		errors.Is(err, promo.ErrInvalidActionValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CreateEvent creates a new promotional event in DRAFT
func (h *PromoHandlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		StartAt     time.Time `json:"start_at"`
		EndAt       time.Time `json:"end_at"`
		Priority    int       `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	e, err := h.promoService.Create(r.Context(), req.Name, req.Description, req.StartAt, req.EndAt, req.Priority, getUserID(r))
	if err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}

	respondJSON(w, http.StatusCreated, e)
}

func (h *PromoHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListPromoEvents())
}

func (h *PromoHandlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := promoEventID(r.URL.Path)
	e, ok := h.queryHandler.GetPromoEvent(id)
	if !ok {
		respondJSONError(w, "Event not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (h *PromoHandlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := promoEventID(r.URL.Path)

	var req struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		StartAt     time.Time `json:"start_at"`
		EndAt       time.Time `json:"end_at"`
		Priority    int       `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.promoService.Update(r.Context(), id, req.Name, req.Description, req.StartAt, req.EndAt, req.Priority); err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Event updated"})
}

// ChangeStatus moves the event through its lifecycle
func (h *PromoHandlers) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := promoEventID(r.URL.Path)

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.promoService.ChangeStatus(r.Context(), id, promo.Status(req.Status)); err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Status changed"})
}

// Rules

func (h *PromoHandlers) AddRule(w http.ResponseWriter, r *http.Request) {
	id := promoEventID(r.URL.Path)

	var req struct {
		RuleType  string `json:"rule_type"`
		RuleValue string `json:"rule_value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ruleID, err := h.promoService.AddRule(r.Context(), id, promo.RuleType(req.RuleType), req.RuleValue)
	if err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": ruleID})
}

func (h *PromoHandlers) RemoveRule(w http.ResponseWriter, r *http.Request) {
	eventID, ruleID := promoChildIDs(r.URL.Path, "rules")
	if err := h.promoService.RemoveRule(r.Context(), eventID, ruleID); err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Targets

func (h *PromoHandlers) AddTarget(w http.ResponseWriter, r *http.Request) {
	id := promoEventID(r.URL.Path)

	var req struct {
		TargetType string `json:"target_type"`
		TargetID   string `json:"target_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	targetID, err := h.promoService.AddTarget(r.Context(), id, promo.TargetType(req.TargetType), req.TargetID)
	if err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": targetID})
}

func (h *PromoHandlers) RemoveTarget(w http.ResponseWriter, r *http.Request) {
	eventID, targetID := promoChildIDs(r.URL.Path, "targets")
	if err := h.promoService.RemoveTarget(r.Context(), eventID, targetID); err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Actions

func (h *PromoHandlers) AddAction(w http.ResponseWriter, r *http.Request) {
	id := promoEventID(r.URL.Path)

	var req struct {
		ActionType  string `json:"action_type"`
		ActionValue string `json:"action_value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actionID, err := h.promoService.AddAction(r.Context(), id, promo.ActionType(req.ActionType), req.ActionValue)
	if err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": actionID})
}

func (h *PromoHandlers) RemoveAction(w http.ResponseWriter, r *http.Request) {
	eventID, actionID := promoChildIDs(r.URL.Path, "actions")
	if err := h.promoService.RemoveAction(r.Context(), eventID, actionID); err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Images

func (h *PromoHandlers) AddImage(w http.ResponseWriter, r *http.Request) {
	id := promoEventID(r.URL.Path)

	var req struct {
		URL     string `json:"url"`
		Caption string `json:"caption"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.promoService.AddImage(r.Context(), id, req.URL, req.Caption); err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"url": req.URL})
}

func (h *PromoHandlers) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id := promoEventID(r.URL.Path)

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.promoService.RemoveImage(r.Context(), id, req.URL); err != nil {
		respondJSONError(w, err.Error(), promoStatusCode(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetCurrentEvent returns the event the selector would pick right now
// (public, for storefront banners)
func (h *PromoHandlers) GetCurrentEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := h.queryHandler.GetCurrentPromoEvent(time.Now())
	if !ok {
		respondJSON(w, http.StatusOK, nil)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// promoEventID extracts the event id from /admin/promotions/{id}[/...]
func promoEventID(path string) string {
	rest := strings.TrimPrefix(path, "/admin/promotions/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// promoChildIDs extracts event and child ids from
// /admin/promotions/{id}/{kind}/{childID}
func promoChildIDs(path, kind string) (string, string) {
	rest := strings.TrimPrefix(path, "/admin/promotions/")
	parts := strings.Split(rest, "/")
	if len(parts) >= 3 && parts[1] == kind {
		return parts[0], parts[2]
	}
	return "", ""
}
