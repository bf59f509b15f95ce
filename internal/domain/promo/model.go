package promo

import (
	"errors"
	"fmt"
	"time"
)

const AggregateType = "PromoEvent"

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusPaused   Status = "PAUSED"
	StatusExpired  Status = "EXPIRED"
	StatusDisabled Status = "DISABLED"
)

// RuleType identifies the predicate a rule's value is evaluated with.
type RuleType string

const (
	RuleMinOrderValue     RuleType = "MIN_ORDER_VALUE"
	RuleMaxOrderValue     RuleType = "MAX_ORDER_VALUE"
	RuleMinItemCount      RuleType = "MIN_ITEM_COUNT"
	RuleMaxItemCount      RuleType = "MAX_ITEM_COUNT"
	RuleMinDistinctBooks  RuleType = "MIN_DISTINCT_BOOKS"
	RuleNewUserOnly       RuleType = "NEW_USER_ONLY"
	RuleVIPUserOnly       RuleType = "VIP_USER_ONLY"
	RuleFirstOrderOnly    RuleType = "FIRST_ORDER_ONLY"
	RuleRegisteredAfter   RuleType = "REGISTERED_AFTER"
	RuleRegisteredBefore  RuleType = "REGISTERED_BEFORE"
	RuleMinOrdersPlaced   RuleType = "MIN_ORDERS_PLACED"
	RulePaymentMethod     RuleType = "PAYMENT_METHOD"
	RuleOnlinePaymentOnly RuleType = "ONLINE_PAYMENT_ONLY"
	RuleShippingMethod    RuleType = "SHIPPING_METHOD"
	RuleCategoryInCart    RuleType = "CATEGORY_IN_CART"
	RuleBookInCart        RuleType = "BOOK_IN_CART"
	RuleAuthorInCart      RuleType = "AUTHOR_IN_CART"
	RulePublisherInCart   RuleType = "PUBLISHER_IN_CART"
	RuleMaxUsesTotal      RuleType = "MAX_USES_TOTAL"
	RuleMaxUsesPerUser    RuleType = "MAX_USES_PER_USER"
)

// TargetType identifies what part of an order an event applies to.
type TargetType string

const (
	TargetBook       TargetType = "BOOK"
	TargetCategory   TargetType = "CATEGORY"
	TargetSeries     TargetType = "SERIES"
	TargetAuthor     TargetType = "AUTHOR"
	TargetPublisher  TargetType = "PUBLISHER"
	TargetUser       TargetType = "USER"
	TargetUserGroup  TargetType = "USER_GROUP"
	TargetNewUser    TargetType = "NEW_USER"
	TargetVIPUser    TargetType = "VIP_USER"
	TargetAllOrders  TargetType = "ALL_ORDERS"
	TargetFirstOrder TargetType = "FIRST_ORDER"
	TargetLocation   TargetType = "LOCATION"
	TargetAll        TargetType = "ALL"
)

// ActionType identifies the price adjustment an action performs.
type ActionType string

const (
	ActionDiscountPercent ActionType = "DISCOUNT_PERCENT"
	ActionDiscountAmount  ActionType = "DISCOUNT_AMOUNT"
	ActionFixedPrice      ActionType = "FIXED_PRICE"
	ActionFreeShipping    ActionType = "FREE_SHIPPING"
)

// Rule is one eligibility condition; Value is parsed according to Type.
type Rule struct {
	ID    string   `json:"id"`
	Type  RuleType `json:"rule_type"`
	Value string   `json:"rule_value"`
}

// Target narrows an event to books, categories, user segments, or all orders.
// TargetID is empty for types that need no reference (ALL, ALL_ORDERS, ...).
type Target struct {
	ID       string     `json:"id"`
	Type     TargetType `json:"target_type"`
	TargetID string     `json:"target_id,omitempty"`
}

// Action is one price adjustment; Value is a numeric string for the
// discount types and unused for FREE_SHIPPING.
type Action struct {
	ID    string     `json:"id"`
	Type  ActionType `json:"action_type"`
	Value string     `json:"action_value,omitempty"`
}

// Image is a display-only banner
type Image struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// PromoEvent is a promotional event and the collections it exclusively
// owns. The window is half-open: [StartAt, EndAt).
type PromoEvent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Status      Status    `json:"status"`
	Priority    int       `json:"priority"`
	CreatedBy   string    `json:"created_by"`
	Rules       []Rule    `json:"rules"`
	Targets     []Target  `json:"targets"`
	Actions     []Action  `json:"actions"`
	Images      []Image   `json:"images,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

var (
	ErrEventNotFound      = errors.New("promotional event not found")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidWindow      = errors.New("start time must be before end time")
	ErrInvalidStatus      = errors.New("invalid event status transition")
	ErrUnknownRuleType    = errors.New("unknown rule type")
	ErrUnknownTargetType  = errors.New("unknown target type")
	ErrUnknownActionType  = errors.New("unknown action type")
	ErrInvalidRuleValue   = errors.New("rule value does not parse for its rule type")
	ErrInvalidActionValue = errors.New("action value does not parse for its action type")
	ErrChildNotFound      = errors.New("rule, target, or action not found on event")
)

// validStatusChanges defines allowed status transitions.
// EXPIRED and DISABLED are terminal.
var validStatusChanges = map[Status][]Status{
	StatusDraft:    {StatusActive, StatusDisabled},
	StatusActive:   {StatusPaused, StatusExpired, StatusDisabled},
	StatusPaused:   {StatusActive, StatusExpired, StatusDisabled},
	StatusExpired:  {},
	StatusDisabled: {},
}

// CanChangeStatusTo checks if the event can move to the target status
func (e *PromoEvent) CanChangeStatusTo(target Status) bool {
	allowed, exists := validStatusChanges[e.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

func (e *PromoEvent) statusError(target Status) error {
	return fmt.Errorf("%w: cannot change from %s to %s", ErrInvalidStatus, e.Status, target)
}

// EligibleAt reports whether the event may be selected at the given
// instant: status ACTIVE and StartAt <= now < EndAt.
func (e *PromoEvent) EligibleAt(now time.Time) bool {
	return e.Status == StatusActive && !now.Before(e.StartAt) && now.Before(e.EndAt)
}
