package promo

import "time"

const (
	EventPromoCreated       = "PromoEventCreated"
	EventPromoUpdated       = "PromoEventUpdated"
	EventPromoRuleAdded     = "PromoRuleAdded"
	EventPromoRuleRemoved   = "PromoRuleRemoved"
	EventPromoTargetAdded   = "PromoTargetAdded"
	EventPromoTargetRemoved = "PromoTargetRemoved"
	EventPromoActionAdded   = "PromoActionAdded"
	EventPromoActionRemoved = "PromoActionRemoved"
	EventPromoImageAdded    = "PromoImageAdded"
	EventPromoImageRemoved  = "PromoImageRemoved"
	EventPromoStatusChanged = "PromoStatusChanged"
)

// PromoEventCreated is emitted when an admin creates a new event (DRAFT)
type PromoEventCreated struct {
	EventID     string    `json:"event_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Priority    int       `json:"priority"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// PromoEventUpdated is emitted when the event's own fields change
type PromoEventUpdated struct {
	EventID     string    `json:"event_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Priority    int       `json:"priority"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PromoRuleAdded struct {
	EventID   string    `json:"event_id"`
	RuleID    string    `json:"rule_id"`
	RuleType  RuleType  `json:"rule_type"`
	RuleValue string    `json:"rule_value"`
	AddedAt   time.Time `json:"added_at"`
}

type PromoRuleRemoved struct {
	EventID   string    `json:"event_id"`
	RuleID    string    `json:"rule_id"`
	RemovedAt time.Time `json:"removed_at"`
}

type PromoTargetAdded struct {
	EventID    string     `json:"event_id"`
	ID         string     `json:"id"`
	TargetType TargetType `json:"target_type"`
	TargetID   string     `json:"target_id,omitempty"`
	AddedAt    time.Time  `json:"added_at"`
}

type PromoTargetRemoved struct {
	EventID   string    `json:"event_id"`
	ID        string    `json:"id"`
	RemovedAt time.Time `json:"removed_at"`
}

type PromoActionAdded struct {
	EventID     string     `json:"event_id"`
	ID          string     `json:"id"`
	ActionType  ActionType `json:"action_type"`
	ActionValue string     `json:"action_value,omitempty"`
	AddedAt     time.Time  `json:"added_at"`
}

type PromoActionRemoved struct {
	EventID   string    `json:"event_id"`
	ID        string    `json:"id"`
	RemovedAt time.Time `json:"removed_at"`
}

type PromoImageAdded struct {
	EventID string    `json:"event_id"`
	URL     string    `json:"url"`
	Caption string    `json:"caption,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

type PromoImageRemoved struct {
	EventID   string    `json:"event_id"`
	URL       string    `json:"url"`
	RemovedAt time.Time `json:"removed_at"`
}

// PromoStatusChanged is emitted for every lifecycle move (activate, pause,
// resume, expire, disable)
type PromoStatusChanged struct {
	EventID   string    `json:"event_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}
