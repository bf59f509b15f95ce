package promo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/aggregate"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/google/uuid"
)

// Aggregate interface implementation
func (e *PromoEvent) GetID() string    { return e.ID }
func (e *PromoEvent) GetVersion() int  { return e.Version }
func (e *PromoEvent) SetVersion(v int) { e.Version = v }

// ApplyEvent applies a single stored event to the promo event state
func (e *PromoEvent) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventPromoCreated:
		var data PromoEventCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		e.ID = data.EventID
		e.Name = data.Name
		e.Description = data.Description
		e.StartAt = data.StartAt
		e.EndAt = data.EndAt
		e.Priority = data.Priority
		e.CreatedBy = data.CreatedBy
		e.Status = StatusDraft
		e.CreatedAt = data.CreatedAt
		e.UpdatedAt = data.CreatedAt
	case EventPromoUpdated:
		var data PromoEventUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		e.Name = data.Name
		e.Description = data.Description
		e.StartAt = data.StartAt
		e.EndAt = data.EndAt
		e.Priority = data.Priority
		e.UpdatedAt = data.UpdatedAt
	case EventPromoRuleAdded:
		var data PromoRuleAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		e.Rules = append(e.Rules, Rule{ID: data.RuleID, Type: data.RuleType, Value: data.RuleValue})
		e.UpdatedAt = data.AddedAt
	case EventPromoRuleRemoved:
		var data PromoRuleRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		for i, r := range e.Rules {
			if r.ID == data.RuleID {
				e.Rules = append(e.Rules[:i], e.Rules[i+1:]...)
				break
			}
		}
		e.UpdatedAt = data.RemovedAt
	case EventPromoTargetAdded:
		var data PromoTargetAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		e.Targets = append(e.Targets, Target{ID: data.ID, Type: data.TargetType, TargetID: data.TargetID})
		e.UpdatedAt = data.AddedAt
	case EventPromoTargetRemoved:
		var data PromoTargetRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		for i, t := range e.Targets {
			if t.ID == data.ID {
				e.Targets = append(e.Targets[:i], e.Targets[i+1:]...)
				break
			}
		}
		e.UpdatedAt = data.RemovedAt
	case EventPromoActionAdded:
		var data PromoActionAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		e.Actions = append(e.Actions, Action{ID: data.ID, Type: data.ActionType, Value: data.ActionValue})
		e.UpdatedAt = data.AddedAt
	case EventPromoActionRemoved:
		var data PromoActionRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		for i, a := range e.Actions {
			if a.ID == data.ID {
				e.Actions = append(e.Actions[:i], e.Actions[i+1:]...)
				break
			}
		}
		e.UpdatedAt = data.RemovedAt
	case EventPromoImageAdded:
		var data PromoImageAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		e.Images = append(e.Images, Image{URL: data.URL, Caption: data.Caption})
		e.UpdatedAt = data.AddedAt
	case EventPromoImageRemoved:
		var data PromoImageRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		for i, img := range e.Images {
			if img.URL == data.URL {
				e.Images = append(e.Images[:i], e.Images[i+1:]...)
				break
			}
		}
		e.UpdatedAt = data.RemovedAt
	case EventPromoStatusChanged:
		var data PromoStatusChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		e.Status = data.NewStatus
		e.UpdatedAt = data.ChangedAt
	}
	e.Version = event.Version
	return nil
}

// Service handles promotional event authoring
type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) load(ctx context.Context, eventID string) (*PromoEvent, error) {
	e, found, err := aggregate.LoadAggregate(ctx, s.eventStore, eventID, func() *PromoEvent {
		return &PromoEvent{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// Get returns the current state of a promotional event
func (s *Service) Get(ctx context.Context, eventID string) (*PromoEvent, error) {
	return s.load(ctx, eventID)
}

// Create authors a new promotional event in DRAFT status
func (s *Service) Create(ctx context.Context, name, description string, startAt, endAt time.Time, priority int, createdBy string) (*PromoEvent, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if !startAt.Before(endAt) {
		return nil, ErrInvalidWindow
	}

	eventID := uuid.New().String()
	now := time.Now()

	event := PromoEventCreated{
		EventID:     eventID,
		Name:        name,
		Description: description,
		StartAt:     startAt,
		EndAt:       endAt,
		Priority:    priority,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}

	storedEvent, err := s.eventStore.Append(ctx, eventID, AggregateType, EventPromoCreated, event)
	if err != nil {
		return nil, err
	}

	e := &PromoEvent{
		ID:          eventID,
		Name:        name,
		Description: description,
		StartAt:     startAt,
		EndAt:       endAt,
		Priority:    priority,
		CreatedBy:   createdBy,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if storedEvent != nil {
		e.Version = storedEvent.Version
	}
	return e, nil
}

// Update changes the event's own fields (name, window, priority)
func (s *Service) Update(ctx context.Context, eventID, name, description string, startAt, endAt time.Time, priority int) error {
	if name == "" {
		return ErrInvalidName
	}
	if !startAt.Before(endAt) {
		return ErrInvalidWindow
	}

	if _, err := s.load(ctx, eventID); err != nil {
		return err
	}

	event := PromoEventUpdated{
		EventID:     eventID,
		Name:        name,
		Description: description,
		StartAt:     startAt,
		EndAt:       endAt,
		Priority:    priority,
		UpdatedAt:   time.Now(),
	}

	return s.appendAndSnapshot(ctx, eventID, EventPromoUpdated, event)
}

// AddRule attaches a rule after validating the value parses for its type
func (s *Service) AddRule(ctx context.Context, eventID string, ruleType RuleType, ruleValue string) (string, error) {
	if err := ValidateRuleValue(ruleType, ruleValue); err != nil {
		return "", err
	}
	if _, err := s.load(ctx, eventID); err != nil {
		return "", err
	}

	ruleID := uuid.New().String()
	event := PromoRuleAdded{
		EventID:   eventID,
		RuleID:    ruleID,
		RuleType:  ruleType,
		RuleValue: ruleValue,
		AddedAt:   time.Now(),
	}
	return ruleID, s.appendAndSnapshot(ctx, eventID, EventPromoRuleAdded, event)
}

// RemoveRule detaches a rule from the event
func (s *Service) RemoveRule(ctx context.Context, eventID, ruleID string) error {
	e, err := s.load(ctx, eventID)
	if err != nil {
		return err
	}
	if !hasRule(e, ruleID) {
		return fmt.Errorf("%w: rule %s", ErrChildNotFound, ruleID)
	}

	event := PromoRuleRemoved{EventID: eventID, RuleID: ruleID, RemovedAt: time.Now()}
	return s.appendAndSnapshot(ctx, eventID, EventPromoRuleRemoved, event)
}

// AddTarget attaches a target; types that reference an entity must carry an id
func (s *Service) AddTarget(ctx context.Context, eventID string, targetType TargetType, targetRef string) (string, error) {
	if !KnownTargetType(targetType) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTargetType, targetType)
	}
	if NeedsTargetID(targetType) && targetRef == "" {
		return "", fmt.Errorf("%w: %s requires a target id", ErrUnknownTargetType, targetType)
	}
	if !NeedsTargetID(targetType) {
		targetRef = ""
	}
	if _, err := s.load(ctx, eventID); err != nil {
		return "", err
	}

	id := uuid.New().String()
	event := PromoTargetAdded{
		EventID:    eventID,
		ID:         id,
		TargetType: targetType,
		TargetID:   targetRef,
		AddedAt:    time.Now(),
	}
	return id, s.appendAndSnapshot(ctx, eventID, EventPromoTargetAdded, event)
}

// RemoveTarget detaches a target from the event
func (s *Service) RemoveTarget(ctx context.Context, eventID, targetID string) error {
	e, err := s.load(ctx, eventID)
	if err != nil {
		return err
	}
	if !hasTarget(e, targetID) {
		return fmt.Errorf("%w: target %s", ErrChildNotFound, targetID)
	}

	event := PromoTargetRemoved{EventID: eventID, ID: targetID, RemovedAt: time.Now()}
	return s.appendAndSnapshot(ctx, eventID, EventPromoTargetRemoved, event)
}

// AddAction attaches a price action after validating its value
func (s *Service) AddAction(ctx context.Context, eventID string, actionType ActionType, actionValue string) (string, error) {
	if err := ValidateActionValue(actionType, actionValue); err != nil {
		return "", err
	}
	if _, err := s.load(ctx, eventID); err != nil {
		return "", err
	}

	id := uuid.New().String()
	event := PromoActionAdded{
		EventID:     eventID,
		ID:          id,
		ActionType:  actionType,
		ActionValue: actionValue,
		AddedAt:     time.Now(),
	}
	return id, s.appendAndSnapshot(ctx, eventID, EventPromoActionAdded, event)
}

// RemoveAction detaches an action from the event
func (s *Service) RemoveAction(ctx context.Context, eventID, actionID string) error {
	e, err := s.load(ctx, eventID)
	if err != nil {
		return err
	}
	if !hasAction(e, actionID) {
		return fmt.Errorf("%w: action %s", ErrChildNotFound, actionID)
	}

	event := PromoActionRemoved{EventID: eventID, ID: actionID, RemovedAt: time.Now()}
	return s.appendAndSnapshot(ctx, eventID, EventPromoActionRemoved, event)
}

// AddImage attaches a display banner
func (s *Service) AddImage(ctx context.Context, eventID, url, caption string) error {
	if url == "" {
		return fmt.Errorf("%w: image url is required", ErrInvalidName)
	}
	if _, err := s.load(ctx, eventID); err != nil {
		return err
	}

	event := PromoImageAdded{EventID: eventID, URL: url, Caption: caption, AddedAt: time.Now()}
	return s.appendAndSnapshot(ctx, eventID, EventPromoImageAdded, event)
}

// RemoveImage detaches a display banner
func (s *Service) RemoveImage(ctx context.Context, eventID, url string) error {
	if _, err := s.load(ctx, eventID); err != nil {
		return err
	}

	event := PromoImageRemoved{EventID: eventID, URL: url, RemovedAt: time.Now()}
	return s.appendAndSnapshot(ctx, eventID, EventPromoImageRemoved, event)
}

// ChangeStatus moves the event through its lifecycle
func (s *Service) ChangeStatus(ctx context.Context, eventID string, newStatus Status) error {
	e, err := s.load(ctx, eventID)
	if err != nil {
		return err
	}

	if !e.CanChangeStatusTo(newStatus) {
		return e.statusError(newStatus)
	}

	event := PromoStatusChanged{
		EventID:   eventID,
		OldStatus: e.Status,
		NewStatus: newStatus,
		ChangedAt: time.Now(),
	}
	return s.appendAndSnapshot(ctx, eventID, EventPromoStatusChanged, event)
}

func (s *Service) appendAndSnapshot(ctx context.Context, eventID, eventType string, data any) error {
	storedEvent, err := s.eventStore.Append(ctx, eventID, AggregateType, eventType, data)
	if err != nil {
		return err
	}

	if storedEvent != nil && store.ShouldSnapshot(storedEvent.Version) {
		e, loadErr := s.load(ctx, eventID)
		if loadErr == nil {
			if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, e, AggregateType); err != nil {
				log.Printf("[Promo] Failed to create snapshot for event %s: %v", eventID, err)
			}
		}
	}
	return nil
}

func hasRule(e *PromoEvent, ruleID string) bool {
	for _, r := range e.Rules {
		if r.ID == ruleID {
			return true
		}
	}
	return false
}

func hasTarget(e *PromoEvent, targetID string) bool {
	for _, t := range e.Targets {
		if t.ID == targetID {
			return true
		}
	}
	return false
}

func hasAction(e *PromoEvent, actionID string) bool {
	for _, a := range e.Actions {
		if a.ID == actionID {
			return true
		}
	}
	return false
}
