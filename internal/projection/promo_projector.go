package projection

import (
	"encoding/json"

	"github.com/example/bookshop-event-driven/internal/domain/promo"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/example/bookshop-event-driven/internal/readmodel"
)

func (p *Projector) handlePromoEvent(event store.Event) error {
	switch event.EventType {
	case promo.EventPromoCreated:
		var e promo.PromoEventCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set("promo_events", e.EventID, &readmodel.PromoEventReadModel{
			ID:          e.EventID,
			Name:        e.Name,
			Description: e.Description,
			StartAt:     e.StartAt,
			EndAt:       e.EndAt,
			Status:      string(promo.StatusDraft),
			Priority:    e.Priority,
			CreatedBy:   e.CreatedBy,
			Rules:       []readmodel.PromoRuleReadModel{},
			Targets:     []readmodel.PromoTargetReadModel{},
			Actions:     []readmodel.PromoActionReadModel{},
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.CreatedAt,
		})

	case promo.EventPromoUpdated:
		var e promo.PromoEventUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			ev.Name = e.Name
			ev.Description = e.Description
			ev.StartAt = e.StartAt
			ev.EndAt = e.EndAt
			ev.Priority = e.Priority
			ev.UpdatedAt = e.UpdatedAt
			return ev
		})
		return err

	case promo.EventPromoRuleAdded:
		var e promo.PromoRuleAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			ev.Rules = append(ev.Rules, readmodel.PromoRuleReadModel{
				ID:        e.RuleID,
				RuleType:  string(e.RuleType),
				RuleValue: e.RuleValue,
			})
			ev.UpdatedAt = e.AddedAt
			return ev
		})
		return err

	case promo.EventPromoRuleRemoved:
		var e promo.PromoRuleRemoved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			kept := make([]readmodel.PromoRuleReadModel, 0, len(ev.Rules))
			for _, r := range ev.Rules {
				if r.ID != e.RuleID {
					kept = append(kept, r)
				}
			}
			ev.Rules = kept
			ev.UpdatedAt = e.RemovedAt
			return ev
		})
		return err

	case promo.EventPromoTargetAdded:
		var e promo.PromoTargetAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			ev.Targets = append(ev.Targets, readmodel.PromoTargetReadModel{
				ID:         e.ID,
				TargetType: string(e.TargetType),
				TargetID:   e.TargetID,
			})
			ev.UpdatedAt = e.AddedAt
			return ev
		})
		return err

	case promo.EventPromoTargetRemoved:
		var e promo.PromoTargetRemoved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			kept := make([]readmodel.PromoTargetReadModel, 0, len(ev.Targets))
			for _, t := range ev.Targets {
				if t.ID != e.ID {
					kept = append(kept, t)
				}
			}
			ev.Targets = kept
			ev.UpdatedAt = e.RemovedAt
			return ev
		})
		return err

	case promo.EventPromoActionAdded:
		var e promo.PromoActionAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			ev.Actions = append(ev.Actions, readmodel.PromoActionReadModel{
				ID:          e.ID,
				ActionType:  string(e.ActionType),
				ActionValue: e.ActionValue,
			})
			ev.UpdatedAt = e.AddedAt
			return ev
		})
		return err

	case promo.EventPromoActionRemoved:
		var e promo.PromoActionRemoved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			kept := make([]readmodel.PromoActionReadModel, 0, len(ev.Actions))
			for _, a := range ev.Actions {
				if a.ID != e.ID {
					kept = append(kept, a)
				}
			}
			ev.Actions = kept
			ev.UpdatedAt = e.RemovedAt
			return ev
		})
		return err

	case promo.EventPromoImageAdded:
		var e promo.PromoImageAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			ev.Images = append(ev.Images, readmodel.PromoImageReadModel{
				URL:     e.URL,
				Caption: e.Caption,
			})
			ev.UpdatedAt = e.AddedAt
			return ev
		})
		return err

	case promo.EventPromoImageRemoved:
		var e promo.PromoImageRemoved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			kept := make([]readmodel.PromoImageReadModel, 0, len(ev.Images))
			for _, img := range ev.Images {
				if img.URL != e.URL {
					kept = append(kept, img)
				}
			}
			ev.Images = kept
			ev.UpdatedAt = e.RemovedAt
			return ev
		})
		return err

	case promo.EventPromoStatusChanged:
		var e promo.PromoStatusChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("promo_events", e.EventID, func(current any) any {
			ev := current.(*readmodel.PromoEventReadModel)
			ev.Status = string(e.NewStatus)
			ev.UpdatedAt = e.ChangedAt
			return ev
		})
		return err
	}

	return nil
}
