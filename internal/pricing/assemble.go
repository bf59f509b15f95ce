package pricing

import (
	"errors"
	"time"

	"github.com/example/bookshop-event-driven/internal/domain/promo"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/example/bookshop-event-driven/internal/readmodel"
)

var (
	ErrBookMissing = errors.New("book missing from read store")
	ErrUserMissing = errors.New("user missing from read store")
)

// BuildInput assembles a pricing Input from the read store: the cart
// lines enriched with catalog attributes, the user's facts, every
// promotional event, and the usage counters for cap rules.
func BuildInput(
	rs store.ReadStoreInterface,
	userID string,
	items []readmodel.CartItemReadModel,
	shippingMethodID string,
	shippingCost int64,
	paymentMethodID string,
	paymentOnline bool,
	now time.Time,
) (Input, error) {
	in := Input{
		ShippingMethod: shippingMethodID,
		ShippingCost:   shippingCost,
		PaymentMethod:  paymentMethodID,
		PaymentOnline:  paymentOnline,
		Now:            now,
		EventUses:      make(map[string]int),
		UserEventUses:  make(map[string]int),
	}

	for _, item := range items {
		raw, ok, err := rs.Get("books", item.BookID)
		if err != nil {
			return Input{}, err
		}
		if !ok {
			return Input{}, ErrBookMissing
		}
		b := raw.(*readmodel.BookReadModel)
		in.Lines = append(in.Lines, LineInput{
			BookID:      b.ID,
			Title:       b.Title,
			Quantity:    item.Quantity,
			UnitPrice:   b.Price,
			CategoryIDs: b.CategoryIDs,
			AuthorID:    b.AuthorID,
			PublisherID: b.PublisherID,
			SeriesID:    b.SeriesID,
		})
	}

	raw, ok, err := rs.Get("users", userID)
	if err != nil {
		return Input{}, err
	}
	if !ok {
		return Input{}, ErrUserMissing
	}
	u := raw.(*readmodel.UserReadModel)
	in.User = promo.UserFacts{
		UserID:       u.ID,
		RegisteredAt: u.RegisteredAt,
		VIP:          u.VIP,
		Location:     u.Location,
		GroupIDs:     u.GroupIDs,
		BillsPlaced:  u.BillsPlaced,
	}

	events, err := rs.GetAll("promo_events")
	if err != nil {
		return Input{}, err
	}
	for _, rawEvent := range events {
		ev := rawEvent.(*readmodel.PromoEventReadModel)
		in.Events = append(in.Events, EventFromReadModel(ev))
		in.EventUses[ev.ID] = ev.UsageCount
		rawUsage, ok, err := rs.Get("promo_usage", ev.ID+":"+userID)
		if err != nil {
			return Input{}, err
		}
		if ok {
			in.UserEventUses[ev.ID] = rawUsage.(*readmodel.PromoUsageReadModel).Uses
		}
	}

	return in, nil
}

// EventFromReadModel converts the projected form back into the domain
// form the selector and matcher operate on
func EventFromReadModel(ev *readmodel.PromoEventReadModel) *promo.PromoEvent {
	out := &promo.PromoEvent{
		ID:          ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		StartAt:     ev.StartAt,
		EndAt:       ev.EndAt,
		Status:      promo.Status(ev.Status),
		Priority:    ev.Priority,
		CreatedBy:   ev.CreatedBy,
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}
	for _, r := range ev.Rules {
		out.Rules = append(out.Rules, promo.Rule{
			ID:    r.ID,
			Type:  promo.RuleType(r.RuleType),
			Value: r.RuleValue,
		})
	}
	for _, t := range ev.Targets {
		out.Targets = append(out.Targets, promo.Target{
			ID:       t.ID,
			Type:     promo.TargetType(t.TargetType),
			TargetID: t.TargetID,
		})
	}
	for _, a := range ev.Actions {
		out.Actions = append(out.Actions, promo.Action{
			ID:    a.ID,
			Type:  promo.ActionType(a.ActionType),
			Value: a.ActionValue,
		})
	}
	return out
}
