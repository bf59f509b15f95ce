package promo

import (
	"fmt"
	"log"
	"strconv"
	"time"
)

// NewUserWindow is how long after registration a user counts as new
const NewUserWindow = 30 * 24 * time.Hour

// UserFacts are the profile facts rules and targets evaluate for one user
type UserFacts struct {
	UserID       string
	RegisteredAt time.Time
	VIP          bool
	Location     string
	GroupIDs     []string
	BillsPlaced  int
}

// IsNew reports whether the user registered within NewUserWindow of now
func (f UserFacts) IsNew(now time.Time) bool {
	return !f.RegisteredAt.IsZero() && now.Sub(f.RegisteredAt) < NewUserWindow
}

// InGroup reports whether the user belongs to the given group
func (f UserFacts) InGroup(groupID string) bool {
	for _, g := range f.GroupIDs {
		if g == groupID {
			return true
		}
	}
	return false
}

// Context carries every order-level fact a rule may test. It is built once
// per pricing computation so concurrent previews never share state.
type Context struct {
	Now            time.Time
	Subtotal       int64 // sum of unit price * quantity before any discount
	TotalQuantity  int
	DistinctBooks  int
	BookIDs        map[string]bool
	CategoryIDs    map[string]bool
	AuthorIDs      map[string]bool
	PublisherIDs   map[string]bool
	PaymentMethod  string
	PaymentOnline  bool
	ShippingMethod string
	User           UserFacts
	EventUses      int // total redemptions of the candidate event
	UserEventUses  int // redemptions of the candidate event by this user
}

// Matches reports whether every rule of the event holds for the context.
// An empty rule set is trivially satisfied. A rule whose value fails to
// parse for its declared type evaluates to false and is logged as a data
// error; a broken rule must never grant a discount, and must never abort
// the pricing computation either.
func Matches(e *PromoEvent, ctx Context) bool {
	for _, r := range e.Rules {
		ok, err := ruleSatisfied(r, ctx)
		if err != nil {
			log.Printf("[Promo] Event %s rule %s (%s): %v", e.ID, r.ID, r.Type, err)
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

func ruleSatisfied(r Rule, ctx Context) (bool, error) {
	switch r.Type {
	case RuleMinOrderValue:
		v, err := parseAmount(r.Value)
		return ctx.Subtotal >= v, err
	case RuleMaxOrderValue:
		v, err := parseAmount(r.Value)
		return ctx.Subtotal <= v, err
	case RuleMinItemCount:
		v, err := parseCount(r.Value)
		return ctx.TotalQuantity >= v, err
	case RuleMaxItemCount:
		v, err := parseCount(r.Value)
		return ctx.TotalQuantity <= v, err
	case RuleMinDistinctBooks:
		v, err := parseCount(r.Value)
		return ctx.DistinctBooks >= v, err
	case RuleNewUserOnly:
		required, err := parseFlag(r.Value)
		return !required || ctx.User.IsNew(ctx.Now), err
	case RuleVIPUserOnly:
		required, err := parseFlag(r.Value)
		return !required || ctx.User.VIP, err
	case RuleFirstOrderOnly:
		required, err := parseFlag(r.Value)
		return !required || ctx.User.BillsPlaced == 0, err
	case RuleRegisteredAfter:
		t, err := parseDate(r.Value)
		return !ctx.User.RegisteredAt.Before(t), err
	case RuleRegisteredBefore:
		t, err := parseDate(r.Value)
		return ctx.User.RegisteredAt.Before(t), err
	case RuleMinOrdersPlaced:
		v, err := parseCount(r.Value)
		return ctx.User.BillsPlaced >= v, err
	case RulePaymentMethod:
		return ctx.PaymentMethod == r.Value, nil
	case RuleOnlinePaymentOnly:
		required, err := parseFlag(r.Value)
		return !required || ctx.PaymentOnline, err
	case RuleShippingMethod:
		return ctx.ShippingMethod == r.Value, nil
	case RuleCategoryInCart:
		return ctx.CategoryIDs[r.Value], nil
	case RuleBookInCart:
		return ctx.BookIDs[r.Value], nil
	case RuleAuthorInCart:
		return ctx.AuthorIDs[r.Value], nil
	case RulePublisherInCart:
		return ctx.PublisherIDs[r.Value], nil
	case RuleMaxUsesTotal:
		v, err := parseCount(r.Value)
		return ctx.EventUses < v, err
	case RuleMaxUsesPerUser:
		v, err := parseCount(r.Value)
		return ctx.UserEventUses < v, err
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownRuleType, r.Type)
	}
}

// ValidateRuleValue checks at authoring time that a value parses for its
// rule type, so malformed rules are rejected before they reach evaluation.
func ValidateRuleValue(ruleType RuleType, value string) error {
	switch ruleType {
	case RuleMinOrderValue, RuleMaxOrderValue:
		_, err := parseAmount(value)
		return err
	case RuleMinItemCount, RuleMaxItemCount, RuleMinDistinctBooks,
		RuleMinOrdersPlaced, RuleMaxUsesTotal, RuleMaxUsesPerUser:
		_, err := parseCount(value)
		return err
	case RuleNewUserOnly, RuleVIPUserOnly, RuleFirstOrderOnly, RuleOnlinePaymentOnly:
		_, err := parseFlag(value)
		return err
	case RuleRegisteredAfter, RuleRegisteredBefore:
		_, err := parseDate(value)
		return err
	case RulePaymentMethod, RuleShippingMethod, RuleCategoryInCart,
		RuleBookInCart, RuleAuthorInCart, RulePublisherInCart:
		if value == "" {
			return fmt.Errorf("%w: empty value for %s", ErrInvalidRuleValue, ruleType)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRuleType, ruleType)
	}
}

func parseAmount(value string) (int64, error) {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative amount", ErrInvalidRuleValue, value)
	}
	return v, nil
}

func parseCount(value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative count", ErrInvalidRuleValue, value)
	}
	return v, nil
}

func parseFlag(value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidRuleValue, value)
	}
	return v, nil
}

// parseDate accepts either a plain date or a full RFC3339 timestamp
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrInvalidRuleValue, value)
	}
	return t, nil
}
