package promo

import (
	"fmt"
	"log"
	"strconv"
)

// ApplyToPrice runs the event's price actions over one unit price,
// cumulatively and in declaration order: each action operates on the result
// of the previous one. The result never drops below zero. FREE_SHIPPING is
// order-level and handled separately; it is skipped here. A malformed
// action value is logged and skipped rather than failing the computation.
func ApplyToPrice(actions []Action, price int64) int64 {
	final := price
	for _, a := range actions {
		switch a.Type {
		case ActionDiscountPercent:
			pct, err := strconv.ParseInt(a.Value, 10, 64)
			if err != nil || pct < 0 || pct > 100 {
				log.Printf("[Promo] Skipping action %s: bad percent %q", a.ID, a.Value)
				continue
			}
			final = final * (100 - pct) / 100
		case ActionDiscountAmount:
			amount, err := strconv.ParseInt(a.Value, 10, 64)
			if err != nil || amount < 0 {
				log.Printf("[Promo] Skipping action %s: bad amount %q", a.ID, a.Value)
				continue
			}
			final -= amount
		case ActionFixedPrice:
			fixed, err := strconv.ParseInt(a.Value, 10, 64)
			if err != nil || fixed < 0 {
				log.Printf("[Promo] Skipping action %s: bad fixed price %q", a.ID, a.Value)
				continue
			}
			final = fixed
		case ActionFreeShipping:
			// order-level, see GrantsFreeShipping
		}
		if final < 0 {
			final = 0
		}
	}
	return final
}

// GrantsFreeShipping reports whether any action zeroes the order's
// shipping cost.
func GrantsFreeShipping(actions []Action) bool {
	for _, a := range actions {
		if a.Type == ActionFreeShipping {
			return true
		}
	}
	return false
}

// ValidateActionValue checks at authoring time that a value parses for
// its action type.
func ValidateActionValue(actionType ActionType, value string) error {
	switch actionType {
	case ActionDiscountPercent:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil || v < 0 || v > 100 {
			return fmt.Errorf("%w: %q is not a percent in [0,100]", ErrInvalidActionValue, value)
		}
		return nil
	case ActionDiscountAmount, ActionFixedPrice:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("%w: %q is not a non-negative amount", ErrInvalidActionValue, value)
		}
		return nil
	case ActionFreeShipping:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownActionType, actionType)
	}
}
