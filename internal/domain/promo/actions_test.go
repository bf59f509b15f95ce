package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyToPrice_PercentDiscount(t *testing.T) {
	actions := []Action{{ID: "a1", Type: ActionDiscountPercent, Value: "20"}}
	assert.Equal(t, int64(400000), ApplyToPrice(actions, 500000))
}

func TestApplyToPrice_PercentTruncatesTowardZero(t *testing.T) {
	// 15% off 99999: 99999 * 85 / 100 = 84999 (integer division)
	actions := []Action{{ID: "a1", Type: ActionDiscountPercent, Value: "15"}}
	assert.Equal(t, int64(84999), ApplyToPrice(actions, 99999))
}

func TestApplyToPrice_AmountDiscount(t *testing.T) {
	actions := []Action{{ID: "a1", Type: ActionDiscountAmount, Value: "30000"}}
	assert.Equal(t, int64(70000), ApplyToPrice(actions, 100000))
}

func TestApplyToPrice_FixedPrice(t *testing.T) {
	actions := []Action{{ID: "a1", Type: ActionFixedPrice, Value: "50000"}}
	assert.Equal(t, int64(50000), ApplyToPrice(actions, 180000))
	// Fixed price applies even when above the current price
	assert.Equal(t, int64(50000), ApplyToPrice(actions, 20000))
}

func TestApplyToPrice_ActionsCompoundInOrder(t *testing.T) {
	// 10% off 100000 = 90000, then minus 5000 = 85000
	actions := []Action{
		{ID: "a1", Type: ActionDiscountPercent, Value: "10"},
		{ID: "a2", Type: ActionDiscountAmount, Value: "5000"},
	}
	assert.Equal(t, int64(85000), ApplyToPrice(actions, 100000))

	// Reversed order gives a different result: 100000-5000=95000, then 10% off = 85500
	reversed := []Action{actions[1], actions[0]}
	assert.Equal(t, int64(85500), ApplyToPrice(reversed, 100000))
}

func TestApplyToPrice_NeverBelowZero(t *testing.T) {
	actions := []Action{{ID: "a1", Type: ActionDiscountAmount, Value: "50000"}}
	assert.Equal(t, int64(0), ApplyToPrice(actions, 30000))

	// Clamping happens per step, not only at the end
	chained := []Action{
		{ID: "a1", Type: ActionDiscountAmount, Value: "50000"},
		{ID: "a2", Type: ActionDiscountPercent, Value: "50"},
	}
	assert.Equal(t, int64(0), ApplyToPrice(chained, 30000))
}

func TestApplyToPrice_FreeShippingDoesNotTouchPrice(t *testing.T) {
	actions := []Action{{ID: "a1", Type: ActionFreeShipping, Value: "true"}}
	assert.Equal(t, int64(120000), ApplyToPrice(actions, 120000))
}

func TestApplyToPrice_MalformedActionSkipped(t *testing.T) {
	actions := []Action{
		{ID: "a1", Type: ActionDiscountPercent, Value: "150"},
		{ID: "a2", Type: ActionDiscountAmount, Value: "-10"},
		{ID: "a3", Type: ActionFixedPrice, Value: "cheap"},
		{ID: "a4", Type: ActionDiscountPercent, Value: "10"},
	}
	// Only the last, well-formed action applies
	assert.Equal(t, int64(90000), ApplyToPrice(actions, 100000))
}

func TestApplyToPrice_NoActions(t *testing.T) {
	assert.Equal(t, int64(75000), ApplyToPrice(nil, 75000))
}

func TestGrantsFreeShipping(t *testing.T) {
	assert.False(t, GrantsFreeShipping(nil))
	assert.False(t, GrantsFreeShipping([]Action{{ID: "a1", Type: ActionDiscountPercent, Value: "10"}}))
	assert.True(t, GrantsFreeShipping([]Action{
		{ID: "a1", Type: ActionDiscountPercent, Value: "10"},
		{ID: "a2", Type: ActionFreeShipping},
	}))
}

func TestValidateActionValue(t *testing.T) {
	assert.NoError(t, ValidateActionValue(ActionDiscountPercent, "0"))
	assert.NoError(t, ValidateActionValue(ActionDiscountPercent, "100"))
	assert.NoError(t, ValidateActionValue(ActionDiscountAmount, "5000"))
	assert.NoError(t, ValidateActionValue(ActionFixedPrice, "99000"))
	assert.NoError(t, ValidateActionValue(ActionFreeShipping, ""))

	assert.ErrorIs(t, ValidateActionValue(ActionDiscountPercent, "101"), ErrInvalidActionValue)
	assert.ErrorIs(t, ValidateActionValue(ActionDiscountPercent, "-1"), ErrInvalidActionValue)
	assert.ErrorIs(t, ValidateActionValue(ActionDiscountAmount, "lots"), ErrInvalidActionValue)
	assert.ErrorIs(t, ValidateActionValue(ActionFixedPrice, "-99"), ErrInvalidActionValue)
	assert.ErrorIs(t, ValidateActionValue(ActionType("GIFT_WRAP"), "x"), ErrUnknownActionType)
}
