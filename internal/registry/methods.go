package registry

import "errors"

var (
	ErrUnknownShippingMethod = errors.New("unknown shipping method")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
)

// ShippingMethod is a delivery option with its base cost
type ShippingMethod struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BaseCost int64  `json:"base_cost"`
}

// PaymentMethod is a settlement option. Online methods can be targeted
// by payment-channel promotion rules.
type PaymentMethod struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Online bool   `json:"online"`
}

// Registry holds the fixed shipping and payment method catalogs. The
// sets are small and change with releases, not at runtime.
type Registry struct {
	shipping []ShippingMethod
	payment  []PaymentMethod
}

// NewRegistry creates a registry with the default method catalogs
func NewRegistry() *Registry {
	return &Registry{
		shipping: []ShippingMethod{
			{ID: "standard", Name: "Standard Delivery", BaseCost: 30000},
			{ID: "express", Name: "Express Delivery", BaseCost: 60000},
			{ID: "pickup", Name: "Store Pickup", BaseCost: 0},
		},
		payment: []PaymentMethod{
			{ID: "cod", Name: "Cash on Delivery", Online: false},
			{ID: "bank_transfer", Name: "Bank Transfer", Online: true},
			{ID: "credit_card", Name: "Credit Card", Online: true},
			{ID: "e_wallet", Name: "E-Wallet", Online: true},
		},
	}
}

// ShippingMethods returns all delivery options
func (r *Registry) ShippingMethods() []ShippingMethod {
	out := make([]ShippingMethod, len(r.shipping))
	copy(out, r.shipping)
	return out
}

// PaymentMethods returns all settlement options
func (r *Registry) PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(r.payment))
	copy(out, r.payment)
	return out
}

// ShippingMethod looks up a delivery option by ID
func (r *Registry) ShippingMethod(id string) (ShippingMethod, error) {
	for _, m := range r.shipping {
		if m.ID == id {
			return m, nil
		}
	}
	return ShippingMethod{}, ErrUnknownShippingMethod
}

// PaymentMethod looks up a settlement option by ID
func (r *Registry) PaymentMethod(id string) (PaymentMethod, error) {
	for _, m := range r.payment {
		if m.ID == id {
			return m, nil
		}
	}
	return PaymentMethod{}, ErrUnknownPaymentMethod
}
