package config

import "github.com/shopspring/decimal"

// PricingConfig contains the cart pricing constants. All derived cart
// selectors consume this single config; the free-shipping threshold and tax
// rate are defined exactly once.
type PricingConfig struct {
	// TaxRate is the fractional tax rate applied to the cart subtotal.
	TaxRate decimal.Decimal `env:"TAX_RATE" envDefault:"0.08"`

	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold decimal.Decimal `env:"FREE_SHIPPING_THRESHOLD" envDefault:"200"`

	// FlatShippingRate is charged when the subtotal does not exceed the threshold.
	FlatShippingRate decimal.Decimal `env:"FLAT_SHIPPING_RATE" envDefault:"15"`
}

// Sanitize applies guardrails to pricing configuration. Negative values are
// clamped to the defaults rather than letting a bad env var produce negative
// charges.
func (c *PricingConfig) Sanitize() {
	if c.TaxRate.IsNegative() {
		c.TaxRate = decimal.NewFromFloat(0.08)
	}
	if c.FreeShippingThreshold.IsNegative() {
		c.FreeShippingThreshold = decimal.NewFromInt(200)
	}
	if c.FlatShippingRate.IsNegative() {
		c.FlatShippingRate = decimal.NewFromInt(15)
	}
}
