package cart

// Package cart contains the cart aggregate and its pricing model.
// It is pure and free of transport/adapter concerns; callers are responsible
// for persisting snapshots after mutations.

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppliedOffer identifies a special offer attached to a line at add time.
// A line carrying an offer already represents a negotiated discount and is
// immune to promo codes.
type AppliedOffer struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Key is the identity of a cart line. Two lines with the same product but
// different offers (or no offer) are distinct entries; the same product with
// the same offer merges quantity.
type Key struct {
	ProductID string
	OfferID   string
}

// Line is a single cart entry. UnitPrice is the effective (post-discount)
// price; OriginalUnitPrice is the pre-discount price and equals UnitPrice
// when no discount applies.
type Line struct {
	ProductID         string          `json:"productId"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	OriginalUnitPrice decimal.Decimal `json:"originalUnitPrice"`
	Image             string          `json:"image,omitempty"`
	Quantity          int             `json:"quantity"`
	Offer             *AppliedOffer   `json:"appliedOffer,omitempty"`
	PromoCode         string          `json:"promoCode,omitempty"`
	AddedAt           time.Time       `json:"addedAt"`
}

// Key returns the line's identity key.
func (l Line) Key() Key {
	k := Key{ProductID: l.ProductID}
	if l.Offer != nil {
		k.OfferID = l.Offer.ID
	}
	return k
}

// Discounted reports whether the line's effective price is below its
// original price.
func (l Line) Discounted() bool {
	return l.OriginalUnitPrice.GreaterThan(l.UnitPrice)
}

// LineTotal returns UnitPrice multiplied by Quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PricingConfig holds the business constants consumed by Totals.
// All derived selectors read from one config so the free-shipping threshold
// and tax rate cannot drift between call sites.
type PricingConfig struct {
	// TaxRate is the fractional tax rate applied to the subtotal (0.08 = 8%).
	TaxRate decimal.Decimal `json:"taxRate"`
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	// FlatShippingRate is charged when the subtotal does not exceed the threshold.
	FlatShippingRate decimal.Decimal `json:"flatShippingRate"`
}

// DefaultPricing returns the storefront's standard pricing constants.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		TaxRate:               decimal.NewFromFloat(0.08),
		FreeShippingThreshold: decimal.NewFromInt(200),
		FlatShippingRate:      decimal.NewFromInt(15),
	}
}

// Totals is the set of derived cart values. Totals are never stored or
// mutated directly; they are recomputed from the lines on every read.
type Totals struct {
	ItemCount    int             `json:"itemCount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	TotalSavings decimal.Decimal `json:"totalSavings"`
}

// Snapshot is the serializable view of the cart used by the persistence
// bridge. Derived totals are deliberately absent.
type Snapshot struct {
	Lines []Line `json:"lines"`
}
