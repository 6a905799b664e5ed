package cart

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/mizan-mobiles/storefront-go/internal/errors"
)

// Cart is the cart aggregate: an ordered sequence of lines plus the pricing
// constants used to derive totals. Line order is insertion order for display
// and carries no correctness weight.
//
// Cart has a single logical writer (the UI goroutine); it performs no
// locking of its own.
type Cart struct {
	lines   []Line
	pricing PricingConfig
	now     func() time.Time
}

// New creates an empty cart with the given pricing constants.
func New(pricing PricingConfig) *Cart {
	return &Cart{
		pricing: pricing,
		now:     time.Now,
	}
}

// NewWithClock creates an empty cart with an injectable clock for tests.
func NewWithClock(pricing PricingConfig, now func() time.Time) *Cart {
	c := New(pricing)
	if now != nil {
		c.now = now
	}
	return c
}

// AddItemInput carries the fields for a new cart line.
type AddItemInput struct {
	ProductID         string
	Name              string
	UnitPrice         decimal.Decimal
	OriginalUnitPrice decimal.Decimal
	Image             string
	Quantity          int
	Offer             *AppliedOffer
}

// AddItem appends a new line or, when a line with the exact same
// (product, offer) key already exists, increments that line's quantity.
// The existing line's price and metadata are kept as-is: first-add price
// wins for a given key.
//
// A zero quantity means one; a negative quantity is a validation error.
func (c *Cart) AddItem(in AddItemInput) error {
	if in.ProductID == "" {
		return apperrors.ValidationField("productId", "product ID is required")
	}
	if in.Quantity < 0 {
		return apperrors.ValidationField("quantity", "quantity cannot be negative")
	}
	if in.UnitPrice.IsNegative() {
		return apperrors.ValidationField("unitPrice", "unit price cannot be negative")
	}

	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}

	key := Key{ProductID: in.ProductID}
	if in.Offer != nil {
		key.OfferID = in.Offer.ID
	}
	if i := c.indexOf(key); i >= 0 {
		c.lines[i].Quantity += qty
		return nil
	}

	original := in.OriginalUnitPrice
	if original.IsZero() || original.LessThan(in.UnitPrice) {
		original = in.UnitPrice
	}

	var offer *AppliedOffer
	if in.Offer != nil {
		o := *in.Offer
		offer = &o
	}

	c.lines = append(c.lines, Line{
		ProductID:         in.ProductID,
		Name:              in.Name,
		UnitPrice:         in.UnitPrice,
		OriginalUnitPrice: original,
		Image:             in.Image,
		Quantity:          qty,
		Offer:             offer,
		AddedAt:           c.now(),
	})
	return nil
}

// RemoveItem deletes the line matching the exact (product, offer) key.
// Removing an absent line is a silent no-op; the UI may race with storage.
func (c *Cart) RemoveItem(productID, offerID string) {
	i := c.indexOf(Key{ProductID: productID, OfferID: offerID})
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// SetQuantity sets a line's quantity to an absolute value. A quantity of
// zero or less removes the line entirely; a line is never retained at zero.
// Setting quantity on an absent line is a silent no-op.
func (c *Cart) SetQuantity(productID, offerID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID, offerID)
		return
	}
	if i := c.indexOf(Key{ProductID: productID, OfferID: offerID}); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// ApplyPromoCode discounts every line that does not carry a special offer by
// the given percentage. The discount is always recomputed from the line's
// original price: reapplying with a different percentage replaces the
// previous discount, it never compounds.
func (c *Cart) ApplyPromoCode(code string, percentage decimal.Decimal) error {
	if code == "" {
		return apperrors.ValidationField("code", "promo code is required")
	}
	if !percentage.IsPositive() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return apperrors.ValidationField("percentage", "discount percentage must be between 0 and 100")
	}

	factor := decimal.NewFromInt(1).Sub(percentage.Div(decimal.NewFromInt(100)))
	for i := range c.lines {
		if c.lines[i].Offer != nil {
			continue
		}
		c.lines[i].UnitPrice = c.lines[i].OriginalUnitPrice.Mul(factor).Round(2)
		c.lines[i].PromoCode = code
	}
	return nil
}

// RemovePromoCode restores the original price on every promo-bearing line.
// Offer-bearing lines are untouched.
func (c *Cart) RemovePromoCode() {
	for i := range c.lines {
		if c.lines[i].Offer != nil || c.lines[i].PromoCode == "" {
			continue
		}
		c.lines[i].UnitPrice = c.lines[i].OriginalUnitPrice
		c.lines[i].PromoCode = ""
	}
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int { return len(c.lines) }

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Totals derives the cart's monetary summary from its lines. Shipping is
// free strictly above the threshold; at or below it the flat rate applies.
func (c *Cart) Totals() Totals {
	t := Totals{
		Subtotal:     decimal.Zero,
		Shipping:     decimal.Zero,
		Tax:          decimal.Zero,
		Total:        decimal.Zero,
		TotalSavings: decimal.Zero,
	}

	for _, l := range c.lines {
		t.ItemCount += l.Quantity
		t.Subtotal = t.Subtotal.Add(l.LineTotal())
		if l.Discounted() {
			saving := l.OriginalUnitPrice.Sub(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
			t.TotalSavings = t.TotalSavings.Add(saving)
		}
	}

	if len(c.lines) > 0 && !t.Subtotal.GreaterThan(c.pricing.FreeShippingThreshold) {
		t.Shipping = c.pricing.FlatShippingRate
	}
	t.Tax = t.Subtotal.Mul(c.pricing.TaxRate).Round(2)
	t.Total = t.Subtotal.Add(t.Shipping).Add(t.Tax)
	return t
}

// Snapshot returns the serializable view of the cart.
func (c *Cart) Snapshot() Snapshot {
	return Snapshot{Lines: c.Lines()}
}

// Restore replaces the cart contents from a snapshot, dropping structurally
// invalid lines (missing product ID or non-positive quantity) so a corrupted
// stored cart degrades instead of violating invariants.
func (c *Cart) Restore(snap Snapshot) {
	lines := make([]Line, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		if l.OriginalUnitPrice.LessThan(l.UnitPrice) {
			l.OriginalUnitPrice = l.UnitPrice
		}
		lines = append(lines, l)
	}
	c.lines = lines
}

func (c *Cart) indexOf(key Key) int {
	for i, l := range c.lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}
