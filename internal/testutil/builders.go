// Package testutil provides testing utilities and builders for the
// storefront client core.
package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mizan-mobiles/storefront-go/internal/domain/cart"
	domainsession "github.com/mizan-mobiles/storefront-go/internal/domain/session"
	"github.com/mizan-mobiles/storefront-go/internal/domain/wishlist"
)

// LineBuilder provides a fluent interface for building cart add inputs.
type LineBuilder struct {
	in cart.AddItemInput
}

// NewLine creates a LineBuilder with sensible defaults.
func NewLine(productID string) *LineBuilder {
	return &LineBuilder{
		in: cart.AddItemInput{
			ProductID: productID,
			Name:      "Phone " + productID,
			UnitPrice: decimal.NewFromInt(100),
			Quantity:  1,
		},
	}
}

// WithPrice sets the unit price.
func (b *LineBuilder) WithPrice(price float64) *LineBuilder {
	b.in.UnitPrice = decimal.NewFromFloat(price)
	return b
}

// WithOriginalPrice sets the pre-discount unit price.
func (b *LineBuilder) WithOriginalPrice(price float64) *LineBuilder {
	b.in.OriginalUnitPrice = decimal.NewFromFloat(price)
	return b
}

// WithQuantity sets the quantity.
func (b *LineBuilder) WithQuantity(qty int) *LineBuilder {
	b.in.Quantity = qty
	return b
}

// WithOffer attaches a special offer.
func (b *LineBuilder) WithOffer(id, title string) *LineBuilder {
	b.in.Offer = &cart.AppliedOffer{ID: id, Title: title}
	return b
}

// WithName sets the display name.
func (b *LineBuilder) WithName(name string) *LineBuilder {
	b.in.Name = name
	return b
}

// Build returns the constructed input.
func (b *LineBuilder) Build() cart.AddItemInput {
	return b.in
}

// WishlistEntry builds a wishlist entry with defaults.
func WishlistEntry(productID string) wishlist.Entry {
	return wishlist.Entry{
		ProductID: productID,
		Name:      "Phone " + productID,
		Price:     decimal.NewFromInt(100),
	}
}

// UserProfile builds a user profile with defaults.
func UserProfile(id string) domainsession.UserProfile {
	return domainsession.UserProfile{
		ID:       id,
		Email:    id + "@example.com",
		FullName: "Test User " + id,
		Phone:    "+10000000000",
		Role:     domainsession.RoleUser,
	}
}

// Session builds an authenticated session with defaults.
func Session(accessToken, refreshToken string) domainsession.Session {
	user := UserProfile("user-1")
	sess := domainsession.Session{User: &user}
	sess.Token.AccessToken = accessToken
	sess.Token.RefreshToken = refreshToken
	sess.Token.Expiry = time.Now().Add(time.Hour)
	return sess
}
