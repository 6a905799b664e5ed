package storefront

// Package storefront composes the session store, cart, and wishlist behind
// one client facade with write-through persistence. The client is an
// explicit object constructed once and injected into callers; there is no
// package-level singleton, so tests get fresh isolated state.

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mizan-mobiles/storefront-go/internal/domain/cart"
	domainsession "github.com/mizan-mobiles/storefront-go/internal/domain/session"
	"github.com/mizan-mobiles/storefront-go/internal/domain/wishlist"
	"github.com/mizan-mobiles/storefront-go/internal/ports"
	"github.com/mizan-mobiles/storefront-go/internal/session"
)

// Durable storage keys. Each is independently readable; absence of any key
// is a valid empty state.
const (
	StateKeyCart     = "cart"
	StateKeyWishlist = "wishlist"
	StateKeyDevice   = "device"
)

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	Session *session.Store
	State   ports.StateStore
	Pricing cart.PricingConfig
	Logger  *slog.Logger
}

// Client is the storefront client core: session lifecycle plus cart and
// wishlist aggregates with write-through persistence.
type Client struct {
	session *session.Store
	state   ports.StateStore
	logger  *slog.Logger

	mu       sync.Mutex
	cart     *cart.Cart
	wishlist *wishlist.Wishlist
	deviceID string
}

// NewClient constructs a Client. Call Rehydrate before first use to load
// persisted state.
func NewClient(opts ClientOptions) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		session:  opts.Session,
		state:    opts.State,
		logger:   logger,
		cart:     cart.New(opts.Pricing),
		wishlist: wishlist.New(),
	}
}

// Rehydrate loads session, cart, and wishlist from durable storage.
// Corrupted or missing entries degrade to empty defaults; rehydration never
// fails startup. The state reads are independent and fetched concurrently.
func (c *Client) Rehydrate(ctx context.Context) {
	if err := c.session.Rehydrate(ctx); err != nil {
		c.logger.WarnContext(ctx, "session rehydration failed", "error", err)
	}

	var deviceRaw, cartRaw, wishRaw []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { deviceRaw, err = c.state.Get(gctx, StateKeyDevice); return })
	g.Go(func() (err error) { cartRaw, err = c.state.Get(gctx, StateKeyCart); return })
	g.Go(func() (err error) { wishRaw, err = c.state.Get(gctx, StateKeyWishlist); return })
	if err := g.Wait(); err != nil {
		c.logger.WarnContext(ctx, "read state failed", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.restoreDeviceLocked(ctx, deviceRaw)

	var cartSnap cart.Snapshot
	if c.decodeSnapshotLocked(ctx, StateKeyCart, cartRaw, &cartSnap) {
		c.cart.Restore(cartSnap)
	}

	var wishSnap wishlist.Snapshot
	if c.decodeSnapshotLocked(ctx, StateKeyWishlist, wishRaw, &wishSnap) {
		c.wishlist.Restore(wishSnap)
	}
}

// Close stops the session's expiry watcher.
func (c *Client) Close() {
	c.session.Close()
}

// DeviceID returns the stable anonymous device identifier used to correlate
// guest activity.
func (c *Client) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}

// ---- Session surface ----

// Login authenticates and starts a session.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (domainsession.Session, error) {
	return c.session.Login(ctx, creds)
}

// Signup registers an account; success implies an authenticated session.
func (c *Client) Signup(ctx context.Context, in ports.SignupInput) (domainsession.Session, error) {
	return c.session.Signup(ctx, in)
}

// Logout ends the session. Cart and wishlist survive logout; they belong to
// the device, not the session.
func (c *Client) Logout(ctx context.Context) {
	c.session.Logout(ctx)
}

// UpdateProfile applies a partial profile update to the current session.
func (c *Client) UpdateProfile(ctx context.Context, patch ports.ProfilePatch) (domainsession.Session, error) {
	return c.session.UpdateProfile(ctx, patch)
}

// Session returns a snapshot of the current session.
func (c *Client) Session() domainsession.Session {
	return c.session.Current()
}

// ---- Cart surface ----

// AddItem adds a line to the cart (or merges quantity into an existing line
// with the same product/offer key) and persists.
func (c *Client) AddItem(ctx context.Context, in cart.AddItemInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.cart.AddItem(in); err != nil {
		return err
	}
	c.persistCartLocked(ctx)
	return nil
}

// RemoveItem removes the line with the exact product/offer key and persists.
func (c *Client) RemoveItem(ctx context.Context, productID, offerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.RemoveItem(productID, offerID)
	c.persistCartLocked(ctx)
}

// SetQuantity sets a line's quantity (zero or less removes it) and persists.
func (c *Client) SetQuantity(ctx context.Context, productID, offerID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.SetQuantity(productID, offerID, quantity)
	c.persistCartLocked(ctx)
}

// ClearCart empties the cart and persists.
func (c *Client) ClearCart(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.Clear()
	c.persistCartLocked(ctx)
}

// ApplyPromoCode discounts promo-eligible lines and persists.
func (c *Client) ApplyPromoCode(ctx context.Context, code string, percentage decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.cart.ApplyPromoCode(code, percentage); err != nil {
		return err
	}
	c.persistCartLocked(ctx)
	return nil
}

// RemovePromoCode restores original prices on promo-bearing lines and persists.
func (c *Client) RemovePromoCode(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.RemovePromoCode()
	c.persistCartLocked(ctx)
}

// CartLines returns the cart lines in insertion order.
func (c *Client) CartLines() []cart.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Lines()
}

// CartTotals derives the cart's monetary summary.
func (c *Client) CartTotals() cart.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Totals()
}

// ---- Wishlist surface ----

// AddToWishlist adds an entry (no-op on duplicate product) and persists.
func (c *Client) AddToWishlist(ctx context.Context, e wishlist.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wishlist.Add(e)
	c.persistWishlistLocked(ctx)
}

// RemoveFromWishlist removes the entry for the product and persists.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wishlist.Remove(productID)
	c.persistWishlistLocked(ctx)
}

// ToggleWishlist toggles membership for the entry's product and persists.
func (c *Client) ToggleWishlist(ctx context.Context, e wishlist.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wishlist.Toggle(e)
	c.persistWishlistLocked(ctx)
}

// InWishlist is a pure membership test.
func (c *Client) InWishlist(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wishlist.Contains(productID)
}

// WishlistEntries returns the wishlist entries in insertion order.
func (c *Client) WishlistEntries() []wishlist.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wishlist.Entries()
}

// ---- Persistence bridge ----

// persistCartLocked writes the cart through to durable storage. Write
// failures are logged and swallowed: the in-memory mutation must not fail
// because storage is unavailable.
func (c *Client) persistCartLocked(ctx context.Context) {
	c.saveSnapshotLocked(ctx, StateKeyCart, c.cart.Snapshot())
}

func (c *Client) persistWishlistLocked(ctx context.Context) {
	c.saveSnapshotLocked(ctx, StateKeyWishlist, c.wishlist.Snapshot())
}

func (c *Client) saveSnapshotLocked(ctx context.Context, key string, snap any) {
	data, err := json.Marshal(snap)
	if err != nil {
		c.logger.ErrorContext(ctx, "marshal state failed", "key", key, "error", err)
		return
	}
	if err := c.state.Save(ctx, key, data); err != nil {
		c.logger.WarnContext(ctx, "persist state failed", "key", key, "error", err)
	}
}

// decodeSnapshotLocked decodes a stored snapshot. Missing or corrupted
// entries report false; a corrupted entry is discarded so it does not poison
// the next startup.
func (c *Client) decodeSnapshotLocked(ctx context.Context, key string, data []byte, out any) bool {
	if len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.WarnContext(ctx, "state corrupted, discarding", "key", key, "error", err)
		if delErr := c.state.Delete(ctx, key); delErr != nil {
			c.logger.WarnContext(ctx, "discard corrupted state failed", "key", key, "error", delErr)
		}
		return false
	}
	return true
}

// restoreDeviceLocked adopts the persisted device id or mints a fresh one.
func (c *Client) restoreDeviceLocked(ctx context.Context, data []byte) {
	if len(data) > 0 {
		if id, err := uuid.ParseBytes(data); err == nil {
			c.deviceID = id.String()
			return
		}
	}
	c.deviceID = uuid.NewString()
	if saveErr := c.state.Save(ctx, StateKeyDevice, []byte(c.deviceID)); saveErr != nil {
		c.logger.WarnContext(ctx, "persist device id failed", "error", saveErr)
	}
}
