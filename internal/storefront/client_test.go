package storefront

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizan-mobiles/storefront-go/internal/domain/cart"
	mockauth "github.com/mizan-mobiles/storefront-go/internal/mocks/auth"
	mockstate "github.com/mizan-mobiles/storefront-go/internal/mocks/state"
	"github.com/mizan-mobiles/storefront-go/internal/ports"
	"github.com/mizan-mobiles/storefront-go/internal/session"
	"github.com/mizan-mobiles/storefront-go/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestClient(t *testing.T) (*Client, *mockstate.MemoryStateStore) {
	t.Helper()
	state := mockstate.NewMemoryStateStore()
	store := session.NewStore(session.StoreOptions{
		Backend: mockauth.NewMockAuthBackend(),
		State:   state,
		Tokens:  &mockauth.FixedTokenInspector{Expiry: time.Now().Add(time.Hour)},
	})
	client := NewClient(ClientOptions{
		Session: store,
		State:   state,
		Pricing: cart.DefaultPricing(),
	})
	t.Cleanup(client.Close)
	return client, state
}

func TestAddItemWritesThroughToStorage(t *testing.T) {
	client, state := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.AddItem(ctx, testutil.NewLine("p1").WithQuantity(2).Build()))

	data, err := state.Get(ctx, StateKeyCart)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var snap cart.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "p1", snap.Lines[0].ProductID)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
}

func TestCartMutationsPersistEveryTime(t *testing.T) {
	client, state := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.AddItem(ctx, testutil.NewLine("p1").Build()))
	require.NoError(t, client.AddItem(ctx, testutil.NewLine("p2").Build()))
	client.SetQuantity(ctx, "p1", "", 5)
	client.RemoveItem(ctx, "p2", "")

	var snap cart.Snapshot
	data, err := state.Get(ctx, StateKeyCart)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 5, snap.Lines[0].Quantity)
}

func TestStorageFailureDoesNotFailCartMutation(t *testing.T) {
	client, state := newTestClient(t)
	state.SaveErr = assert.AnError

	err := client.AddItem(context.Background(), testutil.NewLine("p1").Build())

	require.NoError(t, err)
	assert.Len(t, client.CartLines(), 1)
}

func TestRehydrateRestoresCartAndWishlist(t *testing.T) {
	first, state := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, first.AddItem(ctx, testutil.NewLine("p1").WithQuantity(3).Build()))
	first.AddToWishlist(ctx, testutil.WishlistEntry("w1"))

	second := NewClient(ClientOptions{
		Session: session.NewStore(session.StoreOptions{
			Backend: mockauth.NewMockAuthBackend(),
			State:   state,
			Tokens:  &mockauth.FixedTokenInspector{Expiry: time.Now().Add(time.Hour)},
		}),
		State:   state,
		Pricing: cart.DefaultPricing(),
	})
	t.Cleanup(second.Close)
	second.Rehydrate(ctx)

	lines := second.CartLines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, second.InWishlist("w1"))
}

func TestRehydrateDiscardsCorruptedCart(t *testing.T) {
	client, state := newTestClient(t)
	state.Put(StateKeyCart, []byte(`{"lines": [tr`))

	client.Rehydrate(context.Background())

	assert.Empty(t, client.CartLines())
	assert.False(t, state.Has(StateKeyCart), "corrupted entry must be discarded")
}

func TestRehydrateMintsDeviceIDOnce(t *testing.T) {
	client, state := newTestClient(t)
	ctx := context.Background()

	client.Rehydrate(ctx)
	id := client.DeviceID()
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	second := NewClient(ClientOptions{
		Session: session.NewStore(session.StoreOptions{
			Backend: mockauth.NewMockAuthBackend(),
			State:   state,
			Tokens:  &mockauth.FixedTokenInspector{Expiry: time.Now().Add(time.Hour)},
		}),
		State:   state,
		Pricing: cart.DefaultPricing(),
	})
	t.Cleanup(second.Close)
	second.Rehydrate(ctx)

	assert.Equal(t, id, second.DeviceID())
}

func TestRehydrateReplacesInvalidDeviceID(t *testing.T) {
	client, state := newTestClient(t)
	state.Put(StateKeyDevice, []byte("not-a-uuid"))

	client.Rehydrate(context.Background())

	id := client.DeviceID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", id)
}

func TestLogoutKeepsCartAndWishlist(t *testing.T) {
	client, state := newTestClient(t)
	ctx := context.Background()

	_, err := client.Login(ctx, ports.Credentials{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, client.AddItem(ctx, testutil.NewLine("p1").Build()))
	client.AddToWishlist(ctx, testutil.WishlistEntry("w1"))

	client.Logout(ctx)

	assert.False(t, client.Session().Authenticated())
	assert.Len(t, client.CartLines(), 1)
	assert.True(t, client.InWishlist("w1"))
	assert.False(t, state.Has(session.StateKey))
	assert.True(t, state.Has(StateKeyCart))
	assert.True(t, state.Has(StateKeyWishlist))
}

func TestPromoFlowThroughFacade(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.AddItem(ctx, testutil.NewLine("p1").WithPrice(100).Build()))
	require.NoError(t, client.ApplyPromoCode(ctx, "SAVE20", dec("20")))

	totals := client.CartTotals()
	assert.True(t, totals.Subtotal.Equal(dec("80")), "got %s", totals.Subtotal)

	client.RemovePromoCode(ctx)
	assert.True(t, client.CartTotals().Subtotal.Equal(dec("100")))
}

func TestWishlistToggleThroughFacade(t *testing.T) {
	client, state := newTestClient(t)
	ctx := context.Background()

	client.ToggleWishlist(ctx, testutil.WishlistEntry("w1"))
	assert.True(t, client.InWishlist("w1"))

	client.ToggleWishlist(ctx, testutil.WishlistEntry("w1"))
	assert.False(t, client.InWishlist("w1"))

	// The empty wishlist is still persisted so the removal survives restart.
	assert.True(t, state.Has(StateKeyWishlist))
	assert.Empty(t, client.WishlistEntries())
}
