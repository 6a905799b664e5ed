package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mizan-mobiles/storefront-go/config"
	"github.com/mizan-mobiles/storefront-go/internal/adapters/httpapi"
	"github.com/mizan-mobiles/storefront-go/internal/adapters/jwtclaims"
	"github.com/mizan-mobiles/storefront-go/internal/domain/cart"
	"github.com/mizan-mobiles/storefront-go/internal/gateway"
	"github.com/mizan-mobiles/storefront-go/internal/session"
	"github.com/mizan-mobiles/storefront-go/internal/storefront"
)

// sessionTokens late-binds the session store into the request transport.
// The transport is needed to build the auth backend, and the backend is
// needed to build the store; this indirection breaks the cycle.
type sessionTokens struct {
	store *session.Store
}

func (s *sessionTokens) AccessToken() string {
	if s.store == nil {
		return ""
	}
	return s.store.AccessToken()
}

func (s *sessionTokens) Refresh(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", nil
	}
	return s.store.Refresh(ctx)
}

// ClientDeps carries the wired client plus the pieces shutdown needs.
type ClientDeps struct {
	Client *storefront.Client
	Store  *session.Store
	State  *StateStoreResult
}

// Close releases all resources.
func (d *ClientDeps) Close() error {
	d.Client.Close()
	return d.State.Close()
}

// NewClient wires the full storefront client: state store, authenticated
// transport, API backend, session store, and the client facade. The caller
// owns the returned deps and must Close them on shutdown.
func NewClient(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*ClientDeps, error) {
	// The device id doubles as the Postgres state owner, so it has to exist
	// before the state store. A throwaway file read would race the client's
	// own rehydration; instead the facade mints it during Rehydrate and the
	// pg owner falls back to a fixed scope for single-tenant embedding.
	state, err := NewStateStore(ctx, &cfg.Storage, "default", logger)
	if err != nil {
		return nil, err
	}

	tokens := &sessionTokens{}
	var sf *storefront.Client
	transport := gateway.NewTransport(gateway.TransportOptions{
		Tokens:      tokens,
		RefreshPath: cfg.API.RefreshPath,
		DeviceID: func() string {
			if sf == nil {
				return ""
			}
			return sf.DeviceID()
		},
		Logger: logger,
	})
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.API.Timeout,
	}
	apiClient := gateway.NewClient(httpClient, cfg.API.BaseURL)
	backend := httpapi.New(apiClient)

	store := session.NewStore(session.StoreOptions{
		Backend:       backend,
		State:         state.Store,
		Tokens:        jwtclaims.New(),
		Logger:        logger,
		RefreshMargin: cfg.Session.RefreshMargin,
	})
	tokens.store = store

	sf = storefront.NewClient(storefront.ClientOptions{
		Session: store,
		State:   state.Store,
		Pricing: cart.PricingConfig{
			TaxRate:               cfg.Pricing.TaxRate,
			FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
			FlatShippingRate:      cfg.Pricing.FlatShippingRate,
		},
		Logger: logger,
	})
	sf.Rehydrate(ctx)

	return &ClientDeps{
		Client: sf,
		Store:  store,
		State:  state,
	}, nil
}
