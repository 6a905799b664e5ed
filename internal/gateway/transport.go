package gateway

// Package gateway wraps outbound HTTP calls to the storefront API: it
// attaches the bearer credential, recovers from authentication failures via
// a shared refresh, and normalizes the backend's duck-typed response
// envelopes at one boundary.

import (
	"context"
	"io"
	"log/slog"
	"net/http"
)

// TokenSource supplies the current access token and the refresh transition.
// *session.Store satisfies it.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) (string, error)
}

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	// DeviceIDHeader correlates guest carts across unauthenticated requests.
	DeviceIDHeader = "X-Device-Id"
)

// TransportOptions groups dependencies for Transport.
type TransportOptions struct {
	// Base is the underlying RoundTripper; http.DefaultTransport when nil.
	Base http.RoundTripper
	// Tokens supplies credentials and the refresh transition.
	Tokens TokenSource
	// RefreshPath is the auth refresh endpoint path. A 401 from this path is
	// never retried; retrying it would loop the refresh flow.
	RefreshPath string
	// DeviceID, when set, supplies the anonymous device id attached to
	// unauthenticated requests. A func rather than a string: the id is
	// minted during rehydration, after the transport is built.
	DeviceID func() string
	Logger   *slog.Logger
}

// Transport is an http.RoundTripper that attaches the current bearer token
// and, on an authentication failure, performs a shared refresh and re-issues
// the request exactly once. The second attempt's response is returned as-is:
// a 401 on the retried request does not trigger another refresh.
type Transport struct {
	base        http.RoundTripper
	tokens      TokenSource
	refreshPath string
	deviceID    func() string
	logger      *slog.Logger
}

// NewTransport constructs a Transport.
func NewTransport(opts TransportOptions) *Transport {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		base:        base,
		tokens:      opts.Tokens,
		refreshPath: opts.RefreshPath,
		deviceID:    opts.DeviceID,
		logger:      logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.tokens != nil {
		token = t.tokens.AccessToken()
	}

	resp, err := t.base.RoundTrip(t.authorize(req, token))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Guards: a request with no credential has nothing to refresh, and the
	// refresh endpoint itself must never recurse into another refresh.
	if token == "" || t.tokens == nil || req.URL.Path == t.refreshPath {
		return resp, nil
	}

	// The body of the original request must be replayable to retry.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	// Refresh is single-flight inside the token source: concurrent 401s
	// here all await the same refresh call.
	newToken, refreshErr := t.tokens.Refresh(req.Context())
	if refreshErr != nil || newToken == "" {
		// Session is gone; propagate the original failure untouched.
		t.logger.InfoContext(req.Context(), "token refresh failed, propagating 401",
			"path", req.URL.Path, "error", refreshErr)
		return resp, nil
	}

	drain(resp)

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, bodyErr
		}
		retry.Body = body
	}
	return t.base.RoundTrip(t.authorize(retry, newToken))
}

// authorize returns a clone of req carrying the bearer token, or the guest
// device id when no token is present. The caller's request is never mutated.
func (t *Transport) authorize(req *http.Request, token string) *http.Request {
	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set(authorizationHeader, bearerPrefix+token)
	} else if t.deviceID != nil {
		if id := t.deviceID(); id != "" {
			out.Header.Set(DeviceIDHeader, id)
		}
	}
	return out
}

// drain discards and closes a response body so the underlying connection
// can be reused.
func drain(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
