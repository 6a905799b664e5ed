package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokens is a scripted TokenSource for transport tests.
type stubTokens struct {
	mu         sync.Mutex
	token      string
	refreshTo  string
	refreshErr error
	refreshes  int
}

func (s *stubTokens) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *stubTokens) Refresh(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	s.token = s.refreshTo
	return s.refreshTo, nil
}

func (s *stubTokens) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

func newTransportClient(opts TransportOptions) *http.Client {
	return &http.Client{Transport: NewTransport(opts)}
}

func TestRoundTripAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTransportClient(TransportOptions{Tokens: &stubTokens{token: "tok-1"}})
	resp, err := client.Get(srv.URL + "/api/products")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestRoundTripSendsDeviceIDWhenLoggedOut(t *testing.T) {
	var gotAuth, gotDevice string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDevice = r.Header.Get(DeviceIDHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTransportClient(TransportOptions{
		Tokens:   &stubTokens{},
		DeviceID: func() string { return "device-42" },
	})
	resp, err := client.Get(srv.URL + "/api/products")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Empty(t, gotAuth)
	assert.Equal(t, "device-42", gotDevice)
}

func TestRoundTripRetriesOnceAfterRefresh(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n == 1 {
			assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "stale", refreshTo: "fresh"}
	client := newTransportClient(TransportOptions{Tokens: tokens})

	resp, err := client.Get(srv.URL + "/api/orders")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, 1, tokens.refreshCount())
}

func TestRoundTripRetriesAtMostOnce(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "stale", refreshTo: "fresh"}
	client := newTransportClient(TransportOptions{Tokens: tokens})

	resp, err := client.Get(srv.URL + "/api/orders")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// The retried request's 401 is returned as-is; no second refresh.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, 1, tokens.refreshCount())
}

func TestRoundTripDoesNotRefreshWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &stubTokens{refreshTo: "fresh"}
	client := newTransportClient(TransportOptions{Tokens: tokens})

	resp, err := client.Get(srv.URL + "/api/products")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, tokens.refreshCount())
}

func TestRoundTripNeverRetriesRefreshEndpoint(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "stale", refreshTo: "fresh"}
	client := newTransportClient(TransportOptions{
		Tokens:      tokens,
		RefreshPath: "/api/auth/refresh",
	})

	resp, err := client.Post(srv.URL+"/api/auth/refresh", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	assert.Equal(t, 0, tokens.refreshCount())
}

func TestRoundTripPropagatesOriginal401WhenRefreshFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"token expired"}`)
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "stale", refreshErr: errors.New("session gone")}
	client := newTransportClient(TransportOptions{Tokens: tokens})

	resp, err := client.Get(srv.URL + "/api/orders")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"token expired"}`, string(body))
	assert.Equal(t, 1, tokens.refreshCount())
}

func TestRoundTripReplaysBodyOnRetry(t *testing.T) {
	var bodies []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		first := len(bodies) == 1
		mu.Unlock()
		if first {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "stale", refreshTo: "fresh"}
	client := newTransportClient(TransportOptions{Tokens: tokens})

	// strings.Reader bodies get a GetBody from http.NewRequest, so the retry
	// can replay them.
	resp, err := client.Post(srv.URL+"/api/cart", "application/json", strings.NewReader(`{"productId":"p1"}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
}

func TestRoundTripSkipsRetryForNonReplayableBody(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &stubTokens{token: "stale", refreshTo: "fresh"}
	client := newTransportClient(TransportOptions{Tokens: tokens})

	// An io.Pipe body has no GetBody; the transport must return the 401
	// rather than retry with a consumed body.
	pr, pw := io.Pipe()
	go func() {
		_, _ = io.WriteString(pw, "stream")
		_ = pw.Close()
	}()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/cart", pr)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	assert.Equal(t, 0, tokens.refreshCount())
}
