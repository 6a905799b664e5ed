package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mizan-mobiles/storefront-go/internal/errors"
	"github.com/mizan-mobiles/storefront-go/internal/gateway"
	"github.com/mizan-mobiles/storefront-go/internal/ports"
)

func newBackend(srv *httptest.Server) *Backend {
	return New(gateway.NewClient(srv.Client(), srv.URL))
}

func TestLoginDecodesTokenPairAndProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "a@b.com", in["email"])
		assert.Equal(t, "secret", in["password"])

		_, _ = w.Write([]byte(`{
			"token": "access-1",
			"refreshToken": "refresh-1",
			"user": {"id": "u1", "email": "a@b.com", "fullName": "Ada"}
		}`))
	}))
	defer srv.Close()

	result, err := newBackend(srv).Login(context.Background(), ports.Credentials{
		Email:    "a@b.com",
		Password: "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "access-1", result.AccessToken)
	assert.Equal(t, "refresh-1", result.RefreshToken)
	assert.Equal(t, "u1", result.User.ID)
	assert.Equal(t, "Ada", result.User.FullName)
}

func TestLoginPropagatesUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newBackend(srv).Login(context.Background(), ports.Credentials{
		Email:    "a@b.com",
		Password: "wrong",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestSignupSendsAllFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/signup", r.URL.Path)

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Ada Lovelace", in["fullName"])
		assert.Equal(t, "+15550001111", in["phone"])

		_, _ = w.Write([]byte(`{
			"token": "access-1",
			"refreshToken": "refresh-1",
			"user": {"id": "u1", "email": "ada@example.com"}
		}`))
	}))
	defer srv.Close()

	result, err := newBackend(srv).Signup(context.Background(), ports.SignupInput{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "+15550001111",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "access-1", result.AccessToken)
}

func TestRefreshToleratesMinimalResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/refresh", r.URL.Path)

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "refresh-1", in["refreshToken"])

		// No rotated refresh token, no profile.
		_, _ = w.Write([]byte(`{"token": "access-2"}`))
	}))
	defer srv.Close()

	result, err := newBackend(srv).Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)

	assert.Equal(t, "access-2", result.AccessToken)
	assert.Empty(t, result.RefreshToken)
	assert.Nil(t, result.User)
}

func TestUpdateProfileUnwrapsEitherShape(t *testing.T) {
	responses := []string{
		`{"user": {"id": "u1", "bio": "wrapped as user"}}`,
		`{"data": {"id": "u1", "bio": "wrapped as data"}}`,
		`{"id": "u1", "bio": "bare"}`,
	}
	var call int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/profile", r.URL.Path)
		require.Equal(t, http.MethodPut, r.Method)
		_, _ = w.Write([]byte(responses[call]))
		call++
	}))
	defer srv.Close()

	backend := newBackend(srv)
	bio := "anything"
	want := []string{"wrapped as user", "wrapped as data", "bare"}
	for i := range responses {
		user, err := backend.UpdateProfile(context.Background(), ports.ProfilePatch{Bio: &bio})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, want[i], user.Bio)
	}
}

func TestUpdateProfileSendsOnlyPatchedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]any{"bio": "gopher"}, in)
		_, _ = w.Write([]byte(`{"id": "u1", "bio": "gopher"}`))
	}))
	defer srv.Close()

	bio := "gopher"
	_, err := newBackend(srv).UpdateProfile(context.Background(), ports.ProfilePatch{Bio: &bio})
	require.NoError(t, err)
}
