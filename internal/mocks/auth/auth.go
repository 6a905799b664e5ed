package auth

// Package auth contains simple hand-written test doubles for the auth
// backend and token inspector ports. These are lightweight and suitable for
// unit tests without codegen.

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainsession "github.com/mizan-mobiles/storefront-go/internal/domain/session"
	"github.com/mizan-mobiles/storefront-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthBackend    = (*MockAuthBackend)(nil)
	_ ports.TokenInspector = (*FixedTokenInspector)(nil)
)

// MockAuthBackend simulates the storefront API auth endpoints with
// deterministic token minting.
type MockAuthBackend struct {
	LoginFunc         func(ctx context.Context, creds ports.Credentials) (ports.AuthResult, error)
	SignupFunc        func(ctx context.Context, in ports.SignupInput) (ports.AuthResult, error)
	RefreshFunc       func(ctx context.Context, refreshToken string) (ports.RefreshResult, error)
	UpdateProfileFunc func(ctx context.Context, patch ports.ProfilePatch) (*domainsession.UserProfile, error)

	// DefaultUser is returned by the default login/signup behavior.
	DefaultUser domainsession.UserProfile

	mu           sync.Mutex
	loginCalls   int
	refreshCalls int
}

// NewMockAuthBackend creates a MockAuthBackend with sensible defaults.
func NewMockAuthBackend() *MockAuthBackend {
	return &MockAuthBackend{
		DefaultUser: domainsession.UserProfile{
			ID:       "mock-user-1",
			Email:    "mock.user@example.com",
			FullName: "Mock User",
			Phone:    "+10000000000",
			Role:     domainsession.RoleUser,
		},
	}
}

func (m *MockAuthBackend) Login(ctx context.Context, creds ports.Credentials) (ports.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}

	m.mu.Lock()
	m.loginCalls++
	n := m.loginCalls
	m.mu.Unlock()

	return ports.AuthResult{
		AccessToken:  fmt.Sprintf("access-%d", n),
		RefreshToken: fmt.Sprintf("refresh-%d", n),
		User:         m.DefaultUser,
	}, nil
}

func (m *MockAuthBackend) Signup(ctx context.Context, in ports.SignupInput) (ports.AuthResult, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, in)
	}

	user := m.DefaultUser
	user.Email = in.Email
	user.FullName = in.FullName
	user.Phone = in.Phone
	return ports.AuthResult{
		AccessToken:  "access-signup",
		RefreshToken: "refresh-signup",
		User:         user,
	}, nil
}

func (m *MockAuthBackend) Refresh(ctx context.Context, refreshToken string) (ports.RefreshResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}

	m.mu.Lock()
	m.refreshCalls++
	n := m.refreshCalls
	m.mu.Unlock()

	return ports.RefreshResult{
		AccessToken: fmt.Sprintf("refreshed-access-%d", n),
	}, nil
}

func (m *MockAuthBackend) UpdateProfile(ctx context.Context, patch ports.ProfilePatch) (*domainsession.UserProfile, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, patch)
	}

	user := m.DefaultUser
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Location != nil {
		user.Location = *patch.Location
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	return &user, nil
}

// RefreshCalls reports how many times the default refresh behavior ran.
func (m *MockAuthBackend) RefreshCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshCalls
}

// FixedTokenInspector returns a fixed expiry for every token, or an error
// when Err is set. ExpiryFor overrides the expiry per token value.
type FixedTokenInspector struct {
	Expiry    time.Time
	Err       error
	ExpiryFor map[string]time.Time
}

func (f *FixedTokenInspector) ExpiresAt(token string) (time.Time, error) {
	if f.Err != nil {
		return time.Time{}, f.Err
	}
	if f.ExpiryFor != nil {
		if exp, ok := f.ExpiryFor[token]; ok {
			return exp, nil
		}
	}
	return f.Expiry, nil
}
