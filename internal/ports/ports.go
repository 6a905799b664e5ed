package ports

// Package ports defines interfaces (hexagonal ports) for the storefront
// client core. Implementations live in internal/adapters; orchestration in
// internal/session and internal/storefront.

import (
	"context"
	"time"

	domainsession "github.com/mizan-mobiles/storefront-go/internal/domain/session"
)

// StateStore persists serialized client state under stable keys.
// Get returns (nil, nil) when the key is absent; a missing key is a valid
// "logged out / empty" state, not an error.
type StateStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Credentials carries the login form fields.
type Credentials struct {
	Email    string
	Password string
}

// SignupInput carries the signup form fields.
type SignupInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// ProfilePatch is a partial profile update. Nil fields are omitted from the
// request and must be preserved on the stored profile.
type ProfilePatch struct {
	FullName *string `json:"fullName,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Location *string `json:"location,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// AuthResult is the backend's response to a successful login or signup.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         domainsession.UserProfile
}

// RefreshResult is the backend's response to a token refresh. RefreshToken
// is empty when the backend did not rotate it; User is nil when the backend
// did not re-send the profile.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	User         *domainsession.UserProfile
}

// AuthBackend performs the storefront API's auth flows.
type AuthBackend interface {
	Login(ctx context.Context, creds Credentials) (AuthResult, error)
	Signup(ctx context.Context, in SignupInput) (AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (RefreshResult, error)
	UpdateProfile(ctx context.Context, patch ProfilePatch) (*domainsession.UserProfile, error)
}

// TokenInspector extracts the expiry claim from an access token without
// verifying it. A token whose expiry cannot be parsed is structurally
// invalid.
type TokenInspector interface {
	ExpiresAt(token string) (time.Time, error)
}
