package session

// Package session contains domain-level types for the authenticated session.
// It is pure and free of transport/adapter concerns.

import (
	"time"

	"golang.org/x/oauth2"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserProfile is the authenticated user's profile as returned by the backend.
// Identity fields (ID, Email, Phone) are stable; the rest are freely editable.
type UserProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`

	// Optional profile fields
	Bio      string `json:"bio,omitempty"`
	Location string `json:"location,omitempty"`
	Avatar   string `json:"avatar,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// IsAdmin returns true if the profile role is admin.
func (p UserProfile) IsAdmin() bool { return p.Role == RoleAdmin }

// Session is the client-side record of an authenticated user: the token pair
// and the profile it belongs to. The zero value is the logged-out state.
//
// Token is carried as an oauth2.Token so the pair and its expiry travel
// together; Token.Expiry is populated from the access token's exp claim when
// the token is parseable.
type Session struct {
	Token oauth2.Token `json:"token"`
	User  *UserProfile `json:"user"`
}

// Authenticated reports whether the session holds an access token.
// A session must never hold a token without a user profile; see Valid.
func (s Session) Authenticated() bool { return s.Token.AccessToken != "" }

// Valid reports whether the session satisfies its structural invariant:
// either fully logged out, or a non-empty access token with a non-nil user.
func (s Session) Valid() bool {
	if !s.Authenticated() {
		return true
	}
	return s.User != nil
}

// TimeUntilExpiry returns the remaining lifetime of the access token at now.
// It is negative when the token is already expired and zero when no expiry
// is known.
func (s Session) TimeUntilExpiry(now time.Time) time.Duration {
	if s.Token.Expiry.IsZero() {
		return 0
	}
	return s.Token.Expiry.Sub(now)
}
