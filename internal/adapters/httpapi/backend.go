package httpapi

// Package httpapi implements the auth backend against the storefront REST
// API.

import (
	"context"
	"encoding/json"
	"fmt"

	domainsession "github.com/mizan-mobiles/storefront-go/internal/domain/session"
	"github.com/mizan-mobiles/storefront-go/internal/gateway"
	"github.com/mizan-mobiles/storefront-go/internal/ports"
)

const (
	loginPath   = "/api/auth/login"
	signupPath  = "/api/auth/signup"
	refreshPath = "/api/auth/refresh"
	profilePath = "/api/auth/profile"
)

// Backend performs the storefront API auth flows over the gateway client.
type Backend struct {
	client *gateway.Client
}

// New constructs a Backend.
func New(client *gateway.Client) *Backend {
	return &Backend{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	Token        string                    `json:"token"`
	RefreshToken string                    `json:"refreshToken"`
	User         domainsession.UserProfile `json:"user"`
}

type refreshResponse struct {
	Token        string                     `json:"token"`
	RefreshToken string                     `json:"refreshToken"`
	User         *domainsession.UserProfile `json:"user"`
}

// Login exchanges credentials for a token pair and profile.
func (b *Backend) Login(ctx context.Context, creds ports.Credentials) (ports.AuthResult, error) {
	var resp authResponse
	err := b.client.Post(ctx, loginPath, loginRequest{
		Email:    creds.Email,
		Password: creds.Password,
	}, &resp)
	if err != nil {
		return ports.AuthResult{}, err
	}
	return ports.AuthResult{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}, nil
}

// Signup registers an account and returns the resulting session material.
func (b *Backend) Signup(ctx context.Context, in ports.SignupInput) (ports.AuthResult, error) {
	var resp authResponse
	err := b.client.Post(ctx, signupPath, signupRequest{
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
	}, &resp)
	if err != nil {
		return ports.AuthResult{}, err
	}
	return ports.AuthResult{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}, nil
}

// Refresh exchanges the refresh token for a new access token. The backend
// may omit the rotated refresh token and the profile.
func (b *Backend) Refresh(ctx context.Context, refreshToken string) (ports.RefreshResult, error) {
	var resp refreshResponse
	err := b.client.Post(ctx, refreshPath, refreshRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return ports.RefreshResult{}, err
	}
	return ports.RefreshResult{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}, nil
}

// UpdateProfile sends a partial profile update. The profile endpoint is one
// of the duck-typed ones: the updated profile may arrive bare or wrapped, so
// the response goes through the user envelope.
func (b *Backend) UpdateProfile(ctx context.Context, patch ports.ProfilePatch) (*domainsession.UserProfile, error) {
	var raw json.RawMessage
	if err := b.client.Put(ctx, profilePath, patch, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("profile update returned empty response")
	}

	var user domainsession.UserProfile
	if err := gateway.UserEnvelope.Decode(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
