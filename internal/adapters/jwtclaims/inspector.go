package jwtclaims

// Package jwtclaims extracts the expiry claim from access tokens. Tokens
// are parsed, not verified: signature validation is the backend's job, the
// client only needs to know when to refresh.

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Inspector reads the exp claim from a JWT without verifying its signature.
type Inspector struct{}

// New returns an Inspector.
func New() *Inspector {
	return &Inspector{}
}

// ExpiresAt returns the token's expiry. A token that cannot be parsed, or
// that carries no exp claim, is structurally invalid.
func (*Inspector) ExpiresAt(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, errors.New("token is empty")
	}

	parser := jwt.NewParser()
	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}
