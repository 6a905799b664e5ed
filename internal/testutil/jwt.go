package testutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignedToken mints an HS256 token with the given expiry for tests. The
// client never verifies signatures, so any secret works.
func SignedToken(expiresAt time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   "test-user",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return signed
}

// TokenWithoutExpiry mints an HS256 token carrying no exp claim.
func TokenWithoutExpiry() string {
	claims := jwt.RegisteredClaims{Subject: "test-user"}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return signed
}
