package jwtclaims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizan-mobiles/storefront-go/internal/testutil"
)

func TestExpiresAtReadsExpClaim(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := testutil.SignedToken(expiry)

	got, err := New().ExpiresAt(token)
	require.NoError(t, err)

	assert.True(t, got.Equal(expiry), "want %s, got %s", expiry, got)
}

func TestExpiresAtRejectsEmptyToken(t *testing.T) {
	_, err := New().ExpiresAt("")
	assert.Error(t, err)
}

func TestExpiresAtRejectsGarbage(t *testing.T) {
	_, err := New().ExpiresAt("not-a-jwt")
	assert.Error(t, err)
}

func TestExpiresAtRequiresExpClaim(t *testing.T) {
	token := testutil.TokenWithoutExpiry()

	_, err := New().ExpiresAt(token)
	assert.Error(t, err)
}
