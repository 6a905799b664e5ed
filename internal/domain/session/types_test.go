package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroSessionIsLoggedOutAndValid(t *testing.T) {
	var s Session

	assert.False(t, s.Authenticated())
	assert.True(t, s.Valid())
}

func TestSessionWithTokenRequiresUser(t *testing.T) {
	var s Session
	s.Token.AccessToken = "access"

	assert.True(t, s.Authenticated())
	assert.False(t, s.Valid(), "token without profile violates the session invariant")

	s.User = &UserProfile{ID: "u1"}
	assert.True(t, s.Valid())
}

func TestTimeUntilExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var s Session
	assert.Equal(t, time.Duration(0), s.TimeUntilExpiry(now))

	s.Token.Expiry = now.Add(10 * time.Minute)
	assert.Equal(t, 10*time.Minute, s.TimeUntilExpiry(now))

	s.Token.Expiry = now.Add(-time.Minute)
	assert.Negative(t, s.TimeUntilExpiry(now))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, UserProfile{Role: RoleAdmin}.IsAdmin())
	assert.False(t, UserProfile{Role: RoleUser}.IsAdmin())
}

func TestSessionJSONRoundTrip(t *testing.T) {
	user := UserProfile{ID: "u1", Email: "a@b.com", FullName: "Ada", Role: RoleUser}
	s := Session{User: &user}
	s.Token.AccessToken = "access"
	s.Token.RefreshToken = "refresh"

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored Session
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, "access", restored.Token.AccessToken)
	assert.Equal(t, "refresh", restored.Token.RefreshToken)
	require.NotNil(t, restored.User)
	assert.Equal(t, "a@b.com", restored.User.Email)
}
