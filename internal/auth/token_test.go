package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", "mentor-mentee-app", "mentor-mentee-app", time.Hour)
}

var testIdentity = Identity{ID: 42, Name: "Alice", Email: "alice@test.com", Role: RoleMentor}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager()

	token, err := m.Issue(testIdentity)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@test.com", claims.Email)
	assert.Equal(t, RoleMentor, claims.Role)
	assert.Equal(t, "mentor-mentee-app", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"mentor-mentee-app"}, claims.Audience)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	m := newTestManager()

	first, err := m.Issue(testIdentity)
	require.NoError(t, err)
	second, err := m.Issue(testIdentity)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerify_Expired(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	m := newTestManager().WithClock(func() time.Time { return issuedAt })

	token, err := m.Issue(testIdentity)
	require.NoError(t, err)

	_, err = newTestManager().Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Rejects(t *testing.T) {
	m := newTestManager()
	valid, err := m.Issue(testIdentity)
	require.NoError(t, err)

	otherSecret, err := NewTokenManager("other-secret", "mentor-mentee-app", "mentor-mentee-app", time.Hour).Issue(testIdentity)
	require.NoError(t, err)
	otherIssuer, err := NewTokenManager("test-secret", "someone-else", "mentor-mentee-app", time.Hour).Issue(testIdentity)
	require.NoError(t, err)
	otherAudience, err := NewTokenManager("test-secret", "mentor-mentee-app", "another-app", time.Hour).Issue(testIdentity)
	require.NoError(t, err)
	badRole, err := m.Issue(Identity{ID: 1, Role: "admin"})
	require.NoError(t, err)
	noUser, err := m.Issue(Identity{ID: 0, Role: RoleMentee})
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1, Role: RoleMentee})
	hs512Token, err := hs512.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Role: RoleMentee}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"wrong secret":   otherSecret,
		"wrong issuer":   otherIssuer,
		"wrong audience": otherAudience,
		"unknown role":   badRole,
		"zero user id":   noUser,
		"hs512":          hs512Token,
		"alg none":       noneToken,
		"tampered":       tamper(valid),
		"garbage":        "not.a.token",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTokenInvalid), "ожидалась ErrTokenInvalid, получено %v", err)
		})
	}
}

func TestVerify_Empty(t *testing.T) {
	_, err := newTestManager().Verify("")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, CheckPasswordHash("secret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.True(t, CheckPasswordHashOrDummy("secret", hash))
	assert.False(t, CheckPasswordHashOrDummy("secret", ""))
}

func TestRoles(t *testing.T) {
	assert.NoError(t, ValidateRole(RoleMentor))
	assert.NoError(t, ValidateRole(RoleMentee))
	assert.ErrorIs(t, ValidateRole("admin"), ErrInvalidRole)
	assert.ErrorIs(t, ValidateRole(""), ErrInvalidRole)
}

// tamper меняет один символ в середине подписи
func tamper(token string) string {
	b := []byte(token)
	i := len(b) - 10
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}
