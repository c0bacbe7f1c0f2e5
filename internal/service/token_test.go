package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, err := svc.Issue(42, []string{PermissionAdministerUsers})
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)

	viewer := claims.Viewer()
	assert.Equal(t, int64(42), viewer.ID)
	assert.True(t, viewer.HasPermission(PermissionAdministerUsers))
	assert.False(t, viewer.HasPermission(PermissionAdministerSiteConfig))
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("another-secret-another-secret-xx", time.Hour)
		token, err := other.Issue(1, nil)
		require.NoError(t, err)
		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewTokenService(testSecret, time.Hour)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := expired.Issue(1, nil)
		require.NoError(t, err)
		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{UserID: 1}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no secret", func(t *testing.T) {
		empty := NewTokenService("", time.Hour)
		_, err := empty.Issue(1, nil)
		assert.ErrorIs(t, err, ErrTokenSecretUnset)
	})
}
