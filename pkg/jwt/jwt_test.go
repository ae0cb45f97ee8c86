package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-admin-secret-key-for-testing-purposes"

func TestNewService(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	assert.NotNil(t, service)
	assert.Equal(t, testSecret, service.secret)
	assert.Equal(t, time.Hour, service.expiry)
}

func TestGenerateAdminToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	token, err := service.GenerateAdminToken("ops@saferoute", []string{"admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@saferoute", claims.Operator)
	assert.Equal(t, "ops@saferoute", claims.Subject)
	assert.Equal(t, AdminToken, claims.TokenType)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("viewer"))
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAdminToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewService("another-secret", time.Hour)
		token, err := other.GenerateAdminToken("ops", []string{"admin"})
		require.NoError(t, err)

		_, err = service.ValidateAdminToken(token)
		assert.Error(t, err)
	})

	t.Run("Expired token", func(t *testing.T) {
		expired := NewService(testSecret, -time.Minute)
		token, err := expired.GenerateAdminToken("ops", []string{"admin"})
		require.NoError(t, err)

		_, err = service.ValidateAdminToken(token)
		assert.Error(t, err)
	})

	t.Run("Malformed token", func(t *testing.T) {
		_, err := service.ValidateAdminToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("Wrong token type", func(t *testing.T) {
		claims := Claims{
			Operator:  "ops",
			TokenType: "access",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    Issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = service.ValidateAdminToken(token)
		assert.ErrorContains(t, err, "invalid token type")
	})

	t.Run("Wrong issuer", func(t *testing.T) {
		claims := Claims{
			Operator:  "ops",
			TokenType: AdminToken,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = service.ValidateAdminToken(token)
		assert.Error(t, err)
	})

	t.Run("None algorithm rejected", func(t *testing.T) {
		claims := Claims{Operator: "ops", TokenType: AdminToken}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateAdminToken(token)
		assert.Error(t, err)
	})
}

func TestGetTokenExpiry(t *testing.T) {
	service := NewService(testSecret, 2*time.Hour)

	token, err := service.GenerateAdminToken("ops", nil)
	require.NoError(t, err)

	expiry, err := service.GetTokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiry, 5*time.Second)

	_, err = service.GetTokenExpiry("garbage")
	assert.Error(t, err)
}
