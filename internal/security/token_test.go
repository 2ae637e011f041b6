package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		m := NewTokenManager(testSecret, time.Hour)
		token, expires, err := m.GenerateSessionToken("Admin@Example.com", "Admin")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

		claims, err := m.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", claims.Email)
		assert.Equal(t, "Admin", claims.Name)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("Expired", func(t *testing.T) {
		m := NewTokenManager(testSecret, time.Minute).(*tokenManager)
		m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := m.GenerateSessionToken("admin@example.com", "")
		require.NoError(t, err)

		m.now = time.Now
		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, _, err := NewTokenManager(testSecret, time.Hour).GenerateSessionToken("admin@example.com", "")
		require.NoError(t, err)
		_, err = NewTokenManager("another-secret-another-secret-xx", time.Hour).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong audience", func(t *testing.T) {
		claims := SessionClaims{
			Email: "admin@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    sessionIssuer,
				Audience:  jwt.ClaimStrings{"somewhere-else"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = NewTokenManager(testSecret, time.Hour).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := NewTokenManager(testSecret, time.Hour).ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestEmailInDomain(t *testing.T) {
	tests := []struct {
		email, domain string
		want          bool
	}{
		{"staff@example.com", "example.com", true},
		{"Staff@EXAMPLE.com", "@example.com", true},
		{"staff@notexample.com", "example.com", false},
		{"staff@example.com.evil.io", "example.com", false},
		{"staff@example.com", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EmailInDomain(tt.email, tt.domain), tt.email)
	}
}

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims("uid-1", map[string]interface{}{
		"email":          "staff@example.com",
		"email_verified": true,
		"name":           "Sato",
	})
	assert.Equal(t, &Identity{UID: "uid-1", Email: "staff@example.com", EmailVerified: true, Name: "Sato"}, id)
	assert.Equal(t, &Identity{UID: "x"}, identityFromClaims("x", nil))
}
