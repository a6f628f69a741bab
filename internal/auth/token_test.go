package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asten-tickets/triage-service/internal/domain"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenVerifier(t *testing.T) {
	verifier := NewTokenVerifier("test-secret")

	baseClaims := func() Claims {
		return Claims{
			Email: "agent@example.com",
			Name:  "Agent Smith",
			Role:  domain.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "agent-7",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}
	}

	t.Run("maps claims onto an identity", func(t *testing.T) {
		identity, err := verifier.Verify(signToken(t, "test-secret", baseClaims()))
		require.NoError(t, err)
		assert.Equal(t, "agent-7", identity.UID)
		assert.Equal(t, "agent@example.com", identity.Email)
		assert.Equal(t, "Agent Smith", identity.DisplayName)
		assert.Equal(t, domain.RoleAdmin, identity.Role)
	})

	t.Run("unknown roles collapse to user", func(t *testing.T) {
		claims := baseClaims()
		claims.Role = domain.Role("SUPERVISOR")
		identity, err := verifier.Verify(signToken(t, "test-secret", claims))
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, identity.Role)
	})

	t.Run("rejects a wrong signature", func(t *testing.T) {
		_, err := verifier.Verify(signToken(t, "other-secret", baseClaims()))
		require.Error(t, err)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		claims := baseClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := verifier.Verify(signToken(t, "test-secret", claims))
		require.Error(t, err)
	})

	t.Run("rejects tokens without a subject", func(t *testing.T) {
		claims := baseClaims()
		claims.Subject = ""
		_, err := verifier.Verify(signToken(t, "test-secret", claims))
		require.Error(t, err)
	})
}
