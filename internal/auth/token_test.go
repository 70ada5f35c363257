package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-br/chamados-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("segredo-de-teste", 60)

	token, expiresAt, err := tm.GenerateToken(42, domain.RoleAgent, true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, domain.RoleAgent, claims.Role)
	assert.True(t, claims.MustChangePassword)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("segredo-a", 60)
	token, _, err := tm.GenerateToken(1, domain.RoleRequester, false)
	require.NoError(t, err)

	other := NewTokenManager("segredo-b", 60)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("segredo", 60)
	claims := &Claims{
		UserID: 1,
		Role:   domain.RoleRequester,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("segredo"))
	require.NoError(t, err)

	_, err = tm.ParseToken(signed)
	assert.Error(t, err)
}

func TestParseTokenRejectsOtherSigningMethod(t *testing.T) {
	tm := NewTokenManager("segredo", 60)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.ParseToken(unsigned)
	assert.Error(t, err)
}

func TestTTLDefaultsWhenNonPositive(t *testing.T) {
	tm := NewTokenManager("segredo", 0)
	_, expiresAt, err := tm.GenerateToken(1, domain.RoleRequester, false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(480*time.Minute), expiresAt, 5*time.Second)
}
