package authtok

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, id, userType string, expiresIn time.Duration) string {
	t.Helper()

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(expiresIn).Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    "portal-backend",
		},
		ID:       id,
		UserType: userType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return signed
}

func TestExtract(t *testing.T) {
	signed := mintToken(t, "S1", "student", time.Hour)

	claims, err := Extract(signed)
	require.NoError(t, err)

	assert.Equal(t, "S1", claims.ID)
	assert.Equal(t, "student", claims.UserType)
}

func TestExtractRejectsMalformedToken(t *testing.T) {
	_, err := Extract("not-a-jwt")
	require.Error(t, err)
}

func TestExtractRejectsTokenWithoutID(t *testing.T) {
	signed := mintToken(t, "", "student", time.Hour)

	_, err := Extract(signed)
	require.Error(t, err)
}

func TestExpiresWithin(t *testing.T) {
	soon := mintToken(t, "S1", "student", time.Minute)

	claims, err := Extract(soon)
	require.NoError(t, err)

	assert.True(t, claims.ExpiresWithin(2*time.Minute))
	assert.False(t, claims.ExpiresWithin(10*time.Second))
}

func TestExpiresWithinNoExpiryClaim(t *testing.T) {
	claims := &Claims{ID: "S1"}
	assert.False(t, claims.ExpiresWithin(time.Hour))
}
